package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vtabsquare/attendance-agent/internal/api"
	"github.com/vtabsquare/attendance-agent/internal/config"
	"github.com/vtabsquare/attendance-agent/internal/display"
	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
	"github.com/vtabsquare/attendance-agent/internal/events"
	"github.com/vtabsquare/attendance-agent/internal/geo"
	appHTTP "github.com/vtabsquare/attendance-agent/internal/handler/http"
	"github.com/vtabsquare/attendance-agent/internal/pkg/sse"
	attendanceService "github.com/vtabsquare/attendance-agent/internal/service/attendance"
	"github.com/vtabsquare/attendance-agent/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := newLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	statusStore := store.New()
	gateway := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout)

	var locator attendance.Locator = geo.NopLocator{}
	if cfg.Geo.ProviderURL != "" {
		locator = geo.NewHTTPLocator(cfg.Geo.ProviderURL, logger)
	}

	var office *attendanceService.Office
	if cfg.Geo.HasOffice {
		office = &attendanceService.Office{Lat: cfg.Geo.OfficeLat, Lng: cfg.Geo.OfficeLng}
	}

	controller := attendanceService.NewController(
		statusStore,
		gateway,
		locator,
		cfg.Employee.Timezone,
		office,
		logger,
	)

	hub := sse.NewHub()
	renderer := display.MultiRenderer{
		display.NewTermRenderer(os.Stdout),
		display.NewFrameRenderer(hub),
	}

	loop := display.NewLoop(display.Config{
		Store:           statusStore,
		Controller:      controller,
		Renderer:        renderer,
		EmployeeID:      cfg.Employee.ID,
		TickInterval:    cfg.Display.TickInterval,
		RefreshInterval: cfg.Display.RefreshInterval,
		Logger:          logger,
	})
	defer loop.Close()

	if cfg.Events.Addr != "" {
		subscriber, err := events.NewSubscriber(events.Config{
			Addr:     cfg.Events.Addr,
			Password: cfg.Events.Password,
			DB:       cfg.Events.DB,
			Channel:  cfg.Events.Channel,
		}, loop.HandleAttendanceChanged, logger)
		if err != nil {
			logger.Error("event channel unavailable, continuing with polling only", "error", err)
		} else {
			defer subscriber.Close()
			go func() {
				if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("event subscription ended", "error", err)
				}
			}()
		}
	}

	attendanceHandler := appHTTP.NewAttendanceHandler(controller, statusStore, loop, cfg.Employee.ID)
	streamHandler := appHTTP.NewStreamHandler(hub)
	router := appHTTP.NewRouter(attendanceHandler, streamHandler, cfg.App.Env)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("control API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("control API error", "error", err)
			stop()
		}
	}()

	logger.Info("attendance agent started",
		"employee_id", cfg.Employee.ID,
		"timezone", cfg.Employee.Timezone,
		"server", cfg.Server.BaseURL)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("display loop ended", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("control API shutdown failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})).With(
		slog.String("app", "vtab-attendance-agent"),
	)
}
