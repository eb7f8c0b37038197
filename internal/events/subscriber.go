// Package events subscribes to the portal's realtime channel and forwards
// attendance-changed notifications to the display loop.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const EventAttendanceChanged = "attendanceChanged"

// Message is the wire shape published on the channel.
type Message struct {
	Event      string `json:"event"`
	EmployeeID string `json:"employee_id"`
}

// Config holds the channel connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Subscriber listens for attendance-changed messages and invokes the
// handler with the affected employee id. Filtering on the current employee
// is the handler's concern.
type Subscriber struct {
	client  *redis.Client
	channel string
	handler func(employeeID string)
	log     *slog.Logger
}

func NewSubscriber(cfg Config, handler func(employeeID string), logger *slog.Logger) (*Subscriber, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  -1, // pub/sub reads block indefinitely
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("event channel connection failed: %w", err)
	}

	return &Subscriber{
		client:  client,
		channel: cfg.Channel,
		handler: handler,
		log:     logger.With("component", "events"),
	}, nil
}

// Run consumes the channel until the context is canceled. Reconnection is
// handled by the client; malformed or unrelated messages are skipped.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// Fail fast when the subscription itself cannot be established.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %q: %w", s.channel, err)
	}
	s.log.Info("subscribed to event channel", "channel", s.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.dispatch(msg.Payload)
		}
	}
}

// Close releases the underlying connection.
func (s *Subscriber) Close() error {
	return s.client.Close()
}

func (s *Subscriber) dispatch(payload string) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		s.log.Warn("discarding malformed event", "error", err)
		return
	}
	if msg.Event != EventAttendanceChanged || msg.EmployeeID == "" {
		return
	}
	s.handler(msg.EmployeeID)
}
