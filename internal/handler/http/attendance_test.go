package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
	"github.com/vtabsquare/attendance-agent/internal/handler/http/response"
	"github.com/vtabsquare/attendance-agent/internal/pkg/sse"
	"github.com/vtabsquare/attendance-agent/internal/store"
)

type stubController struct {
	mu       sync.Mutex
	snap     *attendance.Snapshot
	err      error
	busy     bool
	lastCall string
}

func (s *stubController) call(name string) (*attendance.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCall = name
	return s.snap, s.err
}

func (s *stubController) CheckIn(context.Context, string) (*attendance.Snapshot, error) {
	return s.call("checkin")
}

func (s *stubController) CheckOut(context.Context, string) (*attendance.Snapshot, error) {
	return s.call("checkout")
}

func (s *stubController) Toggle(context.Context, string) (*attendance.Snapshot, error) {
	return s.call("toggle")
}

func (s *stubController) Refresh(context.Context, string) (*attendance.Snapshot, error) {
	return s.call("refresh")
}

func (s *stubController) InFlight() bool { return s.busy }

func (s *stubController) called() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCall
}

type stubWaker struct {
	mu    sync.Mutex
	wakes int
}

func (w *stubWaker) Wake() {
	w.mu.Lock()
	w.wakes++
	w.mu.Unlock()
}

func (w *stubWaker) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wakes
}

func newTestServer(t *testing.T, ctrl *stubController, st *store.Store) (*httptest.Server, *stubWaker, *sse.Hub) {
	t.Helper()
	waker := &stubWaker{}
	hub := sse.NewHub()
	h := NewAttendanceHandler(ctrl, st, waker, "emp-42")
	srv := httptest.NewServer(NewRouter(h, NewStreamHandler(hub), "test"))
	t.Cleanup(srv.Close)
	return srv, waker, hub
}

func decodeEnvelope(t *testing.T, resp *http.Response) response.Response {
	t.Helper()
	defer resp.Body.Close()
	var env response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func activeHandlerSnapshot() *attendance.Snapshot {
	now := time.Now()
	start := now.Add(-130 * time.Second).UTC()
	return &attendance.Snapshot{
		ServerNowUTC:    now.UTC(),
		HasRecord:       true,
		IsActiveSession: true,
		Timing: attendance.Timing{
			LastSessionStartUTC:   &start,
			ElapsedSecondsAtFetch: 130,
			TotalSecondsToday:     3600,
		},
		Status:         attendance.StatusInfo{Code: attendance.StatusPresent, Label: "Present"},
		FetchedAtLocal: now,
	}
}

func TestDisplay_ActiveSession(t *testing.T) {
	st := store.New()
	st.Set(activeHandlerSnapshot())
	srv, _, _ := newTestServer(t, &stubController{busy: true}, st)

	resp, err := http.Get(srv.URL + "/api/v1/attendance/display")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)

	var display attendance.DisplayResponse
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &display))

	assert.True(t, display.IsActive)
	assert.True(t, display.InFlight)
	assert.Equal(t, "P", display.StatusCode)
	assert.GreaterOrEqual(t, display.DisplaySeconds, int64(3730))
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, display.Display)
}

func TestDisplay_NoSnapshotYet(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubController{}, store.New())

	resp, err := http.Get(srv.URL + "/api/v1/attendance/display")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)
	data, _ := env.Data.(map[string]any)
	assert.Equal(t, "00:00:00", data["display"])
}

func TestSnapshot_NotFoundBeforeFirstFetch(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubController{}, store.New())

	resp, err := http.Get(srv.URL + "/api/v1/attendance/snapshot")
	require.NoError(t, err)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCheckIn_Success(t *testing.T) {
	ctrl := &stubController{snap: activeHandlerSnapshot()}
	srv, _, _ := newTestServer(t, ctrl, store.New())

	resp, err := http.Post(srv.URL+"/api/v1/attendance/checkin", "application/json", nil)
	require.NoError(t, err)
	env := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Equal(t, "Check in successful", env.Message)
	assert.Equal(t, "checkin", ctrl.called())
}

func TestCommand_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"busy", attendance.ErrBusy, http.StatusConflict, "CONFLICT"},
		{"not authenticated", attendance.ErrNotAuthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"server rejected", fmt.Errorf("check-in failed: %w", attendance.ErrServerRejected), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"network", fmt.Errorf("check-out pending server acknowledgement: %w", attendance.ErrNetwork), http.StatusBadGateway, "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t, &stubController{err: tt.err}, store.New())

			resp, err := http.Post(srv.URL+"/api/v1/attendance/checkout", "application/json", nil)
			require.NoError(t, err)
			env := decodeEnvelope(t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestToggle_DelegatesToController(t *testing.T) {
	ctrl := &stubController{snap: activeHandlerSnapshot()}
	srv, _, _ := newTestServer(t, ctrl, store.New())

	resp, err := http.Post(srv.URL+"/api/v1/attendance/toggle", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "toggle", ctrl.called())
}

func TestRefresh_WakesDisplayLoop(t *testing.T) {
	srv, waker, _ := newTestServer(t, &stubController{}, store.New())

	resp, err := http.Post(srv.URL+"/api/v1/attendance/refresh", "application/json", nil)
	require.NoError(t, err)
	env := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Equal(t, 1, waker.count())
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubController{}, store.New())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStream_DeliversFrames(t *testing.T) {
	srv, _, hub := newTestServer(t, &stubController{}, store.New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/attendance/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected", strings.TrimSpace(line))

	// Publish once the subscriber is attached.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() > 0
	}, 2*time.Second, 10*time.Millisecond)
	hub.Publish(sse.Frame{Display: "01:02:03", Active: true, Button: "CHECK OUT"})

	var frameData string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "data: ") && strings.Contains(trimmed, "01:02:03") {
			frameData = strings.TrimPrefix(trimmed, "data: ")
			break
		}
	}

	var frame sse.Frame
	require.NoError(t, json.Unmarshal([]byte(frameData), &frame))
	assert.Equal(t, "01:02:03", frame.Display)
	assert.True(t, frame.Active)
}
