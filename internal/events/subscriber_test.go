package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannel = "attendance:changed"

func startSubscriber(t *testing.T, mr *miniredis.Miniredis, handler func(string)) *Subscriber {
	t.Helper()

	sub, err := NewSubscriber(Config{
		Addr:    mr.Addr(),
		Channel: testChannel,
	}, handler, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { sub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	running := make(chan error, 1)
	go func() { running <- sub.Run(ctx) }()

	// Publish returns the receiver count; once it is non-zero the
	// subscription is live. The warmup payload is malformed on purpose so
	// the dispatcher discards it.
	require.Eventually(t, func() bool {
		return mr.Publish(testChannel, "warmup") > 0
	}, 2*time.Second, 10*time.Millisecond, "subscription never established")

	return sub
}

func publish(t *testing.T, mr *miniredis.Miniredis, msg Message) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	mr.Publish(testChannel, string(payload))
}

func TestSubscriber_DispatchesAttendanceChanged(t *testing.T) {
	mr := miniredis.RunT(t)

	got := make(chan string, 8)
	startSubscriber(t, mr, func(employeeID string) { got <- employeeID })

	publish(t, mr, Message{Event: EventAttendanceChanged, EmployeeID: "emp-42"})

	select {
	case id := <-got:
		assert.Equal(t, "emp-42", id)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestSubscriber_IgnoresUnrelatedAndMalformed(t *testing.T) {
	mr := miniredis.RunT(t)

	got := make(chan string, 8)
	startSubscriber(t, mr, func(employeeID string) { got <- employeeID })

	mr.Publish(testChannel, "{not json")
	publish(t, mr, Message{Event: "leaveApproved", EmployeeID: "emp-42"})
	publish(t, mr, Message{Event: EventAttendanceChanged, EmployeeID: ""})
	// A valid message after the noise proves the stream survived it.
	publish(t, mr, Message{Event: EventAttendanceChanged, EmployeeID: "emp-7"})

	select {
	case id := <-got:
		assert.Equal(t, "emp-7", id, "only the well-formed matching event reaches the handler")
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
	assert.Empty(t, got)
}

func TestNewSubscriber_UnreachableServer(t *testing.T) {
	_, err := NewSubscriber(Config{
		Addr:    "127.0.0.1:1", // nothing listens here
		Channel: testChannel,
	}, func(string) {}, slog.Default())
	assert.Error(t, err)
}

func TestSubscriber_RunStopsOnCancel(t *testing.T) {
	mr := miniredis.RunT(t)

	sub, err := NewSubscriber(Config{Addr: mr.Addr(), Channel: testChannel}, func(string) {}, slog.Default())
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
