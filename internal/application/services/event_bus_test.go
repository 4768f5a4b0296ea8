package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/internal/domain/events"
)

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)

	var got []string
	unsubscribe := bus.Subscribe(events.ServerStatusChanged, func(ctx context.Context, payload interface{}) error {
		got = append(got, "first:"+payload.(string))
		return nil
	})
	bus.Subscribe(events.ServerStatusChanged, func(ctx context.Context, payload interface{}) error {
		got = append(got, "second:"+payload.(string))
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), events.ServerStatusChanged, "online"))
	assert.Equal(t, []string{"first:online", "second:online"}, got)

	unsubscribe()
	got = nil
	require.NoError(t, bus.Publish(context.Background(), events.ServerStatusChanged, "admin"))
	assert.Equal(t, []string{"second:admin"}, got)

	require.NoError(t, bus.Publish(context.Background(), events.ConfigSaved, "ignored"))
	assert.Equal(t, []string{"second:admin"}, got)
}

func TestEventBus_HandlerErrorStopsDelivery(t *testing.T) {
	bus := NewEventBus(nil)
	called := false
	bus.Subscribe(events.WorkerFailed, func(ctx context.Context, payload interface{}) error {
		return errors.New("handler failed")
	})
	bus.Subscribe(events.WorkerFailed, func(ctx context.Context, payload interface{}) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), events.WorkerFailed, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker.failed")
	assert.False(t, called)
}

func TestEventBus_PublishAsyncAndClear(t *testing.T) {
	bus := NewEventBus(nil)
	done := make(chan any, 1)
	bus.Subscribe(events.ConfigSaved, func(ctx context.Context, payload interface{}) error {
		done <- payload
		return nil
	})

	bus.PublishAsync(events.ConfigSaved, "saved")
	select {
	case p := <-done:
		assert.Equal(t, "saved", p)
	case <-time.After(time.Second):
		t.Fatal("async event was not delivered")
	}

	bus.Clear()
	require.NoError(t, bus.Publish(context.Background(), events.ConfigSaved, "again"))
	assert.Empty(t, done)
}
