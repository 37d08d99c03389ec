package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T, eventType string) *LedgerEvent {
	t.Helper()
	event, err := NewLedgerEvent(eventType, map[string]int64{"unitId": 1})
	require.NoError(t, err)
	return event
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("no subscribers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(ctx, newEvent(t, ReviewRecorded)))
	})

	t.Run("every subscriber receives untyped events", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first, second := &MockEventHandler{}, &MockEventHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := newEvent(t, ReviewRecorded)
		require.NoError(t, emitter.EmitEvent(ctx, event))

		assert.Equal(t, 1, first.HandledCount)
		assert.Equal(t, 1, second.HandledCount)
		assert.Same(t, event, first.LastEvent)
	})

	t.Run("typed subscription filters", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		reviews := &MockEventHandler{}
		all := &MockEventHandler{}
		emitter.RegisterHandler(reviews, ReviewRecorded, ReviewDeleted)
		emitter.RegisterHandler(all)

		for _, eventType := range []string{ReviewRecorded, UnitCreated, ReviewDeleted, SnapshotCleared} {
			require.NoError(t, emitter.EmitEvent(ctx, newEvent(t, eventType)))
		}

		assert.Equal(t, 2, reviews.HandledCount)
		assert.Equal(t, ReviewDeleted, reviews.LastEvent.Type)
		assert.Equal(t, 4, all.HandledCount)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failA := &MockEventHandler{HandlerError: errors.New("counter down")}
		ok := &MockEventHandler{}
		failB := &MockEventHandler{HandlerError: errors.New("audit down")}
		emitter.RegisterHandler(failA)
		emitter.RegisterHandler(ok)
		emitter.RegisterHandler(failB)

		err := emitter.EmitEvent(ctx, newEvent(t, UnitDeleted))
		require.Error(t, err)
		assert.ErrorIs(t, err, failA.HandlerError)
		assert.ErrorIs(t, err, failB.HandlerError)
		assert.Equal(t, 1, ok.HandledCount)
		assert.Equal(t, 1, failB.HandledCount)
	})
}
