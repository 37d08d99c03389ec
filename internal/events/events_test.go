package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewPayload struct {
	UnitID   int64  `json:"unitId"`
	ReviewNo int    `json:"reviewNo"`
	DoneDate string `json:"doneDate"`
}

func TestNewLedgerEvent(t *testing.T) {
	payload := reviewPayload{UnitID: 7, ReviewNo: 3, DoneDate: "2024-01-17"}

	event, err := NewLedgerEvent(ReviewRecorded, payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, ReviewRecorded, event.Type)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)

	var decoded reviewPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewLedgerEventBadPayload(t *testing.T) {
	_, err := NewLedgerEvent(UnitCreated, make(chan int))
	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *LedgerEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *LedgerEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("nil emitter", func(t *testing.T) {
		assert.NoError(t, Emit(ctx, nil, UnitDeleted, map[string]int64{"unitId": 1}))
	})

	t.Run("builds and publishes", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var got []string
		emitter.RegisterHandler(EventHandlerFunc(func(_ context.Context, e *LedgerEvent) error {
			got = append(got, e.Type)
			return nil
		}))

		require.NoError(t, Emit(ctx, emitter, SubjectAdded, map[string]string{"name": "住民税"}))
		require.NoError(t, Emit(ctx, emitter, SubjectMoved, map[string]int{"direction": -1}))
		assert.Equal(t, []string{SubjectAdded, SubjectMoved}, got)
	})

	t.Run("handler error is returned", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		emitter.RegisterHandler(&MockEventHandler{HandlerError: errors.New("handler error")})
		assert.EqualError(t, Emit(ctx, emitter, SnapshotCleared, nil), "handler error")
	})
}
