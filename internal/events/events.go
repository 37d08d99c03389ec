package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted after a ledger mutation commits.
const (
	SubjectAdded      = "subject.added"
	SubjectMoved      = "subject.moved"
	SubjectsSeeded    = "subjects.seeded"
	UnitCreated       = "unit.created"
	UnitRetitled      = "unit.retitled"
	UnitDeleted       = "unit.deleted"
	ReviewRecorded    = "review.recorded"
	ReviewUpdated     = "review.updated"
	ReviewDeleted     = "review.deleted"
	ReviewsRenumbered = "reviews.renumbered"
	EntriesApplied    = "entries.applied"
	SnapshotImported  = "snapshot.imported"
	SnapshotCleared   = "snapshot.cleared"
)

// LedgerEvent records a committed change to the study ledger.
type LedgerEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants above
	Type string `json:"type"`

	// Payload carries the ids and values involved, serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is when the change was committed
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *LedgerEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewLedgerEvent creates a LedgerEvent with the specified type and payload.
func NewLedgerEvent(eventType string, payload interface{}) (*LedgerEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &LedgerEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Payload:    payloadBytes,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that react to ledger
// changes, such as the metrics collector.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *LedgerEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish changes without knowing who listens.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *LedgerEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *LedgerEvent) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *LedgerEvent) error {
	return f(ctx, event)
}

// Emit builds an event and publishes it on emitter. A nil emitter is
// allowed. Failures are logged by the emitter and returned for callers that
// care; the change itself has already been committed.
func Emit(ctx context.Context, emitter EventEmitter, eventType string, payload interface{}) error {
	if emitter == nil {
		return nil
	}
	event, err := NewLedgerEvent(eventType, payload)
	if err != nil {
		return err
	}
	return emitter.EmitEvent(ctx, event)
}
