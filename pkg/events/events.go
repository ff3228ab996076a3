// pkg/events/events.go
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	ArtworkRegistered    EventType = "artwork_registered"
	LicenseGranted       EventType = "license_granted"
	LicenseRevoked       EventType = "license_revoked"
	RoyaltyPaid          EventType = "royalty_paid"
	SaleSettled          EventType = "sale_settled"
	OwnershipTransferred EventType = "ownership_transferred"
	PlatformFeeUpdated   EventType = "platform_fee_updated"
)

// Payload carries the event's field list as emitted to external indexers.
type Payload map[string]interface{}

// Event is one notification emitted after a successful ledger mutation.
// It is an outbound record, not ledger state.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	ArtworkID uint64    `json:"artwork_id"`
	Payload   Payload   `json:"payload"`
	EmittedAt time.Time `json:"emitted_at"`
}

func New(eventType EventType, artworkID uint64, payload Payload) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		ArtworkID: artworkID,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}
}

// Sink receives emitted events. Implementations must be safe for use from a
// single ledger goroutine at a time; Emit errors are logged by the ledger and
// never fail the committed operation.
type Sink interface {
	Emit(event Event) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Emit(Event) error { return nil }

// MemorySink keeps emitted events in memory, mostly for tests and embedding.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot in emission order.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByType filters the snapshot.
func (s *MemorySink) ByType(eventType EventType) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MultiSink fans one event out to several sinks, returning the first error.
type MultiSink []Sink

func (m MultiSink) Emit(event Event) error {
	var firstErr error
	for _, sink := range m {
		if err := sink.Emit(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
