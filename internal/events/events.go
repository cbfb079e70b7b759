package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventUserCreated     = "user.created"
	EventUserDeleted     = "user.deleted"
	EventItemCreated     = "item.created"
	EventItemUpdated     = "item.updated"
	EventItemDeleted     = "item.deleted"
	EventCommentAdded    = "item.comment_added"
	EventBookingCreated  = "booking.created"
	EventBookingApproved = "booking.approved"
	EventBookingRejected = "booking.rejected"
	EventBookingCanceled = "booking.canceled"
	EventRequestCreated  = "request.created"
)

// BookingEventPayload is the booking snapshot carried by booking.* events.
type BookingEventPayload struct {
	BookingID int64     `json:"booking_id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name"`
	OwnerID   int64     `json:"owner_id"`
	BookerID  int64     `json:"booker_id"`
	Status    string    `json:"status"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	ChangedBy int64     `json:"changed_by,omitempty"`
}

type ItemEventPayload struct {
	ItemID    int64  `json:"item_id"`
	OwnerID   int64  `json:"owner_id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	RequestID *int64 `json:"request_id,omitempty"`
}

type CommentEventPayload struct {
	CommentID int64  `json:"comment_id"`
	ItemID    int64  `json:"item_id"`
	AuthorID  int64  `json:"author_id"`
	Text      string `json:"text"`
}

type RequestEventPayload struct {
	RequestID   int64  `json:"request_id"`
	RequesterID int64  `json:"requester_id"`
	Description string `json:"description"`
}

type UserEventPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Event is a domain event. ID is unique per publication.
type Event struct {
	ID          string
	Type        string
	AggregateID int64
	Payload     []byte
	CreatedAt   time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus is an in-process pub/sub. Handlers run synchronously on the publisher's goroutine.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
	wildcard    []EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for one event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

// Publish runs every matching handler and joins their errors.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subscribers[event.Type])+len(b.wildcard))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes payload and publishes it. A nil bus is a no-op.
func (b *EventBus) PublishJSON(eventType string, aggregateID int64, payload any) error {
	if b == nil {
		return nil
	}
	ev, err := NewJSONEvent(eventType, aggregateID, payload)
	if err != nil {
		return err
	}
	return b.Publish(&ev)
}

// NewJSONEvent builds an Event with a JSON payload and a fresh id.
func NewJSONEvent(eventType string, aggregateID int64, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     raw,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
