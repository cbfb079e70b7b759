package models

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingWaiting  BookingStatus = "WAITING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
	BookingCanceled BookingStatus = "CANCELED"
)

// BookingState selects bookings relative to the current time or by status.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
	StateCanceled BookingState = "CANCELED"
)

// UnsupportedStateMessage is returned verbatim for an unknown state filter.
const UnsupportedStateMessage = "Unknown state: UNSUPPORTED_STATUS"

// ErrUnsupportedState is returned by ParseBookingState.
var ErrUnsupportedState = fmt.Errorf("%s", UnsupportedStateMessage)

// ParseBookingState parses a state filter; empty input means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return StateAll, nil
	}
	switch s := BookingState(raw); s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected, StateCanceled:
		return s, nil
	}
	return "", ErrUnsupportedState
}

type Booking struct {
	ID          int64         `json:"id"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Status      BookingStatus `json:"status"`
	ItemID      int64         `json:"item_id"`
	ItemName    string        `json:"item_name"`
	ItemOwnerID int64         `json:"item_owner_id"`
	BookerID    int64         `json:"booker_id"`
	BookerName  string        `json:"booker_name"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookingFilter narrows a booking listing to one booker or to one owner's items.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    BookingState
	Now      time.Time
}
