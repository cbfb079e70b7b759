package models

import "time"

type Item struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Available   bool      `json:"available" yaml:"available"`
	OwnerID     int64     `json:"owner_id" yaml:"owner_id"`
	RequestID   *int64    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// ItemDetails is an item together with what its viewer is allowed to see.
// LastBooking and NextBooking are only filled for the owner.
type ItemDetails struct {
	Item
	LastBooking *Booking
	NextBooking *Booking
	Comments    []Comment
}
