package models

import "time"

type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// UserPatch carries the fields of a partial user update; nil means untouched.
type UserPatch struct {
	Name  *string
	Email *string
}
