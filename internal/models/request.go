package models

import "time"

type Request struct {
	ID          int64     `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	RequesterID int64     `json:"requester_id" yaml:"requester_id"`
	Created     time.Time `json:"created" yaml:"-"`
}

type RequestDetails struct {
	Request
	Requester User
	Items     []Item
}
