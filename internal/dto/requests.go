package dto

import "shareit/internal/models"

type NewUser struct {
	Name  string `json:"name" validate:"notblank,max=255"`
	Email string `json:"email" validate:"required,email,max=512"`
}

func (u NewUser) Model() *models.User {
	return &models.User{Name: u.Name, Email: u.Email}
}

type UpdateUser struct {
	Name  *string `json:"name" validate:"omitnil,notblank,max=255"`
	Email *string `json:"email" validate:"omitnil,email,max=512"`
}

func (u UpdateUser) Patch() models.UserPatch {
	return models.UserPatch{Name: u.Name, Email: u.Email}
}

type NewItem struct {
	Name        string  `json:"name" validate:"notblank,max=255"`
	Description *string `json:"description" validate:"required,notblank,max=512"`
	Available   *bool   `json:"available" validate:"required"`
	RequestID   *int64  `json:"requestId" validate:"omitnil,gt=0"`
}

func (i NewItem) Model() *models.Item {
	item := &models.Item{Name: i.Name, RequestID: i.RequestID}
	if i.Description != nil {
		item.Description = *i.Description
	}
	if i.Available != nil {
		item.Available = *i.Available
	}
	return item
}

type UpdateItem struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=255"`
	Description *string `json:"description" validate:"omitnil,notblank,max=512"`
	Available   *bool   `json:"available"`
}

func (i UpdateItem) Patch() models.ItemPatch {
	return models.ItemPatch{Name: i.Name, Description: i.Description, Available: i.Available}
}

type NewComment struct {
	Text string `json:"text" validate:"notblank,max=512"`
}

type NewBooking struct {
	ItemID *int64     `json:"itemId" validate:"required"`
	Start  *Timestamp `json:"start" validate:"required"`
	End    *Timestamp `json:"end" validate:"required"`
}

func (b NewBooking) Model() *models.Booking {
	booking := &models.Booking{}
	if b.ItemID != nil {
		booking.ItemID = *b.ItemID
	}
	if b.Start != nil {
		booking.Start = b.Start.Time
	}
	if b.End != nil {
		booking.End = b.End.Time
	}
	return booking
}

type NewRequest struct {
	Description string `json:"description" validate:"notblank,max=512"`
}

func (r NewRequest) Model() *models.Request {
	return &models.Request{Description: r.Description}
}
