package dto

import "shareit/internal/models"

type UserDto struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingShort is the booking summary embedded in an item.
type BookingShort struct {
	ID       int64     `json:"id"`
	Start    Timestamp `json:"start"`
	End      Timestamp `json:"end"`
	ItemID   int64     `json:"itemId"`
	BookerID int64     `json:"bookerId"`
}

type CommentDto struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    Timestamp `json:"created"`
}

type ItemDto struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   *int64        `json:"requestId"`
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []CommentDto  `json:"comments"`
}

// ItemShort is an item listed under the request it answers.
type ItemShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId"`
	OwnerID     int64  `json:"ownerId"`
}

type BookingDto struct {
	ID     int64     `json:"id"`
	Start  Timestamp `json:"start"`
	End    Timestamp `json:"end"`
	Status string    `json:"status"`
	Booker Ref       `json:"booker"`
	Item   Ref       `json:"item"`
}

// Ref names a related entity by id and name.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RequestDto struct {
	ID          int64       `json:"id"`
	Description string      `json:"description"`
	Requester   UserDto     `json:"requester"`
	Created     Timestamp   `json:"created"`
	Items       []ItemShort `json:"items"`
}

func ToUserDto(u models.User) UserDto {
	return UserDto{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ToUserDtos(users []models.User) []UserDto {
	out := make([]UserDto, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDto(u))
	}
	return out
}

// ToItemDto maps a bare item; bookings stay null and comments empty.
func ToItemDto(i models.Item) ItemDto {
	return ItemDto{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		RequestID:   i.RequestID,
		Comments:    []CommentDto{},
	}
}

func ToItemDtos(items []models.Item) []ItemDto {
	out := make([]ItemDto, 0, len(items))
	for _, i := range items {
		out = append(out, ToItemDto(i))
	}
	return out
}

func ToItemDetailsDto(d models.ItemDetails) ItemDto {
	out := ToItemDto(d.Item)
	out.LastBooking = toBookingShort(d.LastBooking)
	out.NextBooking = toBookingShort(d.NextBooking)
	for _, c := range d.Comments {
		out.Comments = append(out.Comments, ToCommentDto(c))
	}
	return out
}

func ToItemDetailsDtos(details []models.ItemDetails) []ItemDto {
	out := make([]ItemDto, 0, len(details))
	for _, d := range details {
		out = append(out, ToItemDetailsDto(d))
	}
	return out
}

func toBookingShort(b *models.Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{
		ID:       b.ID,
		Start:    NewTimestamp(b.Start),
		End:      NewTimestamp(b.End),
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
	}
}

func ToCommentDto(c models.Comment) CommentDto {
	return CommentDto{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    NewTimestamp(c.Created),
	}
}

func ToBookingDto(b models.Booking) BookingDto {
	return BookingDto{
		ID:     b.ID,
		Start:  NewTimestamp(b.Start),
		End:    NewTimestamp(b.End),
		Status: string(b.Status),
		Booker: Ref{ID: b.BookerID, Name: b.BookerName},
		Item:   Ref{ID: b.ItemID, Name: b.ItemName},
	}
}

func ToBookingDtos(bookings []models.Booking) []BookingDto {
	out := make([]BookingDto, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ToBookingDto(b))
	}
	return out
}

func ToRequestDto(r models.RequestDetails) RequestDto {
	items := make([]ItemShort, 0, len(r.Items))
	for _, i := range r.Items {
		items = append(items, ItemShort{
			ID:          i.ID,
			Name:        i.Name,
			Description: i.Description,
			Available:   i.Available,
			RequestID:   i.RequestID,
			OwnerID:     i.OwnerID,
		})
	}
	return RequestDto{
		ID:          r.ID,
		Description: r.Description,
		Requester:   ToUserDto(r.Requester),
		Created:     NewTimestamp(r.Created),
		Items:       items,
	}
}

func ToRequestDtos(reqs []models.RequestDetails) []RequestDto {
	out := make([]RequestDto, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ToRequestDto(r))
	}
	return out
}
