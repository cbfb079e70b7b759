package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) (map[int64][]models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	TransitionBookingStatus(ctx context.Context, id int64, to models.BookingStatus, from ...models.BookingStatus) error
	ListBookings(ctx context.Context, filter models.BookingFilter, page models.Page) ([]models.Booking, error)
	LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, req *models.Request) error
	GetRequestByID(ctx context.Context, id int64) (*models.Request, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]models.Request, error)
	ListRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]models.Request, error)
}

type OutboxRepository interface {
	CreateOutboxEvent(ctx context.Context, ev *models.OutboxEvent) error
	PendingOutboxEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	UpdateOutboxStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// Repository is everything database.DB implements.
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository
	OutboxRepository
	PingContext(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, aggregateID int64, payload any) error
}

// MessagePublisher delivers an encoded event to an external broker.
type MessagePublisher interface {
	Publish(ctx context.Context, key, value []byte, headers map[string]string) error
	Close() error
}

// RateLimiter admits or rejects a request for a caller key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type UserService interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item) error
	Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	Get(ctx context.Context, viewerID, itemID int64) (*models.ItemDetails, error)
	ListByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.ItemDetails, error)
	Search(ctx context.Context, text string, page models.Page) ([]models.Item, error)
	Delete(ctx context.Context, ownerID, itemID int64) error
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	Create(ctx context.Context, bookerID int64, booking *models.Booking) error
	Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error)
	Cancel(ctx context.Context, bookerID, bookingID int64) (*models.Booking, error)
	Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListForBooker(ctx context.Context, bookerID int64, state models.BookingState, page models.Page) ([]models.Booking, error)
	ListForOwner(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]models.Booking, error)
}

type RequestService interface {
	Create(ctx context.Context, requesterID int64, req *models.Request) (*models.RequestDetails, error)
	ListOwn(ctx context.Context, requesterID int64) ([]models.RequestDetails, error)
	ListOthers(ctx context.Context, userID int64, page models.Page) ([]models.RequestDetails, error)
	Get(ctx context.Context, userID, requestID int64) (*models.RequestDetails, error)
}
