package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"shareit/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *mockRepo) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) UserExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) CreateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockRepo) UpdateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockRepo) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockRepo) ListItemsByOwner(ctx context.Context, ownerID int64, p models.Page) ([]models.Item, error) {
	args := m.Called(ctx, ownerID, p)
	return args.Get(0).([]models.Item), args.Error(1)
}
func (m *mockRepo) SearchItems(ctx context.Context, text string, p models.Page) ([]models.Item, error) {
	args := m.Called(ctx, text, p)
	return args.Get(0).([]models.Item), args.Error(1)
}
func (m *mockRepo) ListItemsByRequests(ctx context.Context, ids []int64) (map[int64][]models.Item, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64][]models.Item), args.Error(1)
}
func (m *mockRepo) DeleteItem(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) TransitionBookingStatus(ctx context.Context, id int64, to models.BookingStatus, from ...models.BookingStatus) error {
	return m.Called(ctx, id, to, from).Error(0)
}
func (m *mockRepo) ListBookings(ctx context.Context, f models.BookingFilter, p models.Page) ([]models.Booking, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockRepo) LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookerID, itemID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockRepo) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *mockRepo) CreateRequest(ctx context.Context, r *models.Request) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetRequestByID(ctx context.Context, id int64) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}
func (m *mockRepo) ListRequestsByRequester(ctx context.Context, id int64) ([]models.Request, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]models.Request), args.Error(1)
}
func (m *mockRepo) ListRequestsExcept(ctx context.Context, id int64, p models.Page) ([]models.Request, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *mockRepo) CreateOutboxEvent(ctx context.Context, ev *models.OutboxEvent) error {
	return m.Called(ctx, ev).Error(0)
}
func (m *mockRepo) PendingOutboxEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.OutboxEvent), args.Error(1)
}
func (m *mockRepo) UpdateOutboxStatus(ctx context.Context, id int64, status, errMsg string, next *time.Time) error {
	return m.Called(ctx, id, status, errMsg, next).Error(0)
}

func (m *mockRepo) PingContext(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, aggregateID int64, payload any) error {
	return m.Called(eventType, aggregateID, payload).Error(0)
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
