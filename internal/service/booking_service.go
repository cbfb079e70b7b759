package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/models"
)

type BookingService struct {
	users    domain.UserRepository
	items    domain.ItemRepository
	bookings domain.BookingRepository
	eventBus domain.EventPublisher
	logger   zerolog.Logger
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		users:    repo,
		items:    repo,
		bookings: repo,
		eventBus: eventBus,
		logger:   logging.Component(logger, "booking_service"),
		now:      systemNow,
	}
}

// Create books an item for bookerID. The booking starts out WAITING.
func (s *BookingService) Create(ctx context.Context, bookerID int64, booking *models.Booking) error {
	booker, err := s.users.GetUserByID(ctx, bookerID)
	if err != nil {
		return repoErr(err, userNotFound(bookerID))
	}
	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return repoErr(err, itemNotFound(booking.ItemID))
	}
	if !item.Available {
		return Invalid("item %d is not available", item.ID)
	}
	if item.OwnerID == bookerID {
		return NotFound("item %d cannot be booked by its owner", item.ID)
	}
	if booking.Start.IsZero() || booking.End.IsZero() {
		return Invalid("start and end are required")
	}
	if !booking.End.After(booking.Start) {
		return Invalid("end must be after start")
	}

	booking.BookerID = bookerID
	booking.BookerName = booker.Name
	booking.Status = models.BookingWaiting
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, database.ErrNotAvailable) {
			return Invalid("item %d is not available", item.ID)
		}
		return repoErr(err, itemNotFound(booking.ItemID))
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", booking.ItemID).
		Int64("booker_id", bookerID).
		Msg("booking created")
	s.publishBooking(events.EventBookingCreated, booking, bookerID)
	return nil
}

// Approve lets the item owner approve or reject a WAITING booking.
func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	if err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, repoErr(err, bookingNotFound(bookingID))
	}
	if booking.ItemOwnerID != ownerID {
		return nil, NotFound("booking %d not found for owner %d", bookingID, ownerID)
	}
	if booking.Status != models.BookingWaiting {
		return nil, Invalid("booking %d is already %s", bookingID, booking.Status)
	}

	to, eventType := models.BookingRejected, events.EventBookingRejected
	if approved {
		to, eventType = models.BookingApproved, events.EventBookingApproved
	}
	if err := s.transition(ctx, booking, to, models.BookingWaiting); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(to)).Msg("booking reviewed")
	s.publishBooking(eventType, booking, ownerID)
	return booking, nil
}

// Cancel lets the booker withdraw a WAITING or APPROVED booking that has not started.
func (s *BookingService) Cancel(ctx context.Context, bookerID, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, repoErr(err, bookingNotFound(bookingID))
	}
	if booking.BookerID != bookerID {
		return nil, NotFound("booking %d not found for booker %d", bookingID, bookerID)
	}
	if booking.Status != models.BookingWaiting && booking.Status != models.BookingApproved {
		return nil, Invalid("booking %d is already %s", bookingID, booking.Status)
	}
	if !s.now().Before(booking.Start) {
		return nil, Invalid("booking %d has already started", bookingID)
	}

	if err := s.transition(ctx, booking, models.BookingCanceled, models.BookingWaiting, models.BookingApproved); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", bookingID).Msg("booking canceled")
	s.publishBooking(events.EventBookingCanceled, booking, bookerID)
	return booking, nil
}

// Get returns a booking visible to its booker or the item owner.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, repoErr(err, bookingNotFound(bookingID))
	}
	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return nil, NotFound("booking %d not found for user %d", bookingID, userID)
	}
	return booking, nil
}

func (s *BookingService) ListForBooker(ctx context.Context, bookerID int64, state models.BookingState, page models.Page) ([]models.Booking, error) {
	return s.list(ctx, models.BookingFilter{BookerID: bookerID, State: state}, page)
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]models.Booking, error) {
	return s.list(ctx, models.BookingFilter{OwnerID: ownerID, State: state}, page)
}

func (s *BookingService) list(ctx context.Context, filter models.BookingFilter, page models.Page) ([]models.Booking, error) {
	userID := filter.BookerID
	if userID == 0 {
		userID = filter.OwnerID
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if filter.State == "" {
		filter.State = models.StateAll
	}
	filter.Now = s.now()

	bookings, err := s.bookings.ListBookings(ctx, filter, page)
	if errors.Is(err, models.ErrUnsupportedState) {
		return nil, Invalid("%s", models.UnsupportedStateMessage)
	}
	return bookings, err
}

func (s *BookingService) transition(ctx context.Context, booking *models.Booking, to models.BookingStatus, from ...models.BookingStatus) error {
	err := s.bookings.TransitionBookingStatus(ctx, booking.ID, to, from...)
	switch {
	case errors.Is(err, database.ErrConflict):
		return Invalid("booking %d changed concurrently", booking.ID)
	case err != nil:
		return err
	}
	booking.Status = to
	return nil
}

func (s *BookingService) publishBooking(eventType string, b *models.Booking, actor int64) {
	publish(s.eventBus, s.logger, eventType, b.ID, events.BookingEventPayload{
		BookingID: b.ID,
		ItemID:    b.ItemID,
		ItemName:  b.ItemName,
		OwnerID:   b.ItemOwnerID,
		BookerID:  b.BookerID,
		Status:    string(b.Status),
		Start:     b.Start,
		End:       b.End,
		ChangedBy: actor,
	})
}
