package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/models"
)

type ItemService struct {
	users    domain.UserRepository
	items    domain.ItemRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	requests domain.RequestRepository
	eventBus domain.EventPublisher
	logger   zerolog.Logger
	now      func() time.Time
}

func NewItemService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		users:    repo,
		items:    repo,
		bookings: repo,
		comments: repo,
		requests: repo,
		eventBus: eventBus,
		logger:   logging.Component(logger, "item_service"),
		now:      systemNow,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) error {
	if err := requireUser(ctx, s.users, ownerID); err != nil {
		return err
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return Invalid("name must not be blank")
	}
	if strings.TrimSpace(item.Description) == "" {
		return Invalid("description must not be blank")
	}
	if item.RequestID != nil {
		if _, err := s.requests.GetRequestByID(ctx, *item.RequestID); err != nil {
			return repoErr(err, requestNotFound(*item.RequestID))
		}
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, item); err != nil {
		return repoErr(err, userNotFound(ownerID))
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	publish(s.eventBus, s.logger, events.EventItemCreated, item.ID, itemPayload(item))
	return nil
}

// Update applies patch to an item owned by ownerID.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, Invalid("name must not be blank")
		}
		item.Name = name
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, Invalid("description must not be blank")
		}
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, repoErr(err, itemNotFound(itemID))
	}
	publish(s.eventBus, s.logger, events.EventItemUpdated, item.ID, itemPayload(item))
	return item, nil
}

// Get returns the item with its comments; booking windows only for the owner.
func (s *ItemService) Get(ctx context.Context, viewerID, itemID int64) (*models.ItemDetails, error) {
	if err := requireUser(ctx, s.users, viewerID); err != nil {
		return nil, err
	}
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, repoErr(err, itemNotFound(itemID))
	}
	return s.details(ctx, *item, item.OwnerID == viewerID)
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.ItemDetails, error) {
	if err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	items, err := s.items.ListItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	out := make([]models.ItemDetails, 0, len(items))
	for _, it := range items {
		d, err := s.details(ctx, it, true)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// Search finds available items by name or description. Blank text finds nothing.
func (s *ItemService) Search(ctx context.Context, text string, page models.Page) ([]models.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.Item{}, nil
	}
	return s.items.SearchItems(ctx, text, page)
}

func (s *ItemService) Delete(ctx context.Context, ownerID, itemID int64) error {
	if _, err := s.ownedItem(ctx, ownerID, itemID); err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		return repoErr(err, itemNotFound(itemID))
	}
	s.logger.Info().Int64("item_id", itemID).Msg("item deleted")
	publish(s.eventBus, s.logger, events.EventItemDeleted, itemID, events.ItemEventPayload{ItemID: itemID, OwnerID: ownerID})
	return nil
}

// AddComment lets a user who finished an approved booking of the item leave a comment.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, Invalid("text must not be blank")
	}
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, repoErr(err, userNotFound(authorID))
	}
	if _, err := s.items.GetItemByID(ctx, itemID); err != nil {
		return nil, repoErr(err, itemNotFound(itemID))
	}

	now := s.now()
	ok, err := s.bookings.HasFinishedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Invalid("user %d has no completed booking of item %d", authorID, itemID)
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, repoErr(err, itemNotFound(itemID))
	}

	publish(s.eventBus, s.logger, events.EventCommentAdded, itemID, events.CommentEventPayload{
		CommentID: comment.ID, ItemID: itemID, AuthorID: authorID, Text: comment.Text,
	})
	return comment, nil
}

func (s *ItemService) ownedItem(ctx context.Context, ownerID, itemID int64) (*models.Item, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, repoErr(err, itemNotFound(itemID))
	}
	if item.OwnerID != ownerID {
		return nil, NotFound("item with id %d not found for user %d", itemID, ownerID)
	}
	return item, nil
}

func (s *ItemService) details(ctx context.Context, item models.Item, withBookings bool) (*models.ItemDetails, error) {
	d := &models.ItemDetails{Item: item}

	comments, err := s.comments.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	d.Comments = comments

	if !withBookings {
		return d, nil
	}

	now := s.now()
	if d.LastBooking, err = s.bookings.LastBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	if d.NextBooking, err = s.bookings.NextBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	return d, nil
}

func itemPayload(item *models.Item) events.ItemEventPayload {
	return events.ItemEventPayload{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		Name:      item.Name,
		Available: item.Available,
		RequestID: item.RequestID,
	}
}
