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

type RequestService struct {
	users           domain.UserRepository
	items           domain.ItemRepository
	requests        domain.RequestRepository
	eventBus        domain.EventPublisher
	defaultPageSize int
	logger          zerolog.Logger
	now             func() time.Time
}

func NewRequestService(repo domain.Repository, eventBus domain.EventPublisher, defaultPageSize int, logger *zerolog.Logger) *RequestService {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &RequestService{
		users:           repo,
		items:           repo,
		requests:        repo,
		eventBus:        eventBus,
		defaultPageSize: defaultPageSize,
		logger:          logging.Component(logger, "request_service"),
		now:             systemNow,
	}
}

func (s *RequestService) Create(ctx context.Context, requesterID int64, req *models.Request) (*models.RequestDetails, error) {
	requester, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, repoErr(err, userNotFound(requesterID))
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, Invalid("description must not be blank")
	}

	req.RequesterID = requesterID
	req.Created = s.now()
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, repoErr(err, userNotFound(requesterID))
	}

	s.logger.Info().Int64("request_id", req.ID).Int64("requester_id", requesterID).Msg("request created")
	publish(s.eventBus, s.logger, events.EventRequestCreated, req.ID, events.RequestEventPayload{
		RequestID: req.ID, RequesterID: requesterID, Description: req.Description,
	})
	return &models.RequestDetails{Request: *req, Requester: *requester, Items: []models.Item{}}, nil
}

// ListOwn returns the caller's requests, newest first, with the items offered for each.
func (s *RequestService) ListOwn(ctx context.Context, requesterID int64) ([]models.RequestDetails, error) {
	requester, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, repoErr(err, userNotFound(requesterID))
	}
	reqs, err := s.requests.ListRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, reqs, map[int64]*models.User{requester.ID: requester})
}

// ListOthers pages through requests made by other users. A zero page size uses the default.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, page models.Page) ([]models.RequestDetails, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if !page.Bounded() {
		page.Size = s.defaultPageSize
	}
	reqs, err := s.requests.ListRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, reqs, map[int64]*models.User{})
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.RequestDetails, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, repoErr(err, requestNotFound(requestID))
	}
	out, err := s.attach(ctx, []models.Request{*req}, map[int64]*models.User{})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// attach resolves requesters (memoized in known) and answering items.
func (s *RequestService) attach(ctx context.Context, reqs []models.Request, known map[int64]*models.User) ([]models.RequestDetails, error) {
	ids := make([]int64, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID
	}
	itemsByRequest, err := s.items.ListItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.RequestDetails, 0, len(reqs))
	for _, r := range reqs {
		requester, ok := known[r.RequesterID]
		if !ok {
			requester, err = s.users.GetUserByID(ctx, r.RequesterID)
			if err != nil {
				return nil, repoErr(err, userNotFound(r.RequesterID))
			}
			known[r.RequesterID] = requester
		}
		items := itemsByRequest[r.ID]
		if items == nil {
			items = []models.Item{}
		}
		out = append(out, models.RequestDetails{Request: r, Requester: *requester, Items: items})
	}
	return out, nil
}
