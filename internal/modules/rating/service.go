package rating

import (
	"context"
	"errors"
	"fmt"

	"montafacil/internal/domain"
	"montafacil/internal/repository"
)

// Service accepts post-completion ratings, one per direction per service,
// and keeps the assembler's cached score in sync.
type Service struct {
	ratings      RatingRepository
	services     ServiceRepository
	stores       StoreReader
	assemblers   AssemblerReader
	applications ApplicationReader
	notifs       NotificationSender
	loggerf      func(format string, args ...interface{})
}

func NewService(
	ratings RatingRepository,
	services ServiceRepository,
	stores StoreReader,
	assemblers AssemblerReader,
	applications ApplicationReader,
	notifs NotificationSender,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		ratings:      ratings,
		services:     services,
		stores:       stores,
		assemblers:   assemblers,
		applications: applications,
		notifs:       notifs,
		loggerf:      loggerf,
	}
}

// Submit stores one rating from a participant toward the counterparty.
// A second submission in the same direction is rejected; once both sides
// have rated, the returned service reports both_ratings_completed.
func (s *Service) Submit(ctx context.Context, fromUserID, serviceID int64, req SubmitRequest) (*SubmitResult, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, fmt.Errorf("%w: score must be between 1 and 5", ErrValidation)
	}
	for _, aspect := range []*int{req.Punctuality, req.Quality, req.Compliance} {
		if aspect != nil && (*aspect < 1 || *aspect > 5) {
			return nil, fmt.Errorf("%w: aspect scores must be between 1 and 5", ErrValidation)
		}
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}
	if svc.Status != domain.ServiceCompleted {
		return nil, ErrNotCompleted
	}

	toUserID, byStore, err := s.resolveCounterparty(ctx, svc, fromUserID)
	if err != nil {
		return nil, err
	}

	exists, err := s.ratings.Exists(ctx, serviceID, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRated
	}

	rating := &domain.Rating{
		ServiceID:   serviceID,
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		Score:       req.Score,
		Comment:     req.Comment,
		Punctuality: req.Punctuality,
		Quality:     req.Quality,
		Compliance:  req.Compliance,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		// The unique index catches the race the Exists pre-check misses.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyRated
		}
		return nil, err
	}

	if byStore {
		s.refreshAssemblerScore(ctx, toUserID)
	}

	refreshed, err := s.services.SetRatingCompleted(ctx, serviceID, byStore)
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyRatingReceived(ctx, toUserID, serviceID, req.Score); err != nil {
			s.loggerf("level=warn msg=rating notification failed service_id=%d err=%v", serviceID, err)
		}
	}

	return &SubmitResult{Rating: rating, Service: refreshed}, nil
}

func (s *Service) ListByService(ctx context.Context, serviceID int64) ([]domain.Rating, error) {
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		return nil, ErrNotFound
	}
	return s.ratings.ListByService(ctx, serviceID)
}

// resolveCounterparty maps the rater onto the other side of the service:
// the store owner rates the accepted assembler's user and vice versa.
func (s *Service) resolveCounterparty(ctx context.Context, svc *domain.Service, fromUserID int64) (toUserID int64, byStore bool, err error) {
	store, err := s.stores.GetByID(ctx, svc.StoreID)
	if err != nil {
		return 0, false, err
	}

	accepted, err := s.applications.GetAccepted(ctx, svc.ID)
	if err != nil {
		return 0, false, err
	}

	var assemblerUserID int64
	if accepted != nil {
		if accepted.Assembler != nil {
			assemblerUserID = accepted.Assembler.UserID
		} else if a, err := s.assemblers.GetByID(ctx, accepted.AssemblerID); err == nil {
			assemblerUserID = a.UserID
		}
	}

	switch fromUserID {
	case store.UserID:
		if assemblerUserID == 0 {
			return 0, false, ErrNoCounterparty
		}
		return assemblerUserID, true, nil
	case assemblerUserID:
		return store.UserID, false, nil
	default:
		return 0, false, ErrForbidden
	}
}

// refreshAssemblerScore recomputes the cached mean. Best effort: a stale
// cache self-heals on the next rating.
func (s *Service) refreshAssemblerScore(ctx context.Context, assemblerUserID int64) {
	assembler, err := s.assemblers.GetByUserID(ctx, assemblerUserID)
	if err != nil {
		s.loggerf("level=warn msg=cached rating refresh skipped user_id=%d err=%v", assemblerUserID, err)
		return
	}
	mean, count, err := s.ratings.MeanForUser(ctx, assemblerUserID)
	if err != nil {
		s.loggerf("level=warn msg=cached rating mean query failed user_id=%d err=%v", assemblerUserID, err)
		return
	}
	if err := s.assemblers.UpdateCachedRating(ctx, assembler.ID, mean, count); err != nil {
		s.loggerf("level=warn msg=cached rating update failed assembler_id=%d err=%v", assembler.ID, err)
	}
}
