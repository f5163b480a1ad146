package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

// HistoryService serves a user's attempt history. The durable store is
// preferred; the Redis cache answers when the durable store is empty or
// unreachable, so a fresh result stays visible through a database outage.
type HistoryService struct {
	history HistoryStore
	cache   HistoryBackup
	limit   int
	log     zerolog.Logger
}

// NewHistoryService creates a HistoryService returning at most limit
// results per user.
func NewHistoryService(history HistoryStore, cache HistoryBackup, limit int, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		history: history,
		cache:   cache,
		limit:   limit,
		log:     log.With().Str("component", "history_service").Logger(),
	}
}

// List returns the user's results newest first.
func (s *HistoryService) List(ctx context.Context, userID uuid.UUID) ([]model.Result, error) {
	results, err := s.history.ListByUser(ctx, userID, s.limit)
	if err == nil && len(results) > 0 {
		return results, nil
	}
	if err != nil {
		s.log.Warn().Err(err).
			Str("user_id", userID.String()).
			Msg("Durable history unavailable, falling back to cache")
	}

	cached, cacheErr := s.cache.List(ctx, userID)
	if cacheErr != nil {
		if err != nil {
			// Both stores failed; report the durable one.
			return nil, err
		}
		return nil, cacheErr
	}
	return cached, nil
}

// Get returns one result owned by the user.
func (s *HistoryService) Get(ctx context.Context, id, userID uuid.UUID) (*model.Result, error) {
	res, err := s.history.GetByID(ctx, id, userID)
	if err == nil {
		return res, nil
	}

	cached, cacheErr := s.cache.List(ctx, userID)
	if cacheErr != nil {
		return nil, err
	}
	for i := range cached {
		if cached[i].ID == id {
			return &cached[i], nil
		}
	}
	return nil, err
}

// Clear removes the user's history from both stores.
func (s *HistoryService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.history.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.cache.Clear(ctx, userID)
}
