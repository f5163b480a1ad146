package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/repository"
)

var ErrInvalidTest = errors.New("test failed validation")

// TestService manages the test catalog: stock tests seeded at deploy time
// plus tests users create from extracted documents.
type TestService struct {
	tests *repository.TestRepository
	log   zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(tests *repository.TestRepository, log zerolog.Logger) *TestService {
	return &TestService{
		tests: tests,
		log:   log.With().Str("component", "test_service").Logger(),
	}
}

// Create validates and stores a user-generated test.
func (s *TestService) Create(ctx context.Context, ownerID uuid.UUID, req model.CreateTestRequest) (*model.Test, error) {
	category := req.Category
	if category == "" {
		category = "My Tests"
	}

	test := &model.Test{
		Title:           req.Title,
		Category:        category,
		Questions:       req.Questions,
		PositiveMarks:   req.PositiveMarks,
		NegativeMarks:   req.NegativeMarks,
		DurationMinutes: req.DurationMinutes,
		OwnerID:         &ownerID,
	}
	if err := test.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidTest, err)
	}

	if err := s.tests.Create(ctx, test); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Str("owner_id", ownerID.String()).
		Int("questions", len(test.Questions)).
		Msg("Test created")
	return test, nil
}

// List returns catalog summaries visible to the user.
func (s *TestService) List(ctx context.Context, userID uuid.UUID) ([]repository.TestSummary, error) {
	return s.tests.List(ctx, userID)
}

// Get returns a full test if the user may attempt it: stock tests are open
// to everyone, user tests only to their owner.
func (s *TestService) Get(ctx context.Context, id, userID uuid.UUID) (*model.Test, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.OwnerID != nil && *test.OwnerID != userID {
		return nil, repository.ErrTestNotFound
	}
	return test, nil
}

// Delete removes a user-owned test.
func (s *TestService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.tests.Delete(ctx, id, ownerID)
}
