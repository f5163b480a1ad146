package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mocktestapp/mocktest-backend/internal/middleware"
	"github.com/mocktestapp/mocktest-backend/internal/repository"
	"github.com/mocktestapp/mocktest-backend/internal/response"
	"github.com/mocktestapp/mocktest-backend/internal/service"
	"github.com/mocktestapp/mocktest-backend/internal/session"
	"github.com/mocktestapp/mocktest-backend/internal/validator"
)

// AttemptHandler drives live attempts: it resolves the test, starts the
// session and maps every navigation command onto the session manager.
type AttemptHandler struct {
	manager     *session.Manager
	testService *service.TestService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(manager *session.Manager, testService *service.TestService) *AttemptHandler {
	return &AttemptHandler{manager: manager, testService: testService}
}

type startAttemptRequest struct {
	TestID string `json:"test_id" binding:"required,uuid"`
}

type selectOptionRequest struct {
	Option int `json:"option" binding:"min=0"`
}

type jumpRequest struct {
	Question int `json:"question" binding:"min=0"`
}

// Start godoc
// POST /api/v1/attempts
// Starting a test the user already has a live session on resumes it.
func (h *AttemptHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req startAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	testID, err := uuid.Parse(req.TestID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	test, err := h.testService.Get(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	view, err := h.manager.Start(claims.UserID, *test)
	if err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidTest)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attempt": view})
}

// State godoc
// GET /api/v1/attempts/:id
func (h *AttemptHandler) State(c *gin.Context) {
	h.command(c, func(id, userID uuid.UUID) (session.View, error) {
		return h.manager.View(id, userID)
	})
}

// SelectOption godoc
// POST /api/v1/attempts/:id/select
func (h *AttemptHandler) SelectOption(c *gin.Context) {
	var req selectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.command(c, func(id, userID uuid.UUID) (session.View, error) {
		return h.manager.SelectOption(id, userID, req.Option)
	})
}

// SaveAndNext godoc
// POST /api/v1/attempts/:id/save-next
func (h *AttemptHandler) SaveAndNext(c *gin.Context) {
	h.command(c, h.manager.SaveAndNext)
}

// MarkAndNext godoc
// POST /api/v1/attempts/:id/mark-next
func (h *AttemptHandler) MarkAndNext(c *gin.Context) {
	h.command(c, h.manager.MarkAndNext)
}

// ClearResponse godoc
// POST /api/v1/attempts/:id/clear
func (h *AttemptHandler) ClearResponse(c *gin.Context) {
	h.command(c, h.manager.ClearResponse)
}

// JumpTo godoc
// POST /api/v1/attempts/:id/jump
func (h *AttemptHandler) JumpTo(c *gin.Context) {
	var req jumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.command(c, func(id, userID uuid.UUID) (session.View, error) {
		return h.manager.JumpTo(id, userID, req.Question)
	})
}

// Pause godoc
// POST /api/v1/attempts/:id/pause
func (h *AttemptHandler) Pause(c *gin.Context) {
	h.command(c, h.manager.Pause)
}

// Resume godoc
// POST /api/v1/attempts/:id/resume
func (h *AttemptHandler) Resume(c *gin.Context) {
	h.command(c, h.manager.Resume)
}

// Submit godoc
// POST /api/v1/attempts/:id/submit
// Returns the aggregated result; rank and percentile may be the fallback
// standing when the ranking store is slow or down.
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.manager.Submit(c.Request.Context(), id, claims.UserID)
	if err != nil {
		h.failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// command runs one manager operation addressed by the :id path param and
// renders the resulting session view.
func (h *AttemptHandler) command(c *gin.Context, fn func(id, userID uuid.UUID) (session.View, error)) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := fn(id, claims.UserID)
	if err != nil {
		h.failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

func (h *AttemptHandler) failAttempt(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, session.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, session.ErrAlreadyFinished), errors.Is(err, session.ErrTerminated):
		response.Fail(c, http.StatusConflict, response.ErrAttemptFinished)
	default:
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrAttemptCommand)
	}
}
