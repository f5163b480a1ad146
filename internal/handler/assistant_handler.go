package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mocktestapp/mocktest-backend/internal/gemini"
	"github.com/mocktestapp/mocktest-backend/internal/middleware"
	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/response"
	"github.com/mocktestapp/mocktest-backend/internal/validator"
)

// supportedChatImageTypes are the photo formats a chat turn may attach.
// PDFs stay with the generation endpoint.
var supportedChatImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// AssistantHandler serves explanation, translation and chat requests.
type AssistantHandler struct {
	provider  gemini.Provider
	maxUpload int64
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(provider gemini.Provider, maxUpload int64) *AssistantHandler {
	return &AssistantHandler{provider: provider, maxUpload: maxUpload}
}

type explainRequest struct {
	Question model.Question `json:"question" binding:"required"`
	Detailed bool           `json:"detailed"`
}

type translateRequest struct {
	Question       string   `json:"question" binding:"required"`
	Options        []string `json:"options" binding:"required,min=2"`
	TargetLanguage string   `json:"target_language" binding:"required,oneof=Hindi English"`
}

// chatImage is a base64-encoded photo of a question attached to a chat
// message.
type chatImage struct {
	Data     string `json:"data" binding:"required"`
	MIMEType string `json:"mime_type" binding:"required"`
}

type chatRequest struct {
	History []gemini.ChatTurn `json:"history" binding:"omitempty,dive"`
	Message string            `json:"message" binding:"required,max=4000"`
	Image   *chatImage        `json:"image" binding:"omitempty"`
}

// Explain godoc
// POST /api/v1/assistant/explain
func (h *AssistantHandler) Explain(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req explainRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if err := req.Question.Validate(); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidPayload)
		return
	}

	explanation, err := h.provider.Explain(c.Request.Context(), req.Question, req.Detailed)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"explanation": explanation})
}

// Translate godoc
// POST /api/v1/assistant/translate
func (h *AssistantHandler) Translate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req translateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	translation, err := h.provider.Translate(c.Request.Context(), req.Question, req.Options, req.TargetLanguage)
	if err != nil {
		// The original text is still usable; return it as the fallback.
		response.Success(c, http.StatusOK, gin.H{
			"translation": gemini.Translation{Question: req.Question, Options: req.Options},
			"degraded":    true,
		})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"translation": translation})
}

// Chat godoc
// POST /api/v1/assistant/chat
func (h *AssistantHandler) Chat(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req chatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	image, ok := h.decodeChatImage(c, req.Image)
	if !ok {
		return
	}

	reply, err := h.provider.Chat(c.Request.Context(), req.History, req.Message, image)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reply": reply})
}

// decodeChatImage turns the optional base64 attachment into an Attachment,
// enforcing the same size cap and type rules as document uploads. Returns
// ok=false after writing the error response.
func (h *AssistantHandler) decodeChatImage(c *gin.Context, img *chatImage) (*gemini.Attachment, bool) {
	if img == nil {
		return nil, true
	}

	if !supportedChatImageTypes[img.MIMEType] {
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		return nil, false
	}

	// Base64 inflates by 4/3; reject before decoding what cannot fit.
	if int64(len(img.Data)) > h.maxUpload*4/3+4 {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return nil, false
	}

	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return nil, false
	}
	if int64(len(data)) > h.maxUpload {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return nil, false
	}

	return &gemini.Attachment{Data: data, MIMEType: img.MIMEType}, true
}
