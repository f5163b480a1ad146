package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mocktestapp/mocktest-backend/internal/gemini"
	"github.com/mocktestapp/mocktest-backend/internal/middleware"
	"github.com/mocktestapp/mocktest-backend/internal/response"
)

// supportedUploadTypes are the document types the extractor accepts.
var supportedUploadTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"application/pdf": true,
}

// GenerationHandler turns uploaded question papers into test drafts.
type GenerationHandler struct {
	provider  gemini.Provider
	maxUpload int64
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(provider gemini.Provider, maxUpload int64) *GenerationHandler {
	return &GenerationHandler{provider: provider, maxUpload: maxUpload}
}

// Generate godoc
// POST /api/v1/generate (multipart)
// Form fields: "document" (required question paper), "answer_key"
// (optional). Returns extracted questions for the client to review before
// creating a test from them.
func (h *GenerationHandler) Generate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	paper, ok := h.readUpload(c, "document", true)
	if !ok {
		return
	}
	answerKey, ok := h.readUpload(c, "answer_key", false)
	if !ok {
		return
	}

	questions, err := h.provider.ExtractQuestions(c.Request.Context(), *paper, answerKey)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrExtractionFailed)
		return
	}

	// Drop anything structurally unusable instead of failing the batch;
	// scanned papers routinely contain a stray fragment or two.
	valid := questions[:0]
	for i := range questions {
		if err := questions[i].Validate(); err == nil {
			valid = append(valid, questions[i])
		}
	}
	if len(valid) == 0 {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrExtractionFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": valid})
}

// readUpload loads one multipart file into memory, enforcing the size cap
// and the supported content types. Returns ok=false after writing the
// error response.
func (h *GenerationHandler) readUpload(c *gin.Context, field string, required bool) (*gemini.Attachment, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		if required {
			response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
			return nil, false
		}
		return nil, true
	}

	if header.Size > h.maxUpload {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if !supportedUploadTypes[contentType] {
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		return nil, false
	}

	data, err := readAll(header)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}

	return &gemini.Attachment{Data: data, MIMEType: contentType}, true
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
