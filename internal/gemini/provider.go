// Package gemini wraps the Google GenAI client behind a Provider interface
// so handlers and tests never touch the SDK directly.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

// Attachment is a binary document handed to the model inline.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// ChatTurn is one prior exchange in an assistant conversation.
type ChatTurn struct {
	Role string `json:"role" binding:"required,oneof=user model"`
	Text string `json:"text" binding:"required"`
}

// Translation is the structured output of Translate.
type Translation struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Provider is the generative surface the application depends on.
type Provider interface {
	// ExtractQuestions reads a question paper (image or PDF) and returns
	// the questions it contains. An optional answer key document pins the
	// correct options.
	ExtractQuestions(ctx context.Context, paper Attachment, answerKey *Attachment) ([]model.Question, error)
	// Explain produces a short bilingual explanation of one question.
	Explain(ctx context.Context, q model.Question, detailed bool) (string, error)
	// Translate renders a question and its options into the target language.
	Translate(ctx context.Context, question string, options []string, targetLanguage string) (Translation, error)
	// Chat answers a student message given the prior conversation.
	Chat(ctx context.Context, history []ChatTurn, message string, image *Attachment) (string, error)
}

const (
	extractionModel = "gemini-2.5-flash"
	explainModel    = "gemini-flash-lite-latest"
	detailedModel   = "gemini-2.5-flash"
	chatModel       = "gemini-2.5-flash"
)

var ErrEmptyResponse = errors.New("empty response from model")

type geminiProvider struct {
	client *genai.Client
	log    zerolog.Logger
}

// NewProvider creates a Provider backed by the Gemini API. The API key is
// read from the environment by the SDK (GEMINI_API_KEY).
func NewProvider(ctx context.Context, log zerolog.Logger) (Provider, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &geminiProvider{
		client: client,
		log:    log.With().Str("component", "gemini_provider").Logger(),
	}, nil
}

// questionSchema constrains extraction output to the question shape,
// including the optional second-language mirrors.
var questionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question":      {Type: genai.TypeString},
			"questionHindi": {Type: genai.TypeString, Description: "Question text in Hindi if available"},
			"options": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"optionsHindi": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Options in Hindi if available",
			},
			"correctOption": {
				Type:        genai.TypeInteger,
				Description: "The index (0-based) of the correct option in the options array.",
			},
		},
		Required: []string{"question", "options", "correctOption"},
	},
}

func (p *geminiProvider) ExtractQuestions(ctx context.Context, paper Attachment, answerKey *Attachment) ([]model.Question, error) {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{Data: paper.Data, MIMEType: paper.MIMEType}},
	}

	prompt := extractionPrompt
	if answerKey != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: answerKey.Data, MIMEType: answerKey.MIMEType},
		})
		prompt += answerKeyPrompt
	}
	parts = append(parts, &genai.Part{Text: prompt})

	result, err := p.client.Models.GenerateContent(
		ctx,
		extractionModel,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   questionSchema,
		},
	)
	if err != nil {
		p.log.Error().Err(err).Msg("Question extraction request failed")
		return nil, fmt.Errorf("failed to extract questions: %w", err)
	}

	raw := result.Text()
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	// The response schema uses camelCase keys, so decode into a local
	// shape before converting to the model type.
	var extracted []struct {
		Question      string   `json:"question"`
		QuestionHindi string   `json:"questionHindi"`
		Options       []string `json:"options"`
		OptionsHindi  []string `json:"optionsHindi"`
		CorrectOption int      `json:"correctOption"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &extracted); err != nil {
		p.log.Error().Err(err).Msg("Failed to decode extracted questions")
		return nil, fmt.Errorf("failed to decode extracted questions: %w", err)
	}

	questions := make([]model.Question, 0, len(extracted))
	for _, e := range extracted {
		questions = append(questions, model.Question{
			Text:          e.Question,
			TextHindi:     e.QuestionHindi,
			Options:       e.Options,
			OptionsHindi:  e.OptionsHindi,
			CorrectOption: e.CorrectOption,
		})
	}

	p.log.Info().Int("questions", len(questions)).Msg("Questions extracted")
	return questions, nil
}

func (p *geminiProvider) Explain(ctx context.Context, q model.Question, detailed bool) (string, error) {
	modelName := explainModel
	prompt := buildExplainPrompt(q)
	if detailed {
		modelName = detailedModel
		prompt = buildDetailedExplainPrompt(q)
	}

	result, err := p.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), nil)
	if err != nil {
		p.log.Error().Err(err).Msg("Explanation request failed")
		return "", fmt.Errorf("failed to get explanation: %w", err)
	}
	if result.Text() == "" {
		return "", ErrEmptyResponse
	}
	return result.Text(), nil
}

func (p *geminiProvider) Translate(ctx context.Context, question string, options []string, targetLanguage string) (Translation, error) {
	result, err := p.client.Models.GenerateContent(
		ctx,
		extractionModel,
		genai.Text(buildTranslatePrompt(question, options, targetLanguage)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": {Type: genai.TypeString},
					"options": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"question", "options"},
			},
		},
	)
	if err != nil {
		p.log.Error().Err(err).Msg("Translation request failed")
		return Translation{}, fmt.Errorf("failed to translate: %w", err)
	}

	raw := result.Text()
	if raw == "" {
		return Translation{}, ErrEmptyResponse
	}

	var t Translation
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &t); err != nil {
		return Translation{}, fmt.Errorf("failed to decode translation: %w", err)
	}
	return t, nil
}

func (p *geminiProvider) Chat(ctx context.Context, history []ChatTurn, message string, image *Attachment) (string, error) {
	var parts []*genai.Part
	prompt := buildChatPrompt(history, message)

	if image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: image.Data, MIMEType: image.MIMEType},
		})
		prompt += "\n[Attached Image]"
	}
	parts = append(parts, &genai.Part{Text: prompt})

	result, err := p.client.Models.GenerateContent(ctx, chatModel, []*genai.Content{{Parts: parts}}, nil)
	if err != nil {
		p.log.Error().Err(err).Msg("Chat request failed")
		return "", fmt.Errorf("failed to chat: %w", err)
	}
	if result.Text() == "" {
		return "", ErrEmptyResponse
	}
	return result.Text(), nil
}

// cleanJSON strips the code fences some models wrap JSON output in even
// when a JSON response type is requested.
func cleanJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimSuffix(clean, "```")
	return strings.Trim(clean, "`")
}
