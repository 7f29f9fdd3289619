package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/krishkalaria12/snap-vault/config"
	"google.golang.org/genai"
)

const (
	AnalysisPrompt = "Analyze this image and provide a detailed description of what you see. Include details about objects, people, scenery, colors, and any notable elements."

	// NoAnalysisAvailable is stored when the model answers without any text.
	NoAnalysisAvailable = "No analysis available"
)

// Fixed generation parameters; callers cannot tune them.
const (
	temperature     float32 = 0.4
	topK            float32 = 32
	topP            float32 = 1
	maxOutputTokens int32   = 1024
)

var ErrNotConfigured = errors.New("image analysis is not configured")

// Payload is an image ready to be sent inline.
type Payload struct {
	Data     []byte
	MIMEType string
}

type AnnotationKind int

const (
	AnnotationEmpty AnnotationKind = iota
	AnnotationText
)

// Annotation is the decoded model answer: either text, or the empty variant
// when the first candidate carried nothing usable.
type Annotation struct {
	Kind AnnotationKind
	Text string
}

func (a Annotation) Description() string {
	switch a.Kind {
	case AnnotationText:
		return a.Text
	case AnnotationEmpty:
		return NoAnalysisAvailable
	default:
		return NoAnalysisAvailable
	}
}

type Describer interface {
	Describe(ctx context.Context, payload Payload) (Annotation, error)
}

// StatusError is a non-success answer from the vision API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return "Gemini API error: " + e.Message
}

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{client: client, model: cfg.Model}, nil
}

func (g *Gemini) Describe(ctx context.Context, payload Payload) (Annotation, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(AnalysisPrompt),
			genai.NewPartFromBytes(payload.Data, payload.MIMEType),
		}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, generationConfig())
	if err != nil {
		return Annotation{}, translateError(err)
	}

	return annotationFrom(result), nil
}

func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		TopK:            genai.Ptr(topK),
		TopP:            genai.Ptr(topP),
		MaxOutputTokens: maxOutputTokens,
	}
}

// annotationFrom reads candidates[0].content.parts[0].text.
func annotationFrom(result *genai.GenerateContentResponse) Annotation {
	empty := Annotation{Kind: AnnotationEmpty}

	if result == nil || len(result.Candidates) == 0 {
		return empty
	}

	candidate := result.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return empty
	}

	part := candidate.Content.Parts[0]
	if part == nil || strings.TrimSpace(part.Text) == "" {
		return empty
	}

	return Annotation{Kind: AnnotationText, Text: part.Text}
}

func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return statusError(*apiErrPtr)
	}

	return fmt.Errorf("Gemini API error: %w", err)
}

func statusError(apiErr genai.APIError) *StatusError {
	message := apiErr.Message
	if message == "" {
		message = http.StatusText(apiErr.Code)
	}
	return &StatusError{Code: apiErr.Code, Message: message}
}

// Disabled stands in when no API key is configured.
type Disabled struct{}

func (Disabled) Describe(ctx context.Context, payload Payload) (Annotation, error) {
	return Annotation{}, ErrNotConfigured
}
