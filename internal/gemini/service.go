// Package gemini is a thin wrapper over the genai generateContent call.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"multichat/internal/conversation"
	"multichat/internal/logging"

	"google.golang.org/genai"
)

// DefaultModel is the model queried when no option overrides it.
const DefaultModel = "gemini-2.5-flash"

// NoResponse is returned when the upstream reply carries no text.
const NoResponse = "No response"

// ErrMissingAPIKey is returned by New for an empty key.
var ErrMissingAPIKey = errors.New("gemini: API key is required")

// Models is the slice of genai.Models used here.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Service sends a conversation to Gemini in one request.
type Service struct {
	models Models
	model  string
}

// Option configures a Service.
type Option func(*options)

type options struct {
	model  string
	models Models
	config *genai.ClientConfig
}

// WithModel overrides DefaultModel.
func WithModel(name string) Option {
	return func(o *options) {
		if name != "" {
			o.model = name
		}
	}
}

// WithModels injects the backend, skipping genai client construction.
func WithModels(m Models) Option {
	return func(o *options) { o.models = m }
}

// WithClientConfig replaces the genai client config. APIKey is still taken
// from New.
func WithClientConfig(cfg *genai.ClientConfig) Option {
	return func(o *options) { o.config = cfg }
}

// New creates a Service authenticated with apiKey.
func New(ctx context.Context, apiKey string, opts ...Option) (*Service, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	o := options{model: DefaultModel}
	for _, opt := range opts {
		opt(&o)
	}

	if o.models == nil {
		cfg := o.config
		if cfg == nil {
			cfg = &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
		}
		cfg.APIKey = apiKey
		client, err := genai.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("gemini: create client: %w", err)
		}
		o.models = client.Models
	}

	return &Service{models: o.models, model: o.model}, nil
}

// Model returns the model name in use.
func (s *Service) Model() string {
	return s.model
}

// Generate implements conversation.Generator.
func (s *Service) Generate(ctx context.Context, messages []conversation.Message) (string, error) {
	return s.GenerateContent(ctx, messages)
}

// GenerateContent joins every message text with newlines into one prompt,
// appends attached images as inline parts, and returns the reply text.
func (s *Service) GenerateContent(ctx context.Context, messages []conversation.Message) (string, error) {
	contents := BuildContents(messages)

	timer := logging.StartTimer(logging.CategoryAPI, "generateContent "+s.model)
	resp, err := s.models.GenerateContent(ctx, s.model, contents, nil)
	timer.StopWithThreshold(30 * time.Second)
	if err != nil {
		logging.APIError("generateContent %s: %v", s.model, err)
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := ResponseText(resp)
	if text == "" {
		return NoResponse, nil
	}
	logging.API("generateContent %s: %d chars", s.model, len(text))
	return text, nil
}

// BuildContents builds the single user content sent upstream.
func BuildContents(messages []conversation.Message) []*genai.Content {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		texts = append(texts, m.Text)
	}

	parts := []*genai.Part{genai.NewPartFromText(strings.Join(texts, "\n"))}
	for _, m := range messages {
		if m.Image != nil && len(m.Image.Data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(m.Image.Data, m.Image.MIMEType))
		}
	}

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// ResponseText concatenates the text parts of the first candidate.
// Thought parts are skipped.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
