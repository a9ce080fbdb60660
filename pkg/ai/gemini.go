package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig defines configuration options for the Gemini rater.
type GeminiConfig struct {
	APIKey string
	Model  string
	Logger zerolog.Logger
}

// GeminiRater implements DocumentRater and TextRater against the Gemini API.
type GeminiRater struct {
	client    *genai.Client
	modelName string
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewGeminiRater creates a rater configured for the Gemini API backend.
func NewGeminiRater(ctx context.Context, cfg GeminiConfig) (*GeminiRater, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &GeminiRater{
		client:    client,
		modelName: model,
		tracer:    otel.Tracer("github.com/arisylafeta/aadf-procurement/pkg/ai/gemini"),
		logger:    logger,
	}, nil
}

// RateDocument sends the prompt plus the document as an inline blob part and
// parses the structured response.
func (r *GeminiRater) RateDocument(ctx context.Context, prompt string, document []byte, mediaType string) (DocumentRating, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: ratingSystemPrompt() + "\n\n" + prompt},
			{InlineData: &genai.Blob{MIMEType: mediaType, Data: document}},
		},
	}}

	return r.generate(ctx, "gemini.rate_document", contents)
}

// RateText sends a text-only rating prompt to Gemini.
func (r *GeminiRater) RateText(ctx context.Context, prompt string) (DocumentRating, error) {
	return r.generate(ctx, "gemini.rate_text", genai.Text(ratingSystemPrompt()+"\n\n"+prompt))
}

func (r *GeminiRater) generate(parent context.Context, spanName string, contents []*genai.Content) (DocumentRating, error) {
	ctx, span := r.tracer.Start(parent, spanName, trace.WithAttributes(
		attribute.String("model", r.modelName),
	))
	defer span.End()

	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	start := time.Now()
	resp, err := r.client.Models.GenerateContent(ctx, r.modelName, contents, config)
	aiDuration.WithLabelValues("gemini", r.modelName).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues("gemini", r.modelName).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DocumentRating{}, fmt.Errorf("gemini rate: %w", err)
	}

	text := collectCandidateText(resp)
	if text == "" {
		err := errors.New("gemini api returned empty response")
		aiFailures.WithLabelValues("gemini", r.modelName).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DocumentRating{}, err
	}

	rating, err := parseRatingResponse(text)
	if err != nil {
		aiFailures.WithLabelValues("gemini", r.modelName).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DocumentRating{}, err
	}

	return rating, nil
}

func collectCandidateText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
