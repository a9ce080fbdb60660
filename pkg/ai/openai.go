package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "procura",
		Subsystem: "ai",
		Name:      "rating_duration_seconds",
		Help:      "Duration of AI rating requests",
	}, []string{"provider", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procura",
		Subsystem: "ai",
		Name:      "rating_failures_total",
		Help:      "Number of AI rating failures",
	}, []string{"provider", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI rater.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIRater implements DocumentRater and TextRater against the OpenAI chat
// completion API.
type OpenAIRater struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIRater builds a new rater using the provided configuration.
func NewOpenAIRater(cfg OpenAIConfig) (*OpenAIRater, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/arisylafeta/aadf-procurement/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIRater{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// RateDocument sends the prompt plus the document (as an inline data URL) to
// OpenAI and parses the structured response.
func (r *OpenAIRater) RateDocument(parent context.Context, prompt string, document []byte, mediaType string) (DocumentRating, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(document))

	message := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
		},
	}

	return r.complete(parent, "openai.rate_document", message)
}

// RateText sends a text-only rating prompt to OpenAI.
func (r *OpenAIRater) RateText(parent context.Context, prompt string) (DocumentRating, error) {
	message := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	}

	return r.complete(parent, "openai.rate_text", message)
}

func (r *OpenAIRater) complete(parent context.Context, spanName string, message openai.ChatCompletionMessage) (DocumentRating, error) {
	ctx, span := r.tracer.Start(parent, spanName, trace.WithAttributes(
		attribute.String("model", r.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       r.cfg.Model,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: ratingSystemPrompt(),
			},
			message,
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues("openai", r.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues("openai", r.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DocumentRating{}, fmt.Errorf("openai rate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues("openai", r.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DocumentRating{}, err
	}

	rating, err := parseRatingResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		aiFailures.WithLabelValues("openai", r.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DocumentRating{}, err
	}

	return rating, nil
}
