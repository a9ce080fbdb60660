package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/pkg/ai"
	"github.com/arisylafeta/aadf-procurement/pkg/storage"
)

// DocumentStore abstracts binary document downloads from the object store.
type DocumentStore interface {
	Download(ctx context.Context, bucket, path string) (storage.Document, error)
}

// SectionRater produces one SectionRating for a submission's section.
type SectionRater interface {
	Rate(ctx context.Context, submission models.Submission) (models.SectionRating, error)
}

// PriceRater produces the deterministic price comparison result.
type PriceRater interface {
	Rate(ctx context.Context, submission models.Submission) (models.PriceRating, error)
}

// ratingFailedPrefix marks details whose document could not be evaluated.
// The experience rater keys its scoring policy off this prefix.
const ratingFailedPrefix = "Rating failed:"

func isFailedDetail(detail models.RatingDetail) bool {
	return strings.HasPrefix(detail.Reasoning, ratingFailedPrefix)
}

// documentRater is the shared fan-out/fan-in engine behind the core and
// experience section raters: one Document Rater call per document field,
// settle-all, failures folded into zero-scored details.
type documentRater struct {
	store   DocumentStore
	rater   ai.DocumentRater
	timeout time.Duration
	logger  zerolog.Logger
}

// rateDocuments evaluates every document field concurrently. Each goroutine
// writes into its own slot; the slice is complete once all units settle. A
// failure at resolution, download or rating never aborts sibling documents.
func (r *documentRater) rateDocuments(ctx context.Context, procurementID string, fields []SectionField, prompt func(fieldName string) string) []models.RatingDetail {
	documents := DocumentFields(fields)
	for _, field := range fields {
		if field.Kind == FieldKindScalar {
			r.logger.Debug().Str("field", field.Name).Msg("skipping non-document field")
		}
	}

	details := make([]models.RatingDetail, len(documents))

	var wg sync.WaitGroup
	for i, field := range documents {
		wg.Add(1)
		go func(slot int, field SectionField) {
			defer wg.Done()
			details[slot] = r.rateOne(ctx, procurementID, field, prompt(field.Name))
		}(i, field)
	}
	wg.Wait()

	return details
}

func (r *documentRater) rateOne(ctx context.Context, procurementID string, field SectionField, prompt string) models.RatingDetail {
	unitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	bucket, path, err := storage.ResolveDocumentURL(field.DocumentURL, procurementID)
	if err != nil {
		return r.failedDetail(field, err)
	}

	document, err := r.store.Download(unitCtx, bucket, path)
	if err != nil {
		return r.failedDetail(field, err)
	}

	rating, err := r.rater.RateDocument(unitCtx, prompt, document.Data, document.MediaType)
	if err != nil {
		return r.failedDetail(field, err)
	}

	r.logger.Debug().
		Str("field", field.Name).
		Float64("rating", rating.Rating).
		Msg("document rated")

	return models.RatingDetail{
		DocumentName: field.Name,
		DocumentURL:  field.DocumentURL,
		Rating:       rating.Rating,
		Reasoning:    sanitizeReasoning(rating.Reasoning),
	}
}

func (r *documentRater) failedDetail(field SectionField, err error) models.RatingDetail {
	r.logger.Warn().
		Err(err).
		Str("field", field.Name).
		Str("document_url", field.DocumentURL).
		Msg("document rating failed")

	return models.RatingDetail{
		DocumentName: field.Name,
		DocumentURL:  field.DocumentURL,
		Rating:       0,
		Reasoning:    ratingFailedPrefix + " " + err.Error(),
	}
}
