package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/pkg/ai"
)

// coreSectionRater evaluates the core compliance documents. Failed documents
// stay in the scoring mean at zero, so missing paperwork drags the section
// score down.
type coreSectionRater struct {
	documentRater
}

// NewCoreSectionRater constructs the core section rater.
func NewCoreSectionRater(store DocumentStore, rater ai.DocumentRater, timeout time.Duration, logger zerolog.Logger) SectionRater {
	return &coreSectionRater{
		documentRater: documentRater{
			store:   store,
			rater:   rater,
			timeout: timeout,
			logger:  logger.With().Str("component", "core_rater").Logger(),
		},
	}
}

func (r *coreSectionRater) Rate(ctx context.Context, submission models.Submission) (models.SectionRating, error) {
	if submission.CoreData == nil {
		return emptySectionRating("No core data provided."), nil
	}

	fields := ParseSectionPayload(submission.CoreData)
	details := r.rateDocuments(ctx, submission.ProcurementID, fields, corePrompt)

	var sum float64
	for _, detail := range details {
		sum += detail.Rating
	}

	var overallScore float64
	if len(details) > 0 {
		overallScore = math.Round(sum / float64(len(details)))
	}

	return models.SectionRating{
		OverallScore:     overallScore,
		Details:          details,
		OverallReasoning: fmt.Sprintf("Overall core score based on average of %d rated documents.", len(details)),
	}, nil
}

func corePrompt(fieldName string) string {
	return fmt.Sprintf("Evaluate the attached document provided for the field '%s'. "+
		"Assess its compliance and completeness based on typical procurement requirements for such a document. "+
		"Provide a numerical rating (0-10, where 10 is excellent) and concise reasoning based strictly on the document's content.",
		fieldName)
}
