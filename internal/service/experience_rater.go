package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
	"github.com/arisylafeta/aadf-procurement/pkg/ai"
)

// experienceSectionRater evaluates prior-experience documents against the
// procurement's value threshold. Unlike the core rater, documents that could
// not be evaluated are excluded from the scoring mean entirely.
type experienceSectionRater struct {
	documentRater
	procurements repository.ProcurementRepository
}

// NewExperienceSectionRater constructs the experience section rater.
func NewExperienceSectionRater(store DocumentStore, rater ai.DocumentRater, procurements repository.ProcurementRepository, timeout time.Duration, logger zerolog.Logger) SectionRater {
	return &experienceSectionRater{
		documentRater: documentRater{
			store:   store,
			rater:   rater,
			timeout: timeout,
			logger:  logger.With().Str("component", "experience_rater").Logger(),
		},
		procurements: procurements,
	}
}

func (r *experienceSectionRater) Rate(ctx context.Context, submission models.Submission) (models.SectionRating, error) {
	procurement, err := r.procurements.GetByID(ctx, submission.ProcurementID)
	if err != nil || procurement.PriceCeiling <= 0 {
		r.logger.Error().Err(err).Str("procurement_id", submission.ProcurementID).Msg("tender value unavailable")
		return emptySectionRating("Configuration error: tender value missing."), nil
	}

	if submission.ExperienceData == nil {
		return emptySectionRating("No experience data provided."), nil
	}

	threshold := procurement.ExperienceValueThreshold()
	fields := ParseSectionPayload(submission.ExperienceData)
	details := r.rateDocuments(ctx, submission.ProcurementID, fields, func(fieldName string) string {
		return experiencePrompt(fieldName, threshold)
	})

	var sum float64
	ratedCount := 0
	for _, detail := range details {
		if isFailedDetail(detail) {
			continue
		}
		sum += detail.Rating
		ratedCount++
	}

	var overallScore float64
	if ratedCount > 0 {
		overallScore = math.Round(sum / float64(ratedCount))
	}

	return models.SectionRating{
		OverallScore: overallScore,
		Details:      details,
		OverallReasoning: fmt.Sprintf("Overall experience score based on average of %d successfully rated documents out of %d total.",
			ratedCount, len(details)),
	}, nil
}

func experiencePrompt(fieldName string, valueThreshold float64) string {
	return fmt.Sprintf("Evaluate the attached experience document provided for the field named '%s'. "+
		"Assess the following criteria based strictly on the document's content: "+
		"1. Accuracy: is the information presented verifiable and factually sound? "+
		"2. Value threshold: does the project or experience described explicitly state or strongly imply a value exceeding %.2f (50%% of the current tender value)? "+
		"3. Applicability: is the experience described directly relevant and applicable to the requirements suggested by the field name '%s'? "+
		"Provide a single overall numerical rating (0-10, where 10 means all criteria are excellently met) and concise reasoning addressing each of the three criteria.",
		fieldName, valueThreshold, fieldName)
}
