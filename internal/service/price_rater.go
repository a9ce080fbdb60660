package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
)

// priceSectionRater compares the submission's proposed price against every
// sibling submission of the same procurement. Fully deterministic: no AI
// calls, no document I/O, and it never returns an error to the orchestrator.
type priceSectionRater struct {
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewPriceSectionRater constructs the price section rater.
func NewPriceSectionRater(submissions repository.SubmissionRepository, logger zerolog.Logger) PriceRater {
	return &priceSectionRater{
		submissions: submissions,
		logger:      logger.With().Str("component", "price_rater").Logger(),
	}
}

func (r *priceSectionRater) Rate(ctx context.Context, submission models.Submission) (models.PriceRating, error) {
	if submission.ProposedPrice == nil || *submission.ProposedPrice < 0 {
		return models.PriceRating{
			Score:     0,
			Reasoning: "Current submission has invalid or missing total cost.",
		}, nil
	}
	currentPrice := *submission.ProposedPrice

	siblings, err := r.submissions.ListByProcurement(ctx, submission.ProcurementID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("procurement_id", submission.ProcurementID).
			Msg("failed to fetch sibling submissions")
		return models.PriceRating{
			Score:     0,
			Reasoning: fmt.Sprintf("Failed to calculate price rating: %v", err),
		}, nil
	}

	if len(siblings) == 0 {
		return models.PriceRating{
			Score:     10,
			Reasoning: "This is the only submission found for this procurement.",
		}, nil
	}

	lowestPrice := math.Inf(1)
	validPrices := 0
	for _, sibling := range siblings {
		if sibling.ProposedPrice == nil || *sibling.ProposedPrice < 0 {
			r.logger.Warn().
				Str("submission_id", sibling.ID).
				Msg("sibling skipped: invalid or missing proposed price")
			continue
		}
		validPrices++
		if *sibling.ProposedPrice < lowestPrice {
			lowestPrice = *sibling.ProposedPrice
		}
	}

	if math.IsInf(lowestPrice, 1) || lowestPrice <= 0 {
		return models.PriceRating{
			Score:     0,
			Reasoning: "Could not determine a valid positive lowest price for comparison.",
		}, nil
	}

	score := 10 * (1 - (currentPrice-lowestPrice)/lowestPrice)
	score = math.Max(0, math.Min(10, score))

	reasoning := fmt.Sprintf("Score calculated based on own price (%v) relative to the lowest price (%v) found among %d submissions. "+
		"Formula: 10 * (1 - (%v - %v) / %v)",
		currentPrice, lowestPrice, validPrices, currentPrice, lowestPrice, lowestPrice)

	r.logger.Info().
		Str("submission_id", submission.ID).
		Float64("score", score).
		Float64("lowest_price", lowestPrice).
		Int("valid_prices", validPrices).
		Msg("price section rated")

	return models.PriceRating{Score: score, Reasoning: reasoning}, nil
}
