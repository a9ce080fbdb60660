package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
)

type stubSubmissionRepo struct {
	submissions []models.Submission
	listErr     error

	statusUpdates []statusUpdate
	savedRating   datatypes.JSON
	savedStatus   string
	updateErr     error
	statusErr     error
	getErr        error
}

type statusUpdate struct {
	status       string
	errorMessage string
}

func (s *stubSubmissionRepo) List(context.Context, repository.SubmissionFilter) ([]models.Submission, error) {
	return s.submissions, s.listErr
}

func (s *stubSubmissionRepo) GetByID(_ context.Context, id string) (models.Submission, error) {
	return s.find(id)
}

func (s *stubSubmissionRepo) GetForRating(_ context.Context, id string) (models.Submission, error) {
	if s.getErr != nil {
		return models.Submission{}, s.getErr
	}
	return s.find(id)
}

func (s *stubSubmissionRepo) find(id string) (models.Submission, error) {
	for _, submission := range s.submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return models.Submission{}, errors.New("record not found")
}

func (s *stubSubmissionRepo) ListByProcurement(context.Context, string) ([]models.Submission, error) {
	return s.submissions, s.listErr
}

func (s *stubSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	s.submissions = append(s.submissions, *submission)
	return nil
}

func (s *stubSubmissionRepo) UpdateRatingStatus(_ context.Context, _, status, errorMessage string) error {
	s.statusUpdates = append(s.statusUpdates, statusUpdate{status: status, errorMessage: errorMessage})
	return s.statusErr
}

func (s *stubSubmissionRepo) UpdateRating(_ context.Context, _ string, data datatypes.JSON, status string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.savedRating = data
	s.savedStatus = status
	return nil
}

var _ repository.SubmissionRepository = (*stubSubmissionRepo)(nil)

func priceSubmission(id string, price *float64) models.Submission {
	return models.Submission{ID: id, ProcurementID: "proc-1", ProposedPrice: price}
}

func price(v float64) *float64 {
	return &v
}

func TestPriceRaterMissingPrice(t *testing.T) {
	rater := NewPriceSectionRater(&stubSubmissionRepo{}, zerolog.Nop())

	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", nil))
	require.NoError(t, err)
	require.Zero(t, result.Score)
	require.Equal(t, "Current submission has invalid or missing total cost.", result.Reasoning)
}

func TestPriceRaterRepositoryFailure(t *testing.T) {
	repo := &stubSubmissionRepo{listErr: errors.New("connection refused")}
	rater := NewPriceSectionRater(repo, zerolog.Nop())

	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", price(100)))
	require.NoError(t, err)
	require.Zero(t, result.Score)
	require.Contains(t, result.Reasoning, "Failed to calculate price rating")
}

func TestPriceRaterOnlySubmission(t *testing.T) {
	rater := NewPriceSectionRater(&stubSubmissionRepo{}, zerolog.Nop())

	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", price(100)))
	require.NoError(t, err)
	require.Equal(t, 10.0, result.Score)
	require.Equal(t, "This is the only submission found for this procurement.", result.Reasoning)
}

func TestPriceRaterLowestPriceScoresTen(t *testing.T) {
	repo := &stubSubmissionRepo{submissions: []models.Submission{
		priceSubmission("sub-1", price(50)),
		priceSubmission("sub-2", price(100)),
	}}
	rater := NewPriceSectionRater(repo, zerolog.Nop())

	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", price(50)))
	require.NoError(t, err)
	require.Equal(t, 10.0, result.Score)
}

func TestPriceRaterLinearFormula(t *testing.T) {
	repo := &stubSubmissionRepo{submissions: []models.Submission{
		priceSubmission("sub-1", price(60)),
		priceSubmission("sub-2", price(50)),
	}}
	rater := NewPriceSectionRater(repo, zerolog.Nop())

	// 10 * (1 - (60-50)/50) = 8
	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", price(60)))
	require.NoError(t, err)
	require.InDelta(t, 8.0, result.Score, 0.0001)
	require.Contains(t, result.Reasoning, "Formula: 10 * (1 - (60 - 50) / 50)")
}

func TestPriceRaterClampsAtZero(t *testing.T) {
	repo := &stubSubmissionRepo{submissions: []models.Submission{
		priceSubmission("sub-1", price(200)),
		priceSubmission("sub-2", price(50)),
	}}
	rater := NewPriceSectionRater(repo, zerolog.Nop())

	// 10 * (1 - (200-50)/50) = -20, clamped to 0.
	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", price(200)))
	require.NoError(t, err)
	require.Zero(t, result.Score)
}

func TestPriceRaterSkipsInvalidSiblings(t *testing.T) {
	repo := &stubSubmissionRepo{submissions: []models.Submission{
		priceSubmission("sub-1", price(100)),
		priceSubmission("sub-2", nil),
		priceSubmission("sub-3", price(-5)),
	}}
	rater := NewPriceSectionRater(repo, zerolog.Nop())

	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", price(100)))
	require.NoError(t, err)
	require.Equal(t, 10.0, result.Score)
	require.Contains(t, result.Reasoning, "among 1 submissions")
}

func TestPriceRaterNoValidPositiveLowest(t *testing.T) {
	repo := &stubSubmissionRepo{submissions: []models.Submission{
		priceSubmission("sub-1", price(0)),
		priceSubmission("sub-2", price(0)),
	}}
	rater := NewPriceSectionRater(repo, zerolog.Nop())

	result, err := rater.Rate(context.Background(), priceSubmission("sub-1", price(0)))
	require.NoError(t, err)
	require.Zero(t, result.Score)
	require.Equal(t, "Could not determine a valid positive lowest price for comparison.", result.Reasoning)
}
