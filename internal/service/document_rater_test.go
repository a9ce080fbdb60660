package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
	"github.com/arisylafeta/aadf-procurement/pkg/ai"
	"github.com/arisylafeta/aadf-procurement/pkg/storage"
)

const testDocumentBase = "https://store.example.com/storage/v1/object/public/proc-1"

type stubStore struct {
	failPaths map[string]error
}

func (s *stubStore) Download(_ context.Context, _, path string) (storage.Document, error) {
	if err, ok := s.failPaths[path]; ok {
		return storage.Document{}, err
	}
	return storage.Document{Data: []byte("%PDF-1.4"), MediaType: "application/pdf"}, nil
}

type docRaterFunc func(ctx context.Context, prompt string, document []byte, mediaType string) (ai.DocumentRating, error)

func (f docRaterFunc) RateDocument(ctx context.Context, prompt string, document []byte, mediaType string) (ai.DocumentRating, error) {
	return f(ctx, prompt, document, mediaType)
}

type textRaterFunc func(ctx context.Context, prompt string) (ai.DocumentRating, error)

func (f textRaterFunc) RateText(ctx context.Context, prompt string) (ai.DocumentRating, error) {
	return f(ctx, prompt)
}

func fixedDocRater(rating float64) docRaterFunc {
	return func(context.Context, string, []byte, string) (ai.DocumentRating, error) {
		return ai.DocumentRating{Rating: rating, Reasoning: "solid document"}, nil
	}
}

type stubProcurementRepo struct {
	procurement models.Procurement
	err         error
}

func (s *stubProcurementRepo) GetByID(context.Context, string) (models.Procurement, error) {
	return s.procurement, s.err
}

func (s *stubProcurementRepo) List(context.Context) ([]models.Procurement, error) {
	return []models.Procurement{s.procurement}, s.err
}

func (s *stubProcurementRepo) Create(context.Context, *models.Procurement) error {
	return s.err
}

var _ repository.ProcurementRepository = (*stubProcurementRepo)(nil)

func submissionWithDocs(core, experience map[string]interface{}) models.Submission {
	return models.Submission{
		ID:             "sub-1",
		ProcurementID:  "proc-1",
		CoreData:       core,
		ExperienceData: experience,
	}
}

func TestCoreRaterNoData(t *testing.T) {
	rater := NewCoreSectionRater(&stubStore{}, fixedDocRater(8), time.Second, zerolog.Nop())

	result, err := rater.Rate(context.Background(), models.Submission{ProcurementID: "proc-1"})
	require.NoError(t, err)
	require.Zero(t, result.OverallScore)
	require.Empty(t, result.Details)
	require.Equal(t, "No core data provided.", result.OverallReasoning)
}

func TestCoreRaterIncludesFailuresInMean(t *testing.T) {
	store := &stubStore{failPaths: map[string]error{
		"docs/registration.pdf": errors.New("object not found"),
	}}
	rater := NewCoreSectionRater(store, fixedDocRater(8), time.Second, zerolog.Nop())

	submission := submissionWithDocs(map[string]interface{}{
		"license":      testDocumentBase + "/docs/license.pdf",
		"registration": testDocumentBase + "/docs/registration.pdf",
		"companyName":  "Acme Ltd",
	}, nil)

	result, err := rater.Rate(context.Background(), submission)
	require.NoError(t, err)

	// Failed document stays in the mean at zero: round((8+0)/2) = 4.
	require.Equal(t, 4.0, result.OverallScore)
	require.Len(t, result.Details, 2)

	byName := map[string]models.RatingDetail{}
	for _, detail := range result.Details {
		byName[detail.DocumentName] = detail
	}
	require.Equal(t, 8.0, byName["license"].Rating)
	require.Zero(t, byName["registration"].Rating)
	require.Contains(t, byName["registration"].Reasoning, "Rating failed:")
	require.Contains(t, result.OverallReasoning, "2 rated documents")
}

func TestExperienceRaterExcludesFailuresFromMean(t *testing.T) {
	store := &stubStore{failPaths: map[string]error{
		"docs/bridge.pdf": errors.New("object not found"),
	}}
	procurements := &stubProcurementRepo{procurement: models.Procurement{ID: "proc-1", PriceCeiling: 1000}}
	rater := NewExperienceSectionRater(store, fixedDocRater(8), procurements, time.Second, zerolog.Nop())

	submission := submissionWithDocs(nil, map[string]interface{}{
		"roadProject":   testDocumentBase + "/docs/road.pdf",
		"bridgeProject": testDocumentBase + "/docs/bridge.pdf",
	})

	result, err := rater.Rate(context.Background(), submission)
	require.NoError(t, err)

	// Failed document is excluded from the mean entirely.
	require.Equal(t, 8.0, result.OverallScore)
	require.Len(t, result.Details, 2)
	require.Contains(t, result.OverallReasoning, "1 successfully rated documents out of 2 total")
}

func TestExperienceRaterAllFailuresScoresZero(t *testing.T) {
	store := &stubStore{failPaths: map[string]error{
		"docs/road.pdf": errors.New("object not found"),
	}}
	procurements := &stubProcurementRepo{procurement: models.Procurement{ID: "proc-1", PriceCeiling: 1000}}
	rater := NewExperienceSectionRater(store, fixedDocRater(8), procurements, time.Second, zerolog.Nop())

	submission := submissionWithDocs(nil, map[string]interface{}{
		"roadProject": testDocumentBase + "/docs/road.pdf",
	})

	result, err := rater.Rate(context.Background(), submission)
	require.NoError(t, err)
	require.Zero(t, result.OverallScore)
}

func TestExperienceRaterMissingTenderValue(t *testing.T) {
	procurements := &stubProcurementRepo{err: errors.New("record not found")}
	rater := NewExperienceSectionRater(&stubStore{}, fixedDocRater(8), procurements, time.Second, zerolog.Nop())

	result, err := rater.Rate(context.Background(), submissionWithDocs(nil, map[string]interface{}{
		"roadProject": testDocumentBase + "/docs/road.pdf",
	}))
	require.NoError(t, err)
	require.Zero(t, result.OverallScore)
	require.Equal(t, "Configuration error: tender value missing.", result.OverallReasoning)
}

func TestExperienceRaterZeroCeilingTreatedAsMissing(t *testing.T) {
	procurements := &stubProcurementRepo{procurement: models.Procurement{ID: "proc-1"}}
	rater := NewExperienceSectionRater(&stubStore{}, fixedDocRater(8), procurements, time.Second, zerolog.Nop())

	result, err := rater.Rate(context.Background(), submissionWithDocs(nil, map[string]interface{}{}))
	require.NoError(t, err)
	require.Equal(t, "Configuration error: tender value missing.", result.OverallReasoning)
}

func TestCoreRaterRoundsMean(t *testing.T) {
	rater := NewCoreSectionRater(&stubStore{}, fixedDocRater(7.4), time.Second, zerolog.Nop())

	submission := submissionWithDocs(map[string]interface{}{
		"license": testDocumentBase + "/docs/license.pdf",
	}, nil)

	result, err := rater.Rate(context.Background(), submission)
	require.NoError(t, err)
	require.Equal(t, 7.0, result.OverallScore)
}
