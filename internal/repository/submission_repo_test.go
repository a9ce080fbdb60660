package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arisylafeta/aadf-procurement/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Procurement{}, &models.Submission{}))

	return db
}

func seedSubmission(t *testing.T, db *gorm.DB, id string, price *float64) {
	t.Helper()

	require.NoError(t, db.Create(&models.Submission{
		ID:            id,
		ProcurementID: "proc-1",
		BidderName:    "Bidder " + id,
		ProposedPrice: price,
		RatingStatus:  models.RatingStatusPending,
		CoreData:      datatypes.JSONMap{"companyName": "Acme"},
	}).Error)
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestSubmissionRepositoryListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	seedSubmission(t, db, "sub-1", floatPtr(100))
	seedSubmission(t, db, "sub-2", nil)
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", "sub-2").
		Update("rating_status", models.RatingStatusCompleted).Error)

	all, err := repo.List(ctx, SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	completed := models.RatingStatusCompleted
	filtered, err := repo.List(ctx, SubmissionFilter{RatingStatus: &completed})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "sub-2", filtered[0].ID)

	procurementID := "proc-1"
	byProcurement, err := repo.List(ctx, SubmissionFilter{ProcurementID: &procurementID})
	require.NoError(t, err)
	require.Len(t, byProcurement, 2)
}

func TestSubmissionRepositoryGetForRating(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)

	seedSubmission(t, db, "sub-1", floatPtr(100))

	submission, err := repo.GetForRating(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Equal(t, "sub-1", submission.ID)
	require.Equal(t, "proc-1", submission.ProcurementID)
	require.NotNil(t, submission.ProposedPrice)
	require.Equal(t, "Acme", submission.CoreData["companyName"])

	_, err = repo.GetForRating(context.Background(), "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubmissionRepositoryUpdateRatingStatusError(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	seedSubmission(t, db, "sub-1", floatPtr(100))

	require.NoError(t, repo.UpdateRatingStatus(ctx, "sub-1", models.RatingStatusError, "boom"))

	stored, err := repo.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	require.Equal(t, models.RatingStatusError, stored.RatingStatus)

	var errorRecord models.RatingErrorStatus
	require.NoError(t, json.Unmarshal(stored.RatingData, &errorRecord))
	require.Equal(t, models.RatingStatusError, errorRecord.Status)
	require.Equal(t, "boom", errorRecord.ErrorMessage)
}

func TestSubmissionRepositoryUpdateRatingStatusErrorDefaultsMessage(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	seedSubmission(t, db, "sub-1", nil)
	require.NoError(t, repo.UpdateRatingStatus(ctx, "sub-1", models.RatingStatusError, ""))

	stored, err := repo.GetByID(ctx, "sub-1")
	require.NoError(t, err)

	var errorRecord models.RatingErrorStatus
	require.NoError(t, json.Unmarshal(stored.RatingData, &errorRecord))
	require.Equal(t, "Unknown error during rating", errorRecord.ErrorMessage)
}

func TestSubmissionRepositoryUpdateRatingStatusProcessingKeepsData(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	seedSubmission(t, db, "sub-1", nil)
	require.NoError(t, repo.UpdateRatingStatus(ctx, "sub-1", models.RatingStatusProcessing, ""))

	stored, err := repo.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	require.Equal(t, models.RatingStatusProcessing, stored.RatingStatus)
	require.Empty(t, stored.RatingData)
}

func TestSubmissionRepositoryUpdateRatingRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	seedSubmission(t, db, "sub-1", floatPtr(100))

	data := models.RatingData{
		RatingVersion: models.RatingVersion,
		RatedAt:       "2026-08-31T12:00:00Z",
		Status:        models.RatingStatusCompleted,
		OverallScore:  7.5,
		Price:         models.PriceRating{Score: 10, Reasoning: "lowest"},
		Core:          models.SectionRating{OverallScore: 8, Details: []models.RatingDetail{{DocumentName: "license", Rating: 8, Reasoning: "ok"}}},
		Experience:    models.SectionRating{OverallScore: 6, Details: []models.RatingDetail{}},
		Team:          models.SectionRating{OverallScore: 6, Details: []models.RatingDetail{}},
	}
	payload, err := json.Marshal(data)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateRating(ctx, "sub-1", datatypes.JSON(payload), models.RatingStatusCompleted))

	stored, err := repo.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	require.Equal(t, models.RatingStatusCompleted, stored.RatingStatus)

	var roundTrip models.RatingData
	require.NoError(t, json.Unmarshal(stored.RatingData, &roundTrip))
	require.Equal(t, data, roundTrip)
}

func TestSubmissionRepositoryListByProcurement(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)

	seedSubmission(t, db, "sub-1", floatPtr(100))
	seedSubmission(t, db, "sub-2", floatPtr(50))

	siblings, err := repo.ListByProcurement(context.Background(), "proc-1")
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	for _, sibling := range siblings {
		require.NotNil(t, sibling.ProposedPrice)
		require.Equal(t, "proc-1", sibling.ProcurementID)
	}
}
