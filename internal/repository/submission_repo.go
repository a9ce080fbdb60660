package repository

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arisylafeta/aadf-procurement/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	ProcurementID *string
	RatingStatus  *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id string) (models.Submission, error)
	GetForRating(ctx context.Context, id string) (models.Submission, error)
	ListByProcurement(ctx context.Context, procurementID string) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	UpdateRatingStatus(ctx context.Context, id, status, errorMessage string) error
	UpdateRating(ctx context.Context, id string, data datatypes.JSON, status string) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.ProcurementID != nil {
		query = query.Where("procurement_id = ?", *filter.ProcurementID)
	}

	if filter.RatingStatus != nil {
		query = query.Where("rating_status = ?", *filter.RatingStatus)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// GetForRating selects only the columns the rating pipeline consumes.
func (r *submissionRepository) GetForRating(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Select("id", "procurement_id", "core_data", "experience_data", "team_data", "proposed_price").
		First(&submission, "id = ?", id).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByProcurement(ctx context.Context, procurementID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Select("id", "procurement_id", "proposed_price").
		Where("procurement_id = ?", procurementID).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// UpdateRatingStatus transitions the submission's rating status. Error
// transitions also overwrite rating_data with a minimal error record so the
// dashboard can surface what went wrong.
func (r *submissionRepository) UpdateRatingStatus(ctx context.Context, id, status, errorMessage string) error {
	updates := map[string]interface{}{"rating_status": status}

	if status == models.RatingStatusError {
		if errorMessage == "" {
			errorMessage = "Unknown error during rating"
		}
		payload, err := json.Marshal(models.RatingErrorStatus{
			Status:       models.RatingStatusError,
			ErrorMessage: errorMessage,
		})
		if err != nil {
			return err
		}
		updates["rating_data"] = datatypes.JSON(payload)
	}

	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateRating persists the full rating record and the final status in a
// single update.
func (r *submissionRepository) UpdateRating(ctx context.Context, id string, data datatypes.JSON, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating_data":   data,
			"rating_status": status,
		}).Error
}
