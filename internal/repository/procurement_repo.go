package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/arisylafeta/aadf-procurement/internal/models"
)

// ProcurementRepository defines data operations for procurements.
type ProcurementRepository interface {
	GetByID(ctx context.Context, id string) (models.Procurement, error)
	List(ctx context.Context) ([]models.Procurement, error)
	Create(ctx context.Context, procurement *models.Procurement) error
}

type procurementRepository struct {
	db *gorm.DB
}

// NewProcurementRepository instantiates the repository.
func NewProcurementRepository(db *gorm.DB) ProcurementRepository {
	return &procurementRepository{db: db}
}

func (r *procurementRepository) GetByID(ctx context.Context, id string) (models.Procurement, error) {
	var procurement models.Procurement
	if err := r.db.WithContext(ctx).First(&procurement, "id = ?", id).Error; err != nil {
		return models.Procurement{}, err
	}

	return procurement, nil
}

func (r *procurementRepository) List(ctx context.Context) ([]models.Procurement, error) {
	var procurements []models.Procurement
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&procurements).Error; err != nil {
		return nil, err
	}

	return procurements, nil
}

func (r *procurementRepository) Create(ctx context.Context, procurement *models.Procurement) error {
	return r.db.WithContext(ctx).Create(procurement).Error
}
