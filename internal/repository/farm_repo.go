package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/farmiot/internal/model"
	"gorm.io/gorm"
)

// FarmRepository answers ownership checks against the farms table
type FarmRepository struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) *FarmRepository {
	return &FarmRepository{db: db}
}

// VerifyFarmOwner returns the farm when ownerID owns it, ErrNotFound otherwise.
// A missing farm and a foreign farm are indistinguishable to the caller.
func (r *FarmRepository) VerifyFarmOwner(ctx context.Context, farmID uint, ownerID uuid.UUID) (*model.Farm, error) {
	var farm model.Farm
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", farmID, ownerID).
		First(&farm).Error
	if err != nil {
		return nil, translate(err)
	}
	return &farm, nil
}
