package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovementRepository is append-only: movements are never updated or
// deleted, and balances are always derived by replaying them.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *model.StockMovement) error
	ListByLocationItem(ctx context.Context, locationID string, itemID uuid.UUID) ([]model.StockMovement, error)
	ListByLocation(ctx context.Context, locationID string) ([]model.StockMovement, error)
	ListByDepartment(ctx context.Context, locationID, departmentID string) ([]model.StockMovement, error)
	ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Append(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *stockMovementRepository) ListByLocationItem(ctx context.Context, locationID string, itemID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := GetDB(ctx, r.db).
		Where("location_id = ? AND item_id = ?", locationID, itemID).
		Order("created_at asc").Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepository) ListByLocation(ctx context.Context, locationID string) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := GetDB(ctx, r.db).
		Where("location_id = ?", locationID).
		Order("created_at asc").Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepository) ListByDepartment(ctx context.Context, locationID, departmentID string) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := GetDB(ctx, r.db).
		Where("location_id = ? AND department_id = ?", locationID, departmentID).
		Order("created_at asc").Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepository) ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.StockMovement{}).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Count(&count).Error
	return count > 0, err
}
