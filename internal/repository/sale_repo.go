package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	ListByWindow(ctx context.Context, locationID string, start, end time.Time) ([]model.Sale, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) ListByWindow(ctx context.Context, locationID string, start, end time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := GetDB(ctx, r.db).
		Where("location_id = ? AND occurred_at >= ? AND occurred_at <= ?", locationID, start, end).
		Order("occurred_at asc").Find(&sales).Error
	return sales, err
}
