package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoodsReceiptRepository interface {
	Create(ctx context.Context, receipt *model.GoodsReceipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.GoodsReceipt, error)
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*model.GoodsReceipt, error)
	Update(ctx context.Context, receipt *model.GoodsReceipt) error
	List(ctx context.Context, locationID, status string, page, limit int) ([]model.GoodsReceipt, int64, error)
}

type goodsReceiptRepository struct {
	db *gorm.DB
}

func NewGoodsReceiptRepository(db *gorm.DB) GoodsReceiptRepository {
	return &goodsReceiptRepository{db: db}
}

func (r *goodsReceiptRepository) Create(ctx context.Context, receipt *model.GoodsReceipt) error {
	return GetDB(ctx, r.db).Create(receipt).Error
}

func (r *goodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.GoodsReceipt, error) {
	var receipt model.GoodsReceipt
	if err := GetDB(ctx, r.db).Preload("Items").First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

// FindByPurchaseOrder returns nil, nil when the order has no receipt yet.
func (r *goodsReceiptRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*model.GoodsReceipt, error) {
	var receipt model.GoodsReceipt
	err := GetDB(ctx, r.db).Preload("Items").First(&receipt, "purchase_order_id = ?", purchaseOrderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *goodsReceiptRepository) Update(ctx context.Context, receipt *model.GoodsReceipt) error {
	return GetDB(ctx, r.db).Omit("Items").Save(receipt).Error
}

func (r *goodsReceiptRepository) List(ctx context.Context, locationID, status string, page, limit int) ([]model.GoodsReceipt, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if locationID != "" {
			q = q.Where("location_id = ?", locationID)
		}
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.GoodsReceipt{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var receipts []model.GoodsReceipt
	if err := apply(db.Preload("Items")).Order("created_at desc").
		Offset(offset).Limit(limit).Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, total, nil
}
