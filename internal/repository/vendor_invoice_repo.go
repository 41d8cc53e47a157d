package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorInvoiceRepository interface {
	Create(ctx context.Context, invoice *model.VendorInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VendorInvoice, error)
	FindByGoodsReceipt(ctx context.Context, goodsReceiptID uuid.UUID) (*model.VendorInvoice, error)
	Update(ctx context.Context, invoice *model.VendorInvoice) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	List(ctx context.Context, locationID, status string, page, limit int) ([]model.VendorInvoice, int64, error)
}

type vendorInvoiceRepository struct {
	db *gorm.DB
}

func NewVendorInvoiceRepository(db *gorm.DB) VendorInvoiceRepository {
	return &vendorInvoiceRepository{db: db}
}

func (r *vendorInvoiceRepository) Create(ctx context.Context, invoice *model.VendorInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *vendorInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.VendorInvoice, error) {
	var invoice model.VendorInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByGoodsReceipt returns nil, nil when the receipt is not yet invoiced.
func (r *vendorInvoiceRepository) FindByGoodsReceipt(ctx context.Context, goodsReceiptID uuid.UUID) (*model.VendorInvoice, error) {
	var invoice model.VendorInvoice
	err := GetDB(ctx, r.db).First(&invoice, "goods_receipt_id = ?", goodsReceiptID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *vendorInvoiceRepository) Update(ctx context.Context, invoice *model.VendorInvoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *vendorInvoiceRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.VendorInvoice{}).
		Where("invoice_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *vendorInvoiceRepository) List(ctx context.Context, locationID, status string, page, limit int) ([]model.VendorInvoice, int64, error) {
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
	if err := apply(db.Model(&model.VendorInvoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var invoices []model.VendorInvoice
	if err := apply(db).Order("created_at desc").
		Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}
