package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRequestRepository interface {
	Create(ctx context.Context, request *model.PaymentRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentRequest, error)
	FindByInvoice(ctx context.Context, vendorInvoiceID uuid.UUID) (*model.PaymentRequest, error)
	Update(ctx context.Context, request *model.PaymentRequest) error
	List(ctx context.Context, locationID, status string, page, limit int) ([]model.PaymentRequest, int64, error)
}

type paymentRequestRepository struct {
	db *gorm.DB
}

func NewPaymentRequestRepository(db *gorm.DB) PaymentRequestRepository {
	return &paymentRequestRepository{db: db}
}

func (r *paymentRequestRepository) Create(ctx context.Context, request *model.PaymentRequest) error {
	return GetDB(ctx, r.db).Create(request).Error
}

func (r *paymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentRequest, error) {
	var request model.PaymentRequest
	if err := GetDB(ctx, r.db).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByInvoice returns nil, nil when the invoice has no payment request.
func (r *paymentRequestRepository) FindByInvoice(ctx context.Context, vendorInvoiceID uuid.UUID) (*model.PaymentRequest, error) {
	var request model.PaymentRequest
	err := GetDB(ctx, r.db).First(&request, "vendor_invoice_id = ?", vendorInvoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *paymentRequestRepository) Update(ctx context.Context, request *model.PaymentRequest) error {
	return GetDB(ctx, r.db).Save(request).Error
}

func (r *paymentRequestRepository) List(ctx context.Context, locationID, status string, page, limit int) ([]model.PaymentRequest, int64, error) {
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
	if err := apply(db.Model(&model.PaymentRequest{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var requests []model.PaymentRequest
	if err := apply(db).Order("created_at desc").
		Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
