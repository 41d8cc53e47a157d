package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequisitionListFilter struct {
	LocationID string
	Status     string
	Page       int
	Limit      int
}

type RequisitionRepository interface {
	Create(ctx context.Context, requisition *model.Requisition) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error)
	Update(ctx context.Context, requisition *model.Requisition) error
	List(ctx context.Context, filter RequisitionListFilter) ([]model.Requisition, int64, error)
}

type requisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) RequisitionRepository {
	return &requisitionRepository{db: db}
}

func (r *requisitionRepository) Create(ctx context.Context, requisition *model.Requisition) error {
	return GetDB(ctx, r.db).Create(requisition).Error
}

func (r *requisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error) {
	var requisition model.Requisition
	if err := GetDB(ctx, r.db).Preload("Items").First(&requisition, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &requisition, nil
}

func (r *requisitionRepository) Update(ctx context.Context, requisition *model.Requisition) error {
	return GetDB(ctx, r.db).Omit("Items").Save(requisition).Error
}

func (r *requisitionRepository) List(ctx context.Context, filter RequisitionListFilter) ([]model.Requisition, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.LocationID != "" {
			q = q.Where("location_id = ?", filter.LocationID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Requisition{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var requisitions []model.Requisition
	if err := apply(db.Preload("Items")).Order("created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&requisitions).Error; err != nil {
		return nil, 0, err
	}

	return requisitions, total, nil
}
