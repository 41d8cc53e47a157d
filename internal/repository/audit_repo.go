package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// AuditListFilter narrows audit listings. LocationID empty means no
// location filter (global actors only; the service layer enforces that).
type AuditListFilter struct {
	LocationID string
	EntityType string
	Action     string
	Page       int
	Limit      int
}

type AuditRepository interface {
	Append(ctx context.Context, record *model.AuditRecord) error
	MaxSeq(ctx context.Context) (int64, error)
	ListAfter(ctx context.Context, seq int64) ([]model.AuditRecord, error)
	ListByTrace(ctx context.Context, traceID string) ([]model.AuditRecord, error)
	List(ctx context.Context, filter AuditListFilter) ([]model.AuditRecord, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, record *model.AuditRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *auditRepository) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := GetDB(ctx, r.db).Model(&model.AuditRecord{}).
		Select("COALESCE(MAX(seq), 0)").Scan(&seq).Error
	return seq, err
}

func (r *auditRepository) ListAfter(ctx context.Context, seq int64) ([]model.AuditRecord, error) {
	var records []model.AuditRecord
	err := GetDB(ctx, r.db).Where("seq > ?", seq).Order("seq asc").Find(&records).Error
	return records, err
}

func (r *auditRepository) ListByTrace(ctx context.Context, traceID string) ([]model.AuditRecord, error) {
	var records []model.AuditRecord
	err := GetDB(ctx, r.db).Where("trace_id = ?", traceID).Order("seq asc").Find(&records).Error
	return records, err
}

func (r *auditRepository) List(ctx context.Context, filter AuditListFilter) ([]model.AuditRecord, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.LocationID != "" {
			q = q.Where("location_id = ?", filter.LocationID)
		}
		if filter.EntityType != "" {
			q = q.Where("entity_type = ?", filter.EntityType)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.AuditRecord{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var records []model.AuditRecord
	if err := apply(db).Order("seq desc").Offset(offset).Limit(filter.Limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
