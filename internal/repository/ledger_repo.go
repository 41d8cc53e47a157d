package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

// LedgerWindow bounds read-side ledger queries. LocationID empty means all
// locations (the service layer restricts that to global actors).
type LedgerWindow struct {
	LocationID string
	Start      time.Time
	End        time.Time
}

type LedgerRepository interface {
	CreateBatch(ctx context.Context, entries []*model.LedgerEntry) error
	ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]model.LedgerEntry, error)
	ListByWindow(ctx context.Context, window LedgerWindow) ([]model.LedgerEntry, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateBatch(ctx context.Context, entries []*model.LedgerEntry) error {
	return GetDB(ctx, r.db).Create(entries).Error
}

func (r *ledgerRepository) ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.LedgerEntry{}).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Count(&count).Error
	return count > 0, err
}

func (r *ledgerRepository) ListByReference(ctx context.Context, referenceType, referenceID string) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := GetDB(ctx, r.db).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("created_at asc").Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) ListByWindow(ctx context.Context, window LedgerWindow) ([]model.LedgerEntry, error) {
	query := GetDB(ctx, r.db).
		Where("created_at >= ? AND created_at <= ?", window.Start, window.End)
	if window.LocationID != "" {
		query = query.Where("location_id = ?", window.LocationID)
	}

	var entries []model.LedgerEntry
	err := query.Order("created_at asc").Find(&entries).Error
	return entries, err
}
