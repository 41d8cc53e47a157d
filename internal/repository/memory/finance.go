package memory

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- Ledger ---

type ledgerView struct{ s *Store }

func (s *Store) Ledger() repository.LedgerRepository {
	return ledgerView{s: s}
}

func (v ledgerView) CreateBatch(ctx context.Context, entries []*model.LedgerEntry) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, entry := range entries {
		ensureID(&entry.ID)
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = v.s.now()
		}
		v.s.ledgerEntries = append(v.s.ledgerEntries, *entry)
	}
	return nil
}

func (v ledgerView) ExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, entry := range v.s.ledgerEntries {
		if entry.ReferenceType == referenceType && entry.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (v ledgerView) ListByReference(ctx context.Context, referenceType, referenceID string) ([]model.LedgerEntry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var entries []model.LedgerEntry
	for _, entry := range v.s.ledgerEntries {
		if entry.ReferenceType == referenceType && entry.ReferenceID == referenceID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (v ledgerView) ListByWindow(ctx context.Context, window repository.LedgerWindow) ([]model.LedgerEntry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var entries []model.LedgerEntry
	for _, entry := range v.s.ledgerEntries {
		if window.LocationID != "" && entry.LocationID != window.LocationID {
			continue
		}
		if entry.CreatedAt.Before(window.Start) || entry.CreatedAt.After(window.End) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// --- Expenses ---

type expenseView struct{ s *Store }

func (s *Store) Expenses() repository.ExpenseRepository {
	return expenseView{s: s}
}

func (v expenseView) Create(ctx context.Context, expense *model.Expense) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&expense.ID)
	expense.CreatedAt = v.s.now()
	expense.UpdatedAt = expense.CreatedAt
	v.s.expenses[expense.ID] = *expense
	v.s.expenseOrder = append(v.s.expenseOrder, expense.ID)
	return nil
}

func (v expenseView) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	expense, ok := v.s.expenses[id]
	if !ok {
		return nil, notFound
	}
	return &expense, nil
}

func (v expenseView) Update(ctx context.Context, expense *model.Expense) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.expenses[expense.ID]; !ok {
		return notFound
	}
	expense.UpdatedAt = v.s.now()
	v.s.expenses[expense.ID] = *expense
	return nil
}

func (v expenseView) List(ctx context.Context, locationID, status string, page, limit int) ([]model.Expense, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []model.Expense
	for _, id := range v.s.expenseOrder {
		expense := v.s.expenses[id]
		if locationID != "" && expense.LocationID != locationID {
			continue
		}
		if status != "" && expense.Status != status {
			continue
		}
		matched = append(matched, expense)
	}
	return paginate(reversed(matched), page, limit), int64(len(matched)), nil
}

// --- Sales ---

type saleView struct{ s *Store }

func (s *Store) Sales() repository.SaleRepository {
	return saleView{s: s}
}

func (v saleView) Create(ctx context.Context, sale *model.Sale) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&sale.ID)
	if sale.OccurredAt.IsZero() {
		sale.OccurredAt = v.s.now()
	}
	sale.CreatedAt = v.s.now()
	v.s.sales[sale.ID] = *sale
	return nil
}

func (v saleView) ListByWindow(ctx context.Context, locationID string, start, end time.Time) ([]model.Sale, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var sales []model.Sale
	for _, sale := range v.s.sales {
		if sale.LocationID != locationID {
			continue
		}
		if sale.OccurredAt.Before(start) || sale.OccurredAt.After(end) {
			continue
		}
		sales = append(sales, sale)
	}
	return sales, nil
}
