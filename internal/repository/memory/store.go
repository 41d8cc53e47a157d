// Package memory implements every repository interface over mutex-guarded
// in-process tables. The test harness runs against it, and it documents
// the storage contract a transactional backend must honor: audit, ledger,
// and stock tables are append-only; balances are never stored.
package memory

import (
	"sync"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store holds all tables behind one mutex, giving the single-writer
// semantics the engine assumes. Repositories are typed views over it.
type Store struct {
	mu sync.Mutex

	auditSeq       int64
	auditRecords   []model.AuditRecord
	ledgerEntries  []model.LedgerEntry
	stockMovements []model.StockMovement

	requisitions    map[uuid.UUID]model.Requisition
	purchaseOrders  map[uuid.UUID]model.PurchaseOrder
	goodsReceipts   map[uuid.UUID]model.GoodsReceipt
	vendorInvoices  map[uuid.UUID]model.VendorInvoice
	paymentRequests map[uuid.UUID]model.PaymentRequest
	items           map[uuid.UUID]model.Item
	expenses        map[uuid.UUID]model.Expense
	sales           map[uuid.UUID]model.Sale
	users           map[uuid.UUID]model.User

	// insertion order for deterministic listings
	requisitionOrder    []uuid.UUID
	purchaseOrderOrder  []uuid.UUID
	goodsReceiptOrder   []uuid.UUID
	vendorInvoiceOrder  []uuid.UUID
	paymentRequestOrder []uuid.UUID
	itemOrder           []uuid.UUID
	expenseOrder        []uuid.UUID

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		requisitions:    make(map[uuid.UUID]model.Requisition),
		purchaseOrders:  make(map[uuid.UUID]model.PurchaseOrder),
		goodsReceipts:   make(map[uuid.UUID]model.GoodsReceipt),
		vendorInvoices:  make(map[uuid.UUID]model.VendorInvoice),
		paymentRequests: make(map[uuid.UUID]model.PaymentRequest),
		items:           make(map[uuid.UUID]model.Item),
		expenses:        make(map[uuid.UUID]model.Expense),
		sales:           make(map[uuid.UUID]model.Sale),
		users:           make(map[uuid.UUID]model.User),
		now:             time.Now,
	}
}

// SetClock overrides the store's time source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// notFound mirrors the GORM sentinel so services can branch the same way
// against either backend.
var notFound = gorm.ErrRecordNotFound

func paginate[T any](records []T, page, limit int) []T {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return []T{}
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	out := make([]T, end-start)
	copy(out, records[start:end])
	return out
}

// reversed returns a copy in newest-first order, matching the GORM
// repositories' "created_at desc" listings.
func reversed[T any](records []T) []T {
	out := make([]T, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}
