package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account codes. OPEX sub-accounts share the "OPEX:" prefix so expenditure
// reports can group them without a chart-of-accounts table.
const (
	AccountCOGS            = "COGS"
	AccountAccountsPayable = "ACCOUNTS_PAYABLE"
	AccountRevenue         = "REVENUE"
	AccountCash            = "CASH"
	AccountBank            = "BANK"
	AccountMobileMoney     = "MOBILE_MONEY"
	AccountCard            = "CARD"
	OpexAccountPrefix      = "OPEX:"
)

// PaymentMethod enum constants. Each maps to the cash-side account credited
// or debited when money actually moves.
const (
	PaymentMethodCash        = "CASH"
	PaymentMethodBank        = "BANK"
	PaymentMethodMobileMoney = "MOBILE_MONEY"
	PaymentMethodCard        = "CARD"
)

// CashAccountFor returns the ledger account for a payment method,
// ok=false for methods outside the enum.
func CashAccountFor(method string) (string, bool) {
	switch method {
	case PaymentMethodCash:
		return AccountCash, true
	case PaymentMethodBank:
		return AccountBank, true
	case PaymentMethodMobileMoney:
		return AccountMobileMoney, true
	case PaymentMethodCard:
		return AccountCard, true
	}
	return "", false
}

// Ledger reference types. Entries sharing (ReferenceType, ReferenceID) form
// one balanced posting; the pair is the idempotency key.
const (
	RefTypeVendorInvoice  = "VENDOR_INVOICE"
	RefTypeInvoicePayment = "INVOICE_PAYMENT"
	RefTypeExpense        = "EXPENSE"
	RefTypeExpensePayment = "EXPENSE_PAYMENT"
	RefTypeSalesRevenue   = "SALES_REVENUE"
	RefTypeReversal       = "REVERSAL"
)

// LedgerEntry is one immutable double-entry line. Entries are only ever
// appended; corrections are mirror postings under a reversal reference.
type LedgerEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LocationID    string          `gorm:"type:varchar(64);not null;index" json:"location_id"`
	AccountCode   string          `gorm:"type:varchar(50);not null;index" json:"account_code"`
	Debit         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"debit"`
	Credit        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"credit"`
	ReferenceType string          `gorm:"type:varchar(30);not null;index:idx_ledger_reference" json:"reference_type"`
	ReferenceID   string          `gorm:"type:varchar(64);not null;index:idx_ledger_reference" json:"reference_id"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// ExpenseStatus enum constants
const (
	ExpenseUnpaid = "UNPAID"
	ExpensePaid   = "PAID"
)

// Expense is a non-procurement operating cost. Creating it accrues
// OPEX/AP; paying it settles AP against a cash account exactly once.
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LocationID  string          `gorm:"type:varchar(64);not null;index" json:"location_id"`
	Category    string          `gorm:"type:varchar(50);not null" json:"category"` // OPEX sub-account suffix, e.g. FUEL
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Status      string          `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedBy   string          `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Sale is a recorded sales total used as the revenue-posting source.
// Revenue postings aggregate sales per (location, date window) under a
// deterministic reference id, so a window posts at most once.
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LocationID string          `gorm:"type:varchar(64);not null;index" json:"location_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	OccurredAt time.Time       `gorm:"index;not null" json:"occurred_at"`
	CreatedBy  string          `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}
