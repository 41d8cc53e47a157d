package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Requisition status enum constants
const (
	RequisitionDraft     = "DRAFT"
	RequisitionSubmitted = "SUBMITTED"
	RequisitionApproved  = "APPROVED"
	RequisitionRejected  = "REJECTED"
	RequisitionCancelled = "CANCELLED"
)

// PurchaseOrder (LPO) status enum constants
const (
	PurchaseOrderDraft     = "DRAFT"
	PurchaseOrderIssued    = "ISSUED"
	PurchaseOrderCompleted = "COMPLETED"
	PurchaseOrderCancelled = "CANCELLED"
)

// GoodsReceipt (GRN) status enum constants
const (
	GoodsReceiptPending  = "PENDING"
	GoodsReceiptReceived = "RECEIVED"
)

// VendorInvoice status enum constants
const (
	VendorInvoicePending  = "PENDING"
	VendorInvoiceApproved = "APPROVED"
	VendorInvoiceRejected = "REJECTED"
	VendorInvoicePaid     = "PAID"
)

// PaymentRequest status enum constants
const (
	PaymentRequestPending  = "PENDING"
	PaymentRequestApproved = "APPROVED"
	PaymentRequestRejected = "REJECTED"
	PaymentRequestSettled  = "SETTLED"
)

// Forward-only transition tables, one per entity. A transition absent from
// the table is never permitted; nothing ever reverts to an earlier status.
var (
	RequisitionTransitions = map[string][]string{
		RequisitionDraft:     {RequisitionSubmitted, RequisitionCancelled},
		RequisitionSubmitted: {RequisitionApproved, RequisitionRejected},
	}
	PurchaseOrderTransitions = map[string][]string{
		PurchaseOrderDraft:  {PurchaseOrderIssued, PurchaseOrderCancelled},
		PurchaseOrderIssued: {PurchaseOrderCompleted, PurchaseOrderCancelled},
	}
	GoodsReceiptTransitions = map[string][]string{
		GoodsReceiptPending: {GoodsReceiptReceived},
	}
	VendorInvoiceTransitions = map[string][]string{
		VendorInvoicePending:  {VendorInvoiceApproved, VendorInvoiceRejected},
		VendorInvoiceApproved: {VendorInvoicePaid},
	}
	PaymentRequestTransitions = map[string][]string{
		PaymentRequestPending:  {PaymentRequestApproved, PaymentRequestRejected},
		PaymentRequestApproved: {PaymentRequestSettled},
	}
)

// CanTransition reports whether the table allows current → next.
func CanTransition(table map[string][]string, current, next string) bool {
	for _, allowed := range table[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Requisition is the head of the procurement chain.
type Requisition struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LocationID   string            `gorm:"type:varchar(64);not null;index" json:"location_id"`
	DepartmentID string            `gorm:"type:varchar(64);index" json:"department_id"`
	Status       string            `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Purpose      string            `gorm:"type:text" json:"purpose"`
	Items        []RequisitionItem `gorm:"foreignKey:RequisitionID" json:"items"`
	RequestedBy  string            `gorm:"type:varchar(64)" json:"requested_by"`
	ApprovedBy   *string           `gorm:"type:varchar(64)" json:"approved_by"`
	ApprovedAt   *time.Time        `json:"approved_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type RequisitionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequisitionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"requisition_id"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity      int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
}

// PurchaseOrder (LPO) may only be raised against an APPROVED, co-located
// requisition; at most one per requisition.
type PurchaseOrder struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequisitionID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"requisition_id"`
	LocationID    string              `gorm:"type:varchar(64);not null;index" json:"location_id"`
	VendorName    string              `gorm:"type:varchar(255);not null" json:"vendor_name"`
	Status        string              `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Items         []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items"`
	CreatedBy     string              `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
}

// GoodsReceipt (GRN) records delivery against an ISSUED purchase order.
type GoodsReceipt struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"purchase_order_id"`
	LocationID      string             `gorm:"type:varchar(64);not null;index" json:"location_id"`
	Status          string             `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	TotalAmount     decimal.Decimal    `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Items           []GoodsReceiptItem `gorm:"foreignKey:GoodsReceiptID" json:"items"`
	ReceivedBy      *string            `gorm:"type:varchar(64)" json:"received_by"`
	ReceivedAt      *time.Time         `json:"received_at"`
	CreatedBy       string             `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type GoodsReceiptItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GoodsReceiptID uuid.UUID       `gorm:"type:uuid;not null;index" json:"goods_receipt_id"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity       int             `gorm:"type:int;not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
}

// VendorInvoice bills a RECEIVED goods receipt. Approval requires the
// 3-way match against the GRN and its purchase order.
type VendorInvoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GoodsReceiptID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"goods_receipt_id"`
	LocationID     string          `gorm:"type:varchar(64);not null;index" json:"location_id"`
	VendorName     string          `gorm:"type:varchar(255);not null" json:"vendor_name"`
	InvoiceNo      string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_no"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ApprovedBy     *string         `gorm:"type:varchar(64)" json:"approved_by"`
	ApprovedAt     *time.Time      `json:"approved_at"`
	CreatedBy      string          `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PaymentRequest asks finance to settle an APPROVED vendor invoice.
type PaymentRequest struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorInvoiceID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"vendor_invoice_id"`
	LocationID      string          `gorm:"type:varchar(64);not null;index" json:"location_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedBy       string          `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
