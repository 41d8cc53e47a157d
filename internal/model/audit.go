package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Procurement workflow actions
	ActionCreateRequisition     = "CREATE_REQUISITION"
	ActionSubmitRequisition     = "SUBMIT_REQUISITION"
	ActionApproveRequisition    = "APPROVE_REQUISITION"
	ActionRejectRequisition     = "REJECT_REQUISITION"
	ActionCancelRequisition     = "CANCEL_REQUISITION"
	ActionCreatePurchaseOrder   = "CREATE_PURCHASE_ORDER"
	ActionIssuePurchaseOrder    = "ISSUE_PURCHASE_ORDER"
	ActionCancelPurchaseOrder   = "CANCEL_PURCHASE_ORDER"
	ActionCompletePurchaseOrder = "COMPLETE_PURCHASE_ORDER"
	ActionCreateGoodsReceipt    = "CREATE_GOODS_RECEIPT"
	ActionReceiveGoodsReceipt   = "RECEIVE_GOODS_RECEIPT"
	ActionCreateVendorInvoice   = "CREATE_VENDOR_INVOICE"
	ActionRejectInvoice         = "REJECT_INVOICE"
	ActionCreatePaymentRequest  = "CREATE_PAYMENT_REQUEST"
	ActionApprovePaymentRequest = "APPROVE_PAYMENT_REQUEST"
	ActionRejectPaymentRequest  = "REJECT_PAYMENT_REQUEST"

	// Finance actions
	ActionPostLedgerEntry = "POST_LEDGER_ENTRY"
	ActionApproveInvoice  = "APPROVE_INVOICE"
	ActionPayInvoice      = "PAY_INVOICE"
	ActionCreateExpense   = "CREATE_EXPENSE"
	ActionPayExpense      = "PAY_EXPENSE"
	ActionRecordSale      = "RECORD_SALE"
	ActionPostRevenue     = "POST_REVENUE"
	ActionReversePosting  = "REVERSE_POSTING"

	// Inventory actions
	ActionCreateItem     = "CREATE_ITEM"
	ActionOpeningBalance = "RECORD_OPENING_BALANCE"
	ActionTransferStock  = "TRANSFER_STOCK"
	ActionIssueStock     = "ISSUE_STOCK"
	ActionAdjustStock    = "ADJUST_STOCK"
	ActionCreateMovement = "CREATE_STOCK_MOVEMENT"
)

// Entity type tags used on audit records.
const (
	EntityRequisition    = "REQUISITION"
	EntityPurchaseOrder  = "PURCHASE_ORDER"
	EntityGoodsReceipt   = "GOODS_RECEIPT"
	EntityVendorInvoice  = "VENDOR_INVOICE"
	EntityPaymentRequest = "PAYMENT_REQUEST"
	EntityLedgerEntry    = "LEDGER_ENTRY"
	EntityExpense        = "EXPENSE"
	EntitySale           = "SALE"
	EntityItem           = "ITEM"
	EntityStockMovement  = "STOCK_MOVEMENT"
)

// AuditRecord is the append-only who/what/when row every mutation must
// produce. Records sharing a TraceID form the causal chain of one logical
// business operation. Rows are never updated or deleted; Seq gives the
// store a monotonic write order the envelope verifies against.
type AuditRecord struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement" json:"seq"`
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();uniqueIndex" json:"id"`
	ActorID    string    `gorm:"type:varchar(64);index" json:"actor_id"`
	ActorRole  string    `gorm:"type:varchar(50)" json:"actor_role"`
	LocationID string    `gorm:"type:varchar(64);index" json:"location_id"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(64);index" json:"entity_id"`
	Details    string    `gorm:"type:jsonb" json:"details"`            // serialized change payload
	Snapshot   string    `gorm:"type:jsonb" json:"snapshot,omitempty"` // optional before/after state
	TraceID    string    `gorm:"type:varchar(64);index" json:"trace_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
