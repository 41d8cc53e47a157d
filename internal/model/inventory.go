package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a stockable catalogue entry. BasePrice is the valuation fallback
// when an item has no movement history at a location.
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU       string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string          `gorm:"type:varchar(20)" json:"unit"`
	BasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"base_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MovementType enum constants
const (
	MovementOpeningBalance  = "OPENING_BALANCE"
	MovementPurchaseReceipt = "PURCHASE_RECEIPT"
	MovementTransferIn      = "TRANSFER_IN"
	MovementTransferOut     = "TRANSFER_OUT"
	MovementDepartmentIssue = "DEPARTMENT_ISSUE"
	MovementAdjustment      = "ADJUSTMENT"
)

// MovementSign gives the effect of a movement type on on-hand balance.
// ADJUSTMENT quantities already carry their own sign.
func MovementSign(movementType string) int {
	switch movementType {
	case MovementTransferOut, MovementDepartmentIssue:
		return -1
	default:
		return 1
	}
}

// Movement reference types linking a movement back to its source document.
const (
	MovementRefGoodsReceipt = "GOODS_RECEIPT"
	MovementRefTransfer     = "TRANSFER"
	MovementRefIssue        = "DEPARTMENT_ISSUE"
	MovementRefAdjustment   = "ADJUSTMENT"
)

// StockMovement is the append-only inventory ledger row. On-hand balance
// for (location, item) is always the signed sum of movements; no table
// stores a mutable stock counter.
type StockMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LocationID    string          `gorm:"type:varchar(64);not null;index:idx_movement_loc_item" json:"location_id"`
	DepartmentID  string          `gorm:"type:varchar(64);index" json:"department_id"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_loc_item" json:"item_id"`
	MovementType  string          `gorm:"type:varchar(30);not null;index" json:"movement_type"`
	Quantity      int             `gorm:"type:int;not null" json:"quantity"` // positive except signed ADJUSTMENT
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	ReferenceType string          `gorm:"type:varchar(30);index" json:"reference_type"`
	ReferenceID   string          `gorm:"type:varchar(64);index" json:"reference_id"`
	CreatedBy     string          `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// Effect returns the signed balance contribution of this movement.
func (m StockMovement) Effect() int {
	if m.MovementType == MovementAdjustment {
		return m.Quantity
	}
	return MovementSign(m.MovementType) * m.Quantity
}
