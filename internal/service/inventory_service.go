package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/envelope"
	"backend/internal/guard"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateItemRequest struct {
	SKU       string `json:"sku" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Unit      string `json:"unit"`
	BasePrice string `json:"base_price" binding:"required"`
}

type OpeningBalanceRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	ItemID     string `json:"item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	UnitCost   string `json:"unit_cost" binding:"required"`
}

type TransferStockRequest struct {
	FromLocationID string `json:"from_location_id" binding:"required"`
	ToLocationID   string `json:"to_location_id" binding:"required"`
	ItemID         string `json:"item_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required"`
}

type IssueStockRequest struct {
	LocationID   string `json:"location_id" binding:"required"`
	DepartmentID string `json:"department_id" binding:"required"`
	ItemID       string `json:"item_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
}

type AdjustStockRequest struct {
	LocationID    string `json:"location_id" binding:"required"`
	ItemID        string `json:"item_id" binding:"required"`
	QuantityDelta int    `json:"quantity_delta" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
}

type ItemResponse struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	BasePrice string `json:"base_price"`
}

type StockMovementResponse struct {
	ID            string `json:"id"`
	LocationID    string `json:"location_id"`
	DepartmentID  string `json:"department_id,omitempty"`
	ItemID        string `json:"item_id"`
	MovementType  string `json:"movement_type"`
	Quantity      int    `json:"quantity"`
	UnitCost      string `json:"unit_cost"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type StockBalanceResponse struct {
	LocationID string `json:"location_id"`
	ItemID     string `json:"item_id"`
	Balance    int    `json:"balance"`
}

type TransferResponse struct {
	ReferenceID string                `json:"reference_id"`
	Out         StockMovementResponse `json:"out"`
	In          StockMovementResponse `json:"in"`
}

type DepartmentStockLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type ValuationLine struct {
	ItemID   string `json:"item_id"`
	Balance  int    `json:"balance"`
	UnitCost string `json:"unit_cost"`
	Value    string `json:"value"`
}

type ValuationResponse struct {
	LocationID string          `json:"location_id"`
	Lines      []ValuationLine `json:"lines"`
	TotalValue string          `json:"total_value"`
}

// --- Interface ---

// InventoryService keeps the append-only stock ledger. On-hand balances
// are always derived from movement history and may never go negative.
type InventoryService interface {
	CreateItem(ctx context.Context, actor model.Actor, req CreateItemRequest) (*ItemResponse, error)
	ListItems(ctx context.Context, actor model.Actor, page, limit int) ([]ItemResponse, int64, error)

	ComputeBalance(ctx context.Context, actor model.Actor, locationID, itemID string) (*StockBalanceResponse, error)
	ListMovements(ctx context.Context, actor model.Actor, locationID string) ([]StockMovementResponse, error)
	GetDepartmentStock(ctx context.Context, actor model.Actor, locationID, departmentID string) ([]DepartmentStockLine, error)
	GetStockValuation(ctx context.Context, actor model.Actor, locationID string) (*ValuationResponse, error)

	RecordOpeningBalance(ctx context.Context, actor model.Actor, req OpeningBalanceRequest) (*StockMovementResponse, error)
	TransferStock(ctx context.Context, actor model.Actor, req TransferStockRequest) (*TransferResponse, error)
	IssueToDepartment(ctx context.Context, actor model.Actor, req IssueStockRequest) (*StockMovementResponse, error)
	AdjustStock(ctx context.Context, actor model.Actor, req AdjustStockRequest) (*StockMovementResponse, error)
}

type inventoryService struct {
	stockRepo repository.StockMovementRepository
	itemRepo  repository.ItemRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	env       *envelope.Envelope
}

// NewInventoryService returns a new instance of InventoryService
func NewInventoryService(
	stockRepo repository.StockMovementRepository,
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	env *envelope.Envelope,
) InventoryService {
	return &inventoryService{
		stockRepo: stockRepo,
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		env:       env,
	}
}

// --- Implementation ---

func (s *inventoryService) CreateItem(ctx context.Context, actor model.Actor, req CreateItemRequest) (*ItemResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	basePrice, err := parsePositiveAmount("base price", req.BasePrice)
	if err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionCreateItem, EntityType: model.EntityItem}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*ItemResponse, error) {
		item := &model.Item{
			ID:        uuid.New(),
			SKU:       req.SKU,
			Name:      req.Name,
			Unit:      req.Unit,
			BasePrice: basePrice,
		}
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.itemRepo.Create(txCtx, item); err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, "", model.ActionCreateItem, model.EntityItem, item.ID.String(), trace.ReferenceChainID, map[string]string{
				"sku":        item.SKU,
				"name":       item.Name,
				"base_price": item.BasePrice.StringFixed(4),
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapItemResponse(item), nil
	})
}

func (s *inventoryService) ListItems(ctx context.Context, actor model.Actor, page, limit int) ([]ItemResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	items, total, err := s.itemRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *mapItemResponse(&items[i]))
	}
	return responses, total, nil
}

// balance folds the movement history for one (location, item) pair.
func (s *inventoryService) balance(ctx context.Context, locationID string, itemID uuid.UUID) (int, error) {
	movements, err := s.stockRepo.ListByLocationItem(ctx, locationID, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to list stock movements: %w", err)
	}
	total := 0
	for _, movement := range movements {
		total += movement.Effect()
	}
	return total, nil
}

func (s *inventoryService) ComputeBalance(ctx context.Context, actor model.Actor, locationID, itemID string) (*StockBalanceResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, locationID); err != nil {
		return nil, err
	}
	id, err := parseUUID("item id", itemID)
	if err != nil {
		return nil, err
	}
	total, err := s.balance(ctx, locationID, id)
	if err != nil {
		return nil, err
	}
	return &StockBalanceResponse{LocationID: locationID, ItemID: itemID, Balance: total}, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, actor model.Actor, locationID string) ([]StockMovementResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, locationID); err != nil {
		return nil, err
	}
	movements, err := s.stockRepo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	movements = guard.FilterByDepartment(actor, movements)

	responses := make([]StockMovementResponse, 0, len(movements))
	for _, movement := range movements {
		responses = append(responses, mapStockMovementResponse(movement))
	}
	return responses, nil
}

func (s *inventoryService) GetDepartmentStock(ctx context.Context, actor model.Actor, locationID, departmentID string) ([]DepartmentStockLine, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertDepartmentAccess(actor, locationID, departmentID); err != nil {
		return nil, err
	}
	movements, err := s.stockRepo.ListByDepartment(ctx, locationID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list department movements: %w", err)
	}

	totals := map[uuid.UUID]int{}
	order := []uuid.UUID{}
	for _, movement := range movements {
		if movement.MovementType != model.MovementDepartmentIssue {
			continue
		}
		if _, seen := totals[movement.ItemID]; !seen {
			order = append(order, movement.ItemID)
		}
		totals[movement.ItemID] += movement.Quantity
	}

	lines := make([]DepartmentStockLine, 0, len(order))
	for _, itemID := range order {
		lines = append(lines, DepartmentStockLine{ItemID: itemID.String(), Quantity: totals[itemID]})
	}
	return lines, nil
}

// GetStockValuation prices each item's balance at its most recent movement
// unit cost, falling back to the catalogue base price for items that have
// never moved with a cost.
func (s *inventoryService) GetStockValuation(ctx context.Context, actor model.Actor, locationID string) (*ValuationResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, locationID); err != nil {
		return nil, err
	}
	movements, err := s.stockRepo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}

	balances := map[uuid.UUID]int{}
	lastCost := map[uuid.UUID]decimal.Decimal{}
	order := []uuid.UUID{}
	for _, movement := range movements {
		if _, seen := balances[movement.ItemID]; !seen {
			order = append(order, movement.ItemID)
		}
		balances[movement.ItemID] += movement.Effect()
		if movement.UnitCost.IsPositive() {
			lastCost[movement.ItemID] = movement.UnitCost
		}
	}

	lines := make([]ValuationLine, 0, len(order))
	total := decimal.Zero
	for _, itemID := range order {
		cost, ok := lastCost[itemID]
		if !ok {
			item, err := s.itemRepo.FindByID(ctx, itemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					cost = decimal.Zero
				} else {
					return nil, fmt.Errorf("failed to load item: %w", err)
				}
			} else {
				cost = item.BasePrice
			}
		}
		value := cost.Mul(decimal.NewFromInt(int64(balances[itemID])))
		total = total.Add(value)
		lines = append(lines, ValuationLine{
			ItemID:   itemID.String(),
			Balance:  balances[itemID],
			UnitCost: cost.StringFixed(4),
			Value:    value.StringFixed(4),
		})
	}

	return &ValuationResponse{LocationID: locationID, Lines: lines, TotalValue: total.StringFixed(4)}, nil
}

// appendMovement writes one movement plus its audit row.
func (s *inventoryService) appendMovement(ctx context.Context, actor model.Actor, trace *envelope.Trace, action string, movement *model.StockMovement) error {
	if err := s.stockRepo.Append(ctx, movement); err != nil {
		return fmt.Errorf("failed to append stock movement: %w", err)
	}
	return appendAudit(ctx, s.auditRepo, actor, movement.LocationID, action, model.EntityStockMovement, movement.ID.String(), trace.ReferenceChainID, map[string]interface{}{
		"movement_type":  movement.MovementType,
		"item_id":        movement.ItemID.String(),
		"quantity":       movement.Quantity,
		"unit_cost":      movement.UnitCost.StringFixed(4),
		"department_id":  movement.DepartmentID,
		"reference_type": movement.ReferenceType,
		"reference_id":   movement.ReferenceID,
	}, nil)
}

func (s *inventoryService) RecordOpeningBalance(ctx context.Context, actor model.Actor, req OpeningBalanceRequest) (*StockMovementResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, req.LocationID); err != nil {
		return nil, err
	}
	itemID, err := parseUUID("item id", req.ItemID)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperror.Domain("opening balance quantity must be positive, got %d", req.Quantity)
	}
	unitCost, err := parsePositiveAmount("unit cost", req.UnitCost)
	if err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionOpeningBalance, EntityType: model.EntityStockMovement, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*StockMovementResponse, error) {
		movement := &model.StockMovement{
			ID:           uuid.New(),
			LocationID:   req.LocationID,
			ItemID:       itemID,
			MovementType: model.MovementOpeningBalance,
			Quantity:     req.Quantity,
			UnitCost:     unitCost,
			CreatedBy:    actor.ID,
		}
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			movements, err := s.stockRepo.ListByLocationItem(txCtx, req.LocationID, itemID)
			if err != nil {
				return fmt.Errorf("failed to list stock movements: %w", err)
			}
			for _, existing := range movements {
				if existing.MovementType == model.MovementOpeningBalance {
					return apperror.Domain("opening balance already recorded for item %s at location %s", req.ItemID, req.LocationID)
				}
			}
			return s.appendMovement(txCtx, actor, trace, model.ActionOpeningBalance, movement)
		})
		if err != nil {
			return nil, err
		}
		response := mapStockMovementResponse(*movement)
		return &response, nil
	})
}

func (s *inventoryService) TransferStock(ctx context.Context, actor model.Actor, req TransferStockRequest) (*TransferResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, req.FromLocationID); err != nil {
		return nil, err
	}
	if req.FromLocationID == req.ToLocationID {
		return nil, apperror.Domain("transfer source and destination are the same location %s", req.FromLocationID)
	}
	itemID, err := parseUUID("item id", req.ItemID)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperror.Domain("transfer quantity must be positive, got %d", req.Quantity)
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionTransferStock, EntityType: model.EntityStockMovement, LocationID: req.FromLocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*TransferResponse, error) {
		transferID := uuid.NewString()
		trace.ReferenceChainID = uuid.NewString()
		var out, in *model.StockMovement
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			available, err := s.balance(txCtx, req.FromLocationID, itemID)
			if err != nil {
				return err
			}
			if available < req.Quantity {
				return apperror.Domain("insufficient stock for item %s at location %s: have %d, need %d", req.ItemID, req.FromLocationID, available, req.Quantity).
					WithMeta("available", available).
					WithMeta("requested", req.Quantity)
			}
			unitCost := s.lastUnitCost(txCtx, req.FromLocationID, itemID)

			out = &model.StockMovement{
				ID:            uuid.New(),
				LocationID:    req.FromLocationID,
				ItemID:        itemID,
				MovementType:  model.MovementTransferOut,
				Quantity:      req.Quantity,
				UnitCost:      unitCost,
				ReferenceType: model.MovementRefTransfer,
				ReferenceID:   transferID,
				CreatedBy:     actor.ID,
			}
			in = &model.StockMovement{
				ID:            uuid.New(),
				LocationID:    req.ToLocationID,
				ItemID:        itemID,
				MovementType:  model.MovementTransferIn,
				Quantity:      req.Quantity,
				UnitCost:      unitCost,
				ReferenceType: model.MovementRefTransfer,
				ReferenceID:   transferID,
				CreatedBy:     actor.ID,
			}
			if err := s.appendMovement(txCtx, actor, trace, model.ActionTransferStock, out); err != nil {
				return err
			}
			return s.appendMovement(txCtx, actor, trace, model.ActionTransferStock, in)
		})
		if err != nil {
			return nil, err
		}
		return &TransferResponse{
			ReferenceID: transferID,
			Out:         mapStockMovementResponse(*out),
			In:          mapStockMovementResponse(*in),
		}, nil
	})
}

// lastUnitCost returns the most recent positive unit cost seen for the
// pair, zero if none exists.
func (s *inventoryService) lastUnitCost(ctx context.Context, locationID string, itemID uuid.UUID) decimal.Decimal {
	movements, err := s.stockRepo.ListByLocationItem(ctx, locationID, itemID)
	if err != nil {
		return decimal.Zero
	}
	cost := decimal.Zero
	for _, movement := range movements {
		if movement.UnitCost.IsPositive() {
			cost = movement.UnitCost
		}
	}
	return cost
}

func (s *inventoryService) IssueToDepartment(ctx context.Context, actor model.Actor, req IssueStockRequest) (*StockMovementResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertDepartmentAccess(actor, req.LocationID, req.DepartmentID); err != nil {
		return nil, err
	}
	itemID, err := parseUUID("item id", req.ItemID)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperror.Domain("issue quantity must be positive, got %d", req.Quantity)
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionIssueStock, EntityType: model.EntityStockMovement, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*StockMovementResponse, error) {
		var movement *model.StockMovement
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			available, err := s.balance(txCtx, req.LocationID, itemID)
			if err != nil {
				return err
			}
			if available < req.Quantity {
				return apperror.Domain("insufficient stock for item %s at location %s: have %d, need %d", req.ItemID, req.LocationID, available, req.Quantity).
					WithMeta("available", available).
					WithMeta("requested", req.Quantity)
			}
			movement = &model.StockMovement{
				ID:            uuid.New(),
				LocationID:    req.LocationID,
				DepartmentID:  req.DepartmentID,
				ItemID:        itemID,
				MovementType:  model.MovementDepartmentIssue,
				Quantity:      req.Quantity,
				UnitCost:      s.lastUnitCost(txCtx, req.LocationID, itemID),
				ReferenceType: model.MovementRefIssue,
				ReferenceID:   uuid.NewString(),
				CreatedBy:     actor.ID,
			}
			return s.appendMovement(txCtx, actor, trace, model.ActionIssueStock, movement)
		})
		if err != nil {
			return nil, err
		}
		response := mapStockMovementResponse(*movement)
		return &response, nil
	})
}

func (s *inventoryService) AdjustStock(ctx context.Context, actor model.Actor, req AdjustStockRequest) (*StockMovementResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, req.LocationID); err != nil {
		return nil, err
	}
	itemID, err := parseUUID("item id", req.ItemID)
	if err != nil {
		return nil, err
	}
	if req.QuantityDelta == 0 {
		return nil, apperror.Domain("adjustment delta must be non-zero")
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionAdjustStock, EntityType: model.EntityStockMovement, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*StockMovementResponse, error) {
		var movement *model.StockMovement
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			available, err := s.balance(txCtx, req.LocationID, itemID)
			if err != nil {
				return err
			}
			if available+req.QuantityDelta < 0 {
				return apperror.Domain("adjustment would drive item %s at location %s negative: have %d, delta %d", req.ItemID, req.LocationID, available, req.QuantityDelta).
					WithMeta("available", available).
					WithMeta("delta", req.QuantityDelta)
			}
			movement = &model.StockMovement{
				ID:            uuid.New(),
				LocationID:    req.LocationID,
				ItemID:        itemID,
				MovementType:  model.MovementAdjustment,
				Quantity:      req.QuantityDelta,
				UnitCost:      s.lastUnitCost(txCtx, req.LocationID, itemID),
				ReferenceType: model.MovementRefAdjustment,
				ReferenceID:   uuid.NewString(),
				CreatedBy:     actor.ID,
			}
			if err := s.stockRepo.Append(txCtx, movement); err != nil {
				return fmt.Errorf("failed to append stock movement: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, req.LocationID, model.ActionAdjustStock, model.EntityStockMovement, movement.ID.String(), trace.ReferenceChainID, map[string]interface{}{
				"movement_type": movement.MovementType,
				"item_id":       movement.ItemID.String(),
				"delta":         req.QuantityDelta,
				"reason":        req.Reason,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		response := mapStockMovementResponse(*movement)
		return &response, nil
	})
}

// --- Mapping ---

func mapItemResponse(item *model.Item) *ItemResponse {
	return &ItemResponse{
		ID:        item.ID.String(),
		SKU:       item.SKU,
		Name:      item.Name,
		Unit:      item.Unit,
		BasePrice: item.BasePrice.StringFixed(4),
	}
}

func mapStockMovementResponse(m model.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID.String(),
		LocationID:    m.LocationID,
		DepartmentID:  m.DepartmentID,
		ItemID:        m.ItemID.String(),
		MovementType:  m.MovementType,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost.StringFixed(4),
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
