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

type RequisitionItemRequest struct {
	ItemID    string `json:"item_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type CreateRequisitionRequest struct {
	LocationID   string                   `json:"location_id" binding:"required"`
	DepartmentID string                   `json:"department_id" binding:"required"`
	Purpose      string                   `json:"purpose"`
	Items        []RequisitionItemRequest `json:"items" binding:"required"`
}

type CreatePurchaseOrderRequest struct {
	RequisitionID string `json:"requisition_id" binding:"required"`
	VendorName    string `json:"vendor_name" binding:"required"`
}

type GoodsReceiptItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	UnitCost string `json:"unit_cost" binding:"required"`
}

type CreateGoodsReceiptRequest struct {
	PurchaseOrderID string                    `json:"purchase_order_id" binding:"required"`
	Items           []GoodsReceiptItemRequest `json:"items" binding:"required"`
}

type CreateVendorInvoiceRequest struct {
	GoodsReceiptID string `json:"goods_receipt_id" binding:"required"`
	VendorName     string `json:"vendor_name" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	InvoiceNo      string `json:"invoice_no"`
}

type CreatePaymentRequestRequest struct {
	VendorInvoiceID string `json:"vendor_invoice_id" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
}

type RequisitionItemResponse struct {
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type RequisitionResponse struct {
	ID           string                    `json:"id"`
	LocationID   string                    `json:"location_id"`
	DepartmentID string                    `json:"department_id"`
	Status       string                    `json:"status"`
	Purpose      string                    `json:"purpose"`
	Items        []RequisitionItemResponse `json:"items"`
	RequestedBy  string                    `json:"requested_by"`
	ApprovedBy   *string                   `json:"approved_by,omitempty"`
	CreatedAt    string                    `json:"created_at"`
}

type PurchaseOrderResponse struct {
	ID            string                    `json:"id"`
	RequisitionID string                    `json:"requisition_id"`
	LocationID    string                    `json:"location_id"`
	VendorName    string                    `json:"vendor_name"`
	Status        string                    `json:"status"`
	TotalAmount   string                    `json:"total_amount"`
	Items         []RequisitionItemResponse `json:"items"`
	CreatedBy     string                    `json:"created_by"`
	CreatedAt     string                    `json:"created_at"`
}

type GoodsReceiptItemResponse struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	UnitCost string `json:"unit_cost"`
}

type GoodsReceiptResponse struct {
	ID              string                     `json:"id"`
	PurchaseOrderID string                     `json:"purchase_order_id"`
	LocationID      string                     `json:"location_id"`
	Status          string                     `json:"status"`
	TotalAmount     string                     `json:"total_amount"`
	Items           []GoodsReceiptItemResponse `json:"items"`
	ReceivedBy      *string                    `json:"received_by,omitempty"`
	CreatedAt       string                     `json:"created_at"`
}

type VendorInvoiceResponse struct {
	ID             string  `json:"id"`
	GoodsReceiptID string  `json:"goods_receipt_id"`
	LocationID     string  `json:"location_id"`
	VendorName     string  `json:"vendor_name"`
	InvoiceNo      string  `json:"invoice_no"`
	Amount         string  `json:"amount"`
	Status         string  `json:"status"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type PaymentRequestResponse struct {
	ID              string `json:"id"`
	VendorInvoiceID string `json:"vendor_invoice_id"`
	LocationID      string `json:"location_id"`
	Amount          string `json:"amount"`
	PaymentMethod   string `json:"payment_method"`
	Status          string `json:"status"`
	CreatedBy       string `json:"created_by"`
	CreatedAt       string `json:"created_at"`
}

// --- Interface ---

// ProcurementService drives the requisition → purchase order → goods
// receipt → vendor invoice → payment request chain. Statuses only ever
// move forward through the per-entity transition tables, and every
// downstream document must be co-located with its upstream one.
type ProcurementService interface {
	CreateRequisition(ctx context.Context, actor model.Actor, req CreateRequisitionRequest) (*RequisitionResponse, error)
	SubmitRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error)
	ApproveRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error)
	RejectRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error)
	CancelRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error)
	GetRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error)
	ListRequisitions(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]RequisitionResponse, int64, error)

	CreatePurchaseOrder(ctx context.Context, actor model.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error)
	IssuePurchaseOrder(ctx context.Context, actor model.Actor, orderID string) (*PurchaseOrderResponse, error)
	CancelPurchaseOrder(ctx context.Context, actor model.Actor, orderID string) (*PurchaseOrderResponse, error)
	GetPurchaseOrder(ctx context.Context, actor model.Actor, orderID string) (*PurchaseOrderResponse, error)
	ListPurchaseOrders(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]PurchaseOrderResponse, int64, error)

	CreateGoodsReceipt(ctx context.Context, actor model.Actor, req CreateGoodsReceiptRequest) (*GoodsReceiptResponse, error)
	MarkGoodsReceiptReceived(ctx context.Context, actor model.Actor, receiptID string) (*GoodsReceiptResponse, error)
	GetGoodsReceipt(ctx context.Context, actor model.Actor, receiptID string) (*GoodsReceiptResponse, error)
	ListGoodsReceipts(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]GoodsReceiptResponse, int64, error)

	CreateVendorInvoice(ctx context.Context, actor model.Actor, req CreateVendorInvoiceRequest) (*VendorInvoiceResponse, error)
	RejectVendorInvoice(ctx context.Context, actor model.Actor, invoiceID string) (*VendorInvoiceResponse, error)
	ListVendorInvoices(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]VendorInvoiceResponse, int64, error)

	CreatePaymentRequest(ctx context.Context, actor model.Actor, req CreatePaymentRequestRequest) (*PaymentRequestResponse, error)
	ApprovePaymentRequest(ctx context.Context, actor model.Actor, requestID string) (*PaymentRequestResponse, error)
	RejectPaymentRequest(ctx context.Context, actor model.Actor, requestID string) (*PaymentRequestResponse, error)
	ListPaymentRequests(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]PaymentRequestResponse, int64, error)
}

type procurementService struct {
	requisitionRepo repository.RequisitionRepository
	orderRepo       repository.PurchaseOrderRepository
	receiptRepo     repository.GoodsReceiptRepository
	invoiceRepo     repository.VendorInvoiceRepository
	payReqRepo      repository.PaymentRequestRepository
	stockRepo       repository.StockMovementRepository
	itemRepo        repository.ItemRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	env             *envelope.Envelope
}

// NewProcurementService returns a new instance of ProcurementService
func NewProcurementService(
	requisitionRepo repository.RequisitionRepository,
	orderRepo repository.PurchaseOrderRepository,
	receiptRepo repository.GoodsReceiptRepository,
	invoiceRepo repository.VendorInvoiceRepository,
	payReqRepo repository.PaymentRequestRepository,
	stockRepo repository.StockMovementRepository,
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	env *envelope.Envelope,
) ProcurementService {
	return &procurementService{
		requisitionRepo: requisitionRepo,
		orderRepo:       orderRepo,
		receiptRepo:     receiptRepo,
		invoiceRepo:     invoiceRepo,
		payReqRepo:      payReqRepo,
		stockRepo:       stockRepo,
		itemRepo:        itemRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		env:             env,
	}
}

// --- Requisitions ---

func (s *procurementService) CreateRequisition(ctx context.Context, actor model.Actor, req CreateRequisitionRequest) (*RequisitionResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertDepartmentAccess(actor, req.LocationID, req.DepartmentID); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperror.Domain("requisition needs at least one item")
	}

	items := make([]model.RequisitionItem, 0, len(req.Items))
	for _, raw := range req.Items {
		itemID, err := parseUUID("item id", raw.ItemID)
		if err != nil {
			return nil, err
		}
		if raw.Quantity <= 0 {
			return nil, apperror.Domain("item %s quantity must be positive, got %d", raw.ItemID, raw.Quantity)
		}
		unitPrice, err := parsePositiveAmount("unit price", raw.UnitPrice)
		if err != nil {
			return nil, err
		}
		if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Domain("item %s not found", raw.ItemID)
			}
			return nil, fmt.Errorf("failed to load item: %w", err)
		}
		items = append(items, model.RequisitionItem{ItemID: itemID, Quantity: raw.Quantity, UnitPrice: unitPrice})
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionCreateRequisition, EntityType: model.EntityRequisition, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*RequisitionResponse, error) {
		requisition := &model.Requisition{
			ID:           uuid.New(),
			LocationID:   req.LocationID,
			DepartmentID: req.DepartmentID,
			Status:       model.RequisitionDraft,
			Purpose:      req.Purpose,
			Items:        items,
			RequestedBy:  actor.ID,
		}
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.requisitionRepo.Create(txCtx, requisition); err != nil {
				return fmt.Errorf("failed to create requisition: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, req.LocationID, model.ActionCreateRequisition, model.EntityRequisition, requisition.ID.String(), trace.ReferenceChainID, map[string]interface{}{
				"department_id": req.DepartmentID,
				"status":        requisition.Status,
				"item_count":    len(items),
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapRequisitionResponse(requisition), nil
	})
}

// transitionRequisition moves a requisition through its table and writes
// the transition audit row, all inside one transaction.
func (s *procurementService) transitionRequisition(ctx context.Context, actor model.Actor, requisitionID, next, action string, stamp bool) (*RequisitionResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("requisition id", requisitionID)
	if err != nil {
		return nil, err
	}
	requisition, err := s.loadRequisition(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: action, EntityType: model.EntityRequisition, LocationID: requisition.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*RequisitionResponse, error) {
		var updated *model.Requisition
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.loadRequisition(txCtx, id)
			if err != nil {
				return err
			}
			if err := guard.AssertLocationAccess(actor, current.LocationID); err != nil {
				return err
			}
			if !model.CanTransition(model.RequisitionTransitions, current.Status, next) {
				return transitionError(model.EntityRequisition, current.ID.String(), current.Status, next)
			}
			previous := current.Status
			current.Status = next
			if stamp {
				now := time.Now()
				current.ApprovedBy = &actor.ID
				current.ApprovedAt = &now
			}
			if err := s.requisitionRepo.Update(txCtx, current); err != nil {
				return fmt.Errorf("failed to update requisition: %w", err)
			}
			updated = current
			return appendAudit(txCtx, s.auditRepo, actor, current.LocationID, action, model.EntityRequisition, current.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status": previous,
				"to_status":   next,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapRequisitionResponse(updated), nil
	})
}

func (s *procurementService) SubmitRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error) {
	return s.transitionRequisition(ctx, actor, requisitionID, model.RequisitionSubmitted, model.ActionSubmitRequisition, false)
}

func (s *procurementService) ApproveRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error) {
	return s.transitionRequisition(ctx, actor, requisitionID, model.RequisitionApproved, model.ActionApproveRequisition, true)
}

func (s *procurementService) RejectRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error) {
	return s.transitionRequisition(ctx, actor, requisitionID, model.RequisitionRejected, model.ActionRejectRequisition, true)
}

func (s *procurementService) CancelRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error) {
	return s.transitionRequisition(ctx, actor, requisitionID, model.RequisitionCancelled, model.ActionCancelRequisition, false)
}

func (s *procurementService) GetRequisition(ctx context.Context, actor model.Actor, requisitionID string) (*RequisitionResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("requisition id", requisitionID)
	if err != nil {
		return nil, err
	}
	requisition, err := s.loadRequisition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, requisition.LocationID); err != nil {
		return nil, err
	}
	return mapRequisitionResponse(requisition), nil
}

func (s *procurementService) ListRequisitions(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]RequisitionResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	scoped, err := resolveLocationScope(actor, locationID)
	if err != nil {
		return nil, 0, err
	}
	requisitions, total, err := s.requisitionRepo.List(ctx, repository.RequisitionListFilter{LocationID: scoped, Status: status, Page: page, Limit: limit})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requisitions: %w", err)
	}
	requisitions = guard.FilterByDepartment(actor, requisitions)

	responses := make([]RequisitionResponse, 0, len(requisitions))
	for i := range requisitions {
		responses = append(responses, *mapRequisitionResponse(&requisitions[i]))
	}
	return responses, total, nil
}

func (s *procurementService) loadRequisition(ctx context.Context, id uuid.UUID) (*model.Requisition, error) {
	requisition, err := s.requisitionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("requisition %s not found", id)
		}
		return nil, fmt.Errorf("failed to load requisition: %w", err)
	}
	return requisition, nil
}

// --- Purchase orders ---

func (s *procurementService) CreatePurchaseOrder(ctx context.Context, actor model.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	requisitionID, err := parseUUID("requisition id", req.RequisitionID)
	if err != nil {
		return nil, err
	}
	requisition, err := s.loadRequisition(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, requisition.LocationID); err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionCreatePurchaseOrder, EntityType: model.EntityPurchaseOrder, LocationID: requisition.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PurchaseOrderResponse, error) {
		var order *model.PurchaseOrder
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.loadRequisition(txCtx, requisitionID)
			if err != nil {
				return err
			}
			if current.Status != model.RequisitionApproved {
				return apperror.Lifecycle("cannot create purchase order: requisition %s status is %q, must be %q", current.ID, current.Status, model.RequisitionApproved).
					WithMeta("requisition_status", current.Status)
			}
			existing, err := s.orderRepo.FindByRequisition(txCtx, requisitionID)
			if err != nil {
				return fmt.Errorf("failed to check existing purchase order: %w", err)
			}
			if existing != nil {
				return apperror.Domain("requisition %s already has purchase order %s", requisitionID, existing.ID)
			}

			total := decimal.Zero
			items := make([]model.PurchaseOrderItem, 0, len(current.Items))
			for _, line := range current.Items {
				total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
				items = append(items, model.PurchaseOrderItem{ItemID: line.ItemID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
			}

			order = &model.PurchaseOrder{
				ID:            uuid.New(),
				RequisitionID: requisitionID,
				LocationID:    current.LocationID,
				VendorName:    req.VendorName,
				Status:        model.PurchaseOrderDraft,
				TotalAmount:   total,
				Items:         items,
				CreatedBy:     actor.ID,
			}
			if err := s.orderRepo.Create(txCtx, order); err != nil {
				return fmt.Errorf("failed to create purchase order: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, order.LocationID, model.ActionCreatePurchaseOrder, model.EntityPurchaseOrder, order.ID.String(), trace.ReferenceChainID, map[string]interface{}{
				"requisition_id": requisitionID.String(),
				"vendor_name":    req.VendorName,
				"total_amount":   total.StringFixed(4),
				"status":         order.Status,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapPurchaseOrderResponse(order), nil
	})
}

func (s *procurementService) transitionPurchaseOrder(ctx context.Context, actor model.Actor, orderID, next, action string, precheck func(txCtx context.Context, order *model.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("purchase order id", orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.loadPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: action, EntityType: model.EntityPurchaseOrder, LocationID: order.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PurchaseOrderResponse, error) {
		var updated *model.PurchaseOrder
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.loadPurchaseOrder(txCtx, id)
			if err != nil {
				return err
			}
			if err := guard.AssertLocationAccess(actor, current.LocationID); err != nil {
				return err
			}
			if !model.CanTransition(model.PurchaseOrderTransitions, current.Status, next) {
				return transitionError(model.EntityPurchaseOrder, current.ID.String(), current.Status, next)
			}
			if precheck != nil {
				if err := precheck(txCtx, current); err != nil {
					return err
				}
			}
			previous := current.Status
			current.Status = next
			if err := s.orderRepo.Update(txCtx, current); err != nil {
				return fmt.Errorf("failed to update purchase order: %w", err)
			}
			updated = current
			return appendAudit(txCtx, s.auditRepo, actor, current.LocationID, action, model.EntityPurchaseOrder, current.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status": previous,
				"to_status":   next,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapPurchaseOrderResponse(updated), nil
	})
}

func (s *procurementService) IssuePurchaseOrder(ctx context.Context, actor model.Actor, orderID string) (*PurchaseOrderResponse, error) {
	return s.transitionPurchaseOrder(ctx, actor, orderID, model.PurchaseOrderIssued, model.ActionIssuePurchaseOrder, nil)
}

func (s *procurementService) CancelPurchaseOrder(ctx context.Context, actor model.Actor, orderID string) (*PurchaseOrderResponse, error) {
	return s.transitionPurchaseOrder(ctx, actor, orderID, model.PurchaseOrderCancelled, model.ActionCancelPurchaseOrder, func(txCtx context.Context, order *model.PurchaseOrder) error {
		receipt, err := s.receiptRepo.FindByPurchaseOrder(txCtx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to check goods receipt: %w", err)
		}
		if receipt != nil {
			return apperror.Domain("purchase order %s already has goods receipt %s and cannot be cancelled", order.ID, receipt.ID)
		}
		return nil
	})
}

func (s *procurementService) GetPurchaseOrder(ctx context.Context, actor model.Actor, orderID string) (*PurchaseOrderResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("purchase order id", orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.loadPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, order.LocationID); err != nil {
		return nil, err
	}
	return mapPurchaseOrderResponse(order), nil
}

func (s *procurementService) ListPurchaseOrders(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]PurchaseOrderResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	scoped, err := resolveLocationScope(actor, locationID)
	if err != nil {
		return nil, 0, err
	}
	orders, total, err := s.orderRepo.List(ctx, repository.PurchaseOrderListFilter{LocationID: scoped, Status: status, Page: page, Limit: limit})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	responses := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *mapPurchaseOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

func (s *procurementService) loadPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("purchase order %s not found", id)
		}
		return nil, fmt.Errorf("failed to load purchase order: %w", err)
	}
	return order, nil
}

// --- Goods receipts ---

func (s *procurementService) CreateGoodsReceipt(ctx context.Context, actor model.Actor, req CreateGoodsReceiptRequest) (*GoodsReceiptResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	orderID, err := parseUUID("purchase order id", req.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperror.Domain("goods receipt needs at least one item")
	}
	order, err := s.loadPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, order.LocationID); err != nil {
		return nil, err
	}

	items := make([]model.GoodsReceiptItem, 0, len(req.Items))
	total := decimal.Zero
	for _, raw := range req.Items {
		itemID, err := parseUUID("item id", raw.ItemID)
		if err != nil {
			return nil, err
		}
		if raw.Quantity <= 0 {
			return nil, apperror.Domain("item %s quantity must be positive, got %d", raw.ItemID, raw.Quantity)
		}
		unitCost, err := parsePositiveAmount("unit cost", raw.UnitCost)
		if err != nil {
			return nil, err
		}
		total = total.Add(unitCost.Mul(decimal.NewFromInt(int64(raw.Quantity))))
		items = append(items, model.GoodsReceiptItem{ItemID: itemID, Quantity: raw.Quantity, UnitCost: unitCost})
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionCreateGoodsReceipt, EntityType: model.EntityGoodsReceipt, LocationID: order.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*GoodsReceiptResponse, error) {
		var receipt *model.GoodsReceipt
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.loadPurchaseOrder(txCtx, orderID)
			if err != nil {
				return err
			}
			if current.Status != model.PurchaseOrderIssued {
				return apperror.Lifecycle("cannot receive against purchase order %s: status is %q, must be %q", current.ID, current.Status, model.PurchaseOrderIssued).
					WithMeta("purchase_order_status", current.Status)
			}
			existing, err := s.receiptRepo.FindByPurchaseOrder(txCtx, orderID)
			if err != nil {
				return fmt.Errorf("failed to check existing goods receipt: %w", err)
			}
			if existing != nil {
				return apperror.Domain("purchase order %s already has goods receipt %s", orderID, existing.ID)
			}

			receipt = &model.GoodsReceipt{
				ID:              uuid.New(),
				PurchaseOrderID: orderID,
				LocationID:      current.LocationID,
				Status:          model.GoodsReceiptPending,
				TotalAmount:     total,
				Items:           items,
				CreatedBy:       actor.ID,
			}
			if err := s.receiptRepo.Create(txCtx, receipt); err != nil {
				return fmt.Errorf("failed to create goods receipt: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, receipt.LocationID, model.ActionCreateGoodsReceipt, model.EntityGoodsReceipt, receipt.ID.String(), trace.ReferenceChainID, map[string]interface{}{
				"purchase_order_id": orderID.String(),
				"total_amount":      total.StringFixed(4),
				"item_count":        len(items),
				"status":            receipt.Status,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapGoodsReceiptResponse(receipt), nil
	})
}

// MarkGoodsReceiptReceived is the pivot between procurement and inventory:
// one call books a purchase-receipt movement per line, marks the receipt
// RECEIVED, and completes its purchase order, all under one reference
// chain.
func (s *procurementService) MarkGoodsReceiptReceived(ctx context.Context, actor model.Actor, receiptID string) (*GoodsReceiptResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("goods receipt id", receiptID)
	if err != nil {
		return nil, err
	}
	receipt, err := s.loadGoodsReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionReceiveGoodsReceipt, EntityType: model.EntityGoodsReceipt, LocationID: receipt.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*GoodsReceiptResponse, error) {
		var updated *model.GoodsReceipt
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.loadGoodsReceipt(txCtx, id)
			if err != nil {
				return err
			}
			if err := guard.AssertLocationAccess(actor, current.LocationID); err != nil {
				return err
			}
			if !model.CanTransition(model.GoodsReceiptTransitions, current.Status, model.GoodsReceiptReceived) {
				return transitionError(model.EntityGoodsReceipt, current.ID.String(), current.Status, model.GoodsReceiptReceived)
			}
			booked, err := s.stockRepo.ExistsByReference(txCtx, model.MovementRefGoodsReceipt, current.ID.String())
			if err != nil {
				return fmt.Errorf("failed to check movement reference: %w", err)
			}
			if booked {
				return apperror.Invariant("stock movements already booked for goods receipt %s", current.ID).
					WithMeta("goods_receipt_id", current.ID.String())
			}

			for _, line := range current.Items {
				movement := &model.StockMovement{
					ID:            uuid.New(),
					LocationID:    current.LocationID,
					ItemID:        line.ItemID,
					MovementType:  model.MovementPurchaseReceipt,
					Quantity:      line.Quantity,
					UnitCost:      line.UnitCost,
					ReferenceType: model.MovementRefGoodsReceipt,
					ReferenceID:   current.ID.String(),
					CreatedBy:     actor.ID,
				}
				if err := s.stockRepo.Append(txCtx, movement); err != nil {
					return fmt.Errorf("failed to append stock movement: %w", err)
				}
				if err := appendAudit(txCtx, s.auditRepo, actor, current.LocationID, model.ActionCreateMovement, model.EntityStockMovement, movement.ID.String(), trace.ReferenceChainID, map[string]interface{}{
					"movement_type": movement.MovementType,
					"item_id":       line.ItemID.String(),
					"quantity":      line.Quantity,
					"unit_cost":     line.UnitCost.StringFixed(4),
				}, nil); err != nil {
					return err
				}
			}

			previous := current.Status
			now := time.Now()
			current.Status = model.GoodsReceiptReceived
			current.ReceivedBy = &actor.ID
			current.ReceivedAt = &now
			if err := s.receiptRepo.Update(txCtx, current); err != nil {
				return fmt.Errorf("failed to update goods receipt: %w", err)
			}
			if err := appendAudit(txCtx, s.auditRepo, actor, current.LocationID, model.ActionReceiveGoodsReceipt, model.EntityGoodsReceipt, current.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status": previous,
				"to_status":   current.Status,
			}, nil); err != nil {
				return err
			}

			order, err := s.loadPurchaseOrder(txCtx, current.PurchaseOrderID)
			if err != nil {
				return err
			}
			if !model.CanTransition(model.PurchaseOrderTransitions, order.Status, model.PurchaseOrderCompleted) {
				return transitionError(model.EntityPurchaseOrder, order.ID.String(), order.Status, model.PurchaseOrderCompleted)
			}
			orderPrevious := order.Status
			order.Status = model.PurchaseOrderCompleted
			if err := s.orderRepo.Update(txCtx, order); err != nil {
				return fmt.Errorf("failed to update purchase order: %w", err)
			}
			if err := appendAudit(txCtx, s.auditRepo, actor, order.LocationID, model.ActionCompletePurchaseOrder, model.EntityPurchaseOrder, order.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status": orderPrevious,
				"to_status":   order.Status,
			}, nil); err != nil {
				return err
			}

			updated = current
			return nil
		})
		if err != nil {
			return nil, err
		}
		return mapGoodsReceiptResponse(updated), nil
	})
}

func (s *procurementService) GetGoodsReceipt(ctx context.Context, actor model.Actor, receiptID string) (*GoodsReceiptResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("goods receipt id", receiptID)
	if err != nil {
		return nil, err
	}
	receipt, err := s.loadGoodsReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, receipt.LocationID); err != nil {
		return nil, err
	}
	return mapGoodsReceiptResponse(receipt), nil
}

func (s *procurementService) ListGoodsReceipts(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]GoodsReceiptResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	scoped, err := resolveLocationScope(actor, locationID)
	if err != nil {
		return nil, 0, err
	}
	receipts, total, err := s.receiptRepo.List(ctx, scoped, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list goods receipts: %w", err)
	}
	responses := make([]GoodsReceiptResponse, 0, len(receipts))
	for i := range receipts {
		responses = append(responses, *mapGoodsReceiptResponse(&receipts[i]))
	}
	return responses, total, nil
}

func (s *procurementService) loadGoodsReceipt(ctx context.Context, id uuid.UUID) (*model.GoodsReceipt, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("goods receipt %s not found", id)
		}
		return nil, fmt.Errorf("failed to load goods receipt: %w", err)
	}
	return receipt, nil
}

// --- Vendor invoices ---

func (s *procurementService) CreateVendorInvoice(ctx context.Context, actor model.Actor, req CreateVendorInvoiceRequest) (*VendorInvoiceResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	receiptID, err := parseUUID("goods receipt id", req.GoodsReceiptID)
	if err != nil {
		return nil, err
	}
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.loadGoodsReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, receipt.LocationID); err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionCreateVendorInvoice, EntityType: model.EntityVendorInvoice, LocationID: receipt.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*VendorInvoiceResponse, error) {
		var invoice *model.VendorInvoice
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.loadGoodsReceipt(txCtx, receiptID)
			if err != nil {
				return err
			}
			if current.Status != model.GoodsReceiptReceived {
				return apperror.Lifecycle("cannot invoice goods receipt %s: status is %q, must be %q", current.ID, current.Status, model.GoodsReceiptReceived).
					WithMeta("goods_receipt_status", current.Status)
			}
			existing, err := s.invoiceRepo.FindByGoodsReceipt(txCtx, receiptID)
			if err != nil {
				return fmt.Errorf("failed to check existing invoice: %w", err)
			}
			if existing != nil {
				return apperror.Domain("goods receipt %s already has invoice %s", receiptID, existing.InvoiceNo)
			}

			invoiceNo := req.InvoiceNo
			if invoiceNo == "" {
				invoiceNo, err = s.nextInvoiceNo(txCtx)
				if err != nil {
					return err
				}
			}
			invoice = &model.VendorInvoice{
				ID:             uuid.New(),
				GoodsReceiptID: receiptID,
				LocationID:     current.LocationID,
				VendorName:     req.VendorName,
				InvoiceNo:      invoiceNo,
				Amount:         amount,
				Status:         model.VendorInvoicePending,
				CreatedBy:      actor.ID,
			}
			if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
				return fmt.Errorf("failed to create vendor invoice: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, invoice.LocationID, model.ActionCreateVendorInvoice, model.EntityVendorInvoice, invoice.ID.String(), trace.ReferenceChainID, map[string]string{
				"goods_receipt_id": receiptID.String(),
				"invoice_no":       invoiceNo,
				"amount":           amount.StringFixed(4),
				"status":           invoice.Status,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapVendorInvoiceResponse(invoice), nil
	})
}

// nextInvoiceNo issues INV-<year>-NNNN sequentially within the year.
func (s *procurementService) nextInvoiceNo(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", time.Now().Year())
	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count invoices: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func (s *procurementService) RejectVendorInvoice(ctx context.Context, actor model.Actor, invoiceID string) (*VendorInvoiceResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("invoice id", invoiceID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("vendor invoice %s not found", invoiceID)
		}
		return nil, fmt.Errorf("failed to load vendor invoice: %w", err)
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionRejectInvoice, EntityType: model.EntityVendorInvoice, LocationID: invoice.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*VendorInvoiceResponse, error) {
		var updated *model.VendorInvoice
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.invoiceRepo.FindByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("failed to reload vendor invoice: %w", err)
			}
			if err := guard.AssertLocationAccess(actor, current.LocationID); err != nil {
				return err
			}
			if !model.CanTransition(model.VendorInvoiceTransitions, current.Status, model.VendorInvoiceRejected) {
				return transitionError(model.EntityVendorInvoice, current.ID.String(), current.Status, model.VendorInvoiceRejected)
			}
			previous := current.Status
			current.Status = model.VendorInvoiceRejected
			if err := s.invoiceRepo.Update(txCtx, current); err != nil {
				return fmt.Errorf("failed to update vendor invoice: %w", err)
			}
			updated = current
			return appendAudit(txCtx, s.auditRepo, actor, current.LocationID, model.ActionRejectInvoice, model.EntityVendorInvoice, current.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status": previous,
				"to_status":   current.Status,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapVendorInvoiceResponse(updated), nil
	})
}

func (s *procurementService) ListVendorInvoices(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]VendorInvoiceResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	scoped, err := resolveLocationScope(actor, locationID)
	if err != nil {
		return nil, 0, err
	}
	invoices, total, err := s.invoiceRepo.List(ctx, scoped, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vendor invoices: %w", err)
	}
	responses := make([]VendorInvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, *mapVendorInvoiceResponse(&invoices[i]))
	}
	return responses, total, nil
}

// --- Payment requests ---

func (s *procurementService) CreatePaymentRequest(ctx context.Context, actor model.Actor, req CreatePaymentRequestRequest) (*PaymentRequestResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	invoiceID, err := parseUUID("invoice id", req.VendorInvoiceID)
	if err != nil {
		return nil, err
	}
	if _, ok := model.CashAccountFor(req.PaymentMethod); !ok {
		return nil, apperror.Domain("unknown payment method %q", req.PaymentMethod)
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("vendor invoice %s not found", req.VendorInvoiceID)
		}
		return nil, fmt.Errorf("failed to load vendor invoice: %w", err)
	}
	if err := guard.AssertLocationAccess(actor, invoice.LocationID); err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionCreatePaymentRequest, EntityType: model.EntityPaymentRequest, LocationID: invoice.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PaymentRequestResponse, error) {
		var request *model.PaymentRequest
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
			if err != nil {
				return fmt.Errorf("failed to reload vendor invoice: %w", err)
			}
			if current.Status != model.VendorInvoiceApproved {
				return apperror.Lifecycle("cannot request payment for invoice %s: status is %q, must be %q", current.ID, current.Status, model.VendorInvoiceApproved).
					WithMeta("invoice_status", current.Status)
			}
			existing, err := s.payReqRepo.FindByInvoice(txCtx, invoiceID)
			if err != nil {
				return fmt.Errorf("failed to check existing payment request: %w", err)
			}
			if existing != nil {
				return apperror.Domain("invoice %s already has payment request %s", invoiceID, existing.ID)
			}

			request = &model.PaymentRequest{
				ID:              uuid.New(),
				VendorInvoiceID: invoiceID,
				LocationID:      current.LocationID,
				Amount:          current.Amount,
				PaymentMethod:   req.PaymentMethod,
				Status:          model.PaymentRequestPending,
				CreatedBy:       actor.ID,
			}
			if err := s.payReqRepo.Create(txCtx, request); err != nil {
				return fmt.Errorf("failed to create payment request: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, request.LocationID, model.ActionCreatePaymentRequest, model.EntityPaymentRequest, request.ID.String(), trace.ReferenceChainID, map[string]string{
				"vendor_invoice_id": invoiceID.String(),
				"amount":            request.Amount.StringFixed(4),
				"payment_method":    req.PaymentMethod,
				"status":            request.Status,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapPaymentRequestResponse(request), nil
	})
}

func (s *procurementService) transitionPaymentRequest(ctx context.Context, actor model.Actor, requestID, next, action string) (*PaymentRequestResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("payment request id", requestID)
	if err != nil {
		return nil, err
	}
	request, err := s.payReqRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("payment request %s not found", requestID)
		}
		return nil, fmt.Errorf("failed to load payment request: %w", err)
	}

	meta := envelope.Meta{Actor: actor, Action: action, EntityType: model.EntityPaymentRequest, LocationID: request.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PaymentRequestResponse, error) {
		var updated *model.PaymentRequest
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			current, err := s.payReqRepo.FindByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("failed to reload payment request: %w", err)
			}
			if err := guard.AssertLocationAccess(actor, current.LocationID); err != nil {
				return err
			}
			if !model.CanTransition(model.PaymentRequestTransitions, current.Status, next) {
				return transitionError(model.EntityPaymentRequest, current.ID.String(), current.Status, next)
			}
			previous := current.Status
			current.Status = next
			if err := s.payReqRepo.Update(txCtx, current); err != nil {
				return fmt.Errorf("failed to update payment request: %w", err)
			}
			updated = current
			return appendAudit(txCtx, s.auditRepo, actor, current.LocationID, action, model.EntityPaymentRequest, current.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status": previous,
				"to_status":   next,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapPaymentRequestResponse(updated), nil
	})
}

func (s *procurementService) ApprovePaymentRequest(ctx context.Context, actor model.Actor, requestID string) (*PaymentRequestResponse, error) {
	return s.transitionPaymentRequest(ctx, actor, requestID, model.PaymentRequestApproved, model.ActionApprovePaymentRequest)
}

func (s *procurementService) RejectPaymentRequest(ctx context.Context, actor model.Actor, requestID string) (*PaymentRequestResponse, error) {
	return s.transitionPaymentRequest(ctx, actor, requestID, model.PaymentRequestRejected, model.ActionRejectPaymentRequest)
}

func (s *procurementService) ListPaymentRequests(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]PaymentRequestResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	scoped, err := resolveLocationScope(actor, locationID)
	if err != nil {
		return nil, 0, err
	}
	requests, total, err := s.payReqRepo.List(ctx, scoped, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payment requests: %w", err)
	}
	responses := make([]PaymentRequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, *mapPaymentRequestResponse(&requests[i]))
	}
	return responses, total, nil
}

// --- Mapping ---

func mapRequisitionResponse(r *model.Requisition) *RequisitionResponse {
	items := make([]RequisitionItemResponse, 0, len(r.Items))
	for _, line := range r.Items {
		items = append(items, RequisitionItemResponse{
			ItemID:    line.ItemID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(4),
		})
	}
	return &RequisitionResponse{
		ID:           r.ID.String(),
		LocationID:   r.LocationID,
		DepartmentID: r.DepartmentID,
		Status:       r.Status,
		Purpose:      r.Purpose,
		Items:        items,
		RequestedBy:  r.RequestedBy,
		ApprovedBy:   r.ApprovedBy,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

func mapPurchaseOrderResponse(o *model.PurchaseOrder) *PurchaseOrderResponse {
	items := make([]RequisitionItemResponse, 0, len(o.Items))
	for _, line := range o.Items {
		items = append(items, RequisitionItemResponse{
			ItemID:    line.ItemID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(4),
		})
	}
	return &PurchaseOrderResponse{
		ID:            o.ID.String(),
		RequisitionID: o.RequisitionID.String(),
		LocationID:    o.LocationID,
		VendorName:    o.VendorName,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount.StringFixed(4),
		Items:         items,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

func mapGoodsReceiptResponse(g *model.GoodsReceipt) *GoodsReceiptResponse {
	items := make([]GoodsReceiptItemResponse, 0, len(g.Items))
	for _, line := range g.Items {
		items = append(items, GoodsReceiptItemResponse{
			ItemID:   line.ItemID.String(),
			Quantity: line.Quantity,
			UnitCost: line.UnitCost.StringFixed(4),
		})
	}
	return &GoodsReceiptResponse{
		ID:              g.ID.String(),
		PurchaseOrderID: g.PurchaseOrderID.String(),
		LocationID:      g.LocationID,
		Status:          g.Status,
		TotalAmount:     g.TotalAmount.StringFixed(4),
		Items:           items,
		ReceivedBy:      g.ReceivedBy,
		CreatedAt:       g.CreatedAt.Format(time.RFC3339),
	}
}

func mapVendorInvoiceResponse(v *model.VendorInvoice) *VendorInvoiceResponse {
	return &VendorInvoiceResponse{
		ID:             v.ID.String(),
		GoodsReceiptID: v.GoodsReceiptID.String(),
		LocationID:     v.LocationID,
		VendorName:     v.VendorName,
		InvoiceNo:      v.InvoiceNo,
		Amount:         v.Amount.StringFixed(4),
		Status:         v.Status,
		ApprovedBy:     v.ApprovedBy,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}

func mapPaymentRequestResponse(p *model.PaymentRequest) *PaymentRequestResponse {
	return &PaymentRequestResponse{
		ID:              p.ID.String(),
		VendorInvoiceID: p.VendorInvoiceID.String(),
		LocationID:      p.LocationID,
		Amount:          p.Amount.StringFixed(4),
		PaymentMethod:   p.PaymentMethod,
		Status:          p.Status,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}
