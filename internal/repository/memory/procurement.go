package memory

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- Requisitions ---

type requisitionView struct{ s *Store }

func (s *Store) Requisitions() repository.RequisitionRepository {
	return requisitionView{s: s}
}

func (v requisitionView) Create(ctx context.Context, requisition *model.Requisition) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&requisition.ID)
	requisition.CreatedAt = v.s.now()
	requisition.UpdatedAt = requisition.CreatedAt
	for i := range requisition.Items {
		ensureID(&requisition.Items[i].ID)
		requisition.Items[i].RequisitionID = requisition.ID
	}
	v.s.requisitions[requisition.ID] = cloneRequisition(*requisition)
	v.s.requisitionOrder = append(v.s.requisitionOrder, requisition.ID)
	return nil
}

func (v requisitionView) FindByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	requisition, ok := v.s.requisitions[id]
	if !ok {
		return nil, notFound
	}
	out := cloneRequisition(requisition)
	return &out, nil
}

func (v requisitionView) Update(ctx context.Context, requisition *model.Requisition) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	stored, ok := v.s.requisitions[requisition.ID]
	if !ok {
		return notFound
	}
	requisition.UpdatedAt = v.s.now()
	updated := cloneRequisition(*requisition)
	updated.Items = stored.Items // Items are immutable after creation
	v.s.requisitions[requisition.ID] = updated
	return nil
}

func (v requisitionView) List(ctx context.Context, filter repository.RequisitionListFilter) ([]model.Requisition, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []model.Requisition
	for _, id := range v.s.requisitionOrder {
		requisition := v.s.requisitions[id]
		if filter.LocationID != "" && requisition.LocationID != filter.LocationID {
			continue
		}
		if filter.Status != "" && requisition.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneRequisition(requisition))
	}
	return paginate(reversed(matched), filter.Page, filter.Limit), int64(len(matched)), nil
}

func cloneRequisition(r model.Requisition) model.Requisition {
	items := make([]model.RequisitionItem, len(r.Items))
	copy(items, r.Items)
	r.Items = items
	return r
}

// --- Purchase orders ---

type purchaseOrderView struct{ s *Store }

func (s *Store) PurchaseOrders() repository.PurchaseOrderRepository {
	return purchaseOrderView{s: s}
}

func (v purchaseOrderView) Create(ctx context.Context, order *model.PurchaseOrder) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&order.ID)
	order.CreatedAt = v.s.now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		ensureID(&order.Items[i].ID)
		order.Items[i].PurchaseOrderID = order.ID
	}
	v.s.purchaseOrders[order.ID] = clonePurchaseOrder(*order)
	v.s.purchaseOrderOrder = append(v.s.purchaseOrderOrder, order.ID)
	return nil
}

func (v purchaseOrderView) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	order, ok := v.s.purchaseOrders[id]
	if !ok {
		return nil, notFound
	}
	out := clonePurchaseOrder(order)
	return &out, nil
}

func (v purchaseOrderView) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) (*model.PurchaseOrder, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, order := range v.s.purchaseOrders {
		if order.RequisitionID == requisitionID {
			out := clonePurchaseOrder(order)
			return &out, nil
		}
	}
	return nil, nil
}

func (v purchaseOrderView) Update(ctx context.Context, order *model.PurchaseOrder) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	stored, ok := v.s.purchaseOrders[order.ID]
	if !ok {
		return notFound
	}
	order.UpdatedAt = v.s.now()
	updated := clonePurchaseOrder(*order)
	updated.Items = stored.Items
	v.s.purchaseOrders[order.ID] = updated
	return nil
}

func (v purchaseOrderView) List(ctx context.Context, filter repository.PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []model.PurchaseOrder
	for _, id := range v.s.purchaseOrderOrder {
		order := v.s.purchaseOrders[id]
		if filter.LocationID != "" && order.LocationID != filter.LocationID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		matched = append(matched, clonePurchaseOrder(order))
	}
	return paginate(reversed(matched), filter.Page, filter.Limit), int64(len(matched)), nil
}

func clonePurchaseOrder(o model.PurchaseOrder) model.PurchaseOrder {
	items := make([]model.PurchaseOrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// --- Goods receipts ---

type goodsReceiptView struct{ s *Store }

func (s *Store) GoodsReceipts() repository.GoodsReceiptRepository {
	return goodsReceiptView{s: s}
}

func (v goodsReceiptView) Create(ctx context.Context, receipt *model.GoodsReceipt) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&receipt.ID)
	receipt.CreatedAt = v.s.now()
	receipt.UpdatedAt = receipt.CreatedAt
	for i := range receipt.Items {
		ensureID(&receipt.Items[i].ID)
		receipt.Items[i].GoodsReceiptID = receipt.ID
	}
	v.s.goodsReceipts[receipt.ID] = cloneGoodsReceipt(*receipt)
	v.s.goodsReceiptOrder = append(v.s.goodsReceiptOrder, receipt.ID)
	return nil
}

func (v goodsReceiptView) FindByID(ctx context.Context, id uuid.UUID) (*model.GoodsReceipt, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	receipt, ok := v.s.goodsReceipts[id]
	if !ok {
		return nil, notFound
	}
	out := cloneGoodsReceipt(receipt)
	return &out, nil
}

func (v goodsReceiptView) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*model.GoodsReceipt, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, receipt := range v.s.goodsReceipts {
		if receipt.PurchaseOrderID == purchaseOrderID {
			out := cloneGoodsReceipt(receipt)
			return &out, nil
		}
	}
	return nil, nil
}

func (v goodsReceiptView) Update(ctx context.Context, receipt *model.GoodsReceipt) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	stored, ok := v.s.goodsReceipts[receipt.ID]
	if !ok {
		return notFound
	}
	receipt.UpdatedAt = v.s.now()
	updated := cloneGoodsReceipt(*receipt)
	updated.Items = stored.Items
	v.s.goodsReceipts[receipt.ID] = updated
	return nil
}

func (v goodsReceiptView) List(ctx context.Context, locationID, status string, page, limit int) ([]model.GoodsReceipt, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []model.GoodsReceipt
	for _, id := range v.s.goodsReceiptOrder {
		receipt := v.s.goodsReceipts[id]
		if locationID != "" && receipt.LocationID != locationID {
			continue
		}
		if status != "" && receipt.Status != status {
			continue
		}
		matched = append(matched, cloneGoodsReceipt(receipt))
	}
	return paginate(reversed(matched), page, limit), int64(len(matched)), nil
}

func cloneGoodsReceipt(g model.GoodsReceipt) model.GoodsReceipt {
	items := make([]model.GoodsReceiptItem, len(g.Items))
	copy(items, g.Items)
	g.Items = items
	return g
}

// --- Vendor invoices ---

type vendorInvoiceView struct{ s *Store }

func (s *Store) VendorInvoices() repository.VendorInvoiceRepository {
	return vendorInvoiceView{s: s}
}

func (v vendorInvoiceView) Create(ctx context.Context, invoice *model.VendorInvoice) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&invoice.ID)
	invoice.CreatedAt = v.s.now()
	invoice.UpdatedAt = invoice.CreatedAt
	v.s.vendorInvoices[invoice.ID] = *invoice
	v.s.vendorInvoiceOrder = append(v.s.vendorInvoiceOrder, invoice.ID)
	return nil
}

func (v vendorInvoiceView) FindByID(ctx context.Context, id uuid.UUID) (*model.VendorInvoice, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	invoice, ok := v.s.vendorInvoices[id]
	if !ok {
		return nil, notFound
	}
	return &invoice, nil
}

func (v vendorInvoiceView) FindByGoodsReceipt(ctx context.Context, goodsReceiptID uuid.UUID) (*model.VendorInvoice, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, invoice := range v.s.vendorInvoices {
		if invoice.GoodsReceiptID == goodsReceiptID {
			out := invoice
			return &out, nil
		}
	}
	return nil, nil
}

func (v vendorInvoiceView) Update(ctx context.Context, invoice *model.VendorInvoice) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.vendorInvoices[invoice.ID]; !ok {
		return notFound
	}
	invoice.UpdatedAt = v.s.now()
	v.s.vendorInvoices[invoice.ID] = *invoice
	return nil
}

func (v vendorInvoiceView) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var count int64
	for _, invoice := range v.s.vendorInvoices {
		if len(invoice.InvoiceNo) >= len(prefix) && invoice.InvoiceNo[:len(prefix)] == prefix {
			count++
		}
	}
	return count, nil
}

func (v vendorInvoiceView) List(ctx context.Context, locationID, status string, page, limit int) ([]model.VendorInvoice, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []model.VendorInvoice
	for _, id := range v.s.vendorInvoiceOrder {
		invoice := v.s.vendorInvoices[id]
		if locationID != "" && invoice.LocationID != locationID {
			continue
		}
		if status != "" && invoice.Status != status {
			continue
		}
		matched = append(matched, invoice)
	}
	return paginate(reversed(matched), page, limit), int64(len(matched)), nil
}

// --- Payment requests ---

type paymentRequestView struct{ s *Store }

func (s *Store) PaymentRequests() repository.PaymentRequestRepository {
	return paymentRequestView{s: s}
}

func (v paymentRequestView) Create(ctx context.Context, request *model.PaymentRequest) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	ensureID(&request.ID)
	request.CreatedAt = v.s.now()
	request.UpdatedAt = request.CreatedAt
	v.s.paymentRequests[request.ID] = *request
	v.s.paymentRequestOrder = append(v.s.paymentRequestOrder, request.ID)
	return nil
}

func (v paymentRequestView) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	request, ok := v.s.paymentRequests[id]
	if !ok {
		return nil, notFound
	}
	return &request, nil
}

func (v paymentRequestView) FindByInvoice(ctx context.Context, vendorInvoiceID uuid.UUID) (*model.PaymentRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, request := range v.s.paymentRequests {
		if request.VendorInvoiceID == vendorInvoiceID {
			out := request
			return &out, nil
		}
	}
	return nil, nil
}

func (v paymentRequestView) Update(ctx context.Context, request *model.PaymentRequest) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.paymentRequests[request.ID]; !ok {
		return notFound
	}
	request.UpdatedAt = v.s.now()
	v.s.paymentRequests[request.ID] = *request
	return nil
}

func (v paymentRequestView) List(ctx context.Context, locationID, status string, page, limit int) ([]model.PaymentRequest, int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []model.PaymentRequest
	for _, id := range v.s.paymentRequestOrder {
		request := v.s.paymentRequests[id]
		if locationID != "" && request.LocationID != locationID {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		matched = append(matched, request)
	}
	return paginate(reversed(matched), page, limit), int64(len(matched)), nil
}
