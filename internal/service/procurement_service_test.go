package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequisitionLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-REQ-1")

	requisition, err := f.procurement.CreateRequisition(ctx, procurementA, CreateRequisitionRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		Purpose:      "restock",
		Items:        []RequisitionItemRequest{{ItemID: itemID, Quantity: 5, UnitPrice: "10.00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequisitionDraft, requisition.Status)

	submitted, err := f.procurement.SubmitRequisition(ctx, procurementA, requisition.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequisitionSubmitted, submitted.Status)

	approved, err := f.procurement.ApproveRequisition(ctx, procurementA, requisition.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequisitionApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, procurementA.ID, *approved.ApprovedBy)
}

func TestRequisition_ForwardOnlyTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-REQ-2")

	requisition, err := f.procurement.CreateRequisition(ctx, procurementA, CreateRequisitionRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		Items:        []RequisitionItemRequest{{ItemID: itemID, Quantity: 1, UnitPrice: "5.00"}},
	})
	require.NoError(t, err)

	// DRAFT cannot be approved without submission.
	_, err = f.procurement.ApproveRequisition(ctx, procurementA, requisition.ID)
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
	assert.Contains(t, err.Error(), "cannot transition")

	// APPROVED never reverts or cancels.
	_, err = f.procurement.SubmitRequisition(ctx, procurementA, requisition.ID)
	require.NoError(t, err)
	_, err = f.procurement.ApproveRequisition(ctx, procurementA, requisition.ID)
	require.NoError(t, err)
	_, err = f.procurement.CancelRequisition(ctx, procurementA, requisition.ID)
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
}

func TestRequisition_UnknownItemRejected(t *testing.T) {
	f := newFixture()

	_, err := f.procurement.CreateRequisition(context.Background(), procurementA, CreateRequisitionRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		Items:        []RequisitionItemRequest{{ItemID: "71f1b6aa-50a8-4b20-a695-64e5a7c6a522", Quantity: 1, UnitPrice: "5.00"}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "not found")
}

func TestCreatePurchaseOrder_RequiresApprovedRequisition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-PO-1")

	requisition, err := f.procurement.CreateRequisition(ctx, procurementA, CreateRequisitionRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		Items:        []RequisitionItemRequest{{ItemID: itemID, Quantity: 5, UnitPrice: "10.00"}},
	})
	require.NoError(t, err)

	_, err = f.procurement.CreatePurchaseOrder(ctx, procurementA, CreatePurchaseOrderRequest{
		RequisitionID: requisition.ID,
		VendorName:    "Acme Supplies",
	})
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
	assert.Contains(t, err.Error(), `must be "APPROVED"`)
}

func TestCreatePurchaseOrder_CopiesRequisitionLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-PO-2")
	requisitionID := f.seedApprovedRequisition(t, itemID)

	order, err := f.procurement.CreatePurchaseOrder(ctx, procurementA, CreatePurchaseOrderRequest{
		RequisitionID: requisitionID,
		VendorName:    "Acme Supplies",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderDraft, order.Status)
	assert.Equal(t, "50.0000", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, itemID, order.Items[0].ItemID)
}

func TestCreatePurchaseOrder_OnePerRequisition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-PO-3")
	requisitionID := f.seedApprovedRequisition(t, itemID)

	_, err := f.procurement.CreatePurchaseOrder(ctx, procurementA, CreatePurchaseOrderRequest{
		RequisitionID: requisitionID,
		VendorName:    "Acme Supplies",
	})
	require.NoError(t, err)

	_, err = f.procurement.CreatePurchaseOrder(ctx, procurementA, CreatePurchaseOrderRequest{
		RequisitionID: requisitionID,
		VendorName:    "Other Vendor",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "already has purchase order")
}

func TestCancelPurchaseOrder_BlockedByGoodsReceipt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-PO-4")
	requisitionID := f.seedApprovedRequisition(t, itemID)
	orderID := f.seedIssuedOrder(t, requisitionID)

	_, err := f.procurement.CreateGoodsReceipt(ctx, procurementA, CreateGoodsReceiptRequest{
		PurchaseOrderID: orderID,
		Items:           []GoodsReceiptItemRequest{{ItemID: itemID, Quantity: 5, UnitCost: "10.00"}},
	})
	require.NoError(t, err)

	_, err = f.procurement.CancelPurchaseOrder(ctx, procurementA, orderID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "cannot be cancelled")
}

func TestCreateGoodsReceipt_RequiresIssuedOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-GRN-1")
	requisitionID := f.seedApprovedRequisition(t, itemID)

	order, err := f.procurement.CreatePurchaseOrder(ctx, procurementA, CreatePurchaseOrderRequest{
		RequisitionID: requisitionID,
		VendorName:    "Acme Supplies",
	})
	require.NoError(t, err)

	_, err = f.procurement.CreateGoodsReceipt(ctx, procurementA, CreateGoodsReceiptRequest{
		PurchaseOrderID: order.ID,
		Items:           []GoodsReceiptItemRequest{{ItemID: itemID, Quantity: 5, UnitCost: "10.00"}},
	})
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
	assert.Contains(t, err.Error(), `must be "ISSUED"`)
}

func TestMarkGoodsReceiptReceived_BooksOneMovementPerLine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	itemA := f.createItem(t, "SKU-GRN-2A")
	itemB := f.createItem(t, "SKU-GRN-2B")
	requisitionID := f.seedApprovedRequisition(t, itemA, itemB)
	orderID := f.seedIssuedOrder(t, requisitionID)

	receipt, err := f.procurement.CreateGoodsReceipt(ctx, procurementA, CreateGoodsReceiptRequest{
		PurchaseOrderID: orderID,
		Items: []GoodsReceiptItemRequest{
			{ItemID: itemA, Quantity: 5, UnitCost: "10.00"},
			{ItemID: itemB, Quantity: 5, UnitCost: "10.00"},
		},
	})
	require.NoError(t, err)

	received, err := f.procurement.MarkGoodsReceiptReceived(ctx, procurementA, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoodsReceiptReceived, received.Status)
	require.NotNil(t, received.ReceivedBy)

	// One PURCHASE_RECEIPT movement per line.
	movements, err := f.store.StockMovements().ListByLocation(ctx, "LOC-A")
	require.NoError(t, err)
	booked := 0
	for _, movement := range movements {
		if movement.ReferenceType == model.MovementRefGoodsReceipt && movement.ReferenceID == receipt.ID {
			booked++
			assert.Equal(t, model.MovementPurchaseReceipt, movement.MovementType)
			assert.Equal(t, 5, movement.Quantity)
		}
	}
	assert.Equal(t, 2, booked)

	// The purchase order completes in the same operation.
	order, err := f.procurement.GetPurchaseOrder(ctx, procurementA, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderCompleted, order.Status)

	// All four audit rows share one reference chain: two movements, the
	// receipt transition, and the order completion.
	records, _, err := f.store.Audit().List(ctx, repository.AuditListFilter{Action: model.ActionReceiveGoodsReceipt})
	require.NoError(t, err)
	require.Len(t, records, 1)

	chain, err := f.store.Audit().ListByTrace(ctx, records[0].TraceID)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	actions := map[string]int{}
	for _, record := range chain {
		actions[record.Action]++
	}
	assert.Equal(t, 2, actions[model.ActionCreateMovement])
	assert.Equal(t, 1, actions[model.ActionReceiveGoodsReceipt])
	assert.Equal(t, 1, actions[model.ActionCompletePurchaseOrder])
}

func TestMarkGoodsReceiptReceived_Twice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	receiptID := f.seedReceivedChain(t)

	_, err := f.procurement.MarkGoodsReceiptReceived(ctx, procurementA, receiptID)
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))

	// Movements were not booked again.
	movements, err := f.store.StockMovements().ListByLocation(ctx, "LOC-A")
	require.NoError(t, err)
	booked := 0
	for _, movement := range movements {
		if movement.ReferenceID == receiptID {
			booked++
		}
	}
	assert.Equal(t, 1, booked)
}

func TestCreateVendorInvoice_RequiresReceivedReceipt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-INV-1")
	requisitionID := f.seedApprovedRequisition(t, itemID)
	orderID := f.seedIssuedOrder(t, requisitionID)

	receipt, err := f.procurement.CreateGoodsReceipt(ctx, procurementA, CreateGoodsReceiptRequest{
		PurchaseOrderID: orderID,
		Items:           []GoodsReceiptItemRequest{{ItemID: itemID, Quantity: 5, UnitCost: "10.00"}},
	})
	require.NoError(t, err)

	_, err = f.procurement.CreateVendorInvoice(ctx, procurementA, CreateVendorInvoiceRequest{
		GoodsReceiptID: receipt.ID,
		VendorName:     "Acme Supplies",
		Amount:         "50.00",
	})
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
	assert.Contains(t, err.Error(), `must be "RECEIVED"`)
}

func TestCreateVendorInvoice_SequentialNumbers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	receiptID := f.seedReceivedChain(t)

	invoice, err := f.procurement.CreateVendorInvoice(ctx, procurementA, CreateVendorInvoiceRequest{
		GoodsReceiptID: receiptID,
		VendorName:     "Acme Supplies",
		Amount:         "50.00",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", time.Now().Year()), invoice.InvoiceNo)
	assert.Equal(t, model.VendorInvoicePending, invoice.Status)

	_, err = f.procurement.CreateVendorInvoice(ctx, procurementA, CreateVendorInvoiceRequest{
		GoodsReceiptID: receiptID,
		VendorName:     "Acme Supplies",
		Amount:         "50.00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has invoice")
}

func TestRejectVendorInvoice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoiceID := f.seedPendingInvoice(t)

	rejected, err := f.procurement.RejectVendorInvoice(ctx, financeA, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, model.VendorInvoiceRejected, rejected.Status)

	// Rejected invoices are terminal.
	_, err = f.finance.ApproveInvoice(ctx, financeA, invoiceID)
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
}

func TestCreatePaymentRequest_RequiresApprovedInvoice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoiceID := f.seedPendingInvoice(t)

	_, err := f.procurement.CreatePaymentRequest(ctx, procurementA, CreatePaymentRequestRequest{
		VendorInvoiceID: invoiceID,
		PaymentMethod:   model.PaymentMethodBank,
	})
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
	assert.Contains(t, err.Error(), `must be "APPROVED"`)
}

func TestPaymentRequestLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoiceID := f.seedPendingInvoice(t)

	_, err := f.finance.ApproveInvoice(ctx, financeA, invoiceID)
	require.NoError(t, err)

	request, err := f.procurement.CreatePaymentRequest(ctx, procurementA, CreatePaymentRequestRequest{
		VendorInvoiceID: invoiceID,
		PaymentMethod:   model.PaymentMethodBank,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRequestPending, request.Status)
	assert.Equal(t, "50.0000", request.Amount)

	// One request per invoice.
	_, err = f.procurement.CreatePaymentRequest(ctx, procurementA, CreatePaymentRequestRequest{
		VendorInvoiceID: invoiceID,
		PaymentMethod:   model.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has payment request")

	approved, err := f.procurement.ApprovePaymentRequest(ctx, financeA, request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRequestApproved, approved.Status)

	// Approved requests can no longer be rejected.
	_, err = f.procurement.RejectPaymentRequest(ctx, financeA, request.ID)
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
}

func TestProcurement_ScopedActorCannotTouchOtherLocation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-SCOPE-1")
	requisitionID := f.seedApprovedRequisition(t, itemID)

	outsider := model.Actor{ID: "proc-9", Role: model.RoleProcurementOfficer, LocationID: "LOC-B"}
	_, err := f.procurement.CreatePurchaseOrder(ctx, outsider, CreatePurchaseOrderRequest{
		RequisitionID: requisitionID,
		VendorName:    "Acme Supplies",
	})
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))
}

func TestListRequisitions_DepartmentScoped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-LIST-1")

	_, err := f.procurement.CreateRequisition(ctx, procurementA, CreateRequisitionRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		Items:        []RequisitionItemRequest{{ItemID: itemID, Quantity: 1, UnitPrice: "5.00"}},
	})
	require.NoError(t, err)
	_, err = f.procurement.CreateRequisition(ctx, procurementA, CreateRequisitionRequest{
		LocationID:   "LOC-A",
		DepartmentID: "BAR",
		Items:        []RequisitionItemRequest{{ItemID: itemID, Quantity: 1, UnitPrice: "5.00"}},
	})
	require.NoError(t, err)

	// The kitchen department head sees only their department's paperwork.
	visible, _, err := f.procurement.ListRequisitions(ctx, deptHeadA, "", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "KITCHEN", visible[0].DepartmentID)

	all, _, err := f.procurement.ListRequisitions(ctx, generalManager, "", "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
