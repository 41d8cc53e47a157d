package service

import (
	"context"
	"io"
	"testing"

	"backend/internal/envelope"
	"backend/internal/model"
	"backend/internal/ratelimit"
	"backend/internal/repository/memory"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	generalManager = model.Actor{ID: "gm-1", Role: model.RoleGeneralManager, Global: true}
	auditorActor   = model.Actor{ID: "aud-1", Role: model.RoleAuditor, Global: true}
	financeA       = model.Actor{ID: "fin-1", Role: model.RoleFinanceOfficer, LocationID: "LOC-A"}
	financeB       = model.Actor{ID: "fin-2", Role: model.RoleFinanceOfficer, LocationID: "LOC-B"}
	procurementA   = model.Actor{ID: "proc-1", Role: model.RoleProcurementOfficer, LocationID: "LOC-A"}
	storekeeperA   = model.Actor{ID: "sk-1", Role: model.RoleStorekeeper, LocationID: "LOC-A"}
	deptHeadA      = model.Actor{ID: "dh-1", Role: model.RoleDepartmentHead, LocationID: "LOC-A", DepartmentID: "KITCHEN"}
)

type fixture struct {
	store       *memory.Store
	finance     FinanceService
	procurement ProcurementService
	inventory   InventoryService
	audit       AuditService
}

func newFixture() *fixture {
	store := memory.NewStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	env := envelope.New(store.Audit(), ratelimit.NewDefault(), log, nil, nil)

	return &fixture{
		store: store,
		finance: NewFinanceService(
			store.Ledger(),
			store.VendorInvoices(),
			store.GoodsReceipts(),
			store.PurchaseOrders(),
			store.PaymentRequests(),
			store.Expenses(),
			store.Sales(),
			store.Audit(),
			store.TxManager(),
			env,
		),
		procurement: NewProcurementService(
			store.Requisitions(),
			store.PurchaseOrders(),
			store.GoodsReceipts(),
			store.VendorInvoices(),
			store.PaymentRequests(),
			store.StockMovements(),
			store.Items(),
			store.Audit(),
			store.TxManager(),
			env,
		),
		inventory: NewInventoryService(
			store.StockMovements(),
			store.Items(),
			store.Audit(),
			store.TxManager(),
			env,
		),
		audit: NewAuditService(store.Audit()),
	}
}

func (f *fixture) createItem(t *testing.T, sku string) string {
	t.Helper()
	item, err := f.inventory.CreateItem(context.Background(), procurementA, CreateItemRequest{
		SKU:       sku,
		Name:      "Item " + sku,
		Unit:      "EA",
		BasePrice: "10.00",
	})
	require.NoError(t, err)
	return item.ID
}

// seedApprovedRequisition walks a requisition to APPROVED for the given
// item ids, one line of 5 units at 10.00 each.
func (f *fixture) seedApprovedRequisition(t *testing.T, itemIDs ...string) string {
	t.Helper()
	ctx := context.Background()

	lines := make([]RequisitionItemRequest, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		lines = append(lines, RequisitionItemRequest{ItemID: itemID, Quantity: 5, UnitPrice: "10.00"})
	}
	requisition, err := f.procurement.CreateRequisition(ctx, procurementA, CreateRequisitionRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		Purpose:      "restock",
		Items:        lines,
	})
	require.NoError(t, err)

	_, err = f.procurement.SubmitRequisition(ctx, procurementA, requisition.ID)
	require.NoError(t, err)
	_, err = f.procurement.ApproveRequisition(ctx, procurementA, requisition.ID)
	require.NoError(t, err)
	return requisition.ID
}

// seedIssuedOrder raises and issues a purchase order for an approved
// requisition.
func (f *fixture) seedIssuedOrder(t *testing.T, requisitionID string) string {
	t.Helper()
	ctx := context.Background()

	order, err := f.procurement.CreatePurchaseOrder(ctx, procurementA, CreatePurchaseOrderRequest{
		RequisitionID: requisitionID,
		VendorName:    "Acme Supplies",
	})
	require.NoError(t, err)
	_, err = f.procurement.IssuePurchaseOrder(ctx, procurementA, order.ID)
	require.NoError(t, err)
	return order.ID
}

// seedReceivedReceipt creates a goods receipt mirroring the requisition
// lines and marks it received, booking the stock movements.
func (f *fixture) seedReceivedReceipt(t *testing.T, orderID string, itemIDs ...string) string {
	t.Helper()
	ctx := context.Background()

	lines := make([]GoodsReceiptItemRequest, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		lines = append(lines, GoodsReceiptItemRequest{ItemID: itemID, Quantity: 5, UnitCost: "10.00"})
	}
	receipt, err := f.procurement.CreateGoodsReceipt(ctx, procurementA, CreateGoodsReceiptRequest{
		PurchaseOrderID: orderID,
		Items:           lines,
	})
	require.NoError(t, err)
	_, err = f.procurement.MarkGoodsReceiptReceived(ctx, procurementA, receipt.ID)
	require.NoError(t, err)
	return receipt.ID
}

// seedReceivedChain runs the whole procurement chain for one item and
// returns the received goods receipt id. The receipt totals 50.0000.
func (f *fixture) seedReceivedChain(t *testing.T) string {
	t.Helper()
	itemID := f.createItem(t, "SKU-CHAIN-"+t.Name())
	requisitionID := f.seedApprovedRequisition(t, itemID)
	orderID := f.seedIssuedOrder(t, requisitionID)
	return f.seedReceivedReceipt(t, orderID, itemID)
}

// seedPendingInvoice bills a received chain for its full 50.0000 total.
func (f *fixture) seedPendingInvoice(t *testing.T) string {
	t.Helper()
	receiptID := f.seedReceivedChain(t)
	invoice, err := f.procurement.CreateVendorInvoice(context.Background(), procurementA, CreateVendorInvoiceRequest{
		GoodsReceiptID: receiptID,
		VendorName:     "Acme Supplies",
		Amount:         "50.00",
	})
	require.NoError(t, err)
	return invoice.ID
}
