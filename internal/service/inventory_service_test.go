package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) openStock(t *testing.T, locationID, itemID string, quantity int) {
	t.Helper()
	_, err := f.inventory.RecordOpeningBalance(context.Background(), storekeeperA, OpeningBalanceRequest{
		LocationID: locationID,
		ItemID:     itemID,
		Quantity:   quantity,
		UnitCost:   "10.00",
	})
	require.NoError(t, err)
}

func TestCreateItem_WritesAuditRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	item, err := f.inventory.CreateItem(ctx, procurementA, CreateItemRequest{
		SKU:       "SKU-ITEM-1",
		Name:      "Cooking oil",
		Unit:      "L",
		BasePrice: "10.00",
	})
	require.NoError(t, err)

	records, total, err := f.audit.ListAuditRecords(ctx, generalManager, AuditQuery{Action: model.ActionCreateItem})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, model.EntityItem, records[0].EntityType)
	assert.Equal(t, item.ID, records[0].EntityID)

	chain, err := f.audit.GetTraceChain(ctx, generalManager, records[0].TraceID)
	require.NoError(t, err)
	assert.Len(t, chain.Records, 1)
}

func TestRecordOpeningBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-1")

	movement, err := f.inventory.RecordOpeningBalance(ctx, storekeeperA, OpeningBalanceRequest{
		LocationID: "LOC-A",
		ItemID:     itemID,
		Quantity:   10,
		UnitCost:   "10.00",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementOpeningBalance, movement.MovementType)

	balance, err := f.inventory.ComputeBalance(ctx, storekeeperA, "LOC-A", itemID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance.Balance)

	// A second opening balance for the same pair is rejected.
	_, err = f.inventory.RecordOpeningBalance(ctx, storekeeperA, OpeningBalanceRequest{
		LocationID: "LOC-A",
		ItemID:     itemID,
		Quantity:   3,
		UnitCost:   "10.00",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "already recorded")
}

func TestComputeBalance_FoldsMovementHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-2")
	f.openStock(t, "LOC-A", itemID, 10)

	_, err := f.inventory.IssueToDepartment(ctx, storekeeperA, IssueStockRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		ItemID:       itemID,
		Quantity:     4,
	})
	require.NoError(t, err)

	_, err = f.inventory.AdjustStock(ctx, storekeeperA, AdjustStockRequest{
		LocationID:    "LOC-A",
		ItemID:        itemID,
		QuantityDelta: -2,
		Reason:        "breakage",
	})
	require.NoError(t, err)

	balance, err := f.inventory.ComputeBalance(ctx, storekeeperA, "LOC-A", itemID)
	require.NoError(t, err)
	assert.Equal(t, 4, balance.Balance)
}

func TestTransferStock_PairedMovements(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-3")
	f.openStock(t, "LOC-A", itemID, 10)

	transfer, err := f.inventory.TransferStock(ctx, storekeeperA, TransferStockRequest{
		FromLocationID: "LOC-A",
		ToLocationID:   "LOC-B",
		ItemID:         itemID,
		Quantity:       6,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, transfer.ReferenceID)
	assert.Equal(t, transfer.ReferenceID, transfer.Out.ReferenceID)
	assert.Equal(t, transfer.ReferenceID, transfer.In.ReferenceID)
	assert.Equal(t, model.MovementTransferOut, transfer.Out.MovementType)
	assert.Equal(t, model.MovementTransferIn, transfer.In.MovementType)
	assert.Equal(t, "10.0000", transfer.In.UnitCost)

	source, err := f.inventory.ComputeBalance(ctx, storekeeperA, "LOC-A", itemID)
	require.NoError(t, err)
	assert.Equal(t, 4, source.Balance)

	destination, err := f.inventory.ComputeBalance(ctx, generalManager, "LOC-B", itemID)
	require.NoError(t, err)
	assert.Equal(t, 6, destination.Balance)
}

func TestTransferStock_InsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-4")
	f.openStock(t, "LOC-A", itemID, 3)

	_, err := f.inventory.TransferStock(ctx, storekeeperA, TransferStockRequest{
		FromLocationID: "LOC-A",
		ToLocationID:   "LOC-B",
		ItemID:         itemID,
		Quantity:       5,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.Contains(t, err.Error(), "have 3, need 5")

	// Nothing moved.
	balance, err := f.inventory.ComputeBalance(ctx, storekeeperA, "LOC-A", itemID)
	require.NoError(t, err)
	assert.Equal(t, 3, balance.Balance)
}

func TestTransferStock_SameLocationRejected(t *testing.T) {
	f := newFixture()
	itemID := f.createItem(t, "SKU-STK-5")

	_, err := f.inventory.TransferStock(context.Background(), storekeeperA, TransferStockRequest{
		FromLocationID: "LOC-A",
		ToLocationID:   "LOC-A",
		ItemID:         itemID,
		Quantity:       1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
}

func TestIssueToDepartment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-6")
	f.openStock(t, "LOC-A", itemID, 10)

	movement, err := f.inventory.IssueToDepartment(ctx, storekeeperA, IssueStockRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		ItemID:       itemID,
		Quantity:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementDepartmentIssue, movement.MovementType)
	assert.Equal(t, "KITCHEN", movement.DepartmentID)

	lines, err := f.inventory.GetDepartmentStock(ctx, deptHeadA, "LOC-A", "KITCHEN")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, itemID, lines[0].ItemID)
	assert.Equal(t, 3, lines[0].Quantity)

	_, err = f.inventory.IssueToDepartment(ctx, storekeeperA, IssueStockRequest{
		LocationID:   "LOC-A",
		DepartmentID: "KITCHEN",
		ItemID:       itemID,
		Quantity:     20,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
}

func TestAdjustStock_NeverDrivesBalanceNegative(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-7")
	f.openStock(t, "LOC-A", itemID, 5)

	_, err := f.inventory.AdjustStock(ctx, storekeeperA, AdjustStockRequest{
		LocationID:    "LOC-A",
		ItemID:        itemID,
		QuantityDelta: -6,
		Reason:        "stocktake",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))

	_, err = f.inventory.AdjustStock(ctx, storekeeperA, AdjustStockRequest{
		LocationID:    "LOC-A",
		ItemID:        itemID,
		QuantityDelta: 0,
		Reason:        "noop",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))

	adjusted, err := f.inventory.AdjustStock(ctx, storekeeperA, AdjustStockRequest{
		LocationID:    "LOC-A",
		ItemID:        itemID,
		QuantityDelta: -5,
		Reason:        "stocktake",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementAdjustment, adjusted.MovementType)

	balance, err := f.inventory.ComputeBalance(ctx, storekeeperA, "LOC-A", itemID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Balance)
}

func TestGetStockValuation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-8")
	f.openStock(t, "LOC-A", itemID, 10)

	valuation, err := f.inventory.GetStockValuation(ctx, storekeeperA, "LOC-A")
	require.NoError(t, err)
	require.Len(t, valuation.Lines, 1)
	assert.Equal(t, 10, valuation.Lines[0].Balance)
	assert.Equal(t, "10.0000", valuation.Lines[0].UnitCost)
	assert.Equal(t, "100.0000", valuation.Lines[0].Value)
	assert.Equal(t, "100.0000", valuation.TotalValue)
}

func TestGetStockValuation_FallsBackToBasePrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-9") // base price 10.00

	// A positive adjustment carries no unit cost, so valuation falls back
	// to the catalogue price.
	_, err := f.inventory.AdjustStock(ctx, storekeeperA, AdjustStockRequest{
		LocationID:    "LOC-A",
		ItemID:        itemID,
		QuantityDelta: 4,
		Reason:        "found during stocktake",
	})
	require.NoError(t, err)

	valuation, err := f.inventory.GetStockValuation(ctx, storekeeperA, "LOC-A")
	require.NoError(t, err)
	require.Len(t, valuation.Lines, 1)
	assert.Equal(t, "10.0000", valuation.Lines[0].UnitCost)
	assert.Equal(t, "40.0000", valuation.Lines[0].Value)
}

func TestInventory_ScopeEnforcement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	itemID := f.createItem(t, "SKU-STK-10")

	_, err := f.inventory.RecordOpeningBalance(ctx, storekeeperA, OpeningBalanceRequest{
		LocationID: "LOC-B",
		ItemID:     itemID,
		Quantity:   5,
		UnitCost:   "10.00",
	})
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))

	_, err = f.inventory.ComputeBalance(ctx, storekeeperA, "LOC-B", itemID)
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))
}
