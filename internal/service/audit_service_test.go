package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) seedExpense(t *testing.T, actor model.Actor, locationID string) *ExpenseResponse {
	t.Helper()
	expense, err := f.finance.CreateExpense(context.Background(), actor, CreateExpenseRequest{
		LocationID: locationID,
		Category:   "FUEL",
		Amount:     "25.00",
	})
	require.NoError(t, err)
	return expense
}

func TestListAuditRecords_ScopedToActorLocation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedExpense(t, financeA, "LOC-A")
	f.seedExpense(t, financeB, "LOC-B")

	records, _, err := f.audit.ListAuditRecords(ctx, financeA, AuditQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, record := range records {
		assert.Equal(t, "LOC-A", record.LocationID)
	}

	// Asking for someone else's location is a scope violation, not an
	// empty result.
	_, _, err = f.audit.ListAuditRecords(ctx, financeA, AuditQuery{LocationID: "LOC-B"})
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))

	all, _, err := f.audit.ListAuditRecords(ctx, generalManager, AuditQuery{})
	require.NoError(t, err)
	locations := map[string]bool{}
	for _, record := range all {
		locations[record.LocationID] = true
	}
	assert.True(t, locations["LOC-A"])
	assert.True(t, locations["LOC-B"])
}

func TestListAuditRecords_FilterByAction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedExpense(t, financeA, "LOC-A")

	records, total, err := f.audit.ListAuditRecords(ctx, financeA, AuditQuery{Action: model.ActionCreateExpense})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, model.EntityExpense, records[0].EntityType)
}

func TestGetTraceChain_WriteOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedExpense(t, financeA, "LOC-A")

	listed, _, err := f.audit.ListAuditRecords(ctx, financeA, AuditQuery{Action: model.ActionCreateExpense})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// An expense creation chains the two accrual postings and the expense
	// row itself.
	chain, err := f.audit.GetTraceChain(ctx, financeA, listed[0].TraceID)
	require.NoError(t, err)
	require.Len(t, chain.Records, 3)
	for i := 1; i < len(chain.Records); i++ {
		assert.Greater(t, chain.Records[i].Seq, chain.Records[i-1].Seq)
	}
	assert.Equal(t, model.ActionCreateExpense, chain.Records[2].Action)
}

func TestGetTraceChain_UnknownTrace(t *testing.T) {
	f := newFixture()

	_, err := f.audit.GetTraceChain(context.Background(), generalManager, "no-such-trace")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "no audit records")
}

func TestGetTraceChain_CrossLocationWithheldFromScopedActor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// A transfer writes audit rows at both ends under one chain.
	itemID := f.createItem(t, "SKU-AUD-1")
	f.openStock(t, "LOC-A", itemID, 10)
	_, err := f.inventory.TransferStock(ctx, storekeeperA, TransferStockRequest{
		FromLocationID: "LOC-A",
		ToLocationID:   "LOC-B",
		ItemID:         itemID,
		Quantity:       5,
	})
	require.NoError(t, err)

	listed, _, err := f.audit.ListAuditRecords(ctx, generalManager, AuditQuery{Action: model.ActionTransferStock})
	require.NoError(t, err)
	require.NotEmpty(t, listed)
	traceID := listed[0].TraceID

	// The whole chain is withheld rather than truncated to one location.
	_, err = f.audit.GetTraceChain(ctx, storekeeperA, traceID)
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))

	chain, err := f.audit.GetTraceChain(ctx, generalManager, traceID)
	require.NoError(t, err)
	assert.Len(t, chain.Records, 2)
}

func TestGetTraceChain_AuditorReadsEverything(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedExpense(t, financeA, "LOC-A")

	listed, _, err := f.audit.ListAuditRecords(ctx, auditorActor, AuditQuery{Action: model.ActionCreateExpense})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	chain, err := f.audit.GetTraceChain(ctx, auditorActor, listed[0].TraceID)
	require.NoError(t, err)
	assert.Len(t, chain.Records, 3)
}
