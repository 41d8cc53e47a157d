package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manualPosting(locationID, referenceID string) PostEntryRequest {
	return PostEntryRequest{
		LocationID:    locationID,
		ReferenceType: "MANUAL",
		ReferenceID:   referenceID,
		Lines: []LedgerLineRequest{
			{AccountCode: model.AccountCash, Debit: "100.00"},
			{AccountCode: model.AccountRevenue, Credit: "100.00"},
		},
	}
}

func TestPostDoubleEntry_BalancedPosting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	posting, err := f.finance.PostDoubleEntry(ctx, financeA, manualPosting("LOC-A", "ADJ-1"))
	require.NoError(t, err)
	require.Len(t, posting.Entries, 2)
	assert.NotEmpty(t, posting.ReferenceChainID)
	assert.Equal(t, "MANUAL", posting.ReferenceType)
	assert.Equal(t, "100.0000", posting.Entries[0].Debit)
	assert.Equal(t, "100.0000", posting.Entries[1].Credit)

	// One audit row per ledger entry, all under the posting's chain.
	chain, err := f.audit.GetTraceChain(ctx, generalManager, posting.ReferenceChainID)
	require.NoError(t, err)
	require.Len(t, chain.Records, 2)
	for _, record := range chain.Records {
		assert.Equal(t, model.ActionPostLedgerEntry, record.Action)
	}
}

func TestPostDoubleEntry_UnbalancedRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.finance.PostDoubleEntry(ctx, financeA, PostEntryRequest{
		LocationID:    "LOC-A",
		ReferenceType: "MANUAL",
		ReferenceID:   "ADJ-2",
		Lines: []LedgerLineRequest{
			{AccountCode: model.AccountCash, Debit: "100.00"},
			{AccountCode: model.AccountRevenue, Credit: "90.00"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "INVARIANT_VIOLATION", apperror.Code(err))
	assert.Contains(t, err.Error(), "unbalanced")

	entries, err := f.finance.GetLedgerByReference(ctx, financeA, "MANUAL", "ADJ-2")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostDoubleEntry_NegativeAmountRejected(t *testing.T) {
	f := newFixture()

	_, err := f.finance.PostDoubleEntry(context.Background(), financeA, PostEntryRequest{
		LocationID:    "LOC-A",
		ReferenceType: "MANUAL",
		ReferenceID:   "ADJ-3",
		Lines: []LedgerLineRequest{
			{AccountCode: model.AccountCash, Debit: "-50.00"},
			{AccountCode: model.AccountRevenue, Credit: "-50.00"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
}

func TestPostDoubleEntry_DuplicateReferenceRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.finance.PostDoubleEntry(ctx, financeA, manualPosting("LOC-A", "ADJ-4"))
	require.NoError(t, err)

	_, err = f.finance.PostDoubleEntry(ctx, financeA, manualPosting("LOC-A", "ADJ-4"))
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvariant))
	assert.Equal(t, "INVARIANT_VIOLATION", apperror.Code(err))
	assert.Contains(t, err.Error(), "already posted")

	entries, err := f.finance.GetLedgerByReference(ctx, financeA, "MANUAL", "ADJ-4")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPostDoubleEntry_ScopeAndRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.finance.PostDoubleEntry(ctx, financeA, manualPosting("LOC-B", "ADJ-5"))
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))

	_, err = f.finance.PostDoubleEntry(ctx, auditorActor, manualPosting("LOC-A", "ADJ-6"))
	require.Error(t, err)
	assert.Equal(t, "AUTHORIZATION", apperror.Code(err))
}

func TestApproveInvoice_PostsPayable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoiceID := f.seedPendingInvoice(t)

	posting, err := f.finance.ApproveInvoice(ctx, financeA, invoiceID)
	require.NoError(t, err)
	require.Len(t, posting.Entries, 2)
	assert.Equal(t, model.RefTypeVendorInvoice, posting.ReferenceType)
	assert.Equal(t, invoiceID, posting.ReferenceID)
	assert.Equal(t, model.AccountCOGS, posting.Entries[0].AccountCode)
	assert.Equal(t, "50.0000", posting.Entries[0].Debit)
	assert.Equal(t, model.AccountAccountsPayable, posting.Entries[1].AccountCode)
	assert.Equal(t, "50.0000", posting.Entries[1].Credit)

	invoice, err := f.store.VendorInvoices().FindByID(ctx, uuid.MustParse(invoiceID))
	require.NoError(t, err)
	assert.Equal(t, model.VendorInvoiceApproved, invoice.Status)
	require.NotNil(t, invoice.ApprovedBy)
	assert.Equal(t, financeA.ID, *invoice.ApprovedBy)
}

func TestApproveInvoice_Twice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoiceID := f.seedPendingInvoice(t)

	_, err := f.finance.ApproveInvoice(ctx, financeA, invoiceID)
	require.NoError(t, err)

	_, err = f.finance.ApproveInvoice(ctx, financeA, invoiceID)
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
}

func TestApproveInvoice_AmountMismatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	receiptID := f.seedReceivedChain(t)

	invoice, err := f.procurement.CreateVendorInvoice(ctx, procurementA, CreateVendorInvoiceRequest{
		GoodsReceiptID: receiptID,
		VendorName:     "Acme Supplies",
		Amount:         "60.00",
	})
	require.NoError(t, err)

	_, err = f.finance.ApproveInvoice(ctx, financeA, invoice.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "does not match goods receipt total")

	entries, err := f.finance.GetLedgerByReference(ctx, financeA, model.RefTypeVendorInvoice, invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApproveInvoice_ExceedsPurchaseOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Goods receipt priced above the purchase order: 5 x 12.00 = 60.00
	// against a 50.00 order.
	itemID := f.createItem(t, "SKU-OVERPRICED")
	requisitionID := f.seedApprovedRequisition(t, itemID)
	orderID := f.seedIssuedOrder(t, requisitionID)
	receipt, err := f.procurement.CreateGoodsReceipt(ctx, procurementA, CreateGoodsReceiptRequest{
		PurchaseOrderID: orderID,
		Items:           []GoodsReceiptItemRequest{{ItemID: itemID, Quantity: 5, UnitCost: "12.00"}},
	})
	require.NoError(t, err)
	_, err = f.procurement.MarkGoodsReceiptReceived(ctx, procurementA, receipt.ID)
	require.NoError(t, err)

	invoice, err := f.procurement.CreateVendorInvoice(ctx, procurementA, CreateVendorInvoiceRequest{
		GoodsReceiptID: receipt.ID,
		VendorName:     "Acme Supplies",
		Amount:         "60.00",
	})
	require.NoError(t, err)

	_, err = f.finance.ApproveInvoice(ctx, financeA, invoice.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "exceeds purchase order total")
}

func TestPayInvoice_SettlesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoiceID := f.seedPendingInvoice(t)

	_, err := f.finance.ApproveInvoice(ctx, financeA, invoiceID)
	require.NoError(t, err)

	posting, err := f.finance.PayInvoice(ctx, financeA, invoiceID, PayInvoiceRequest{Amount: "50.00", PaymentMethod: model.PaymentMethodBank})
	require.NoError(t, err)
	require.Len(t, posting.Entries, 2)
	assert.Equal(t, model.AccountAccountsPayable, posting.Entries[0].AccountCode)
	assert.Equal(t, model.AccountBank, posting.Entries[1].AccountCode)

	invoice, err := f.store.VendorInvoices().FindByID(ctx, uuid.MustParse(invoiceID))
	require.NoError(t, err)
	assert.Equal(t, model.VendorInvoicePaid, invoice.Status)

	_, err = f.finance.PayInvoice(ctx, financeA, invoiceID, PayInvoiceRequest{Amount: "50.00", PaymentMethod: model.PaymentMethodBank})
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
}

func TestPayInvoice_AmountMustMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoiceID := f.seedPendingInvoice(t)

	_, err := f.finance.ApproveInvoice(ctx, financeA, invoiceID)
	require.NoError(t, err)

	_, err = f.finance.PayInvoice(ctx, financeA, invoiceID, PayInvoiceRequest{Amount: "49.00", PaymentMethod: model.PaymentMethodCash})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "does not match invoice amount")
}

func TestPayInvoice_UnapprovedRejected(t *testing.T) {
	f := newFixture()
	invoiceID := f.seedPendingInvoice(t)

	_, err := f.finance.PayInvoice(context.Background(), financeA, invoiceID, PayInvoiceRequest{Amount: "50.00", PaymentMethod: model.PaymentMethodCash})
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
}

func TestPayInvoice_SettlesApprovedPaymentRequest(t *testing.T) {
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
	_, err = f.procurement.ApprovePaymentRequest(ctx, financeA, request.ID)
	require.NoError(t, err)

	_, err = f.finance.PayInvoice(ctx, financeA, invoiceID, PayInvoiceRequest{Amount: "50.00", PaymentMethod: model.PaymentMethodBank})
	require.NoError(t, err)

	settled, err := f.store.PaymentRequests().FindByID(ctx, uuid.MustParse(request.ID))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRequestSettled, settled.Status)
}

func TestExpense_AccrueThenSettle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	expense, err := f.finance.CreateExpense(ctx, financeA, CreateExpenseRequest{
		LocationID:  "LOC-A",
		Category:    "FUEL",
		Amount:      "25.50",
		Description: "generator diesel",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExpenseUnpaid, expense.Status)

	accrual, err := f.finance.GetLedgerByReference(ctx, financeA, model.RefTypeExpense, expense.ID)
	require.NoError(t, err)
	require.Len(t, accrual, 2)
	assert.Equal(t, "OPEX:FUEL", accrual[0].AccountCode)
	assert.Equal(t, "25.5000", accrual[0].Debit)
	assert.Equal(t, model.AccountAccountsPayable, accrual[1].AccountCode)

	paid, err := f.finance.PayExpense(ctx, financeA, expense.ID, PayExpenseRequest{PaymentMethod: model.PaymentMethodBank})
	require.NoError(t, err)
	assert.Equal(t, model.ExpensePaid, paid.Status)

	settlement, err := f.finance.GetLedgerByReference(ctx, financeA, model.RefTypeExpensePayment, expense.ID)
	require.NoError(t, err)
	require.Len(t, settlement, 2)
	assert.Equal(t, model.AccountBank, settlement[1].AccountCode)
	assert.Equal(t, "25.5000", settlement[1].Credit)

	_, err = f.finance.PayExpense(ctx, financeA, expense.ID, PayExpenseRequest{PaymentMethod: model.PaymentMethodBank})
	require.Error(t, err)
	assert.Equal(t, "LIFECYCLE_VIOLATION", apperror.Code(err))
}

func TestPostRevenueFromSales_DeterministicReference(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, amount := range []string{"100.00", "50.00"} {
		_, err := f.finance.RecordSale(ctx, financeA, RecordSaleRequest{
			LocationID: "LOC-A",
			Amount:     amount,
			OccurredAt: "2026-01-10",
		})
		require.NoError(t, err)
	}

	posting, err := f.finance.PostRevenueFromSales(ctx, financeA, PostRevenueRequest{
		LocationID: "LOC-A",
		StartDate:  "2026-01-01",
		EndDate:    "2026-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "LOC-A:20260101:20260201", posting.ReferenceID)
	require.Len(t, posting.Entries, 2)
	assert.Equal(t, "150.0000", posting.Entries[0].Debit)
	assert.Equal(t, model.AccountRevenue, posting.Entries[1].AccountCode)

	// Same window posts at most once.
	_, err = f.finance.PostRevenueFromSales(ctx, financeA, PostRevenueRequest{
		LocationID: "LOC-A",
		StartDate:  "2026-01-01",
		EndDate:    "2026-02-01",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvariant))
	assert.Contains(t, err.Error(), "already posted")
}

func TestPostRevenueFromSales_EmptyWindow(t *testing.T) {
	f := newFixture()

	_, err := f.finance.PostRevenueFromSales(context.Background(), financeA, PostRevenueRequest{
		LocationID: "LOC-A",
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "no sales recorded")
}

func TestReversePostedReference_MirrorsEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.finance.PostDoubleEntry(ctx, financeA, manualPosting("LOC-A", "ADJ-7"))
	require.NoError(t, err)

	reversal, err := f.finance.ReversePostedReference(ctx, financeA, ReversePostingRequest{
		ReferenceType: "MANUAL",
		ReferenceID:   "ADJ-7",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RefTypeReversal, reversal.ReferenceType)
	assert.Equal(t, "ADJ-7-REV", reversal.ReferenceID)
	require.Len(t, reversal.Entries, 2)
	assert.Equal(t, model.AccountCash, reversal.Entries[0].AccountCode)
	assert.Equal(t, "100.0000", reversal.Entries[0].Credit)
	assert.Equal(t, "100.0000", reversal.Entries[1].Debit)
}

func TestReversePostedReference_UnknownReference(t *testing.T) {
	f := newFixture()

	_, err := f.finance.ReversePostedReference(context.Background(), financeA, ReversePostingRequest{
		ReferenceType: "MANUAL",
		ReferenceID:   "GHOST",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "no posting found")
}

func TestGetLedgerByReference_ScopedActorFiltered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.finance.PostDoubleEntry(ctx, financeB, manualPosting("LOC-B", "ADJ-8"))
	require.NoError(t, err)

	entries, err := f.finance.GetLedgerByReference(ctx, financeA, "MANUAL", "ADJ-8")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = f.finance.GetLedgerByReference(ctx, generalManager, "MANUAL", "ADJ-8")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func seedReportLedger(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	f.store.SetClock(func() time.Time {
		return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	})

	post := func(referenceID string, lines []LedgerLineRequest) {
		_, err := f.finance.PostDoubleEntry(ctx, financeA, PostEntryRequest{
			LocationID:    "LOC-A",
			ReferenceType: "MANUAL",
			ReferenceID:   referenceID,
			Lines:         lines,
		})
		require.NoError(t, err)
	}

	post("REV-1", []LedgerLineRequest{
		{AccountCode: model.AccountCash, Debit: "100.00"},
		{AccountCode: model.AccountRevenue, Credit: "100.00"},
	})
	post("COGS-1", []LedgerLineRequest{
		{AccountCode: model.AccountCOGS, Debit: "40.00"},
		{AccountCode: model.AccountAccountsPayable, Credit: "40.00"},
	})
	post("RENT-1", []LedgerLineRequest{
		{AccountCode: "OPEX:RENT", Debit: "10.00"},
		{AccountCode: model.AccountCash, Credit: "10.00"},
	})
}

func TestGetProfitAndLoss(t *testing.T) {
	f := newFixture()
	seedReportLedger(t, f)

	report, err := f.finance.GetProfitAndLoss(context.Background(), financeA, ReportQuery{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "100.0000", report.Revenue)
	assert.Equal(t, "40.0000", report.COGS)
	assert.Equal(t, "60.0000", report.GrossProfit)
	assert.Equal(t, "10.0000", report.Opex["OPEX:RENT"])
	assert.Equal(t, "10.0000", report.TotalOpex)
	assert.Equal(t, "50.0000", report.NetProfit)
	assert.Equal(t, "LOC-A", report.LocationID)
}

func TestGetCashFlowReport(t *testing.T) {
	f := newFixture()
	seedReportLedger(t, f)

	report, err := f.finance.GetCashFlowReport(context.Background(), financeA, ReportQuery{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "100.0000", report.Inflows[model.AccountCash])
	assert.Equal(t, "10.0000", report.Outflows[model.AccountCash])
	assert.Equal(t, "90.0000", report.NetFlow)
}

func TestGetExpenditureVsIncome(t *testing.T) {
	f := newFixture()
	seedReportLedger(t, f)

	report, err := f.finance.GetExpenditureVsIncome(context.Background(), financeA, ReportQuery{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "100.0000", report.Income)
	assert.Equal(t, "50.0000", report.Expenditure)
	assert.Equal(t, "50.0000", report.Net)
}

func TestReportWindow_ScopedActorCannotReadOtherLocation(t *testing.T) {
	f := newFixture()
	seedReportLedger(t, f)

	_, err := f.finance.GetProfitAndLoss(context.Background(), financeB, ReportQuery{
		LocationID: "LOC-A",
		StartDate:  "2026-01-01",
		EndDate:    "2026-01-31",
	})
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))
}

func TestReportWindow_EndBeforeStart(t *testing.T) {
	f := newFixture()

	_, err := f.finance.GetProfitAndLoss(context.Background(), financeA, ReportQuery{
		StartDate: "2026-02-01",
		EndDate:   "2026-01-01",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
}
