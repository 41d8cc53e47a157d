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

type LedgerLineRequest struct {
	AccountCode string `json:"account_code" binding:"required"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

type PostEntryRequest struct {
	LocationID    string              `json:"location_id" binding:"required"`
	ReferenceType string              `json:"reference_type" binding:"required"`
	ReferenceID   string              `json:"reference_id" binding:"required"`
	Lines         []LedgerLineRequest `json:"lines" binding:"required"`
}

type PayInvoiceRequest struct {
	Amount        string `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type CreateExpenseRequest struct {
	LocationID  string `json:"location_id" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type PayExpenseRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type RecordSaleRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	OccurredAt string `json:"occurred_at" binding:"required"`
}

type PostRevenueRequest struct {
	LocationID string `json:"location_id" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

type ReversePostingRequest struct {
	ReferenceType string `json:"reference_type" binding:"required"`
	ReferenceID   string `json:"reference_id" binding:"required"`
}

type ReportQuery struct {
	LocationID string `form:"location_id"`
	StartDate  string `form:"start_date" binding:"required"`
	EndDate    string `form:"end_date" binding:"required"`
}

type LedgerEntryResponse struct {
	ID            string `json:"id"`
	LocationID    string `json:"location_id"`
	AccountCode   string `json:"account_code"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
	CreatedAt     string `json:"created_at"`
}

type PostingResponse struct {
	ReferenceType    string                `json:"reference_type"`
	ReferenceID      string                `json:"reference_id"`
	ReferenceChainID string                `json:"reference_chain_id"`
	Entries          []LedgerEntryResponse `json:"entries"`
}

type ExpenseResponse struct {
	ID          string `json:"id"`
	LocationID  string `json:"location_id"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
}

type SaleResponse struct {
	ID         string `json:"id"`
	LocationID string `json:"location_id"`
	Amount     string `json:"amount"`
	OccurredAt string `json:"occurred_at"`
	CreatedBy  string `json:"created_by"`
}

type ProfitAndLossResponse struct {
	LocationID  string            `json:"location_id,omitempty"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Revenue     string            `json:"revenue"`
	COGS        string            `json:"cogs"`
	GrossProfit string            `json:"gross_profit"`
	Opex        map[string]string `json:"opex"`
	TotalOpex   string            `json:"total_opex"`
	NetProfit   string            `json:"net_profit"`
}

type CashFlowResponse struct {
	LocationID string            `json:"location_id,omitempty"`
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	Inflows    map[string]string `json:"inflows"`
	Outflows   map[string]string `json:"outflows"`
	NetFlow    string            `json:"net_flow"`
}

type ExpenditureVsIncomeResponse struct {
	LocationID  string `json:"location_id,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Income      string `json:"income"`
	Expenditure string `json:"expenditure"`
	Net         string `json:"net"`
}

// --- Interface ---

// FinanceService is the double-entry ledger engine. Every monetary event
// becomes a balanced posting keyed by (reference type, reference id);
// corrections are mirror postings, never edits.
type FinanceService interface {
	PostDoubleEntry(ctx context.Context, actor model.Actor, req PostEntryRequest) (*PostingResponse, error)
	ApproveInvoice(ctx context.Context, actor model.Actor, invoiceID string) (*PostingResponse, error)
	PayInvoice(ctx context.Context, actor model.Actor, invoiceID string, req PayInvoiceRequest) (*PostingResponse, error)
	CreateExpense(ctx context.Context, actor model.Actor, req CreateExpenseRequest) (*ExpenseResponse, error)
	PayExpense(ctx context.Context, actor model.Actor, expenseID string, req PayExpenseRequest) (*ExpenseResponse, error)
	RecordSale(ctx context.Context, actor model.Actor, req RecordSaleRequest) (*SaleResponse, error)
	PostRevenueFromSales(ctx context.Context, actor model.Actor, req PostRevenueRequest) (*PostingResponse, error)
	ReversePostedReference(ctx context.Context, actor model.Actor, req ReversePostingRequest) (*PostingResponse, error)
	GetLedgerByReference(ctx context.Context, actor model.Actor, referenceType, referenceID string) ([]LedgerEntryResponse, error)
	ListExpenses(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]ExpenseResponse, int64, error)
	GetProfitAndLoss(ctx context.Context, actor model.Actor, query ReportQuery) (*ProfitAndLossResponse, error)
	GetCashFlowReport(ctx context.Context, actor model.Actor, query ReportQuery) (*CashFlowResponse, error)
	GetExpenditureVsIncome(ctx context.Context, actor model.Actor, query ReportQuery) (*ExpenditureVsIncomeResponse, error)
}

type financeService struct {
	ledgerRepo  repository.LedgerRepository
	invoiceRepo repository.VendorInvoiceRepository
	receiptRepo repository.GoodsReceiptRepository
	orderRepo   repository.PurchaseOrderRepository
	payReqRepo  repository.PaymentRequestRepository
	expenseRepo repository.ExpenseRepository
	saleRepo    repository.SaleRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	env         *envelope.Envelope
}

// NewFinanceService returns a new instance of FinanceService
func NewFinanceService(
	ledgerRepo repository.LedgerRepository,
	invoiceRepo repository.VendorInvoiceRepository,
	receiptRepo repository.GoodsReceiptRepository,
	orderRepo repository.PurchaseOrderRepository,
	payReqRepo repository.PaymentRequestRepository,
	expenseRepo repository.ExpenseRepository,
	saleRepo repository.SaleRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	env *envelope.Envelope,
) FinanceService {
	return &financeService{
		ledgerRepo:  ledgerRepo,
		invoiceRepo: invoiceRepo,
		receiptRepo: receiptRepo,
		orderRepo:   orderRepo,
		payReqRepo:  payReqRepo,
		expenseRepo: expenseRepo,
		saleRepo:    saleRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		env:         env,
	}
}

// --- Posting primitive ---

type ledgerLine struct {
	Account string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// postLines writes one balanced posting plus an audit record per entry.
// It is the single write path into the ledger: every caller goes through
// the balance check and the (reference type, reference id) idempotency
// check here.
func (s *financeService) postLines(ctx context.Context, actor model.Actor, trace *envelope.Trace, locationID, referenceType, referenceID string, lines []ledgerLine) ([]model.LedgerEntry, error) {
	if trace.ReferenceChainID == "" {
		trace.ReferenceChainID = uuid.NewString()
	}

	if len(lines) < 2 {
		return nil, apperror.Domain("posting %s/%s needs at least two lines, got %d", referenceType, referenceID, len(lines))
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return nil, apperror.Domain("posting %s/%s has a negative amount on account %s", referenceType, referenceID, line.Account)
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, apperror.Invariant("unbalanced posting %s/%s: debits %s, credits %s", referenceType, referenceID, totalDebit.String(), totalCredit.String()).
			WithMeta("reference_type", referenceType).
			WithMeta("reference_id", referenceID)
	}
	if totalDebit.IsZero() {
		return nil, apperror.Domain("posting %s/%s moves no money", referenceType, referenceID)
	}

	exists, err := s.ledgerRepo.ExistsByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to check posting reference: %w", err)
	}
	if exists {
		return nil, apperror.Invariant("already posted for %s %s", referenceType, referenceID).
			WithMeta("reference_type", referenceType).
			WithMeta("reference_id", referenceID)
	}

	entries := make([]*model.LedgerEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, &model.LedgerEntry{
			ID:            uuid.New(),
			LocationID:    locationID,
			AccountCode:   line.Account,
			Debit:         line.Debit,
			Credit:        line.Credit,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
		})
	}
	if err := s.ledgerRepo.CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to create ledger entries: %w", err)
	}

	created := make([]model.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if err := appendAudit(ctx, s.auditRepo, actor, locationID, model.ActionPostLedgerEntry, model.EntityLedgerEntry, entry.ID.String(), trace.ReferenceChainID, map[string]string{
			"account_code":   entry.AccountCode,
			"debit":          entry.Debit.StringFixed(4),
			"credit":         entry.Credit.StringFixed(4),
			"reference_type": referenceType,
			"reference_id":   referenceID,
		}, nil); err != nil {
			return nil, err
		}
		created = append(created, *entry)
	}
	return created, nil
}

// --- Implementation ---

func (s *financeService) PostDoubleEntry(ctx context.Context, actor model.Actor, req PostEntryRequest) (*PostingResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, req.LocationID); err != nil {
		return nil, err
	}

	lines := make([]ledgerLine, 0, len(req.Lines))
	for _, raw := range req.Lines {
		line := ledgerLine{Account: raw.AccountCode, Debit: decimal.Zero, Credit: decimal.Zero}
		var err error
		if raw.Debit != "" {
			if line.Debit, err = decimal.NewFromString(raw.Debit); err != nil {
				return nil, apperror.Domain("invalid debit on account %s: %q", raw.AccountCode, raw.Debit)
			}
		}
		if raw.Credit != "" {
			if line.Credit, err = decimal.NewFromString(raw.Credit); err != nil {
				return nil, apperror.Domain("invalid credit on account %s: %q", raw.AccountCode, raw.Credit)
			}
		}
		lines = append(lines, line)
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionPostLedgerEntry, EntityType: model.EntityLedgerEntry, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PostingResponse, error) {
		var entries []model.LedgerEntry
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			var txErr error
			entries, txErr = s.postLines(txCtx, actor, trace, req.LocationID, req.ReferenceType, req.ReferenceID, lines)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		return mapPostingResponse(req.ReferenceType, req.ReferenceID, trace.ReferenceChainID, entries), nil
	})
}

func (s *financeService) ApproveInvoice(ctx context.Context, actor model.Actor, invoiceID string) (*PostingResponse, error) {
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

	meta := envelope.Meta{Actor: actor, Action: model.ActionApproveInvoice, EntityType: model.EntityVendorInvoice, LocationID: invoice.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PostingResponse, error) {
		var entries []model.LedgerEntry
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			inv, err := s.invoiceRepo.FindByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("failed to reload vendor invoice: %w", err)
			}
			if err := guard.AssertLocationAccess(actor, inv.LocationID); err != nil {
				return err
			}
			if !model.CanTransition(model.VendorInvoiceTransitions, inv.Status, model.VendorInvoiceApproved) {
				return transitionError(model.EntityVendorInvoice, inv.ID.String(), inv.Status, model.VendorInvoiceApproved)
			}

			receipt, order, err := s.loadMatchDocuments(txCtx, inv)
			if err != nil {
				return err
			}
			if err := verifyThreeWayMatch(inv, receipt, order); err != nil {
				return err
			}

			entries, err = s.postLines(txCtx, actor, trace, inv.LocationID, model.RefTypeVendorInvoice, inv.ID.String(), []ledgerLine{
				{Account: model.AccountCOGS, Debit: inv.Amount, Credit: decimal.Zero},
				{Account: model.AccountAccountsPayable, Debit: decimal.Zero, Credit: inv.Amount},
			})
			if err != nil {
				return err
			}

			previous := inv.Status
			now := time.Now()
			inv.Status = model.VendorInvoiceApproved
			inv.ApprovedBy = &actor.ID
			inv.ApprovedAt = &now
			if err := s.invoiceRepo.Update(txCtx, inv); err != nil {
				return fmt.Errorf("failed to update vendor invoice: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, inv.LocationID, model.ActionApproveInvoice, model.EntityVendorInvoice, inv.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status": previous,
				"to_status":   inv.Status,
				"amount":      inv.Amount.StringFixed(4),
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapPostingResponse(model.RefTypeVendorInvoice, id.String(), trace.ReferenceChainID, entries), nil
	})
}

// loadMatchDocuments pulls the goods receipt and purchase order an invoice
// must be matched against.
func (s *financeService) loadMatchDocuments(ctx context.Context, invoice *model.VendorInvoice) (*model.GoodsReceipt, *model.PurchaseOrder, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, invoice.GoodsReceiptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.Domain("invoice %s references goods receipt %s which does not exist", invoice.ID, invoice.GoodsReceiptID).
				WithMeta("field", "goods_receipt_id")
		}
		return nil, nil, fmt.Errorf("failed to load goods receipt: %w", err)
	}
	order, err := s.orderRepo.FindByID(ctx, receipt.PurchaseOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.Domain("goods receipt %s references purchase order %s which does not exist", receipt.ID, receipt.PurchaseOrderID).
				WithMeta("field", "purchase_order_id")
		}
		return nil, nil, fmt.Errorf("failed to load purchase order: %w", err)
	}
	return receipt, order, nil
}

// verifyThreeWayMatch enforces invoice == goods receipt <= purchase order
// before any payable is accrued. Each mismatch names the offending field.
func verifyThreeWayMatch(invoice *model.VendorInvoice, receipt *model.GoodsReceipt, order *model.PurchaseOrder) error {
	if receipt.Status != model.GoodsReceiptReceived {
		return apperror.Lifecycle("goods receipt %s is %s, expected %q before invoice approval", receipt.ID, receipt.Status, model.GoodsReceiptReceived).
			WithMeta("field", "goods_receipt_status")
	}
	if order.Status == model.PurchaseOrderDraft || order.Status == model.PurchaseOrderCancelled {
		return apperror.Lifecycle("purchase order %s is %s and cannot back an invoice", order.ID, order.Status).
			WithMeta("field", "purchase_order_status")
	}
	if receipt.LocationID != invoice.LocationID {
		return apperror.Domain("goods receipt location %s does not match invoice location %s", receipt.LocationID, invoice.LocationID).
			WithMeta("field", "location_id")
	}
	if order.LocationID != invoice.LocationID {
		return apperror.Domain("purchase order location %s does not match invoice location %s", order.LocationID, invoice.LocationID).
			WithMeta("field", "location_id")
	}
	if !invoice.Amount.Equal(receipt.TotalAmount) {
		return apperror.Domain("invoice amount %s does not match goods receipt total %s", invoice.Amount.StringFixed(4), receipt.TotalAmount.StringFixed(4)).
			WithMeta("field", "amount")
	}
	if invoice.Amount.GreaterThan(order.TotalAmount) {
		return apperror.Domain("invoice amount %s exceeds purchase order total %s", invoice.Amount.StringFixed(4), order.TotalAmount.StringFixed(4)).
			WithMeta("field", "amount")
	}
	return nil
}

func (s *financeService) PayInvoice(ctx context.Context, actor model.Actor, invoiceID string, req PayInvoiceRequest) (*PostingResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("invoice id", invoiceID)
	if err != nil {
		return nil, err
	}
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	cashAccount, ok := model.CashAccountFor(req.PaymentMethod)
	if !ok {
		return nil, apperror.Domain("unknown payment method %q", req.PaymentMethod)
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("vendor invoice %s not found", invoiceID)
		}
		return nil, fmt.Errorf("failed to load vendor invoice: %w", err)
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionPayInvoice, EntityType: model.EntityVendorInvoice, LocationID: invoice.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PostingResponse, error) {
		var entries []model.LedgerEntry
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			inv, err := s.invoiceRepo.FindByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("failed to reload vendor invoice: %w", err)
			}
			if err := guard.AssertLocationAccess(actor, inv.LocationID); err != nil {
				return err
			}
			if !model.CanTransition(model.VendorInvoiceTransitions, inv.Status, model.VendorInvoicePaid) {
				return transitionError(model.EntityVendorInvoice, inv.ID.String(), inv.Status, model.VendorInvoicePaid)
			}
			if !amount.Equal(inv.Amount) {
				return apperror.Domain("payment amount %s does not match invoice amount %s", amount.StringFixed(4), inv.Amount.StringFixed(4)).
					WithMeta("field", "amount")
			}

			entries, err = s.postLines(txCtx, actor, trace, inv.LocationID, model.RefTypeInvoicePayment, inv.ID.String(), []ledgerLine{
				{Account: model.AccountAccountsPayable, Debit: amount, Credit: decimal.Zero},
				{Account: cashAccount, Debit: decimal.Zero, Credit: amount},
			})
			if err != nil {
				return err
			}

			previous := inv.Status
			inv.Status = model.VendorInvoicePaid
			if err := s.invoiceRepo.Update(txCtx, inv); err != nil {
				return fmt.Errorf("failed to update vendor invoice: %w", err)
			}
			if err := appendAudit(txCtx, s.auditRepo, actor, inv.LocationID, model.ActionPayInvoice, model.EntityVendorInvoice, inv.ID.String(), trace.ReferenceChainID, map[string]string{
				"from_status":    previous,
				"to_status":      inv.Status,
				"amount":         amount.StringFixed(4),
				"payment_method": req.PaymentMethod,
			}, nil); err != nil {
				return err
			}

			// Settle the payment request covering this invoice, if finance
			// already approved one.
			return s.settlePaymentRequest(txCtx, actor, trace, inv)
		})
		if err != nil {
			return nil, err
		}
		return mapPostingResponse(model.RefTypeInvoicePayment, id.String(), trace.ReferenceChainID, entries), nil
	})
}

func (s *financeService) settlePaymentRequest(ctx context.Context, actor model.Actor, trace *envelope.Trace, invoice *model.VendorInvoice) error {
	request, err := s.payReqRepo.FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to look up payment request: %w", err)
	}
	if request == nil || !model.CanTransition(model.PaymentRequestTransitions, request.Status, model.PaymentRequestSettled) {
		return nil
	}
	previous := request.Status
	request.Status = model.PaymentRequestSettled
	if err := s.payReqRepo.Update(ctx, request); err != nil {
		return fmt.Errorf("failed to update payment request: %w", err)
	}
	return appendAudit(ctx, s.auditRepo, actor, request.LocationID, model.ActionPayInvoice, model.EntityPaymentRequest, request.ID.String(), trace.ReferenceChainID, map[string]string{
		"from_status": previous,
		"to_status":   request.Status,
	}, nil)
}

func (s *financeService) CreateExpense(ctx context.Context, actor model.Actor, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, req.LocationID); err != nil {
		return nil, err
	}
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if req.Category == "" {
		return nil, apperror.Domain("expense category is required")
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionCreateExpense, EntityType: model.EntityExpense, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*ExpenseResponse, error) {
		expense := &model.Expense{
			ID:          uuid.New(),
			LocationID:  req.LocationID,
			Category:    req.Category,
			Amount:      amount,
			Status:      model.ExpenseUnpaid,
			Description: req.Description,
			CreatedBy:   actor.ID,
		}
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.expenseRepo.Create(txCtx, expense); err != nil {
				return fmt.Errorf("failed to create expense: %w", err)
			}
			if _, err := s.postLines(txCtx, actor, trace, req.LocationID, model.RefTypeExpense, expense.ID.String(), []ledgerLine{
				{Account: model.OpexAccountPrefix + req.Category, Debit: amount, Credit: decimal.Zero},
				{Account: model.AccountAccountsPayable, Debit: decimal.Zero, Credit: amount},
			}); err != nil {
				return err
			}
			return appendAudit(txCtx, s.auditRepo, actor, req.LocationID, model.ActionCreateExpense, model.EntityExpense, expense.ID.String(), trace.ReferenceChainID, map[string]string{
				"category": req.Category,
				"amount":   amount.StringFixed(4),
				"status":   expense.Status,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapExpenseResponse(expense), nil
	})
}

func (s *financeService) PayExpense(ctx context.Context, actor model.Actor, expenseID string, req PayExpenseRequest) (*ExpenseResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	id, err := parseUUID("expense id", expenseID)
	if err != nil {
		return nil, err
	}
	cashAccount, ok := model.CashAccountFor(req.PaymentMethod)
	if !ok {
		return nil, apperror.Domain("unknown payment method %q", req.PaymentMethod)
	}
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("expense %s not found", expenseID)
		}
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionPayExpense, EntityType: model.EntityExpense, LocationID: expense.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*ExpenseResponse, error) {
		var paid *model.Expense
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			exp, err := s.expenseRepo.FindByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("failed to reload expense: %w", err)
			}
			if err := guard.AssertLocationAccess(actor, exp.LocationID); err != nil {
				return err
			}
			if exp.Status != model.ExpenseUnpaid {
				return transitionError(model.EntityExpense, exp.ID.String(), exp.Status, model.ExpensePaid)
			}

			if _, err := s.postLines(txCtx, actor, trace, exp.LocationID, model.RefTypeExpensePayment, exp.ID.String(), []ledgerLine{
				{Account: model.AccountAccountsPayable, Debit: exp.Amount, Credit: decimal.Zero},
				{Account: cashAccount, Debit: decimal.Zero, Credit: exp.Amount},
			}); err != nil {
				return err
			}

			exp.Status = model.ExpensePaid
			if err := s.expenseRepo.Update(txCtx, exp); err != nil {
				return fmt.Errorf("failed to update expense: %w", err)
			}
			paid = exp
			return appendAudit(txCtx, s.auditRepo, actor, exp.LocationID, model.ActionPayExpense, model.EntityExpense, exp.ID.String(), trace.ReferenceChainID, map[string]string{
				"amount":         exp.Amount.StringFixed(4),
				"payment_method": req.PaymentMethod,
				"status":         exp.Status,
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return mapExpenseResponse(paid), nil
	})
}

func (s *financeService) RecordSale(ctx context.Context, actor model.Actor, req RecordSaleRequest) (*SaleResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, req.LocationID); err != nil {
		return nil, err
	}
	amount, err := parsePositiveAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	occurredAt, err := parseTimestamp("occurred_at", req.OccurredAt)
	if err != nil {
		return nil, err
	}

	meta := envelope.Meta{Actor: actor, Action: model.ActionRecordSale, EntityType: model.EntitySale, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*SaleResponse, error) {
		sale := &model.Sale{
			ID:         uuid.New(),
			LocationID: req.LocationID,
			Amount:     amount,
			OccurredAt: occurredAt,
			CreatedBy:  actor.ID,
		}
		trace.ReferenceChainID = uuid.NewString()
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.saleRepo.Create(txCtx, sale); err != nil {
				return fmt.Errorf("failed to create sale: %w", err)
			}
			return appendAudit(txCtx, s.auditRepo, actor, req.LocationID, model.ActionRecordSale, model.EntitySale, sale.ID.String(), trace.ReferenceChainID, map[string]string{
				"amount":      amount.StringFixed(4),
				"occurred_at": occurredAt.Format(time.RFC3339),
			}, nil)
		})
		if err != nil {
			return nil, err
		}
		return &SaleResponse{
			ID:         sale.ID.String(),
			LocationID: sale.LocationID,
			Amount:     sale.Amount.StringFixed(4),
			OccurredAt: sale.OccurredAt.Format(time.RFC3339),
			CreatedBy:  sale.CreatedBy,
		}, nil
	})
}

// RevenueReferenceID is the deterministic posting key for a revenue window.
// Posting the same (location, window) twice collides on it and fails.
func RevenueReferenceID(locationID string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s", locationID, start.Format("20060102"), end.Format("20060102"))
}

func (s *financeService) PostRevenueFromSales(ctx context.Context, actor model.Actor, req PostRevenueRequest) (*PostingResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}
	if err := guard.AssertLocationAccess(actor, req.LocationID); err != nil {
		return nil, err
	}
	start, err := parseTimestamp("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, apperror.Domain("end_date %s must be after start_date %s", req.EndDate, req.StartDate)
	}

	referenceID := RevenueReferenceID(req.LocationID, start, end)
	meta := envelope.Meta{Actor: actor, Action: model.ActionPostRevenue, EntityType: model.EntityLedgerEntry, LocationID: req.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PostingResponse, error) {
		var entries []model.LedgerEntry
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			sales, err := s.saleRepo.ListByWindow(txCtx, req.LocationID, start, end)
			if err != nil {
				return fmt.Errorf("failed to list sales: %w", err)
			}
			total := decimal.Zero
			for _, sale := range sales {
				total = total.Add(sale.Amount)
			}
			if total.IsZero() {
				return apperror.Domain("no sales recorded for location %s between %s and %s", req.LocationID, req.StartDate, req.EndDate)
			}

			entries, err = s.postLines(txCtx, actor, trace, req.LocationID, model.RefTypeSalesRevenue, referenceID, []ledgerLine{
				{Account: model.AccountCash, Debit: total, Credit: decimal.Zero},
				{Account: model.AccountRevenue, Debit: decimal.Zero, Credit: total},
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		return mapPostingResponse(model.RefTypeSalesRevenue, referenceID, trace.ReferenceChainID, entries), nil
	})
}

func (s *financeService) ReversePostedReference(ctx context.Context, actor model.Actor, req ReversePostingRequest) (*PostingResponse, error) {
	if err := guard.AssertCanMutate(actor); err != nil {
		return nil, err
	}

	reversalID := req.ReferenceID + "-REV"
	meta := envelope.Meta{Actor: actor, Action: model.ActionReversePosting, EntityType: model.EntityLedgerEntry, LocationID: actor.LocationID}
	return envelope.Run(s.env, ctx, meta, func(ctx context.Context, trace *envelope.Trace) (*PostingResponse, error) {
		var entries []model.LedgerEntry
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			original, err := s.ledgerRepo.ListByReference(txCtx, req.ReferenceType, req.ReferenceID)
			if err != nil {
				return fmt.Errorf("failed to load posting: %w", err)
			}
			if len(original) == 0 {
				return apperror.Domain("no posting found for %s %s", req.ReferenceType, req.ReferenceID)
			}
			if err := guard.AssertLocationAccess(actor, original[0].LocationID); err != nil {
				return err
			}

			lines := make([]ledgerLine, 0, len(original))
			for _, entry := range original {
				lines = append(lines, ledgerLine{Account: entry.AccountCode, Debit: entry.Credit, Credit: entry.Debit})
			}
			entries, err = s.postLines(txCtx, actor, trace, original[0].LocationID, model.RefTypeReversal, reversalID, lines)
			return err
		})
		if err != nil {
			return nil, err
		}
		return mapPostingResponse(model.RefTypeReversal, reversalID, trace.ReferenceChainID, entries), nil
	})
}

func (s *financeService) GetLedgerByReference(ctx context.Context, actor model.Actor, referenceType, referenceID string) ([]LedgerEntryResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	entries = guard.FilterByLocation(actor, entries)

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapLedgerEntryResponse(entry))
	}
	return responses, nil
}

func (s *financeService) ListExpenses(ctx context.Context, actor model.Actor, locationID, status string, page, limit int) ([]ExpenseResponse, int64, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, 0, err
	}
	scoped, err := resolveLocationScope(actor, locationID)
	if err != nil {
		return nil, 0, err
	}
	expenses, total, err := s.expenseRepo.List(ctx, scoped, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	responses := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		responses = append(responses, *mapExpenseResponse(&expenses[i]))
	}
	return responses, total, nil
}

// reportWindow resolves a report query into a ledger window the actor may
// read. The end bound is exclusive; a date-only end covers that whole day.
func (s *financeService) reportWindow(actor model.Actor, query ReportQuery) (repository.LedgerWindow, error) {
	locationID, err := resolveLocationScope(actor, query.LocationID)
	if err != nil {
		return repository.LedgerWindow{}, err
	}
	start, err := parseTimestamp("start_date", query.StartDate)
	if err != nil {
		return repository.LedgerWindow{}, err
	}
	end, err := parseTimestamp("end_date", query.EndDate)
	if err != nil {
		return repository.LedgerWindow{}, err
	}
	if len(query.EndDate) == len("2006-01-02") {
		end = end.Add(24 * time.Hour)
	}
	if !end.After(start) {
		return repository.LedgerWindow{}, apperror.Domain("end_date %s must be after start_date %s", query.EndDate, query.StartDate)
	}
	return repository.LedgerWindow{LocationID: locationID, Start: start, End: end}, nil
}

func (s *financeService) GetProfitAndLoss(ctx context.Context, actor model.Actor, query ReportQuery) (*ProfitAndLossResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	window, err := s.reportWindow(actor, query)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListByWindow(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	revenue := decimal.Zero
	cogs := decimal.Zero
	opex := map[string]decimal.Decimal{}
	totalOpex := decimal.Zero
	for _, entry := range entries {
		switch {
		case entry.AccountCode == model.AccountRevenue:
			revenue = revenue.Add(entry.Credit).Sub(entry.Debit)
		case entry.AccountCode == model.AccountCOGS:
			cogs = cogs.Add(entry.Debit).Sub(entry.Credit)
		case isOpexAccount(entry.AccountCode):
			net := entry.Debit.Sub(entry.Credit)
			opex[entry.AccountCode] = opex[entry.AccountCode].Add(net)
			totalOpex = totalOpex.Add(net)
		}
	}

	opexOut := make(map[string]string, len(opex))
	for account, amount := range opex {
		opexOut[account] = amount.StringFixed(4)
	}
	grossProfit := revenue.Sub(cogs)
	return &ProfitAndLossResponse{
		LocationID:  window.LocationID,
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
		Revenue:     revenue.StringFixed(4),
		COGS:        cogs.StringFixed(4),
		GrossProfit: grossProfit.StringFixed(4),
		Opex:        opexOut,
		TotalOpex:   totalOpex.StringFixed(4),
		NetProfit:   grossProfit.Sub(totalOpex).StringFixed(4),
	}, nil
}

func (s *financeService) GetCashFlowReport(ctx context.Context, actor model.Actor, query ReportQuery) (*CashFlowResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	window, err := s.reportWindow(actor, query)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListByWindow(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	inflows := map[string]decimal.Decimal{}
	outflows := map[string]decimal.Decimal{}
	net := decimal.Zero
	for _, entry := range entries {
		if !isCashAccount(entry.AccountCode) {
			continue
		}
		if entry.Debit.IsPositive() {
			inflows[entry.AccountCode] = inflows[entry.AccountCode].Add(entry.Debit)
			net = net.Add(entry.Debit)
		}
		if entry.Credit.IsPositive() {
			outflows[entry.AccountCode] = outflows[entry.AccountCode].Add(entry.Credit)
			net = net.Sub(entry.Credit)
		}
	}

	return &CashFlowResponse{
		LocationID: window.LocationID,
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		Inflows:    formatAccountTotals(inflows),
		Outflows:   formatAccountTotals(outflows),
		NetFlow:    net.StringFixed(4),
	}, nil
}

func (s *financeService) GetExpenditureVsIncome(ctx context.Context, actor model.Actor, query ReportQuery) (*ExpenditureVsIncomeResponse, error) {
	if err := guard.AssertIdentity(actor); err != nil {
		return nil, err
	}
	window, err := s.reportWindow(actor, query)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListByWindow(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	income := decimal.Zero
	expenditure := decimal.Zero
	for _, entry := range entries {
		switch {
		case entry.AccountCode == model.AccountRevenue:
			income = income.Add(entry.Credit).Sub(entry.Debit)
		case entry.AccountCode == model.AccountCOGS || isOpexAccount(entry.AccountCode):
			expenditure = expenditure.Add(entry.Debit).Sub(entry.Credit)
		}
	}

	return &ExpenditureVsIncomeResponse{
		LocationID:  window.LocationID,
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
		Income:      income.StringFixed(4),
		Expenditure: expenditure.StringFixed(4),
		Net:         income.Sub(expenditure).StringFixed(4),
	}, nil
}

// --- Mapping ---

func isOpexAccount(account string) bool {
	return len(account) > len(model.OpexAccountPrefix) && account[:len(model.OpexAccountPrefix)] == model.OpexAccountPrefix
}

func isCashAccount(account string) bool {
	switch account {
	case model.AccountCash, model.AccountBank, model.AccountMobileMoney, model.AccountCard:
		return true
	}
	return false
}

func formatAccountTotals(totals map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(totals))
	for account, amount := range totals {
		out[account] = amount.StringFixed(4)
	}
	return out
}

func mapLedgerEntryResponse(entry model.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            entry.ID.String(),
		LocationID:    entry.LocationID,
		AccountCode:   entry.AccountCode,
		Debit:         entry.Debit.StringFixed(4),
		Credit:        entry.Credit.StringFixed(4),
		ReferenceType: entry.ReferenceType,
		ReferenceID:   entry.ReferenceID,
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
}

func mapPostingResponse(referenceType, referenceID, chainID string, entries []model.LedgerEntry) *PostingResponse {
	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapLedgerEntryResponse(entry))
	}
	return &PostingResponse{
		ReferenceType:    referenceType,
		ReferenceID:      referenceID,
		ReferenceChainID: chainID,
		Entries:          responses,
	}
}

func mapExpenseResponse(expense *model.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          expense.ID.String(),
		LocationID:  expense.LocationID,
		Category:    expense.Category,
		Amount:      expense.Amount.StringFixed(4),
		Status:      expense.Status,
		Description: expense.Description,
		CreatedBy:   expense.CreatedBy,
		CreatedAt:   expense.CreatedAt.Format(time.RFC3339),
	}
}
