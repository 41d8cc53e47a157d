package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type FinanceHandler struct {
	financeService service.FinanceService
}

func NewFinanceHandler(financeService service.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

func (h *FinanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	ledger := router.Group("/api/ledger", middleware.RequireActor())
	{
		ledger.POST("/entries", h.PostDoubleEntry)
		ledger.GET("/references/:type/:id", h.GetLedgerByReference)
		ledger.POST("/reversals", h.ReversePostedReference)
	}

	invoices := router.Group("/api/vendor-invoices", middleware.RequireActor())
	{
		invoices.PUT("/:id/approve", h.ApproveInvoice)
		invoices.PUT("/:id/pay", h.PayInvoice)
	}

	expenses := router.Group("/api/expenses", middleware.RequireActor())
	{
		expenses.POST("", h.CreateExpense)
		expenses.GET("", h.ListExpenses)
		expenses.PUT("/:id/pay", h.PayExpense)
	}

	sales := router.Group("/api/sales", middleware.RequireActor())
	{
		sales.POST("", h.RecordSale)
		sales.POST("/post-revenue", h.PostRevenueFromSales)
	}

	reports := router.Group("/api/reports", middleware.RequireActor())
	{
		reports.GET("/profit-and-loss", h.GetProfitAndLoss)
		reports.GET("/cash-flow", h.GetCashFlowReport)
		reports.GET("/expenditure-vs-income", h.GetExpenditureVsIncome)
	}
}

// PostDoubleEntry writes a balanced posting under a reference pair
// @Summary      Post ledger entries
// @Tags         ledger
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PostEntryRequest  true  "Posting Payload"
// @Success      201      {object}  response.Response{data=service.PostingResponse}
// @Failure      422      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/ledger/entries [post]
func (h *FinanceHandler) PostDoubleEntry(c *gin.Context) {
	var req service.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.financeService.PostDoubleEntry(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// GetLedgerByReference returns the posting stored under a reference pair
// @Summary      Get posting by reference
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        type  path      string  true  "Reference Type"
// @Param        id    path      string  true  "Reference ID"
// @Success      200   {object}  response.Response{data=[]service.LedgerEntryResponse}
// @Router       /api/ledger/references/{type}/{id} [get]
func (h *FinanceHandler) GetLedgerByReference(c *gin.Context) {
	result, err := h.financeService.GetLedgerByReference(c.Request.Context(), middleware.ActorFromContext(c), c.Param("type"), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ReversePostedReference posts the mirror image of an existing posting
// @Summary      Reverse posting
// @Tags         ledger
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ReversePostingRequest  true  "Reversal Payload"
// @Success      201      {object}  response.Response{data=service.PostingResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/ledger/reversals [post]
func (h *FinanceHandler) ReversePostedReference(c *gin.Context) {
	var req service.ReversePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.financeService.ReversePostedReference(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ApproveInvoice runs the 3-way match and accrues the payable
// @Summary      Approve vendor invoice
// @Tags         vendor-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vendor Invoice ID"
// @Success      200  {object}  response.Response{data=service.PostingResponse}
// @Failure      422  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /api/vendor-invoices/{id}/approve [put]
func (h *FinanceHandler) ApproveInvoice(c *gin.Context) {
	result, err := h.financeService.ApproveInvoice(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// PayInvoice settles an approved invoice against a cash account
// @Summary      Pay vendor invoice
// @Tags         vendor-invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Vendor Invoice ID"
// @Param        payload  body      service.PayInvoiceRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.PostingResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/vendor-invoices/{id}/pay [put]
func (h *FinanceHandler) PayInvoice(c *gin.Context) {
	var req service.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.financeService.PayInvoice(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateExpense records an unpaid expense and accrues it
// @Summary      Create expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateExpenseRequest  true  "Create Expense Payload"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/expenses [post]
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.financeService.CreateExpense(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListExpenses returns expenses within the caller's scope
// @Summary      List expenses
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/expenses [get]
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.financeService.ListExpenses(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// PayExpense settles an unpaid expense exactly once
// @Summary      Pay expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Expense ID"
// @Param        payload  body      service.PayExpenseRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/expenses/{id}/pay [put]
func (h *FinanceHandler) PayExpense(c *gin.Context) {
	var req service.PayExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.financeService.PayExpense(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RecordSale stores a sales total for later revenue posting
// @Summary      Record sale
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecordSaleRequest  true  "Record Sale Payload"
// @Success      201      {object}  response.Response{data=service.SaleResponse}
// @Router       /api/sales [post]
func (h *FinanceHandler) RecordSale(c *gin.Context) {
	var req service.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.financeService.RecordSale(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// PostRevenueFromSales aggregates a sales window into one revenue posting
// @Summary      Post revenue from sales
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PostRevenueRequest  true  "Post Revenue Payload"
// @Success      201      {object}  response.Response{data=service.PostingResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/sales/post-revenue [post]
func (h *FinanceHandler) PostRevenueFromSales(c *gin.Context) {
	var req service.PostRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.financeService.PostRevenueFromSales(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// GetProfitAndLoss computes revenue, COGS and opex over a window
// @Summary      Profit and loss report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  false  "Location filter (global roles only)"
// @Param        start_date   query     string  true   "Window start (YYYY-MM-DD)"
// @Param        end_date     query     string  true   "Window end (YYYY-MM-DD)"
// @Success      200          {object}  response.Response{data=service.ProfitAndLossResponse}
// @Router       /api/reports/profit-and-loss [get]
func (h *FinanceHandler) GetProfitAndLoss(c *gin.Context) {
	var query service.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query: "+err.Error()))
		return
	}
	result, err := h.financeService.GetProfitAndLoss(c.Request.Context(), middleware.ActorFromContext(c), query)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetCashFlowReport reports inflow and outflow per cash account
// @Summary      Cash flow report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  false  "Location filter (global roles only)"
// @Param        start_date   query     string  true   "Window start (YYYY-MM-DD)"
// @Param        end_date     query     string  true   "Window end (YYYY-MM-DD)"
// @Success      200          {object}  response.Response{data=service.CashFlowResponse}
// @Router       /api/reports/cash-flow [get]
func (h *FinanceHandler) GetCashFlowReport(c *gin.Context) {
	var query service.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query: "+err.Error()))
		return
	}
	result, err := h.financeService.GetCashFlowReport(c.Request.Context(), middleware.ActorFromContext(c), query)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetExpenditureVsIncome compares total spend to total income
// @Summary      Expenditure vs income report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  false  "Location filter (global roles only)"
// @Param        start_date   query     string  true   "Window start (YYYY-MM-DD)"
// @Param        end_date     query     string  true   "Window end (YYYY-MM-DD)"
// @Success      200          {object}  response.Response{data=service.ExpenditureVsIncomeResponse}
// @Router       /api/reports/expenditure-vs-income [get]
func (h *FinanceHandler) GetExpenditureVsIncome(c *gin.Context) {
	var query service.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query: "+err.Error()))
		return
	}
	result, err := h.financeService.GetExpenditureVsIncome(c.Request.Context(), middleware.ActorFromContext(c), query)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
