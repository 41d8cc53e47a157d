package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProcurementHandler struct {
	procurementService service.ProcurementService
}

func NewProcurementHandler(procurementService service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{procurementService: procurementService}
}

func (h *ProcurementHandler) RegisterRoutes(router *gin.RouterGroup) {
	requisitions := router.Group("/api/requisitions", middleware.RequireActor())
	{
		requisitions.POST("", h.CreateRequisition)
		requisitions.GET("", h.ListRequisitions)
		requisitions.GET("/:id", h.GetRequisition)
		requisitions.PUT("/:id/submit", h.SubmitRequisition)
		requisitions.PUT("/:id/approve", h.ApproveRequisition)
		requisitions.PUT("/:id/reject", h.RejectRequisition)
		requisitions.PUT("/:id/cancel", h.CancelRequisition)
	}

	orders := router.Group("/api/purchase-orders", middleware.RequireActor())
	{
		orders.POST("", h.CreatePurchaseOrder)
		orders.GET("", h.ListPurchaseOrders)
		orders.GET("/:id", h.GetPurchaseOrder)
		orders.PUT("/:id/issue", h.IssuePurchaseOrder)
		orders.PUT("/:id/cancel", h.CancelPurchaseOrder)
	}

	receipts := router.Group("/api/goods-receipts", middleware.RequireActor())
	{
		receipts.POST("", h.CreateGoodsReceipt)
		receipts.GET("", h.ListGoodsReceipts)
		receipts.GET("/:id", h.GetGoodsReceipt)
		receipts.PUT("/:id/receive", h.MarkGoodsReceiptReceived)
	}

	invoices := router.Group("/api/vendor-invoices", middleware.RequireActor())
	{
		invoices.POST("", h.CreateVendorInvoice)
		invoices.GET("", h.ListVendorInvoices)
		invoices.PUT("/:id/reject", h.RejectVendorInvoice)
	}

	payments := router.Group("/api/payment-requests", middleware.RequireActor())
	{
		payments.POST("", h.CreatePaymentRequest)
		payments.GET("", h.ListPaymentRequests)
		payments.PUT("/:id/approve", h.ApprovePaymentRequest)
		payments.PUT("/:id/reject", h.RejectPaymentRequest)
	}
}

// CreateRequisition opens a draft requisition for a department
// @Summary      Create requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRequisitionRequest  true  "Create Requisition Payload"
// @Success      201      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      403      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/requisitions [post]
func (h *ProcurementHandler) CreateRequisition(c *gin.Context) {
	var req service.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.procurementService.CreateRequisition(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequisitions returns requisitions visible within the caller's scope
// @Summary      List requisitions
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  false  "Filter by location (global roles only)"
// @Param        status       query     string  false  "Filter by status"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/requisitions [get]
func (h *ProcurementHandler) ListRequisitions(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.procurementService.ListRequisitions(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// GetRequisition returns one requisition by id
// @Summary      Get requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/requisitions/{id} [get]
func (h *ProcurementHandler) GetRequisition(c *gin.Context) {
	result, err := h.procurementService.GetRequisition(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// SubmitRequisition moves a draft requisition to SUBMITTED
// @Summary      Submit requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Failure      422  {object}  response.Response
// @Router       /api/requisitions/{id}/submit [put]
func (h *ProcurementHandler) SubmitRequisition(c *gin.Context) {
	result, err := h.procurementService.SubmitRequisition(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveRequisition moves a submitted requisition to APPROVED
// @Summary      Approve requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Failure      422  {object}  response.Response
// @Router       /api/requisitions/{id}/approve [put]
func (h *ProcurementHandler) ApproveRequisition(c *gin.Context) {
	result, err := h.procurementService.ApproveRequisition(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectRequisition moves a submitted requisition to REJECTED
// @Summary      Reject requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Router       /api/requisitions/{id}/reject [put]
func (h *ProcurementHandler) RejectRequisition(c *gin.Context) {
	result, err := h.procurementService.RejectRequisition(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelRequisition cancels a draft requisition
// @Summary      Cancel requisition
// @Tags         requisitions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Router       /api/requisitions/{id}/cancel [put]
func (h *ProcurementHandler) CancelRequisition(c *gin.Context) {
	result, err := h.procurementService.CancelRequisition(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreatePurchaseOrder raises an LPO against an approved requisition
// @Summary      Create purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseOrderRequest  true  "Create Purchase Order Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/purchase-orders [post]
func (h *ProcurementHandler) CreatePurchaseOrder(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.procurementService.CreatePurchaseOrder(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListPurchaseOrders returns purchase orders within the caller's scope
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/purchase-orders [get]
func (h *ProcurementHandler) ListPurchaseOrders(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.procurementService.ListPurchaseOrders(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// GetPurchaseOrder returns one purchase order by id
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Router       /api/purchase-orders/{id} [get]
func (h *ProcurementHandler) GetPurchaseOrder(c *gin.Context) {
	result, err := h.procurementService.GetPurchaseOrder(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// IssuePurchaseOrder moves a draft order to ISSUED
// @Summary      Issue purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      422  {object}  response.Response
// @Router       /api/purchase-orders/{id}/issue [put]
func (h *ProcurementHandler) IssuePurchaseOrder(c *gin.Context) {
	result, err := h.procurementService.IssuePurchaseOrder(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelPurchaseOrder cancels an order that has no goods receipt yet
// @Summary      Cancel purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Router       /api/purchase-orders/{id}/cancel [put]
func (h *ProcurementHandler) CancelPurchaseOrder(c *gin.Context) {
	result, err := h.procurementService.CancelPurchaseOrder(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateGoodsReceipt records a pending delivery against an issued order
// @Summary      Create goods receipt
// @Tags         goods-receipts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateGoodsReceiptRequest  true  "Create Goods Receipt Payload"
// @Success      201      {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/goods-receipts [post]
func (h *ProcurementHandler) CreateGoodsReceipt(c *gin.Context) {
	var req service.CreateGoodsReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.procurementService.CreateGoodsReceipt(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListGoodsReceipts returns goods receipts within the caller's scope
// @Summary      List goods receipts
// @Tags         goods-receipts
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/goods-receipts [get]
func (h *ProcurementHandler) ListGoodsReceipts(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.procurementService.ListGoodsReceipts(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// GetGoodsReceipt returns one goods receipt by id
// @Summary      Get goods receipt
// @Tags         goods-receipts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Goods Receipt ID"
// @Success      200  {object}  response.Response{data=service.GoodsReceiptResponse}
// @Router       /api/goods-receipts/{id} [get]
func (h *ProcurementHandler) GetGoodsReceipt(c *gin.Context) {
	result, err := h.procurementService.GetGoodsReceipt(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// MarkGoodsReceiptReceived books stock and completes the purchase order
// @Summary      Receive goods receipt
// @Tags         goods-receipts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Goods Receipt ID"
// @Success      200  {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      422  {object}  response.Response
// @Router       /api/goods-receipts/{id}/receive [put]
func (h *ProcurementHandler) MarkGoodsReceiptReceived(c *gin.Context) {
	result, err := h.procurementService.MarkGoodsReceiptReceived(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateVendorInvoice bills a received goods receipt
// @Summary      Create vendor invoice
// @Tags         vendor-invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateVendorInvoiceRequest  true  "Create Vendor Invoice Payload"
// @Success      201      {object}  response.Response{data=service.VendorInvoiceResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/vendor-invoices [post]
func (h *ProcurementHandler) CreateVendorInvoice(c *gin.Context) {
	var req service.CreateVendorInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.procurementService.CreateVendorInvoice(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListVendorInvoices returns vendor invoices within the caller's scope
// @Summary      List vendor invoices
// @Tags         vendor-invoices
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/vendor-invoices [get]
func (h *ProcurementHandler) ListVendorInvoices(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.procurementService.ListVendorInvoices(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// RejectVendorInvoice moves a pending invoice to REJECTED
// @Summary      Reject vendor invoice
// @Tags         vendor-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vendor Invoice ID"
// @Success      200  {object}  response.Response{data=service.VendorInvoiceResponse}
// @Router       /api/vendor-invoices/{id}/reject [put]
func (h *ProcurementHandler) RejectVendorInvoice(c *gin.Context) {
	result, err := h.procurementService.RejectVendorInvoice(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreatePaymentRequest asks finance to settle an approved invoice
// @Summary      Create payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePaymentRequestRequest  true  "Create Payment Request Payload"
// @Success      201      {object}  response.Response{data=service.PaymentRequestResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/payment-requests [post]
func (h *ProcurementHandler) CreatePaymentRequest(c *gin.Context) {
	var req service.CreatePaymentRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.procurementService.CreatePaymentRequest(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListPaymentRequests returns payment requests within the caller's scope
// @Summary      List payment requests
// @Tags         payment-requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/payment-requests [get]
func (h *ProcurementHandler) ListPaymentRequests(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.procurementService.ListPaymentRequests(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// ApprovePaymentRequest moves a pending payment request to APPROVED
// @Summary      Approve payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment Request ID"
// @Success      200  {object}  response.Response{data=service.PaymentRequestResponse}
// @Router       /api/payment-requests/{id}/approve [put]
func (h *ProcurementHandler) ApprovePaymentRequest(c *gin.Context) {
	result, err := h.procurementService.ApprovePaymentRequest(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectPaymentRequest moves a pending payment request to REJECTED
// @Summary      Reject payment request
// @Tags         payment-requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment Request ID"
// @Success      200  {object}  response.Response{data=service.PaymentRequestResponse}
// @Router       /api/payment-requests/{id}/reject [put]
func (h *ProcurementHandler) RejectPaymentRequest(c *gin.Context) {
	result, err := h.procurementService.RejectPaymentRequest(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
