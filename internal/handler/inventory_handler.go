package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/api/items", middleware.RequireActor())
	{
		items.POST("", h.CreateItem)
		items.GET("", h.ListItems)
	}

	stock := router.Group("/api/stock", middleware.RequireActor())
	{
		stock.GET("/balance", h.ComputeBalance)
		stock.GET("/movements", h.ListMovements)
		stock.GET("/departments", h.GetDepartmentStock)
		stock.GET("/valuation", h.GetStockValuation)
		stock.POST("/opening-balance", h.RecordOpeningBalance)
		stock.POST("/transfers", h.TransferStock)
		stock.POST("/issues", h.IssueToDepartment)
		stock.POST("/adjustments", h.AdjustStock)
	}
}

// CreateItem adds a stockable catalogue entry
// @Summary      Create item
// @Tags         items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateItemRequest  true  "Create Item Payload"
// @Success      201      {object}  response.Response{data=service.ItemResponse}
// @Router       /api/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.inventoryService.CreateItem(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListItems returns the item catalogue
// @Summary      List items
// @Tags         items
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.inventoryService.ListItems(c.Request.Context(), middleware.ActorFromContext(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// ComputeBalance derives the on-hand balance for a (location, item) pair
// @Summary      Stock balance
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  true  "Location ID"
// @Param        item_id      query     string  true  "Item ID"
// @Success      200          {object}  response.Response{data=service.StockBalanceResponse}
// @Router       /api/stock/balance [get]
func (h *InventoryHandler) ComputeBalance(c *gin.Context) {
	result, err := h.inventoryService.ComputeBalance(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("item_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListMovements returns movement history for a location
// @Summary      List stock movements
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  true  "Location ID"
// @Success      200          {object}  response.Response{data=[]service.StockMovementResponse}
// @Router       /api/stock/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	result, err := h.inventoryService.ListMovements(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetDepartmentStock totals what a department has been issued
// @Summary      Department stock
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        location_id    query     string  true  "Location ID"
// @Param        department_id  query     string  true  "Department ID"
// @Success      200            {object}  response.Response{data=[]service.DepartmentStockLine}
// @Router       /api/stock/departments [get]
func (h *InventoryHandler) GetDepartmentStock(c *gin.Context) {
	result, err := h.inventoryService.GetDepartmentStock(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"), c.Query("department_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetStockValuation prices location stock at last movement cost
// @Summary      Stock valuation
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  true  "Location ID"
// @Success      200          {object}  response.Response{data=service.ValuationResponse}
// @Router       /api/stock/valuation [get]
func (h *InventoryHandler) GetStockValuation(c *gin.Context) {
	result, err := h.inventoryService.GetStockValuation(c.Request.Context(), middleware.ActorFromContext(c), c.Query("location_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RecordOpeningBalance seeds stock for an item at a location
// @Summary      Record opening balance
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.OpeningBalanceRequest  true  "Opening Balance Payload"
// @Success      201      {object}  response.Response{data=service.StockMovementResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/stock/opening-balance [post]
func (h *InventoryHandler) RecordOpeningBalance(c *gin.Context) {
	var req service.OpeningBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.inventoryService.RecordOpeningBalance(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// TransferStock moves stock between locations as a paired out/in
// @Summary      Transfer stock
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TransferStockRequest  true  "Transfer Payload"
// @Success      201      {object}  response.Response{data=service.TransferResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/stock/transfers [post]
func (h *InventoryHandler) TransferStock(c *gin.Context) {
	var req service.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.inventoryService.TransferStock(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// IssueToDepartment books consumption by a department
// @Summary      Issue stock to department
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.IssueStockRequest  true  "Issue Payload"
// @Success      201      {object}  response.Response{data=service.StockMovementResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/stock/issues [post]
func (h *InventoryHandler) IssueToDepartment(c *gin.Context) {
	var req service.IssueStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.inventoryService.IssueToDepartment(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// AdjustStock applies a signed correction that may not go negative
// @Summary      Adjust stock
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AdjustStockRequest  true  "Adjustment Payload"
// @Success      201      {object}  response.Response{data=service.StockMovementResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/stock/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	result, err := h.inventoryService.AdjustStock(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
