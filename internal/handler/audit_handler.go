package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/audit", middleware.RequireActor())
	{
		audit.GET("/records", h.ListAuditRecords)
		audit.GET("/traces/:id", h.GetTraceChain)
	}
}

// ListAuditRecords returns audit rows within the caller's scope
// @Summary      List audit records
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        location_id  query     string  false  "Location filter (global roles only)"
// @Param        entity_type  query     string  false  "Entity type filter"
// @Param        action       query     string  false  "Action filter"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/audit/records [get]
func (h *AuditHandler) ListAuditRecords(c *gin.Context) {
	params := pagination.Parse(c)
	query := service.AuditQuery{
		LocationID: c.Query("location_id"),
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
		Page:       params.Page,
		Limit:      params.Limit,
	}
	items, total, err := h.auditService.ListAuditRecords(c.Request.Context(), middleware.ActorFromContext(c), query)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": items, "pagination": params.Meta(total)}))
}

// GetTraceChain returns every record of one reference chain in write order
// @Summary      Get trace chain
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Trace ID"
// @Success      200  {object}  response.Response{data=service.TraceChainResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/audit/traces/{id} [get]
func (h *AuditHandler) GetTraceChain(c *gin.Context) {
	result, err := h.auditService.GetTraceChain(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
