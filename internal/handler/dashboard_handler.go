package handler

import (
	"net/http"

	"pharmacy-backend/internal/middleware"
	"pharmacy-backend/internal/permission"
	"pharmacy-backend/internal/service"
	"pharmacy-backend/pkg/apperror"
	"pharmacy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/api/dashboard")
	{
		dashboard.GET("/summary", middleware.RequireAction(permission.ViewDashboard), h.GetSummary)
	}
}

// GetSummary returns the dashboard rollup
// @Summary      Get dashboard summary
// @Description  Computes counts and totals over the item catalog, request ledger and transaction ledger, plus a per-category item histogram
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardSummary}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
