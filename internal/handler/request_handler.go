package handler

import (
	"net/http"

	"pharmacy-backend/internal/middleware"
	"pharmacy-backend/internal/permission"
	"pharmacy-backend/internal/service"
	"pharmacy-backend/pkg/apperror"
	"pharmacy-backend/pkg/pagination"
	"pharmacy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/request")
	{
		requests.GET("", middleware.RequireAction(permission.ViewRequests), h.ListRequests)
		requests.POST("", middleware.RequireAction(permission.CreateRequest), h.CreateRequest)
		requests.PUT("/:id/approve", middleware.RequireAction(permission.ApproveRequest), h.ApproveRequest)
		requests.PUT("/:id/reject", middleware.RequireAction(permission.ApproveRequest), h.RejectRequest)
	}
}

// ListRequests lists supply requests
// @Summary      List supply requests
// @Description  Retrieves supply requests filtered by status and a free-text match on the requested item name, in insertion order
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Status filter: PENDING, APPROVED or REJECTED"
// @Param        search  query     string  false  "Search by item name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/request [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)

	requests, total, err := h.requestService.ListRequests(c.Request.Context(), service.RequestListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// CreateRequest creates a new supply request in PENDING state
// @Summary      Create supply request
// @Description  Creates a supply request against an existing inventory item; the caller becomes the requesting manager
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRequestDTO  true  "Create Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/request [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// ApproveRequest approves a pending supply request
// @Summary      Approve supply request
// @Description  Transitions a PENDING request to APPROVED and deducts the requested quantity from the item's stock atomically
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/request/{id}/approve [put]
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	request, err := h.requestService.ApproveRequest(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// RejectRequest rejects a pending supply request
// @Summary      Reject supply request
// @Description  Transitions a PENDING request to REJECTED with an optional reason; stock is untouched
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true   "Request ID"
// @Param        payload  body      service.RejectRequestDTO  false  "Rejection Reason"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/request/{id}/reject [put]
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	var req service.RejectRequestDTO
	_ = c.ShouldBindJSON(&req) // body is optional

	request, err := h.requestService.RejectRequest(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID), req.Reason)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}
