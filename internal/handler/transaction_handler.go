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

type TransactionHandler struct {
	paymentService service.PaymentService
}

func NewTransactionHandler(paymentService service.PaymentService) *TransactionHandler {
	return &TransactionHandler{paymentService: paymentService}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/api/transactions")
	{
		transactions.GET("", middleware.RequireAction(permission.ViewTransactions), h.ListTransactions)
		transactions.POST("", middleware.RequireAction(permission.RecordPayment), h.RecordPayment)
	}
}

// ListTransactions lists payment transactions
// @Summary      List transactions
// @Description  Retrieves payment transactions filtered by a paid-at date window (TODAY, LAST_7_DAYS, LAST_30_DAYS, ALL) and a free-text id match, in insertion order
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        window  query     string  false  "Date window (default ALL)"
// @Param        search  query     string  false  "Search by transaction or approval id"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      400     {object}  response.Response
// @Router       /api/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	transactions, total, err := h.paymentService.ListTransactions(c.Request.Context(), service.TransactionListFilter{
		Window: c.Query("window"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// RecordPayment records a payment against an approved request
// @Summary      Record payment
// @Description  Creates an immutable payment transaction for an APPROVED supply request; each approval can be paid at most once
// @Tags         transactions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecordPaymentDTO  true  "Record Payment Payload"
// @Success      201      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/transactions [post]
func (h *TransactionHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transaction, err := h.paymentService.RecordPayment(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, transaction))
}
