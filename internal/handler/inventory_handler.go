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

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/api/inventory")
	{
		inventory.GET("", middleware.RequireAction(permission.ViewInventory), h.ListItems)
		inventory.POST("", middleware.RequireAction(permission.EditInventory), h.CreateItem)
		inventory.PUT("/:id", middleware.RequireAction(permission.EditInventory), h.UpdateItem)
		inventory.DELETE("/:id", middleware.RequireAction(permission.EditInventory), h.DeleteItem)
	}
}

// ListItems handles retrieving paginated inventory items
// @Summary      List inventory items
// @Description  Retrieves a paginated list of inventory items, optionally filtered by a case-insensitive substring match on name or category
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Search by item name or category"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/inventory [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	items, total, err := h.inventoryService.ListItems(c.Request.Context(), params.Page, params.Limit, search)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// CreateItem creates a new inventory item
// @Summary      Create item
// @Description  Creates a new item in the inventory catalog
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateItemRequest  true  "Create Item Payload"
// @Success      201      {object}  response.Response{data=service.ItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/inventory [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateItem updates an existing item's fields
// @Summary      Update item
// @Description  Applies a partial update to an existing item by ID; omitted fields keep their value
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Item ID"
// @Param        payload  body      service.UpdateItemRequest  true  "Update Item Payload"
// @Success      200      {object}  response.Response{data=service.ItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), c.GetString(middleware.ContextUserID), id, req)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteItem removes an item
// @Summary      Delete item
// @Description  Soft deletes an item by ID
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id := c.Param("id")

	if err := h.inventoryService.DeleteItem(c.Request.Context(), c.GetString(middleware.ContextUserID), id); err != nil {
		c.JSON(apperror.HTTPStatus(err), response.Error(apperror.HTTPStatus(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}
