package service

import (
	"context"
	"errors"
	"fmt"

	"pharmacy-backend/internal/model"
	"pharmacy-backend/internal/repository"
	ws "pharmacy-backend/internal/websocket"
	"pharmacy-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold is the quantity at or below which a low-stock event is
// broadcast after an approval deducts from an item.
const LowStockThreshold = 10

// --- DTOs ---

type CreateItemRequest struct {
	ItemName  string          `json:"itemName" binding:"required"`
	Category  string          `json:"category" binding:"required"`
	Quantity  int             `json:"quantity" binding:"gte=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
}

// UpdateItemRequest carries a partial update; omitted fields keep their value.
type UpdateItemRequest struct {
	ItemName  *string          `json:"itemName"`
	Category  *string          `json:"category"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

type ItemResponse struct {
	ID        string          `json:"id"`
	ItemName  string          `json:"itemName"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// --- Interface ---

type InventoryService interface {
	ListItems(ctx context.Context, page, limit int, search string) ([]ItemResponse, int64, error)
	CreateItem(ctx context.Context, actorID string, req CreateItemRequest) (ItemResponse, error)
	UpdateItem(ctx context.Context, actorID string, id string, req UpdateItemRequest) (ItemResponse, error)
	DeleteItem(ctx context.Context, actorID string, id string) error
}

type inventoryService struct {
	itemRepo  repository.ItemRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewInventoryService(
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) InventoryService {
	return &inventoryService{
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

// --- Implementation ---

func (s *inventoryService) ListItems(ctx context.Context, page, limit int, search string) ([]ItemResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	items, total, err := s.itemRepo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}

	res := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, toItemResponse(item))
	}

	return res, total, nil
}

func (s *inventoryService) CreateItem(ctx context.Context, actorID string, req CreateItemRequest) (ItemResponse, error) {
	if req.Quantity < 0 {
		return ItemResponse{}, apperror.New(apperror.KindValidation, "quantity must not be negative")
	}
	if !req.UnitPrice.IsPositive() {
		return ItemResponse{}, apperror.New(apperror.KindValidation, "unit price must be greater than zero")
	}

	item := model.Item{
		ItemName:  req.ItemName,
		Category:  req.Category,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Create(txCtx, &item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}

		audit := auditEntry(actorID, model.ActionCreateItem, item.ID.String(), item.ItemName, req)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ItemResponse{}, err
	}

	return toItemResponse(item), nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, actorID string, id string, req UpdateItemRequest) (ItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return ItemResponse{}, apperror.Wrap(apperror.KindValidation, "invalid item id", err)
	}

	var item *model.Item
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		item, findErr = s.itemRepo.FindByIDForUpdate(txCtx, itemID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "item not found")
			}
			return fmt.Errorf("failed to load item: %w", findErr)
		}

		if req.ItemName != nil {
			if *req.ItemName == "" {
				return apperror.New(apperror.KindValidation, "item name must not be empty")
			}
			item.ItemName = *req.ItemName
		}
		if req.Category != nil {
			if *req.Category == "" {
				return apperror.New(apperror.KindValidation, "category must not be empty")
			}
			item.Category = *req.Category
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return apperror.New(apperror.KindValidation, "quantity must not be negative")
			}
			item.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			if !req.UnitPrice.IsPositive() {
				return apperror.New(apperror.KindValidation, "unit price must be greater than zero")
			}
			item.UnitPrice = *req.UnitPrice
		}

		if err := s.itemRepo.Update(txCtx, item); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		audit := auditEntry(actorID, model.ActionUpdateItem, item.ID.String(), item.ItemName, req)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ItemResponse{}, err
	}

	return toItemResponse(*item), nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, actorID string, id string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, "invalid item id", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, findErr := s.itemRepo.FindByID(txCtx, itemID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "item not found")
			}
			return fmt.Errorf("failed to load item: %w", findErr)
		}

		if err := s.itemRepo.Delete(txCtx, itemID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}

		audit := auditEntry(actorID, model.ActionDeleteItem, item.ID.String(), item.ItemName, nil)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

// --- Helpers ---

func toItemResponse(item model.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID.String(),
		ItemName:  item.ItemName,
		Category:  item.Category,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
}
