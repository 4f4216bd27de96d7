package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmacy-backend/internal/model"
	"pharmacy-backend/internal/repository"
	ws "pharmacy-backend/internal/websocket"
	"pharmacy-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestDTO struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

type RequestListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type RequestResponse struct {
	ID              string  `json:"id"`
	ManagerID       string  `json:"managerId"`
	ManagerName     string  `json:"manager_name,omitempty"`
	ItemID          string  `json:"itemId"`
	ItemName        string  `json:"item_name,omitempty"`
	Quantity        int     `json:"quantity"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApproverName    string  `json:"approver_name,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

// RequestService owns the supply request lifecycle. A request starts
// PENDING and transitions exactly once, to APPROVED or REJECTED; approval
// atomically deducts the requested quantity from the item's stock.
type RequestService interface {
	CreateRequest(ctx context.Context, managerID string, req CreateRequestDTO) (RequestResponse, error)
	ApproveRequest(ctx context.Context, id string, approverID string) (RequestResponse, error)
	RejectRequest(ctx context.Context, id string, approverID string, reason string) (RequestResponse, error)
	ListRequests(ctx context.Context, filter RequestListFilter) ([]RequestResponse, int64, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	itemRepo    repository.ItemRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		itemRepo:    itemRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *requestService) CreateRequest(ctx context.Context, managerID string, req CreateRequestDTO) (RequestResponse, error) {
	manager, err := uuid.Parse(managerID)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.KindValidation, "invalid manager id", err)
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.KindValidation, "invalid item id", err)
	}

	if req.Quantity <= 0 {
		return RequestResponse{}, apperror.New(apperror.KindValidation, "quantity must be greater than zero")
	}

	request := model.SupplyRequest{
		ManagerID: manager,
		ItemID:    itemID,
		Quantity:  req.Quantity,
		Status:    model.RequestStatusPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, findErr := s.itemRepo.FindByID(txCtx, itemID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "item not found")
			}
			return fmt.Errorf("failed to load item: %w", findErr)
		}

		if req.Quantity > item.Quantity {
			return apperror.Newf(apperror.KindValidation,
				"requested quantity %d exceeds current stock %d for %s",
				req.Quantity, item.Quantity, item.ItemName)
		}

		if createErr := s.requestRepo.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}

		audit := auditEntry(managerID, model.ActionCreateRequest, request.ID.String(), item.ItemName, req)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	res, err := s.reload(ctx, request.ID)
	if err != nil {
		return RequestResponse{}, err
	}

	s.hub.Publish(ws.EventRequestCreated, res)
	return res, nil
}

func (s *requestService) ApproveRequest(ctx context.Context, id string, approverID string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.KindValidation, "invalid request id", err)
	}

	approver, err := uuid.Parse(approverID)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.KindValidation, "invalid approver id", err)
	}

	var lowStock *model.Item
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "request not found")
			}
			return fmt.Errorf("failed to load request: %w", findErr)
		}

		if request.Status != model.RequestStatusPending {
			return apperror.Newf(apperror.KindInvalidTransition, "request is already %s", request.Status)
		}

		// Lock the item row so the stock check and deduction are atomic
		// with the status flip.
		item, itemErr := s.itemRepo.FindByIDForUpdate(txCtx, request.ItemID)
		if itemErr != nil {
			if errors.Is(itemErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "referenced item no longer exists")
			}
			return fmt.Errorf("failed to load item: %w", itemErr)
		}

		if item.Quantity < request.Quantity {
			return apperror.Newf(apperror.KindValidation,
				"insufficient stock for %s (current: %d, requested: %d)",
				item.ItemName, item.Quantity, request.Quantity)
		}

		remaining := item.Quantity - request.Quantity
		if updateErr := s.itemRepo.UpdateQuantity(txCtx, item.ID, remaining); updateErr != nil {
			return fmt.Errorf("failed to deduct stock: %w", updateErr)
		}
		if remaining <= LowStockThreshold {
			item.Quantity = remaining
			lowStock = item
		}

		now := time.Now()
		request.Status = model.RequestStatusApproved
		request.ApprovedBy = &approver
		request.ApprovedAt = &now

		if saveErr := s.requestRepo.Update(txCtx, request); saveErr != nil {
			return fmt.Errorf("failed to update request: %w", saveErr)
		}

		audit := auditEntry(approverID, model.ActionApproveRequest, request.ID.String(), item.ItemName, map[string]any{
			"item_id":  request.ItemID.String(),
			"quantity": request.Quantity,
		})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	res, err := s.reload(ctx, requestID)
	if err != nil {
		return RequestResponse{}, err
	}

	s.hub.Publish(ws.EventRequestApproved, res)
	if lowStock != nil {
		s.hub.Publish(ws.EventLowStock, toItemResponse(*lowStock))
	}
	return res, nil
}

func (s *requestService) RejectRequest(ctx context.Context, id string, approverID string, reason string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.KindValidation, "invalid request id", err)
	}

	approver, err := uuid.Parse(approverID)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.KindValidation, "invalid approver id", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "request not found")
			}
			return fmt.Errorf("failed to load request: %w", findErr)
		}

		if request.Status != model.RequestStatusPending {
			return apperror.Newf(apperror.KindInvalidTransition, "request is already %s", request.Status)
		}

		now := time.Now()
		request.Status = model.RequestStatusRejected
		request.ApprovedBy = &approver
		request.ApprovedAt = &now
		request.RejectionReason = reason

		if saveErr := s.requestRepo.Update(txCtx, request); saveErr != nil {
			return fmt.Errorf("failed to update request: %w", saveErr)
		}

		audit := auditEntry(approverID, model.ActionRejectRequest, request.ID.String(), "", map[string]any{
			"item_id": request.ItemID.String(),
			"reason":  reason,
		})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	res, err := s.reload(ctx, requestID)
	if err != nil {
		return RequestResponse{}, err
	}

	s.hub.Publish(ws.EventRequestRejected, res)
	return res, nil
}

func (s *requestService) ListRequests(ctx context.Context, filter RequestListFilter) ([]RequestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	requests, total, err := s.requestRepo.List(ctx, repository.RequestFilter{
		Status: filter.Status,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	res := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		res = append(res, toRequestResponse(r))
	}

	return res, total, nil
}

// --- Helpers ---

func (s *requestService) reload(ctx context.Context, id uuid.UUID) (RequestResponse, error) {
	request, err := s.requestRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("failed to reload request: %w", err)
	}
	return toRequestResponse(*request), nil
}

func toRequestResponse(r model.SupplyRequest) RequestResponse {
	res := RequestResponse{
		ID:              r.ID.String(),
		ManagerID:       r.ManagerID.String(),
		ItemID:          r.ItemID.String(),
		Quantity:        r.Quantity,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}

	if r.Manager != nil {
		res.ManagerName = r.Manager.Username
	}
	if r.Item != nil {
		res.ItemName = r.Item.ItemName
	}
	if r.ApprovedBy != nil {
		v := r.ApprovedBy.String()
		res.ApprovedBy = &v
	}
	if r.Approver != nil {
		res.ApproverName = r.Approver.Username
	}
	if r.ApprovedAt != nil {
		v := r.ApprovedAt.Format(time.RFC3339)
		res.ApprovedAt = &v
	}

	return res
}
