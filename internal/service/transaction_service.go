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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Date window values accepted by the transaction listing.
const (
	WindowToday      = "TODAY"
	WindowLast7Days  = "LAST_7_DAYS"
	WindowLast30Days = "LAST_30_DAYS"
	WindowAll        = "ALL"
)

// --- DTOs ---

type RecordPaymentDTO struct {
	ApprovalID string          `json:"approvalId" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

type TransactionListFilter struct {
	Window string
	Search string
	Page   int
	Limit  int
}

type TransactionResponse struct {
	ID         string          `json:"id"`
	ApprovalID string          `json:"approvalId"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     string          `json:"paidAt"`
	RecordedBy string          `json:"recorded_by,omitempty"`
}

// --- Interface ---

// PaymentService owns the transaction ledger. A payment may only be
// recorded once against a request in APPROVED state; transactions are
// immutable after creation.
type PaymentService interface {
	RecordPayment(ctx context.Context, recordedBy string, req RecordPaymentDTO) (TransactionResponse, error)
	ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error)
}

type paymentService struct {
	transactionRepo repository.TransactionRepository
	requestRepo     repository.RequestRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	hub             *ws.Hub
	now             func() time.Time
}

func NewPaymentService(
	transactionRepo repository.TransactionRepository,
	requestRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) PaymentService {
	return &paymentService{
		transactionRepo: transactionRepo,
		requestRepo:     requestRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		hub:             hub,
		now:             time.Now,
	}
}

// --- Implementation ---

func (s *paymentService) RecordPayment(ctx context.Context, recordedBy string, req RecordPaymentDTO) (TransactionResponse, error) {
	approvalID, err := uuid.Parse(req.ApprovalID)
	if err != nil {
		return TransactionResponse{}, apperror.Wrap(apperror.KindValidation, "invalid approval id", err)
	}

	if !req.Amount.IsPositive() {
		return TransactionResponse{}, apperror.New(apperror.KindValidation, "amount must be greater than zero")
	}

	var recorder *uuid.UUID
	if parsed, parseErr := uuid.Parse(recordedBy); parseErr == nil {
		recorder = &parsed
	}

	transaction := model.PaymentTransaction{
		ApprovalID: approvalID,
		Amount:     req.Amount,
		PaidAt:     s.now(),
		RecordedBy: recorder,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Lock the request row so the approval check and the uniqueness
		// check cannot race with a concurrent payment on the same id.
		request, findErr := s.requestRepo.FindByIDForUpdate(txCtx, approvalID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "approval not found")
			}
			return fmt.Errorf("failed to load request: %w", findErr)
		}

		if request.Status != model.RequestStatusApproved {
			return apperror.Newf(apperror.KindValidation, "request is %s, only approved requests can be paid", request.Status)
		}

		exists, existsErr := s.transactionRepo.ExistsByApprovalID(txCtx, approvalID)
		if existsErr != nil {
			return fmt.Errorf("failed to check for existing payment: %w", existsErr)
		}
		if exists {
			return apperror.New(apperror.KindValidation, "approval has already been paid")
		}

		if createErr := s.transactionRepo.Create(txCtx, &transaction); createErr != nil {
			return fmt.Errorf("failed to record payment: %w", createErr)
		}

		audit := auditEntry(recordedBy, model.ActionRecordPayment, transaction.ID.String(), "", map[string]any{
			"approval_id": approvalID.String(),
			"amount":      req.Amount.StringFixed(2),
		})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	res := toTransactionResponse(transaction)
	s.hub.Publish(ws.EventPaymentRecorded, res)
	return res, nil
}

func (s *paymentService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	cutoff, err := s.windowCutoff(filter.Window)
	if err != nil {
		return nil, 0, err
	}

	transactions, total, err := s.transactionRepo.List(ctx, repository.TransactionFilter{
		PaidAfter: cutoff,
		Search:    filter.Search,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	res := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		res = append(res, toTransactionResponse(tx))
	}

	return res, total, nil
}

// windowCutoff maps a date window name to the earliest paid_at it includes.
// A zero time means no lower bound.
func (s *paymentService) windowCutoff(window string) (time.Time, error) {
	now := s.now()
	switch window {
	case WindowToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), nil
	case WindowLast7Days:
		return now.AddDate(0, 0, -7), nil
	case WindowLast30Days:
		return now.AddDate(0, 0, -30), nil
	case WindowAll, "":
		return time.Time{}, nil
	default:
		return time.Time{}, apperror.Newf(apperror.KindValidation, "unknown date window %q", window)
	}
}

// --- Helpers ---

func toTransactionResponse(tx model.PaymentTransaction) TransactionResponse {
	res := TransactionResponse{
		ID:         tx.ID.String(),
		ApprovalID: tx.ApprovalID.String(),
		Amount:     tx.Amount,
		PaidAt:     tx.PaidAt.Format(time.RFC3339),
	}
	if tx.RecordedBy != nil {
		res.RecordedBy = tx.RecordedBy.String()
	}
	return res
}
