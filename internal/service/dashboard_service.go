package service

import (
	"context"
	"fmt"

	"pharmacy-backend/internal/model"
	"pharmacy-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// DashboardSummary is the read-only rollup over the item catalog, the
// request ledger and the transaction ledger. Empty ledgers yield zero
// counts and an empty category breakdown.
type DashboardSummary struct {
	ItemCount              int64                      `json:"itemCount"`
	RequestCount           int64                      `json:"requestCount"`
	PendingRequestCount    int64                      `json:"pendingRequestCount"`
	TransactionCount       int64                      `json:"transactionCount"`
	TotalTransactionAmount decimal.Decimal            `json:"totalTransactionAmount"`
	ItemCountByCategory    []repository.CategoryCount `json:"itemCountByCategory"`
}

type DashboardService interface {
	Summary(ctx context.Context) (DashboardSummary, error)
}

type dashboardService struct {
	itemRepo        repository.ItemRepository
	requestRepo     repository.RequestRepository
	transactionRepo repository.TransactionRepository
}

func NewDashboardService(
	itemRepo repository.ItemRepository,
	requestRepo repository.RequestRepository,
	transactionRepo repository.TransactionRepository,
) DashboardService {
	return &dashboardService{
		itemRepo:        itemRepo,
		requestRepo:     requestRepo,
		transactionRepo: transactionRepo,
	}
}

// Summary recomputes the rollup on every call; it never mutates state.
func (s *dashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	var summary DashboardSummary
	var err error

	if summary.ItemCount, err = s.itemRepo.Count(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to count items: %w", err)
	}
	if summary.RequestCount, err = s.requestRepo.Count(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to count requests: %w", err)
	}
	if summary.PendingRequestCount, err = s.requestRepo.CountByStatus(ctx, model.RequestStatusPending); err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to count pending requests: %w", err)
	}
	if summary.TransactionCount, err = s.transactionRepo.Count(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to count transactions: %w", err)
	}
	if summary.TotalTransactionAmount, err = s.transactionRepo.SumAmount(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to sum transaction amounts: %w", err)
	}
	if summary.ItemCountByCategory, err = s.itemRepo.CountByCategory(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to build category histogram: %w", err)
	}
	if summary.ItemCountByCategory == nil {
		summary.ItemCountByCategory = []repository.CategoryCount{}
	}

	return summary, nil
}
