package repository

import (
	"context"
	"time"

	"pharmacy-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionFilter narrows a payment listing. A zero PaidAfter means no
// date window; Search matches transaction or approval ids.
type TransactionFilter struct {
	PaidAfter time.Time
	Search    string
	Page      int
	Limit     int
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.PaymentTransaction) error
	ExistsByApprovalID(ctx context.Context, approvalID uuid.UUID) (bool, error)
	List(ctx context.Context, filter TransactionFilter) ([]model.PaymentTransaction, int64, error)
	Count(ctx context.Context) (int64, error)
	SumAmount(ctx context.Context) (decimal.Decimal, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.PaymentTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepository) ExistsByApprovalID(ctx context.Context, approvalID uuid.UUID) (bool, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.PaymentTransaction{}).
		Where("approval_id = ?", approvalID).Count(&total).Error
	return total > 0, err
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]model.PaymentTransaction, int64, error) {
	var transactions []model.PaymentTransaction
	var total int64

	build := func() *gorm.DB {
		query := GetDB(ctx, r.db).Model(&model.PaymentTransaction{})
		if !filter.PaidAfter.IsZero() {
			query = query.Where("paid_at >= ?", filter.PaidAfter)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			query = query.Where("id::text ILIKE ? OR approval_id::text ILIKE ?", like, like)
		}
		return query
	}

	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := build().Order("created_at asc").Offset(offset).Limit(filter.Limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (r *transactionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.PaymentTransaction{}).Count(&total).Error
	return total, err
}

func (r *transactionRepository) SumAmount(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.PaymentTransaction{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&row).Error
	return row.Total, err
}
