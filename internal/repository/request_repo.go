package repository

import (
	"context"

	"pharmacy-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows a supply request listing. Search matches the
// resolved item name case-insensitively.
type RequestFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.SupplyRequest) error
	Update(ctx context.Context, req *model.SupplyRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.SupplyRequest, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.SupplyRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) Update(ctx context.Context, req *model.SupplyRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate locks the request row so only one of two concurrent
// status transitions can observe PENDING.
func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	var req model.SupplyRequest
	if err := GetDB(ctx, r.db).Preload("Item").Preload("Manager").Preload("Approver").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.SupplyRequest, int64, error) {
	var requests []model.SupplyRequest
	var total int64

	db := GetDB(ctx, r.db)

	build := func() *gorm.DB {
		query := db.Model(&model.SupplyRequest{})
		if filter.Status != "" {
			query = query.Where("supply_requests.status = ?", filter.Status)
		}
		if filter.Search != "" {
			query = query.Joins("JOIN items ON items.id = supply_requests.item_id").
				Where("items.item_name ILIKE ?", "%"+filter.Search+"%")
		}
		return query
	}

	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := build().
		Preload("Item").Preload("Manager").Preload("Approver").
		Order("supply_requests.created_at asc").
		Offset(offset).Limit(filter.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.SupplyRequest{}).Count(&total).Error
	return total, err
}

func (r *requestRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.SupplyRequest{}).Where("status = ?", status).Count(&total).Error
	return total, err
}
