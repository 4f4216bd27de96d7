package service

import (
	"context"
	"strings"
	"time"

	"pharmacy-backend/internal/model"
	"pharmacy-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests. They preserve
// insertion order and return gorm.ErrRecordNotFound like the real
// implementations, so services can be exercised without a database.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- items ---

type fakeItemRepo struct {
	items []*model.Item
}

func (r *fakeItemRepo) add(name, category string, quantity int, price string) *model.Item {
	item := &model.Item{
		ID:        uuid.New(),
		ItemName:  name,
		Category:  category,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(price),
		CreatedAt: time.Now(),
	}
	r.items = append(r.items, item)
	return item
}

func (r *fakeItemRepo) Create(_ context.Context, item *model.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	copied := *item
	r.items = append(r.items, &copied)
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *model.Item) error {
	for i, existing := range r.items {
		if existing.ID == item.ID {
			copied := *item
			r.items[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, existing := range r.items {
		if existing.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	for _, existing := range r.items {
		if existing.ID == id {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeItemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeItemRepo) List(_ context.Context, page, limit int, search string) ([]model.Item, int64, error) {
	var matched []model.Item
	for _, item := range r.items {
		if search != "" &&
			!containsFold(item.ItemName, search) &&
			!containsFold(item.Category, search) {
			continue
		}
		matched = append(matched, *item)
	}
	total := int64(len(matched))
	return paginate(matched, page, limit), total, nil
}

func (r *fakeItemRepo) UpdateQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	for _, existing := range r.items {
		if existing.ID == id {
			existing.Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeItemRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeItemRepo) CountByCategory(_ context.Context) ([]repository.CategoryCount, error) {
	byCategory := map[string]int64{}
	var order []string
	for _, item := range r.items {
		if _, seen := byCategory[item.Category]; !seen {
			order = append(order, item.Category)
		}
		byCategory[item.Category]++
	}
	counts := make([]repository.CategoryCount, 0, len(order))
	for _, category := range order {
		counts = append(counts, repository.CategoryCount{Category: category, Count: byCategory[category]})
	}
	return counts, nil
}

// --- supply requests ---

type fakeRequestRepo struct {
	requests []*model.SupplyRequest
	items    *fakeItemRepo // resolves Item on preloaded lookups
}

func (r *fakeRequestRepo) Create(_ context.Context, req *model.SupplyRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now()
	copied := *req
	r.requests = append(r.requests, &copied)
	return nil
}

func (r *fakeRequestRepo) Update(_ context.Context, req *model.SupplyRequest) error {
	for i, existing := range r.requests {
		if existing.ID == req.ID {
			copied := *req
			r.requests[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	for _, existing := range r.requests {
		if existing.ID == id {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRequestRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.SupplyRequest, error) {
	req, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.resolveItem(req)
	return req, nil
}

func (r *fakeRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]model.SupplyRequest, int64, error) {
	var matched []model.SupplyRequest
	for _, req := range r.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		copied := *req
		r.resolveItem(&copied)
		if filter.Search != "" {
			if copied.Item == nil || !containsFold(copied.Item.ItemName, filter.Search) {
				continue
			}
		}
		matched = append(matched, copied)
	}
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *fakeRequestRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.requests)), nil
}

func (r *fakeRequestRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var total int64
	for _, req := range r.requests {
		if req.Status == status {
			total++
		}
	}
	return total, nil
}

func (r *fakeRequestRepo) resolveItem(req *model.SupplyRequest) {
	if r.items == nil {
		return
	}
	for _, item := range r.items.items {
		if item.ID == req.ItemID {
			copied := *item
			req.Item = &copied
			return
		}
	}
}

// --- payment transactions ---

type fakeTransactionRepo struct {
	transactions []*model.PaymentTransaction
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *model.PaymentTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	copied := *tx
	r.transactions = append(r.transactions, &copied)
	return nil
}

func (r *fakeTransactionRepo) ExistsByApprovalID(_ context.Context, approvalID uuid.UUID) (bool, error) {
	for _, tx := range r.transactions {
		if tx.ApprovalID == approvalID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) List(_ context.Context, filter repository.TransactionFilter) ([]model.PaymentTransaction, int64, error) {
	var matched []model.PaymentTransaction
	for _, tx := range r.transactions {
		if !filter.PaidAfter.IsZero() && tx.PaidAt.Before(filter.PaidAfter) {
			continue
		}
		if filter.Search != "" &&
			!containsFold(tx.ID.String(), filter.Search) &&
			!containsFold(tx.ApprovalID.String(), filter.Search) {
			continue
		}
		matched = append(matched, *tx)
	}
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *fakeTransactionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.transactions)), nil
}

func (r *fakeTransactionRepo) SumAmount(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range r.transactions {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// --- audit log ---

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	// Newest first, like the real repository.
	reversed := make([]model.AuditLog, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		reversed = append(reversed, *r.entries[i])
	}
	return paginate(reversed, page, limit), int64(len(r.entries)), nil
}

// --- users ---

type fakeUserRepo struct {
	users  []*model.User
	tokens map[string]*model.RefreshToken
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users = append(r.users, &copied)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range r.users {
		if user.ID.String() == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	all := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, *user)
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	for i, existing := range r.users {
		if existing.ID == user.ID {
			user.UpdatedAt = time.Now()
			copied := *user
			r.users[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	for i, existing := range r.users {
		if existing.ID.String() == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) StoreRefreshToken(_ context.Context, token *model.RefreshToken) error {
	if r.tokens == nil {
		r.tokens = map[string]*model.RefreshToken{}
	}
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	if stored, ok := r.tokens[token]; ok {
		copied := *stored
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

// --- helpers ---

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func paginate[T any](rows []T, page, limit int) []T {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		return rows
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
