package service

import (
	"context"
	"testing"

	"pharmacy-backend/internal/model"
	"pharmacy-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestServiceFixture struct {
	service  RequestService
	items    *fakeItemRepo
	requests *fakeRequestRepo
	audit    *fakeAuditRepo
}

func newRequestServiceFixture() requestServiceFixture {
	items := &fakeItemRepo{}
	requests := &fakeRequestRepo{items: items}
	audit := &fakeAuditRepo{}
	return requestServiceFixture{
		service:  NewRequestService(requests, items, audit, fakeTxManager{}, nil),
		items:    items,
		requests: requests,
		audit:    audit,
	}
}

func TestCreateRequest(t *testing.T) {
	managerID := uuid.NewString()

	t.Run("creates a pending request", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Paracetamol", "Medicine", 100, "2.50")

		res, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   item.ID.String(),
			Quantity: 20,
		})
		require.NoError(t, err)

		assert.Equal(t, model.RequestStatusPending, res.Status)
		assert.Equal(t, managerID, res.ManagerID)
		assert.Equal(t, item.ID.String(), res.ItemID)
		assert.Equal(t, "Paracetamol", res.ItemName)
		assert.Equal(t, 20, res.Quantity)
		assert.Nil(t, res.ApprovedBy)

		// Creating a request must not touch stock.
		assert.Equal(t, 100, f.items.items[0].Quantity)

		require.Len(t, f.audit.entries, 1)
		assert.Equal(t, model.ActionCreateRequest, f.audit.entries[0].Action)
	})

	t.Run("rejects quantity above current stock", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Bandages", "First Aid", 5, "1.25")

		_, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   item.ID.String(),
			Quantity: 6,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Empty(t, f.requests.requests)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Bandages", "First Aid", 5, "1.25")

		_, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   item.ID.String(),
			Quantity: 0,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("unknown item", func(t *testing.T) {
		f := newRequestServiceFixture()

		_, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   uuid.NewString(),
			Quantity: 1,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("malformed item id", func(t *testing.T) {
		f := newRequestServiceFixture()

		_, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   "not-a-uuid",
			Quantity: 1,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestApproveRequest(t *testing.T) {
	managerID := uuid.NewString()
	approverID := uuid.NewString()

	create := func(t *testing.T, f requestServiceFixture, itemID string, quantity int) RequestResponse {
		t.Helper()
		res, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   itemID,
			Quantity: quantity,
		})
		require.NoError(t, err)
		return res
	}

	t.Run("approval deducts stock atomically", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Paracetamol", "Medicine", 100, "2.50")
		req := create(t, f, item.ID.String(), 20)

		res, err := f.service.ApproveRequest(context.Background(), req.ID, approverID)
		require.NoError(t, err)

		assert.Equal(t, model.RequestStatusApproved, res.Status)
		require.NotNil(t, res.ApprovedBy)
		assert.Equal(t, approverID, *res.ApprovedBy)
		assert.NotNil(t, res.ApprovedAt)
		assert.Equal(t, 80, f.items.items[0].Quantity)
	})

	t.Run("second decision on the same request is refused", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Paracetamol", "Medicine", 100, "2.50")
		req := create(t, f, item.ID.String(), 20)

		_, err := f.service.ApproveRequest(context.Background(), req.ID, approverID)
		require.NoError(t, err)

		_, err = f.service.ApproveRequest(context.Background(), req.ID, approverID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
		assert.Contains(t, err.Error(), model.RequestStatusApproved)

		// Stock was deducted exactly once.
		assert.Equal(t, 80, f.items.items[0].Quantity)
	})

	t.Run("insufficient stock leaves the request pending", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Vitamin C", "Supplements", 75, "7.99")
		first := create(t, f, item.ID.String(), 50)
		second := create(t, f, item.ID.String(), 50)

		_, err := f.service.ApproveRequest(context.Background(), first.ID, approverID)
		require.NoError(t, err)

		// Only 25 units remain; the second request can no longer be filled.
		_, err = f.service.ApproveRequest(context.Background(), second.ID, approverID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))

		stored, findErr := f.requests.FindByID(context.Background(), uuid.MustParse(second.ID))
		require.NoError(t, findErr)
		assert.Equal(t, model.RequestStatusPending, stored.Status)
		assert.Equal(t, 25, f.items.items[0].Quantity)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newRequestServiceFixture()

		_, err := f.service.ApproveRequest(context.Background(), uuid.NewString(), approverID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestRejectRequest(t *testing.T) {
	managerID := uuid.NewString()
	approverID := uuid.NewString()

	t.Run("rejection is terminal and never touches stock", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Hand Sanitizer", "Skin Care", 50, "5.00")

		req, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   item.ID.String(),
			Quantity: 10,
		})
		require.NoError(t, err)

		res, err := f.service.RejectRequest(context.Background(), req.ID, approverID, "budget freeze")
		require.NoError(t, err)

		assert.Equal(t, model.RequestStatusRejected, res.Status)
		assert.Equal(t, "budget freeze", res.RejectionReason)
		assert.Equal(t, 50, f.items.items[0].Quantity)

		_, err = f.service.ApproveRequest(context.Background(), req.ID, approverID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})

	t.Run("rejecting an approved request is refused", func(t *testing.T) {
		f := newRequestServiceFixture()
		item := f.items.add("Hand Sanitizer", "Skin Care", 50, "5.00")

		req, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
			ItemID:   item.ID.String(),
			Quantity: 10,
		})
		require.NoError(t, err)

		_, err = f.service.ApproveRequest(context.Background(), req.ID, approverID)
		require.NoError(t, err)

		_, err = f.service.RejectRequest(context.Background(), req.ID, approverID, "too late")
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})
}

func TestListRequests(t *testing.T) {
	managerID := uuid.NewString()
	approverID := uuid.NewString()

	f := newRequestServiceFixture()
	paracetamol := f.items.add("Paracetamol", "Medicine", 100, "2.50")
	bandages := f.items.add("Bandages", "First Aid", 200, "1.25")

	first, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
		ItemID: paracetamol.ID.String(), Quantity: 10,
	})
	require.NoError(t, err)
	second, err := f.service.CreateRequest(context.Background(), managerID, CreateRequestDTO{
		ItemID: bandages.ID.String(), Quantity: 30,
	})
	require.NoError(t, err)

	_, err = f.service.ApproveRequest(context.Background(), first.ID, approverID)
	require.NoError(t, err)

	t.Run("returns all requests in insertion order", func(t *testing.T) {
		res, total, err := f.service.ListRequests(context.Background(), RequestListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, res, 2)
		assert.Equal(t, first.ID, res[0].ID)
		assert.Equal(t, second.ID, res[1].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		res, total, err := f.service.ListRequests(context.Background(), RequestListFilter{Status: model.RequestStatusPending})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, res, 1)
		assert.Equal(t, second.ID, res[0].ID)
	})

	t.Run("searches by item name", func(t *testing.T) {
		res, total, err := f.service.ListRequests(context.Background(), RequestListFilter{Search: "paraceta"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, res, 1)
		assert.Equal(t, "Paracetamol", res[0].ItemName)
	})
}
