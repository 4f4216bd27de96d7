package service

import (
	"context"
	"testing"
	"time"

	"pharmacy-backend/internal/model"
	"pharmacy-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceFixture() (UserService, *fakeUserRepo, *fakeAuditRepo) {
	users := &fakeUserRepo{}
	audit := &fakeAuditRepo{}
	return NewUserService(users, audit, fakeTxManager{}), users, audit
}

func TestRegister(t *testing.T) {
	valid := RegisterUserRequest{
		Username: "manager",
		Email:    "manager@pharmacy.local",
		Password: "password123",
		Role:     model.RoleManager,
	}

	t.Run("registers a user with a hashed password", func(t *testing.T) {
		svc, users, audit := newUserServiceFixture()

		res, err := svc.Register(context.Background(), valid)
		require.NoError(t, err)

		assert.Equal(t, "manager", res.Username)
		assert.Equal(t, model.RoleManager, res.Role)

		require.Len(t, users.users, 1)
		assert.NotEqual(t, "password123", users.users[0].Password)

		require.Len(t, audit.entries, 1)
		assert.Equal(t, model.ActionCreateUser, audit.entries[0].Action)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		svc, _, _ := newUserServiceFixture()

		req := valid
		req.Role = "SUPERVISOR"
		_, err := svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		svc, _, _ := newUserServiceFixture()

		_, err := svc.Register(context.Background(), valid)
		require.NoError(t, err)

		req := valid
		req.Email = "other@pharmacy.local"
		_, err = svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc, _, _ := newUserServiceFixture()

		_, err := svc.Register(context.Background(), valid)
		require.NoError(t, err)

		req := valid
		req.Username = "other"
		_, err = svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestLogin(t *testing.T) {
	register := func(t *testing.T, svc UserService) {
		t.Helper()
		_, err := svc.Register(context.Background(), RegisterUserRequest{
			Username: "cfo",
			Email:    "cfo@pharmacy.local",
			Password: "password123",
			Role:     model.RoleCFO,
		})
		require.NoError(t, err)
	}

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		svc, users, _ := newUserServiceFixture()
		register(t, svc)

		tokens, err := svc.Login(context.Background(), LoginUserRequest{
			Email:    "cfo@pharmacy.local",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.Token)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Len(t, users.tokens, 1)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newUserServiceFixture()
		register(t, svc)

		_, err := svc.Login(context.Background(), LoginUserRequest{
			Email:    "cfo@pharmacy.local",
			Password: "letmein",
		})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _, _ := newUserServiceFixture()

		_, err := svc.Login(context.Background(), LoginUserRequest{
			Email:    "nobody@pharmacy.local",
			Password: "password123",
		})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rotates the refresh token", func(t *testing.T) {
		svc, users, _ := newUserServiceFixture()

		_, err := svc.Register(context.Background(), RegisterUserRequest{
			Username: "admin",
			Email:    "admin@pharmacy.local",
			Password: "password123",
			Role:     model.RoleAdmin,
		})
		require.NoError(t, err)

		tokens, err := svc.Login(context.Background(), LoginUserRequest{
			Email:    "admin@pharmacy.local",
			Password: "password123",
		})
		require.NoError(t, err)

		rotated, err := svc.Refresh(context.Background(), tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

		// The old token no longer works.
		_, err = svc.Refresh(context.Background(), tokens.RefreshToken)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Len(t, users.tokens, 1)
	})

	t.Run("expired token is rejected and purged", func(t *testing.T) {
		svc, users, _ := newUserServiceFixture()

		user := &model.User{Username: "admin", Email: "admin@pharmacy.local", Role: model.RoleAdmin}
		require.NoError(t, users.Create(context.Background(), user))
		require.NoError(t, users.StoreRefreshToken(context.Background(), &model.RefreshToken{
			UserID:    user.ID,
			Token:     "stale",
			ExpiresAt: time.Now().Add(-time.Hour),
		}))

		_, err := svc.Refresh(context.Background(), "stale")
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Empty(t, users.tokens)
	})
}

func TestUpdateUser(t *testing.T) {
	actorID := uuid.NewString()

	t.Run("role change to an unknown role is rejected", func(t *testing.T) {
		svc, users, _ := newUserServiceFixture()
		user := &model.User{Username: "dist", Email: "dist@pharmacy.local", Role: model.RoleDistributor}
		require.NoError(t, users.Create(context.Background(), user))

		_, err := svc.UpdateUser(context.Background(), actorID, user.ID.String(), UpdateUserRequest{Role: "OWNER"})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("updates role and audits", func(t *testing.T) {
		svc, users, audit := newUserServiceFixture()
		user := &model.User{Username: "dist", Email: "dist@pharmacy.local", Role: model.RoleDistributor}
		require.NoError(t, users.Create(context.Background(), user))

		res, err := svc.UpdateUser(context.Background(), actorID, user.ID.String(), UpdateUserRequest{Role: model.RoleManager})
		require.NoError(t, err)
		assert.Equal(t, model.RoleManager, res.Role)

		require.Len(t, audit.entries, 1)
		assert.Equal(t, model.ActionUpdateUser, audit.entries[0].Action)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := newUserServiceFixture()

		_, err := svc.UpdateUser(context.Background(), actorID, uuid.NewString(), UpdateUserRequest{})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}
