package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/auth"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewMemoryUserRepo(), "secret", zap.NewNop())

	res, err := svc.Register(ctx, "sales@acmerv.com", "pw", "Sam")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)

	claims, err := auth.ValidateToken("secret", res.Token)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(claims.TenantID, "tenant_"))
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = svc.Register(ctx, "SALES@acmerv.com", "pw", "Sam")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, "x@acmerv.com", "", "X")
	assert.True(t, models.IsValidationError(err))

	_, err = svc.Login(ctx, "sales@acmerv.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@acmerv.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, "sales@acmerv.com", "pw")
	require.NoError(t, err)
	me, err := svc.Me(ctx, login.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", me.Name)

	_, err = svc.Me(ctx, "missing")
	assert.Error(t, err)
}

func TestAuthService_SeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewMemoryUserRepo(), "secret", zap.NewNop())

	require.NoError(t, svc.SeedAdmin(ctx, "admin@dms.local", "admin123", "default"))
	require.NoError(t, svc.SeedAdmin(ctx, "admin@dms.local", "other", "default"))

	res, err := svc.Login(ctx, "admin@dms.local", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestAuthService_RegisterCreatesSeparateTenants(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewMemoryUserRepo(), "secret", zap.NewNop())

	a, err := svc.Register(ctx, "a@one.test", "pw", "A")
	require.NoError(t, err)
	b, err := svc.Register(ctx, "b@two.test", "pw", "B")
	require.NoError(t, err)
	assert.NotEqual(t, a.User.TenantID, b.User.TenantID)
}

func TestAuthService_AddUser(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewMemoryUserRepo(), "secret", zap.NewNop())
	admin := Actor{UserID: "admin-1", TenantID: "tenant-1", Role: models.RoleAdmin}

	u, err := svc.AddUser(ctx, admin, "desk@dealer.test", "pw", "Desk")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", u.TenantID)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = svc.AddUser(ctx, Actor{UserID: "u-1", TenantID: "tenant-1", Role: models.RoleUser}, "x@dealer.test", "pw", "X")
	assert.ErrorIs(t, err, ErrForbidden)
}
