package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/logger"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	store    *storage.Store
	resolver *tenant.Resolver
	tokens   *Tokens
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	counter := tenant.Seed{Name: "counter.json", Default: func() interface{} { return map[string]int{"next": 1} }}
	resolver := tenant.NewResolver(store, logger.Discard(), counter)
	tokens := NewTokens(testSecret, time.Hour)
	return &fixture{
		store:    store,
		resolver: resolver,
		tokens:   tokens,
		svc:      NewService(NewFileRepository(store), tokens, resolver, logger.Discard(), bcrypt.MinCost),
	}
}

func TestRegister_ProvisionsTenant(t *testing.T) {
	f := newFixture(t)

	sess, err := f.svc.Register(context.Background(), RegisterRequest{Username: "budi", Password: "Rahasia1!"})
	require.NoError(t, err)
	assert.Regexp(t, `^user_[0-9a-f]{32}$`, sess.UserID)
	assert.Equal(t, "budi", sess.Username)
	assert.Equal(t, RoleUser, sess.Role)

	id, err := f.tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, id.TenantID)

	ok, err := f.resolver.Exists(sess.UserID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.store.Exists(storage.Namespace("tenants/"+sess.UserID), "counter.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Username: "budi", Password: "Rahasia1!"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterRequest{Username: "BUDI", Password: "Rahasia1!"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	for _, pw := range []string{"short1!", "alllower1!", "ALLUPPER1!", "NoDigits!!", "NoSpecial11", "Spaces 1!a"} {
		_, err = f.svc.Register(ctx, RegisterRequest{Username: "siti", Password: pw})
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, pw)
	}
	_, err = f.svc.Register(ctx, RegisterRequest{Username: "  ", Password: "Rahasia1!"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, RegisterRequest{Username: "budi", Password: "Rahasia1!"})
	require.NoError(t, err)

	sess, err := f.svc.Login(ctx, LoginRequest{Username: "budi", Password: "Rahasia1!"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, sess.UserID)

	_, err = f.svc.Login(ctx, LoginRequest{Username: "budi", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.svc.Login(ctx, LoginRequest{Username: "nobody", Password: "Rahasia1!"}, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.svc.Login(ctx, LoginRequest{Username: "budi"}, "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestLogin_LocksOutAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Username: "budi", Password: "Rahasia1!"})
	require.NoError(t, err)

	for i := 0; i < maxLoginFailures; i++ {
		_, err = f.svc.Login(ctx, LoginRequest{Username: "budi", Password: "wrong"}, "10.0.0.1")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	}
	_, err = f.svc.Login(ctx, LoginRequest{Username: "budi", Password: "Rahasia1!"}, "10.0.0.1")
	var locked *LockedOutError
	require.True(t, errors.As(err, &locked))
	assert.True(t, locked.RetryAfter > 0)

	_, err = f.svc.Login(ctx, LoginRequest{Username: "budi", Password: "Rahasia1!"}, "10.0.0.2")
	assert.NoError(t, err, "other clients are not affected")
}

func TestAttempts_WindowExpires(t *testing.T) {
	a := newAttempts(2, time.Minute)
	now := time.Now()
	a.fail("k", now)
	a.fail("k", now)
	assert.Error(t, a.check("k", now.Add(30*time.Second)))
	assert.NoError(t, a.check("k", now.Add(time.Minute)))
	assert.NoError(t, a.check("k", now.Add(time.Minute+time.Second)))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, RegisterRequest{Username: "budi", Password: "Rahasia1!"})
	require.NoError(t, err)
	id := tenant.Identity{TenantID: reg.UserID, Username: "budi", Role: RoleUser}

	_, err = f.svc.ChangePassword(ctx, id, ChangePasswordRequest{
		CurrentPassword: "Rahasia1!", NewPassword: "Baru1234!", ConfirmPassword: "Beda1234!",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.ChangePassword(ctx, id, ChangePasswordRequest{
		CurrentPassword: "Salah123!", NewPassword: "Baru1234!", ConfirmPassword: "Baru1234!",
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	sess, err := f.svc.ChangePassword(ctx, id, ChangePasswordRequest{
		CurrentPassword: "Rahasia1!", NewPassword: "Baru1234!", ConfirmPassword: "Baru1234!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	_, err = f.svc.Login(ctx, LoginRequest{Username: "budi", Password: "Rahasia1!"}, "k")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.svc.Login(ctx, LoginRequest{Username: "budi", Password: "Baru1234!"}, "k")
	assert.NoError(t, err)
}

func TestTokens_Verify(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)
	raw, err := tokens.Issue(tenant.Identity{TenantID: "user_1", Username: "budi", Role: RoleUser})
	require.NoError(t, err)

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, tenant.Identity{TenantID: "user_1", Username: "budi", Role: RoleUser}, id)

	_, err = NewTokens("another-secret-of-some-length", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = tokens.Verify("garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	expired := NewTokens(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(tenant.Identity{TenantID: "user_1"})
	require.NoError(t, err)
	_, err = tokens.Verify(old)
	assert.ErrorIs(t, err, ErrTokenExpired)

	bad, err := tokens.Issue(tenant.Identity{TenantID: "../user_2"})
	require.NoError(t, err)
	_, err = tokens.Verify(bad)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
