package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mangashelf/internal/config"
	"mangashelf/internal/http-api/models"
)

type fakeUserRepo struct {
	users map[string]*models.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken // keyed by token string
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	r.tokens[t.Token] = t
	return nil
}

func (r *fakeRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := r.tokens[token]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(ctx context.Context, tokenID string) error {
	for _, t := range r.tokens {
		if t.ID == tokenID {
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) Delete(ctx context.Context, tokenID string) error {
	for k, t := range r.tokens {
		if t.ID == tokenID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func newTestAuthService() AuthService {
	cfg := &config.Config{
		JWTSecret:       "test-secret-test-secret-test-secret!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	return NewAuthService(newFakeUserRepo(), newFakeRefreshTokenRepo(), cfg)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "reader", "hunter2hunter2", "reader@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "hunter2hunter2", user.Password)

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := svc.Register(ctx, "reader", "otherpassword", "other@example.com")
		assert.ErrorIs(t, err, ErrNameInUse)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := svc.Register(ctx, "reader2", "otherpassword", "reader@example.com")
		assert.ErrorIs(t, err, ErrEmailInUse)
	})

	t.Run("LoginIssuesTokens", func(t *testing.T) {
		access, refresh, loggedIn, err := svc.Login(ctx, "reader", "hunter2hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, user.ID, loggedIn.ID)

		claims, err := svc.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "reader", claims.Username)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "reader", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "nobody", "whatever123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthRefresh(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "reader", "hunter2hunter2", "reader@example.com")
	require.NoError(t, err)
	_, refresh, _, err := svc.Login(ctx, "reader", "hunter2hunter2")
	require.NoError(t, err)

	newAccess, err := svc.RefreshAccessToken(ctx, refresh)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "reader", claims.Username)

	t.Run("UnknownRefreshToken", func(t *testing.T) {
		_, err := svc.RefreshAccessToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.ValidateToken("garbage.token.value")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
