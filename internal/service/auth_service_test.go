package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/repository"
	"github.com/mocktestapp/mocktest-backend/internal/service"
)

type fakeUserStore struct {
	byEmail  map[string]*model.User
	touchErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, displayName, phone string) error {
	u, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.DisplayName = displayName
	u.Phone = phone
	return nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	u, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func makeAuthService(t *testing.T) (*service.AuthService, *fakeUserStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // minimum cost, keeps the suite fast
	}
	users := newFakeUserStore()
	return service.NewAuthService(cfg, users, rdb, zerolog.Nop()), users
}

func registerReq() model.RegisterRequest {
	return model.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "super-secret",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := makeAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)
	require.NotEqual(t, "super-secret", user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, model.LoginRequest{
		Email:    "asha@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotNil(t, loggedIn.LastLoginAt)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.NoError(t, svc.ValidateSession(ctx, claims.UserID, claims.ID))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := makeAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq())
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := makeAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, model.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Unknown accounts get the same error as wrong passwords.
	_, _, err = svc.Login(ctx, model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestNewerLoginInvalidatesOlderToken(t *testing.T) {
	svc, _ := makeAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	creds := model.LoginRequest{Email: "asha@example.com", Password: "super-secret"}

	first, _, err := svc.Login(ctx, creds)
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, creds)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(first)
	require.NoError(t, err)
	require.ErrorIs(t, svc.ValidateSession(ctx, claims.UserID, claims.ID), service.ErrSessionInvalidated)
}

func TestLogout(t *testing.T) {
	svc, _ := makeAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, model.LoginRequest{
		Email:    "asha@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.ErrorIs(t, svc.ValidateSession(ctx, user.ID, claims.ID), service.ErrNoActiveSession)
}

func TestValidateTokenRejectsForgeries(t *testing.T) {
	svc, _ := makeAuthService(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)

	_, err = svc.ValidateToken("")
	require.Error(t, err)
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	svc, users := makeAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	users.touchErr = errors.New("connection reset")

	token, loggedIn, err := svc.Login(ctx, model.LoginRequest{
		Email:    "asha@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.NoError(t, svc.ValidateSession(ctx, user.ID, claims.ID))
}
