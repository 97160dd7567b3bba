package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/repository"
	"github.com/aryan0dhankhar/tasktracker/internal/security/auth"
)

func newTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager("service-test-secret", "tasktracker", time.Hour)
	require.NoError(t, err)
	return tm
}

func newAuthService(t *testing.T, users domain.UserRepository, cache ProfileCache) (*AuthService, *auth.TokenManager) {
	t.Helper()
	tm := newTokenManager(t)
	return NewAuthService(users, tm, auth.NewBcryptHasher(4), cache, nil), tm
}

type countingUsers struct {
	domain.UserRepository
	byID int
}

func (c *countingUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	c.byID++
	return c.UserRepository.GetByID(ctx, id)
}

type brokenUsers struct {
	domain.UserRepository
}

func (brokenUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

type spyHasher struct {
	PasswordHasher
	compared []string
}

func (s *spyHasher) Compare(hash, password string) error {
	s.compared = append(s.compared, hash)
	return s.PasswordHasher.Compare(hash, password)
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, tm := newAuthService(t, repository.NewMemoryUserRepository(), nil)

	reg, err := s.Register(ctx, "  alice ", " a@x.io ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, "a@x.io", reg.User.Email)
	assert.NotEmpty(t, reg.User.ID)

	login, err := s.Login(ctx, "a@x.io", "secret1")
	require.NoError(t, err)

	id, err := tm.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "a@x.io", id.Email)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(t, repository.NewMemoryUserRepository(), nil)

	cases := []struct {
		name, username, email, password, msg string
	}{
		{"missing username", "", "a@x.io", "secret1", "All fields are required"},
		{"blank email", "alice", "   ", "secret1", "All fields are required"},
		{"missing password", "alice", "a@x.io", "", "All fields are required"},
		{"short password", "alice", "a@x.io", "12345", "Password must be at least 6 characters"},
		{"too long", "alice", "a@x.io", strings.Repeat("x", 73), "Password must be at most 72 bytes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.username, tc.email, tc.password)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tc.msg, err.Error())
		})
	}

	_, err := s.Register(ctx, "alice", "a@x.io", "ünïcø")
	assert.True(t, domain.IsValidation(err), "five runes is short even when more than five bytes")
	_, err = s.Register(ctx, "alice", "a@x.io", "123456")
	assert.NoError(t, err)
}

func TestRegisterConflict(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(t, repository.NewMemoryUserRepository(), nil)

	_, err := s.Register(ctx, "alice", "a@x.io", "secret1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice2", "a@x.io", "secret1")
	assert.ErrorIs(t, err, domain.ErrUserExists)
	_, err = s.Register(ctx, "alice", "other@x.io", "secret1")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(t, repository.NewMemoryUserRepository(), nil)
	_, err := s.Register(ctx, "alice", "a@x.io", "secret1")
	require.NoError(t, err)

	for _, tc := range []struct{ email, password string }{
		{"a@x.io", "wrong-password"},
		{"nobody@x.io", "secret1"},
		{"", "secret1"},
		{"a@x.io", ""},
	} {
		_, err := s.Login(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, tc)
	}
}

func TestLoginUnknownEmailStillCompares(t *testing.T) {
	spy := &spyHasher{PasswordHasher: auth.NewBcryptHasher(4)}
	s := NewAuthService(repository.NewMemoryUserRepository(), newTokenManager(t), spy, nil, nil)

	_, err := s.Login(context.Background(), "ghost@x.io", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	require.Len(t, spy.compared, 1)
	assert.True(t, strings.HasPrefix(spy.compared[0], "$2"))
}

func TestLoginStoreFailureIsNotCredentialError(t *testing.T) {
	s, _ := newAuthService(t, brokenUsers{UserRepository: repository.NewMemoryUserRepository()}, nil)

	_, err := s.Login(context.Background(), "a@x.io", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMeUsesProfileCache(t *testing.T) {
	ctx := context.Background()
	users := &countingUsers{UserRepository: repository.NewMemoryUserRepository()}
	s, _ := newAuthService(t, users, repository.NewMemoryProfileCache(time.Minute))

	reg, err := s.Register(ctx, "alice", "a@x.io", "secret1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		me, err := s.Me(ctx, reg.User.ID)
		require.NoError(t, err)
		assert.Equal(t, reg.User, me)
	}
	assert.Equal(t, 1, users.byID)
}

func TestMeUnknownUser(t *testing.T) {
	s, _ := newAuthService(t, repository.NewMemoryUserRepository(), nil)

	_, err := s.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
