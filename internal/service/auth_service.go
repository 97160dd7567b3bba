package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/observability/metrics"
	"github.com/aryan0dhankhar/tasktracker/internal/security/auth"
)

const minPasswordChars = 6

// TokenIssuer signs access tokens for an identity
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// ProfileCache memoizes public profiles by user id
type ProfileCache interface {
	Get(ctx context.Context, userID string) (domain.PublicUser, bool)
	Set(ctx context.Context, profile domain.PublicUser)
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Token string
	User  domain.PublicUser
}

// AuthService handles registration, login and profile lookups
type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	hasher PasswordHasher
	cache  ProfileCache
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service. cache may be nil.
func NewAuthService(
	users domain.UserRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	cache ProfileCache,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		cache:  cache,
		logger: logger,
	}
}

// Register creates a new account and signs the caller in
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		metrics.ObserveAuth("register", "invalid")
		return nil, domain.NewValidationError("All fields are required")
	}
	if utf8.RuneCountInString(password) < minPasswordChars {
		metrics.ObserveAuth("register", "invalid")
		return nil, domain.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordChars))
	}
	if len(password) > auth.MaxPasswordBytes {
		metrics.ObserveAuth("register", "invalid")
		return nil, domain.NewValidationError(fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.ObserveAuth("register", "conflict")
		}
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.ObserveAuth("register", "conflict")
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.signIn(user)
	if err != nil {
		return nil, err
	}

	metrics.ObserveAuth("register", "success")
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return result, nil
}

// Login verifies credentials. Every failure mode yields domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.ObserveAuth("login", "failure")
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		// equalize timing with the wrong-password path
		_ = s.hasher.Compare(s.dummy(), password)
		s.logger.Info("login attempt with unknown email")
		metrics.ObserveAuth("login", "failure")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unusable",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Info("login failed with wrong password", slog.String("user_id", user.ID))
		metrics.ObserveAuth("login", "failure")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.signIn(user)
	if err != nil {
		return nil, err
	}

	metrics.ObserveAuth("login", "success")
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return result, nil
}

// Me resolves the public profile of an authenticated user
func (s *AuthService) Me(ctx context.Context, userID string) (domain.PublicUser, error) {
	if s.cache != nil {
		if profile, ok := s.cache.Get(ctx, userID); ok {
			return profile, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.PublicUser{}, err
		}
		return domain.PublicUser{}, fmt.Errorf("load profile: %w", err)
	}

	profile := user.Public()
	if s.cache != nil {
		s.cache.Set(ctx, profile)
	}
	return profile, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	return nil
}

func (s *AuthService) signIn(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("tasktracker-placeholder")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
