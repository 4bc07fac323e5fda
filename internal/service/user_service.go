package service

import (
	"context"
	"errors"
	"strings"

	"todoapi/internal/auth"
	dom "todoapi/internal/domain"
	"todoapi/internal/repo"
	"todoapi/internal/utils"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrUsernameTaken = errors.New("username already taken")

// dummyHash is a valid bcrypt digest used to burn a compare when the
// username does not exist, so the missing-user path costs about the same as
// a wrong password. Not a secret; never matches any submitted password here.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService handles registration, credential validation and account
// deletion. It never returns a different error for unknown-user vs
// wrong-password.
type UserService struct {
	repo   repo.UserRepo
	hasher *auth.PasswordHasher
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo, hasher *auth.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// ValidateCredentials checks username and password; returns the user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_, _ = s.hasher.Verify(password, dummyHash)
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return dom.User{}, err
	}
	if !ok {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with a hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, hash)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// GetByID returns the user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// Exists reports whether the account still exists. Used by the session
// middleware so sessions of deleted accounts resolve to no identity.
func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteAccount removes the account; owned todos cascade in the database.
func (s *UserService) DeleteAccount(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
