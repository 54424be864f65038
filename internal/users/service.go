package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayushmohite/auctionhouse/pkg/auth"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
)

// validateRegistration checks a registration request before any write
func validateRegistration(name, email, password string, role Role) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name cannot be empty")
	}
	if !strings.Contains(email, "@") || len(email) < 3 {
		return errors.New("invalid email format")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !role.IsValid() {
		return errors.New("role must be customer, vendor or admin")
	}
	return nil
}

// AuthResult carries the registered or logged-in user and their session token
type AuthResult struct {
	User  *User
	Token string
}

// Service handles registration and role-scoped login
type Service struct {
	userRepo Repository
	signer   *auth.Signer
}

// NewService creates a new user service
func NewService(userRepo Repository, signer *auth.Signer) *Service {
	return &Service{userRepo: userRepo, signer: signer}
}

// Register creates a user and issues a session token. The same email may
// exist once per role, so a vendor and a customer can share an address.
func (s *Service) Register(ctx context.Context, name, email, password string, role Role) (*AuthResult, error) {
	if err := validateRegistration(name, email, password, role); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.userRepo.GetUserByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.signer.GenerateToken(user.ID, user.Email, user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials for the given role and issues a session token
func (s *Service) Login(ctx context.Context, email, password string, role Role) (*AuthResult, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	user, err := s.userRepo.GetUserByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signer.GenerateToken(user.ID, user.Email, user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile retrieves a user by ID
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
