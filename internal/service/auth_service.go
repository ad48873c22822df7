package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/auth"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type AuthService struct {
	users     repository.UserRepo
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users repository.UserRepo, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, logger: logger}
}

type AuthResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// Register signs up a dealership: the account gets a tenant of its own.
// Joining an existing tenant goes through AddUser.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	tenantID := "tenant_" + uuid.NewString()
	user, err := s.create(ctx, email, password, name, tenantID, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tenant registered", zap.String("tenant_id", tenantID), zap.String("user_id", user.ID))
	return s.issue(user)
}

// AddUser creates a user inside the calling admin's tenant.
func (s *AuthService) AddUser(ctx context.Context, actor Actor, email, password, name string) (*models.UserResponse, error) {
	if actor.Role != models.RoleAdmin || actor.TenantID == "" {
		return nil, ErrForbidden
	}
	user, err := s.create(ctx, email, password, name, actor.TenantID, models.RoleUser)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	resp := user.ToResponse()
	return &resp, nil
}

// SeedAdmin creates the admin account once; later calls are no-ops.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, tenantID string) error {
	_, err := s.create(ctx, email, password, "Admin", tenantID, models.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	if err == nil {
		s.logger.Info("admin user seeded", zap.String("email", email), zap.String("tenant_id", tenantID))
	}
	return err
}

func (s *AuthService) create(ctx context.Context, email, password, name, tenantID, role string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || tenantID == "" {
		return nil, models.NewValidationError("email, password and tenant are required")
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, user.Role, user.TenantID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.ToResponse()}, nil
}
