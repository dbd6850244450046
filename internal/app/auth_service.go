package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campus-quiz-service/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// UserRepository abstracts user persistence (postgres in production,
// memory in tests and the no-infra fallback).
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
	// FindAdmin returns any user with the admin role, or ErrUserNotFound.
	FindAdmin(ctx context.Context) (domain.User, error)
}

// RegisterInput carries the register payload; required-field checks happen
// at the transport boundary.
type RegisterInput struct {
	Username      string
	Password      string
	FullName      string
	Qualification string
	DOB           *time.Time
}

// AuthService implements register, login, profile lookup and the startup
// admin bootstrap.
type AuthService struct {
	users  UserRepository
	tokens *TokenManager
	clock  func() time.Time
}

func NewAuthService(users UserRepository, tokens *TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens, clock: time.Now}
}

// Register creates a user with the default role. Returns
// domain.ErrUsernameTaken when the username exists.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.UserView, error) {
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return domain.UserView{}, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserView{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Username:      in.Username,
		PasswordHash:  string(hash),
		FullName:      in.FullName,
		Qualification: in.Qualification,
		DOB:           in.DOB,
		Role:          domain.RoleUser,
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return domain.UserView{}, err
	}
	return domain.NewUserView(user), nil
}

// Login verifies credentials, stamps last_login and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.UserView, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.UserView{}, domain.ErrInvalidCredentials
		}
		return "", domain.UserView{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.UserView{}, domain.ErrInvalidCredentials
	}

	if err := s.users.SetLastLogin(ctx, user.ID, s.clock().UTC()); err != nil {
		return "", domain.UserView{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", domain.UserView{}, err
	}
	return token, domain.NewUserView(user), nil
}

// Profile returns the public view of an authenticated user.
func (s *AuthService) Profile(ctx context.Context, userID int64) (domain.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserView{}, err
	}
	return domain.NewUserView(user), nil
}

// EnsureAdmin creates the default admin account if no admin exists.
// Safe to run on every startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, password string) error {
	if _, err := s.users.FindAdmin(ctx); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := domain.User{
		Username:     "admin",
		PasswordHash: string(hash),
		FullName:     "System Administrator",
		Role:         domain.RoleAdmin,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.users.Create(ctx, &admin); err != nil {
		return err
	}
	log.Printf("admin user created")
	return nil
}
