// Package auth handles registration, login and session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
)

// UserRepository interface for account operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Registration is a sign-up request.
type Registration struct {
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required,numeric,len=10"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,alphanum,containsany=0123456789"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

var validate = validator.New()

// Service handles user accounts.
type Service struct {
	userRepo UserRepository
	tokens   *TokenManager
	hashCost int
	log      *logger.Logger
}

// NewService creates a new auth service with concrete repository types.
func NewService(userRepo *repository.UserRepository, tokens *TokenManager, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(userRepo, tokens, log)
}

// NewServiceWithInterfaces creates a new auth service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, tokens *TokenManager, log *logger.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		log:      log,
	}
}

// Tokens returns the session token manager.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register validates the request and creates the account.
func (s *Service) Register(ctx context.Context, reg Registration) (*models.User, error) {
	const op = "auth.Register"

	reg.Name = strings.TrimSpace(reg.Name)
	reg.Phone = strings.TrimSpace(reg.Phone)
	reg.Email = normalizeEmail(reg.Email)

	if err := validate.Struct(reg); err != nil {
		return nil, errs.E(errs.Validation, op, describe(err))
	}
	if reg.Password != reg.ConfirmPassword {
		return nil, errs.E(errs.Validation, op, errors.New("passwords don't match"))
	}

	exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, reg.Email, reg.Phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, errs.E(errs.Conflict, op, errs.ErrEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user := &models.User{
		Name:         reg.Name,
		Phone:        reg.Phone,
		Email:        reg.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login checks credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "auth.Login"

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return nil, "", errs.E(errs.Unauthorized, op, errs.ErrInvalidCredentials)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errs.E(errs.Unauthorized, op, errs.ErrInvalidCredentials)
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug().Uint("user_id", user.ID).Msg("User logged in")
	return user, token, nil
}

// CurrentUser returns the authenticated user's profile.
func (s *Service) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// describe turns validator errors into readable messages.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Field() {
	case "ConfirmPassword":
		field = "Confirm Password"
	case "Phone":
		field = "Number"
	}

	switch fe.Tag() {
	case "required":
		return field + " can't be empty"
	case "numeric":
		return field + " must only consist of digits"
	case "len":
		return field + " must consist of " + fe.Param() + " digits"
	case "email":
		return field + " format is invalid"
	case "min":
		return field + " must be at least " + fe.Param() + " characters long"
	case "alphanum":
		return field + " can only contain alphabets and numbers"
	case "containsany":
		return field + " must contain a number"
	default:
		return field + " is invalid"
	}
}
