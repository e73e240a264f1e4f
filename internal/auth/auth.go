// Package auth handles registration, login, and JWT issuance/verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

// Service issues credentials and resolves authenticated users. The core
// never sees tokens; it receives the resolved *model.User explicitly.
type Service struct {
	storage  service.Storage
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service signing tokens with secret.
func NewService(storage service.Storage, secret string, tokenTTL time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: auth secret", common.ErrMissingConfig)
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		storage:  storage,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}, nil
}

// RegisterRequest carries the fields of a registration call.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Currency  string
}

// Register creates a new user with a bcrypt-hashed password. A duplicate
// email surfaces as ErrConflict.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, common.InvalidArgumentf("invalid email address %q", req.Email)
	}
	if len(req.Password) < 8 {
		return nil, common.InvalidArgumentf("password must be at least 8 characters")
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, common.InvalidArgumentf("first and last name are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Settings:     model.UserSettings{Currency: req.Currency},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("registered user", "id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies credentials and returns the user. All failures collapse
// into ErrInvalidCredentials so the response never reveals whether the
// email exists.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken creates a signed JWT for the user.
func (s *Service) IssueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses a JWT and loads the user it names.
func (s *Service) VerifyToken(ctx context.Context, tokenStr string) (*model.User, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.Forbiddenf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, common.Forbiddenf("invalid claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, common.Forbiddenf("token missing user_id")
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.Forbiddenf("token user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
