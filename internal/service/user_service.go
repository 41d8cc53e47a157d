package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/guard"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type RegisterUserRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role" binding:"required"`
	LocationID   string `json:"location_id"`
	DepartmentID string `json:"department_id"`
}

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	Global       bool   `json:"global"`
	LocationID   string `json:"location_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// --- Interface ---

// UserService handles registration and login. A user's scope columns are
// fixed at registration and validated with the same rules the guard
// applies per call, so a user that registers successfully always yields a
// valid actor.
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// --- Implementation ---

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error) {
	role := model.Role(req.Role)
	spec, ok := model.LookupRole(role)
	if !ok {
		return nil, apperror.Domain("unknown role %q", req.Role)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Role:         req.Role,
		Global:       spec.Global,
		LocationID:   req.LocationID,
		DepartmentID: req.DepartmentID,
	}
	if spec.Global {
		user.LocationID = ""
		user.DepartmentID = ""
	}
	if err := guard.AssertIdentity(user.Actor()); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, apperror.Domain("username %q already exists", req.Username)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return mapUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.Authorization("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Authorization("invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    user.ID.String(),
		"role":   user.Role,
		"global": user.Global,
		"loc":    user.LocationID,
		"dept":   user.DepartmentID,
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &TokenResponse{Token: signed}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := parseUUID("user id", id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Domain("user %s not found", id)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return mapUserResponse(user), nil
}

// --- Mapping ---

func mapUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID.String(),
		Username:     user.Username,
		Role:         user.Role,
		Global:       user.Global,
		LocationID:   user.LocationID,
		DepartmentID: user.DepartmentID,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
}
