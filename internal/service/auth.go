package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bookworm/bookworm-go/internal/crypto"
	"github.com/bookworm/bookworm-go/internal/model"
	"github.com/bookworm/bookworm-go/internal/repository"
	"github.com/bookworm/bookworm-go/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("user already exists")
	ErrEmailTaken         = errors.New("user with this email already exists")
)

// ValidationError marks request-contract violations so the handler layer
// can return them as 400s with the violation message.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErr(err error) error {
	return &ValidationError{msg: err.Error()}
}

// avatarURLFormat derives a deterministic profile image from the username.
const avatarURLFormat = "https://api.dicebear.com/7.x/avataaars/svg?seed=%s"

// AuthService handles registration and login.
type AuthService struct {
	repo      *repository.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.UserRepository, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account and returns a session token.
// Username is checked before email so the duplicate message names the
// first conflicting field, matching the mobile client's expectations.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return model.AuthResponse{}, validationErr(err)
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return model.AuthResponse{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return model.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		ProfileImage: fmt.Sprintf(avatarURLFormat, url.QueryEscape(req.Username)),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// The existence checks above race with concurrent registers;
		// the unique keys are the source of truth.
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return model.AuthResponse{}, ErrUsernameTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}
	user.CreatedAt = time.Now().UTC()

	return s.authResponse(user)
}

// Login authenticates a user and returns a session token. Unknown email
// and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return model.AuthResponse{}, validationErr(errors.New("email and password are required"))
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// GetUser retrieves the public view of a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}

	return user.PublicView(), nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  user.PublicView(),
	}, nil
}
