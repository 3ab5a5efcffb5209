package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lostfound/internal/models"
	"lostfound/internal/repositories"
	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
	logg       *logger.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService. A non-positive tokenTTL falls
// back to 24 hours.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, logg *logger.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
		logg:       orNop(logg),
		now:        time.Now,
	}
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	Department string `json:"department" validate:"omitempty,max=100"`
	Year       string `json:"year" validate:"omitempty,max=20"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput patches the editable profile fields. Nil fields are left
// unchanged.
type ProfileInput struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Year       *string `json:"year" validate:"omitempty,max=20"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// TokenClaims are the JWT claims issued at login.
type TokenClaims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.StandardClaims
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a regular user account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("Email is already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.Internal(err, "failed to check email")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	user := &models.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   string(hashedPassword),
		Phone:      strings.TrimSpace(in.Phone),
		Department: strings.TrimSpace(in.Department),
		Year:       strings.TrimSpace(in.Year),
		Role:       models.RoleUser,
		Badges:     models.Badges{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Conflict("Email is already registered")
		}
		return nil, apperror.Internal(err, "failed to register user")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user registered")
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.Unauthenticated(invalidCredentials)
		}
		return nil, apperror.Internal(err, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, apperror.Unauthenticated(invalidCredentials)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenDurat).Unix(),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperror.Internal(err, "failed to generate token")
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeUnauthenticated, err, "Invalid or expired token")
	}
	if !token.Valid || claims.UserID == "" {
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}
	return claims, nil
}

// ResolveActor loads the account behind a token. The role comes from the
// stored account, not the token.
func (s *AuthService) ResolveActor(ctx context.Context, userID string) (models.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Actor{}, apperror.Unauthenticated("Account no longer exists")
		}
		return models.Actor{}, apperror.Internal(err, "failed to load account")
	}
	return models.Actor{UserID: user.ID, Role: user.Role}, nil
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "failed to load profile")
	}
	return user, nil
}

// UpdateProfile applies in to the caller's account. Email, role, points and
// badges are not editable here.
func (s *AuthService) UpdateProfile(ctx context.Context, actor models.Actor, in ProfileInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "failed to load profile")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("Name cannot be empty").WithFields(map[string]string{"name": "Field 'name' failed on the 'required' tag"})
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Department != nil {
		user.Department = strings.TrimSpace(*in.Department)
	}
	if in.Year != nil {
		user.Year = strings.TrimSpace(*in.Year)
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, notFoundOr(err, "User not found", "failed to update profile")
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when email is not yet
// registered. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	email = normalizeEmail(email)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, apperror.Internal(err, "failed to check admin account")
	}
	if len(password) < 6 {
		return nil, false, apperror.Validation("Admin password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, apperror.Internal(err, "failed to hash password")
	}
	admin := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Badges:   models.Badges{},
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, false, apperror.Internal(err, "failed to create admin account")
	}
	s.logg.Info(s.logg.WithUserID(ctx, admin.ID), "admin account created")
	return admin, true, nil
}
