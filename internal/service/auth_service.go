package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

type adminAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
}

type teacherAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

type internAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Intern, error)
}

type employeeAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
}

// RegisterAdminRequest holds payload for creating an admin account.
type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthConfig defines configuration for token issuance.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService authenticates accounts of every role and issues access tokens.
type AuthService struct {
	admins    adminAccountRepository
	teachers  teacherAccountRepository
	interns   internAccountRepository
	employees employeeAccountRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(admins adminAccountRepository, teachers teacherAccountRepository, interns internAccountRepository, employees employeeAccountRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{admins: admins, teachers: teachers, interns: interns, employees: employees, validator: validate, logger: logger, config: config}
}

// RegisterAdmin creates a new administrator account.
func (s *AuthService) RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}
	if _, err := s.admins.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	admin := &models.Admin{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}
	s.logger.Info("admin registered", zap.String("admin_id", admin.ID))
	return admin, nil
}

// Login authenticates an account of the given role and returns a token.
func (s *AuthService) Login(ctx context.Context, role string, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	info, hash, err := s.lookup(ctx, role, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	token, err := s.generateToken(info)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create token")
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.Expiration.Seconds()),
		User:      info,
	}, nil
}

func (s *AuthService) lookup(ctx context.Context, role string, email string) (models.UserInfo, string, error) {
	switch role {
	case models.RoleAdmin:
		admin, err := s.admins.FindByEmail(ctx, email)
		if err != nil {
			return models.UserInfo{}, "", err
		}
		return models.UserInfo{ID: admin.ID, Name: admin.Name, Email: admin.Email, Role: models.RoleAdmin}, admin.PasswordHash, nil
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByEmail(ctx, email)
		if err != nil {
			return models.UserInfo{}, "", err
		}
		return models.UserInfo{ID: teacher.ID, Name: teacher.Name, Email: teacher.Email, Role: models.RoleTeacher}, teacher.PasswordHash, nil
	case models.RoleIntern:
		intern, err := s.interns.FindByEmail(ctx, email)
		if err != nil {
			return models.UserInfo{}, "", err
		}
		return models.UserInfo{ID: intern.ID, Name: intern.Name, Email: intern.Email, Role: models.RoleIntern}, intern.PasswordHash, nil
	case models.RoleEmployee:
		employee, err := s.employees.FindByEmail(ctx, email)
		if err != nil {
			return models.UserInfo{}, "", err
		}
		return models.UserInfo{ID: employee.ID, Name: employee.Name, Email: employee.Email, Role: models.RoleEmployee}, employee.PasswordHash, nil
	default:
		return models.UserInfo{}, "", appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateToken(info models.UserInfo) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: info.ID,
		Role:   info.Role,
		Email:  info.Email,
		Name:   info.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   info.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}
