package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/workbridge/ims-api/internal/middleware"
	"github.com/workbridge/ims-api/internal/models"
	"github.com/workbridge/ims-api/internal/service"
)

type stubAdminRepo struct {
	admin *models.Admin
}

func (s *stubAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if s.admin != nil && s.admin.Email == email {
		return s.admin, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	admin.ID = "admin-new"
	s.admin = admin
	return nil
}

type stubTeacherRepo struct{}

func (s *stubTeacherRepo) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	return nil, sql.ErrNoRows
}

type stubInternRepo struct{}

func (s *stubInternRepo) FindByEmail(ctx context.Context, email string) (*models.Intern, error) {
	return nil, sql.ErrNoRows
}

type stubEmployeeRepo struct{}

func (s *stubEmployeeRepo) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return nil, sql.ErrNoRows
}

func newAuthTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	admins := &stubAdminRepo{admin: &models.Admin{
		ID:           "admin-1",
		Name:         "Root",
		Email:        "root@corp.test",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}}
	authSvc := service.NewAuthService(admins, &stubTeacherRepo{}, &stubInternRepo{}, &stubEmployeeRepo{}, nil, nil, service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "ims-test",
	})

	h := NewAuthHandler(authSvc)
	r := gin.New()
	r.POST("/auth/admin/login", h.Login(models.RoleAdmin))
	r.GET("/auth/me", middleware.JWT(authSvc), h.Me)
	r.GET("/admin-only", middleware.JWT(authSvc), middleware.RBAC(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/teacher-only", middleware.JWT(authSvc), middleware.RBAC(models.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, authSvc
}

func loginToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	body, _ := json.Marshal(gin.H{"email": "root@corp.test", "password": "s3cret"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func TestLoginIssuesToken(t *testing.T) {
	r, authSvc := newAuthTestRouter(t)

	token := loginToken(t, r)
	claims, err := authSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "root@corp.test", "password": "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeReturnsClaims(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	token := loginToken(t, r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.UserInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "root@corp.test", envelope.Data.Email)
	assert.Equal(t, models.RoleAdmin, envelope.Data.Role)
}

func TestRBACBlocksWrongRole(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	token := loginToken(t, r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/teacher-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
