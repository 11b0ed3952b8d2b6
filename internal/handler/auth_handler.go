package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/models"
	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// RegisterAdmin godoc
// @Summary Register an admin account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body service.RegisterAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/admin/register [post]
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req service.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	admin, err := h.service.RegisterAdmin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, admin)
}

// Login returns a login handler fixed to one role, so each collection gets
// its own endpoint and a token never crosses collections.
func (h *AuthHandler) Login(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
			return
		}

		res, err := h.service.Login(c.Request.Context(), role, req)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.JSON(c, http.StatusOK, res, nil)
	}
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's info
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info := models.UserInfo{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}
	response.JSON(c, http.StatusOK, info, nil)
}
