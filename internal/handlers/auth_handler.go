package handlers

import (
	"net/http"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/models"
	"go-print-erp/internal/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
}

type LoginResponse struct {
	Token    string      `json:"token"`
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
}

type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenManager
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		abortWithError(c, apperr.Internal("failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, Role: user.Role, Username: user.Username})
}

// POST /api/register opens self sign-up. New accounts are always employees;
// an admin promotes them afterwards.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), services.UserInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     models.RoleEmployee,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
