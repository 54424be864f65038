package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayushmohite/auctionhouse/internal/users"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string, role users.Role) (*users.AuthResult, error)
	Login(ctx context.Context, email, password string, role users.Role) (*users.AuthResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*users.User, error)
}

type AuthHandler struct {
	service UserService
}

func NewAuthHandler(service UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password, users.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates against the account matching both the email and the
// role named in the URL.
func (h *AuthHandler) Login(c *gin.Context) {
	role := users.Role(c.Param("role"))
	if !role.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown role"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}

// Profile returns the authenticated user's account details
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
