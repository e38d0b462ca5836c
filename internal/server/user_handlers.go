package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeledger/internal/auth"
	"timeledger/internal/models"
)

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin user"`
}

type updateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
	Role     string `json:"role" binding:"required,oneof=admin user"`
	Active   *bool  `json:"active" binding:"required"`
}

// ListUsers handles GET /api/v1/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondRepoError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: users})
}

// CreateUser handles POST /api/v1/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, email, password (min 8 chars) and role are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "create user failed"})
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.respondRepoError(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: user})
}

// GetUser handles GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

// UpdateUser handles PUT /api/v1/users/:id. Passwords change through the
// auth endpoints, never here.
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email, role and active are required")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, err, "update user")
		return
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.Role = req.Role
	user.Active = *req.Active

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		h.respondRepoError(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

// DeleteUser handles DELETE /api/v1/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := identity(c)
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondRepoError(c, err, "delete user")
		return
	}
	if user.Username == claims.Username {
		badRequest(c, "cannot delete your own account")
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.respondRepoError(c, err, "delete user")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}
