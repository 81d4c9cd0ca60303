package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard-api/internal/dto"
	apierrors "github.com/taskboard/taskboard-api/internal/errors"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all accounts plus pending invitations as invited
// entries. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	entries, err := h.userService.ListDirectory()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	dtos := make([]dto.DirectoryEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = dto.ToDirectoryEntryDTO(entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dtos,
	})
}

// UpdateUserRole changes a user's role. Admin only.
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	type UpdateRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateRole(c.Param("id"), models.UserRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, err.Error())
		default:
			apierrors.InternalError(c, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
