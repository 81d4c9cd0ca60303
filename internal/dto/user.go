package dto

import (
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FullName  string            `json:"full_name"`
	Role      models.UserRole   `json:"role"`
	Status    models.UserStatus `json:"status"`
	AvatarURL string            `json:"avatar_url,omitempty"`
}

// DirectoryEntryDTO is one row of the admin user list; pending invitations
// appear with status "invited" and no full name.
type DirectoryEntryDTO struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	FullName string            `json:"full_name,omitempty"`
	Role     models.UserRole   `json:"role"`
	Status   models.UserStatus `json:"status"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Status:    user.Status,
		AvatarURL: user.AvatarURL,
	}
}

// ToDirectoryEntryDTO converts a directory entry to its response form
func ToDirectoryEntryDTO(entry services.DirectoryEntry) DirectoryEntryDTO {
	return DirectoryEntryDTO{
		ID:       entry.ID,
		Email:    entry.Email,
		FullName: entry.FullName,
		Role:     entry.Role,
		Status:   entry.Status,
	}
}
