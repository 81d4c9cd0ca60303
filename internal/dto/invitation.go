package dto

import (
	"time"

	"github.com/taskboard/taskboard-api/internal/models"
)

// InvitationDTO represents an invitation in API responses
type InvitationDTO struct {
	ID        string                  `json:"id"`
	Email     string                  `json:"email"`
	InvitedBy string                  `json:"invited_by"`
	Role      models.UserRole         `json:"role"`
	Status    models.InvitationStatus `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
}

// ToInvitationDTO converts an Invitation model to InvitationDTO
func ToInvitationDTO(inv models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:        inv.ID,
		Email:     inv.Email,
		InvitedBy: inv.InvitedByID,
		Role:      inv.Role,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt,
	}
}

// ToInvitationDTOs converts a list of invitations.
func ToInvitationDTOs(invs []models.Invitation) []InvitationDTO {
	dtos := make([]InvitationDTO, len(invs))
	for i, inv := range invs {
		dtos[i] = ToInvitationDTO(inv)
	}
	return dtos
}
