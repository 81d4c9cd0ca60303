package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Invitation has no "revoked" status; revoking hard-deletes the row.
// At most one pending invitation exists per email (enforced by the unique
// index plus update-in-place on re-invite).
type Invitation struct {
	ID          string           `gorm:"type:varchar(36);primarykey" json:"id"`
	Email       string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	InvitedByID string           `gorm:"type:varchar(36);not null" json:"invited_by"`
	Role        UserRole         `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	Status      InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`

	// Relations
	InvitedBy User `gorm:"foreignKey:InvitedByID" json:"inviter,omitempty"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
