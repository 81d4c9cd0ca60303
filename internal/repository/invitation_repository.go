package repository

import (
	"github.com/taskboard/taskboard-api/internal/models"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create creates a new invitation
func (r *GormInvitationRepository) Create(inv *models.Invitation) error {
	return r.db.Create(inv).Error
}

// FindByID finds an invitation by ID
func (r *GormInvitationRepository) FindByID(id string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByEmail finds the invitation for an email regardless of status
func (r *GormInvitationRepository) FindByEmail(email string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.Where("email = ?", email).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Update persists changes to an invitation
func (r *GormInvitationRepository) Update(inv *models.Invitation) error {
	return r.db.Save(inv).Error
}

// Delete hard-deletes an invitation row
func (r *GormInvitationRepository) Delete(id string) error {
	return r.db.Delete(&models.Invitation{}, "id = ?", id).Error
}

// ListPending returns pending invitations, newest first
func (r *GormInvitationRepository) ListPending() ([]models.Invitation, error) {
	var invs []models.Invitation
	err := r.db.
		Where("status = ?", models.InvitationPending).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}
