package services

import (
	"errors"
	"fmt"

	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/repository"
	"gorm.io/gorm"
)

// UserService backs the admin user-management screens.
type UserService struct {
	userRepo repository.UserRepository
	invRepo  repository.InvitationRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, invRepo repository.InvitationRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		invRepo:  invRepo,
	}
}

// DirectoryEntry is one row of the admin user list: either a real account
// or a pending invitation surfaced with the invited status.
type DirectoryEntry struct {
	ID       string
	Email    string
	FullName string
	Role     models.UserRole
	Status   models.UserStatus
}

// ListDirectory returns all accounts plus pending invitations. Pending
// invitations show up as invited entries so admins see who has not signed
// up yet.
func (s *UserService) ListDirectory() ([]DirectoryEntry, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	entries := make([]DirectoryEntry, 0, len(users))
	byEmail := make(map[string]struct{}, len(users))
	for _, u := range users {
		byEmail[u.Email] = struct{}{}
		entries = append(entries, DirectoryEntry{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
			Status:   u.Status,
		})
	}

	pending, err := s.invRepo.ListPending()
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	for _, inv := range pending {
		if _, exists := byEmail[inv.Email]; exists {
			continue
		}
		entries = append(entries, DirectoryEntry{
			ID:     inv.ID,
			Email:  inv.Email,
			Role:   inv.Role,
			Status: models.UserStatusInvited,
		})
	}

	return entries, nil
}

// UpdateRole changes a user's role. Admin-only; the handler enforces that.
func (s *UserService) UpdateRole(userID string, role models.UserRole) (*models.User, error) {
	if !models.ValidRole(string(role)) {
		return nil, ErrInvalidRole
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	return user, nil
}
