package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/notify"
	"github.com/taskboard/taskboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvitationAccepted = errors.New("this user has already accepted an invitation and may already have an account")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvalidRole        = errors.New("role must be admin or employee")
)

// InvitationService handles onboarding invitations.
type InvitationService struct {
	invRepo    repository.InvitationRepository
	dispatcher *notify.Dispatcher
	baseURL    string
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(invRepo repository.InvitationRepository, dispatcher *notify.Dispatcher, baseURL string) *InvitationService {
	return &InvitationService{
		invRepo:    invRepo,
		dispatcher: dispatcher,
		baseURL:    baseURL,
	}
}

// InviteInput represents an invitation request.
type InviteInput struct {
	Email     string
	InviterID string
	// Role is optional on re-invites: a pending invitation keeps its
	// original role unless one is supplied.
	Role models.UserRole
}

// Invite creates or refreshes an invitation. A pending invitation for the
// same email is updated in place rather than duplicated; an accepted one is
// never touched. On success the invitation email goes out with the signup
// link and target role.
func (s *InvitationService) Invite(input InviteInput) (*models.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if input.Role != "" && !models.ValidRole(string(input.Role)) {
		return nil, ErrInvalidRole
	}

	existing, err := s.invRepo.FindByEmail(email)
	switch {
	case err == nil:
		if existing.Status == models.InvitationAccepted {
			return nil, ErrInvitationAccepted
		}

		existing.InvitedByID = input.InviterID
		existing.CreatedAt = time.Now()
		if input.Role != "" {
			existing.Role = input.Role
		}
		if err := s.invRepo.Update(existing); err != nil {
			return nil, fmt.Errorf("failed to refresh invitation: %w", err)
		}

		s.sendInvitationEmail(existing)
		return existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		role := input.Role
		if role == "" {
			role = models.RoleEmployee
		}

		inv := &models.Invitation{
			Email:       email,
			InvitedByID: input.InviterID,
			Role:        role,
			Status:      models.InvitationPending,
		}
		if err := s.invRepo.Create(inv); err != nil {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}

		s.sendInvitationEmail(inv)
		return inv, nil

	default:
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}
}

// Revoke hard-deletes an invitation. A later invite for the same email
// starts from a clean slate.
func (s *InvitationService) Revoke(id string) error {
	if _, err := s.invRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}

	if err := s.invRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	return nil
}

// Accept marks the pending invitation for an email as accepted. A missing
// invitation is not an error: self-signup without one is tolerated and
// returns nil.
func (s *InvitationService) Accept(email, newUserID string) (*models.Invitation, error) {
	inv, err := s.invRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}

	if inv.Status != models.InvitationPending {
		return nil, nil
	}

	inv.Status = models.InvitationAccepted
	if err := s.invRepo.Update(inv); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return inv, nil
}

// ListPending returns pending invitations, newest first.
func (s *InvitationService) ListPending() ([]models.Invitation, error) {
	invs, err := s.invRepo.ListPending()
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invs, nil
}

func (s *InvitationService) sendInvitationEmail(inv *models.Invitation) {
	link := s.baseURL + "/auth/signup?email=" + url.QueryEscape(inv.Email)
	s.dispatcher.Enqueue(notify.InvitationEmail(inv.Email, string(inv.Role), link))
}
