package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/taskboard/taskboard-api/internal/constants"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/notify"
	"github.com/taskboard/taskboard-api/internal/repository"
	"github.com/taskboard/taskboard-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("an account with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRequired        = errors.New("email is required")
	ErrFullNameRequired     = errors.New("full name is required")
	ErrResetTokenInvalid    = errors.New("reset token is invalid or expired")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles signup, login, provisioning, and password reset.
type AuthService struct {
	userRepo    repository.UserRepository
	invitations *InvitationService
	verifier    CredentialVerifier
	dispatcher  *notify.Dispatcher
	baseURL     string
	alertEmail  string
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	invitations *InvitationService,
	verifier CredentialVerifier,
	dispatcher *notify.Dispatcher,
	baseURL string,
	alertEmail string,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		invitations: invitations,
		verifier:    verifier,
		dispatcher:  dispatcher,
		baseURL:     baseURL,
		alertEmail:  alertEmail,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// Signup creates a new user. A pending invitation for the email, if one
// exists, is accepted and decides the role; otherwise the user becomes an
// employee and an admin alert goes out for the uninvited signup.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrFullNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user, err := s.createUser(email, input.Password, strings.TrimSpace(input.FullName), models.RoleEmployee)
	if err != nil {
		return nil, err
	}

	invitation, err := s.invitations.Accept(email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}
	if invitation != nil && invitation.Role != user.Role {
		user.Role = invitation.Role
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("failed to apply invited role: %w", err)
		}
	}

	verifyLink := s.baseURL + "/auth/verify?email=" + url.QueryEscape(email)
	s.dispatcher.Enqueue(notify.RegistrationEmail(email, user.FullName, verifyLink))

	if invitation == nil && s.alertEmail != "" {
		s.dispatcher.Enqueue(notify.AdminAlertEmail(
			s.alertEmail,
			"Uninvited signup",
			fmt.Sprintf("A new account was created without an invitation: %s", email),
		))
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user. The first
// successful login of an invited account activates it.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.verifier.Verify(strings.ToLower(strings.TrimSpace(input.Email)), input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	if user.Status == models.UserStatusInvited {
		user.Status = models.UserStatusActive
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("failed to activate user: %w", err)
		}
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ProvisionInput is the payload of the backend-privileged provisioning
// endpoints.
type ProvisionInput struct {
	Email    string
	Password string
	FullName string
	Role     models.UserRole
}

// ProvisionInvited creates a pre-confirmed user with the given role and
// accepts any pending invitation for the email. The account stays in the
// invited status until its first login.
func (s *AuthService) ProvisionInvited(input ProvisionInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrFullNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleEmployee
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user, err := s.createUser(email, input.Password, strings.TrimSpace(input.FullName), role)
	if err != nil {
		return nil, err
	}

	user.Status = models.UserStatusInvited
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to mark user invited: %w", err)
	}

	if _, err := s.invitations.Accept(email, user.ID); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return user, nil
}

// ProvisionAdmin creates a user and promotes it to admin.
func (s *AuthService) ProvisionAdmin(input ProvisionInput) (*models.User, error) {
	input.Role = models.RoleEmployee
	user, err := s.ProvisionInvited(input)
	if err != nil {
		return nil, err
	}

	user.Role = models.RoleAdmin
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}

	return user, nil
}

// RequestPasswordReset issues a reset token and emails the reset link.
// Unknown emails are ignored so the endpoint cannot be used to enumerate
// accounts.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiry := time.Now().Add(constants.ResetTokenTTLMinutes * time.Minute)
	user.ResetTokenHash = utils.HashToken(token)
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetLink := s.baseURL + "/auth/update-password?token=" + url.QueryEscape(token)
	s.dispatcher.Enqueue(notify.PasswordResetEmail(user.Email, user.FullName, resetLink))

	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.FindByResetTokenHash(utils.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		return ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashed)
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *AuthService) createUser(email, password, fullName string, role models.UserRole) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashed),
		Role:         role,
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
