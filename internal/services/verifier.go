package services

import (
	"errors"

	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CredentialVerifier checks a login attempt and returns the matching user.
// Two implementations exist: the real bcrypt check against the users table
// and a fixture verifier for development. The choice is made once at startup,
// never inline in business logic.
type CredentialVerifier interface {
	Verify(email, password string) (*models.User, error)
}

// BcryptVerifier verifies credentials against stored bcrypt hashes.
type BcryptVerifier struct {
	userRepo repository.UserRepository
}

// NewBcryptVerifier creates the production verifier.
func NewBcryptVerifier(userRepo repository.UserRepository) *BcryptVerifier {
	return &BcryptVerifier{userRepo: userRepo}
}

func (v *BcryptVerifier) Verify(email, password string) (*models.User, error) {
	user, err := v.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// StaticVerifier accepts a single fixture credential pair. The user row must
// still exist so the rest of the stack resolves roles from the database.
type StaticVerifier struct {
	userRepo repository.UserRepository
	email    string
	password string
}

// NewStaticVerifier creates the fixture verifier.
func NewStaticVerifier(userRepo repository.UserRepository, email, password string) *StaticVerifier {
	return &StaticVerifier{userRepo: userRepo, email: email, password: password}
}

func (v *StaticVerifier) Verify(email, password string) (*models.User, error) {
	if email != v.email || password != v.password {
		return nil, ErrInvalidCredentials
	}

	user, err := v.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}
