package repository

import (
	"github.com/taskboard/taskboard-api/internal/models"
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// AssigneeID restricts the list to tasks assigned to this user.
	AssigneeID *string
	Status     *models.TaskStatus
	Page       int
	PageSize   int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination,
	// ordered by created_at descending
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists all fields of a task
	Update(task *models.Task) error

	// Delete hard-deletes a task and its comments in one transaction
	Delete(id string) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID with the author preloaded
	FindByID(id string) (*models.Comment, error)

	// ListByTask returns a task's comments in chronological order
	// (created_at ascending) with authors preloaded
	ListByTask(taskID string) ([]models.Comment, error)
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create creates a new invitation
	Create(inv *models.Invitation) error

	// FindByID finds an invitation by ID
	FindByID(id string) (*models.Invitation, error)

	// FindByEmail finds the invitation for an email regardless of status
	FindByEmail(email string) (*models.Invitation, error)

	// Update persists changes to an invitation
	Update(inv *models.Invitation) error

	// Delete hard-deletes an invitation row (revoke)
	Delete(id string) error

	// ListPending returns pending invitations, newest first
	ListPending() ([]models.Invitation, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByResetTokenHash finds a user by password reset token hash
	FindByResetTokenHash(hash string) (*models.User, error)

	// Update persists all fields of a user
	Update(user *models.User) error

	// List returns all users ordered by created_at
	List() ([]models.User, error)
}
