package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/repository"
	"gorm.io/gorm"
)

var ErrCommentBodyEmpty = errors.New("comment body cannot be empty")

// CommentService handles the append-only comment thread under a task.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
	}
}

// AddComment appends a comment to a task. The body must be non-empty after
// trimming, and the author must be the task's assignee or an admin. The
// returned comment has the author preloaded for immediate UI echo.
func (s *CommentService) AddComment(taskID string, author *models.User, body string) (*models.Comment, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, ErrCommentBodyEmpty
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !author.IsAdmin() && !task.IsAssignee(author.ID) {
		return nil, ErrTaskPermissionDenied
	}

	comment := &models.Comment{
		TaskID:   task.ID,
		AuthorID: author.ID,
		Body:     trimmed,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID)
}

// ListComments returns a task's thread oldest first.
func (s *CommentService) ListComments(taskID string) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
