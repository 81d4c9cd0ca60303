package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/notify"
	"github.com/taskboard/taskboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrInvalidTaskStatus    = errors.New("status must be not_picked, in_progress, or completed")
	ErrInvalidTaskPriority  = errors.New("priority must be low, medium, or high")
	ErrAssigneeNotFound     = errors.New("assignee does not exist")
	ErrTaskPermissionDenied = errors.New("only the task's assignee or an admin can do this")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo   repository.TaskRepository
	userRepo   repository.UserRepository
	dispatcher *notify.Dispatcher
	baseURL    string
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, dispatcher *notify.Dispatcher, baseURL string) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
		baseURL:    baseURL,
	}
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	// AssigneeID restricts results to one user's tasks. Admin callers may
	// leave it nil to list everything.
	AssigneeID *string
	Status     *models.TaskStatus
	Page       int
	PageSize   int
}

// ListTasks returns tasks newest first.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		AssigneeID: input.AssigneeID,
		Status:     input.Status,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with creator and assignee loaded.
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Deadline    *time.Time
	AssigneeID  *string
}

// CreateTask creates a task on behalf of an admin. Status always starts at
// not_picked. When an assignee is set, the assignment notification is
// enqueued after the row is committed.
func (s *TaskService) CreateTask(input CreateTaskInput, creator *models.User) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidTaskPriority(string(priority)) {
		return nil, ErrInvalidTaskPriority
	}

	assignee, err := s.resolveAssignee(input.AssigneeID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusNotPicked,
		Priority:    priority,
		Deadline:    input.Deadline,
		AssigneeID:  input.AssigneeID,
		CreatorID:   creator.ID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if assignee != nil {
		s.notifyAssignment(task, assignee, creator)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
}

// UpdateStatus sets a task's status. Only the assignee or an admin may do
// this; any of the three statuses is a legal target, including moving a
// completed task back. Setting the current status again still writes and
// bumps updated_at.
func (s *TaskService) UpdateStatus(taskID string, newStatus models.TaskStatus, actor *models.User) (*models.Task, error) {
	if !models.ValidTaskStatus(string(newStatus)) {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !actor.IsAdmin() && !task.IsAssignee(actor.ID) {
		return nil, ErrTaskPermissionDenied
	}

	task.Status = newStatus
	task.UpdatedAt = time.Now()
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
}

// UpdateTaskInput represents a full admin edit. Nil pointers leave the field
// untouched; ClearDeadline and ClearAssignee distinguish "set to null" from
// "not provided".
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Deadline      *time.Time
	ClearDeadline bool
	AssigneeID    *string
	ClearAssignee bool
}

// UpdateTask applies an admin edit. Reassignment to a new non-null assignee
// enqueues the assignment notification.
func (s *TaskService) UpdateTask(taskID string, input UpdateTaskInput, actor *models.User) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(string(*input.Status)) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(string(*input.Priority)) {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}

	var newAssignee *models.User
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		reassigned := task.AssigneeID == nil || *task.AssigneeID != *input.AssigneeID

		assignee, err := s.resolveAssignee(input.AssigneeID)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
		if reassigned {
			newAssignee = assignee
		}
	}

	task.UpdatedAt = time.Now()
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if newAssignee != nil {
		s.notifyAssignment(task, newAssignee, actor)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
}

// DeleteTask hard-deletes a task and its comments.
func (s *TaskService) DeleteTask(taskID string) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) resolveAssignee(assigneeID *string) (*models.User, error) {
	if assigneeID == nil {
		return nil, nil
	}

	assignee, err := s.userRepo.FindByID(*assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}

	return assignee, nil
}

func (s *TaskService) notifyAssignment(task *models.Task, assignee, assigner *models.User) {
	link := fmt.Sprintf("%s/mytasks/%s", s.baseURL, task.ID)
	s.dispatcher.Enqueue(notify.TaskAssignmentEmail(
		assignee.Email,
		assignee.FullName,
		task.Title,
		link,
		assigner.FullName,
	))
}
