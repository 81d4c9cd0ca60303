package dto

import (
	"time"

	"github.com/taskboard/taskboard-api/internal/models"
)

// CommentDTO represents a comment in API responses, carrying the author's
// display name for immediate UI echo.
type CommentDTO struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:         comment.ID,
		TaskID:     comment.TaskID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.Author.FullName,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt,
	}
}

// ToCommentDTOs converts a thread, keeping its order.
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = ToCommentDTO(c)
	}
	return dtos
}
