package todos

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/types"
)

type TodoDTO struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	Task        string             `json:"task"`
	Priority    enums.TodoPriority `json:"priority"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	Completed   bool               `json:"completed"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type CreateTodoRequest struct {
	Task     string     `json:"task" validate:"required,max=1000"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

type UpdateTodoRequest struct {
	Task      *string            `json:"task" validate:"omitempty,min=1,max=1000"`
	Priority  *string            `json:"priority"`
	DueDate   types.NullableTime `json:"due_date"`
	Completed *bool              `json:"completed"`
}

type ListFilter struct {
	Completed *bool
	OwnerID   *uuid.UUID
}

func FromModel(t models.Todo) TodoDTO {
	return TodoDTO{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Task:        t.Task,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
