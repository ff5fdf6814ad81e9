package models

import "time"

// DefaultDueIn is how far in the future a task is due when no due date is given.
const DefaultDueIn = 7 * 24 * time.Hour

// Task is a card living in exactly one column.
type Task struct {
	ID             string     `json:"id" gorm:"primaryKey;type:varchar(24)"`
	ParentColumn   string     `json:"parent_column" gorm:"index;type:varchar(24);not null" validate:"required,objectid"`
	Title          string     `json:"title" gorm:"type:varchar(30);not null" validate:"required,min=3,max=30"`
	Content        string     `json:"content,omitempty"`
	CreatedBy      string     `json:"created_by,omitempty" gorm:"type:varchar(24)" validate:"omitempty,objectid"`
	CreatedAt      time.Time  `json:"created_at"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	DueAt          time.Time  `json:"due_at"`
	AssignedTo     string     `json:"assigned_to,omitempty" gorm:"type:varchar(24)" validate:"omitempty,objectid"`
	Comment        string     `json:"comment,omitempty" gorm:"type:varchar(24)" validate:"omitempty,objectid"`
}
