package services

import (
	"time"

	"taskroom/internal/models"
)

// RegisterInput is the body of a registration request. Name is accepted as a
// fallback for Username.
type RegisterInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
}

// UpdateUserInput carries the fields of a partial user update; nil means unchanged.
type UpdateUserInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

type CreateProjectInput struct {
	Name    string   `json:"name"`
	Profile string   `json:"profile"`
	Members []string `json:"members"`
}

// UpdateProjectInput carries the fields of a partial project update; nil means unchanged.
type UpdateProjectInput struct {
	Name      *string   `json:"name"`
	Profile   *string   `json:"profile"`
	CreatedBy *string   `json:"created_by"`
	Members   *[]string `json:"members"`
	Columns   *[]string `json:"columns"`
}

type CreateColumnInput struct {
	ParentProject string `json:"parent_project"`
	Name          string `json:"name"`
}

// UpdateColumnInput carries the fields of a partial column update; nil means unchanged.
type UpdateColumnInput struct {
	Name  *string   `json:"name"`
	Tasks *[]string `json:"tasks"`
}

type CreateTaskInput struct {
	ParentColumn string     `json:"parent_column"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	DueAt        *time.Time `json:"due_at"`
	AssignedTo   string     `json:"assigned_to"`
}

// UpdateTaskInput carries the fields of a partial task update; nil means
// unchanged and an empty reference clears it.
type UpdateTaskInput struct {
	ParentColumn *string    `json:"parent_column"`
	Title        *string    `json:"title"`
	Content      *string    `json:"content"`
	CreatedBy    *string    `json:"created_by"`
	AssignedTo   *string    `json:"assigned_to"`
	DueAt        *time.Time `json:"due_at"`
	Comment      *string    `json:"comment"`
}

// ProjectSummary is the per-project entry returned for a user's projects.
type ProjectSummary struct {
	Columns   models.IDList `json:"columns"`
	CreatedBy string        `json:"created_by,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Members   models.IDList `json:"members"`
	Name      string        `json:"name"`
	Profile   string        `json:"profile"`
}

type TaskTitle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ColumnData struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Tasks []TaskTitle `json:"tasks"`
}

// ProjectData is a project with its columns and their task titles resolved.
type ProjectData struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Profile   string        `json:"profile"`
	CreatedBy string        `json:"created_by,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Columns   []ColumnData  `json:"columns"`
	Members   models.IDList `json:"members"`
}
