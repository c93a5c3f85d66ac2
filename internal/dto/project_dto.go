package dto

import (
	"time"

	"typst-collab-be/internal/filetree"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Title string `json:"title" validate:"required"`
	// Template, when present, seeds the project instead of the blank
	// skeleton (e.g. an imported archive the frontend already expanded).
	Template *filetree.Node `json:"template,omitempty"`
}

type CreateProjectResponse struct {
	Id uuid.UUID `json:"id"`
}

type ProjectSummaryResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Owner     bool      `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ShowProjectResponse struct {
	Id          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Tree        *filetree.Node `json:"tree"`
	SharedUsers []uuid.UUID    `json:"shared_users"`
	Owner       bool           `json:"owner"`
}

type SaveTreeRequest struct {
	Tree *filetree.Node `json:"tree" validate:"required"`
}

type ShareProjectRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CompileRequest struct {
	FileTree *filetree.Node `json:"fileTree" validate:"required"`
	Format   string         `json:"format"`
}
