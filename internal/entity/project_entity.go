package entity

import (
	"time"

	"typst-collab-be/internal/filetree"

	"github.com/google/uuid"
)

// Project is one collaborative document: a tree snapshot owned by a user
// and optionally shared with others. The tree is the persisted mirror every
// client reloads verbatim on open.
type Project struct {
	Id          uuid.UUID
	Title       string
	UserId      uuid.UUID
	SharedUsers []uuid.UUID
	Tree        *filetree.Node
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccessibleBy reports whether the user owns the project or appears in its
// shared-user list.
func (p *Project) AccessibleBy(userID uuid.UUID) bool {
	if p.UserId == userID {
		return true
	}
	for _, shared := range p.SharedUsers {
		if shared == userID {
			return true
		}
	}
	return false
}
