package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessibleBy matches projects the user owns or that were shared with
// them. SharedUsers is a JSONB array of user id strings, so membership is
// a containment check.
type AccessibleBy struct {
	UserID uuid.UUID
}

func (s AccessibleBy) Apply(db *gorm.DB) *gorm.DB {
	member := fmt.Sprintf(`["%s"]`, s.UserID)
	return db.Where("user_id = ? OR shared_users @> ?", s.UserID, member)
}
