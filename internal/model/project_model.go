package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project rows store the full file-tree snapshot as JSONB in the exact
// shape clients exchange, so open/save round-trips need no translation.
// SharedUsers is a JSONB array of user ids.
type Project struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"type:varchar(255);not null"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	SharedUsers datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Tree        datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}
