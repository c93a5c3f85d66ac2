package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const TopicSnapshotSave = "PROJECT_SNAPSHOT_SAVE"

// SnapshotSaveMessage asks the consumer to persist a full-tree snapshot.
// The tree travels as raw JSON; the consumer writes it to the snapshot
// column without re-interpreting it.
type SnapshotSaveMessage struct {
	ProjectId  uuid.UUID       `json:"project_id"`
	Tree       json.RawMessage `json:"tree"`
	OccurredAt time.Time       `json:"occurred_at"`
}
