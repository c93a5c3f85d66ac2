package collab

import (
	"encoding/json"

	"typst-collab-be/internal/delta"
)

// Wire protocol: every frame is a JSON envelope carrying a named event and
// its payload. Client->server events carry the docId they target; the hub
// re-verifies it against the socket's session on every frame before
// relaying the server->client counterpart to the rest of the room.
const (
	EventJoinDocument = "join-document"
	EventEditFile     = "edit-file"
	EventCreateNode   = "create-node"
	EventRenameNode   = "rename-node"
	EventDeleteNode   = "delete-node"
	EventSetMainFile  = "set-main-file"
	EventCursorChange = "cursor-change"

	EventRemoteEdit    = "remote-edit"
	EventNodeCreated   = "node-created"
	EventNodeRenamed   = "node-renamed"
	EventNodeDeleted   = "node-deleted"
	EventRemoteSetMain = "remote-set-main"
	EventRemoteCursor  = "remote-cursor"
	EventActiveUsers   = "active-users-list"
	EventError         = "error"
)

type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Payload: raw})
}

type JoinDocumentPayload struct {
	DocID  string `json:"docId"`
	UserID string `json:"userId"`
}

type EditFilePayload struct {
	DocID    string         `json:"docId"`
	Filename string         `json:"filename"`
	Changes  []delta.Change `json:"changes"`
}

type RemoteEditPayload struct {
	Filename string         `json:"filename"`
	Changes  []delta.Change `json:"changes"`
	UserID   string         `json:"userId"`
}

type CreateNodePayload struct {
	DocID string `json:"docId"`
	Path  string `json:"path"`
	Type  string `json:"type"`
}

type NodeCreatedPayload struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type RenameNodePayload struct {
	DocID   string `json:"docId"`
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

type NodeRenamedPayload struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

type DeleteNodePayload struct {
	DocID string `json:"docId"`
	Path  string `json:"path"`
}

type NodeDeletedPayload struct {
	Path string `json:"path"`
}

type SetMainFilePayload struct {
	DocID string `json:"docId"`
	Path  string `json:"path"`
}

type RemoteSetMainPayload struct {
	Path string `json:"path"`
}

// Selection stays opaque: it is editor-widget state the server relays
// verbatim and never interprets.
type CursorChangePayload struct {
	DocID     string          `json:"docId"`
	Filename  string          `json:"filename"`
	Selection json.RawMessage `json:"selection"`
}

type RemoteCursorPayload struct {
	Filename  string          `json:"filename"`
	Selection json.RawMessage `json:"selection"`
	UserID    string          `json:"userId"`
	Email     string          `json:"email"`
}
