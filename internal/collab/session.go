package collab

import "github.com/google/uuid"

// Session is the per-socket authorization state. It is created on connect,
// populated exactly once by a successful join and destroyed with the
// socket. Only the hub loop reads or writes it after registration.
type Session struct {
	SocketID   uuid.UUID
	UserID     uuid.UUID
	Email      string
	DocID      uuid.UUID
	Authorized bool
}

// canEmit is the sole access-control check for relayed events. It runs per
// frame, not only at join: a buggy or malicious client can send any docId
// it likes in a payload.
func (s *Session) canEmit(docID string) bool {
	return s.Authorized && s.DocID.String() == docID
}
