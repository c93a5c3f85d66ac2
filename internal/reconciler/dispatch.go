package reconciler

import (
	"encoding/json"

	"typst-collab-be/internal/collab"
)

// HandleEnvelope routes one inbound server frame to the matching apply
// operation. Payloads that fail to decode are dropped; the relay already
// validated the sender, so a bad frame is a transport glitch, not an error
// worth surfacing.
func (r *Reconciler) HandleEnvelope(env collab.Envelope) {
	switch env.Event {
	case collab.EventRemoteEdit:
		var p collab.RemoteEditPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			r.ApplyRemoteEdit(p)
		}
	case collab.EventNodeCreated:
		var p collab.NodeCreatedPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			r.ApplyNodeCreated(p)
		}
	case collab.EventNodeRenamed:
		var p collab.NodeRenamedPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			r.ApplyNodeRenamed(p)
		}
	case collab.EventNodeDeleted:
		var p collab.NodeDeletedPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			r.ApplyNodeDeleted(p)
		}
	case collab.EventRemoteSetMain:
		var p collab.RemoteSetMainPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			r.ApplyRemoteSetMain(p)
		}
	case collab.EventRemoteCursor:
		var p collab.RemoteCursorPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			r.HandleRemoteCursor(p)
		}
	case collab.EventActiveUsers:
		var emails []string
		if json.Unmarshal(env.Payload, &emails) == nil {
			r.HandleRoster(emails)
		}
	case collab.EventError:
		var message string
		if json.Unmarshal(env.Payload, &message) == nil {
			r.ui.Notify("error", message)
		}
	}
}
