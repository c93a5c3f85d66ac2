package collab

import (
	"context"
	"encoding/json"

	"typst-collab-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AccessDirectory answers the two questions the hub asks the persistence
// layer during a join: may this user enter this project's room, and what
// email should the roster show for them.
type AccessDirectory interface {
	CheckAccess(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
	ResolveEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

type inboundFrame struct {
	client *Client
	env    Envelope
}

// bridgeFrame carries a relayed event across server instances through
// redis. InstanceID lets the publishing instance skip its own frames.
type bridgeFrame struct {
	InstanceID string          `json:"instanceId"`
	DocID      string          `json:"docId"`
	Message    json.RawMessage `json:"message"`
}

type room struct {
	clients map[uuid.UUID]*Client
}

// Hub owns every room and every session. All state transitions happen on
// the single goroutine running Run, so roster mutation and fan-out need no
// locking and every room observes events in hub processing order.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	bridged    chan bridgeFrame

	rooms map[uuid.UUID]*room

	directory  AccessDirectory
	rdb        *redis.Client
	instanceID string
	logger     logger.ILogger
}

const bridgeChannel = "collab_events"

func NewHub(directory AccessDirectory, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 64),
		bridged:    make(chan bridgeFrame, 64),
		rooms:      make(map[uuid.UUID]*room),
		directory:  directory,
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeBridge()
	}

	for {
		select {
		case client := <-h.register:
			h.logger.Info("Hub", "Client connected", map[string]interface{}{"socket_id": client.session.SocketID})

		case client := <-h.unregister:
			h.dropClient(client)

		case frame := <-h.inbound:
			h.handleFrame(frame.client, frame.env)

		case frame := <-h.bridged:
			h.deliverBridged(frame)
		}
	}
}

func (h *Hub) handleFrame(c *Client, env Envelope) {
	switch env.Event {
	case EventJoinDocument:
		h.handleJoin(c, env.Payload)

	case EventEditFile:
		var p EditFilePayload
		if json.Unmarshal(env.Payload, &p) != nil || !c.session.canEmit(p.DocID) {
			return
		}
		h.relay(c, EventRemoteEdit, RemoteEditPayload{
			Filename: p.Filename,
			Changes:  p.Changes,
			UserID:   c.session.UserID.String(),
		})

	case EventCreateNode:
		var p CreateNodePayload
		if json.Unmarshal(env.Payload, &p) != nil || !c.session.canEmit(p.DocID) {
			return
		}
		h.relay(c, EventNodeCreated, NodeCreatedPayload{Path: p.Path, Type: p.Type})

	case EventRenameNode:
		var p RenameNodePayload
		if json.Unmarshal(env.Payload, &p) != nil || !c.session.canEmit(p.DocID) {
			return
		}
		h.relay(c, EventNodeRenamed, NodeRenamedPayload{OldPath: p.OldPath, NewPath: p.NewPath})

	case EventDeleteNode:
		var p DeleteNodePayload
		if json.Unmarshal(env.Payload, &p) != nil || !c.session.canEmit(p.DocID) {
			return
		}
		h.relay(c, EventNodeDeleted, NodeDeletedPayload{Path: p.Path})

	case EventSetMainFile:
		var p SetMainFilePayload
		if json.Unmarshal(env.Payload, &p) != nil || !c.session.canEmit(p.DocID) {
			return
		}
		h.relay(c, EventRemoteSetMain, RemoteSetMainPayload{Path: p.Path})

	case EventCursorChange:
		var p CursorChangePayload
		if json.Unmarshal(env.Payload, &p) != nil || !c.session.canEmit(p.DocID) {
			return
		}
		h.relay(c, EventRemoteCursor, RemoteCursorPayload{
			Filename:  p.Filename,
			Selection: p.Selection,
			UserID:    c.session.UserID.String(),
			Email:     c.session.Email,
		})

	default:
		h.logger.Warn("Hub", "Unknown event dropped", map[string]interface{}{"event": env.Event})
	}
}

// handleJoin gates room entry on project access. The lookup runs on the hub
// loop so a join is serialized with the roster mutation it causes; the
// directory is expected to cache decisions to keep the loop responsive.
func (h *Hub) handleJoin(c *Client, payload json.RawMessage) {
	var p JoinDocumentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	docID, err := uuid.Parse(p.DocID)
	if err != nil {
		h.sendError(c, "Invalid document id")
		return
	}

	// The socket's identity comes from the authenticated handshake, not
	// from the payload.
	ctx := context.Background()
	ok, err := h.directory.CheckAccess(ctx, c.session.UserID, docID)
	if err != nil {
		h.logger.Error("Hub", "Access check failed", map[string]interface{}{"error": err.Error()})
		h.sendError(c, "Auth error")
		return
	}
	if !ok {
		h.sendError(c, "Unauthorized: You do not have access to this project")
		return
	}

	email, err := h.directory.ResolveEmail(ctx, c.session.UserID)
	if err != nil || email == "" {
		email = "Unknown User"
	}

	// A socket holds membership in at most one room. Switching documents
	// leaves the old room first so its roster shrinks and no stale entry
	// keeps receiving fan-out; re-joining the same docId just overwrites
	// the roster entry.
	if c.session.Authorized && c.session.DocID != docID {
		h.leaveRoom(c)
	}
	c.session.DocID = docID
	c.session.Email = email
	c.session.Authorized = true

	r := h.rooms[docID]
	if r == nil {
		r = &room{clients: map[uuid.UUID]*Client{}}
		h.rooms[docID] = r
	}
	r.clients[c.session.SocketID] = c

	h.broadcastRoster(r)
	h.logger.Info("Hub", "User joined project", map[string]interface{}{"email": email, "doc_id": docID})
}

// relay fans payload out to every room member except the sender, then
// publishes the frame for other instances.
func (h *Hub) relay(sender *Client, event string, payload interface{}) {
	r := h.rooms[sender.session.DocID]
	if r == nil {
		return
	}
	msg, err := NewEnvelope(event, payload)
	if err != nil {
		return
	}
	for socketID, member := range r.clients {
		if socketID == sender.session.SocketID {
			continue
		}
		h.deliver(member, msg)
	}
	h.publishBridge(sender.session.DocID, msg)
}

// broadcastRoster sends the full email list to every member, sender
// included. Consumers diff it locally; the server never sends roster deltas.
// Roster frames stay instance-local: each instance only knows its own
// members, so bridging one would overwrite the other instance's fuller
// list with a partial one.
func (h *Hub) broadcastRoster(r *room) {
	emails := make([]string, 0, len(r.clients))
	for _, member := range r.clients {
		emails = append(emails, member.session.Email)
	}
	msg, err := NewEnvelope(EventActiveUsers, emails)
	if err != nil {
		return
	}
	for _, member := range r.clients {
		h.deliver(member, msg)
	}
}

func (h *Hub) deliver(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		// Slow consumer: drop the connection rather than block the loop.
		h.logger.Warn("Hub", "Send buffer full, dropping client", map[string]interface{}{"socket_id": c.session.SocketID})
		h.dropClient(c)
	}
}

func (h *Hub) sendError(c *Client, message string) {
	if msg, err := NewEnvelope(EventError, message); err == nil {
		h.deliver(c, msg)
	}
}

func (h *Hub) dropClient(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)

	if !c.session.Authorized {
		return
	}
	h.leaveRoom(c)
}

// leaveRoom removes the socket from its current room and tells the
// remaining members, deleting the room when it empties.
func (h *Hub) leaveRoom(c *Client) {
	r := h.rooms[c.session.DocID]
	if r == nil {
		return
	}
	delete(r.clients, c.session.SocketID)
	if len(r.clients) == 0 {
		delete(h.rooms, c.session.DocID)
		return
	}
	h.broadcastRoster(r)
}

func (h *Hub) publishBridge(docID uuid.UUID, msg []byte) {
	if h.rdb == nil {
		return
	}
	frame, err := json.Marshal(bridgeFrame{
		InstanceID: h.instanceID,
		DocID:      docID.String(),
		Message:    msg,
	})
	if err != nil {
		return
	}
	h.rdb.Publish(context.Background(), bridgeChannel, frame)
}

func (h *Hub) deliverBridged(frame bridgeFrame) {
	if frame.InstanceID == h.instanceID {
		return
	}
	// A peer's roster lists only its own members; forwarding it would
	// clobber the fuller local one.
	var env Envelope
	if json.Unmarshal(frame.Message, &env) != nil || env.Event == EventActiveUsers {
		return
	}
	docID, err := uuid.Parse(frame.DocID)
	if err != nil {
		return
	}
	r := h.rooms[docID]
	if r == nil {
		return
	}
	// The sender lives on another instance, so every local member gets it.
	for _, member := range r.clients {
		h.deliver(member, frame.Message)
	}
}

func (h *Hub) subscribeBridge() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var frame bridgeFrame
		if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
			h.logger.Warn("Hub", "Bad bridge frame", map[string]interface{}{"error": err.Error()})
			continue
		}
		h.bridged <- frame
	}
}
