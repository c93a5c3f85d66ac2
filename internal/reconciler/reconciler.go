// Package reconciler owns a client's authoritative copy of the shared
// project: the file-tree mirror and the currently open text buffer. It
// applies inbound remote operations, forwards local ones, and coalesces
// edit bursts into a single compile-and-persist cycle. UI components never
// touch the mirror directly; they call the operations exposed here.
package reconciler

import (
	"context"
	"sync"
	"time"

	"typst-collab-be/internal/collab"
	"typst-collab-be/internal/delta"
	"typst-collab-be/internal/filetree"

	"github.com/google/uuid"
)

// Origin tags every buffer mutation with where it came from, so the
// buffer-change listener can tell a local keystroke from an applied remote
// delta and never re-broadcasts the latter. This replaces the shared
// boolean toggle older clients used, which raced across async callbacks.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

// Transport is the outbound half of the collaboration channel.
type Transport interface {
	Emit(event string, payload interface{}) error
	Connected() bool
}

// Compiler renders a project tree; it is an external collaborator.
type Compiler interface {
	Render(ctx context.Context, tree *filetree.Node, format string) ([]byte, error)
}

// SnapshotStore loads and persists full-tree snapshots keyed by project.
type SnapshotStore interface {
	Load(ctx context.Context, projectID uuid.UUID) (*filetree.Node, error)
	Save(ctx context.Context, projectID uuid.UUID, tree *filetree.Node) error
}

// UI receives the side effects the reconciler produces. Implementations
// adapt the actual editor widget and chrome; nil-safe no-op functions are
// substituted for any callback left unset.
type UI struct {
	ReplaceBuffer  func(content string)
	ApplyToBuffer  func(changes []delta.Change)
	RenderExplorer func(tree *filetree.Node)
	RenderOutput   func(rendered []byte)
	RenderCursor   func(cursor collab.RemoteCursorPayload)
	ClearCursor    func(email string)
	Notify         func(level, message string)
}

func (u *UI) fillDefaults() {
	if u.ReplaceBuffer == nil {
		u.ReplaceBuffer = func(string) {}
	}
	if u.ApplyToBuffer == nil {
		u.ApplyToBuffer = func([]delta.Change) {}
	}
	if u.RenderExplorer == nil {
		u.RenderExplorer = func(*filetree.Node) {}
	}
	if u.RenderOutput == nil {
		u.RenderOutput = func([]byte) {}
	}
	if u.RenderCursor == nil {
		u.RenderCursor = func(collab.RemoteCursorPayload) {}
	}
	if u.ClearCursor == nil {
		u.ClearCursor = func(string) {}
	}
	if u.Notify == nil {
		u.Notify = func(string, string) {}
	}
}

type Options struct {
	Debounce      time.Duration // quiescence window before compile+persist
	LoadingSettle time.Duration // grace period after a buffer swap
}

func (o *Options) fillDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = time.Second
	}
	if o.LoadingSettle <= 0 {
		o.LoadingSettle = 150 * time.Millisecond
	}
}

type Reconciler struct {
	mu sync.Mutex

	docID  uuid.UUID
	userID uuid.UUID

	tree     *filetree.Node
	openPath filetree.Path
	buffer   string

	// loading marks a file switch in progress: local emission and buffer
	// application of remote edits are suppressed until the buffer settles,
	// though the mirror keeps updating underneath.
	loading bool

	// refreshNeeded is set when a remote operation could not be applied
	// (path miss, racing rename); the next flush reloads the snapshot
	// instead of trusting the mirror. Lossy but self-healing.
	refreshNeeded bool

	prevRoster []string
	cursors    map[string]collab.RemoteCursorPayload // keyed by email

	transport Transport
	compiler  Compiler
	store     SnapshotStore
	ui        UI
	opts      Options

	debounceTimer *time.Timer
	settleTimer   *time.Timer
}

func New(docID, userID uuid.UUID, tree *filetree.Node, transport Transport, compiler Compiler, store SnapshotStore, ui UI, opts Options) *Reconciler {
	ui.fillDefaults()
	opts.fillDefaults()
	r := &Reconciler{
		docID:     docID,
		userID:    userID,
		tree:      tree,
		transport: transport,
		compiler:  compiler,
		store:     store,
		ui:        ui,
		opts:      opts,
		cursors:   map[string]collab.RemoteCursorPayload{},
	}
	if main := tree.MainFile(); main != nil {
		r.openPath = filetree.ParsePath(main.FullPath)
		r.buffer = main.Data
	}
	return r
}

// Tree returns a deep copy of the mirror for read-only consumers.
func (r *Reconciler) Tree() *filetree.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Clone()
}

func (r *Reconciler) OpenPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openPath.String()
}

func (r *Reconciler) Buffer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffer
}

// OnBufferChange is the editor widget's change listener. Only local,
// settled changes are forwarded; remote applications and the spurious
// firing during a buffer swap are dropped here.
func (r *Reconciler) OnBufferChange(origin Origin, changes []delta.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if origin != OriginLocal || r.loading || len(changes) == 0 {
		return
	}

	r.buffer = delta.Apply(r.buffer, changes)

	if r.transport.Connected() {
		r.transport.Emit(collab.EventEditFile, collab.EditFilePayload{
			DocID:    r.docID.String(),
			Filename: r.openPath.String(),
			Changes:  changes,
		})
	}
	r.scheduleFlushLocked()
}

// ApplyRemoteEdit applies a relayed delta batch to the mirror and, when the
// affected file is the open one, to the live buffer. A filename the mirror
// does not know is dropped silently and heals through a snapshot refresh.
func (r *Reconciler) ApplyRemoteEdit(p collab.RemoteEditPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filetree.ParsePath(p.Filename)
	current, err := filetree.FileData(r.tree, path)
	if err != nil {
		r.refreshNeeded = true
		r.scheduleFlushLocked()
		return
	}

	filetree.SetFileData(r.tree, path, delta.Apply(current, p.Changes))

	if path.String() == r.openPath.String() && !r.loading {
		r.buffer = delta.Apply(r.buffer, p.Changes)
		r.ui.ApplyToBuffer(p.Changes)
	}
	r.scheduleFlushLocked()
}

// OpenFile switches the live buffer to another file of the mirror. While
// the swap settles, the change listener's first firings are ignored so the
// replacement itself is not mistaken for an edit.
func (r *Reconciler) OpenFile(rawPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openFileLocked(rawPath)
}

func (r *Reconciler) openFileLocked(rawPath string) error {
	path := filetree.ParsePath(rawPath)
	data, err := filetree.FileData(r.tree, path)
	if err != nil {
		return err
	}

	r.loading = true
	r.openPath = path
	r.buffer = data
	r.ui.ReplaceBuffer(data)

	// Decorations belong to the previous file; state is kept so cursors
	// re-render without a round-trip when their file is reopened.
	for email, cursor := range r.cursors {
		if filetree.ParsePath(cursor.Filename).String() != path.String() {
			r.ui.ClearCursor(email)
		} else {
			r.ui.RenderCursor(cursor)
		}
	}

	if r.settleTimer != nil {
		r.settleTimer.Stop()
	}
	r.settleTimer = time.AfterFunc(r.opts.LoadingSettle, func() {
		r.mu.Lock()
		r.loading = false
		r.mu.Unlock()
	})
	return nil
}

// scheduleFlushLocked arms (or re-arms) the quiescence timer. Bursts of
// local and remote edits collapse into one sync -> compile -> persist run.
func (r *Reconciler) scheduleFlushLocked() {
	if r.debounceTimer != nil {
		r.debounceTimer.Stop()
	}
	r.debounceTimer = time.AfterFunc(r.opts.Debounce, r.flush)
}

func (r *Reconciler) flush() {
	r.mu.Lock()
	if r.loading {
		r.scheduleFlushLocked()
		r.mu.Unlock()
		return
	}

	ctx := context.Background()

	if r.refreshNeeded {
		if fresh, err := r.store.Load(ctx, r.docID); err == nil && fresh != nil {
			r.tree = fresh
			if data, err := filetree.FileData(r.tree, r.openPath); err == nil {
				r.buffer = data
				r.ui.ReplaceBuffer(data)
			}
			r.ui.RenderExplorer(r.tree.Clone())
			r.refreshNeeded = false
		}
	}

	// Resync the mirror from the buffer before handing the tree out.
	filetree.SetFileData(r.tree, r.openPath, r.buffer)
	tree := r.tree.Clone()
	r.mu.Unlock()

	rendered, err := r.compiler.Render(ctx, tree, "svg")
	if err != nil {
		// Compile failures go to the output pane verbatim and never
		// interrupt collaboration.
		r.ui.Notify("error", err.Error())
	} else {
		r.ui.RenderOutput(rendered)
	}

	if err := r.store.Save(ctx, r.docID, tree); err != nil {
		r.ui.Notify("warning", "Autosave failed: "+err.Error())
	}
}

// Flush forces the debounced cycle to run now. Exposed for explicit save
// actions and tests.
func (r *Reconciler) Flush() {
	r.mu.Lock()
	if r.debounceTimer != nil {
		r.debounceTimer.Stop()
	}
	r.mu.Unlock()
	r.flush()
}
