package reconciler

import (
	"typst-collab-be/internal/collab"
	"typst-collab-be/internal/filetree"
)

// HandleRoster consumes a full roster broadcast. The server never sends
// diffs; joins and leaves are derived here against the previous roster.
// When an email leaves, every cursor decoration attributed to it is removed;
// the server does not track per-file cursor ownership, so cleanup is a
// receiver responsibility.
func (r *Reconciler) HandleRoster(emails []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := make(map[string]bool, len(r.prevRoster))
	for _, email := range r.prevRoster {
		prev[email] = true
	}
	next := make(map[string]bool, len(emails))
	for _, email := range emails {
		next[email] = true
	}

	if len(r.prevRoster) > 0 {
		for _, email := range emails {
			if !prev[email] {
				r.ui.Notify("info", email+" joined")
			}
		}
	}
	for _, email := range r.prevRoster {
		if !next[email] {
			r.ui.Notify("warning", email+" left")
			if _, ok := r.cursors[email]; ok {
				delete(r.cursors, email)
				r.ui.ClearCursor(email)
			}
		}
	}

	r.prevRoster = append([]string(nil), emails...)
}

// Roster returns the last received roster.
func (r *Reconciler) Roster() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prevRoster...)
}

// HandleRemoteCursor stores the peer's position and renders a decoration
// only when the cursor sits in the file currently open here. State is kept
// either way, so reopening the file restores the decoration without a
// round-trip.
func (r *Reconciler) HandleRemoteCursor(p collab.RemoteCursorPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cursors[p.Email] = p
	if filetree.ParsePath(p.Filename).String() == r.openPath.String() {
		r.ui.RenderCursor(p)
	} else {
		r.ui.ClearCursor(p.Email)
	}
}

// EmitCursor forwards the local selection to the room.
func (r *Reconciler) EmitCursor(selection []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loading {
		return
	}
	r.emit(collab.EventCursorChange, collab.CursorChangePayload{
		DocID:     r.docID.String(),
		Filename:  r.openPath.String(),
		Selection: selection,
	})
}
