package reconciler

import (
	"encoding/json"
	"testing"

	"typst-collab-be/internal/collab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstRosterDoesNotAnnounceJoins(t *testing.T) {
	f := newFixture(t)

	f.rec.HandleRoster([]string{"me@example.com", "peer@example.com"})

	assert.Empty(t, f.notified(), "the initial roster includes ourselves, announcing it is noise")
	assert.Equal(t, []string{"me@example.com", "peer@example.com"}, f.rec.Roster())
}

func TestRosterDiffAnnouncesJoinsAndLeaves(t *testing.T) {
	f := newFixture(t)

	f.rec.HandleRoster([]string{"me@example.com"})
	f.rec.HandleRoster([]string{"me@example.com", "peer@example.com"})
	f.rec.HandleRoster([]string{"me@example.com"})

	notes := f.notified()
	require.Len(t, notes, 2)
	assert.Equal(t, "info: peer@example.com joined", notes[0])
	assert.Equal(t, "warning: peer@example.com left", notes[1])
}

func TestLeaveRemovesCursorDecoration(t *testing.T) {
	f := newFixture(t)
	f.rec.HandleRoster([]string{"me@example.com", "peer@example.com"})

	f.rec.HandleRemoteCursor(collab.RemoteCursorPayload{
		Filename:  "main.typ",
		Selection: json.RawMessage(`{}`),
		Email:     "peer@example.com",
	})
	f.mu.Lock()
	rendered := len(f.rendered)
	f.mu.Unlock()
	require.Equal(t, 1, rendered)

	f.rec.HandleRoster([]string{"me@example.com"})

	f.mu.Lock()
	cleared := append([]string(nil), f.cleared...)
	f.mu.Unlock()
	assert.Contains(t, cleared, "peer@example.com")
}

func TestCursorInOtherFileIsStoredNotRendered(t *testing.T) {
	f := newFixture(t)

	f.rec.HandleRemoteCursor(collab.RemoteCursorPayload{
		Filename:  "notes.md",
		Selection: json.RawMessage(`{}`),
		Email:     "peer@example.com",
	})

	f.mu.Lock()
	rendered := len(f.rendered)
	cleared := append([]string(nil), f.cleared...)
	f.mu.Unlock()
	assert.Zero(t, rendered, "cursor in a closed file must not decorate the open buffer")
	assert.Contains(t, cleared, "peer@example.com")
}

func TestReopeningFileRestoresStoredCursor(t *testing.T) {
	f := newFixture(t)

	f.rec.HandleRemoteCursor(collab.RemoteCursorPayload{
		Filename:  "notes.md",
		Selection: json.RawMessage(`{}`),
		Email:     "peer@example.com",
	})

	require.NoError(t, f.rec.OpenFile("notes.md"))

	f.mu.Lock()
	rendered := len(f.rendered)
	f.mu.Unlock()
	assert.Equal(t, 1, rendered, "stored cursor re-renders without a round-trip")
}

func TestLegacyCursorPathMatchesOpenFile(t *testing.T) {
	f := newFixture(t)

	f.rec.HandleRemoteCursor(collab.RemoteCursorPayload{
		Filename:  "root/main.typ",
		Selection: json.RawMessage(`{}`),
		Email:     "peer@example.com",
	})

	f.mu.Lock()
	rendered := len(f.rendered)
	f.mu.Unlock()
	assert.Equal(t, 1, rendered)
}

func TestEmitCursorSuppressedWhileLoading(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.rec.OpenFile("notes.md"))
	f.rec.EmitCursor([]byte(`{"startLineNumber":1}`))
	assert.Empty(t, f.transport.all(), "cursor positions are meaningless mid-swap")
}

func TestEmitCursorCarriesOpenFile(t *testing.T) {
	f := newFixture(t)

	f.rec.EmitCursor([]byte(`{"startLineNumber":2}`))

	emits := f.transport.all()
	require.Len(t, emits, 1)
	p := emits[0].payload.(collab.CursorChangePayload)
	assert.Equal(t, "main.typ", p.Filename)
	assert.JSONEq(t, `{"startLineNumber":2}`, string(p.Selection))
}
