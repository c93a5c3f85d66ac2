package reconciler

import (
	"encoding/json"
	"testing"

	"typst-collab-be/internal/collab"
	"typst-collab-be/internal/filetree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNodeEmitsCommand(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.rec.CreateNode("root/chapters", filetree.NodeFolder))
	require.NoError(t, f.rec.CreateNode("chapters/one.typ", filetree.NodeFile))

	emits := f.transport.all()
	require.Len(t, emits, 2)
	p := emits[1].payload.(collab.CreateNodePayload)
	assert.Equal(t, "chapters/one.typ", p.Path, "legacy prefix is stripped before replication")
	assert.Equal(t, "file", p.Type)

	assert.NotNil(t, f.rec.Tree().Find(filetree.ParsePath("chapters/one.typ")))
}

func TestCreateNodeRequiresExistingParent(t *testing.T) {
	f := newFixture(t)

	err := f.rec.CreateNode("missing/one.typ", filetree.NodeFile)
	assert.ErrorIs(t, err, filetree.ErrParentNotFound)
	assert.Empty(t, f.transport.all(), "failed mutations must not replicate")
}

func TestDeleteNodeRefusesMainFile(t *testing.T) {
	f := newFixture(t)

	err := f.rec.DeleteNode("main.typ")
	assert.ErrorIs(t, err, filetree.ErrMainFile)
	assert.Empty(t, f.transport.all())
	assert.NotNil(t, f.rec.Tree().Find(filetree.ParsePath("main.typ")))
}

func TestDeleteNodeRefusesFolderHoldingMainFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rec.CreateNode("chapters", filetree.NodeFolder))
	require.NoError(t, f.rec.CreateNode("chapters/entry.typ", filetree.NodeFile))
	require.NoError(t, f.rec.SetMainFile("chapters/entry.typ"))

	err := f.rec.DeleteNode("chapters")
	assert.ErrorIs(t, err, filetree.ErrMainFile)
}

func TestDeleteOpenFileFallsBackToMain(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rec.OpenFile("notes.md"))

	require.NoError(t, f.rec.DeleteNode("notes.md"))

	assert.Equal(t, "main.typ", f.rec.OpenPath())
	assert.Equal(t, "= Title", f.rec.Buffer())
}

func TestRenameFolderRebasesOpenPath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rec.CreateNode("chapters", filetree.NodeFolder))
	require.NoError(t, f.rec.CreateNode("chapters/one.typ", filetree.NodeFile))
	require.NoError(t, f.rec.OpenFile("chapters/one.typ"))

	require.NoError(t, f.rec.RenameNode("chapters", "parts"))

	assert.Equal(t, "parts/one.typ", f.rec.OpenPath())
}

func TestSetMainFileReplicates(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.rec.SetMainFile("notes.md"))

	emits := f.transport.all()
	require.Len(t, emits, 1)
	p := emits[0].payload.(collab.SetMainFilePayload)
	assert.Equal(t, "notes.md", p.Path)

	main := f.rec.Tree().MainFile()
	require.NotNil(t, main)
	assert.Equal(t, "notes.md", main.FullPath)
}

func TestApplyNodeCreatedUpdatesMirror(t *testing.T) {
	f := newFixture(t)

	f.rec.ApplyNodeCreated(collab.NodeCreatedPayload{Path: "chapters", Type: "folder"})
	f.rec.ApplyNodeCreated(collab.NodeCreatedPayload{Path: "chapters/one.typ", Type: "file"})

	assert.NotNil(t, f.rec.Tree().Find(filetree.ParsePath("chapters/one.typ")))
	assert.Empty(t, f.transport.all(), "remote commands must not be re-replicated")
}

func TestApplyNodeRenamedMovesOpenFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rec.OpenFile("notes.md"))

	f.rec.ApplyNodeRenamed(collab.NodeRenamedPayload{OldPath: "notes.md", NewPath: "readme.md"})

	assert.Equal(t, "readme.md", f.rec.OpenPath())
	assert.Nil(t, f.rec.Tree().Find(filetree.ParsePath("notes.md")))
}

func TestApplyNodeDeletedFallsBackToMain(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rec.OpenFile("notes.md"))

	f.rec.ApplyNodeDeleted(collab.NodeDeletedPayload{Path: "notes.md"})

	assert.Equal(t, "main.typ", f.rec.OpenPath())
}

func TestApplyFailureSchedulesRefresh(t *testing.T) {
	f := newFixture(t)

	fresh := filetree.NewTree()
	require.NoError(t, filetree.Create(fresh, filetree.ParsePath("main.typ"), filetree.NodeFile))
	require.NoError(t, filetree.SetMain(fresh, filetree.ParsePath("main.typ")))
	require.NoError(t, filetree.SetFileData(fresh, filetree.ParsePath("main.typ"), "= Healed"))
	f.store.fresh = fresh

	// Deleting a path the mirror never had means the mirror diverged.
	f.rec.ApplyNodeDeleted(collab.NodeDeletedPayload{Path: "phantom.typ"})
	f.rec.Flush()

	assert.Equal(t, "= Healed", f.rec.Buffer())
}

func TestCoversAndRebase(t *testing.T) {
	assert.True(t, covers("chapters", "chapters/one.typ"))
	assert.True(t, covers("chapters/one.typ", "chapters/one.typ"))
	assert.False(t, covers("chapters", "chapters2/one.typ"))

	moved, ok := rebase("chapters/one.typ", "chapters", "parts")
	require.True(t, ok)
	assert.Equal(t, "parts/one.typ", moved)

	_, ok = rebase("other.typ", "chapters", "parts")
	assert.False(t, ok)

	moved, ok = rebase("chapters", "chapters", "parts")
	require.True(t, ok)
	assert.Equal(t, "parts", moved)
}

func TestDispatchRoutesEnvelope(t *testing.T) {
	f := newFixture(t)

	payload, err := newTestEnvelope(collab.EventNodeCreated, collab.NodeCreatedPayload{Path: "extra.typ", Type: "file"})
	require.NoError(t, err)
	f.rec.HandleEnvelope(payload)

	assert.NotNil(t, f.rec.Tree().Find(filetree.ParsePath("extra.typ")))

	bad := collab.Envelope{Event: collab.EventNodeCreated, Payload: []byte("{broken")}
	f.rec.HandleEnvelope(bad) // must not panic

	errEnv, err := newTestEnvelope(collab.EventError, "Unauthorized")
	require.NoError(t, err)
	f.rec.HandleEnvelope(errEnv)
	assert.Contains(t, f.notified(), "error: Unauthorized")
}

func newTestEnvelope(event string, payload interface{}) (collab.Envelope, error) {
	raw, err := collab.NewEnvelope(event, payload)
	if err != nil {
		return collab.Envelope{}, err
	}
	var env collab.Envelope
	err = json.Unmarshal(raw, &env)
	return env, err
}
