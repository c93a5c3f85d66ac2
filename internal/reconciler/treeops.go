package reconciler

import (
	"strings"

	"typst-collab-be/internal/collab"
	"typst-collab-be/internal/filetree"
)

// Remote tree commands arrive already validated by their originator; a
// local apply failure means the mirror diverged (e.g. a rename raced an
// edit) and is recovered by scheduling a snapshot refresh, never surfaced
// as an error.

func (r *Reconciler) ApplyNodeCreated(p collab.NodeCreatedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := filetree.Create(r.tree, filetree.ParsePath(p.Path), filetree.NodeType(p.Type)); err != nil {
		r.refreshNeeded = true
		r.scheduleFlushLocked()
		return
	}
	r.ui.RenderExplorer(r.tree.Clone())
	r.ui.Notify("info", "New "+p.Type+" created: "+p.Path)
}

func (r *Reconciler) ApplyNodeRenamed(p collab.NodeRenamedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldPath := filetree.ParsePath(p.OldPath)
	newPath := filetree.ParsePath(p.NewPath)
	if err := filetree.Rename(r.tree, oldPath, newPath); err != nil {
		r.refreshNeeded = true
		r.scheduleFlushLocked()
		return
	}
	r.ui.RenderExplorer(r.tree.Clone())

	// The open file may have moved, directly or inside a renamed folder.
	if moved, ok := rebase(r.openPath.String(), oldPath.String(), newPath.String()); ok {
		r.openFileLocked(moved)
	}
}

func (r *Reconciler) ApplyNodeDeleted(p collab.NodeDeletedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filetree.ParsePath(p.Path)
	if err := filetree.Delete(r.tree, path); err != nil {
		r.refreshNeeded = true
		r.scheduleFlushLocked()
		return
	}
	r.ui.RenderExplorer(r.tree.Clone())
	r.ui.Notify("warning", "File deleted: "+p.Path)

	// Fall back to the main file if the open one (or its folder) is gone.
	if covers(path.String(), r.openPath.String()) {
		if main := r.tree.MainFile(); main != nil {
			r.openFileLocked(main.FullPath)
		}
	}
}

func (r *Reconciler) ApplyRemoteSetMain(p collab.RemoteSetMainPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := filetree.SetMain(r.tree, filetree.ParsePath(p.Path)); err != nil {
		r.refreshNeeded = true
		r.scheduleFlushLocked()
		return
	}
	r.ui.RenderExplorer(r.tree.Clone())
	r.scheduleFlushLocked()
}

// Local tree mutations: validate, apply to the mirror, then replicate.

func (r *Reconciler) CreateNode(rawPath string, nodeType filetree.NodeType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filetree.ParsePath(rawPath)
	if err := filetree.Create(r.tree, path, nodeType); err != nil {
		return err
	}
	r.ui.RenderExplorer(r.tree.Clone())
	r.emit(collab.EventCreateNode, collab.CreateNodePayload{
		DocID: r.docID.String(),
		Path:  path.String(),
		Type:  string(nodeType),
	})
	r.scheduleFlushLocked()
	return nil
}

func (r *Reconciler) RenameNode(rawOld, rawNew string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldPath := filetree.ParsePath(rawOld)
	newPath := filetree.ParsePath(rawNew)
	if err := filetree.Rename(r.tree, oldPath, newPath); err != nil {
		return err
	}
	r.ui.RenderExplorer(r.tree.Clone())
	r.emit(collab.EventRenameNode, collab.RenameNodePayload{
		DocID:   r.docID.String(),
		OldPath: oldPath.String(),
		NewPath: newPath.String(),
	})
	if moved, ok := rebase(r.openPath.String(), oldPath.String(), newPath.String()); ok {
		r.openFileLocked(moved)
	}
	r.scheduleFlushLocked()
	return nil
}

// DeleteNode refuses to delete the compilation entry point; that rule is
// enforced here, at the originator, so receivers can trust the command.
func (r *Reconciler) DeleteNode(rawPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filetree.ParsePath(rawPath)
	if node := r.tree.Find(path); node != nil {
		protected := false
		if node.IsMain {
			protected = true
		}
		node.Walk(func(n *filetree.Node) {
			if n.IsMain {
				protected = true
			}
		})
		if protected {
			return filetree.ErrMainFile
		}
	}
	if err := filetree.Delete(r.tree, path); err != nil {
		return err
	}
	r.ui.RenderExplorer(r.tree.Clone())
	r.emit(collab.EventDeleteNode, collab.DeleteNodePayload{
		DocID: r.docID.String(),
		Path:  path.String(),
	})
	if covers(path.String(), r.openPath.String()) {
		if main := r.tree.MainFile(); main != nil {
			r.openFileLocked(main.FullPath)
		}
	}
	r.scheduleFlushLocked()
	return nil
}

func (r *Reconciler) SetMainFile(rawPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filetree.ParsePath(rawPath)
	if err := filetree.SetMain(r.tree, path); err != nil {
		return err
	}
	r.ui.RenderExplorer(r.tree.Clone())
	r.emit(collab.EventSetMainFile, collab.SetMainFilePayload{
		DocID: r.docID.String(),
		Path:  path.String(),
	})
	r.scheduleFlushLocked()
	return nil
}

func (r *Reconciler) emit(event string, payload interface{}) {
	if r.transport.Connected() {
		r.transport.Emit(event, payload)
	}
}

// covers reports whether deleting or moving prefix affects target.
func covers(prefix, target string) bool {
	return target == prefix || strings.HasPrefix(target, prefix+"/")
}

// rebase rewrites target under newPrefix when oldPrefix covers it.
func rebase(target, oldPrefix, newPrefix string) (string, bool) {
	if target == oldPrefix {
		return newPrefix, true
	}
	if strings.HasPrefix(target, oldPrefix+"/") {
		return newPrefix + strings.TrimPrefix(target, oldPrefix), true
	}
	return "", false
}
