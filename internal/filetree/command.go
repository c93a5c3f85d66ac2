package filetree

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("filetree: node not found")
	ErrParentNotFound = errors.New("filetree: parent folder not found")
	ErrNotAFolder     = errors.New("filetree: parent is not a folder")
	ErrExists         = errors.New("filetree: node already exists")
	ErrMainFile       = errors.New("filetree: cannot delete the main file")
	ErrNotAFile       = errors.New("filetree: node is not a file")
)

// The four replication commands below are pure mutations of a tree mirror:
// no I/O, deterministic, so two mirrors fed the same command sequence stay
// identical. Receivers apply them as delivered; validation that needs local
// context (e.g. refusing to delete the main file) happens at the
// originating client before the command is emitted.

// Create inserts an empty node at path. The parent folder must already
// exist: intermediate folders are replicated by their own earlier commands,
// never invented by the receiver.
func Create(root *Node, p Path, nodeType NodeType) error {
	if p.IsRoot() {
		return ErrExists
	}
	parent := root.Find(p.Parent())
	if parent == nil {
		return fmt.Errorf("%w: %s", ErrParentNotFound, p.Parent())
	}
	if parent.Type != NodeFolder {
		return fmt.Errorf("%w: %s", ErrNotAFolder, p.Parent())
	}
	if _, taken := parent.Children[p.Leaf()]; taken {
		return fmt.Errorf("%w: %s", ErrExists, p)
	}
	if nodeType == NodeFolder {
		parent.Children[p.Leaf()] = newFolder(p.Leaf(), p.String())
	} else {
		parent.Children[p.Leaf()] = newFile(p.Leaf(), p.String(), "")
	}
	return nil
}

// Rename moves the node at oldPath to newPath: deep-copy, delete the old
// entry, insert the copy under the new parent and re-derive FullPath for
// the node and every descendant.
func Rename(root *Node, oldPath, newPath Path) error {
	node := root.Find(oldPath)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, oldPath)
	}
	newParent := root.Find(newPath.Parent())
	if newParent == nil {
		return fmt.Errorf("%w: %s", ErrParentNotFound, newPath.Parent())
	}
	if newParent.Type != NodeFolder {
		return fmt.Errorf("%w: %s", ErrNotAFolder, newPath.Parent())
	}
	if existing := newParent.Children[newPath.Leaf()]; existing != nil && existing != node {
		return fmt.Errorf("%w: %s", ErrExists, newPath)
	}

	moved := node.Clone()
	moved.Name = newPath.Leaf()

	oldParent := root.Find(oldPath.Parent())
	delete(oldParent.Children, oldPath.Leaf())
	newParent.Children[newPath.Leaf()] = moved
	moved.rederivePaths(newPath.Parent())
	return nil
}

// Delete removes the node at path from its parent folder.
func Delete(root *Node, p Path) error {
	if p.IsRoot() {
		return ErrNotFound
	}
	parent := root.Find(p.Parent())
	if parent == nil || parent.Children == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if _, ok := parent.Children[p.Leaf()]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	delete(parent.Children, p.Leaf())
	return nil
}

// SetMain flags the file at path as the compilation entry point. Every
// other IsMain flag is cleared first, keeping the one-main-file invariant.
// The walk is linear in tree size, which stays small for project trees.
func SetMain(root *Node, p Path) error {
	target := root.Find(p)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if target.Type != NodeFile {
		return fmt.Errorf("%w: %s", ErrNotAFile, p)
	}
	root.Walk(func(n *Node) {
		n.IsMain = false
	})
	target.IsMain = true
	return nil
}

// SetFileData replaces the content of the file at path.
func SetFileData(root *Node, p Path, data string) error {
	node := root.Find(p)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if node.Type != NodeFile {
		return fmt.Errorf("%w: %s", ErrNotAFile, p)
	}
	node.Data = data
	return nil
}

// FileData returns the content of the file at path.
func FileData(root *Node, p Path) (string, error) {
	node := root.Find(p)
	if node == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if node.Type != NodeFile {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, p)
	}
	return node.Data, nil
}
