package filetree

import "strings"

type NodeType string

const (
	NodeFile   NodeType = "file"
	NodeFolder NodeType = "folder"
)

// Node is one entry of the hierarchical project tree. The JSON layout
// matches the snapshot format persisted per project: folders carry a
// children map keyed by child name, files carry their content (text, or a
// base64 data URL for binary assets) and optionally the isMain flag that
// marks the compilation entry point. At most one file in a tree may have
// IsMain set.
type Node struct {
	Type     NodeType         `json:"type"`
	Name     string           `json:"name"`
	FullPath string           `json:"fullPath,omitempty"`
	Data     string           `json:"data,omitempty"`
	IsMain   bool             `json:"isMain,omitempty"`
	Children map[string]*Node `json:"children,omitempty"`
}

// NewTree returns an empty root folder.
func NewTree() *Node {
	return &Node{
		Type:     NodeFolder,
		Name:     "root",
		Children: map[string]*Node{},
	}
}

func newFile(name, fullPath, data string) *Node {
	return &Node{Type: NodeFile, Name: name, FullPath: fullPath, Data: data}
}

func newFolder(name, fullPath string) *Node {
	return &Node{Type: NodeFolder, Name: name, FullPath: fullPath, Children: map[string]*Node{}}
}

// Find walks the tree from root and returns the node at path, or nil.
func (root *Node) Find(p Path) *Node {
	current := root
	for _, segment := range p.Segments() {
		if current == nil || current.Children == nil {
			return nil
		}
		current = current.Children[segment]
	}
	return current
}

// Clone deep-copies the node and, for folders, every descendant.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Type:     n.Type,
		Name:     n.Name,
		FullPath: n.FullPath,
		Data:     n.Data,
		IsMain:   n.IsMain,
	}
	if n.Children != nil {
		clone.Children = make(map[string]*Node, len(n.Children))
		for name, child := range n.Children {
			clone.Children[name] = child.Clone()
		}
	}
	return clone
}

// Walk visits every node below root in no particular order.
func (root *Node) Walk(visit func(*Node)) {
	for _, child := range root.Children {
		visit(child)
		if child.Type == NodeFolder {
			child.Walk(visit)
		}
	}
}

// MainFile returns the file currently flagged as compilation entry point.
func (root *Node) MainFile() *Node {
	var main *Node
	root.Walk(func(n *Node) {
		if n.Type == NodeFile && n.IsMain {
			main = n
		}
	})
	return main
}

// rederivePaths rewrites FullPath for n and every descendant after a move.
func (n *Node) rederivePaths(parent Path) {
	self := parent.Join(n.Name)
	n.FullPath = self.String()
	for _, child := range n.Children {
		child.rederivePaths(self)
	}
}

var editableExtensions = map[string]bool{
	"typ": true, "json": true, "txt": true, "md": true,
	"js": true, "css": true, "py": true, "sh": true, "scala": true,
}

// Editable reports whether a file can be opened in the text editor, as
// opposed to binary assets that are only referenced by the document.
func Editable(name string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return false
	}
	return editableExtensions[strings.ToLower(name[idx+1:])]
}
