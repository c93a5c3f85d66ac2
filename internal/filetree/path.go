package filetree

import "strings"

// Path is the canonical address of a node inside a project tree, always
// relative to the tree root. Legacy clients prefix paths with "root/";
// ParsePath is the single place where that prefix is stripped, so command
// handlers never see it.
type Path struct {
	segments []string
}

func ParsePath(raw string) Path {
	raw = strings.TrimPrefix(raw, "root/")
	if raw == "root" {
		raw = ""
	}
	parts := strings.Split(raw, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return Path{segments: segments}
}

func (p Path) String() string {
	return strings.Join(p.segments, "/")
}

func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Leaf returns the final segment (the node's own name).
func (p Path) Leaf() string {
	if p.IsRoot() {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

func (p Path) Parent() Path {
	if p.IsRoot() {
		return p
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

func (p Path) Join(name string) Path {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return Path{segments: append(segments, name)}
}

func (p Path) Segments() []string {
	return p.segments
}
