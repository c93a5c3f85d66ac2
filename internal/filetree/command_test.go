package filetree

import (
	"encoding/json"
	"errors"
	"testing"
)

func buildTestTree(t *testing.T) *Node {
	t.Helper()
	root := NewTree()
	if err := Create(root, ParsePath("main.typ"), NodeFile); err != nil {
		t.Fatal(err)
	}
	if err := SetMain(root, ParsePath("main.typ")); err != nil {
		t.Fatal(err)
	}
	if err := Create(root, ParsePath("chapters"), NodeFolder); err != nil {
		t.Fatal(err)
	}
	if err := Create(root, ParsePath("chapters/intro.typ"), NodeFile); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestCreate(t *testing.T) {
	root := buildTestTree(t)

	if err := Create(root, ParsePath("chapters/outro.typ"), NodeFile); err != nil {
		t.Fatalf("Create in existing folder failed: %v", err)
	}
	node := root.Find(ParsePath("chapters/outro.typ"))
	if node == nil {
		t.Fatal("created node not found")
	}
	if node.FullPath != "chapters/outro.typ" {
		t.Errorf("FullPath = %q, want %q", node.FullPath, "chapters/outro.typ")
	}

	err := Create(root, ParsePath("missing/deep.typ"), NodeFile)
	if !errors.Is(err, ErrParentNotFound) {
		t.Errorf("Create under missing folder = %v, want ErrParentNotFound", err)
	}

	err = Create(root, ParsePath("main.typ/child.typ"), NodeFile)
	if !errors.Is(err, ErrNotAFolder) {
		t.Errorf("Create under a file = %v, want ErrNotAFolder", err)
	}

	err = Create(root, ParsePath("chapters/intro.typ"), NodeFile)
	if !errors.Is(err, ErrExists) {
		t.Errorf("Create over existing node = %v, want ErrExists", err)
	}
}

func TestRenameRewritesDescendantPaths(t *testing.T) {
	root := buildTestTree(t)

	if err := Rename(root, ParsePath("chapters"), ParsePath("sections")); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if root.Find(ParsePath("chapters")) != nil {
		t.Error("old folder still present after rename")
	}
	moved := root.Find(ParsePath("sections/intro.typ"))
	if moved == nil {
		t.Fatal("descendant not reachable under new path")
	}
	if moved.FullPath != "sections/intro.typ" {
		t.Errorf("descendant FullPath = %q, want %q", moved.FullPath, "sections/intro.typ")
	}
}

func TestRenameErrors(t *testing.T) {
	root := buildTestTree(t)

	if err := Rename(root, ParsePath("nope.typ"), ParsePath("x.typ")); !errors.Is(err, ErrNotFound) {
		t.Errorf("rename of missing node = %v, want ErrNotFound", err)
	}
	if err := Rename(root, ParsePath("main.typ"), ParsePath("missing/main.typ")); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("rename into missing folder = %v, want ErrParentNotFound", err)
	}
	if err := Rename(root, ParsePath("main.typ"), ParsePath("chapters/intro.typ")); !errors.Is(err, ErrExists) {
		t.Errorf("rename onto existing node = %v, want ErrExists", err)
	}
}

func TestDeleteFolderRemovesSubtree(t *testing.T) {
	root := buildTestTree(t)

	if err := Delete(root, ParsePath("chapters")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if root.Find(ParsePath("chapters")) != nil {
		t.Error("folder still present after delete")
	}
	if root.Find(ParsePath("chapters/intro.typ")) != nil {
		t.Error("descendant still reachable after folder delete")
	}

	if err := Delete(root, ParsePath("chapters")); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}
}

func TestSetMainKeepsSingleMainFile(t *testing.T) {
	root := buildTestTree(t)

	if err := SetMain(root, ParsePath("chapters/intro.typ")); err != nil {
		t.Fatalf("SetMain failed: %v", err)
	}

	mains := 0
	root.Walk(func(n *Node) {
		if n.IsMain {
			mains++
		}
	})
	if mains != 1 {
		t.Fatalf("tree has %d main files, want exactly 1", mains)
	}
	if main := root.MainFile(); main == nil || main.FullPath != "chapters/intro.typ" {
		t.Errorf("MainFile() = %+v, want chapters/intro.typ", main)
	}

	if err := SetMain(root, ParsePath("chapters")); !errors.Is(err, ErrNotAFile) {
		t.Errorf("SetMain on a folder = %v, want ErrNotAFile", err)
	}
}

func TestFileData(t *testing.T) {
	root := buildTestTree(t)

	if err := SetFileData(root, ParsePath("main.typ"), "= Title"); err != nil {
		t.Fatalf("SetFileData failed: %v", err)
	}
	data, err := FileData(root, ParsePath("main.typ"))
	if err != nil {
		t.Fatalf("FileData failed: %v", err)
	}
	if data != "= Title" {
		t.Errorf("FileData = %q, want %q", data, "= Title")
	}

	if _, err := FileData(root, ParsePath("chapters")); !errors.Is(err, ErrNotAFile) {
		t.Errorf("FileData on folder = %v, want ErrNotAFile", err)
	}
	if err := SetFileData(root, ParsePath("nope.typ"), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetFileData on missing node = %v, want ErrNotFound", err)
	}
}

// Two mirrors fed the same command sequence must end up byte-identical,
// that is the whole replication contract.
func TestCommandSequenceIsDeterministic(t *testing.T) {
	commands := func(root *Node) error {
		steps := []func() error{
			func() error { return Create(root, ParsePath("main.typ"), NodeFile) },
			func() error { return SetMain(root, ParsePath("main.typ")) },
			func() error { return Create(root, ParsePath("chapters"), NodeFolder) },
			func() error { return Create(root, ParsePath("chapters/one.typ"), NodeFile) },
			func() error { return SetFileData(root, ParsePath("chapters/one.typ"), "= One") },
			func() error { return Rename(root, ParsePath("chapters"), ParsePath("parts")) },
			func() error { return Create(root, ParsePath("parts/two.typ"), NodeFile) },
			func() error { return Delete(root, ParsePath("parts/one.typ")) },
			func() error { return SetMain(root, ParsePath("parts/two.typ")) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	}

	a, b := NewTree(), NewTree()
	if err := commands(a); err != nil {
		t.Fatal(err)
	}
	if err := commands(b); err != nil {
		t.Fatal(err)
	}

	aJSON, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	bJSON, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(aJSON) != string(bJSON) {
		t.Errorf("mirrors diverged:\n%s\n%s", aJSON, bJSON)
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := buildTestTree(t)
	clone := root.Clone()

	if err := SetFileData(root, ParsePath("chapters/intro.typ"), "changed"); err != nil {
		t.Fatal(err)
	}
	data, err := FileData(clone, ParsePath("chapters/intro.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if data != "" {
		t.Errorf("clone saw mutation of original, data = %q", data)
	}
}

func TestSkeletonHasMainFile(t *testing.T) {
	root := Skeleton("My Paper")

	main := root.MainFile()
	if main == nil {
		t.Fatal("skeleton has no main file")
	}
	if main.FullPath != "main.typ" {
		t.Errorf("main file path = %q, want %q", main.FullPath, "main.typ")
	}
	if main.Data == "" {
		t.Error("main file has no starter content")
	}
}
