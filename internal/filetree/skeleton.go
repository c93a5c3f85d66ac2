package filetree

import "fmt"

const starterContent = `#set page(paper: "a4")
#set text(size: 11pt)

= %s

Start writing here.
`

// Skeleton builds the blank project a new document starts from: a single
// main.typ flagged as entry point.
func Skeleton(title string) *Node {
	root := NewTree()
	main := newFile("main.typ", "main.typ", fmt.Sprintf(starterContent, title))
	main.IsMain = true
	root.Children["main.typ"] = main
	return root
}
