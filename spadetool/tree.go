package spadetool

import (
	"sort"
	"strings"
)

// BuildTreeFromFiles renders a list of /-separated relative paths as
// an indented tree for model consumption. Names are bolded with
// markdown markers, siblings are alphabetical, and input order does
// not matter. An empty list renders as an empty string.
func BuildTreeFromFiles(files []string) string {
	root := newTreeNode()
	for _, f := range files {
		node := root
		for _, seg := range strings.Split(f, "/") {
			if seg == "" {
				continue
			}
			child, ok := node.children[seg]
			if !ok {
				child = newTreeNode()
				node.children[seg] = child
			}
			node = child
		}
	}
	var lines []string
	renderTree(root, "", &lines)
	return strings.Join(lines, "\n")
}

type treeNode struct {
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

func renderTree(n *treeNode, prefix string, lines *[]string) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(names)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		*lines = append(*lines, prefix+connector+"**"+name+"**")
		renderTree(n.children[name], childPrefix, lines)
	}
}
