package snapshot

import (
	"sort"
	"strings"

	"github.com/hyperjump/annai/internal/models"
)

// treeNode is one directory level: child directories plus leaf file names.
type treeNode struct {
	dirs  map[string]*treeNode
	files []string
}

func newTreeNode() *treeNode {
	return &treeNode{dirs: make(map[string]*treeNode)}
}

func buildTree(snap *models.RepoSnapshot) *treeNode {
	root := newTreeNode()
	for _, f := range snap.Files {
		parts := strings.Split(f, "/")
		node := root
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node.dirs[dir]
			if !ok {
				child = newTreeNode()
				node.dirs[dir] = child
			}
			node = child
		}
		node.files = append(node.files, parts[len(parts)-1])
	}
	return root
}

// RenderTree renders the snapshot as an indented text tree, directories
// first, each suffixed with "/".
func RenderTree(snap *models.RepoSnapshot) string {
	var b strings.Builder
	b.WriteString(snap.Name)
	b.WriteString("/\n")
	renderNode(&b, buildTree(snap), 1, "  ")
	return b.String()
}

// RenderMarkdownTree renders the snapshot as a Markdown bullet list, with
// directories in bold, matching the files-overview document format.
func RenderMarkdownTree(snap *models.RepoSnapshot) string {
	var b strings.Builder
	renderMarkdownNode(&b, buildTree(snap), 0)
	return b.String()
}

func sortedDirNames(node *treeNode) []string {
	names := make([]string, 0, len(node.dirs))
	for name := range node.dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func renderNode(b *strings.Builder, node *treeNode, depth int, indent string) {
	pad := strings.Repeat(indent, depth)
	for _, name := range sortedDirNames(node) {
		b.WriteString(pad)
		b.WriteString(name)
		b.WriteString("/\n")
		renderNode(b, node.dirs[name], depth+1, indent)
	}
	sort.Strings(node.files)
	for _, f := range node.files {
		b.WriteString(pad)
		b.WriteString(f)
		b.WriteString("\n")
	}
}

func renderMarkdownNode(b *strings.Builder, node *treeNode, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, name := range sortedDirNames(node) {
		b.WriteString(pad)
		b.WriteString("- **")
		b.WriteString(name)
		b.WriteString("/**\n")
		renderMarkdownNode(b, node.dirs[name], depth+1)
	}
	sort.Strings(node.files)
	for _, f := range node.files {
		b.WriteString(pad)
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
}
