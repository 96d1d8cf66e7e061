package main

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// digestFileName builds the deterministic output name for a directory:
// "digest-<root>.txt" for the root itself, nested directories join their
// path segments with dashes ("digest-<root>-cmd-server.txt").
func digestFileName(rootName, rel string) string {
	name := "digest-" + sanitizeNamePart(rootName)
	if rel != "." && rel != "" {
		for _, part := range strings.Split(rel, "/") {
			if part == "" || part == "." {
				continue
			}
			name += "-" + sanitizeNamePart(part)
		}
	}
	return name + ".txt"
}

func indexFileName(rootName string) string {
	return "digest-" + sanitizeNamePart(rootName) + "-index.txt"
}

func manifestFileName(rootName string) string {
	return "digest-" + sanitizeNamePart(rootName) + "-index.yaml"
}

// sanitizeNamePart keeps a path segment safe to embed in a filename.
func sanitizeNamePart(part string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, part)
}

// writeIndex writes the human-readable index listing every digest in emission
// order and returns the full text, which the clipboard export reuses.
func writeIndex(indexPath, rootPath string, maxLines, maxDepth int, entries []IndexEntry, withTokens bool) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Digest index for repository: %s\n\n", rootPath)
	fmt.Fprintf(&b, "Max lines per digest: %d\n", maxLines)
	fmt.Fprintf(&b, "Max recursion depth: %d\n\n", maxDepth)
	b.WriteString("Generated digests:\n\n")
	for _, e := range entries {
		size := fmt.Sprintf("%d lines", e.Lines)
		if withTokens && e.Tokens > 0 {
			size += fmt.Sprintf(", ~%d tokens", e.Tokens)
		}
		note := ""
		if e.Split {
			note = " (split into subdirs)"
		}
		fmt.Fprintf(&b, "- depth=%d  dir=%-30s -> %s  (%s)%s\n", e.Depth, e.Dir, e.File, size, note)
	}
	b.WriteString("\nNote: every digest file was produced by gitingest for its directory.\n")
	b.WriteString("Directories marked '(split into subdirs)' only cover their local files;\n")
	b.WriteString("their subdirectories have digests of their own, up to the depth limit.\n")

	text := b.String()
	if err := os.WriteFile(indexPath, []byte(text), 0o644); err != nil {
		return "", &OutputError{Path: indexPath, Cause: err}
	}
	return text, nil
}

// indexManifest is the YAML shape of the machine-readable index. It carries
// no timestamps so identical runs produce identical manifests.
type indexManifest struct {
	Repository string       `yaml:"repository"`
	MaxLines   int          `yaml:"max_lines"`
	MaxDepth   int          `yaml:"max_depth"`
	Digests    []IndexEntry `yaml:"digests"`
}

// writeManifest persists the index as YAML next to the text version.
func writeManifest(manifestPath, rootPath string, maxLines, maxDepth int, entries []IndexEntry) error {
	doc, err := yaml.Marshal(indexManifest{
		Repository: rootPath,
		MaxLines:   maxLines,
		MaxDepth:   maxDepth,
		Digests:    entries,
	})
	if err != nil {
		return &OutputError{Path: manifestPath, Msg: "cannot encode manifest", Cause: err}
	}
	if err := os.WriteFile(manifestPath, doc, 0o644); err != nil {
		return &OutputError{Path: manifestPath, Cause: err}
	}
	return nil
}

// treeNode is one emitted digest in the split-tree view.
type treeNode struct {
	name     string
	label    string
	children []*treeNode
}

// buildSplitTree arranges index entries into a tree mirroring the directory
// hierarchy of the emitted digests. Entries arrive in emission order, so a
// parent is always registered before its children.
func buildSplitTree(rootName string, entries []IndexEntry) *treeNode {
	root := &treeNode{name: rootName}
	nodes := map[string]*treeNode{".": root}
	for _, e := range entries {
		if e.Dir == "." {
			root.label = e.File
			continue
		}
		node := &treeNode{name: path.Base(e.Dir), label: e.File}
		parent := nodes[path.Dir(e.Dir)]
		if parent == nil {
			parent = root
		}
		parent.children = append(parent.children, node)
		nodes[e.Dir] = node
	}
	sortTree(root)
	return root
}

func sortTree(n *treeNode) {
	sort.Slice(n.children, func(i, j int) bool { return n.children[i].name < n.children[j].name })
	for _, c := range n.children {
		sortTree(c)
	}
}

// renderSplitTree prints the split tree with box-drawing connectors, each
// node annotated with its digest filename.
func renderSplitTree(root *treeNode) string {
	var b strings.Builder
	b.WriteString(root.name)
	if root.label != "" {
		b.WriteString(" -> " + root.label)
	}
	b.WriteString("\n")
	renderNodes(&b, root.children, "")
	return b.String()
}

func renderNodes(b *strings.Builder, children []*treeNode, prefix string) {
	for i, node := range children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		b.WriteString(prefix + connector + node.name)
		if node.label != "" {
			b.WriteString(" -> " + node.label)
		}
		b.WriteString("\n")
		renderNodes(b, node.children, childPrefix)
	}
}

// summarize totals the run for the closing report.
func summarize(entries []IndexEntry) Summary {
	var s Summary
	for _, e := range entries {
		s.Digests++
		s.TotalLines += e.Lines
		s.TotalTokens += e.Tokens
	}
	return s
}
