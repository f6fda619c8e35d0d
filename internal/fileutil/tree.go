package fileutil

import (
	"os"
	"path/filepath"
	"sort"

	"sera/internal/organize"
)

// BuildTree captures the recursive layout under root. Directories sort
// before files; within each group entries are alphabetical.
func BuildTree(root string) (organize.TreeNode, error) {
	info, err := os.Stat(root)
	if err != nil {
		return organize.TreeNode{}, err
	}
	node := organize.TreeNode{
		Name:         filepath.Base(root),
		Type:         "directory",
		RelativePath: ".",
	}
	if !info.IsDir() {
		node.Type = "file"
		node.Size = info.Size()
		return node, nil
	}
	children, err := buildChildren(root, "")
	if err != nil {
		return organize.TreeNode{}, err
	}
	node.Children = children
	return node, nil
}

func buildChildren(root, rel string) ([]organize.TreeNode, error) {
	entries, err := os.ReadDir(filepath.Join(root, rel))
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})
	nodes := make([]organize.TreeNode, 0, len(entries))
	for _, entry := range entries {
		childRel := filepath.Join(rel, entry.Name())
		node := organize.TreeNode{
			Name:         entry.Name(),
			RelativePath: childRel,
		}
		if entry.IsDir() {
			node.Type = "directory"
			children, err := buildChildren(root, childRel)
			if err != nil {
				return nil, err
			}
			node.Children = children
		} else {
			node.Type = "file"
			info, err := entry.Info()
			if err != nil {
				return nil, err
			}
			node.Size = info.Size()
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
