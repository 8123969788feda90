// Package snapshot builds filtered file snapshots of a repository tree.
package snapshot

import "strings"

// Filter decides which files and directories are excluded from a snapshot.
// The zero-value filter excludes nothing; use DefaultFilter for the standard
// ignore set (dependency dirs, build artifacts, binary formats).
type Filter struct {
	folders    map[string]struct{}
	extensions []string
}

var defaultIgnoreFolders = []string{
	".git", "node_modules", "dist", "build", ".venv", "__pycache__",
	".idea", ".vscode", ".next", "out", "public",
}

var defaultIgnoreExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
	".exe", ".dll", ".so", ".bin",
	".zip", ".tar", ".gz", ".7z",
	".pdf", ".lock",
}

// DefaultFilter returns the standard ignore filter.
func DefaultFilter() *Filter {
	return NewFilter(defaultIgnoreFolders, defaultIgnoreExtensions)
}

// NewFilter builds a filter from exact folder names and file extensions
// (extensions matched case-insensitively as suffixes).
func NewFilter(folders, extensions []string) *Filter {
	f := &Filter{folders: make(map[string]struct{}, len(folders))}
	for _, name := range folders {
		f.folders[name] = struct{}{}
	}
	f.extensions = make([]string, len(extensions))
	for i, ext := range extensions {
		f.extensions[i] = strings.ToLower(ext)
	}
	return f
}

// IgnoreDir reports whether a directory with the given base name is excluded.
func (f *Filter) IgnoreDir(name string) bool {
	_, ok := f.folders[name]
	return ok
}

// IgnoreFile reports whether a file with the given base name is excluded.
func (f *Filter) IgnoreFile(name string) bool {
	if _, ok := f.folders[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range f.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
