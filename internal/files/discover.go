package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
)

// OpenExtensions are the file types offered by the open picker.
var OpenExtensions = []string{".md", ".markdown", ".txt"}

// SaveExtensions are the file types suggested by the save picker.
var SaveExtensions = []string{".md", ".markdown"}

const discoverPattern = "**/*.{md,markdown,txt}"

// maxDiscovered caps how many files the picker lists.
const maxDiscovered = 500

// Discover returns openable files under root as slash-separated paths
// relative to root, skipping hidden files and directories.
func Discover(root string) ([]string, error) {
	if root == "" {
		root = "."
	}
	matches, err := doublestar.Glob(os.DirFS(root), discoverPattern)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if isHidden(m) {
			continue
		}
		out = append(out, m)
		if len(out) >= maxDiscovered {
			break
		}
	}
	sort.Strings(out)
	return out, nil
}

func isHidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// Filter ranks paths against query using fuzzy matching. An empty query
// returns paths unchanged.
func Filter(query string, paths []string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return paths
	}
	matches := fuzzy.Find(query, paths)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

// HasOpenExtension reports whether path has one of OpenExtensions.
func HasOpenExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range OpenExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// EnsureSaveExtension appends ".md" when path has none of SaveExtensions.
func EnsureSaveExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SaveExtensions {
		if ext == e {
			return path
		}
	}
	return path + ".md"
}
