// Package workspace models the managed project tree every other component
// operates on. All request-supplied paths are resolved through it so nothing
// escapes the root.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Workspace struct {
	Root         string // 絶対パス
	CoursesDir   string
	TemplatesDir string
	ScriptsDir   string
}

func New(root, coursesDir, templatesDir, scriptsDir string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if coursesDir == "" {
		coursesDir = "courses"
	}
	if templatesDir == "" {
		templatesDir = "templates"
	}
	if scriptsDir == "" {
		scriptsDir = "scripts"
	}
	return &Workspace{
		Root:         abs,
		CoursesDir:   filepath.Join(abs, coursesDir),
		TemplatesDir: filepath.Join(abs, templatesDir),
		ScriptsDir:   filepath.Join(abs, scriptsDir),
	}, nil
}

// Resolve turns a request-supplied relative path into an absolute path under
// the root. Paths that climb out of the root are rejected.
func (w *Workspace) Resolve(rel string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(rel))
	abs := filepath.Join(w.Root, cleaned)
	if abs != w.Root && !strings.HasPrefix(abs, w.Root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes workspace: %s", rel)
	}
	return abs, nil
}

// Rel maps an absolute path back to its root-relative form, slash separated.
func (w *Workspace) Rel(abs string) string {
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// Exists reports whether the given absolute path exists.
func (w *Workspace) Exists(abs string) bool {
	_, err := os.Stat(abs)
	return err == nil
}

// SanitizeFilename reduces an upload filename to a safe basename. Directory
// components and traversal sequences are stripped, mirroring the behavior
// expected of uploaded names like "../../etc/passwd".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	name = strings.TrimLeft(name, ".")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "/" {
		out = "uploaded_file"
	}
	return out
}
