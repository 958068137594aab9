// Package testutils holds filesystem fixtures shared by the package tests.
package testutils

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WebSources is a small web tree with one file of every kind, plus files
// the asset run must skip or copy verbatim.
var WebSources = map[string]string{
	"index.html":       "<!-- page -->\n<div>  <b>x</b>  </div>\n",
	"css/site.css":     ".a { color: red; /* note */ }\n",
	"js/app.js":        "// boot\nvar a = 1;\n",
	"img/favicon.ico":  "\x00\x01\x02\x03",
	".hidden/skip.js":  "var hidden = 1;",
	"fonts/.gitignore": "*.woff\n",
}

// CreateTempProject creates a project directory holding the given files
// under data/ and returns the project root.
func CreateTempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
	WriteTree(t, filepath.Join(root, "data"), files)
	return root
}

// WriteTree writes files, keyed by slash-separated relative path, under
// root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// ReadTree returns every regular file under root keyed by slash-separated
// relative path.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

// AssertFilePermissions checks the permission bits of path.
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode()
	require.Equal(t, expectedMode, actualMode&os.FileMode(0o777),
		"File %s has incorrect permissions: got %o, want %o",
		path, actualMode&os.FileMode(0o777), expectedMode)
}
