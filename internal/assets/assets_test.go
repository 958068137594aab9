package assets

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fserrors "github.com/conneroisu/fsbuild/internal/errors"
	"github.com/conneroisu/fsbuild/internal/minify"
	"github.com/conneroisu/fsbuild/internal/testutils"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x01, 0x02}

// writeTree creates files relative to root.
func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, data := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
}

func newTestMinifier(t *testing.T, files map[string][]byte, opts Options) (*Minifier, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	opts.Source = filepath.Join(dir, "data")
	opts.Destination = filepath.Join(dir, "data-build")
	require.NoError(t, os.MkdirAll(opts.Source, 0o755))
	writeTree(t, opts.Source, files)

	var out bytes.Buffer
	opts.Out = &out
	return New(opts), &out
}

func TestRunMirrorsTree(t *testing.T) {
	m, out := newTestMinifier(t, map[string][]byte{
		"app.js":         []byte("var a = 1;\n"),
		"css/style.css":  []byte(".a { color: red; }\n"),
		"sub/page.html":  []byte("<div>\n  <b>x</b>\n</div>\n"),
		"img/logo.png":   pngBytes,
		"fonts/font.bin": {0xde, 0xad, 0xbe, 0xef},
		".hidden.js":     []byte("var hidden = 1;"),
		"sub/.DS_Store":  {0x00},
	}, Options{ReportThreshold: 1.0})

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	dst := m.opts.Destination
	read := func(rel string) string {
		data, err := os.ReadFile(filepath.Join(dst, rel))
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, "var a=1;", read("app.js"))
	assert.Equal(t, ".a{color:red;}", read("css/style.css"))
	assert.Equal(t, "<div><b>x</b></div>", read("sub/page.html"))
	assert.Equal(t, string(pngBytes), read("img/logo.png"))
	assert.Equal(t, "\xde\xad\xbe\xef", read("fonts/font.bin"))

	assert.NoFileExists(t, filepath.Join(dst, ".hidden.js"))
	assert.NoFileExists(t, filepath.Join(dst, "sub", ".DS_Store"))

	assert.Len(t, report.Files, 5)
	assert.Equal(t, 5, report.Totals.Files)
	assert.Equal(t, 2, report.Totals.Copied)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "🔧 Minifying web assets...\n"))
	assert.Contains(t, text, "  app.js: 11 → 8 bytes (-27.3%)\n")
	assert.Contains(t, text, "📊 Total:")
	assert.Contains(t, text, "💾 Saved:")
	assert.True(t, strings.HasSuffix(text, "/data-build/\n"))
	assert.NotContains(t, text, "logo.png")
	assert.NotContains(t, text, "Gzip")
}

func TestRunWebSources(t *testing.T) {
	root := testutils.CreateTempProject(t, testutils.WebSources)
	src := filepath.Join(root, "data")
	require.NoError(t, os.Chmod(filepath.Join(src, "img", "favicon.ico"), 0o600))

	m := New(Options{
		Source:      src,
		Destination: filepath.Join(root, "data-build"),
		Out:         io.Discard,
	})
	_, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"index.html":      "<div><b>x</b></div>",
		"css/site.css":    ".a{color:red;}",
		"js/app.js":       "var a=1;",
		"img/favicon.ico": "\x00\x01\x02\x03",
		// Only file names are checked, so files in hidden directories ship.
		".hidden/skip.js": "var hidden=1;",
	}, testutils.ReadTree(t, filepath.Join(root, "data-build")))

	testutils.AssertFilePermissions(t, filepath.Join(root, "data-build", "img", "favicon.ico"), 0o600)
}

func TestRunTotalsAreSums(t *testing.T) {
	m, _ := newTestMinifier(t, map[string][]byte{
		"a.js":    []byte("var a = 1;\n"),
		"b.css":   []byte("p { margin: 0 }"),
		"c.txt":   []byte("plain text stays"),
		"d/e.htm": []byte("<p> x </p>"),
	}, Options{})

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	var original, minified int64
	for _, f := range report.Files {
		original += f.Original
		minified += f.Minified
		assert.LessOrEqual(t, f.Minified, f.Original, f.RelPath)
	}
	assert.Equal(t, original, report.Totals.Original)
	assert.Equal(t, minified, report.Totals.Minified)
	assert.Equal(t, original-minified, report.Totals.Saved())
}

func TestRunCountsCharactersForText(t *testing.T) {
	// Four runes stored in seven bytes.
	m, _ := newTestMinifier(t, map[string][]byte{
		"i18n.js": []byte("é  ☃"),
	}, Options{})

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)

	f := report.Files[0]
	assert.Equal(t, int64(4), f.Original)
	assert.Equal(t, int64(3), f.Minified)
	assert.False(t, f.Copied)
}

func TestRunInvalidUTF8IsCopied(t *testing.T) {
	raw := []byte{0xff, 0xfe, 'a', ' ', ' ', 'b'}
	m, _ := newTestMinifier(t, map[string][]byte{"broken.css": raw}, Options{})

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)

	f := report.Files[0]
	assert.True(t, f.Copied)
	assert.Equal(t, minify.KindStylesheet, f.Kind)
	assert.Equal(t, int64(len(raw)), f.Original)
	assert.Equal(t, f.Original, f.Minified)

	data, err := os.ReadFile(filepath.Join(m.opts.Destination, "broken.css"))
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestRunCopyPreservesMetadata(t *testing.T) {
	m, _ := newTestMinifier(t, map[string][]byte{"favicon.ico": {1, 2, 3}}, Options{})

	src := filepath.Join(m.opts.Source, "favicon.ico")
	mtime := time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chmod(src, 0o600))
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(m.opts.Destination, "favicon.ico"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, mtime.Equal(info.ModTime()), "mtime %v", info.ModTime())
}

func TestRunWipesDestination(t *testing.T) {
	m, _ := newTestMinifier(t, map[string][]byte{"a.js": []byte("x")}, Options{})
	writeTree(t, m.opts.Destination, map[string][]byte{
		"stale.js":      []byte("old"),
		"old/index.htm": []byte("old"),
	})

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(m.opts.Destination, "stale.js"))
	assert.NoDirExists(t, filepath.Join(m.opts.Destination, "old"))
	assert.FileExists(t, filepath.Join(m.opts.Destination, "a.js"))
}

func TestRunEmptySource(t *testing.T) {
	m, out := newTestMinifier(t, nil, Options{})

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Files)
	assert.Zero(t, report.Totals)
	assert.DirExists(t, m.opts.Destination)
	assert.Contains(t, out.String(), "📊 Total: 0 → 0 bytes\n")
	assert.NotContains(t, out.String(), "Saved")
}

func TestRunMissingSource(t *testing.T) {
	dir := t.TempDir()
	m := New(Options{
		Source:      filepath.Join(dir, "nope"),
		Destination: filepath.Join(dir, "out"),
		Out:         io.Discard,
	})

	_, err := m.Run(context.Background())
	require.Error(t, err)
	assert.True(t, fserrors.IsIOError(err))
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestRunCancelled(t *testing.T) {
	m, _ := newTestMinifier(t, map[string][]byte{"a.js": []byte("x")}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(m.opts.Destination, "a.js"))
}

func TestReportThreshold(t *testing.T) {
	files := map[string][]byte{
		"a.js":    []byte("var a = 1;\n"),
		"flat.js": []byte("x"),
	}

	t.Run("default threshold hides unchanged files", func(t *testing.T) {
		m, out := newTestMinifier(t, files, Options{ReportThreshold: 1.0})
		_, err := m.Run(context.Background())
		require.NoError(t, err)
		assert.Contains(t, out.String(), "a.js:")
		assert.NotContains(t, out.String(), "flat.js:")
	})

	t.Run("high threshold hides everything", func(t *testing.T) {
		m, out := newTestMinifier(t, files, Options{ReportThreshold: 50})
		_, err := m.Run(context.Background())
		require.NoError(t, err)
		assert.NotContains(t, out.String(), "a.js:")
	})
}

func TestReportThousandsSeparator(t *testing.T) {
	m, out := newTestMinifier(t, map[string][]byte{
		"big.js": []byte(strings.Repeat("var a = 1;\n", 200)),
	}, Options{ReportThreshold: 1.0})

	_, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "  big.js: 2,200 → 1,600 bytes (-27.3%)\n")
	assert.Contains(t, out.String(), "💾 Saved: 600 bytes (-27.3%)\n")
}

func TestRunGzip(t *testing.T) {
	m, out := newTestMinifier(t, map[string][]byte{
		"app.js":      []byte("var a = 1;\n"),
		"logo.png":    pngBytes,
		"already.gz":  {0x1f, 0x8b},
		".hidden.css": []byte("p{}"),
	}, Options{Gzip: true})

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(m.opts.Destination, "app.js.gz"))
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "var a=1;", string(data))

	assert.FileExists(t, filepath.Join(m.opts.Destination, "logo.png.gz"))
	assert.NoFileExists(t, filepath.Join(m.opts.Destination, "already.gz.gz"))
	assert.NoFileExists(t, filepath.Join(m.opts.Destination, ".hidden.css.gz"))

	var gz int64
	for _, r := range report.Files {
		gz += r.GzipSize
	}
	assert.Positive(t, gz)
	assert.Equal(t, gz, report.Totals.Gzip)
	assert.Contains(t, out.String(), "Gzip:")
}

func TestReduction(t *testing.T) {
	_, ok := Result{}.Reduction()
	assert.False(t, ok)

	pct, ok := Result{Original: 200, Minified: 150}.Reduction()
	assert.True(t, ok)
	assert.InDelta(t, 25.0, pct, 1e-9)

	var totals Totals
	totals.Add(Result{Original: 10, Minified: 5})
	totals.Add(Result{Original: 10, Minified: 10, Copied: true, GzipSize: 3})
	assert.Equal(t, 2, totals.Files)
	assert.Equal(t, 1, totals.Copied)
	assert.Equal(t, int64(5), totals.Saved())
	assert.Equal(t, int64(3), totals.Gzip)
	pct, ok = totals.Reduction()
	assert.True(t, ok)
	assert.InDelta(t, 25.0, pct, 1e-9)
}

func TestRunFollowsSymlinkedSource(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, filepath.Join(dir, "web"), map[string][]byte{"js/app.js": []byte("var a = 1;\n")})
	require.NoError(t, os.Symlink(filepath.Join(dir, "web"), filepath.Join(dir, "data")))

	m := New(Options{
		Source:      filepath.Join(dir, "data"),
		Destination: filepath.Join(dir, "data-build"),
		Out:         io.Discard,
	})
	report, err := m.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, filepath.Join("js", "app.js"), report.Files[0].RelPath)
	data, err := os.ReadFile(filepath.Join(dir, "data-build", "js", "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "var a=1;", string(data))
}

func TestRunRefusesOverlappingDestination(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeTree(t, filepath.Join(dir, "data"), map[string][]byte{"app.js": []byte("var a = 1;")})
	require.NoError(t, os.Symlink("data", "alias"))

	for _, dst := range []string{filepath.Join(dir, "data"), "./data", "alias", filepath.Join("alias", "out")} {
		t.Run(dst, func(t *testing.T) {
			m := New(Options{Source: "data", Destination: dst, Out: io.Discard})
			_, err := m.Run(context.Background())
			require.Error(t, err)
			assert.FileExists(t, filepath.Join(dir, "data", "app.js"))
		})
	}
}

func TestRunGzipKeepsShippedSibling(t *testing.T) {
	m, _ := newTestMinifier(t, map[string][]byte{
		"app.js":    []byte("var a = 1;\n"),
		"app.js.gz": []byte("HANDMADE"),
	}, Options{Gzip: true})

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(m.opts.Destination, "app.js.gz"))
	require.NoError(t, err)
	assert.Equal(t, "HANDMADE", string(data))
	assert.Zero(t, report.Totals.Gzip)
	for _, r := range report.Files {
		assert.Zero(t, r.GzipSize, r.RelPath)
	}
}

// padEngine makes every text file larger.
type padEngine struct{}

func (padEngine) Name() string { return "pad" }

func (padEngine) Minify(_ minify.Kind, src string) (string, error) {
	return src + "xxx", nil
}

func TestReportGrowth(t *testing.T) {
	m, out := newTestMinifier(t, map[string][]byte{
		"a.js": []byte("abcdefghij"),
	}, Options{Engine: padEngine{}})

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "📈 Grew: 3 bytes (+30.0%)\n")
	assert.NotContains(t, out.String(), "Saved")
	assert.NotContains(t, out.String(), "--")
}
