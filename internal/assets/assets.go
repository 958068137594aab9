// Package assets mirrors the web source tree into the build tree, minifying
// markup, stylesheets and scripts on the way and copying everything else
// verbatim.
//
// A run owns the destination directory: it is deleted and recreated before
// the first file is written. Files are processed one at a time in lexical
// walk order and any I/O failure aborts the run, leaving whatever was
// already written in place.
package assets

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	fserrors "github.com/conneroisu/fsbuild/internal/errors"
	"github.com/conneroisu/fsbuild/internal/logging"
	"github.com/conneroisu/fsbuild/internal/minify"
)

// Options configures a Minifier.
type Options struct {
	Source      string
	Destination string
	Engine      minify.Engine
	// Gzip writes a .gz sibling next to every output file.
	Gzip bool
	// ReportThreshold is the percentage reduction above which a file gets
	// its own report line.
	ReportThreshold float64
	// Out receives the human-readable report. Defaults to os.Stdout.
	Out    io.Writer
	Logger logging.Logger
}

// Result describes one processed file.
type Result struct {
	RelPath  string
	Kind     minify.Kind
	Original int64
	Minified int64
	// Copied is set when the file went through byte-for-byte, either
	// because it is opaque or because its text could not be used.
	Copied   bool
	GzipSize int64
}

// Reduction returns the percentage saved. ok is false for empty files.
func (r Result) Reduction() (pct float64, ok bool) {
	return reduction(r.Original, r.Minified)
}

// Report is the outcome of a run.
type Report struct {
	Files  []Result
	Totals Totals
}

// Minifier runs the asset pipeline.
type Minifier struct {
	opts    Options
	logger  logging.Logger
	printer *message.Printer
}

// New creates a Minifier. A nil Engine selects the lexical engine.
func New(opts Options) *Minifier {
	if opts.Engine == nil {
		opts.Engine = minify.Lexical{}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Minifier{
		opts:    opts,
		logger:  logger.WithComponent("assets"),
		printer: message.NewPrinter(language.English),
	}
}

// Run recreates the destination tree from the source tree and prints the
// size report.
func (m *Minifier) Run(ctx context.Context) (*Report, error) {
	src, dst := m.opts.Source, m.opts.Destination

	// WalkDir does not follow a symlinked root, so resolve it up front.
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return nil, fserrors.NewIOError(fserrors.ErrCodeFileNotFound, "source directory not readable", err).WithPath(src)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fserrors.NewIOError(fserrors.ErrCodeFileNotFound, "source directory not readable", err).WithPath(src)
	}
	if !info.IsDir() {
		return nil, fserrors.NewValidationError(fserrors.ErrCodeInvalidPath, "source is not a directory").WithPath(src)
	}

	overlap, err := Overlap(src, dst)
	if err != nil {
		return nil, fserrors.NewIOError(fserrors.ErrCodeInvalidPath, "cannot resolve destination", err).WithPath(dst)
	}
	if overlap {
		return nil, fserrors.NewValidationError(fserrors.ErrCodeInvalidPath, "destination overlaps the source tree").WithPath(dst)
	}

	if err := os.RemoveAll(dst); err != nil {
		return nil, fserrors.ErrWriteFailed(dst, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fserrors.ErrWriteFailed(dst, err)
	}

	m.printer.Fprintln(m.opts.Out, "🔧 Minifying web assets...")
	m.printer.Fprintln(m.opts.Out)

	report := &Report{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fserrors.ErrReadFailed(path, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		regular, err := isRegularFile(path, d)
		if err != nil {
			return fserrors.ErrReadFailed(path, err)
		}
		if !regular {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fserrors.NewInternalError(fserrors.ErrCodeInternalError, "relative path", err).WithPath(path)
		}

		result, err := m.processFile(ctx, rel, path, filepath.Join(dst, rel))
		if err != nil {
			return err
		}

		report.Files = append(report.Files, result)
		report.Totals.Add(result)
		m.writeFileLine(result)
		return nil
	})
	if err != nil {
		return report, err
	}

	m.writeSummary(report.Totals)
	return report, nil
}

// isRegularFile resolves symlinks so linked files are packed like the
// files they point at.
func isRegularFile(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (m *Minifier) processFile(ctx context.Context, rel, srcPath, dstPath string) (Result, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return Result{}, fserrors.ErrWriteFailed(filepath.Dir(dstPath), err)
	}

	kind := minify.Classify(rel)
	result := Result{RelPath: rel, Kind: kind}
	log := m.logger.With("file", rel, "kind", kind.String())

	if !kind.IsText() {
		return m.copyVerbatim(ctx, result, srcPath, dstPath)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return Result{}, fserrors.ErrReadFailed(srcPath, err)
	}
	if !utf8.Valid(data) {
		log.Debug(ctx, "Not valid UTF-8, copying verbatim")
		return m.copyVerbatim(ctx, result, srcPath, dstPath)
	}

	text := string(data)
	out, err := m.opts.Engine.Minify(kind, text)
	if err != nil {
		log.Warn(ctx, err, "Minification failed, copying verbatim", "engine", m.opts.Engine.Name())
		return m.copyVerbatim(ctx, result, srcPath, dstPath)
	}

	if err := os.WriteFile(dstPath, []byte(out), 0o644); err != nil {
		return Result{}, fserrors.ErrWriteFailed(dstPath, err)
	}

	result.Original = int64(utf8.RuneCountInString(text))
	result.Minified = int64(utf8.RuneCountInString(out))
	log.Debug(ctx, "Minified", "original", result.Original, "minified", result.Minified)

	return m.maybeGzip(ctx, result, srcPath, dstPath)
}

func (m *Minifier) copyVerbatim(ctx context.Context, result Result, srcPath, dstPath string) (Result, error) {
	size, err := copyFile(srcPath, dstPath)
	if err != nil {
		return Result{}, err
	}
	result.Original = size
	result.Minified = size
	result.Copied = true
	m.logger.Debug(ctx, "Copied", "file", result.RelPath, "bytes", size)

	return m.maybeGzip(ctx, result, srcPath, dstPath)
}

// maybeGzip writes the .gz sibling of dstPath. A source tree that already
// ships that sibling wins, since the walk would overwrite ours anyway.
func (m *Minifier) maybeGzip(ctx context.Context, result Result, srcPath, dstPath string) (Result, error) {
	if !m.opts.Gzip || strings.EqualFold(filepath.Ext(dstPath), ".gz") {
		return result, nil
	}
	if _, err := os.Lstat(srcPath + ".gz"); err == nil {
		m.logger.Warn(ctx, nil, "Source already has a .gz sibling, not compressing", "file", result.RelPath)
		return result, nil
	}
	size, err := gzipFile(dstPath)
	if err != nil {
		return Result{}, err
	}
	result.GzipSize = size
	return result, nil
}

func (m *Minifier) writeFileLine(r Result) {
	pct, ok := r.Reduction()
	if !ok || pct <= m.opts.ReportThreshold {
		return
	}
	m.printer.Fprintf(m.opts.Out, "  %s: %d → %d bytes (-%.1f%%)\n", r.RelPath, r.Original, r.Minified, pct)
}

func (m *Minifier) writeSummary(t Totals) {
	out := m.opts.Out
	m.printer.Fprintln(out)
	m.printer.Fprintf(out, "📊 Total: %d → %d bytes\n", t.Original, t.Minified)
	if pct, ok := t.Reduction(); ok {
		if pct < 0 {
			m.printer.Fprintf(out, "📈 Grew: %d bytes (+%.1f%%)\n", -t.Saved(), -pct)
		} else {
			m.printer.Fprintf(out, "💾 Saved: %d bytes (-%.1f%%)\n", t.Saved(), pct)
		}
	}
	if m.opts.Gzip {
		m.printer.Fprintf(out, "🗜️  Gzip: %d bytes\n", t.Gzip)
	}
	m.printer.Fprintln(out)
	m.printer.Fprintf(out, "✅ Minified files in %s/\n", filepath.ToSlash(m.opts.Destination))
}
