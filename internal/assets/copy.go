package assets

import (
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	fserrors "github.com/conneroisu/fsbuild/internal/errors"
)

// copyFile copies src to dst byte for byte and carries over the permission
// bits and modification time. It returns the number of bytes copied.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fserrors.ErrReadFailed(src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fserrors.ErrReadFailed(src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fserrors.ErrWriteFailed(dst, err)
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fserrors.ErrWriteFailed(dst, err)
	}

	// OpenFile honours the umask, so set the mode explicitly.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return 0, fserrors.ErrWriteFailed(dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return 0, fserrors.ErrWriteFailed(dst, err)
	}

	return n, nil
}

// gzipFile writes path+".gz" at best compression and returns its size.
func gzipFile(path string) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, fserrors.ErrReadFailed(path, err)
	}
	defer in.Close()

	gzPath := path + ".gz"
	out, err := os.Create(gzPath)
	if err != nil {
		return 0, fserrors.ErrWriteFailed(gzPath, err)
	}
	defer out.Close()

	zw, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		return 0, fserrors.NewInternalError(fserrors.ErrCodeInternalError, "gzip writer", err).WithPath(gzPath)
	}
	if _, err := io.Copy(zw, in); err != nil {
		return 0, fserrors.ErrWriteFailed(gzPath, err)
	}
	if err := zw.Close(); err != nil {
		return 0, fserrors.ErrWriteFailed(gzPath, err)
	}

	info, err := out.Stat()
	if err != nil {
		return 0, fserrors.ErrWriteFailed(gzPath, err)
	}
	return info.Size(), nil
}
