// Package fssize pins the LittleFS image size used when packing the web
// assets into the firmware image.
//
// The size is forced to a fixed value regardless of what the board
// definition or partition table would otherwise produce, so the packed
// image always matches the partition the firmware mounts.
package fssize

// FilesystemSize is the byte length reserved for the LittleFS image (1344 KiB).
const FilesystemSize int64 = 1376256

// FilesystemSizer is a build configuration with a top-level filesystem size.
type FilesystemSizer interface {
	FilesystemSize() int64
	SetFilesystemSize(size int64)
}

// BoardFilesystemSizer is implemented by configurations that may carry a
// nested board configuration with its own build.filesystem_size.
// BoardFilesystemSize reports false when there is no board configuration.
type BoardFilesystemSizer interface {
	BoardFilesystemSize() (int64, bool)
	SetBoardFilesystemSize(size int64)
}

// Inject sets the filesystem size of cfg to FilesystemSize, and the nested
// board size too when cfg has a board configuration. It is idempotent.
func Inject(cfg FilesystemSizer) {
	cfg.SetFilesystemSize(FilesystemSize)

	board, ok := cfg.(BoardFilesystemSizer)
	if !ok {
		return
	}
	if _, present := board.BoardFilesystemSize(); present {
		board.SetBoardFilesystemSize(FilesystemSize)
	}
}
