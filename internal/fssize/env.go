package fssize

import (
	"encoding/json"
	"math"
	"strconv"
)

// Keys used by the build environment.
const (
	KeyFilesystemSize = "FS_SIZE"
	KeyBoardConfig    = "BOARD_CONFIG"
	keyBuild          = "build"
	keyBoardFSSize    = "filesystem_size"
)

// Env is a build environment held as a generic key/value document, the
// shape produced by decoding the JSON or YAML environment dump.
type Env map[string]any

var (
	_ FilesystemSizer      = Env(nil)
	_ BoardFilesystemSizer = Env(nil)
)

// FilesystemSize returns FS_SIZE, or 0 when unset or not a number.
func (e Env) FilesystemSize() int64 {
	n, _ := toInt64(e[KeyFilesystemSize])
	return n
}

// SetFilesystemSize sets FS_SIZE. Panics on a nil Env like any map write.
func (e Env) SetFilesystemSize(size int64) {
	e[KeyFilesystemSize] = size
}

// board returns BOARD_CONFIG when it is present and is a mapping. Any other
// shape is treated as no board configuration.
func (e Env) board() (map[string]any, bool) {
	return asMapping(e[KeyBoardConfig])
}

// asMapping accepts both plain maps and Env, which is what yaml.v3 produces
// for nested mappings when decoding into an Env.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case Env:
		return map[string]any(m), m != nil
	default:
		return nil, false
	}
}

// BoardFilesystemSize returns BOARD_CONFIG.build.filesystem_size. The bool
// reports whether a board configuration exists at all; a board without the
// field reports (0, true).
func (e Env) BoardFilesystemSize() (int64, bool) {
	b, ok := e.board()
	if !ok {
		return 0, false
	}
	build, _ := asMapping(b[keyBuild])
	n, _ := toInt64(build[keyBoardFSSize])
	return n, true
}

// SetBoardFilesystemSize sets BOARD_CONFIG.build.filesystem_size, creating
// the build section if the board has none. Without a board configuration
// it does nothing.
func (e Env) SetBoardFilesystemSize(size int64) {
	b, ok := e.board()
	if !ok {
		return
	}
	build, ok := asMapping(b[keyBuild])
	if !ok {
		build = make(map[string]any)
		b[keyBuild] = build
	}
	build[keyBoardFSSize] = size
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 0, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
