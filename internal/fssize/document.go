package fssize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	fserrors "github.com/conneroisu/fsbuild/internal/errors"
)

// Format is the encoding of an environment document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the document format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fserrors.NewValidationError(fserrors.ErrCodeUnknownFormat,
			"unsupported environment format (expected .json, .yaml or .yml)").WithPath(path)
	}
}

// Decode parses an environment document. An empty document yields an
// empty Env.
func Decode(data []byte, format Format) (Env, error) {
	env := Env{}
	if len(bytes.TrimSpace(data)) == 0 {
		return env, nil
	}

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&env); err != nil {
			return nil, fmt.Errorf("decode json environment: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode yaml environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	if env == nil {
		env = Env{}
	}
	return env, nil
}

// Encode renders an environment document.
func Encode(env Env, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json environment: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any(env)); err != nil {
			return nil, fmt.Errorf("encode yaml environment: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml environment: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Load reads the environment document at path. A missing file yields an
// empty Env so the first run can create it; created reports that case.
func Load(path string) (env Env, format Format, created bool, err error) {
	format, err = FormatFor(path)
	if err != nil {
		return nil, "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Env{}, format, true, nil
	}
	if err != nil {
		return nil, "", false, fserrors.ErrReadFailed(path, err)
	}

	env, err = Decode(data, format)
	if err != nil {
		return nil, "", false, fserrors.NewValidationError(fserrors.ErrCodeConfigInvalid, err.Error()).WithPath(path)
	}
	return env, format, false, nil
}

// Save writes env back to path in the given format.
func Save(path string, env Env, format Format) error {
	data, err := Encode(env, format)
	if err != nil {
		return fserrors.NewInternalError(fserrors.ErrCodeInternalError, "encode environment", err).WithPath(path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fserrors.ErrWriteFailed(dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fserrors.ErrWriteFailed(path, err)
	}
	return nil
}
