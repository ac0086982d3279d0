package mapping

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FileBackend stores the mapping as a single JSON object, the format the
// desktop tooling shares. Keys starting with "_" are comments and are
// preserved verbatim on write-back. Entries may be either a bare name string
// (legacy) or a {name, category, source} object.
type FileBackend struct {
	path string
}

// NewFileBackend creates a FileBackend at the given path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the mapping file. A missing file yields an empty store; corrupt
// content also falls back to empty rather than failing the run.
func (f *FileBackend) Load(ctx context.Context) (map[string]Entry, map[string]json.RawMessage, error) {
	entries := make(map[string]Entry)
	extras := make(map[string]json.RawMessage)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, extras, nil
		}
		return nil, nil, eris.Wrapf(err, "mapping: read %s", f.path)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		zap.L().Warn("mapping: corrupt store file, starting empty",
			zap.String("path", f.path),
			zap.Error(err),
		)
		return entries, extras, nil
	}

	for key, val := range raw {
		if strings.HasPrefix(key, "_") {
			extras[key] = val
			continue
		}
		var e Entry
		if err := json.Unmarshal(val, &e); err == nil && e.Name != "" {
			entries[key] = e
			continue
		}
		// Legacy format: bare name string.
		var name string
		if err := json.Unmarshal(val, &name); err == nil && name != "" {
			entries[key] = Entry{Name: name, Source: SourceManual}
			continue
		}
		zap.L().Warn("mapping: skipping unreadable entry", zap.String("address", key))
	}
	return entries, extras, nil
}

// Save writes all entries plus preserved comment keys atomically.
func (f *FileBackend) Save(ctx context.Context, entries map[string]Entry, extras map[string]json.RawMessage) error {
	out := make(map[string]any, len(entries)+len(extras))
	for k, v := range extras {
		out[k] = v
	}
	for k, e := range entries {
		out[k] = e
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return eris.Wrap(err, "mapping: marshal store")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "mapping: write %s", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return eris.Wrapf(err, "mapping: rename %s", f.path)
	}
	return nil
}

// Close implements Backend.
func (f *FileBackend) Close() error { return nil }
