package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// LoadError is returned when the schedule document is missing or malformed.
// A scan cannot proceed without a schedule.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schedule load error: %s", e.Err)
	}
	return fmt.Sprintf("schedule load error (%s): %s", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Store holds the two support tables. It is never modified after Parse
// returns, so it can be shared by concurrent resolutions.
type Store struct {
	versions []VersionEntry
	patches  []PatchEntry
}

// NewStore builds a store from already validated tables.
func NewStore(versions []VersionEntry, patches []PatchEntry) *Store {
	return &Store{
		versions: append([]VersionEntry(nil), versions...),
		patches:  append([]PatchEntry(nil), patches...),
	}
}

// Load reads and validates the schedule document at path.
func Load(fs afero.Fs, path string) (*Store, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	store, err := Parse(b)
	if err != nil {
		var le *LoadError
		if xerrors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return store, nil
}

// Parse validates a raw schedule document. Both the versions and the
// patches arrays must be present.
func Parse(b []byte) (*Store, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &LoadError{Err: xerrors.Errorf("unable to parse JSON: %w", err)}
	}

	var doc Document
	for _, field := range []struct {
		name string
		dst  interface{}
	}{
		{name: "versions", dst: &doc.Versions},
		{name: "patches", dst: &doc.Patches},
	} {
		msg, ok := raw[field.name]
		if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			return nil, &LoadError{Err: xerrors.Errorf("missing %q array", field.name)}
		}
		if err := json.Unmarshal(msg, field.dst); err != nil {
			return nil, &LoadError{Err: xerrors.Errorf("invalid %q array: %w", field.name, err)}
		}
	}

	return NewStore(doc.Versions, doc.Patches), nil
}

// Versions returns a copy of the minor-version table in document order.
func (s *Store) Versions() []VersionEntry {
	return append([]VersionEntry(nil), s.versions...)
}

// Patches returns a copy of the patch table in document order.
func (s *Store) Patches() []PatchEntry {
	return append([]PatchEntry(nil), s.patches...)
}
