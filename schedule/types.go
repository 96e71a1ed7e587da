package schedule

import (
	"encoding/json"
	"strconv"

	"golang.org/x/xerrors"
)

// Document mirrors versionoverview.json as served by the UI5 CDN.
type Document struct {
	Versions []VersionEntry `json:"versions"`
	Patches  []PatchEntry   `json:"patches"`
}

// VersionEntry is the support window of a minor release line such as "1.120.*".
type VersionEntry struct {
	Version string `json:"version"`
	EOCP    Status `json:"eocp"`
	EOM     Status `json:"eom"`
	LTS     bool   `json:"lts,omitempty"`
	Support string `json:"support,omitempty"`
}

// PatchEntry is the support window of a single pinned patch release.
type PatchEntry struct {
	Version      string `json:"version"`
	Removed      bool   `json:"removed"`
	EOCP         Status `json:"eocp"`
	ExtendedEOCP Status `json:"extended_eocp"`
}

type StatusKind int

const (
	StatusUnset StatusKind = iota
	StatusText
	StatusFlag
)

// Status holds a schedule field that is either a text value (a date,
// a quarter such as "Q2/2025" or a label like "Reached") or a boolean.
type Status struct {
	Kind StatusKind
	Text string
	Flag bool
}

func Text(s string) Status {
	return Status{Kind: StatusText, Text: s}
}

func Flag(b bool) Status {
	return Status{Kind: StatusFlag, Flag: b}
}

func (s Status) IsSet() bool {
	return s.Kind != StatusUnset
}

// IsTrue reports whether the status is the boolean true.
func (s Status) IsTrue() bool {
	return s.Kind == StatusFlag && s.Flag
}

// Present reports whether the status carries a usable value: non-empty text
// or the boolean true.
func (s Status) Present() bool {
	return (s.Kind == StatusText && s.Text != "") || s.IsTrue()
}

func (s Status) String() string {
	switch s.Kind {
	case StatusText:
		return s.Text
	case StatusFlag:
		return strconv.FormatBool(s.Flag)
	}
	return ""
}

func (s Status) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusText:
		return json.Marshal(s.Text)
	case StatusFlag:
		return json.Marshal(s.Flag)
	}
	return []byte("null"), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = Status{}
	case string:
		*s = Text(t)
	case bool:
		*s = Flag(t)
	default:
		return xerrors.Errorf("unexpected schedule value: %s", string(data))
	}
	return nil
}
