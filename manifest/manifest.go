package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/xerrors"

	"github.com/SRBConsultingTeam/ui5-quality-checks/version"
)

const (
	descriptorKey   = "sap.ui5"
	dependenciesKey = "dependencies"
	minVersionKey   = "minUI5Version"
)

// ParseError is returned when a manifest does not parse or does not declare
// a minimum UI5 version.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("manifest parse error: %s", e.Err)
	}
	return fmt.Sprintf("manifest parse error at %s: %s", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type descriptor struct {
	UI5 *struct {
		Dependencies *struct {
			MinUI5Version json.RawMessage `json:"minUI5Version"`
		} `json:"dependencies"`
	} `json:"sap.ui5"`
}

// Extract reads sap.ui5/dependencies/minUI5Version from a manifest.json.
// The declared minimum is always treated as a patch baseline.
func Extract(content string) (version.Detected, error) {
	var d descriptor
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		return version.Detected{}, &ParseError{Err: xerrors.Errorf("unable to parse JSON: %w", err)}
	}
	if d.UI5 == nil {
		return version.Detected{}, &ParseError{Path: descriptorKey, Err: xerrors.New("missing section")}
	}
	if d.UI5.Dependencies == nil {
		return version.Detected{}, &ParseError{Path: path(dependenciesKey), Err: xerrors.New("missing section")}
	}

	minVersion, err := minVersion(d.UI5.Dependencies.MinUI5Version)
	if err != nil {
		return version.Detected{}, &ParseError{Path: path(dependenciesKey, minVersionKey), Err: err}
	}

	return version.Detected{
		Version:        version.NewPatch(minVersion),
		MinVersionOnly: true,
	}, nil
}

// minVersion accepts both a single version and the list form allowed by
// newer descriptor versions, in which case the first entry is used.
func minVersion(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", xerrors.New("missing value")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single == "" {
			return "", xerrors.New("empty value")
		}
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", xerrors.Errorf("unexpected value %s", string(raw))
	}
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", xerrors.New("empty value")
}

func path(keys ...string) string {
	return strings.Join(append([]string{descriptorKey}, keys...), "/")
}
