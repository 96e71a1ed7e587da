package version

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

type Kind int

const (
	// Unpinned means no exact version could be read from a bootstrap file.
	Unpinned Kind = iota
	// Evergreen is a floating MAJOR.MINOR reference that follows the latest patch.
	Evergreen
	// Patch is an exact MAJOR.MINOR.PATCH release.
	Patch
)

func (k Kind) String() string {
	switch k {
	case Evergreen:
		return "evergreen"
	case Patch:
		return "patch"
	}
	return "unpinned"
}

type Version struct {
	Kind   Kind
	String string
}

func NewEvergreen(s string) Version {
	return Version{Kind: Evergreen, String: s}
}

func NewPatch(s string) Version {
	return Version{Kind: Patch, String: s}
}

func NewUnpinned() Version {
	return Version{Kind: Unpinned}
}

// Classify picks the kind from the number of dot separated components:
// two is evergreen, three or more is a patch.
func Classify(s string) Version {
	if len(strings.Split(s, ".")) <= 2 {
		return NewEvergreen(s)
	}
	return NewPatch(s)
}

// LooksLikeVersion reports whether s is a numeric dotted version with at
// least MAJOR.MINOR, e.g. "1.120" or "1.120.4".
func LooksLikeVersion(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return false
		}
	}
	_, err := goversion.NewVersion(s)
	return err == nil
}

// Detected is what an extractor found in one file.
type Detected struct {
	Version Version
	// MinVersionOnly is set when the bootstrap file pins no version, or the
	// version came from a manifest's minimum version declaration.
	MinVersionOnly bool
}

func (d Detected) VersionString() string {
	return d.Version.String
}

func (d Detected) IsEvergreen() bool {
	return d.Version.Kind == Evergreen
}
