package support

import (
	"strings"

	"github.com/SRBConsultingTeam/ui5-quality-checks/schedule"
	"github.com/SRBConsultingTeam/ui5-quality-checks/version"
)

const (
	Reached = "Reached"
	NA      = "N/A"
	// ltmTag prefixes the long-term-maintenance part of a two-part EOM value.
	ltmTag = "LTM."
)

// Resolver maps detected versions to support verdicts using one schedule.
type Resolver struct {
	versions map[string]schedule.VersionEntry
	patches  map[string]schedule.PatchEntry
}

// NewResolver indexes the schedule tables. For duplicate keys the first
// entry in table order is kept.
func NewResolver(store *schedule.Store) *Resolver {
	r := &Resolver{
		versions: make(map[string]schedule.VersionEntry),
		patches:  make(map[string]schedule.PatchEntry),
	}
	for _, v := range store.Versions() {
		key := minorLine(v.Version)
		if _, ok := r.versions[key]; !ok {
			r.versions[key] = v
		}
	}
	for _, p := range store.Patches() {
		if _, ok := r.patches[p.Version]; !ok {
			r.patches[p.Version] = p
		}
	}
	return r
}

// Resolve dispatches on the version kind. Unpinned versions get no verdict.
func (r *Resolver) Resolve(v version.Version) Verdict {
	switch v.Kind {
	case version.Evergreen:
		return r.ResolveEvergreen(v.String)
	case version.Patch:
		return r.ResolvePatch(v.String)
	}
	return Verdict{}
}

// ResolveEvergreen looks up a MAJOR.MINOR line. An unknown line yields a
// verdict with both fields unset, which means unknown rather than supported.
func (r *Resolver) ResolveEvergreen(versionString string) Verdict {
	entry, ok := r.versions[versionString]
	if !ok {
		return Verdict{}
	}

	eom := entry.EOM
	if eom.IsTrue() {
		eom = schedule.Text(Reached)
	}
	if eom.Kind == schedule.StatusText {
		if parts := strings.Split(eom.Text, ","); len(parts) == 2 {
			eom = schedule.Text(ltmTag + " " + strings.TrimSpace(parts[1]))
		}
	}
	return Verdict{EOCP: entry.EOCP, EOM: eom}
}

// ResolvePatch looks up an exact patch release. A patch unknown to the
// schedule is assumed to be past its end of life.
func (r *Resolver) ResolvePatch(versionString string) Verdict {
	entry, ok := r.patches[versionString]
	if !ok {
		return Verdict{EOCP: schedule.Flag(true), EOM: schedule.Flag(true)}
	}
	if entry.Removed {
		return Verdict{EOCP: schedule.Text(Reached), EOM: schedule.Text(Reached)}
	}

	eocp := entry.EOCP
	if entry.ExtendedEOCP.Present() {
		eocp = entry.ExtendedEOCP
	}
	return Verdict{EOCP: eocp, EOM: schedule.Text(NA)}
}

// minorLine reduces "1.120.*" or "1.120.4" to "1.120".
func minorLine(s string) string {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return s
	}
	return parts[0] + "." + parts[1]
}
