package support

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/xerrors"

	"github.com/SRBConsultingTeam/ui5-quality-checks/schedule"
)

// Q3/2025
var quarterRegexp = regexp.MustCompile(`^Q([1-4])/(\d{4})$`)

// Verdict is the EOCP/EOM outcome for one version. Unset fields mean that
// the schedule has no matching entry.
type Verdict struct {
	EOCP schedule.Status `json:"eocp"`
	EOM  schedule.Status `json:"eom"`
}

func (v Verdict) Known() bool {
	return v.EOCP.IsSet() || v.EOM.IsSet()
}

// Decommissioned reports whether cloud provisioning has already ended:
// EOCP is "Reached", "removed", or true.
func (v Verdict) Decommissioned() bool {
	if v.EOCP.IsTrue() {
		return true
	}
	if v.EOCP.Kind != schedule.StatusText {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v.EOCP.Text)) {
	case "reached", "removed":
		return true
	}
	return false
}

// EOCPDate returns the end of cloud provisioning as a point in time.
// Quarter values resolve to the last day of the quarter.
func (v Verdict) EOCPDate() (time.Time, error) {
	if v.EOCP.Kind != schedule.StatusText {
		return time.Time{}, xerrors.Errorf("EOCP is not a date: %s", v.EOCP)
	}
	return parseDate(v.EOCP.Text)
}

// EndsBefore reports whether the EOCP date falls before deadline. Values
// that are not dates never do.
func (v Verdict) EndsBefore(deadline time.Time) bool {
	t, err := v.EOCPDate()
	if err != nil {
		return false
	}
	return t.Before(deadline)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if m := quarterRegexp.FindStringSubmatch(s); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		// first day of the next quarter minus one day
		return time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1), nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, xerrors.Errorf("unable to parse date %q: %w", s, err)
	}
	return t, nil
}
