package support_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SRBConsultingTeam/ui5-quality-checks/schedule"
	"github.com/SRBConsultingTeam/ui5-quality-checks/support"
	"github.com/SRBConsultingTeam/ui5-quality-checks/version"
)

func newResolver(versions []schedule.VersionEntry, patches []schedule.PatchEntry) *support.Resolver {
	return support.NewResolver(schedule.NewStore(versions, patches))
}

func TestResolver_ResolveEvergreen(t *testing.T) {
	versions := []schedule.VersionEntry{
		{Version: "1.120.*", EOCP: schedule.Text("Q1/2031"), EOM: schedule.Text("Q1/2027, Q1/2030")},
		{Version: "1.108.*", EOCP: schedule.Text("Q4/2029"), EOM: schedule.Text("Q4/2025")},
		{Version: "1.96.1", EOCP: schedule.Text("2023-06-01"), EOM: schedule.Flag(true)},
		{Version: "1.84.*", EOCP: schedule.Flag(true), EOM: schedule.Flag(false)},
		{Version: "1.108.*", EOCP: schedule.Text("duplicate"), EOM: schedule.Text("duplicate")},
	}

	tests := []struct {
		name  string
		input string
		want  support.Verdict
	}{
		{
			name:  "plain EOM",
			input: "1.108",
			want:  support.Verdict{EOCP: schedule.Text("Q4/2029"), EOM: schedule.Text("Q4/2025")},
		},
		{
			name:  "EOM true renders as Reached",
			input: "1.96",
			want:  support.Verdict{EOCP: schedule.Text("2023-06-01"), EOM: schedule.Text("Reached")},
		},
		{
			name:  "two part EOM keeps the long term part",
			input: "1.120",
			want:  support.Verdict{EOCP: schedule.Text("Q1/2031"), EOM: schedule.Text("LTM. Q1/2030")},
		},
		{
			name:  "boolean false EOM is passed through",
			input: "1.84",
			want:  support.Verdict{EOCP: schedule.Flag(true), EOM: schedule.Flag(false)},
		},
		{
			name:  "unknown line has no verdict",
			input: "1.38",
			want:  support.Verdict{},
		},
		{
			name:  "patch string never matches a minor line",
			input: "1.108.5",
			want:  support.Verdict{},
		},
	}
	r := newResolver(versions, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveEvergreen(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ResolvePatch(t *testing.T) {
	patches := []schedule.PatchEntry{
		{Version: "1.2.3", Removed: true, EOCP: schedule.Text("2020-01-01")},
		{Version: "1.96.2", EOCP: schedule.Text("2024-01-01"), ExtendedEOCP: schedule.Text("2025-01-01")},
		{Version: "1.108.5", EOCP: schedule.Text("2025-03-01")},
		{Version: "1.108.6", EOCP: schedule.Text("2025-04-01"), ExtendedEOCP: schedule.Text("")},
		{Version: "1.108.5", Removed: true},
	}

	tests := []struct {
		name  string
		input string
		want  support.Verdict
	}{
		{
			name:  "removed patch is terminal",
			input: "1.2.3",
			want:  support.Verdict{EOCP: schedule.Text("Reached"), EOM: schedule.Text("Reached")},
		},
		{
			name:  "extended EOCP supersedes EOCP",
			input: "1.96.2",
			want:  support.Verdict{EOCP: schedule.Text("2025-01-01"), EOM: schedule.Text("N/A")},
		},
		{
			name:  "first entry wins for duplicates",
			input: "1.108.5",
			want:  support.Verdict{EOCP: schedule.Text("2025-03-01"), EOM: schedule.Text("N/A")},
		},
		{
			name:  "empty extended EOCP is ignored",
			input: "1.108.6",
			want:  support.Verdict{EOCP: schedule.Text("2025-04-01"), EOM: schedule.Text("N/A")},
		},
		{
			name:  "unknown patch assumes the worst",
			input: "1.108.99",
			want:  support.Verdict{EOCP: schedule.Flag(true), EOM: schedule.Flag(true)},
		},
		{
			name:  "minor line never matches a patch",
			input: "1.108",
			want:  support.Verdict{EOCP: schedule.Flag(true), EOM: schedule.Flag(true)},
		},
	}
	r := newResolver(nil, patches)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolvePatch(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_UnknownVersions(t *testing.T) {
	r := newResolver(
		[]schedule.VersionEntry{{Version: "1.120.*", EOCP: schedule.Text("Q1/2031"), EOM: schedule.Text("Q1/2027")}},
		[]schedule.PatchEntry{{Version: "1.120.4", EOCP: schedule.Text("Q1/2026")}},
	)
	for _, v := range []string{"1.0", "1.119", "2.0", "1.12", ""} {
		got := r.ResolveEvergreen(v)
		assert.False(t, got.Known(), v)
		assert.Equal(t, support.Verdict{}, got, v)
	}
	for _, v := range []string{"1.120.5", "1.12.4", "2.0.0", ""} {
		assert.Equal(t, support.Verdict{EOCP: schedule.Flag(true), EOM: schedule.Flag(true)}, r.ResolvePatch(v), v)
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := newResolver(
		[]schedule.VersionEntry{{Version: "1.120.*", EOCP: schedule.Text("Q1/2031"), EOM: schedule.Text("Q1/2027")}},
		[]schedule.PatchEntry{{Version: "1.120.4", EOCP: schedule.Text("Q1/2026")}},
	)

	assert.Equal(t, support.Verdict{EOCP: schedule.Text("Q1/2031"), EOM: schedule.Text("Q1/2027")},
		r.Resolve(version.NewEvergreen("1.120")))
	assert.Equal(t, support.Verdict{EOCP: schedule.Text("Q1/2026"), EOM: schedule.Text("N/A")},
		r.Resolve(version.NewPatch("1.120.4")))
	assert.Equal(t, support.Verdict{}, r.Resolve(version.NewUnpinned()))
}
