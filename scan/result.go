package scan

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/SRBConsultingTeam/ui5-quality-checks/github"
	"github.com/SRBConsultingTeam/ui5-quality-checks/schedule"
	"github.com/SRBConsultingTeam/ui5-quality-checks/support"
	"github.com/SRBConsultingTeam/ui5-quality-checks/version"
)

const conclusionSuccess = "success"

type Source string

const (
	SourceBootstrap Source = "bootstrap"
	SourceManifest  Source = "manifest"
)

// Result is one row of the scan: a single discovered file with its version
// and support status.
type Result struct {
	Repo    string `json:"repo"`
	Owner   string `json:"owner"`
	RepoURL string `json:"repoUrl"`
	Path    string `json:"filename"`
	FileURL string `json:"fileUrl"`
	Source  Source `json:"source"`

	Version    string          `json:"version,omitempty"`
	MinVersion bool            `json:"isMinVersion"`
	Evergreen  bool            `json:"isEvergreenBootstrap"`
	EOCP       schedule.Status `json:"eocp"`
	EOM        schedule.Status `json:"eom"`
	// EOCPSoon is set when the EOCP date falls inside the configured warning window.
	EOCPSoon    bool `json:"eocpSoon"`
	Problematic bool `json:"problematic"`

	Run   *github.RunSummary  `json:"run,omitempty"`
	Lint  []github.JobSummary `json:"lint,omitempty"`
	Build []github.JobSummary `json:"build,omitempty"`
}

func (s *Scanner) assemble(item github.SearchItem, source Source, detected version.Detected, verdict support.Verdict) Result {
	owner := item.Repository.Owner.Login
	repoURL := item.Repository.HTMLURL
	if repoURL == "" {
		repoURL = "https://github.com/" + owner + "/" + item.Repository.Name
	}

	r := Result{
		Repo:       item.Repository.Name,
		Owner:      owner,
		RepoURL:    repoURL,
		Path:       item.Path,
		FileURL:    item.HTMLURL,
		Source:     source,
		Version:    detected.VersionString(),
		MinVersion: source == SourceManifest,
		Evergreen:  detected.IsEvergreen(),
		EOCP:       verdict.EOCP,
		EOM:        verdict.EOM,
	}
	if s.soonWindow > 0 {
		r.EOCPSoon = verdict.EndsBefore(s.now().Add(s.soonWindow))
	}

	// any pinned version is flagged, whatever its EOCP date
	if verdict.Decommissioned() || !r.Evergreen {
		r.Problematic = true
	}
	return r
}

// joinCI attaches the latest QM workflow run and its lint and build jobs.
// A repository without a run keeps its CI fields unset.
func (s *Scanner) joinCI(ctx context.Context, r *Result) error {
	if s.workflows == nil {
		return nil
	}

	run, err := s.workflows.LatestWorkflowRun(ctx, r.Owner, r.Repo, s.workflowFile, s.branch)
	if err != nil {
		return xerrors.Errorf("failed to get the latest workflow run: %w", err)
	}
	if run == nil {
		return nil
	}

	jobs, err := s.workflows.WorkflowJobs(ctx, r.Owner, r.Repo, run.ID)
	if err != nil {
		return xerrors.Errorf("failed to list workflow jobs: %w", err)
	}

	r.Run = run
	r.Lint = jobsNamed(jobs, "lint")
	r.Build = jobsNamed(jobs, "build")

	if run.Conclusion != conclusionSuccess {
		r.Problematic = true
	}
	for _, job := range append(append([]github.JobSummary(nil), r.Lint...), r.Build...) {
		if job.Conclusion != conclusionSuccess {
			r.Problematic = true
		}
	}
	return nil
}

func jobsNamed(jobs []github.JobSummary, substr string) []github.JobSummary {
	return lo.Filter(jobs, func(job github.JobSummary, _ int) bool {
		return strings.Contains(strings.ToLower(job.Name), substr)
	})
}
