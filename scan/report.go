package scan

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

type Phase string

const (
	PhaseBootstrap Phase = "bootstrap"
	PhaseManifest  Phase = "manifest"
	PhaseCI        Phase = "ci"
)

// PhaseError aborts a scan phase. Results emitted before it stay in the sink.
type PhaseError struct {
	Phase Phase
	Page  int
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase aborted on page %d: %s", e.Phase, e.Page, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Failure is a per-file problem that did not stop the scan. Bootstrap and
// manifest failures exclude the file from the results; CI failures only
// leave the CI fields of an emitted record unset.
type Failure struct {
	Phase Phase
	Owner string
	Repo  string
	Path  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s/%s/%s: %s", f.Phase, f.Owner, f.Repo, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

type Report struct {
	// Emitted counts records accepted by the sink.
	Emitted int
	// Duplicates counts records rejected by the sink.
	Duplicates int
	// Deferred lists owner/repo names that fell back to the manifest pass.
	Deferred []string
	Failures []Failure
	// NextCursor is the discovery page a resumed scan should start from.
	// It is zero once discovery has gone through every page.
	NextCursor int
}

// Err aggregates the per-file failures, or returns nil when there are none.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}
