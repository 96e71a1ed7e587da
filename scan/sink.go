package scan

import (
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/SRBConsultingTeam/ui5-quality-checks/utils"
)

// Sink is the append-only result list handed to the presentation layer.
// Records are unique by file URL; the first insertion wins.
type Sink struct {
	mu      sync.RWMutex
	results []Result
	seen    map[string]struct{}
}

func NewSink() *Sink {
	return &Sink{seen: make(map[string]struct{})}
}

// Add appends r unless a record with the same file URL is already present.
// It reports whether r was added.
func (s *Sink) Add(r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[r.FileURL]; ok {
		return false
	}
	s.seen[r.FileURL] = struct{}{}
	s.results = append(s.results, r)
	return true
}

// Snapshot returns the records in insertion order.
func (s *Sink) Snapshot() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Result(nil), s.results...)
}

func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Save writes the current snapshot as JSON.
func (s *Sink) Save(fs afero.Fs, path string) error {
	results := s.Snapshot()
	if results == nil {
		results = []Result{}
	}
	if err := utils.NewFs(fs).WriteJSON(path, results); err != nil {
		return xerrors.Errorf("failed to save results: %w", err)
	}
	return nil
}
