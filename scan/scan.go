package scan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/SRBConsultingTeam/ui5-quality-checks/bootstrap"
	"github.com/SRBConsultingTeam/ui5-quality-checks/github"
	"github.com/SRBConsultingTeam/ui5-quality-checks/manifest"
	"github.com/SRBConsultingTeam/ui5-quality-checks/support"
)

const (
	defaultOrg           = "SRBConsultingTeam"
	defaultBootstrapFile = "index.html"
	defaultManifestFile  = "manifest.json"
	defaultWorkflowFile  = "srbui5_qm.yaml"
	defaultBranch        = "develop"
	// GitHub code search accepts at most five OR operators per query
	defaultBatchSize = 5
)

type CodeSearcher interface {
	SearchCode(ctx context.Context, query string, page int) (github.SearchPage, error)
}

type ContentFetcher interface {
	FetchFileContent(ctx context.Context, owner, repo, path string) (string, error)
}

type WorkflowLister interface {
	LatestWorkflowRun(ctx context.Context, owner, repo, workflowFile, branch string) (*github.RunSummary, error)
	WorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]github.JobSummary, error)
}

// Scanner finds UI5 bootstrap files in an organization, resolves their
// support status and emits one Result per file into a Sink.
type Scanner struct {
	searcher  CodeSearcher
	fetcher   ContentFetcher
	resolver  *support.Resolver
	sink      *Sink
	extractor *bootstrap.Extractor
	workflows WorkflowLister

	org           string
	bootstrapFile string
	manifestFile  string
	workflowFile  string
	branch        string
	batchSize     int
	concurrency   int
	soonWindow    time.Duration
	progress      bool
	now           func() time.Time
	logger        logrus.FieldLogger
}

type option func(*Scanner)

func WithOrg(org string) option {
	return func(s *Scanner) {
		s.org = org
	}
}

func WithHosts(hosts ...string) option {
	return func(s *Scanner) {
		s.extractor = bootstrap.NewExtractor(hosts...)
	}
}

func WithBootstrapFile(name string) option {
	return func(s *Scanner) {
		s.bootstrapFile = name
	}
}

func WithManifestFile(name string) option {
	return func(s *Scanner) {
		s.manifestFile = name
	}
}

// WithWorkflows enables the CI join against the given workflow file and branch.
func WithWorkflows(lister WorkflowLister, workflowFile, branch string) option {
	return func(s *Scanner) {
		s.workflows = lister
		if workflowFile != "" {
			s.workflowFile = workflowFile
		}
		if branch != "" {
			s.branch = branch
		}
	}
}

func WithBatchSize(n int) option {
	return func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithConcurrency resolves up to n files of a search page at once. With the
// default of one, records reach the sink in search order.
func WithConcurrency(n int) option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSoonWindow marks records whose EOCP date falls within d from now.
func WithSoonWindow(d time.Duration) option {
	return func(s *Scanner) {
		s.soonWindow = d
	}
}

func WithProgress(enabled bool) option {
	return func(s *Scanner) {
		s.progress = enabled
	}
}

func WithClock(now func() time.Time) option {
	return func(s *Scanner) {
		s.now = now
	}
}

func WithLogger(logger logrus.FieldLogger) option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

func NewScanner(searcher CodeSearcher, fetcher ContentFetcher, resolver *support.Resolver, sink *Sink, opts ...option) *Scanner {
	s := &Scanner{
		searcher:      searcher,
		fetcher:       fetcher,
		resolver:      resolver,
		sink:          sink,
		extractor:     bootstrap.NewExtractor(),
		org:           defaultOrg,
		bootstrapFile: defaultBootstrapFile,
		manifestFile:  defaultManifestFile,
		workflowFile:  defaultWorkflowFile,
		branch:        defaultBranch,
		batchSize:     defaultBatchSize,
		concurrency:   1,
		now:           time.Now,
		logger:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// state collects what the per-file stages report while a page is processed.
type state struct {
	mu       sync.Mutex
	report   *Report
	deferred []string
}

func (st *state) fail(f Failure) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.report.Failures = append(st.report.Failures, f)
}

func (st *state) deferRepo(name string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.deferred = append(st.deferred, name)
}

// Run scans the organization starting at discovery page cursor (1 when
// zero). Search failures abort the running phase and are returned together
// with the partial report; per-file failures are only collected in it.
func (s *Scanner) Run(ctx context.Context, cursor int) (*Report, error) {
	st := &state{report: &Report{}}

	err := s.discover(ctx, cursor, st)
	st.report.Deferred = lo.Uniq(st.deferred)
	if err != nil {
		return st.report, err
	}

	if err := s.manifestPass(ctx, st.report.Deferred, st); err != nil {
		return st.report, err
	}

	s.logger.Infof("Scan finished: %d results, %d deferred to manifests, %d failures",
		st.report.Emitted, len(st.report.Deferred), len(st.report.Failures))
	return st.report, nil
}

func (s *Scanner) bootstrapQuery() string {
	return fmt.Sprintf("/sap-ui-core.js in:file org:%s filename:/%s", s.org, s.bootstrapFile)
}

func (s *Scanner) manifestQuery(repos []string) string {
	repoQuery := strings.Join(lo.Map(repos, func(name string, _ int) string {
		return "repo:" + name
	}), " OR ")
	return fmt.Sprintf("minUI5Version in:file %s filename:/%s", repoQuery, s.manifestFile)
}

func (s *Scanner) discover(ctx context.Context, cursor int, st *state) error {
	page := cursor
	if page < 1 {
		page = 1
	}
	query := s.bootstrapQuery()
	s.logger.Infof("Searching bootstrap files: %s", query)

	for {
		sp, err := s.searcher.SearchCode(ctx, query, page)
		if err != nil {
			st.report.NextCursor = page
			return &PhaseError{Phase: PhaseBootstrap, Page: page, Err: err}
		}
		s.logger.Debugf("Bootstrap search page %d: %d files", page, len(sp.Items))

		if err = s.each(ctx, sp.Items, func(ctx context.Context, item github.SearchItem) {
			s.resolveBootstrap(ctx, item, st)
		}); err != nil {
			st.report.NextCursor = page
			return &PhaseError{Phase: PhaseBootstrap, Page: page, Err: err}
		}

		if !sp.HasNextPage() {
			st.report.NextCursor = 0
			return nil
		}
		page = sp.NextPage
	}
}

func (s *Scanner) manifestPass(ctx context.Context, repos []string, st *state) error {
	if len(repos) == 0 {
		return nil
	}
	s.logger.Infof("Looking for manifests of %d repositories without a pinned bootstrap", len(repos))

	for _, batch := range lo.Chunk(repos, s.batchSize) {
		query := s.manifestQuery(batch)
		page := 1
		for {
			sp, err := s.searcher.SearchCode(ctx, query, page)
			if err != nil {
				return &PhaseError{Phase: PhaseManifest, Page: page, Err: err}
			}

			if err = s.each(ctx, sp.Items, func(ctx context.Context, item github.SearchItem) {
				s.resolveManifest(ctx, item, st)
			}); err != nil {
				return &PhaseError{Phase: PhaseManifest, Page: page, Err: err}
			}

			if !sp.HasNextPage() {
				break
			}
			page = sp.NextPage
		}
	}
	return nil
}

// each runs fn for every item with the configured concurrency. It only
// fails when ctx is done.
func (s *Scanner) each(ctx context.Context, items []github.SearchItem, fn func(context.Context, github.SearchItem)) error {
	var bar *pb.ProgressBar
	if s.progress {
		bar = pb.StartNew(len(items))
		defer bar.Finish()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, item)
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Scanner) resolveBootstrap(ctx context.Context, item github.SearchItem, st *state) {
	owner, repo := item.Repository.Owner.Login, item.Repository.Name
	log := s.logger.WithFields(logrus.Fields{"phase": PhaseBootstrap, "repo": owner + "/" + repo, "path": item.Path})

	content, err := s.fetcher.FetchFileContent(ctx, owner, repo, item.Path)
	if err != nil {
		log.Warnf("Skipping file: %s", err)
		st.fail(Failure{Phase: PhaseBootstrap, Owner: owner, Repo: repo, Path: item.Path, Err: err})
		return
	}

	detected, err := s.extractor.Extract(content)
	if err != nil {
		log.Warnf("Skipping file: %s", err)
		st.fail(Failure{Phase: PhaseBootstrap, Owner: owner, Repo: repo, Path: item.Path, Err: err})
		return
	}
	if detected.MinVersionOnly {
		log.Debug("No pinned version, deferring to the manifest")
		st.deferRepo(owner + "/" + repo)
		return
	}

	r := s.assemble(item, SourceBootstrap, detected, s.resolver.Resolve(detected.Version))
	s.emit(ctx, r, st)
}

func (s *Scanner) resolveManifest(ctx context.Context, item github.SearchItem, st *state) {
	owner, repo := item.Repository.Owner.Login, item.Repository.Name
	log := s.logger.WithFields(logrus.Fields{"phase": PhaseManifest, "repo": owner + "/" + repo, "path": item.Path})

	content, err := s.fetcher.FetchFileContent(ctx, owner, repo, item.Path)
	if err != nil {
		log.Warnf("Skipping file: %s", err)
		st.fail(Failure{Phase: PhaseManifest, Owner: owner, Repo: repo, Path: item.Path, Err: err})
		return
	}

	detected, err := manifest.Extract(content)
	if err != nil {
		log.Warnf("Skipping file: %s", err)
		st.fail(Failure{Phase: PhaseManifest, Owner: owner, Repo: repo, Path: item.Path, Err: err})
		return
	}

	r := s.assemble(item, SourceManifest, detected, s.resolver.ResolvePatch(detected.VersionString()))
	s.emit(ctx, r, st)
}

// emit finishes the record with its CI status and hands it to the sink.
// The record is not touched after that.
func (s *Scanner) emit(ctx context.Context, r Result, st *state) {
	if err := s.joinCI(ctx, &r); err != nil {
		s.logger.WithFields(logrus.Fields{"phase": PhaseCI, "repo": r.Owner + "/" + r.Repo}).Warnf("CI status unavailable: %s", err)
		st.fail(Failure{Phase: PhaseCI, Owner: r.Owner, Repo: r.Repo, Path: r.Path, Err: err})
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s.sink.Add(r) {
		st.report.Emitted++
	} else {
		st.report.Duplicates++
	}
}
