package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	githubql "github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/oauth2"
	"golang.org/x/xerrors"

	"github.com/SRBConsultingTeam/ui5-quality-checks/config"
	"github.com/SRBConsultingTeam/ui5-quality-checks/github"
	"github.com/SRBConsultingTeam/ui5-quality-checks/scan"
	"github.com/SRBConsultingTeam/ui5-quality-checks/schedule"
	"github.com/SRBConsultingTeam/ui5-quality-checks/support"
	"github.com/SRBConsultingTeam/ui5-quality-checks/utils"
)

var (
	configPath   = flag.String("config", "", "path to a YAML config file")
	org          = flag.String("org", "", "GitHub organization to scan")
	output       = flag.String("output", "", "path of the JSON results file")
	schedulePath = flag.String("schedule", "", "local versionoverview.json (skips the download)")
	cursor       = flag.Int("cursor", 0, "bootstrap search page to resume from")
	concurrency  = flag.Int("concurrency", 0, "files resolved in parallel per search page")
	ci           = flag.Bool("ci", false, "join the latest QM workflow run of every repository")
	progress     = flag.Bool("progress", false, "show a progress bar per search page")
	debug        = flag.Bool("debug", false, "debug logging")
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	_ = godotenv.Load()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appFs := afero.NewOsFs()
	cfg, err := loadConfig(appFs)
	if err != nil {
		return err
	}

	githubToken := utils.LookupEnv("GITHUB_TOKEN", "")
	if githubToken == "" {
		return xerrors.New("GITHUB_TOKEN must be set")
	}

	store, err := loadSchedule(ctx, appFs, cfg.Schedule)
	if err != nil {
		return xerrors.Errorf("schedule error: %w", err)
	}
	logrus.Infof("Schedule loaded: %d version lines, %d patches", len(store.Versions()), len(store.Patches()))

	src := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: githubToken},
	)
	httpClient := oauth2.NewClient(ctx, src)
	client := github.NewClient(githubToken,
		github.WithGraphQLClient(githubql.NewClient(httpClient)),
		github.WithTimeout(cfg.Timeout),
	)

	var workflows scan.WorkflowLister
	if cfg.Workflow.Enabled {
		workflows = client
	}

	sink := scan.NewSink()
	scanner := scan.NewScanner(client, client, support.NewResolver(store), sink,
		scan.WithOrg(cfg.Org),
		scan.WithHosts(cfg.Hosts...),
		scan.WithBootstrapFile(cfg.BootstrapFile),
		scan.WithManifestFile(cfg.ManifestFile),
		scan.WithBatchSize(cfg.ManifestBatchSize),
		scan.WithConcurrency(cfg.Concurrency),
		scan.WithSoonWindow(cfg.SoonWindow),
		scan.WithWorkflows(workflows, cfg.Workflow.File, cfg.Workflow.Branch),
		scan.WithProgress(*progress),
	)

	logrus.Infof("Scanning %s", cfg.Org)
	report, scanErr := scanner.Run(ctx, *cursor)

	// partial results are saved as well
	if err = sink.Save(appFs, cfg.Output); err != nil {
		return err
	}
	logrus.Infof("%d results written to %s (%d duplicates)", report.Emitted, cfg.Output, report.Duplicates)

	if err = report.Err(); err != nil {
		logrus.Warnf("%d files skipped: %s", len(report.Failures), err)
	}
	if scanErr != nil {
		if report.NextCursor > 0 {
			logrus.Errorf("Scan aborted, resume with -cursor %d", report.NextCursor)
		}
		return xerrors.Errorf("scan error: %w", scanErr)
	}
	return nil
}

// loadConfig reads the optional config file and applies the flags on top.
func loadConfig(fs afero.Fs) (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(fs, *configPath); err != nil {
			return config.Config{}, err
		}
	}

	if *org != "" {
		cfg.Org = *org
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *schedulePath != "" {
		cfg.Schedule.Path = *schedulePath
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}
	if *ci {
		cfg.Workflow.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, xerrors.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadSchedule prefers a local file, then a fresh download, then the copy
// cached by an earlier run.
func loadSchedule(ctx context.Context, fs afero.Fs, sc config.Schedule) (*schedule.Store, error) {
	if sc.Path != "" {
		return schedule.Load(fs, sc.Path)
	}

	c := schedule.NewConfig(schedule.WithURL(sc.URL), schedule.WithFs(fs))
	store, err := c.Update(ctx)
	if err == nil {
		return store, nil
	}

	logrus.Warnf("Schedule download failed, using the cached copy at %s: %s", c.Path(), err)
	cached, cacheErr := c.Load()
	if cacheErr != nil {
		return nil, xerrors.Errorf("no usable schedule: %w", err)
	}
	return cached, nil
}
