package config

import (
	"time"

	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/SRBConsultingTeam/ui5-quality-checks/bootstrap"
)

const (
	defaultOrg          = "SRBConsultingTeam"
	defaultOutput       = "ui5-results.json"
	defaultTimeout      = 10 * time.Second
	defaultBatchSize    = 5
	defaultWorkflowFile = "srbui5_qm.yaml"
	defaultBranch       = "develop"
	defaultScheduleURL  = "https://sapui5.hana.ondemand.com/versionoverview.json"
)

type Config struct {
	Org           string   `yaml:"org"`
	Hosts         []string `yaml:"hosts"`
	BootstrapFile string   `yaml:"bootstrap_file"`
	ManifestFile  string   `yaml:"manifest_file"`
	// ManifestBatchSize is the number of repositories OR-ed into one
	// manifest search query.
	ManifestBatchSize int           `yaml:"manifest_batch_size"`
	Concurrency       int           `yaml:"concurrency"`
	Timeout           time.Duration `yaml:"timeout"`
	SoonWindow        time.Duration `yaml:"soon_window"`
	Output            string        `yaml:"output"`

	Schedule Schedule `yaml:"schedule"`
	Workflow Workflow `yaml:"workflow"`
}

type Schedule struct {
	URL string `yaml:"url"`
	// Path points to a local versionoverview.json. When set, nothing is downloaded.
	Path string `yaml:"path"`
}

type Workflow struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
	Branch  string `yaml:"branch"`
}

func Default() Config {
	return Config{
		Org:               defaultOrg,
		Hosts:             append([]string(nil), bootstrap.DefaultHosts...),
		BootstrapFile:     "index.html",
		ManifestFile:      "manifest.json",
		ManifestBatchSize: defaultBatchSize,
		Concurrency:       1,
		Timeout:           defaultTimeout,
		Output:            defaultOutput,
		Schedule:          Schedule{URL: defaultScheduleURL},
		Workflow:          Workflow{File: defaultWorkflowFile, Branch: defaultBranch},
	}
}

// Load reads a YAML config file on top of the defaults. Unknown keys are
// rejected.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, xerrors.Errorf("unable to read config %s: %w", path, err)
	}
	if err = yaml.UnmarshalStrict(b, &cfg); err != nil {
		return Config{}, xerrors.Errorf("unable to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Org == "":
		return xerrors.New("org must be specified")
	case len(c.Hosts) == 0:
		return xerrors.New("at least one CDN host must be specified")
	case c.BootstrapFile == "" || c.ManifestFile == "":
		return xerrors.New("bootstrap and manifest file names must be specified")
	case c.ManifestBatchSize < 1:
		return xerrors.Errorf("invalid manifest batch size: %d", c.ManifestBatchSize)
	case c.Concurrency < 1:
		return xerrors.Errorf("invalid concurrency: %d", c.Concurrency)
	case c.Timeout <= 0:
		return xerrors.Errorf("invalid timeout: %s", c.Timeout)
	case c.SoonWindow < 0:
		return xerrors.Errorf("invalid soon window: %s", c.SoonWindow)
	case c.Output == "":
		return xerrors.New("output path must be specified")
	case c.Schedule.URL == "" && c.Schedule.Path == "":
		return xerrors.New("schedule url or path must be specified")
	}

	for i, host := range c.Hosts {
		if host == "" {
			return xerrors.New("empty CDN host")
		}
		if slices.Contains(c.Hosts[:i], host) {
			return xerrors.Errorf("duplicate CDN host: %s", host)
		}
	}
	return nil
}
