package schedule

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/SRBConsultingTeam/ui5-quality-checks/utils"
)

const (
	versionOverviewURL = "https://sapui5.hana.ondemand.com/versionoverview.json"
	fileName           = "versionoverview.json"
)

// Config fetches the upstream version overview and keeps a validated copy
// on disk.
type Config struct {
	url   string
	dir   string
	appFs afero.Fs
}

type option func(*Config)

func WithURL(url string) option {
	return func(c *Config) {
		c.url = url
	}
}

func WithDir(dir string) option {
	return func(c *Config) {
		c.dir = dir
	}
}

func WithFs(fs afero.Fs) option {
	return func(c *Config) {
		c.appFs = fs
	}
}

func NewConfig(opts ...option) *Config {
	c := &Config{
		url:   versionOverviewURL,
		dir:   utils.ScheduleDir(),
		appFs: afero.NewOsFs(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Path is the location of the stored schedule document.
func (c Config) Path() string {
	return filepath.Join(c.dir, fileName)
}

// Update downloads the schedule, validates it and stores it. The stored
// copy is only replaced when the download parses.
func (c Config) Update(ctx context.Context) (*Store, error) {
	logrus.Infof("Fetching UI5 version overview from %s", c.url)
	tmpFile, err := utils.DownloadToTempFile(ctx, c.url)
	if err != nil {
		return nil, &LoadError{Path: c.url, Err: xerrors.Errorf("failed to fetch version overview: %w", err)}
	}
	defer os.Remove(tmpFile)

	b, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, &LoadError{Path: c.url, Err: xerrors.Errorf("unable to read version overview: %w", err)}
	}

	store, err := Parse(b)
	if err != nil {
		var le *LoadError
		if xerrors.As(err, &le) {
			le.Path = c.url
		}
		return nil, err
	}

	if err = utils.NewFs(c.appFs).WriteBytes(c.Path(), b); err != nil {
		return nil, xerrors.Errorf("failed to save version overview: %w", err)
	}
	return store, nil
}

// Load reads the stored schedule document.
func (c Config) Load() (*Store, error) {
	return Load(c.appFs, c.Path())
}
