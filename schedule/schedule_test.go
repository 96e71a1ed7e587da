package schedule_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SRBConsultingTeam/ui5-quality-checks/schedule"
)

func TestConfig_Update(t *testing.T) {
	tests := []struct {
		name         string
		overviewFile string
		wantVersions int
		wantPatches  int
		wantErr      string
	}{
		{
			name:         "happy path",
			overviewFile: "testdata/versionoverview.json",
			wantVersions: 3,
			wantPatches:  4,
		},
		{
			name:    "sad path - unable to fetch the overview",
			wantErr: "bad response code: 404",
		},
		{
			name:         "sad path - overview without patches",
			overviewFile: "testdata/sad_missing_patches.json",
			wantErr:      `missing "patches" array`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.overviewFile == "" {
					http.NotFound(w, r)
					return
				}
				http.ServeFile(w, r, tt.overviewFile)
			}))
			defer server.Close()

			fs := afero.NewMemMapFs()
			c := schedule.NewConfig(
				schedule.WithURL(server.URL+"/versionoverview.json"),
				schedule.WithDir("/cache/schedule"),
				schedule.WithFs(fs),
			)

			store, err := c.Update(context.Background())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				var le *schedule.LoadError
				assert.ErrorAs(t, err, &le)

				exists, err := afero.Exists(fs, c.Path())
				require.NoError(t, err)
				assert.False(t, exists, "a broken download must not be stored")
				return
			}

			require.NoError(t, err)
			assert.Len(t, store.Versions(), tt.wantVersions)
			assert.Len(t, store.Patches(), tt.wantPatches)

			assert.Equal(t, filepath.Join("/cache/schedule", "versionoverview.json"), c.Path())
			actual, err := afero.ReadFile(fs, c.Path())
			require.NoError(t, err)
			expected, err := os.ReadFile(tt.overviewFile)
			require.NoError(t, err)
			assert.JSONEq(t, string(expected), string(actual))

			reloaded, err := c.Load()
			require.NoError(t, err)
			assert.Equal(t, store.Versions(), reloaded.Versions())
		})
	}
}
