package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SRBConsultingTeam/ui5-quality-checks/manifest"
	"github.com/SRBConsultingTeam/ui5-quality-checks/version"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     version.Detected
		wantPath string
		wantErr  string
	}{
		{
			name: "happy path",
			content: `{
				"_version": "1.12.0",
				"sap.app": {"id": "srb.tools"},
				"sap.ui5": {"dependencies": {"minUI5Version": "1.108.5", "libs": {"sap.m": {}}}}
			}`,
			want: version.Detected{Version: version.NewPatch("1.108.5"), MinVersionOnly: true},
		},
		{
			name:    "two part minimum is still a patch baseline",
			content: `{"sap.ui5": {"dependencies": {"minUI5Version": "1.120"}}}`,
			want:    version.Detected{Version: version.NewPatch("1.120"), MinVersionOnly: true},
		},
		{
			name:    "list form uses the first entry",
			content: `{"sap.ui5": {"dependencies": {"minUI5Version": ["", "1.96.2", "1.108.5"]}}}`,
			want:    version.Detected{Version: version.NewPatch("1.96.2"), MinVersionOnly: true},
		},
		{
			name:    "sad path: invalid JSON",
			content: `{"sap.ui5": `,
			wantErr: "unable to parse JSON",
		},
		{
			name:     "sad path: no descriptor section",
			content:  `{"sap.app": {}}`,
			wantPath: "sap.ui5",
			wantErr:  "missing section",
		},
		{
			name:     "sad path: no dependencies",
			content:  `{"sap.ui5": {"rootView": {}}}`,
			wantPath: "sap.ui5/dependencies",
			wantErr:  "missing section",
		},
		{
			name:     "sad path: no minimum version",
			content:  `{"sap.ui5": {"dependencies": {"libs": {}}}}`,
			wantPath: "sap.ui5/dependencies/minUI5Version",
			wantErr:  "missing value",
		},
		{
			name:     "sad path: empty minimum version",
			content:  `{"sap.ui5": {"dependencies": {"minUI5Version": " "}}}`,
			wantPath: "sap.ui5/dependencies/minUI5Version",
			wantErr:  "empty value",
		},
		{
			name:     "sad path: numeric minimum version",
			content:  `{"sap.ui5": {"dependencies": {"minUI5Version": 1.108}}}`,
			wantPath: "sap.ui5/dependencies/minUI5Version",
			wantErr:  "unexpected value 1.108",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := manifest.Extract(tt.content)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				var pe *manifest.ParseError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, tt.wantPath, pe.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.IsEvergreen())
		})
	}
}
