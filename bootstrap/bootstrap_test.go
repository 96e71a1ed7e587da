package bootstrap_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SRBConsultingTeam/ui5-quality-checks/bootstrap"
	"github.com/SRBConsultingTeam/ui5-quality-checks/version"
)

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		hosts   []string
		want    version.Detected
	}{
		{
			name: "evergreen bootstrap on the first CDN host",
			file: "testdata/evergreen.html",
			want: version.Detected{Version: version.NewEvergreen("1.120")},
		},
		{
			name: "patch bootstrap on the second CDN host",
			file: "testdata/patch.html",
			want: version.Detected{Version: version.NewPatch("1.96.2")},
		},
		{
			name: "relative bootstrap path",
			file: "testdata/unpinned.html",
			want: version.Detected{Version: version.NewUnpinned(), MinVersionOnly: true},
		},
		{
			name: "scripts outside the head are ignored",
			file: "testdata/body_only.html",
			want: version.Detected{Version: version.NewUnpinned(), MinVersionOnly: true},
		},
		{
			name:    "only head script has an unknown host",
			content: `<html><head><script src="https://cdn.example.com/1.120.4/resources/sap-ui-core.js"></script></head></html>`,
			want:    version.Detected{Version: version.NewUnpinned(), MinVersionOnly: true},
		},
		{
			name:    "no version segment on a known host",
			content: `<html><head><script src="https://ui5.sap.com/resources/sap-ui-core.js"></script></head></html>`,
			want:    version.Detected{Version: version.NewUnpinned(), MinVersionOnly: true},
		},
		{
			name:    "non numeric segment on a known host",
			content: `<html><head><script src="https://ui5.sap.com/latest/resources/sap-ui-core.js"></script></head></html>`,
			want:    version.Detected{Version: version.NewUnpinned(), MinVersionOnly: true},
		},
		{
			name:    "protocol relative source",
			content: `<html><head><script src="//sapui5.hana.ondemand.com/1.108.5/resources/sap-ui-core.js"></script></head></html>`,
			want:    version.Detected{Version: version.NewPatch("1.108.5")},
		},
		{
			name: "last pinned tag wins",
			content: `<html><head>
				<script src="https://ui5.sap.com/1.96.2/resources/sap-ui-core.js"></script>
				<script src="https://sapui5.hana.ondemand.com/1.120/resources/sap-ui-core.js"></script>
				<script src="app.js"></script>
			</head></html>`,
			want: version.Detected{Version: version.NewEvergreen("1.120")},
		},
		{
			name:    "no head scripts at all",
			content: `<html><head><title>empty</title></head><body></body></html>`,
			want:    version.Detected{Version: version.NewUnpinned(), MinVersionOnly: true},
		},
		{
			name:    "custom host list",
			content: `<html><head><script src="https://cdn.example.com/1.120.4/resources/sap-ui-core.js"></script></head></html>`,
			hosts:   []string{"cdn.example.com"},
			want:    version.Detected{Version: version.NewPatch("1.120.4")},
		},
		{
			name:    "latin-1 encoded file",
			content: "<html><head><meta charset=\"iso-8859-1\"><title>Caf\xe9</title><script src=\"https://ui5.sap.com/1.120/resources/sap-ui-core.js\"></script></head></html>",
			want:    version.Detected{Version: version.NewEvergreen("1.120")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := tt.content
			if tt.file != "" {
				b, err := os.ReadFile(tt.file)
				require.NoError(t, err)
				content = string(b)
			}

			got, err := bootstrap.NewExtractor(tt.hosts...).Extract(content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewExtractor_DefaultHosts(t *testing.T) {
	assert.Equal(t, []string{"sapui5.hana.ondemand.com", "ui5.sap.com"}, bootstrap.NewExtractor().Hosts())
}
