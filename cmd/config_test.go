package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/filter-flow/internal/config"
)

func TestRunConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantErr     bool
		contains    []string
		notContains []string
	}{
		{
			name: "basic configuration display",
			cfg:  config.DefaultConfig(),
			contains: []string{
				"Active Configuration:",
				"Server:",
				"Address: 127.0.0.1:5173",
				"Base URL: /",
				"Store:",
				"Backend: memory",
				"Logging:",
				"Level: info",
				"Debug:",
				"Enabled: false",
			},
			notContains: []string{"Raw Configuration (JSON):"},
		},
		{
			name: "debug shows raw json",
			cfg: func() *config.Config {
				cfg := config.DefaultConfig()
				cfg.Debug.Enabled = true
				cfg.Store.Backend = "duckdb"

				return cfg
			}(),
			contains: []string{
				"Backend: duckdb",
				"Raw Configuration (JSON):",
				`"backend": "duckdb"`,
			},
		},
		{
			name:    "missing configuration",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.cfg != nil {
				ctx = withConfig(ctx, tt.cfg)
			}

			var buf bytes.Buffer

			err := runConfig(ctx, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}

			for _, s := range tt.notContains {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestConfigCommandFlags(t *testing.T) {
	isolateConfig(t)

	var buf bytes.Buffer
	err := NewApp(&buf).Run(context.Background(),
		[]string{"filter-flow", "--backend", "duckdb", "--log-level", "warn", "config"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Backend: duckdb")
	assert.Contains(t, buf.String(), "Level: warn")
}

func TestConfigCommandSave(t *testing.T) {
	isolateConfig(t)

	path := filepath.Join(t.TempDir(), "saved", "config.json")
	t.Setenv("FILTER_FLOW_CONFIG", path)

	var buf bytes.Buffer
	err := NewApp(&buf).Run(context.Background(),
		[]string{"filter-flow", "--backend", "sqlite", "config", "--save"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"backend": "sqlite"`)
	assert.Contains(t, buf.String(), "Configuration saved to")
}
