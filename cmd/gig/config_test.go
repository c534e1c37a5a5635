// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    map[string]string
		wantErr string
	}{
		{
			name: "scalars",
			data: "api-addr: 0.0.0.0:8669\non-demand: true\ncache: 2048\n",
			want: map[string]string{"api-addr": "0.0.0.0:8669", "on-demand": "true", "cache": "2048"},
		},
		{
			name: "empty",
			data: "",
			want: map[string]string{},
		},
		{
			name: "null value skipped",
			data: "redis-url:\n",
			want: map[string]string{},
		},
		{
			name:    "unknown flag",
			data:    "api-port: 8669\n",
			wantErr: `unknown flag "api-port"`,
		},
		{
			name:    "nested config",
			data:    "config: other.yaml\n",
			wantErr: `unknown flag "config"`,
		},
		{
			name:    "not scalar",
			data:    "api-cors:\n  - a\n  - b\n",
			wantErr: "scalar value expected",
		},
		{
			name:    "bad yaml",
			data:    "api-addr: [\n",
			wantErr: "yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConfig([]byte(tt.data), runFlags)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gig.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api-addr: 0.0.0.0:9000\ncache: 4096\non-demand: true\napi-cors: '*'\n"), 0o600))

	var (
		addr     string
		cache    int
		onDemand bool
		cors     string
	)
	app := cli.NewApp()
	app.Flags = runFlags
	app.Action = func(ctx *cli.Context) error {
		if err := loadConfigFile(ctx, runFlags); err != nil {
			return err
		}
		addr = ctx.String(apiAddrFlag.Name)
		cache = ctx.Int(cacheFlag.Name)
		onDemand = ctx.Bool(onDemandFlag.Name)
		cors = ctx.String(apiCorsFlag.Name)
		return nil
	}

	require.NoError(t, app.Run([]string{"gig", "--config", path, "--cache", "512"}))
	assert.Equal(t, "0.0.0.0:9000", addr)
	assert.Equal(t, 512, cache, "command line wins")
	assert.True(t, onDemand)
	assert.Equal(t, "*", cors)
}

func TestLoadConfigFileIgnoresOtherCommandFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gig.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api-addr: 0.0.0.0:9000\ncache: 4096\n"), 0o600))

	var cache int
	app := cli.NewApp()
	app.Flags = reindexFlags
	app.Action = func(ctx *cli.Context) error {
		if err := loadConfigFile(ctx, reindexFlags); err != nil {
			return err
		}
		cache = ctx.Int(cacheFlag.Name)
		return nil
	}
	require.NoError(t, app.Run([]string{"gig", "--config", path}))
	assert.Equal(t, 4096, cache)
}

func TestLoadConfigFileMissing(t *testing.T) {
	app := cli.NewApp()
	app.Flags = runFlags
	app.Action = func(ctx *cli.Context) error {
		return loadConfigFile(ctx, runFlags)
	}
	err := app.Run([]string{"gig", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	assert.ErrorContains(t, err, "read config file")
}
