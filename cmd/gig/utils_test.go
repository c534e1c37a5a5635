// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gigstream/gigstream/genesis"
)

func runWithFlags(t *testing.T, flags []cli.Flag, args []string, action func(ctx *cli.Context) error) {
	app := cli.NewApp()
	app.Flags = flags
	app.Action = action
	require.NoError(t, app.Run(append([]string{"gig"}, args...)))
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 128, normalizeCacheSize(0))
	assert.Equal(t, 128, normalizeCacheSize(64))
	assert.LessOrEqual(t, normalizeCacheSize(1<<30), 1<<30)
}

func TestDefaultDataDir(t *testing.T) {
	assert.Contains(t, strings.ToLower(defaultDataDir()), "gigstream")
}

func TestPrintDevAccounts(t *testing.T) {
	var buf bytes.Buffer
	printDevAccounts(&buf)
	for _, a := range genesis.DevAccounts() {
		assert.Contains(t, buf.String(), a.Address.String())
	}
}

func TestSelectGenesis(t *testing.T) {
	runWithFlags(t, runFlags, nil, func(ctx *cli.Context) error {
		gene, err := selectGenesis(ctx)
		require.NoError(t, err)
		assert.Equal(t, genesis.NewDevnet().ID(), gene.ID())
		return nil
	})

	missing := filepath.Join(t.TempDir(), "genesis.json")
	runWithFlags(t, runFlags, []string{"--genesis", missing}, func(ctx *cli.Context) error {
		_, err := selectGenesis(ctx)
		assert.ErrorContains(t, err, "read genesis file")
		return nil
	})

	invalid := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"launchTime": "soon"}`), 0o600))
	runWithFlags(t, runFlags, []string{"--genesis", invalid}, func(ctx *cli.Context) error {
		_, err := selectGenesis(ctx)
		assert.ErrorContains(t, err, "parse genesis file")
		return nil
	})
}

func TestMakeInstanceDir(t *testing.T) {
	dataDir := t.TempDir()
	runWithFlags(t, runFlags, []string{"--data-dir", dataDir}, func(ctx *cli.Context) error {
		gene := genesis.NewDevnet()
		dir, err := makeInstanceDir(ctx, gene)
		require.NoError(t, err)
		assert.Equal(t, dataDir, filepath.Dir(dir))
		assert.True(t, strings.HasPrefix(filepath.Base(dir), "instance-"))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		return nil
	})
}

func TestBlockInterval(t *testing.T) {
	runWithFlags(t, runFlags, nil, func(ctx *cli.Context) error {
		assert.Equal(t, 10*time.Second, blockInterval(ctx))
		return nil
	})
	runWithFlags(t, runFlags, []string{"--block-interval", "3"}, func(ctx *cli.Context) error {
		assert.Equal(t, 3*time.Second, blockInterval(ctx))
		return nil
	})
}

func TestServe(t *testing.T) {
	addr, stop, err := startMetricsServer("localhost:0")
	require.NoError(t, err)
	defer stop()
	assert.True(t, strings.HasSuffix(addr, "/metrics"))

	_, _, err = serve("not an addr", nil)
	assert.Error(t, err)
}
