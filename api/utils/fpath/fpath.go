// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fpath locates the node's files on disk.
package fpath

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/gigstream/gigstream/gig"
)

// HomeDir returns the home dir of the current user, falling back to the working dir.
func HomeDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	if u.HomeDir == "" {
		return os.Getwd()
	}
	return u.HomeDir, nil
}

// AppDataDir returns the per-user data dir of app, following the conventions of goos.
func AppDataDir(home, goos, app string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "io."+app)
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "io."+app)
	default:
		return filepath.Join(home, "."+app)
	}
}

// DefaultDataDir is AppDataDir for the running platform. It is empty when no home dir is found.
func DefaultDataDir(app string) string {
	home, err := HomeDir()
	if err != nil {
		return ""
	}
	return AppDataDir(home, runtime.GOOS, app)
}

// InstanceDir names the dir holding the databases of one chain, keyed by the tail of its genesis id.
func InstanceDir(dataDir string, genesisID gig.Bytes32) string {
	return filepath.Join(dataDir, fmt.Sprintf("instance-%x", genesisID[24:]))
}
