// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

// loadConfigFile applies the flag values of the --config YAML file to flags.
// Flags set on the command line or through the environment take precedence,
// and values of flags other commands own are ignored.
//
//	api-addr: 0.0.0.0:8669
//	on-demand: true
//	cache: 2048
func loadConfigFile(ctx *cli.Context, flags []cli.Flag) error {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	values, err := parseConfig(data, runFlags)
	if err != nil {
		return errors.Wrapf(err, "config file [%v]", path)
	}

	owned := make(map[string]bool, len(flags))
	for _, f := range flags {
		owned[f.GetName()] = true
	}
	names := make([]string, 0, len(values))
	for name := range values {
		if owned[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if ctx.IsSet(name) {
			continue
		}
		if err := ctx.Set(name, values[name]); err != nil {
			return errors.Wrapf(err, "config file [%v]: %v", path, name)
		}
	}
	return nil
}

// parseConfig decodes data into flag values keyed by flag name. Unknown keys are rejected.
func parseConfig(data []byte, flags []cli.Flag) (map[string]string, error) {
	known := make(map[string]bool, len(flags))
	for _, f := range flags {
		known[f.GetName()] = true
	}

	var raw map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	values := make(map[string]string, len(raw))
	for name, v := range raw {
		if !known[name] || name == configFlag.Name {
			return nil, fmt.Errorf("unknown flag %q", name)
		}
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("flag %q: scalar value expected", name)
		case nil:
			continue
		}
		values[name] = fmt.Sprint(v)
	}
	return values, nil
}
