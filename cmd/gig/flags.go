// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/log"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		EnvVar: "GIG_CONFIG",
		Usage:  "path to a YAML file holding flag values, keyed by flag name",
	}
	genesisFlag = cli.StringFlag{
		Name:   "genesis",
		EnvVar: "GIG_GENESIS",
		Usage:  "path to a custom genesis file (the devnet is used if not set)",
	}
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		EnvVar: "GIG_DATA_DIR",
		Usage:  "directory for block-chain databases",
	}
	persistFlag = cli.BoolFlag{
		Name:   "persist",
		EnvVar: "GIG_PERSIST",
		Usage:  "blockchain data storage option, if set data will be saved to disk",
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		EnvVar: "GIG_API_ADDR",
		Usage:  "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		EnvVar: "GIG_API_CORS",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiCallGasLimitFlag = cli.Uint64Flag{
		Name:  "api-call-gas-limit",
		Value: gig.BlockGasLimit,
		Usage: "limit contract call gas",
	}
	apiBacktraceLimitFlag = cli.Uint64Flag{
		Name:  "api-backtrace-limit",
		Value: 1000,
		Usage: "limit the distance between 'position' and best block for subscriptions APIs",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration(ms) above threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests responded with a 5xx status",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:   "verbosity",
		Value:  log.LegacyLevelInfo,
		EnvVar: "GIG_VERBOSITY",
		Usage:  "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		EnvVar: "GIG_JSON_LOGS",
		Usage:  "output logs in JSON format",
	}
	blockIntervalFlag = cli.Uint64Flag{
		Name:  "block-interval",
		Value: gig.BlockInterval,
		Usage: "seconds between two blocks, ignored with --on-demand",
	}
	onDemandFlag = cli.BoolFlag{
		Name:   "on-demand",
		EnvVar: "GIG_ON_DEMAND",
		Usage:  "create new block when there is pending transaction",
	}
	gasLimitFlag = cli.Uint64Flag{
		Name:  "gas-limit",
		Value: 0,
		Usage: "block gas limit (inherits the genesis gas limit if set to 0)",
	}
	txPoolLimitFlag = cli.Uint64Flag{
		Name:  "txpool-limit",
		Value: 10000,
		Usage: "set tx limit in pool",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to state and database caches",
		Value: 1024,
	}
	redisURLFlag = cli.StringFlag{
		Name:   "redis-url",
		EnvVar: "GIG_REDIS_URL",
		Usage:  "publish decoded events to redis, e.g. redis://localhost:6379/0",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		EnvVar: "GIG_ENABLE_METRICS",
		Usage:  "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		EnvVar: "GIG_METRICS_ADDR",
		Usage:  "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:   "enable-admin",
		EnvVar: "GIG_ENABLE_ADMIN",
		Usage:  "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:   "admin-addr",
		Value:  "localhost:2113",
		EnvVar: "GIG_ADMIN_ADDR",
		Usage:  "admin service listening address",
	}
	adminJWTSecretFlag = cli.StringFlag{
		Name:   "admin-jwt-secret",
		EnvVar: "GIG_ADMIN_JWT_SECRET",
		Usage:  "require admin requests to carry a HS256 bearer token signed with this secret",
	}
	skipNTPFlag = cli.BoolFlag{
		Name:  "skip-ntp",
		Usage: "skip the NTP clock offset check at startup",
	}
	verifyFlag = cli.BoolFlag{
		Name:  "verify",
		Usage: "verify the rebuilt log db against block receipts",
	}
)
