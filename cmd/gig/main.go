// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gigstream/gigstream/api"
	"github.com/gigstream/gigstream/health"
	"github.com/gigstream/gigstream/log"
	"github.com/gigstream/gigstream/logdb"
	"github.com/gigstream/gigstream/lvldb"
	"github.com/gigstream/gigstream/metrics"
	"github.com/gigstream/gigstream/node"
	"github.com/gigstream/gigstream/pubsub"
	"github.com/gigstream/gigstream/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	runFlags = []cli.Flag{
		configFlag,
		genesisFlag,
		dataDirFlag,
		persistFlag,
		cacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiCallGasLimitFlag,
		apiBacktraceLimitFlag,
		apiLogsLimitFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		enableAPILogsFlag,
		pprofFlag,
		verbosityFlag,
		jsonLogsFlag,
		blockIntervalFlag,
		onDemandFlag,
		gasLimitFlag,
		txPoolLimitFlag,
		redisURLFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
		adminJWTSecretFlag,
		skipNTPFlag,
	}
	reindexFlags = []cli.Flag{
		configFlag,
		genesisFlag,
		dataDirFlag,
		cacheFlag,
		verbosityFlag,
		jsonLogsFlag,
		verifyFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	// a missing .env is fine, values then come from flags or the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "GigStream",
		Usage:     "Job marketplace escrow node",
		Copyright: "2025 The GigStream developers",
		Flags:     runFlags,
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "reindex",
				Usage:  "rebuild the log db from the stored chain",
				Flags:  reindexFlags,
				Action: reindexAction,
			},
			{
				Name:  "dev-accounts",
				Usage: "print the prefunded accounts of the devnet",
				Action: func(*cli.Context) error {
					printDevAccounts(os.Stdout)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	if err := loadConfigFile(ctx, runFlags); err != nil {
		return err
	}
	logLevel := initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB       *lvldb.LevelDB
		logDB        *logdb.LogDB
		instanceDir  string
		stateCacheMB = 16
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, stateCacheMB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
		if logDB, err = openLogDB(instanceDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if logDB, err = logdb.NewMem(); err != nil {
			mainDB.Close()
			return err
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	repo, err := initChain(gene, mainDB)
	if err != nil {
		return err
	}
	if err := syncLogDB(exitSignal, repo, logDB, false, os.Stdout); err != nil {
		return err
	}

	var publisher *pubsub.Publisher
	if url := ctx.String(redisURLFlag.Name); url != "" {
		if publisher, err = pubsub.New(url); err != nil {
			return err
		}
		defer publisher.Close()

		pingCtx, cancel := context.WithTimeout(exitSignal, 3*time.Second)
		if err := publisher.Ping(pingCtx); err != nil {
			log.Warn("redis is not reachable, publishing may fail", "err", err)
		}
		cancel()
	}

	interval := blockInterval(ctx)
	onDemand := ctx.Bool(onDemandFlag.Name)
	maxBlockAge := interval
	if onDemand {
		maxBlockAge = 0
	}
	healthStatus := health.New(maxBlockAge)

	n := node.New(repo, state.NewStater(mainDB, stateCacheMB), logDB, healthStatus, publisher, node.Options{
		BlockInterval: interval,
		OnDemand:      onDemand,
		GasLimit:      ctx.Uint64(gasLimitFlag.Name),
		PoolLimit:     ctx.Int(txPoolLimitFlag.Name),
	})

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeAPI := api.New(n, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		BacktraceLimit:       uint32(ctx.Uint64(apiBacktraceLimitFlag.Name)),
		CallGasLimit:         ctx.Uint64(apiCallGasLimitFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		RequestTimeout:       time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
	})
	apiAddr, stopAPI, err := serve(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		closeAPI()
		return err
	}
	defer func() { log.Info("stopping API server..."); closeAPI(); stopAPI() }()

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, stop, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := api.StartAdminServer(
			ctx.String(adminAddrFlag.Name),
			logLevel,
			healthStatus,
			apiLogs,
			ctx.String(adminJWTSecretFlag.Name),
		)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); stop() }()
		adminURL = url
	}

	printStartupMessage(gene, repo, instanceDir, "http://"+apiAddr+"/", metricsURL, adminURL)

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		return n.Run(groupCtx)
	})
	if !ctx.Bool(skipNTPFlag.Name) {
		group.Go(func() error {
			checkClockOffset(interval)
			return nil
		})
	}
	return group.Wait()
}

func reindexAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	if err := loadConfigFile(ctx, reindexFlags); err != nil {
		return err
	}
	initLogger(ctx)

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}
	mainDB, _, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	logDB, err := openLogDB(instanceDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	repo, err := initChain(gene, mainDB)
	if err != nil {
		return err
	}
	if err := syncLogDB(exitSignal, repo, logDB, true, os.Stdout); err != nil {
		return err
	}
	if ctx.Bool(verifyFlag.Name) {
		return verifyLogDB(exitSignal, repo.BestBlock().Header().Number(), repo, logDB, os.Stdout)
	}
	return nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
