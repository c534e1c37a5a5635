// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gigstream/gigstream/api/utils/fpath"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/co"
	"github.com/gigstream/gigstream/genesis"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/log"
	"github.com/gigstream/gigstream/logdb"
	"github.com/gigstream/gigstream/lvldb"
	"github.com/gigstream/gigstream/metrics"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func defaultDataDir() string {
	return fpath.DefaultDataDir("gigstream")
}

// initLogger installs the root logger and returns the level var shared with the admin api.
func initLogger(ctx *cli.Context) *slog.LevelVar {
	lvl := ctx.Int(verbosityFlag.Name)
	if lvl < 0 || lvl > 9 {
		fatal(fmt.Sprintf("invalid verbosity %v, should be in range 0-9", lvl))
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, logLevel)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, logLevel, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return logLevel
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	file := ctx.String(genesisFlag.Name)
	if file == "" {
		return genesis.NewDevnet(), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	custom, err := genesis.ParseCustomGenesis(context.Background(), data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse genesis file [%v]", file)
	}
	return genesis.NewCustomNet(custom)
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	instanceDir := fpath.InstanceDir(dataDir, gene.ID())
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, instanceDir string) (*lvldb.LevelDB, int, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	log.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	log.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, cacheMB / 2, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("failed to get fd limit", "err", err)
		return 512
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 5120)
}

func openLogDB(instanceDir string) (*logdb.LogDB, error) {
	dir := filepath.Join(instanceDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", dir)
	}
	return db, nil
}

func initChain(gene *genesis.Genesis, mainDB *lvldb.LevelDB) (*chain.Repository, error) {
	genesisBlock, _, genesisStage, err := gene.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build genesis")
	}
	repo, err := chain.NewRepository(mainDB, genesisBlock, genesisStage)
	if err != nil {
		return nil, errors.Wrap(err, "initialize block chain")
	}
	return repo, nil
}

// serve runs handler on addr. It returns the bound address and a func to stop the server.
func serve(addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return listener.Addr().String(), func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	bound, stop, err := serve(addr, handlers.CompressHandler(router))
	if err != nil {
		return "", nil, errors.Wrap(err, "metrics server")
	}
	return "http://" + bound + "/metrics", stop, nil
}

// checkClockOffset warns when the local clock drifts from NTP by more than half a block interval.
func checkClockOffset(blockInterval time.Duration) {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > blockInterval/2 || resp.ClockOffset < -blockInterval/2 {
		log.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func blockInterval(ctx *cli.Context) time.Duration {
	secs := ctx.Uint64(blockIntervalFlag.Name)
	if secs == 0 {
		secs = gig.BlockInterval
	}
	return time.Duration(secs) * time.Second
}

func printStartupMessage(
	gene *genesis.Genesis,
	repo *chain.Repository,
	dataDir string,
	apiURL string,
	metricsURL string,
	adminURL string,
) {
	bestBlock := repo.BestBlock()

	info := fmt.Sprintf(`Starting %v
    Network     [ %v %v ]
    Best block  [ %v #%v @%v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin       [ %v ]
`,
		"GigStream "+fullVersion(),
		gene.ID(), gene.Name(),
		bestBlock.Header().ID(), bestBlock.Header().Number(), time.Unix(int64(bestBlock.Header().Timestamp()), 0),
		dataDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
	fmt.Print(info)
}

func orDisabled(url string) string {
	if url == "" {
		return "Disabled"
	}
	return url
}

func printDevAccounts(w io.Writer) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	info := tableHead
	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent,
			a.Address,
			gig.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	info += tableEnd + "\r\n"
	fmt.Fprint(w, info)
}
