// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/gigstream/gigstream/api/accounts"
	"github.com/gigstream/gigstream/api/blocks"
	"github.com/gigstream/gigstream/api/escrow"
	"github.com/gigstream/gigstream/api/events"
	"github.com/gigstream/gigstream/api/jobs"
	"github.com/gigstream/gigstream/api/middleware"
	"github.com/gigstream/gigstream/api/node"
	"github.com/gigstream/gigstream/api/reputation"
	"github.com/gigstream/gigstream/api/stakes"
	"github.com/gigstream/gigstream/api/subscriptions"
	"github.com/gigstream/gigstream/api/transactions"
	"github.com/gigstream/gigstream/api/transfers"
	"github.com/gigstream/gigstream/log"
	gignode "github.com/gigstream/gigstream/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	BacktraceLimit       uint32
	CallGasLimit         uint64
	LogsLimit            uint64
	RequestTimeout       time.Duration
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	PprofOn              bool
	EnableMetrics        bool
	// EnableReqLogger toggles logging of every request, it may be flipped at runtime by the admin api.
	EnableReqLogger *atomic.Bool
}

// New return api router
func New(n *gignode.Node, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	repo := n.Repo()
	stater := n.Stater()

	router := mux.NewRouter()

	accounts.New(repo, stater, opts.CallGasLimit).
		Mount(router, "/accounts")
	blocks.New(repo).
		Mount(router, "/blocks")
	transactions.New(repo, n).
		Mount(router, "/transactions")
	jobs.New(stater).
		Mount(router, "/jobs")
	escrow.New(stater).
		Mount(router, "/escrow")
	reputation.New(stater).
		Mount(router, "/reputation")
	stakes.New(repo, stater).
		Mount(router, "/stakes")
	events.New(n.LogDB(), opts.LogsLimit).
		Mount(router, "/logs/event")
	transfers.New(n.LogDB(), opts.LogsLimit).
		Mount(router, "/logs/transfer")
	node.New(repo, n).
		Mount(router, "/node")
	subs := subscriptions.New(repo, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(middleware.HandleRequestTimeout(opts.RequestTimeout))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{"x-subscription-id"}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = new(atomic.Bool)
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
