// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/gigstream/gigstream/api/admin/apilogs"
	"github.com/gigstream/gigstream/api/admin/loglevel"
	"github.com/gigstream/gigstream/health"

	healthAPI "github.com/gigstream/gigstream/api/admin/health"
)

// New returns the admin handler. A non-empty jwtSecret requires every request to carry
// a bearer token signed with it.
func New(logLevel *slog.LevelVar, health *health.Health, apiLogsToggle *atomic.Bool, jwtSecret string) http.HandlerFunc {
	router := mux.NewRouter()
	subRouter := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(subRouter, "/loglevel")
	healthAPI.NewAPI(health).Mount(subRouter, "/health")
	apilogs.New(apiLogsToggle).Mount(subRouter, "/apilogs")

	if jwtSecret != "" {
		router.Use(bearerAuth([]byte(jwtSecret)))
	}

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
