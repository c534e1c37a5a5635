// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/api/escrow"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/health"
	"github.com/gigstream/gigstream/test/testchain"
)

func TestRouter(t *testing.T) {
	tchain, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })

	handler, closeSubs := New(tchain.Node(), Options{
		AllowedOrigins: "http://Dapp.example, http://other.example",
		BacktraceLimit: 100,
		CallGasLimit:   5_000_000,
		LogsLimit:      100,
		RequestTimeout: time.Second,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Cleanup(closeSubs)

	for _, path := range []string{
		"/blocks/best",
		"/node/info",
		"/escrow",
		"/reputation",
		"/stakes",
		"/jobs?employer=" + tchain.Accounts()[1].Address.String(),
		"/accounts/" + builtin.Escrow.Address.String(),
	} {
		body, code := httpGet(t, ts.URL+path)
		assert.Equal(t, http.StatusOK, code, "%s: %s", path, body)
	}

	body, code := httpGet(t, ts.URL+"/escrow")
	require.Equal(t, http.StatusOK, code)
	var summary escrow.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, builtin.Escrow.Address, summary.Address)

	_, code = httpGet(t, ts.URL+"/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, code, "pprof is off")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/node/info", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dapp.example")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "http://dapp.example", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestAdminServer(t *testing.T) {
	var level slog.LevelVar
	var apiLogs atomic.Bool

	url, stop, err := StartAdminServer("localhost:0", &level, health.New(0), &apiLogs, "")
	require.NoError(t, err)
	t.Cleanup(stop)

	body, code := httpGet(t, url+"/loglevel")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"currentLevel":"info"}`, string(body))

	_, code = httpGet(t, url+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
