// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"

	"github.com/gigstream/gigstream/api/accounts"
	"github.com/gigstream/gigstream/api/subscriptions"
	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/metrics"
	"github.com/gigstream/gigstream/test/testchain"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func scrape(t *testing.T, ts *httptest.Server) map[string]*dto.MetricFamily {
	body, code := httpGet(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)
	return families
}

func labelsOf(m *dto.Metric) map[string]string {
	labels := make(map[string]string)
	for _, l := range m.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	return labels
}

func TestMetricsMiddleware(t *testing.T) {
	tchain, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })

	router := mux.NewRouter()
	accounts.New(tchain.Repo(), tchain.Stater(), 5_000_000).Mount(router, "/accounts")
	router.Path("/fail").
		Methods(http.MethodGet).
		Name("GET /fail").
		HandlerFunc(utils.WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
			return errors.New("boom")
		}))
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	httpGet(t, ts.URL+"/accounts/0x")
	httpGet(t, ts.URL+"/accounts/"+gig.Address{}.String())
	httpGet(t, ts.URL+"/accounts/"+gig.Address{}.String())
	_, code := httpGet(t, ts.URL+"/fail")
	assert.Equal(t, http.StatusInternalServerError, code)

	counts := make(map[string]float64)
	for _, m := range scrape(t, ts)["gigstream_api_request_count"].GetMetric() {
		labels := labelsOf(m)
		assert.Equal(t, http.MethodGet, labels["method"])
		counts[labels["name"]+" "+labels["code"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{
		"GET /accounts/{address} 400": 1,
		"GET /accounts/{address} 200": 2,
		"GET /fail 500":               1,
	}, counts)
}

func TestWebsocketMetrics(t *testing.T) {
	tchain, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })

	router := mux.NewRouter()
	subs := subscriptions.New(tchain.Repo(), []string{"*"}, 10)
	subs.Mount(router, "/subscriptions")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	t.Cleanup(subs.Close)

	dial := func(subject string) {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/" + subject
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
	}

	active := func() map[string]float64 {
		out := make(map[string]float64)
		for _, m := range scrape(t, ts)["gigstream_api_active_websocket_count"].GetMetric() {
			out[labelsOf(m)["subject"]] = m.GetGauge().GetValue()
		}
		return out
	}

	dial("block")
	assert.Equal(t, map[string]float64{"block": 1}, active())

	dial("block")
	dial("event")
	assert.Equal(t, map[string]float64{"block": 2, "event": 1}, active())

	_, code := httpGet(t, ts.URL+"/subscriptions/event?addr=0x12")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Eventually(t, func() bool {
		return active()["event"] == 1
	}, time.Second, 10*time.Millisecond, "rejected subscriptions are not counted once done")
}
