// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/log"
)

// recordingLogger keeps the level and ctx of every request line.
type recordingLogger struct {
	levels []string
	ctx    []any
}

func (r *recordingLogger) With(_ ...any) log.Logger                     { return r }
func (r *recordingLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (r *recordingLogger) Handler() slog.Handler                        { return nil }
func (r *recordingLogger) Trace(_ string, _ ...any)                     {}
func (r *recordingLogger) Debug(_ string, _ ...any)                     {}
func (r *recordingLogger) Error(_ string, _ ...any)                     {}
func (r *recordingLogger) Crit(_ string, _ ...any)                      {}

func (r *recordingLogger) Info(_ string, ctx ...any) {
	r.levels = append(r.levels, "info")
	r.ctx = append(r.ctx, ctx...)
}

func (r *recordingLogger) Warn(_ string, ctx ...any) {
	r.levels = append(r.levels, "warn")
	r.ctx = append(r.ctx, ctx...)
}

func (r *recordingLogger) value(key string) any {
	for i := 0; i+1 < len(r.ctx); i += 2 {
		if r.ctx[i] == key {
			return r.ctx[i+1]
		}
	}
	return nil
}

func respond(status int, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		if status != http.StatusOK {
			w.WriteHeader(status)
		}
		w.Write([]byte("{}"))
	}
}

func TestRequestLoggerHandler(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		enabled bool
		slow    time.Duration
		log5xx  bool
		level   string
	}{
		{"enabled", respond(http.StatusOK, 0), true, 0, false, "info"},
		{"disabled", respond(http.StatusOK, 0), false, 0, false, ""},
		{"slow job query", respond(http.StatusOK, 15*time.Millisecond), false, 10 * time.Millisecond, false, "warn"},
		{"fast job query", respond(http.StatusOK, 0), false, 50 * time.Millisecond, false, ""},
		{"internal error", respond(http.StatusInternalServerError, 0), false, 0, true, "warn"},
		{"unhealthy", respond(http.StatusServiceUnavailable, 0), false, 0, true, "warn"},
		{"internal error not logged", respond(http.StatusInternalServerError, 0), false, 0, false, ""},
		{"bad request", respond(http.StatusBadRequest, 0), false, 0, true, ""},
		{"enabled and failing", respond(http.StatusInternalServerError, 0), true, 0, true, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			body := `{"title":"Pintor","location":"Condesa"}`
			req := httptest.NewRequest(http.MethodPost, "/jobs?employer=0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", strings.NewReader(body))
			RequestLoggerMiddleware(logger, &enabled, tt.slow, tt.log5xx)(tt.handler).ServeHTTP(httptest.NewRecorder(), req)

			if tt.level == "" {
				assert.Empty(t, logger.levels)
				return
			}
			require.Equal(t, []string{tt.level}, logger.levels)
			assert.Equal(t, "/jobs?employer=0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", logger.value("URI"))
			assert.Equal(t, http.MethodPost, logger.value("Method"))
			assert.Equal(t, body, logger.value("Body"))
			assert.IsType(t, int64(0), logger.value("Timestamp"))
			assert.IsType(t, int64(0), logger.value("DurationMs"))
		})
	}
}

func TestRequestLoggerStatus(t *testing.T) {
	logger := &recordingLogger{}
	var enabled atomic.Bool
	enabled.Store(true)

	handler := RequestLoggerMiddleware(logger, &enabled, 0, false)
	handler(respond(http.StatusOK, 0)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/escrow", nil))
	handler(respond(http.StatusNotFound, 0)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/1000", nil))

	var statuses []any
	for i := 0; i+1 < len(logger.ctx); i += 2 {
		if logger.ctx[i] == "Status" {
			statuses = append(statuses, logger.ctx[i+1])
		}
	}
	assert.Equal(t, []any{http.StatusOK, http.StatusNotFound}, statuses, "implicit 200 is recorded")
}

func TestRequestLoggerKeepsBody(t *testing.T) {
	logger := &recordingLogger{}
	enabled := atomic.Bool{}
	enabled.Store(true)

	var got string
	handler := RequestLoggerMiddleware(logger, &enabled, 0, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got = string(data)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/logs/event", strings.NewReader(`{"order":"desc"}`)))

	assert.Equal(t, `{"order":"desc"}`, got)
	assert.Contains(t, logger.ctx, `{"order":"desc"}`)
}

func TestHandleRequestTimeout(t *testing.T) {
	var deadline bool
	handler := HandleRequestTimeout(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/blocks/best", nil))
	assert.True(t, deadline)

	req := httptest.NewRequest("GET", "/subscriptions/block", nil)
	req.Header.Set("Upgrade", "websocket")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, deadline, "websockets are not bounded")

	handler = HandleRequestTimeout(0)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/blocks/best", nil))
	assert.False(t, deadline)
}
