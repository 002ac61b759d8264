// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakeledger/log"
)

// mockLogger records the context of Info and Warn calls.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }
func (m *mockLogger) New(_ ...any) log.Logger { return m }
func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any) {}
func (m *mockLogger) Trace(_ string, _ ...any) {}
func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) Crit(_ string, _ ...any) {}
func (m *mockLogger) Write(_ slog.Level, _ string, _ ...any) {}
func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (m *mockLogger) Handler() slog.Handler { return nil }

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerHandler(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		delay     time.Duration
		enabled   bool
		threshold time.Duration
		shouldLog bool
	}{
		{"enabled", http.StatusOK, 0, true, 0, true},
		{"disabled", http.StatusOK, 0, false, 0, false},
		{"disabled but slow", http.StatusOK, 20 * time.Millisecond, false, time.Millisecond, true},
		{"disabled and fast", http.StatusOK, 0, false, time.Hour, false},
		{"disabled but failed", http.StatusInternalServerError, 0, false, 0, true},
		{"client error not logged", http.StatusNotFound, 0, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			enabled := &atomic.Bool{}
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, enabled, tt.threshold)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(tt.delay)
				w.WriteHeader(tt.status)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deposits/1", nil))

			assert.Equal(t, tt.status, rec.Code)
			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "URI")
			assert.Contains(t, logger.loggedData, "/deposits/1")
			assert.Contains(t, logger.loggedData, tt.status)
		})
	}
}
