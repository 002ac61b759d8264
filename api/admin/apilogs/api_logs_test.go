// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPILogsHandler(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		body         string
		startValue   bool
		expectedHTTP int
		expectedEnd  bool
	}{
		{"enable", http.MethodPost, `{"enabled":true}`, false, http.StatusOK, true},
		{"disable", http.MethodPost, `{"enabled":false}`, true, http.StatusOK, false},
		{"get", http.MethodGet, "", true, http.StatusOK, true},
		{"bad body", http.MethodPost, `{"enabled":"yes"}`, true, http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := atomic.Bool{}
			enabled.Store(tt.startValue)

			req, err := http.NewRequest(tt.method, "/admin/apilogs", bytes.NewBufferString(tt.body))
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router := mux.NewRouter()
			New(&enabled).Mount(router, "/admin/apilogs")
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedHTTP, rr.Code)
			assert.Equal(t, tt.expectedEnd, enabled.Load())
			if rr.Code == http.StatusOK {
				var res LogStatus
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
				assert.Equal(t, tt.expectedEnd, res.Enabled)
			}
		})
	}
}
