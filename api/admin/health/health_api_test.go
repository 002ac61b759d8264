// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/health"
)

func get(t *testing.T, h *health.Health, url string) (*health.Status, int) {
	router := mux.NewRouter()
	NewAPI(h).Mount(router, "/health")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(rr, req)

	if rr.Code == http.StatusBadRequest {
		return nil, rr.Code
	}
	var status health.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return &status, rr.Code
}

func TestHealth(t *testing.T) {
	h := health.New(true)

	status, code := get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)
	assert.Nil(t, status.LastCommit)

	h.NewCommit(7, 1700000000)
	status, code = get(t, h, "/health?maxTimeBetweenCommits=1h")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)
	require.NotNil(t, status.LastCommit)
	assert.Equal(t, uint32(7), *status.LastCommit.BatchNumber)

	_, code = get(t, h, "/health?maxTimeBetweenCommits=soon")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthManual(t *testing.T) {
	status, code := get(t, health.New(false), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)
}
