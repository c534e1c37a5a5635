// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node_test

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/api/node"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/health"
	"github.com/gigstream/gigstream/test/testchain"
)

func TestNode(t *testing.T) {
	tchain, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })

	router := mux.NewRouter()
	node.New(tchain.Repo(), tchain.Node()).Mount(router, "/node")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	var status health.Status
	code := httpGetJSON(t, ts.URL+"/node/health", &status)
	assert.Equal(t, http.StatusServiceUnavailable, code, "sequencer not running")
	assert.False(t, status.Healthy)
	assert.False(t, status.Sequencing)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tchain.Node().Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	assert.Eventually(t, func() bool {
		return httpGetJSON(t, ts.URL+"/node/health", &status) == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, status.Healthy)
	assert.True(t, status.Sequencing)

	deadline := new(big.Int).SetUint64(uint64(time.Now().Unix()) + 3*24*3600)
	clause, err := testchain.Clause(builtin.Escrow.Address, builtin.Escrow.ABI, big.NewInt(1e18), "postJob", "Pintor", "Narvarte", big.NewInt(1e18), deadline)
	require.NoError(t, err)
	require.NoError(t, tchain.Node().Submit(tchain.NewTx(tchain.Accounts()[1], clause)))

	var info node.Info
	require.Equal(t, http.StatusOK, httpGetJSON(t, ts.URL+"/node/info", &info))
	assert.Equal(t, tchain.ChainTag(), info.ChainTag)
	assert.Equal(t, tchain.GenesisBlock().Header().ID(), info.GenesisID)
	assert.LessOrEqual(t, info.BestBlock.Number, tchain.BestBlock().Header().Number())
	assert.LessOrEqual(t, info.PendingTxs, 1)
}

func httpGetJSON(t *testing.T, url string, v any) int {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
	return res.StatusCode
}
