// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/test/testchain"
)

var reward = big.NewInt(1e18)

func newServer(t *testing.T, tchain *testchain.Chain, backtraceLimit uint32) (*Subscriptions, *httptest.Server) {
	subs := New(tchain.Repo(), []string{"http://allowed.example"}, backtraceLimit)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return subs, ts
}

func newChain(t *testing.T) *testchain.Chain {
	tchain, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })
	return tchain
}

func postJob(t *testing.T, tchain *testchain.Chain, title string) {
	deadline := new(big.Int).SetUint64(uint64(time.Now().Unix()) + 3*24*3600)
	clause, err := testchain.Clause(builtin.Escrow.Address, builtin.Escrow.ABI, reward, "postJob", title, "Roma Norte", reward, deadline)
	require.NoError(t, err)
	_, err = tchain.MintClauses(tchain.Accounts()[1], clause)
	require.NoError(t, err)
}

func dial(t *testing.T, ts *httptest.Server, path string) (*websocket.Conn, *http.Response) {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, resp
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(v))
}

func TestSubscribeEvents(t *testing.T) {
	tchain := newChain(t)
	subs, ts := newServer(t, tchain, 100)
	t.Cleanup(subs.Close)

	postJob(t, tchain, "Electricista")

	conn, resp := dial(t, ts, "/subscriptions/event?pos=0&addr="+builtin.Escrow.Address.String())
	assert.NotEmpty(t, resp.Header.Get(subscriptionIDHeader))

	var msg EventMessage
	readJSON(t, conn, &msg)
	assert.Equal(t, builtin.Escrow.Address, msg.Address)
	assert.Equal(t, uint32(1), msg.Meta.BlockNumber)
	assert.Equal(t, tchain.Accounts()[1].Address, msg.Meta.TxOrigin)
	require.NotNil(t, msg.Decoded)
	assert.Equal(t, "JobPosted", msg.Decoded.Event)
	assert.Equal(t, "Electricista", msg.Decoded.Args["title"])

	postJob(t, tchain, "Plomero")

	readJSON(t, conn, &msg)
	assert.Equal(t, uint32(2), msg.Meta.BlockNumber)
	assert.Equal(t, "Plomero", msg.Decoded.Args["title"])
}

func TestSubscribeEventsByTopic(t *testing.T) {
	tchain := newChain(t)
	subs, ts := newServer(t, tchain, 100)
	t.Cleanup(subs.Close)

	jobPosted, ok := builtin.Escrow.ABI.EventByName("JobPosted")
	require.True(t, ok)
	conn, _ := dial(t, ts, "/subscriptions/event?t0="+jobPosted.ID().String())

	deadline := new(big.Int).SetUint64(uint64(time.Now().Unix()) + 3*24*3600)
	postClause, err := testchain.Clause(builtin.Escrow.Address, builtin.Escrow.ABI, reward, "postJob", "Carpintero", "Del Valle", reward, deadline)
	require.NoError(t, err)
	bidClause, err := testchain.Clause(builtin.Escrow.Address, builtin.Escrow.ABI, nil, "placeBid", big.NewInt(1), reward)
	require.NoError(t, err)
	_, err = tchain.MintClauses(tchain.Accounts()[1], postClause)
	require.NoError(t, err)
	_, err = tchain.MintClauses(tchain.Accounts()[2], bidClause)
	require.NoError(t, err)
	_, err = tchain.MintClauses(tchain.Accounts()[1], postClause)
	require.NoError(t, err)

	var msg EventMessage
	readJSON(t, conn, &msg)
	assert.Equal(t, uint32(1), msg.Meta.BlockNumber)
	readJSON(t, conn, &msg)
	assert.Equal(t, uint32(3), msg.Meta.BlockNumber, "bids are filtered out")
	assert.Equal(t, jobPosted.ID(), msg.Topics[0])
}

func TestSubscribeBlocks(t *testing.T) {
	tchain := newChain(t)
	subs, ts := newServer(t, tchain, 100)
	t.Cleanup(subs.Close)

	conn, _ := dial(t, ts, "/subscriptions/block")
	postJob(t, tchain, "Albanil")

	var msg BlockMessage
	readJSON(t, conn, &msg)
	best := tchain.BestBlock()
	assert.Equal(t, best.Header().ID(), msg.ID)
	assert.Equal(t, uint32(1), msg.Number)
	assert.Equal(t, best.Size(), msg.Size)
	require.Len(t, msg.Transactions, 1)
	assert.Equal(t, best.Transactions()[0].ID(), msg.Transactions[0])
}

func TestSubscribeErrors(t *testing.T) {
	tchain := newChain(t)
	postJob(t, tchain, "Cerrajero")

	subs, ts := newServer(t, tchain, 0)
	t.Cleanup(subs.Close)

	for _, tc := range []struct {
		path string
		code int
	}{
		{"/subscriptions/event?pos=0", http.StatusForbidden},
		{"/subscriptions/block?pos=0", http.StatusForbidden},
		{"/subscriptions/event?pos=5", http.StatusBadRequest},
		{"/subscriptions/event?pos=abc", http.StatusBadRequest},
		{"/subscriptions/event?addr=0x1234", http.StatusBadRequest},
		{"/subscriptions/event?t3=0x1234", http.StatusBadRequest},
		{"/subscriptions/beat", http.StatusNotFound},
	} {
		res, err := http.Get(ts.URL + tc.path) //#nosec G107
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, tc.code, res.StatusCode, tc.path)
	}

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/block"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	assert.Equal(t, websocket.ErrBadHandshake, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestClose(t *testing.T) {
	tchain := newChain(t)
	subs, ts := newServer(t, tchain, 100)

	conn, _ := dial(t, ts, "/subscriptions/block")
	done := make(chan struct{})
	go func() {
		subs.Close()
		close(done)
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
	conn.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscriptions not closed")
	}
}
