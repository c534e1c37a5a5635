// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/test/datagen"
	"github.com/gigstream/gigstream/test/testchain"
	"github.com/gigstream/gigstream/tx"
)

var (
	ts     *httptest.Server
	tchain *testchain.Chain
	reward = big.NewInt(1e18)
)

func initServer(t *testing.T) {
	var err error
	tchain, err = testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })

	router := mux.NewRouter()
	New(tchain.Repo(), tchain.Node()).Mount(router, "/transactions")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
}

func postJobTx(t *testing.T) *tx.Transaction {
	deadline := new(big.Int).SetUint64(uint64(time.Now().Unix()) + 3*24*3600)
	clause, err := testchain.Clause(builtin.Escrow.Address, builtin.Escrow.ABI, reward, "postJob", "Pintor", "Condesa", reward, deadline)
	require.NoError(t, err)
	return tchain.NewTx(tchain.Accounts()[1], clause)
}

func TestTransactions(t *testing.T) {
	initServer(t)

	for name, tt := range map[string]func(*testing.T){
		"sendAndGet":         sendAndGet,
		"getPending":         getPending,
		"sendBadTx":          sendBadTx,
		"sendInvalidBody":    sendInvalidBody,
		"getNotFound":        getNotFound,
		"getRevertedReceipt": getRevertedReceipt,
	} {
		t.Run(name, tt)
	}
}

func sendAndGet(t *testing.T) {
	trx := postJobTx(t)
	raw, err := rlp.EncodeToBytes(trx)
	require.NoError(t, err)

	res, code := httpPost(t, ts.URL+"/transactions", RawTx{Raw: hexutil.Encode(raw)})
	require.Equal(t, http.StatusOK, code, string(res))
	var sent map[string]string
	require.NoError(t, json.Unmarshal(res, &sent))
	assert.Equal(t, trx.ID().String(), sent["id"])

	res, code = httpPost(t, ts.URL+"/transactions", RawTx{Raw: hexutil.Encode(raw)})
	assert.Equal(t, http.StatusForbidden, code, "known tx")

	ev, err := tchain.Node().Pack(false)
	require.NoError(t, err)

	res, code = httpGet(t, ts.URL+"/transactions/"+trx.ID().String())
	require.Equal(t, http.StatusOK, code, string(res))
	var got Transaction
	require.NoError(t, json.Unmarshal(res, &got))
	assert.Equal(t, trx.ID(), got.ID)
	assert.Equal(t, tchain.Accounts()[1].Address, got.Origin)
	require.NotNil(t, got.Meta)
	assert.Equal(t, ev.Block.Header().ID(), got.Meta.BlockID)
	require.Len(t, got.Clauses, 1)
	assert.Equal(t, builtin.Escrow.Address, *got.Clauses[0].To)
	assert.Equal(t, reward, (*big.Int)(&got.Clauses[0].Value))

	res, code = httpGet(t, ts.URL+"/transactions/"+trx.ID().String()+"/receipt")
	require.Equal(t, http.StatusOK, code, string(res))
	var receipt Receipt
	require.NoError(t, json.Unmarshal(res, &receipt))
	assert.False(t, receipt.Reverted)
	assert.Equal(t, ev.Receipts[0].GasUsed, receipt.GasUsed)
	assert.Equal(t, trx.ID(), receipt.Meta.TxID)
	require.Len(t, receipt.Outputs, 1)
	require.Len(t, receipt.Outputs[0].Events, 1)
	require.NotNil(t, receipt.Outputs[0].Events[0].Decoded)
	assert.Equal(t, "JobPosted", receipt.Outputs[0].Events[0].Decoded.Event)
	require.Len(t, receipt.Outputs[0].Transfers, 1)
	assert.Equal(t, builtin.Escrow.Address, receipt.Outputs[0].Transfers[0].Recipient)
}

func getPending(t *testing.T) {
	trx := postJobTx(t)
	require.NoError(t, tchain.Node().Submit(trx))

	_, code := httpGet(t, ts.URL+"/transactions/"+trx.ID().String())
	assert.Equal(t, http.StatusNotFound, code)

	res, code := httpGet(t, ts.URL+"/transactions/"+trx.ID().String()+"?pending=true")
	require.Equal(t, http.StatusOK, code, string(res))
	var got Transaction
	require.NoError(t, json.Unmarshal(res, &got))
	assert.Nil(t, got.Meta)

	_, code = httpGet(t, ts.URL+"/transactions/"+trx.ID().String()+"?pending=maybe")
	assert.Equal(t, http.StatusBadRequest, code)

	_, err := tchain.Node().Pack(false)
	require.NoError(t, err)
}

func sendBadTx(t *testing.T) {
	to := gig.EscrowAddress
	wrongTag := tx.MustSign(
		tx.NewBuilder().ChainTag(tchain.ChainTag()+1).Clause(tx.NewClause(&to)).Gas(100000).Expiration(10).Build(),
		tchain.Accounts()[1].PrivateKey,
	)
	raw, err := rlp.EncodeToBytes(wrongTag)
	require.NoError(t, err)
	_, code := httpPost(t, ts.URL+"/transactions", RawTx{Raw: hexutil.Encode(raw)})
	assert.Equal(t, http.StatusBadRequest, code)
}

func sendInvalidBody(t *testing.T) {
	_, code := httpPost(t, ts.URL+"/transactions", map[string]string{"raw": "0xzz"})
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpPost(t, ts.URL+"/transactions", map[string]string{"unknown": "0x"})
	assert.Equal(t, http.StatusBadRequest, code, "strict decoding")

	_, code = httpPost(t, ts.URL+"/transactions", RawTx{Raw: "0x" + "c0"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func getNotFound(t *testing.T) {
	id := datagen.RandomHash()
	_, code := httpGet(t, ts.URL+"/transactions/"+id.String())
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/transactions/"+id.String()+"/receipt")
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/transactions/0x1234")
	assert.Equal(t, http.StatusBadRequest, code)
}

func getRevertedReceipt(t *testing.T) {
	clause, err := testchain.Clause(builtin.Escrow.Address, builtin.Escrow.ABI, nil, "cancelJob", big.NewInt(1000))
	require.NoError(t, err)
	trx, err := tchain.MintClauses(tchain.Accounts()[3], clause)
	require.Error(t, err)

	res, code := httpGet(t, ts.URL+"/transactions/"+trx.ID().String()+"/receipt")
	require.Equal(t, http.StatusOK, code, string(res))
	var receipt Receipt
	require.NoError(t, json.Unmarshal(res, &receipt))
	assert.True(t, receipt.Reverted)
	assert.NotEmpty(t, receipt.RevertReason)
	assert.Empty(t, receipt.Outputs)
}

func httpPost(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
