// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/test/testchain"
)

const callGasLimit = 5_000_000

var (
	ts     *httptest.Server
	tchain *testchain.Chain
)

func initServer(t *testing.T) {
	var err error
	tchain, err = testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { tchain.Close() })

	router := mux.NewRouter()
	New(tchain.Repo(), tchain.Stater(), callGasLimit).Mount(router, "/accounts")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
}

func encode(t *testing.T, method string, args ...any) string {
	m, ok := builtin.Escrow.ABI.MethodByName(method)
	require.True(t, ok, method)
	data, err := m.EncodeInput(args...)
	require.NoError(t, err)
	return hexutil.Encode(data)
}

func TestAccounts(t *testing.T) {
	initServer(t)

	for name, tt := range map[string]func(*testing.T){
		"getAccount":         getAccount,
		"getAccountBadAddr":  getAccountBadAddr,
		"callView":           callView,
		"callSimulatesWrite": callSimulatesWrite,
		"callReverted":       callReverted,
		"batchCall":          batchCall,
		"batchCallErrors":    batchCallErrors,
	} {
		t.Run(name, tt)
	}
}

func getAccount(t *testing.T) {
	res, code := httpGet(t, ts.URL+"/accounts/"+tchain.Accounts()[1].Address.String())
	require.Equal(t, http.StatusOK, code, string(res))
	var acc Account
	require.NoError(t, json.Unmarshal(res, &acc))
	expected, err := tchain.Stater().NewState().GetBalance(tchain.Accounts()[1].Address)
	require.NoError(t, err)
	assert.Equal(t, expected, (*big.Int)(acc.Balance))
	assert.False(t, acc.IsBuiltin)

	res, code = httpGet(t, ts.URL+"/accounts/"+builtin.Escrow.Address.String())
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(res, &acc))
	assert.True(t, acc.IsBuiltin)
}

func getAccountBadAddr(t *testing.T) {
	_, code := httpGet(t, ts.URL+"/accounts/0xabc")
	assert.Equal(t, http.StatusBadRequest, code)
}

func callView(t *testing.T) {
	res, code := httpPost(t, ts.URL+"/accounts/"+builtin.Escrow.Address.String(), CallData{Data: encode(t, "jobCounter")})
	require.Equal(t, http.StatusOK, code, string(res))
	var result CallResult
	require.NoError(t, json.Unmarshal(res, &result))
	assert.False(t, result.Reverted, result.VMError)
	assert.NotZero(t, result.GasUsed)

	m, _ := builtin.Escrow.ABI.MethodByName("jobCounter")
	out, err := m.UnpackOutput(hexutil.MustDecode(result.Data))
	require.NoError(t, err)
	assert.Zero(t, out[0].(*big.Int).Sign())
}

func callSimulatesWrite(t *testing.T) {
	reward := big.NewInt(1e18)
	deadline := new(big.Int).SetUint64(tchain.BestBlock().Header().Timestamp() + 2*86400)
	employer := tchain.Accounts()[1].Address
	res, code := httpPost(t, ts.URL+"/accounts/"+builtin.Escrow.Address.String(), CallData{
		Value:  (*math.HexOrDecimal256)(reward),
		Data:   encode(t, "postJob", "Plomero", "Roma Norte", reward, deadline),
		Caller: &employer,
	})
	require.Equal(t, http.StatusOK, code, string(res))
	var result CallResult
	require.NoError(t, json.Unmarshal(res, &result))
	require.False(t, result.Reverted, result.VMError)
	require.Len(t, result.Events, 1)
	require.NotNil(t, result.Events[0].Decoded)
	assert.Equal(t, "JobPosted", result.Events[0].Decoded.Event)
	require.Len(t, result.Transfers, 1)
	assert.Equal(t, employer, result.Transfers[0].Sender)

	counter, err := builtin.Escrow.WithState(tchain.Stater().NewState()).JobCounter()
	require.NoError(t, err)
	assert.Zero(t, counter, "simulation is not persisted")
}

func callReverted(t *testing.T) {
	res, code := httpPost(t, ts.URL+"/accounts/"+builtin.Escrow.Address.String(), CallData{Data: encode(t, "completeJob", big.NewInt(7))})
	require.Equal(t, http.StatusOK, code, string(res))
	var result CallResult
	require.NoError(t, json.Unmarshal(res, &result))
	assert.True(t, result.Reverted)
	assert.NotEmpty(t, result.VMError)
	assert.Empty(t, result.Events)
}

func batchCall(t *testing.T) {
	to := gig.BytesToAddress([]byte("friend"))
	caller := tchain.Accounts()[2].Address
	escrow := builtin.Escrow.Address
	res, code := httpPost(t, ts.URL+"/accounts/*", BatchCallData{
		Clauses: Clauses{
			{To: &to, Value: (*math.HexOrDecimal256)(big.NewInt(10))},
			{To: &escrow, Data: encode(t, "jobCounter")},
			{To: &escrow, Data: encode(t, "completeJob", big.NewInt(1))},
			{To: &escrow, Data: encode(t, "jobCounter")},
		},
		Caller: &caller,
	})
	require.Equal(t, http.StatusOK, code, string(res))
	var results BatchCallResults
	require.NoError(t, json.Unmarshal(res, &results))
	require.Len(t, results, 3, "stops at the first reverted clause")
	assert.False(t, results[0].Reverted)
	require.Len(t, results[0].Transfers, 1)
	assert.Equal(t, to, results[0].Transfers[0].Recipient)
	assert.False(t, results[1].Reverted)
	assert.True(t, results[2].Reverted)
}

func batchCallErrors(t *testing.T) {
	escrow := builtin.Escrow.Address
	for _, tt := range []struct {
		name string
		body any
		code int
	}{
		{"empty clauses", BatchCallData{}, http.StatusBadRequest},
		{"missing to", BatchCallData{Clauses: Clauses{{Data: "0x"}}}, http.StatusBadRequest},
		{"bad data", BatchCallData{Clauses: Clauses{{To: &escrow, Data: "0xzz"}}}, http.StatusBadRequest},
		{"negative value", BatchCallData{Clauses: Clauses{{To: &escrow, Value: (*math.HexOrDecimal256)(big.NewInt(-1))}}}, http.StatusBadRequest},
		{"gas too high", BatchCallData{Clauses: Clauses{{To: &escrow}}, Gas: callGasLimit + 1}, http.StatusForbidden},
		{"unknown field", map[string]any{"clauses": []any{}, "foo": 1}, http.StatusBadRequest},
	} {
		_, code := httpPost(t, ts.URL+"/accounts/*", tt.body)
		assert.Equal(t, tt.code, code, tt.name)
	}
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
