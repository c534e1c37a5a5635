// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/gig"
)

const testABI = `[
	{"type":"function","name":"placeBid","stateMutability":"nonpayable","inputs":[{"name":"jobId","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getBalance","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"postJob","stateMutability":"payable","inputs":[{"name":"title","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"BidPlaced","anonymous":false,"inputs":[{"name":"jobId","type":"uint256","indexed":true},{"name":"worker","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"timestamp","type":"uint256","indexed":false}]},
	{"type":"receive","stateMutability":"payable"}
]`

func mustNew(t *testing.T) *ABI {
	abi, err := New([]byte(testABI))
	require.NoError(t, err)
	return abi
}

func TestNew(t *testing.T) {
	_, err := New([]byte("{"))
	assert.Error(t, err)

	abi := mustNew(t)
	assert.True(t, abi.HasReceive())
	_, ok := abi.Receive()
	assert.True(t, ok)

	_, ok = abi.MethodByName("noSuchMethod")
	assert.False(t, ok)
	_, ok = abi.EventByName("NoSuchEvent")
	assert.False(t, ok)
}

func TestMethod(t *testing.T) {
	abi := mustNew(t)

	placeBid, ok := abi.MethodByName("placeBid")
	require.True(t, ok)
	assert.Equal(t, "placeBid", placeBid.Name())
	id := placeBid.ID()
	assert.Equal(t, crypto.Keccak256([]byte("placeBid(uint256,uint256)"))[:4], id[:])
	assert.False(t, placeBid.Const())
	assert.False(t, placeBid.Payable())

	byID, ok := abi.MethodByID(placeBid.ID())
	require.True(t, ok)
	assert.Equal(t, placeBid, byID)

	input, err := placeBid.EncodeInput(big.NewInt(7), big.NewInt(5))
	require.NoError(t, err)
	assert.Len(t, input, 4+64)

	byInput, err := abi.MethodByInput(input)
	require.NoError(t, err)
	assert.Equal(t, placeBid, byInput)

	var args struct {
		JobId  *big.Int
		Amount *big.Int
	}
	require.NoError(t, placeBid.DecodeInput(input, &args))
	assert.Equal(t, big.NewInt(7), args.JobId)
	assert.Equal(t, big.NewInt(5), args.Amount)

	assert.Error(t, placeBid.DecodeInput(input[1:], &args))

	_, err = placeBid.EncodeInput(big.NewInt(7))
	assert.Error(t, err)

	getBalance, ok := abi.MethodByName("getBalance")
	require.True(t, ok)
	assert.True(t, getBalance.Const())

	output, err := getBalance.EncodeOutput(big.NewInt(100))
	require.NoError(t, err)
	var balance *big.Int
	require.NoError(t, getBalance.DecodeOutput(output, &balance))
	assert.Equal(t, big.NewInt(100), balance)

	values, err := getBalance.UnpackOutput(output)
	require.NoError(t, err)
	assert.Equal(t, []any{big.NewInt(100)}, values)

	assert.Error(t, getBalance.DecodeOutput(output[1:], &balance))

	postJob, ok := abi.MethodByName("postJob")
	require.True(t, ok)
	assert.True(t, postJob.Payable())
}

func TestMethodByInput(t *testing.T) {
	abi := mustNew(t)

	_, err := abi.MethodByInput([]byte{1, 2})
	assert.Error(t, err)

	_, err = abi.MethodByInput([]byte{1, 2, 3, 4})
	assert.Error(t, err)

	_, err = ExtractMethodID([]byte{1, 2, 3})
	assert.Error(t, err)

	id, err := ExtractMethodID([]byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, MethodID{1, 2, 3, 4}, id)
}

func TestEvent(t *testing.T) {
	abi := mustNew(t)

	ev, ok := abi.EventByName("BidPlaced")
	require.True(t, ok)
	assert.Equal(t, "BidPlaced", ev.Name())
	assert.Equal(t, gig.Bytes32(crypto.Keccak256Hash([]byte("BidPlaced(uint256,address,uint256,uint256)"))), ev.ID())

	byID, ok := abi.EventByID(ev.ID())
	require.True(t, ok)
	assert.Equal(t, ev, byID)

	worker := gig.BytesToAddress([]byte("worker"))
	topics, err := ev.EncodeTopics(big.NewInt(1), worker)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, gig.BytesToBytes32([]byte{1}), topics[0])
	assert.Equal(t, gig.BytesToBytes32(worker.Bytes()), topics[1])

	_, err = ev.EncodeTopics(big.NewInt(1))
	assert.Error(t, err)

	data, err := ev.Encode(big.NewInt(5), big.NewInt(1700000000))
	require.NoError(t, err)

	var decoded struct {
		Amount    *big.Int
		Timestamp *big.Int
	}
	require.NoError(t, ev.Decode(data, &decoded))
	assert.Equal(t, big.NewInt(5), decoded.Amount)
	assert.Equal(t, big.NewInt(1700000000), decoded.Timestamp)

	values, err := ev.DecodeToMap(append([]gig.Bytes32{ev.ID()}, topics...), data)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), values["jobId"])
	assert.Equal(t, common.Address(worker), values["worker"])
	assert.Equal(t, big.NewInt(5), values["amount"])

	_, err = ev.DecodeToMap(topics, data)
	assert.Error(t, err, "event id missing")
}
