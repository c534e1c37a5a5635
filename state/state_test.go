// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/lvldb"
)

func M(a ...any) []any {
	return a
}

func newStater(t *testing.T) (*Stater, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStater(db, 1), db
}

func TestStateReadWrite(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := gig.BytesToAddress([]byte("account1"))
	storageKey := gig.BytesToBytes32([]byte("storageKey"))

	tests := []struct {
		fn       func()
		expected []any
	}{
		{func() {}, M(big.NewInt(0), nil)},
		{func() { st.SetBalance(addr, big.NewInt(10)) }, M(big.NewInt(10), nil)},
		{func() { st.AddBalance(addr, big.NewInt(5)) }, M(big.NewInt(15), nil)},
		{func() { st.SubBalance(addr, big.NewInt(20)) }, M(big.NewInt(15), nil)},
		{func() { st.SubBalance(addr, big.NewInt(15)) }, M(big.NewInt(0), nil)},
	}
	for _, tt := range tests {
		tt.fn()
		assert.Equal(t, tt.expected, M(st.GetBalance(addr)))
	}

	assert.Equal(t, M(gig.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))
	st.SetStorage(addr, storageKey, gig.BytesToBytes32([]byte("value")))
	assert.Equal(t, M(gig.BytesToBytes32([]byte("value")), nil), M(st.GetStorage(addr, storageKey)))

	assert.Error(t, st.SetBalance(addr, big.NewInt(-1)))
}

func TestStateBalanceIsCopied(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()
	addr := gig.BytesToAddress([]byte("a"))

	bal := big.NewInt(10)
	st.SetBalance(addr, bal)
	bal.SetInt64(99)

	got, _ := st.GetBalance(addr)
	got.SetInt64(77)

	assert.Equal(t, M(big.NewInt(10), nil), M(st.GetBalance(addr)))
}

func TestStateTransfer(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()
	from, to := gig.BytesToAddress([]byte("from")), gig.BytesToAddress([]byte("to"))
	st.SetBalance(from, big.NewInt(100))

	assert.Equal(t, M(true, nil), M(st.Transfer(from, to, big.NewInt(60))))
	assert.Equal(t, M(false, nil), M(st.Transfer(from, to, big.NewInt(41))))
	assert.Equal(t, M(big.NewInt(40), nil), M(st.GetBalance(from)))
	assert.Equal(t, M(big.NewInt(60), nil), M(st.GetBalance(to)))
}

func TestStateRevert(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := gig.BytesToAddress([]byte("account1"))
	storageKey := gig.BytesToBytes32([]byte("storageKey"))

	values := []struct {
		balance *big.Int
		storage gig.Bytes32
	}{
		{big.NewInt(1), gig.BytesToBytes32([]byte("v1"))},
		{big.NewInt(2), gig.BytesToBytes32([]byte("v2"))},
		{big.NewInt(3), gig.BytesToBytes32([]byte("v3"))},
	}

	var chk int
	for _, v := range values {
		chk = st.NewCheckpoint()
		st.SetBalance(addr, v.balance)
		st.SetStorage(addr, storageKey, v.storage)
	}

	for i := range values {
		v := values[len(values)-i-1]
		assert.Equal(t, M(v.balance, nil), M(st.GetBalance(addr)))
		assert.Equal(t, M(v.storage, nil), M(st.GetStorage(addr, storageKey)))
		st.RevertTo(chk)
		chk--
	}
	assert.Equal(t, M(big.NewInt(0), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(gig.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))
}

func TestStageCommit(t *testing.T) {
	stater, db := newStater(t)
	addr := gig.BytesToAddress([]byte("account1"))
	key := gig.BytesToBytes32([]byte("k"))

	// warm the cache with an absent value first
	assert.Equal(t, M(big.NewInt(0), nil), M(stater.NewState().GetBalance(addr)))

	st := stater.NewState()
	st.SetBalance(addr, big.NewInt(42))
	st.SetStorage(addr, key, gig.BytesToBytes32([]byte("v")))
	require.NoError(t, st.EncodeStorage(addr, gig.BytesToBytes32([]byte("list")), func() ([]byte, error) {
		return rlp.EncodeToBytes([]uint64{1, 2})
	}))

	stage := st.Stage()
	assert.Equal(t, 3, stage.Len())
	hash := stage.Hash()
	assert.False(t, hash.IsZero())
	assert.Equal(t, hash, st.Stage().Hash(), "hash is deterministic")

	require.NoError(t, stage.Commit(db.Bulk()))

	fresh := stater.NewState()
	assert.Equal(t, M(big.NewInt(42), nil), M(fresh.GetBalance(addr)))
	assert.Equal(t, M(gig.BytesToBytes32([]byte("v")), nil), M(fresh.GetStorage(addr, key)))

	var list []uint64
	require.NoError(t, fresh.DecodeStorage(addr, gig.BytesToBytes32([]byte("list")), func(raw []byte) error {
		return rlp.DecodeBytes(raw, &list)
	}))
	assert.Equal(t, []uint64{1, 2}, list)

	// zero values delete the keys
	fresh.SetBalance(addr, big.NewInt(0))
	fresh.SetStorage(addr, key, gig.Bytes32{})
	require.NoError(t, fresh.Stage().Commit(db.Bulk()))

	again := stater.NewState()
	assert.Equal(t, M(big.NewInt(0), nil), M(again.GetBalance(addr)))
	assert.Equal(t, M(gig.Bytes32{}, nil), M(again.GetStorage(addr, key)))
}
