// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/kv"
	"github.com/gigstream/gigstream/lvldb"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/test/datagen"
	"github.com/gigstream/gigstream/tx"
)

func M(a ...any) []any {
	return a
}

func newGenesis(ts uint64) *block.Block {
	return new(block.Builder).
		ParentID(gig.Bytes32{0xff, 0xff, 0xff, 0xff}).
		Timestamp(ts).
		GasLimit(10_000_000).
		Build()
}

func newTestRepo(t *testing.T) (kv.Store, *chain.Repository) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	repo, err := chain.NewRepository(db, newGenesis(1700000000), nil)
	require.NoError(t, err)
	return db, repo
}

func newTx(t *testing.T, nonce uint64) *tx.Transaction {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	to := gig.EscrowAddress
	return tx.MustSign(tx.NewBuilder().
		ChainTag(1).
		Clause(tx.NewClause(&to).WithValue(big.NewInt(1))).
		Gas(50000).
		Nonce(nonce).
		Build(), key)
}

func newBlock(parent *block.Block, ts uint64, txs ...*tx.Transaction) *block.Block {
	builder := new(block.Builder).
		ParentID(parent.Header().ID()).
		Timestamp(ts)
	for _, trx := range txs {
		builder.Transaction(trx)
	}
	return builder.Build()
}

func TestRepository(t *testing.T) {
	db, repo := newTestRepo(t)
	b0 := repo.GenesisBlock()

	assert.Equal(t, b0, repo.BestBlock())
	assert.Equal(t, b0.Header().ID()[31], repo.ChainTag())

	tx1 := newTx(t, 1)
	receipt1 := &tx.Receipt{GasUsed: 21000, Outputs: []*tx.Output{{}}}

	b1 := newBlock(b0, 10, tx1)
	require.NoError(t, repo.AddBlock(b1, tx.Receipts{receipt1}, nil))
	assert.Equal(t, b1.Header().ID(), repo.BestBlock().Header().ID())

	assert.Equal(t, M(b1, nil), M(repo.GetBlock(1)))
	assert.Equal(t, M(b1, nil), M(repo.GetBlockByID(b1.Header().ID())))

	gotTx, meta, err := repo.GetTransaction(tx1.ID())
	require.NoError(t, err)
	assert.Equal(t, tx1.ID(), gotTx.ID())
	assert.Equal(t, &chain.TxMeta{BlockID: b1.Header().ID(), BlockNumber: 1, Index: 0}, meta)

	gotReceipt, _, err := repo.GetReceipt(tx1.ID())
	require.NoError(t, err)
	assert.Equal(t, receipt1.GasUsed, gotReceipt.GasUsed)

	// reopen, everything is read back from the store
	repo2, err := chain.NewRepository(db, b0, nil)
	require.NoError(t, err)
	assert.Equal(t, b1.Header().ID(), repo2.BestBlock().Header().ID())

	blk, err := repo2.GetBlock(1)
	require.NoError(t, err)
	assert.Equal(t, b1.Header().ID(), blk.Header().ID())
	require.Len(t, blk.Transactions(), 1)
	assert.Equal(t, tx1.ID(), blk.Transactions()[0].ID())

	receipts, err := repo2.GetBlockReceipts(1)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, uint64(21000), receipts[0].GasUsed)

	_, meta, err = repo2.GetTransaction(tx1.ID())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), meta.BlockNumber)
}

func TestNotFound(t *testing.T) {
	_, repo := newTestRepo(t)

	_, err := repo.GetBlock(1)
	assert.True(t, repo.IsNotFound(err))

	id := repo.GenesisBlock().Header().ID()
	id[31] ^= 0xff
	_, err = repo.GetBlockByID(id)
	assert.True(t, repo.IsNotFound(err))

	_, _, err = repo.GetTransaction(datagen.RandomHash())
	assert.True(t, repo.IsNotFound(err))

	_, _, err = repo.GetReceipt(datagen.RandomHash())
	assert.True(t, repo.IsNotFound(err))
}

func TestAddBlockRejects(t *testing.T) {
	_, repo := newTestRepo(t)
	b0 := repo.GenesisBlock()

	b1 := newBlock(b0, 10)
	require.NoError(t, repo.AddBlock(b1, nil, nil))

	// not on top of best
	assert.Error(t, repo.AddBlock(newBlock(b0, 11), nil, nil))

	// receipts mismatch
	assert.Error(t, repo.AddBlock(newBlock(b1, 20, newTx(t, 1)), nil, nil))
	assert.Equal(t, b1.Header().ID(), repo.BestBlock().Header().ID())
}

func TestGenesisMismatch(t *testing.T) {
	db, _ := newTestRepo(t)
	_, err := chain.NewRepository(db, newGenesis(1800000000), nil)
	assert.EqualError(t, err, "genesis mismatch")

	_, err = chain.NewRepository(db, newBlock(newGenesis(1), 2), nil)
	assert.EqualError(t, err, "genesis number != 0")
}

func TestStateCommittedWithBlock(t *testing.T) {
	db, repo := newTestRepo(t)

	stater := state.NewStater(db, 1)
	st := stater.NewState()
	addr := datagen.RandAddress()
	require.NoError(t, st.SetBalance(addr, big.NewInt(42)))

	require.NoError(t, repo.AddBlock(newBlock(repo.GenesisBlock(), 10), nil, st.Stage()))

	balance, err := state.NewStater(db, 1).NewState().GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), balance)
}

func TestGenesisState(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)

	genesisDB, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.NewStater(genesisDB, 1).NewState()
	addr := datagen.RandAddress()
	require.NoError(t, st.SetBalance(addr, big.NewInt(7)))

	b0 := newGenesis(1700000000)
	_, err = chain.NewRepository(db, b0, st.Stage())
	require.NoError(t, err)

	balance, err := state.NewStater(db, 1).NewState().GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), balance)

	// ignored on reopen
	st = state.NewStater(genesisDB, 1).NewState()
	require.NoError(t, st.SetBalance(addr, big.NewInt(8)))
	_, err = chain.NewRepository(db, b0, st.Stage())
	require.NoError(t, err)

	balance, err = state.NewStater(db, 1).NewState().GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), balance)
}

func TestTicker(t *testing.T) {
	_, repo := newTestRepo(t)
	ticker := repo.NewTicker()

	go func() {
		repo.AddBlock(newBlock(repo.GenesisBlock(), 10), nil, nil)
	}()

	select {
	case <-ticker.C():
		assert.Equal(t, uint32(1), repo.BestBlock().Header().Number())
	case <-time.After(time.Second):
		t.Fatal("no tick")
	}
}
