// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testchain runs a devnet sequencer on in-memory stores for tests.
package testchain

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/genesis"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/health"
	"github.com/gigstream/gigstream/kv"
	"github.com/gigstream/gigstream/logdb"
	"github.com/gigstream/gigstream/lvldb"
	"github.com/gigstream/gigstream/node"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

// Chain is a devnet with its sequencer, driven by explicit Mint calls.
type Chain struct {
	db     *lvldb.LevelDB
	logDB  *logdb.LogDB
	repo   *chain.Repository
	stater *state.Stater
	node   *node.Node
	nonce  atomic.Uint64
}

// NewDefault creates a devnet chain on in-memory stores.
func NewDefault() (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	gene := genesis.NewDevnet()
	genesisBlock, _, stage, err := gene.Build()
	if err != nil {
		return nil, fmt.Errorf("unable to build genesis: %w", err)
	}
	repo, err := chain.NewRepository(db, genesisBlock, stage)
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}
	stater := state.NewStater(db, 16)
	return &Chain{
		db:     db,
		logDB:  logDB,
		repo:   repo,
		stater: stater,
		node:   node.New(repo, stater, logDB, health.New(0), nil, node.Options{}),
	}, nil
}

func (c *Chain) DB() kv.Store                   { return c.db }
func (c *Chain) Repo() *chain.Repository        { return c.repo }
func (c *Chain) Stater() *state.Stater          { return c.stater }
func (c *Chain) LogDB() *logdb.LogDB            { return c.logDB }
func (c *Chain) Node() *node.Node               { return c.node }
func (c *Chain) GenesisBlock() *block.Block     { return c.repo.GenesisBlock() }
func (c *Chain) BestBlock() *block.Block        { return c.repo.BestBlock() }
func (c *Chain) ChainTag() byte                 { return c.repo.ChainTag() }
func (c *Chain) Accounts() []genesis.DevAccount { return genesis.DevAccounts() }

// Close releases the stores.
func (c *Chain) Close() error {
	if err := c.logDB.Close(); err != nil {
		return err
	}
	return c.db.Close()
}

// NewTx builds a tx of clauses signed by account.
func (c *Chain) NewTx(account genesis.DevAccount, clauses ...*tx.Clause) *tx.Transaction {
	b := tx.NewBuilder().
		ChainTag(c.ChainTag()).
		Gas(2_000_000).
		Expiration(gig.MaxTxExpiration).
		Nonce(c.nonce.Add(1))
	for _, clause := range clauses {
		b.Clause(clause)
	}
	return tx.MustSign(b.Build(), account.PrivateKey)
}

// MintTransactions submits trxs and packs them into one block.
func (c *Chain) MintTransactions(trxs ...*tx.Transaction) (*node.BlockEvent, error) {
	for _, trx := range trxs {
		if err := c.node.Submit(trx); err != nil {
			return nil, err
		}
	}
	return c.node.Pack(true)
}

// MintClauses packs a single tx of clauses signed by account.
// An error is returned if the tx reverts.
func (c *Chain) MintClauses(account genesis.DevAccount, clauses ...*tx.Clause) (*tx.Transaction, error) {
	trx := c.NewTx(account, clauses...)
	ev, err := c.MintTransactions(trx)
	if err != nil {
		return nil, err
	}
	if r := ev.Receipts[0]; r.Reverted {
		return trx, errors.Errorf("tx reverted: %s", r.RevertReason)
	}
	return trx, nil
}

// Clause encodes a call of method on the contract at to.
func Clause(to gig.Address, contractABI *abi.ABI, value *big.Int, method string, args ...any) (*tx.Clause, error) {
	m, ok := contractABI.MethodByName(method)
	if !ok {
		return nil, errors.Errorf("method %s not found", method)
	}
	data, err := m.EncodeInput(args...)
	if err != nil {
		return nil, err
	}
	return tx.NewClause(&to).WithValue(value).WithData(data), nil
}
