// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/cache"
	"github.com/gigstream/gigstream/co"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/kv"
	"github.com/gigstream/gigstream/log"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

const (
	blockBucket   = kv.Bucket("chain.blk.")   // block number => block
	receiptBucket = kv.Bucket("chain.rcpt.")  // block number => receipts
	txIndexBucket = kv.Bucket("chain.txi.")   // tx id => location
	propBucket    = kv.Bucket("chain.props.") // property-named values such as best block
)

var (
	logger         = log.WithContext("pkg", "chain")
	errNotFound    = errors.New("not found")
	bestBlockIDKey = []byte("best-block-id")
)

// TxMeta locates a transaction on the chain.
type TxMeta struct {
	BlockID     gig.Bytes32
	BlockNumber uint32
	Index       uint64
}

type txLocation struct {
	BlockNumber uint32
	Index       uint64
}

// Repository stores blocks, receipts and the tx index of a linear chain.
//
// It's thread-safe.
type Repository struct {
	db       kv.Store
	blocks   kv.Store
	receipts kv.Store
	txIndex  kv.Store
	props    kv.Store

	genesis *block.Block
	tag     byte

	writeLock sync.Mutex
	best      atomic.Pointer[block.Block]
	tick      co.Signal

	caches struct {
		blocks   *cache.LRU[uint32, *block.Block]
		receipts *cache.LRU[uint32, tx.Receipts]
	}
}

// NewRepository create an instance of repository.
// On an empty db the genesis block is written, along with its state if genesisState is not nil.
// Otherwise the stored genesis must match it.
func NewRepository(db kv.Store, genesis *block.Block, genesisState *state.Stage) (*Repository, error) {
	if genesis.Header().Number() != 0 {
		return nil, errors.New("genesis number != 0")
	}
	if len(genesis.Transactions()) != 0 {
		return nil, errors.New("genesis block should not have transactions")
	}

	genesisID := genesis.Header().ID()
	repo := &Repository{
		db:       db,
		blocks:   blockBucket.NewStore(db),
		receipts: receiptBucket.NewStore(db),
		txIndex:  txIndexBucket.NewStore(db),
		props:    propBucket.NewStore(db),
		genesis:  genesis,
		tag:      genesisID[31],
	}
	repo.caches.blocks = cache.MustNewLRU[uint32, *block.Block](512)
	repo.caches.receipts = cache.MustNewLRU[uint32, tx.Receipts](512)

	val, err := repo.props.Get(bestBlockIDKey)
	if err != nil {
		if !repo.props.IsNotFound(err) {
			return nil, err
		}
		if err := repo.commit(genesis, nil, genesisState); err != nil {
			return nil, err
		}
		repo.best.Store(genesis)
		return repo, nil
	}

	existing, err := repo.GetBlock(0)
	if err != nil {
		return nil, errors.Wrap(err, "get existing genesis")
	}
	if existing.Header().ID() != genesisID {
		return nil, errors.New("genesis mismatch")
	}

	bestID := gig.BytesToBytes32(val)
	best, err := repo.GetBlockByID(bestID)
	if err != nil {
		return nil, errors.Wrap(err, "get best block")
	}
	repo.best.Store(best)
	return repo, nil
}

// ChainTag returns chain tag, which is the last byte of genesis id.
func (r *Repository) ChainTag() byte {
	return r.tag
}

// GenesisBlock returns genesis block.
func (r *Repository) GenesisBlock() *block.Block {
	return r.genesis
}

// BestBlock returns the newest block.
func (r *Repository) BestBlock() *block.Block {
	return r.best.Load()
}

// NewTicker create a waiter signaled on every new best block.
func (r *Repository) NewTicker() co.Waiter {
	return r.tick.NewWaiter()
}

// AddBlock appends a block on top of the best block.
// The state changes made by the block, if any, are committed in the same batch.
func (r *Repository) AddBlock(blk *block.Block, receipts tx.Receipts, stage *state.Stage) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	header := blk.Header()
	best := r.BestBlock()
	if header.ParentID() != best.Header().ID() {
		return errors.Errorf("parent %v is not the best block %v", header.ParentID().AbbrevString(), best.Header().ID().AbbrevString())
	}
	if len(receipts) != len(blk.Transactions()) {
		return errors.New("receipts count mismatch")
	}

	if err := r.commit(blk, receipts, stage); err != nil {
		return err
	}

	num := header.Number()
	r.caches.blocks.Add(num, blk)
	r.caches.receipts.Add(num, receipts)
	r.best.Store(blk)
	r.tick.Broadcast()

	metricBlockHeight().Set(int64(num))
	metricBlockCounter().AddWithLabel(1, map[string]string{"type": "write"})
	logger.Debug("block added", "number", num, "id", header.ID().AbbrevString(), "txs", len(receipts))
	return nil
}

// commit writes the block and the state changes in one batch.
func (r *Repository) commit(blk *block.Block, receipts tx.Receipts, stage *state.Stage) error {
	bulk := r.db.Bulk()
	if err := r.writeBlock(bulk, blk, receipts); err != nil {
		return err
	}
	if stage != nil {
		return errors.Wrap(stage.Commit(bulk), "commit state")
	}
	return bulk.Write()
}

func (r *Repository) writeBlock(bulk kv.Bulk, blk *block.Block, receipts tx.Receipts) error {
	var (
		header   = blk.Header()
		id       = header.ID()
		key      = numberKey(header.Number())
		txPutter = txIndexBucket.NewPutter(bulk)
	)
	if err := saveCompressedRLP(blockBucket.NewPutter(bulk), key, blk); err != nil {
		return err
	}
	if err := saveCompressedRLP(receiptBucket.NewPutter(bulk), key, receipts); err != nil {
		return err
	}
	for i, trx := range blk.Transactions() {
		txID := trx.ID()
		if err := saveRLP(txPutter, txID[:], &txLocation{header.Number(), uint64(i)}); err != nil {
			return err
		}
	}
	return propBucket.NewPutter(bulk).Put(bestBlockIDKey, id[:])
}

// GetBlock returns the block at number.
func (r *Repository) GetBlock(num uint32) (*block.Block, error) {
	return r.caches.blocks.GetOrLoad(num, func(num uint32) (*block.Block, error) {
		if best := r.BestBlock(); best != nil && num > best.Header().Number() {
			return nil, errNotFound
		}
		var blk block.Block
		if err := loadCompressedRLP(r.blocks, numberKey(num), &blk); err != nil {
			if r.blocks.IsNotFound(err) {
				return nil, errNotFound
			}
			return nil, err
		}
		metricBlockCounter().AddWithLabel(1, map[string]string{"type": "read"})
		return &blk, nil
	})
}

// GetBlockByID returns the block with id.
func (r *Repository) GetBlockByID(id gig.Bytes32) (*block.Block, error) {
	blk, err := r.GetBlock(block.Number(id))
	if err != nil {
		return nil, err
	}
	if blk.Header().ID() != id {
		return nil, errNotFound
	}
	return blk, nil
}

// GetBlockReceipts returns the receipts of the block at number.
func (r *Repository) GetBlockReceipts(num uint32) (tx.Receipts, error) {
	return r.caches.receipts.GetOrLoad(num, func(num uint32) (tx.Receipts, error) {
		var receipts tx.Receipts
		if err := loadCompressedRLP(r.receipts, numberKey(num), &receipts); err != nil {
			if r.receipts.IsNotFound(err) {
				return nil, errNotFound
			}
			return nil, err
		}
		return receipts, nil
	})
}

// GetTransactionMeta locates the tx with id.
func (r *Repository) GetTransactionMeta(id gig.Bytes32) (*TxMeta, error) {
	var loc txLocation
	if err := loadRLP(r.txIndex, id[:], &loc); err != nil {
		if r.txIndex.IsNotFound(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	blk, err := r.GetBlock(loc.BlockNumber)
	if err != nil {
		return nil, err
	}
	return &TxMeta{
		BlockID:     blk.Header().ID(),
		BlockNumber: loc.BlockNumber,
		Index:       loc.Index,
	}, nil
}

// GetTransaction returns the tx with id and its location.
func (r *Repository) GetTransaction(id gig.Bytes32) (*tx.Transaction, *TxMeta, error) {
	meta, err := r.GetTransactionMeta(id)
	if err != nil {
		return nil, nil, err
	}
	blk, err := r.GetBlock(meta.BlockNumber)
	if err != nil {
		return nil, nil, err
	}
	txs := blk.Transactions()
	if meta.Index >= uint64(len(txs)) {
		return nil, nil, errors.New("tx index out of range")
	}
	return txs[meta.Index], meta, nil
}

// GetReceipt returns the receipt of the tx with id.
func (r *Repository) GetReceipt(id gig.Bytes32) (*tx.Receipt, *TxMeta, error) {
	meta, err := r.GetTransactionMeta(id)
	if err != nil {
		return nil, nil, err
	}
	receipts, err := r.GetBlockReceipts(meta.BlockNumber)
	if err != nil {
		return nil, nil, err
	}
	if meta.Index >= uint64(len(receipts)) {
		return nil, nil, errors.New("receipt index out of range")
	}
	return receipts[meta.Index], meta, nil
}

// IsNotFound returns if an error means not found.
func (r *Repository) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound) || r.db.IsNotFound(err)
}

func numberKey(num uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, num)
}
