// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node is the solo sequencer. It queues submitted txs and packs them into blocks,
// one block at a time.
package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/co"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/health"
	"github.com/gigstream/gigstream/log"
	"github.com/gigstream/gigstream/logdb"
	"github.com/gigstream/gigstream/pubsub"
	"github.com/gigstream/gigstream/runtime"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

var logger = log.WithContext("pkg", "node")

type Options struct {
	// BlockInterval is the time between blocks. Ignored when OnDemand.
	BlockInterval time.Duration
	// OnDemand packs a block as soon as a tx is submitted, and never packs empty blocks.
	OnDemand bool
	// GasLimit of packed blocks. Zero inherits the genesis gas limit.
	GasLimit  uint64
	PoolLimit int
}

// BlockEvent is sent to subscribers once a block is committed.
type BlockEvent struct {
	Block    *block.Block
	Receipts tx.Receipts
}

// Node is the solo sequencer.
type Node struct {
	repo      *chain.Repository
	stater    *state.Stater
	logDB     *logdb.LogDB
	health    *health.Health
	publisher *pubsub.Publisher
	options   Options

	pool      *txPool
	packCh    chan struct{}
	packLock  sync.Mutex
	blockFeed event.Feed
	scope     event.SubscriptionScope
	goes      co.Goes
	clock     func() uint64
}

// New creates a node. publisher may be nil.
func New(
	repo *chain.Repository,
	stater *state.Stater,
	logDB *logdb.LogDB,
	health *health.Health,
	publisher *pubsub.Publisher,
	options Options,
) *Node {
	if options.GasLimit == 0 {
		options.GasLimit = repo.GenesisBlock().Header().GasLimit()
	}
	if options.BlockInterval <= 0 {
		options.BlockInterval = time.Duration(gig.BlockInterval) * time.Second
	}
	if options.PoolLimit <= 0 {
		options.PoolLimit = 10000
	}
	return &Node{
		repo:      repo,
		stater:    stater,
		logDB:     logDB,
		health:    health,
		publisher: publisher,
		options:   options,
		pool:      newTxPool(options.PoolLimit),
		packCh:    make(chan struct{}, 1),
		clock:     func() uint64 { return uint64(time.Now().Unix()) },
	}
}

func (n *Node) Repo() *chain.Repository { return n.repo }
func (n *Node) Stater() *state.Stater   { return n.stater }
func (n *Node) LogDB() *logdb.LogDB     { return n.logDB }
func (n *Node) Health() *health.Health  { return n.health }

// Submit validates trx and queues it for the next block.
func (n *Node) Submit(trx *tx.Transaction) (err error) {
	defer func() {
		status := "accepted"
		if err != nil {
			status = "rejected"
		}
		metricTxSubmitted().AddWithLabel(1, map[string]string{"status": status})
	}()

	if trx.ChainTag() != n.repo.ChainTag() {
		return badTxError{"chain tag mismatch"}
	}
	if trx.Size() > MaxTxSize {
		return txRejectedError{"size too large"}
	}
	if trx.Gas() > n.options.GasLimit {
		return txRejectedError{"gas exceeds block gas limit"}
	}
	if _, err := runtime.ResolveTransaction(trx); err != nil {
		return badTxError{err.Error()}
	}
	best := n.repo.BestBlock().Header()
	if trx.IsExpired(best.Number() + 1) {
		return txRejectedError{"expired"}
	}
	if _, err := n.repo.GetTransactionMeta(trx.ID()); err == nil {
		return errKnownTx
	} else if !n.repo.IsNotFound(err) {
		return err
	}
	if err := n.pool.add(trx); err != nil {
		return err
	}
	logger.Trace("tx added", "id", trx.ID())

	if n.options.OnDemand {
		select {
		case n.packCh <- struct{}{}:
		default:
		}
	}
	return nil
}

// GetPending returns the queued tx of id, or nil.
func (n *Node) GetPending(id gig.Bytes32) *tx.Transaction {
	return n.pool.get(id)
}

// PendingCount returns the count of queued txs.
func (n *Node) PendingCount() int {
	return n.pool.len()
}

// SubscribeBlocks registers ch to receive every committed block.
// The channel must be drained promptly since sending blocks the sequencer.
func (n *Node) SubscribeBlocks(ch chan *BlockEvent) event.Subscription {
	return n.scope.Track(n.blockFeed.Subscribe(ch))
}

// Run packs blocks until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	defer n.goes.Wait()
	defer n.scope.Close()

	best := n.repo.BestBlock().Header()
	n.health.NewBestBlock(best.ID(), best.Number())
	n.health.SequencerStatus(true)
	defer n.health.SequencerStatus(false)

	if n.publisher != nil {
		n.goes.Go(func() { n.publisher.Run(ctx) })
	}

	var tick <-chan time.Time
	if !n.options.OnDemand {
		ticker := time.NewTicker(n.options.BlockInterval)
		defer ticker.Stop()
		tick = ticker.C
		logger.Info("prepared to pack block", "interval", n.options.BlockInterval)
	} else {
		logger.Info("prepared to pack block on demand")
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping packing service......")
			return nil
		case <-tick:
			n.packAndLog(true)
		case <-n.packCh:
			n.packAndLog(false)
		}
	}
}

func (n *Node) packAndLog(allowEmpty bool) {
	ev, err := n.Pack(allowEmpty)
	if err != nil {
		n.health.BlockError(err)
		logger.Error("failed to pack block", "err", err)
		return
	}
	if ev != nil {
		header := ev.Block.Header()
		logger.Info("📦 new block packed",
			"txs", len(ev.Receipts),
			"gas", header.GasUsed(),
			"id", shortID(header.ID()),
		)
	}
}

// Pack executes the pending txs into a new block and commits it.
// Unless allowEmpty, nothing happens while no tx is pending and the returned event is nil.
func (n *Node) Pack(allowEmpty bool) (ev *BlockEvent, err error) {
	n.packLock.Lock()
	defer n.packLock.Unlock()

	err = evalBlockPackMetrics(func() error {
		ev, err = n.pack(allowEmpty)
		return err
	})
	return
}

func (n *Node) pack(allowEmpty bool) (*BlockEvent, error) {
	parent := n.repo.BestBlock().Header()
	number := parent.Number() + 1
	pending := n.pool.executables(number)
	if len(pending) == 0 && !allowEmpty {
		return nil, nil
	}

	timestamp := max(n.clock(), parent.Timestamp())
	st := n.stater.NewState()
	rt := runtime.New(st, n.repo.ChainTag(), number, timestamp)

	var (
		builder  = new(block.Builder).ParentID(parent.ID()).Timestamp(timestamp).GasLimit(n.options.GasLimit)
		receipts tx.Receipts
		gasUsed  uint64
		done     []gig.Bytes32
	)
	for _, trx := range pending {
		if gasUsed+trx.Gas() > n.options.GasLimit {
			// left for the next block
			continue
		}
		receipt, err := rt.ExecuteTransaction(trx)
		if err != nil {
			logger.Debug("tx dropped", "id", trx.ID(), "err", err)
			metricBlockPackedTxs().AddWithLabel(1, map[string]string{"status": "dropped"})
			done = append(done, trx.ID())
			continue
		}
		builder.Transaction(trx)
		receipts = append(receipts, receipt)
		gasUsed += receipt.GasUsed
		done = append(done, trx.ID())

		status := "ok"
		if receipt.Reverted {
			status = "reverted"
		}
		metricBlockPackedTxs().AddWithLabel(1, map[string]string{"status": status})
	}

	stage := st.Stage()
	blk := builder.
		GasUsed(gasUsed).
		StateRoot(stage.Hash()).
		ReceiptsRoot(receipts.RootHash()).
		Build()

	if err := n.repo.AddBlock(blk, receipts, stage); err != nil {
		return nil, errors.Wrap(err, "commit block")
	}
	n.pool.remove(done...)

	if err := n.indexLogs(blk, receipts); err != nil {
		// the chain is ahead of the index until a reindex
		logger.Error("failed to index logs", "block", blk.Header().Number(), "err", err)
		n.health.BlockError(err)
	} else {
		n.health.NewBestBlock(blk.Header().ID(), blk.Header().Number())
	}

	ev := &BlockEvent{Block: blk, Receipts: receipts}
	n.blockFeed.Send(ev)
	if n.publisher != nil {
		n.publisher.Enqueue(pubsub.Messages(blk, receipts))
	}
	return ev, nil
}

func (n *Node) indexLogs(blk *block.Block, receipts tx.Receipts) error {
	w := n.logDB.NewWriter()
	if err := w.Write(blk, receipts); err != nil {
		if rbErr := w.Rollback(); rbErr != nil {
			logger.Warn("failed to rollback logs", "err", rbErr)
		}
		return err
	}
	return w.Commit()
}

func shortID(id gig.Bytes32) string {
	return fmt.Sprintf("[#%v…%x]", block.Number(id), id[28:])
}
