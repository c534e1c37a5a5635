// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"sync"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/tx"
)

// MaxTxSize is the largest accepted encoded tx.
const MaxTxSize = 64 * 1024

// txPool keeps pending txs in arrival order.
type txPool struct {
	limit int

	lock  sync.Mutex
	byID  map[gig.Bytes32]*tx.Transaction
	order []gig.Bytes32
}

func newTxPool(limit int) *txPool {
	return &txPool{
		limit: limit,
		byID:  make(map[gig.Bytes32]*tx.Transaction),
	}
}

func (p *txPool) add(trx *tx.Transaction) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	id := trx.ID()
	if _, ok := p.byID[id]; ok {
		return errKnownTx
	}
	if len(p.byID) >= p.limit {
		return txRejectedError{"pool is full"}
	}
	p.byID[id] = trx
	p.order = append(p.order, id)
	metricTxPoolGauge().Set(int64(len(p.byID)))
	return nil
}

func (p *txPool) get(id gig.Bytes32) *tx.Transaction {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.byID[id]
}

// executables returns the pending txs in arrival order, evicting those expired at blockNum.
func (p *txPool) executables(blockNum uint32) tx.Transactions {
	p.lock.Lock()
	defer p.lock.Unlock()

	txs := make(tx.Transactions, 0, len(p.order))
	kept := p.order[:0]
	for _, id := range p.order {
		trx, ok := p.byID[id]
		if !ok {
			continue
		}
		if trx.IsExpired(blockNum) {
			delete(p.byID, id)
			logger.Debug("tx expired", "id", id)
			continue
		}
		kept = append(kept, id)
		if trx.BlockRef().Number() <= blockNum {
			txs = append(txs, trx)
		}
	}
	p.order = kept
	metricTxPoolGauge().Set(int64(len(p.byID)))
	return txs
}

func (p *txPool) remove(ids ...gig.Bytes32) {
	p.lock.Lock()
	defer p.lock.Unlock()

	for _, id := range ids {
		delete(p.byID, id)
	}
	kept := p.order[:0]
	for _, id := range p.order {
		if _, ok := p.byID[id]; ok {
			kept = append(kept, id)
		}
	}
	p.order = kept
	metricTxPoolGauge().Set(int64(len(p.byID)))
}

func (p *txPool) len() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return len(p.byID)
}
