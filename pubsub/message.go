// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pubsub

import (
	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/tx"
)

// Message is one decoded ledger event as published to subscribers.
type Message struct {
	BlockID     gig.Bytes32 `json:"blockID"`
	BlockNumber uint32      `json:"blockNumber"`
	BlockTime   uint64      `json:"blockTimestamp"`
	TxID        gig.Bytes32 `json:"txID"`
	TxOrigin    gig.Address `json:"txOrigin"`
	ClauseIndex uint32      `json:"clauseIndex"`

	*builtin.DecodedEvent
}

// Messages decodes the events of a block. Reverted txs carry no outputs and produce nothing.
func Messages(blk *block.Block, receipts tx.Receipts) []*Message {
	var (
		header = blk.Header()
		txs    = blk.Transactions()
		msgs   []*Message
	)
	for i, receipt := range receipts {
		if receipt.Reverted || i >= len(txs) {
			continue
		}
		origin, _ := txs[i].Origin()
		for clauseIndex, output := range receipt.Outputs {
			for _, ev := range output.Events {
				decoded, err := builtin.DecodeEvent(ev)
				if err != nil {
					logger.Debug("skip undecodable event", "block", header.Number(), "err", err)
					continue
				}
				msgs = append(msgs, &Message{
					BlockID:      header.ID(),
					BlockNumber:  header.Number(),
					BlockTime:    header.Timestamp(),
					TxID:         txs[i].ID(),
					TxOrigin:     origin,
					ClauseIndex:  uint32(clauseIndex),
					DecodedEvent: decoded,
				})
			}
		}
	}
	return msgs
}
