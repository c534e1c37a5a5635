// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/tx"
)

// BlockMessage block piped by websocket
type BlockMessage struct {
	Number       uint32        `json:"number"`
	ID           gig.Bytes32   `json:"id"`
	Size         uint64        `json:"size"`
	ParentID     gig.Bytes32   `json:"parentID"`
	Timestamp    uint64        `json:"timestamp"`
	GasLimit     uint64        `json:"gasLimit"`
	GasUsed      uint64        `json:"gasUsed"`
	StateRoot    gig.Bytes32   `json:"stateRoot"`
	ReceiptsRoot gig.Bytes32   `json:"receiptsRoot"`
	Transactions []gig.Bytes32 `json:"transactions"`
}

func convertBlock(blk *block.Block) *BlockMessage {
	header := blk.Header()
	txs := blk.Transactions()
	ids := make([]gig.Bytes32, len(txs))
	for i, trx := range txs {
		ids[i] = trx.ID()
	}
	return &BlockMessage{
		Number:       header.Number(),
		ID:           header.ID(),
		Size:         blk.Size(),
		ParentID:     header.ParentID(),
		Timestamp:    header.Timestamp(),
		GasLimit:     header.GasLimit(),
		GasUsed:      header.GasUsed(),
		StateRoot:    header.StateRoot(),
		ReceiptsRoot: header.ReceiptsRoot(),
		Transactions: ids,
	}
}

type LogMeta struct {
	BlockID        gig.Bytes32 `json:"blockID"`
	BlockNumber    uint32      `json:"blockNumber"`
	BlockTimestamp uint64      `json:"blockTimestamp"`
	TxID           gig.Bytes32 `json:"txID"`
	TxOrigin       gig.Address `json:"txOrigin"`
	ClauseIndex    uint32      `json:"clauseIndex"`
}

// EventMessage event piped by websocket
type EventMessage struct {
	Address gig.Address           `json:"address"`
	Topics  []gig.Bytes32         `json:"topics"`
	Data    string                `json:"data"`
	Decoded *builtin.DecodedEvent `json:"decoded,omitempty"`
	Meta    LogMeta               `json:"meta"`
}

// convertBlockEvents flattens the events of a block in log order.
func convertBlockEvents(blk *block.Block, receipts tx.Receipts) ([]*EventMessage, error) {
	header := blk.Header()
	txs := blk.Transactions()

	msgs := make([]*EventMessage, 0)
	for i, receipt := range receipts {
		if receipt.Reverted {
			continue
		}
		origin, err := txs[i].Origin()
		if err != nil {
			return nil, err
		}
		for clauseIndex, output := range receipt.Outputs {
			for _, ev := range output.Events {
				msg := &EventMessage{
					Address: ev.Address,
					Topics:  ev.Topics,
					Data:    hexutil.Encode(ev.Data),
					Meta: LogMeta{
						BlockID:        header.ID(),
						BlockNumber:    header.Number(),
						BlockTimestamp: header.Timestamp(),
						TxID:           txs[i].ID(),
						TxOrigin:       origin,
						ClauseIndex:    uint32(clauseIndex),
					},
				}
				if decoded, err := builtin.DecodeEvent(ev); err == nil {
					msg.Decoded = decoded
				}
				msgs = append(msgs, msg)
			}
		}
	}
	return msgs, nil
}

// EventFilter contains options for contract event filtering.
type EventFilter struct {
	Address *gig.Address // restricts matches to events created by specific contracts
	Topic0  *gig.Bytes32
	Topic1  *gig.Bytes32
	Topic2  *gig.Bytes32
	Topic3  *gig.Bytes32
	Topic4  *gig.Bytes32
}

// Match returns whether event matches filter
func (ef *EventFilter) Match(ev *EventMessage) bool {
	if ef.Address != nil && *ef.Address != ev.Address {
		return false
	}

	matchTopic := func(topic *gig.Bytes32, index int) bool {
		if topic != nil {
			if len(ev.Topics) <= index {
				return false
			}
			if *topic != ev.Topics[index] {
				return false
			}
		}
		return true
	}

	return matchTopic(ef.Topic0, 0) &&
		matchTopic(ef.Topic1, 1) &&
		matchTopic(ef.Topic2, 2) &&
		matchTopic(ef.Topic3, 3) &&
		matchTopic(ef.Topic4, 4)
}
