// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/gig"
)

type JSONBlockSummary struct {
	Number       uint32      `json:"number"`
	ID           gig.Bytes32 `json:"id"`
	Size         uint32      `json:"size"`
	ParentID     gig.Bytes32 `json:"parentID"`
	Timestamp    uint64      `json:"timestamp"`
	GasLimit     uint64      `json:"gasLimit"`
	GasUsed      uint64      `json:"gasUsed"`
	TxsRoot      gig.Bytes32 `json:"txsRoot"`
	StateRoot    gig.Bytes32 `json:"stateRoot"`
	ReceiptsRoot gig.Bytes32 `json:"receiptsRoot"`
	IsTrunk      bool        `json:"isTrunk"`
}

type JSONCollapsedBlock struct {
	*JSONBlockSummary
	Transactions []gig.Bytes32 `json:"transactions"`
}

func buildJSONBlock(blk *block.Block) *JSONCollapsedBlock {
	header := blk.Header()
	txs := blk.Transactions()
	ids := make([]gig.Bytes32, len(txs))
	for i, trx := range txs {
		ids[i] = trx.ID()
	}
	return &JSONCollapsedBlock{
		&JSONBlockSummary{
			Number:       header.Number(),
			ID:           header.ID(),
			Size:         uint32(blk.Size()),
			ParentID:     header.ParentID(),
			Timestamp:    header.Timestamp(),
			GasLimit:     header.GasLimit(),
			GasUsed:      header.GasUsed(),
			TxsRoot:      header.TxsRoot(),
			StateRoot:    header.StateRoot(),
			ReceiptsRoot: header.ReceiptsRoot(),
			// a solo chain never forks
			IsTrunk: true,
		},
		ids,
	}
}
