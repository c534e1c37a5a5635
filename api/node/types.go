// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/gigstream/gigstream/gig"
)

type BestBlock struct {
	ID        gig.Bytes32 `json:"id"`
	Number    uint32      `json:"number"`
	Timestamp uint64      `json:"timestamp"`
}

type Info struct {
	ChainTag   byte        `json:"chainTag"`
	GenesisID  gig.Bytes32 `json:"genesisID"`
	BestBlock  BestBlock   `json:"bestBlock"`
	PendingTxs int         `json:"pendingTxs"`
}
