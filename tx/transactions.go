// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/gigstream/gigstream/gig"
)

// Transactions a slice of transactions.
type Transactions []*Transaction

// RootHash computes the digest of the tx ids in order.
func (txs Transactions) RootHash() gig.Bytes32 {
	hasher := gig.NewBlake2b()
	for _, tx := range txs {
		id := tx.ID()
		hasher.Write(id[:])
	}
	var root gig.Bytes32
	hasher.Sum(root[:0])
	return root
}
