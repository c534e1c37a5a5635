// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/gigstream/gigstream/gig"
)

// Receipt represents the results of a transaction.
type Receipt struct {
	// gas used by this tx
	GasUsed uint64
	// if the tx reverted
	Reverted bool
	// the named failure which aborted the tx, empty if not reverted
	RevertReason string
	// outputs of clauses in tx
	Outputs []*Output
}

// Output output of clause execution.
type Output struct {
	// events produced by the clause
	Events Events
	// transfer occurred in clause
	Transfers Transfers
}

// Receipts slice of receipts.
type Receipts []*Receipt

// RootHash computes the digest of the encoded receipts.
func (rs Receipts) RootHash() gig.Bytes32 {
	return gig.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, rs)
	})
}
