// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/gigstream/gigstream/gig"
)

// Transfer native value transfer log.
type Transfer struct {
	Sender    gig.Address
	Recipient gig.Address
	Amount    *big.Int
}

// Transfers slice of transfer logs.
type Transfers []*Transfer
