// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/gigstream/gigstream/gig"
)

// Event represents a contract event log. These events are generated by the ledgers
// and stored in tx receipts.
type Event struct {
	// address of the contract that generated the event
	Address gig.Address
	// list of topics provided by the contract. The first one is the event id.
	Topics []gig.Bytes32
	// supplied by the contract, usually ABI-encoded
	Data []byte
}

// Events slice of event logs.
type Events []*Event
