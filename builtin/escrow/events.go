// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"fmt"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/gen"
)

// ABI of the `GigEscrow` contract.
var ABI = mustLoadABI()

var events = struct {
	JobPosted         *abi.Event
	BidPlaced         *abi.Event
	JobAccepted       *abi.Event
	JobCompleted      *abi.Event
	JobCancelled      *abi.Event
	ReputationUpdated *abi.Event
}{
	mustEvent("JobPosted"),
	mustEvent("BidPlaced"),
	mustEvent("JobAccepted"),
	mustEvent("JobCompleted"),
	mustEvent("JobCancelled"),
	mustEvent("ReputationUpdated"),
}

func mustLoadABI() *abi.ABI {
	a, err := abi.New(gen.MustABI("GigEscrow"))
	if err != nil {
		panic(fmt.Errorf("load ABI for 'GigEscrow': %w", err))
	}
	return a
}

func mustEvent(name string) *abi.Event {
	ev, ok := ABI.EventByName(name)
	if !ok {
		panic("event not found: " + name)
	}
	return ev
}
