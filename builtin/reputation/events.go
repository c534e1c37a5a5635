// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reputation

import (
	"fmt"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/gen"
)

// ABI of the `ReputationToken` contract.
var ABI = mustLoadABI()

var events = struct {
	Transfer         *abi.Event
	Approval         *abi.Event
	ReputationMinted *abi.Event
	ReputationBurned *abi.Event
}{
	mustEvent("Transfer"),
	mustEvent("Approval"),
	mustEvent("ReputationMinted"),
	mustEvent("ReputationBurned"),
}

func mustLoadABI() *abi.ABI {
	a, err := abi.New(gen.MustABI("ReputationToken"))
	if err != nil {
		panic(fmt.Errorf("load ABI for 'ReputationToken': %w", err))
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
