// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"fmt"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/gen"
)

// ABI of the `StakingPool` contract.
var ABI = mustLoadABI()

var events = struct {
	Staked        *abi.Event
	Unstaked      *abi.Event
	RewardClaimed *abi.Event
}{
	mustEvent("Staked"),
	mustEvent("Unstaked"),
	mustEvent("RewardClaimed"),
}

func mustLoadABI() *abi.ABI {
	a, err := abi.New(gen.MustABI("StakingPool"))
	if err != nil {
		panic(fmt.Errorf("load ABI for 'StakingPool': %w", err))
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
