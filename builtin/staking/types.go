// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
)

// Stake is the time-locked deposit of a participant.
type Stake struct {
	Amount     *big.Int
	Timestamp  uint64
	UnlockTime uint64
	Active     bool
}

// IsEmpty returns whether the participant never staked.
func (s *Stake) IsEmpty() bool {
	return s.Amount == nil || (s.Amount.Sign() == 0 && s.Timestamp == 0)
}
