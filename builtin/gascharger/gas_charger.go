// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"fmt"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/xenv"
)

// Charger meters the storage work of a native call and charges it to the environment.
// A charger without environment only counts.
type Charger struct {
	env            *xenv.Environment
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	customGas      uint64
	balanceOps     uint64
	totalGas       uint64
}

func New(env *xenv.Environment) *Charger {
	return &Charger{
		env: env,
	}
}

func (c *Charger) Charge(gas uint64) {
	c.totalGas += gas

	switch {
	// Handle multiples and single operations
	case gas%gig.SstoreSetGas == 0 && gas > 0:
		c.sstoreSetOps += gas / gig.SstoreSetGas

	case gas%gig.SstoreResetGas == 0 && gas > 0:
		c.sstoreResetOps += gas / gig.SstoreResetGas

	case gas%gig.GetBalanceGas == 0 && gas > 0:
		c.balanceOps += gas / gig.GetBalanceGas

	case gas%gig.SloadGas == 0 && gas > 0:
		c.sloadOps += gas / gig.SloadGas

	default:
		c.customGas += gas
	}

	if c.env != nil {
		c.env.UseGas(gas)
	}
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | BALANCE: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*gig.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*gig.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*gig.SstoreResetGas,
		c.balanceOps,
		c.balanceOps*gig.GetBalanceGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}
