// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/xenv"
)

func TestCharger(t *testing.T) {
	c := New(nil)
	c.Charge(gig.SloadGas * 3)
	c.Charge(gig.SstoreSetGas)
	c.Charge(gig.SstoreResetGas)
	c.Charge(7)

	assert.Equal(t, 3*gig.SloadGas+gig.SstoreSetGas+gig.SstoreResetGas+7, c.TotalGas())
	assert.Contains(t, c.Breakdown(), "SSTORE_SET: 1 ops")
	assert.Contains(t, c.Breakdown(), "SSTORE_RESET: 1 ops")
	assert.Contains(t, c.Breakdown(), "CUSTOM: 7 gas")
}

func TestChargerUsesEnvGas(t *testing.T) {
	env := xenv.New(nil, nil, nil, nil, gig.Address{}, gig.Address{}, nil, nil, gig.SloadGas*2)
	c := New(env)

	c.Charge(gig.SloadGas)
	assert.Equal(t, gig.SloadGas, env.GasLeft())

	assert.Panics(t, func() { c.Charge(gig.SstoreSetGas) })
}
