// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/test/datagen"
	"github.com/gigstream/gigstream/tx"
)

func TestDecodeEvent(t *testing.T) {
	c := newCtest(t)
	admin, employer := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, Escrow.WithState(c.st).InitAdmin(admin))
	c.fund(employer, big.NewInt(1e18))
	deadline := new(big.Int).SetUint64(t0 + 2*24*3600)

	r := c.call(employer, Escrow.contract, reward, false, "postJob", "Electricista", "Roma Norte", reward, deadline)
	require.NoError(t, r.err)
	require.Len(t, r.env.Events(), 1)

	ev, err := DecodeEvent(r.env.Events()[0])
	require.NoError(t, err)
	assert.Equal(t, &DecodedEvent{
		Contract: "GigEscrow",
		Address:  gig.EscrowAddress,
		Event:    "JobPosted",
		Args: map[string]any{
			"jobId":    "1",
			"employer": employer.String(),
			"title":    "Electricista",
			"reward":   reward.String(),
			"deadline": deadline.String(),
		},
	}, ev)
}

func TestDecodeEventErrors(t *testing.T) {
	_, err := DecodeEvent(&tx.Event{Address: datagen.RandAddress(), Topics: []gig.Bytes32{datagen.RandomHash()}})
	assert.ErrorContains(t, err, "non-builtin")

	_, err = DecodeEvent(&tx.Event{Address: gig.StakingAddress})
	assert.ErrorContains(t, err, "anonymous")

	_, err = DecodeEvent(&tx.Event{Address: gig.StakingAddress, Topics: []gig.Bytes32{datagen.RandomHash()}})
	assert.ErrorContains(t, err, "unknown event")

	staked, _ := Staking.ABI.EventByName("Staked")
	_, err = DecodeEvent(&tx.Event{Address: gig.StakingAddress, Topics: []gig.Bytes32{staked.ID()}})
	assert.Error(t, err, "indexed user topic missing")
}
