// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the ledgers to their addresses and exposes them as native calls.
package builtin

import (
	"github.com/gigstream/gigstream/builtin/escrow"
	"github.com/gigstream/gigstream/builtin/gascharger"
	"github.com/gigstream/gigstream/builtin/reputation"
	"github.com/gigstream/gigstream/builtin/solidity"
	"github.com/gigstream/gigstream/builtin/staking"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

// Builtin contracts binding.
var (
	Escrow     = &escrowContract{newContract("GigEscrow", gig.EscrowAddress, escrow.ABI)}
	Reputation = &reputationContract{newContract("ReputationToken", gig.ReputationAddress, reputation.ABI)}
	Staking    = &stakingContract{newContract("StakingPool", gig.StakingAddress, staking.ABI)}
)

// Contracts lists every builtin contract.
var Contracts = []*contract{Escrow.contract, Reputation.contract, Staking.contract}

type (
	escrowContract     struct{ *contract }
	reputationContract struct{ *contract }
	stakingContract    struct{ *contract }
)

// WithState returns the engine over state, without metering or event recording.
func (e *escrowContract) WithState(state *state.State) *escrow.Escrow {
	return e.Native(state, nil, nil)
}

// Native returns the engine metered by charger, logging through emitter.
func (e *escrowContract) Native(state *state.State, charger *gascharger.Charger, emitter solidity.Emitter) *escrow.Escrow {
	sctx := e.context(state, charger, emitter)
	return escrow.New(sctx, Reputation.bind(sctx.With(Reputation.Address)))
}

func (r *reputationContract) WithState(state *state.State) *reputation.Reputation {
	return r.Native(state, nil, nil)
}

func (r *reputationContract) Native(state *state.State, charger *gascharger.Charger, emitter solidity.Emitter) *reputation.Reputation {
	return r.bind(r.context(state, charger, emitter))
}

func (r *reputationContract) bind(sctx *solidity.Context) *reputation.Reputation {
	rep, err := reputation.New(sctx, Escrow.Address)
	if err != nil {
		panic(err)
	}
	return rep
}

func (s *stakingContract) WithState(state *state.State) *staking.Staking {
	return s.Native(state, nil, nil)
}

func (s *stakingContract) Native(state *state.State, charger *gascharger.Charger, emitter solidity.Emitter) *staking.Staking {
	pool, err := staking.New(s.context(state, charger, emitter), Escrow.Address)
	if err != nil {
		panic(err)
	}
	return pool
}
