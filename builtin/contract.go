// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/gascharger"
	"github.com/gigstream/gigstream/builtin/solidity"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

type contract struct {
	name    string
	Address gig.Address
	ABI     *abi.ABI
}

func newContract(name string, addr gig.Address, abi *abi.ABI) *contract {
	return &contract{name, addr, abi}
}

func (c *contract) Name() string { return c.name }

// context binds the contract storage to state. Nil charger and emitter make a free, silent context.
func (c *contract) context(state *state.State, charger *gascharger.Charger, emitter solidity.Emitter) *solidity.Context {
	return solidity.NewContext(c.Address, state, charger, emitter)
}
