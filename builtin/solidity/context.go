// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/gascharger"
	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

// Emitter records the events and value transfers of a call.
type Emitter interface {
	Log(event *abi.Event, address gig.Address, topics []gig.Bytes32, args ...any)
	Transfer(sender, recipient gig.Address, amount *big.Int)
}

// Context binds a builtin contract to the state it runs on.
type Context struct {
	address gig.Address
	state   *state.State
	charger *gascharger.Charger
	emitter Emitter
}

func NewContext(address gig.Address, state *state.State, charger *gascharger.Charger, emitter Emitter) *Context {
	return &Context{
		address: address,
		state:   state,
		charger: charger,
		emitter: emitter,
	}
}

// With returns a context of another contract sharing the same charger and emitter.
func (c *Context) With(address gig.Address) *Context {
	return &Context{
		address: address,
		state:   c.state,
		charger: c.charger,
		emitter: c.emitter,
	}
}

func (c *Context) Address() gig.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger.Charge(gas)
	}
}

// Emit logs event from the contract. Indexed args become topics, the rest is data.
func (c *Context) Emit(event *abi.Event, indexed []any, args ...any) error {
	topics, err := event.EncodeTopics(indexed...)
	if err != nil {
		return errors.WithMessagef(err, "topics of %s", event.Name())
	}
	if c.emitter != nil {
		c.emitter.Log(event, c.address, topics, args...)
	}
	return nil
}

// Balance returns the native balance held by the contract.
func (c *Context) Balance() (*big.Int, error) {
	c.UseGas(gig.GetBalanceGas)
	return c.state.GetBalance(c.address)
}

// Transfer pays amount from the contract to recipient.
// It fails with InsufficientContractBalance, leaving balances untouched, if the contract is short.
func (c *Context) Transfer(recipient gig.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	c.UseGas(gig.TransferGas)
	ok, err := c.state.Transfer(c.address, recipient, amount)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.InsufficientContractBalance
	}
	if c.emitter != nil {
		c.emitter.Transfer(c.address, recipient, amount)
	}
	return nil
}
