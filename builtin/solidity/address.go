// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/gigstream/gigstream/gig"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     gig.Bytes32
}

func NewAddress(context *Context, pos gig.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (gig.Address, error) {
	a.context.UseGas(gig.SloadGas)
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return gig.Address{}, err
	}
	return gig.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *gig.Address, newValue bool) {
	var storage gig.Bytes32
	if addr != nil {
		storage = gig.BytesToBytes32(addr.Bytes())
	}
	if !storage.IsZero() {
		if newValue {
			a.context.UseGas(gig.SstoreSetGas)
		} else {
			a.context.UseGas(gig.SstoreResetGas)
		}
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
