// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"errors"
	"math/big"

	"github.com/gigstream/gigstream/gig"
)

var errUint256Underflow = errors.New("uint256 underflow")

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     gig.Bytes32
}

func NewUint256(context *Context, pos gig.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	u.context.UseGas(gig.SloadGas)
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	if storage.IsZero() {
		return new(big.Int), nil
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

// Set stores value. Values beyond 256 bits are truncated to the lowest 32 bytes.
func (u *Uint256) Set(value *big.Int) {
	u.context.UseGas(gig.SstoreResetGas)
	u.context.state.SetStorage(u.context.address, u.pos, gig.BytesToBytes32(value.Bytes()))
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	u.Set(storage.Add(storage, value))
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return errUint256Underflow
	}
	u.Set(storage.Sub(storage, value))
	return nil
}
