// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/gigstream/gigstream/gig"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are RLP encoded; the zero value clears the slot.
type Mapping[K Key, V any] struct {
	context *Context
	basePos gig.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos gig.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) gig.Bytes32 {
	return gig.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = loadValue(m.context, m.position(key), &value)
	return
}

// Insert sets the value of a key expected to be empty.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	return storeValue(m.context, m.position(key), value, true)
}

// Update overwrites the value of an existing key.
func (m *Mapping[K, V]) Update(key K, value V) error {
	return storeValue(m.context, m.position(key), value, false)
}

func loadValue[V any](ctx *Context, pos gig.Bytes32, value *V) error {
	return ctx.state.DecodeStorage(ctx.address, pos, func(raw []byte) error {
		ctx.UseGas(toWordSize(len(raw)) * gig.SloadGas)
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, value)
	})
}

func storeValue[V any](ctx *Context, pos gig.Bytes32, value V, newValue bool) error {
	if b, ok := any(value).(*big.Int); ok && b != nil && b.Sign() == 0 {
		ctx.state.SetRawStorage(ctx.address, pos, nil)
		return nil
	}
	if reflect.ValueOf(&value).Elem().IsZero() {
		ctx.state.SetRawStorage(ctx.address, pos, nil)
		return nil
	}
	return ctx.state.EncodeStorage(ctx.address, pos, func() ([]byte, error) {
		val, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		if newValue {
			ctx.UseGas(toWordSize(len(val)) * gig.SstoreSetGas)
		} else {
			ctx.UseGas(toWordSize(len(val)) * gig.SstoreResetGas)
		}
		return val, nil
	})
}
