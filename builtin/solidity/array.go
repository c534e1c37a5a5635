// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/gigstream/gigstream/gig"
)

var errIndexOutOfRange = errors.New("array index out of range")

// Array is an append-only list in contract storage, similar to a dynamic array in Solidity.
// The length lives at the base position, elements at hash(base, index).
type Array[V any] struct {
	context *Context
	basePos gig.Bytes32
	length  *Uint256
}

func NewArray[V any](context *Context, pos gig.Bytes32) *Array[V] {
	return &Array[V]{context: context, basePos: pos, length: NewUint256(context, pos)}
}

func (a *Array[V]) position(index uint64) gig.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return gig.Blake2b(a.basePos.Bytes(), b[:])
}

func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

func (a *Array[V]) Get(index uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if index >= n {
		return value, errIndexOutOfRange
	}
	err = loadValue(a.context, a.position(index), &value)
	return
}

// Set overwrites an existing element.
func (a *Array[V]) Set(index uint64, value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if index >= n {
		return errIndexOutOfRange
	}
	return storeValue(a.context, a.position(index), value, false)
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := storeValue(a.context, a.position(n), value, true); err != nil {
		return 0, err
	}
	a.length.Set(new(big.Int).SetUint64(n + 1))
	return n, nil
}

// All returns every element in order.
func (a *Array[V]) All() ([]V, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	values := make([]V, 0, n)
	for i := range n {
		var value V
		if err := loadValue(a.context, a.position(i), &value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}
