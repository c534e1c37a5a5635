// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type (
	balanceKey gig.Address
	storageKey struct {
		addr gig.Address
		key  gig.Bytes32
	}
)

// encode returns the kv key of a journal key.
func encodeKey(k any) []byte {
	switch key := k.(type) {
	case balanceKey:
		return append([]byte{'b'}, key[:]...)
	case storageKey:
		buf := make([]byte, 0, 1+gig.AddressLength+32)
		buf = append(buf, 's')
		buf = append(buf, key.addr[:]...)
		return append(buf, key.key[:]...)
	}
	panic(fmt.Sprintf("unexpected state key %T", k))
}

// State manages balances and contract storage, with checkpoints to revert to.
type State struct {
	stater *Stater
	sm     *stackedmap.StackedMap[any, any]
}

func newState(stater *Stater) *State {
	s := &State{stater: stater}
	s.sm = stackedmap.New[any, any](s.load)
	return s
}

func (s *State) load(key any) (any, bool, error) {
	data, err := s.stater.read(encodeKey(key))
	if err != nil {
		return nil, false, err
	}
	switch key.(type) {
	case balanceKey:
		return new(big.Int).SetBytes(data), true, nil
	default:
		return rlp.RawValue(data), true, nil
	}
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr gig.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr gig.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance of %v", addr)}
	}
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
	return nil
}

// AddBalance credits amount to addr.
func (s *State) AddBalance(addr gig.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	return s.SetBalance(addr, bal.Add(bal, amount))
}

// SubBalance debits amount from addr.
// It returns false, leaving the balance unchanged, if the balance is insufficient.
func (s *State) SubBalance(addr gig.Address, amount *big.Int) (bool, error) {
	if amount.Sign() == 0 {
		return true, nil
	}
	bal, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if bal.Cmp(amount) < 0 {
		return false, nil
	}
	return true, s.SetBalance(addr, bal.Sub(bal, amount))
}

// Transfer moves amount from sender to recipient.
// It returns false if the sender has insufficient balance.
func (s *State) Transfer(sender, recipient gig.Address, amount *big.Int) (bool, error) {
	ok, err := s.SubBalance(sender, amount)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.AddBalance(recipient, amount)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr gig.Address, key gig.Bytes32) (gig.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return gig.Bytes32{}, err
	}
	if len(raw) == 0 {
		return gig.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return gig.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, presented as its hash
		return gig.Blake2b(raw), nil
	}
	return gig.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr gig.Address, key, value gig.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr gig.Address, key gig.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw. An empty value deletes the slot.
func (s *State) SetRawStorage(addr gig.Address, key gig.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr gig.Address, key gig.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr gig.Address, key gig.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects every change made so far, ready to be hashed or committed.
func (s *State) Stage() *Stage {
	latest := make(map[string][]byte)
	s.sm.Journal(func(k, v any) bool {
		var val []byte
		switch value := v.(type) {
		case *big.Int:
			if value.Sign() != 0 {
				val = value.Bytes()
			}
		case rlp.RawValue:
			if len(value) > 0 {
				val = value
			}
		}
		latest[string(encodeKey(k))] = val
		return true
	})
	return newStage(s.stater, latest)
}
