// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/tx"
)

// DecodedEvent is a builtin contract event with its named arguments.
// Addresses and integers are rendered as strings so the value survives JSON round trips.
type DecodedEvent struct {
	Contract string         `json:"contract"`
	Address  gig.Address    `json:"address"`
	Event    string         `json:"event"`
	Args     map[string]any `json:"args"`
}

// ContractAt returns the name and ABI owner of the builtin at addr.
func ContractAt(addr gig.Address) (*contract, bool) {
	for _, c := range Contracts {
		if c.Address == addr {
			return c, true
		}
	}
	return nil, false
}

// DecodeEvent decodes an event emitted by one of the builtin contracts.
func DecodeEvent(ev *tx.Event) (*DecodedEvent, error) {
	c, ok := ContractAt(ev.Address)
	if !ok {
		return nil, errors.Errorf("event from non-builtin address %v", ev.Address)
	}
	if len(ev.Topics) == 0 {
		return nil, errors.New("anonymous event")
	}
	abiEvent, ok := c.ABI.EventByID(ev.Topics[0])
	if !ok {
		return nil, errors.Errorf("unknown event %v on %s", ev.Topics[0], c.Name())
	}
	args, err := abiEvent.DecodeToMap(ev.Topics, ev.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s.%s", c.Name(), abiEvent.Name())
	}
	for k, v := range args {
		switch v := v.(type) {
		case common.Address:
			args[k] = gig.Address(v).String()
		case *big.Int:
			args[k] = v.String()
		}
	}
	return &DecodedEvent{
		Contract: c.Name(),
		Address:  c.Address,
		Event:    abiEvent.Name(),
		Args:     args,
	}, nil
}
