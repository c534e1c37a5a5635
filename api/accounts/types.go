// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/runtime"
)

// Account for marshal account
type Account struct {
	Balance   *math.HexOrDecimal256 `json:"balance"`
	IsBuiltin bool                  `json:"isBuiltin"`
}

// CallData represents contract-call body
type CallData struct {
	Value  *math.HexOrDecimal256 `json:"value"`
	Data   string                `json:"data"`
	Gas    uint64                `json:"gas"`
	Caller *gig.Address          `json:"caller"`
}

// Clause is a call in a batch.
type Clause struct {
	To    *gig.Address          `json:"to"`
	Value *math.HexOrDecimal256 `json:"value"`
	Data  string                `json:"data"`
}

type Clauses []Clause

// BatchCallData executes a batch of clauses in sequence, each one seeing the effects of the previous.
type BatchCallData struct {
	Clauses Clauses      `json:"clauses"`
	Gas     uint64       `json:"gas"`
	Caller  *gig.Address `json:"caller"`
}

type Event struct {
	Address gig.Address           `json:"address"`
	Topics  []gig.Bytes32         `json:"topics"`
	Data    string                `json:"data"`
	Decoded *builtin.DecodedEvent `json:"decoded,omitempty"`
}

type Transfer struct {
	Sender    gig.Address           `json:"sender"`
	Recipient gig.Address           `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

type CallResult struct {
	Data      string      `json:"data"`
	Events    []*Event    `json:"events"`
	Transfers []*Transfer `json:"transfers"`
	GasUsed   uint64      `json:"gasUsed"`
	Reverted  bool        `json:"reverted"`
	VMError   string      `json:"vmError"`
}

type BatchCallResults []*CallResult

func convertCallResultWithInputGas(out *runtime.Output, inputGas uint64) *CallResult {
	events := make([]*Event, len(out.Events))
	transfers := make([]*Transfer, len(out.Transfers))
	for j, ev := range out.Events {
		event := &Event{
			Address: ev.Address,
			Topics:  ev.Topics,
			Data:    hexutil.Encode(ev.Data),
		}
		if decoded, err := builtin.DecodeEvent(ev); err == nil {
			event.Decoded = decoded
		}
		events[j] = event
	}
	for j, t := range out.Transfers {
		transfers[j] = &Transfer{
			Sender:    t.Sender,
			Recipient: t.Recipient,
			Amount:    (*math.HexOrDecimal256)(t.Amount),
		}
	}

	var (
		vmError  string
		reverted bool
	)
	if out.Err != nil {
		reverted = true
		vmError = out.RevertReason()
	}

	return &CallResult{
		Data:      hexutil.Encode(out.Data),
		Events:    events,
		Transfers: transfers,
		GasUsed:   inputGas - out.LeftOverGas,
		Reverted:  reverted,
		VMError:   vmError,
	}
}
