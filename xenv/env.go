// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"errors"
	"math/big"

	ethparams "github.com/ethereum/go-ethereum/params"
	pkgerrors "github.com/pkg/errors"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

var (
	ErrOutOfGas          = errors.New("out of gas")
	ErrWriteProtection   = errors.New("write protection")
	ErrExecutionReverted = errors.New("execution reverted")
	ErrNotPayable        = errors.New("method not payable")
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID          gig.Bytes32
	Origin      gig.Address
	ClauseIndex uint32
}

type vmError struct {
	cause error
}

func (e *vmError) Error() string {
	return e.cause.Error()
}

// Environment an env to execute native method.
type Environment struct {
	abi      *abi.Method
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	caller   gig.Address
	to       gig.Address
	value    *big.Int
	input    []byte
	gas      uint64

	events    tx.Events
	transfers tx.Transfers
}

// New create a new env.
func New(
	abi *abi.Method,
	state *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
	caller gig.Address,
	to gig.Address,
	value *big.Int,
	input []byte,
	gas uint64,
) *Environment {
	if value == nil {
		value = new(big.Int)
	}
	return &Environment{
		abi:      abi,
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		caller:   caller,
		to:       to,
		value:    value,
		input:    input,
		gas:      gas,
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) Caller() gig.Address                     { return env.caller }
func (env *Environment) To() gig.Address                         { return env.to }
func (env *Environment) Value() *big.Int                         { return new(big.Int).Set(env.value) }
func (env *Environment) GasLeft() uint64                         { return env.gas }
func (env *Environment) Events() tx.Events                       { return env.events }
func (env *Environment) Transfers() tx.Transfers                 { return env.transfers }

func (env *Environment) UseGas(gas uint64) {
	if env.gas < gas {
		env.gas = 0
		panic(&vmError{ErrOutOfGas})
	}
	env.gas -= gas
}

func (env *Environment) ParseArgs(val any) {
	if err := env.abi.DecodeInput(env.input, val); err != nil {
		// as vm error
		panic(&vmError{pkgerrors.WithMessage(err, "decode native input")})
	}
}

func (env *Environment) Require(cond bool) {
	if !cond {
		panic(&vmError{ErrExecutionReverted})
	}
}

// Log records an event emitted by address. Topics exclude the event id.
func (env *Environment) Log(abi *abi.Event, address gig.Address, topics []gig.Bytes32, args ...any) {
	data, err := abi.Encode(args...)
	if err != nil {
		panic(pkgerrors.WithMessage(err, "encode native event"))
	}
	env.UseGas(ethparams.LogGas + ethparams.LogTopicGas*uint64(len(topics)+1) + ethparams.LogDataGas*uint64(len(data)))

	allTopics := make([]gig.Bytes32, 0, len(topics)+1)
	allTopics = append(allTopics, abi.ID())
	allTopics = append(allTopics, topics...)
	env.events = append(env.events, &tx.Event{
		Address: address,
		Topics:  allTopics,
		Data:    data,
	})
}

// Transfer records a value transfer already applied to the state.
func (env *Environment) Transfer(sender, recipient gig.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	env.transfers = append(env.transfers, &tx.Transfer{
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})
}

func (env *Environment) Stop(vmerr error) {
	panic(&vmError{vmerr})
}

// Call wraps proc into a call returning the encoded output.
// Reverts and vm errors raised by proc are returned as errors.
func (env *Environment) Call(proc func(env *Environment) []any, readonly bool) func() ([]byte, error) {
	return func() (data []byte, err error) {
		if readonly && !env.abi.Const() {
			return nil, ErrWriteProtection
		}

		if env.value.Sign() != 0 && !env.abi.Payable() {
			// reject value transfer on non-payable call
			return nil, ErrNotPayable
		}

		defer func() {
			if e := recover(); e != nil {
				switch rec := e.(type) {
				case *vmError:
					err = rec.cause
				case error:
					if reverts.IsRevertErr(rec) {
						err = rec
					} else {
						err = pkgerrors.WithMessage(rec, "native")
					}
				default:
					panic(e)
				}
			}
		}()
		output := proc(env)
		data, err = env.abi.EncodeOutput(output...)
		if err != nil {
			panic(pkgerrors.WithMessage(err, "encode native output"))
		}
		return
	}
}
