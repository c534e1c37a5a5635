// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes transactions against the builtin ledgers.
package runtime

import (
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/log"
	"github.com/gigstream/gigstream/metrics"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
	"github.com/gigstream/gigstream/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricTxs = metrics.LazyLoadCounterVec("runtime_txs_count", []string{"result"})

	// ErrInsufficientBalance is returned when the caller can not afford the clause value.
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
	// ErrNoReceive is returned when value is sent without data to a builtin that can not receive.
	ErrNoReceive = errors.New("contract does not accept value")
)

// Output is the result of one clause.
type Output struct {
	Data        []byte
	Events      tx.Events
	Transfers   tx.Transfers
	LeftOverGas uint64
	Err         error
}

// RevertReason returns the failure of the clause as it is recorded in receipts.
func (o *Output) RevertReason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Runtime is to support transaction execution.
type Runtime struct {
	state    *state.State
	chainTag byte
	blockCtx xenv.BlockContext
}

// New create a Runtime object.
func New(state *state.State, chainTag byte, blockNumber uint32, blockTime uint64) *Runtime {
	return &Runtime{
		state:    state,
		chainTag: chainTag,
		blockCtx: xenv.BlockContext{Number: blockNumber, Time: blockTime},
	}
}

func (rt *Runtime) State() *state.State { return rt.state }
func (rt *Runtime) BlockNumber() uint32 { return rt.blockCtx.Number }
func (rt *Runtime) BlockTime() uint64   { return rt.blockCtx.Time }

// execute runs a clause under its own checkpoint. On failure the state is back to where it was.
func (rt *Runtime) execute(
	clause *tx.Clause,
	index uint32,
	gas uint64,
	caller gig.Address,
	txID gig.Bytes32,
	readonly bool,
) *Output {
	to := clause.To()
	if to == nil {
		return &Output{LeftOverGas: gas, Err: errors.New("clause requires 'To'")}
	}
	value := clause.Value()
	if readonly && value.Sign() != 0 {
		return &Output{LeftOverGas: gas, Err: xenv.ErrWriteProtection}
	}

	checkpoint := rt.state.NewCheckpoint()
	fail := func(out *Output) *Output {
		rt.state.RevertTo(checkpoint)
		out.Events, out.Transfers = nil, nil
		return out
	}

	var transfers tx.Transfers
	if value.Sign() > 0 {
		ok, err := rt.state.Transfer(caller, *to, value)
		if err != nil {
			return fail(&Output{LeftOverGas: gas, Err: err})
		}
		if !ok {
			return fail(&Output{LeftOverGas: gas, Err: ErrInsufficientBalance})
		}
		transfers = append(transfers, &tx.Transfer{Sender: caller, Recipient: *to, Amount: value})
	}

	if !builtin.IsBuiltin(*to) {
		// plain account, data is ignored
		return &Output{Transfers: transfers, LeftOverGas: gas}
	}

	method, run, found := builtin.FindNativeCall(*to, clause.Data())
	if !found {
		if len(clause.Data()) == 0 {
			return fail(&Output{LeftOverGas: gas, Err: ErrNoReceive})
		}
		return fail(&Output{LeftOverGas: gas, Err: xenv.ErrExecutionReverted})
	}

	env := xenv.New(
		method,
		rt.state,
		&rt.blockCtx,
		&xenv.TransactionContext{ID: txID, Origin: caller, ClauseIndex: index},
		caller,
		*to,
		value,
		clause.Data(),
		gas,
	)
	data, err := env.Call(run, readonly)()
	if err != nil {
		if !reverts.IsRevertErr(err) {
			logger.Debug("native call failed", "to", to, "method", method.Name(), "err", err)
		}
		return fail(&Output{LeftOverGas: env.GasLeft(), Err: err})
	}
	return &Output{
		Data:        data,
		Events:      env.Events(),
		Transfers:   append(transfers, env.Transfers()...),
		LeftOverGas: env.GasLeft(),
	}
}

// ExecuteClause runs a clause from caller outside of any tx, keeping its effects on success.
func (rt *Runtime) ExecuteClause(clause *tx.Clause, caller gig.Address, gas uint64) *Output {
	return rt.execute(clause, 0, gas, caller, gig.Bytes32{}, false)
}

// Call simulates a clause from caller. The state is reverted afterwards whatever the result.
func (rt *Runtime) Call(clause *tx.Clause, caller gig.Address, gas uint64) *Output {
	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return rt.execute(clause, 0, gas, caller, gig.Bytes32{}, false)
}

// StaticCall runs a read-only clause, such as a view method.
func (rt *Runtime) StaticCall(clause *tx.Clause, caller gig.Address, gas uint64) *Output {
	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return rt.execute(clause, 0, gas, caller, gig.Bytes32{}, true)
}

// ExecuteTransaction executes a transaction.
// A failing clause reverts all clauses of the tx; the receipt then has no outputs and records the reason.
// An error is returned only for a tx that can not be included at all.
func (rt *Runtime) ExecuteTransaction(trx *tx.Transaction) (*tx.Receipt, error) {
	if trx.ChainTag() != rt.chainTag {
		return nil, errors.New("chain tag mismatch")
	}
	if trx.BlockRef().Number() > rt.blockCtx.Number {
		return nil, errors.New("block ref out of schedule")
	}
	if trx.IsExpired(rt.blockCtx.Number) {
		return nil, errors.New("expired")
	}
	resolvedTx, err := ResolveTransaction(trx)
	if err != nil {
		return nil, err
	}

	// checkpoint to be reverted when clause failure.
	clauseCheckpoint := rt.state.NewCheckpoint()

	leftOverGas := trx.Gas() - resolvedTx.IntrinsicGas
	receipt := &tx.Receipt{Outputs: make([]*tx.Output, 0, len(resolvedTx.Clauses))}

	for i, clause := range resolvedTx.Clauses {
		out := rt.execute(clause, uint32(i), leftOverGas, resolvedTx.Origin, trx.ID(), false)
		leftOverGas = out.LeftOverGas

		if out.Err != nil {
			rt.state.RevertTo(clauseCheckpoint)
			receipt.Reverted = true
			receipt.RevertReason = out.RevertReason()
			receipt.Outputs = nil
			break
		}
		receipt.Outputs = append(receipt.Outputs, &tx.Output{Events: out.Events, Transfers: out.Transfers})
	}
	receipt.GasUsed = trx.Gas() - leftOverGas

	if receipt.Reverted {
		metricTxs().AddWithLabel(1, map[string]string{"result": "reverted"})
	} else {
		metricTxs().AddWithLabel(1, map[string]string{"result": "ok"})
	}
	return receipt, nil
}
