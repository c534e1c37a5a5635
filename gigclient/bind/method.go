// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bind

import (
	"context"
	"fmt"
	"math/big"
	"math/rand/v2"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/api/accounts"
	"github.com/gigstream/gigstream/api/transactions"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/tx"
)

// gasMargin is added on top of the simulated gas of a tx.
const gasMargin = 20_000

type MethodBuilder struct {
	contract *Contract
	method   string
	args     []any
	value    *big.Int
}

func (b *MethodBuilder) WithValue(value *big.Int) *MethodBuilder {
	b.value = value
	return b
}

func (b *MethodBuilder) abiMethod() (*abi.Method, error) {
	method, ok := b.contract.abi.MethodByName(b.method)
	if !ok {
		return nil, fmt.Errorf("method not found: %s", b.method)
	}
	return method, nil
}

func (b *MethodBuilder) Clause() (*tx.Clause, error) {
	method, err := b.abiMethod()
	if err != nil {
		return nil, err
	}
	data, err := method.EncodeInput(b.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack method (%s): %w", b.method, err)
	}
	addr := b.contract.addr
	return tx.NewClause(&addr).WithData(data).WithValue(b.value), nil
}

// simulate executes the clause on the best state.
func (b *MethodBuilder) simulate(caller *gig.Address) (*accounts.CallResult, error) {
	clause, err := b.Clause()
	if err != nil {
		return nil, err
	}
	results, err := b.contract.client.InspectClauses(&accounts.BatchCallData{
		Clauses: accounts.Clauses{{
			To:    clause.To(),
			Value: (*math.HexOrDecimal256)(clause.Value()),
			Data:  hexutil.Encode(clause.Data()),
		}},
		Caller: caller,
	})
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("unexpected results count %d", len(results))
	}
	if results[0].Reverted {
		return results[0], fmt.Errorf("%s reverted: %s", b, results[0].VMError)
	}
	return results[0], nil
}

// Call executes the method on the best state as caller, and decodes its output into v.
// A nil caller calls from the zero address.
func (b *MethodBuilder) Call(caller *gig.Address, v any) error {
	method, err := b.abiMethod()
	if err != nil {
		return err
	}
	res, err := b.simulate(caller)
	if err != nil {
		return err
	}
	data, err := hexutil.Decode(res.Data)
	if err != nil {
		return err
	}
	return method.DecodeOutput(data, v)
}

// CallUnpack is like Call, but returns the output values.
func (b *MethodBuilder) CallUnpack(caller *gig.Address) ([]any, error) {
	method, err := b.abiMethod()
	if err != nil {
		return nil, err
	}
	res, err := b.simulate(caller)
	if err != nil {
		return nil, err
	}
	data, err := hexutil.Decode(res.Data)
	if err != nil {
		return nil, err
	}
	return method.UnpackOutput(data)
}

// IssueTx simulates the method, then signs and sends it. A tx that would revert is not sent.
func (b *MethodBuilder) IssueTx(signer Signer) (*tx.Transaction, error) {
	caller := signer.Address()
	res, err := b.simulate(&caller)
	if err != nil {
		return nil, err
	}

	clause, err := b.Clause()
	if err != nil {
		return nil, err
	}
	intrinsic, err := tx.IntrinsicGas(clause)
	if err != nil {
		return nil, err
	}

	client := b.contract.client
	tag, err := client.ChainTag()
	if err != nil {
		return nil, err
	}
	best, err := client.BestBlock()
	if err != nil {
		return nil, err
	}

	trx := tx.NewBuilder().
		ChainTag(tag).
		BlockRef(tx.NewBlockRef(best.Number)).
		Expiration(gig.MaxTxExpiration).
		Gas(intrinsic + res.GasUsed + gasMargin).
		Nonce(rand.Uint64()). //#nosec G404
		Clause(clause).
		Build()
	if trx, err = signer.SignTransaction(trx); err != nil {
		return nil, err
	}
	if _, err := client.SendTransaction(trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// Send issues the tx and waits until it is packed. A reverted receipt is returned with an error.
func (b *MethodBuilder) Send(ctx context.Context, signer Signer) (*transactions.Receipt, *tx.Transaction, error) {
	trx, err := b.IssueTx(signer)
	if err != nil {
		return nil, nil, err
	}
	id := trx.ID()
	receipt, err := b.contract.client.WaitForReceipt(ctx, &id)
	if err != nil {
		return nil, trx, err
	}
	if receipt.Reverted {
		return receipt, trx, fmt.Errorf("%s reverted: %s", b, receipt.RevertReason)
	}
	return receipt, trx, nil
}

func (b *MethodBuilder) String() string {
	builder := strings.Builder{}
	builder.WriteString("contract=")
	builder.WriteString(b.contract.addr.String())
	builder.WriteString(", method=")
	builder.WriteString(b.method)
	if b.value != nil && b.value.Sign() != 0 {
		builder.WriteString(", value=")
		builder.WriteString(b.value.String())
	}
	if len(b.args) > 0 {
		builder.WriteString(", args=[")
		for i, arg := range b.args {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(fmt.Sprintf("%v", arg))
		}
		builder.WriteString("]")
	}
	return builder.String()
}
