// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/runtime"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

type Accounts struct {
	repo         *chain.Repository
	stater       *state.Stater
	callGasLimit uint64
}

func New(repo *chain.Repository, stater *state.Stater, callGasLimit uint64) *Accounts {
	return &Accounts{
		repo,
		stater,
		callGasLimit,
	}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := gig.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	balance, err := a.stater.NewState().GetBalance(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{
		Balance:   (*math.HexOrDecimal256)(balance),
		IsBuiltin: builtin.IsBuiltin(addr),
	})
}

func (a *Accounts) handleCallContract(w http.ResponseWriter, req *http.Request) error {
	var callData *CallData
	if err := utils.ParseJSON(req.Body, &callData); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if callData == nil {
		return utils.BadRequest(errors.New("body: empty body"))
	}
	addr, err := gig.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	batchCallData := &BatchCallData{
		Clauses: Clauses{
			Clause{
				To:    &addr,
				Value: callData.Value,
				Data:  callData.Data,
			},
		},
		Gas:    callData.Gas,
		Caller: callData.Caller,
	}
	results, err := a.batchCall(req.Context(), batchCallData)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, results[0])
}

func (a *Accounts) handleCallBatchCode(w http.ResponseWriter, req *http.Request) error {
	var batchCallData *BatchCallData
	if err := utils.ParseJSON(req.Body, &batchCallData); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if batchCallData == nil {
		return utils.BadRequest(errors.New("body: empty body"))
	}
	results, err := a.batchCall(req.Context(), batchCallData)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, results)
}

// batchCall simulates the clauses on the best state. Nothing is persisted.
// Execution stops at the first reverted clause.
func (a *Accounts) batchCall(ctx context.Context, batchCallData *BatchCallData) (BatchCallResults, error) {
	gas, caller, clauses, err := a.handleBatchCallData(batchCallData)
	if err != nil {
		return nil, err
	}

	best := a.repo.BestBlock().Header()
	rt := runtime.New(a.stater.NewState(), a.repo.ChainTag(), best.Number(), best.Timestamp())

	results := make(BatchCallResults, 0, len(clauses))
	for _, clause := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := rt.ExecuteClause(clause, caller, gas)
		results = append(results, convertCallResultWithInputGas(out, gas))
		if out.Err != nil {
			return results, nil
		}
		gas = out.LeftOverGas
	}
	return results, nil
}

func (a *Accounts) handleBatchCallData(batchCallData *BatchCallData) (gas uint64, caller gig.Address, clauses []*tx.Clause, err error) {
	if batchCallData.Gas > a.callGasLimit {
		return 0, gig.Address{}, nil, utils.Forbidden(errors.New("gas: exceeds limit"))
	} else if batchCallData.Gas == 0 {
		gas = a.callGasLimit
	} else {
		gas = batchCallData.Gas
	}
	if batchCallData.Caller != nil {
		caller = *batchCallData.Caller
	}
	if len(batchCallData.Clauses) == 0 {
		return 0, gig.Address{}, nil, utils.BadRequest(errors.New("clauses: empty"))
	}

	clauses = make([]*tx.Clause, len(batchCallData.Clauses))
	for i, c := range batchCallData.Clauses {
		if c.To == nil {
			return 0, gig.Address{}, nil, utils.BadRequest(errors.Errorf("clauses[%d].to: required", i))
		}
		var value *big.Int
		if c.Value != nil {
			value = (*big.Int)(c.Value)
			if value.Sign() < 0 {
				return 0, gig.Address{}, nil, utils.BadRequest(errors.Errorf("clauses[%d].value: negative", i))
			}
		}
		var data []byte
		if c.Data != "" {
			data, err = hexutil.Decode(c.Data)
			if err != nil {
				return 0, gig.Address{}, nil, utils.BadRequest(errors.WithMessagef(err, "clauses[%d].data", i))
			}
		}
		clauses[i] = tx.NewClause(c.To).WithValue(value).WithData(data)
	}
	return
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/*").
		Methods(http.MethodPost).
		Name("POST /accounts/*").
		HandlerFunc(utils.WrapHandlerFunc(a.handleCallBatchCode))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleCallContract))
}
