// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reputation

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

// Token is the metadata and supply of the reputation token.
type Token struct {
	Address     gig.Address           `json:"address"`
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Decimals    uint8                 `json:"decimals"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
	Minter      gig.Address           `json:"minter"`
	Owner       gig.Address           `json:"owner"`
}

// Holder is the reputation balance of an address.
type Holder struct {
	Address gig.Address           `json:"address"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Reputation struct {
	stater *state.Stater
}

func New(stater *state.Stater) *Reputation {
	return &Reputation{
		stater,
	}
}

func (r *Reputation) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	ledger := builtin.Reputation.WithState(r.stater.NewState())

	supply, err := ledger.TotalSupply()
	if err != nil {
		return err
	}
	owner, err := ledger.Owner()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Token{
		Address:     ledger.Address(),
		Name:        ledger.Name(),
		Symbol:      ledger.Symbol(),
		Decimals:    ledger.Decimals(),
		TotalSupply: (*math.HexOrDecimal256)(supply),
		Minter:      ledger.Minter(),
		Owner:       owner,
	})
}

func (r *Reputation) handleGetHolder(w http.ResponseWriter, req *http.Request) error {
	addr, err := gig.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	balance, err := builtin.Reputation.WithState(r.stater.NewState()).BalanceOf(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Holder{
		Address: addr,
		Balance: (*math.HexOrDecimal256)(balance),
	})
}

func (r *Reputation) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /reputation").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetToken))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /reputation/{address}").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetHolder))
}
