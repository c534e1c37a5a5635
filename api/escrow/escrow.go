// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
)

// Summary is the global view of the escrow engine.
type Summary struct {
	Address           gig.Address           `json:"address"`
	Admin             gig.Address           `json:"admin"`
	ReputationToken   gig.Address           `json:"reputationToken"`
	JobCounter        uint64                `json:"jobCounter"`
	Balance           *math.HexOrDecimal256 `json:"balance"`
	MinDeadlineOffset uint64                `json:"minDeadlineOffset"`
}

type Escrow struct {
	stater *state.Stater
}

func New(stater *state.Stater) *Escrow {
	return &Escrow{
		stater,
	}
}

func (e *Escrow) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	engine := builtin.Escrow.WithState(e.stater.NewState())

	admin, err := engine.Admin()
	if err != nil {
		return err
	}
	counter, err := engine.JobCounter()
	if err != nil {
		return err
	}
	balance, err := engine.GetBalance()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Summary{
		Address:           engine.Address(),
		Admin:             admin,
		ReputationToken:   engine.ReputationToken(),
		JobCounter:        counter,
		Balance:           (*math.HexOrDecimal256)(balance),
		MinDeadlineOffset: gig.MinDeadlineOffset,
	})
}

func (e *Escrow) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /escrow").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetSummary))
}
