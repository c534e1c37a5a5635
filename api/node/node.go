// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/health"
)

// Sequencer is the part of the node reported by the api.
type Sequencer interface {
	PendingCount() int
	Health() *health.Health
}

type Node struct {
	repo      *chain.Repository
	sequencer Sequencer
}

func New(repo *chain.Repository, sequencer Sequencer) *Node {
	return &Node{
		repo,
		sequencer,
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, _ *http.Request) error {
	best := n.repo.BestBlock().Header()
	return utils.WriteJSON(w, &Info{
		ChainTag:  n.repo.ChainTag(),
		GenesisID: n.repo.GenesisBlock().Header().ID(),
		BestBlock: BestBlock{
			ID:        best.ID(),
			Number:    best.Number(),
			Timestamp: best.Timestamp(),
		},
		PendingTxs: n.sequencer.PendingCount(),
	})
}

func (n *Node) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	status := n.sequencer.Health().Status()
	if !status.Healthy {
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
	sub.Path("/health").
		Methods(http.MethodGet).
		Name("GET /node/health").
		HandlerFunc(utils.WrapHandlerFunc(n.handleHealth))
}
