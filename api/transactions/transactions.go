// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/node"
	"github.com/gigstream/gigstream/tx"
)

// Pool accepts txs for sequencing.
type Pool interface {
	Submit(trx *tx.Transaction) error
	GetPending(id gig.Bytes32) *tx.Transaction
}

type Transactions struct {
	repo *chain.Repository
	pool Pool
}

func New(repo *chain.Repository, pool Pool) *Transactions {
	return &Transactions{
		repo,
		pool,
	}
}

func (t *Transactions) getTransactionByID(txID gig.Bytes32, allowPending bool) (*Transaction, error) {
	trx, meta, err := t.repo.GetTransaction(txID)
	if err != nil {
		if !t.repo.IsNotFound(err) {
			return nil, err
		}
		if allowPending {
			if pending := t.pool.GetPending(txID); pending != nil {
				return convertTransaction(pending, nil)
			}
		}
		return nil, nil
	}
	blk, err := t.repo.GetBlock(meta.BlockNumber)
	if err != nil {
		return nil, err
	}
	return convertTransaction(trx, blk.Header())
}

func (t *Transactions) getTransactionReceiptByID(txID gig.Bytes32) (*Receipt, error) {
	receipt, meta, err := t.repo.GetReceipt(txID)
	if err != nil {
		if t.repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	blk, err := t.repo.GetBlock(meta.BlockNumber)
	if err != nil {
		return nil, err
	}
	return convertReceipt(receipt, blk.Header(), blk.Transactions()[meta.Index])
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var rawTx *RawTx
	if err := utils.ParseJSON(req.Body, &rawTx); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if rawTx == nil {
		return utils.BadRequest(errors.New("body: empty body"))
	}
	trx, err := rawTx.decode()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}

	if err := t.pool.Submit(trx); err != nil {
		if node.IsBadTx(err) {
			return utils.BadRequest(err)
		}
		if node.IsTxRejected(err) || node.IsKnownTx(err) {
			return utils.Forbidden(err)
		}
		return err
	}
	return utils.WriteJSON(w, map[string]string{
		"id": trx.ID().String(),
	})
}

func (t *Transactions) handleGetTransactionByID(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	txID, err := gig.ParseBytes32(id)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	pending, err := parseBool(req.URL.Query().Get("pending"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pending"))
	}
	trx, err := t.getTransactionByID(txID, pending)
	if err != nil {
		return err
	}
	if trx == nil {
		return utils.NotFound(errors.New("transaction not found"))
	}
	return utils.WriteJSON(w, trx)
}

func (t *Transactions) handleGetTransactionReceiptByID(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	txID, err := gig.ParseBytes32(id)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	receipt, err := t.getTransactionReceiptByID(txID)
	if err != nil {
		return err
	}
	if receipt == nil {
		return utils.NotFound(errors.New("receipt not found"))
	}
	return utils.WriteJSON(w, receipt)
}

func parseBool(s string) (bool, error) {
	switch s {
	case "", "false":
		return false, nil
	case "true":
		return true, nil
	default:
		return false, errors.New("should be boolean")
	}
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /transactions").
		HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /transactions/{id}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionByID))
	sub.Path("/{id}/receipt").
		Methods(http.MethodGet).
		Name("GET /transactions/{id}/receipt").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionReceiptByID))
}
