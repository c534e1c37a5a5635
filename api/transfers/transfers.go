// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/api/logs"
	"github.com/gigstream/gigstream/api/utils"
	"github.com/gigstream/gigstream/logdb"
)

type Transfers struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Transfers {
	return &Transfers{
		db,
		logsLimit,
	}
}

// filter query logs with option
func (t *Transfers) filter(ctx context.Context, filter *TransferFilter, order logdb.Order) ([]*FilteredTransfer, error) {
	transfers, err := t.db.FilterTransfers(ctx, convertTransferFilter(filter, order))
	if err != nil {
		return nil, err
	}
	tLogs := make([]*FilteredTransfer, len(transfers))
	for i, trans := range transfers {
		tLogs[i] = convertTransfer(trans, filter.Options.IncludeIndexes)
	}
	return tLogs, nil
}

func (t *Transfers) handleFilterTransferLogs(w http.ResponseWriter, req *http.Request) error {
	var filter TransferFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.Options.Validate(t.limit); err != nil {
		return utils.Forbidden(err)
	}
	if err := filter.Range.Validate(); err != nil {
		return utils.BadRequest(err)
	}
	order, err := logs.ConvertOrder(filter.Order)
	if err != nil {
		return utils.BadRequest(err)
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	filter.Options = filter.Options.WithDefaults(t.limit)

	tLogs, err := t.filter(req.Context(), &filter, order)
	if err != nil {
		return err
	}
	if len(tLogs) > int(t.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", t.limit))
	}
	return utils.WriteJSON(w, tLogs)
}

func (t *Transfers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleFilterTransferLogs))
}
