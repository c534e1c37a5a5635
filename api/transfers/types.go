// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/gigstream/gigstream/api/logs"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/logdb"
)

type FilteredTransfer struct {
	Sender    gig.Address           `json:"sender"`
	Recipient gig.Address           `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Meta      logs.LogMeta          `json:"meta"`
}

func convertTransfer(transfer *logdb.Transfer, addIndexes bool) *FilteredTransfer {
	v := math.HexOrDecimal256(*transfer.Amount)
	ft := &FilteredTransfer{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    &v,
		Meta: logs.LogMeta{
			BlockID:        transfer.BlockID,
			BlockNumber:    transfer.BlockNumber,
			BlockTimestamp: transfer.BlockTime,
			TxID:           transfer.TxID,
			TxOrigin:       transfer.TxOrigin,
			ClauseIndex:    transfer.ClauseIndex,
		},
	}
	if addIndexes {
		ft.Meta.TxIndex = &transfer.TxIndex
		ft.Meta.LogIndex = &transfer.Index
	}
	return ft
}

type TransferCriteria struct {
	TxOrigin  *gig.Address `json:"txOrigin"`
	Sender    *gig.Address `json:"sender"`
	Recipient *gig.Address `json:"recipient"`
}

type TransferFilter struct {
	TxID        *gig.Bytes32        `json:"txID,omitempty"`
	CriteriaSet []*TransferCriteria `json:"criteriaSet,omitempty"`
	Range       *logs.Range         `json:"range,omitempty"`
	Options     *logs.Options       `json:"options,omitempty"`
	Order       string              `json:"order,omitempty"`
}

func convertTransferFilter(filter *TransferFilter, order logdb.Order) *logdb.TransferFilter {
	f := &logdb.TransferFilter{
		TxID:    filter.TxID,
		Range:   logs.ConvertRange(filter.Range),
		Options: logs.ConvertOptions(filter.Options),
		Order:   order,
	}
	if len(filter.CriteriaSet) > 0 {
		f.CriteriaSet = make([]*logdb.TransferCriteria, len(filter.CriteriaSet))
		for i, criterion := range filter.CriteriaSet {
			f.CriteriaSet[i] = &logdb.TransferCriteria{
				TxOrigin:  criterion.TxOrigin,
				Sender:    criterion.Sender,
				Recipient: criterion.Recipient,
			}
		}
	}
	return f
}
