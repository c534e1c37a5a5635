// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logs holds the filter types shared by the event and transfer queries.
package logs

import (
	"fmt"
	"math"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/logdb"
)

type LogMeta struct {
	BlockID        gig.Bytes32 `json:"blockID"`
	BlockNumber    uint32      `json:"blockNumber"`
	BlockTimestamp uint64      `json:"blockTimestamp"`
	TxID           gig.Bytes32 `json:"txID"`
	TxOrigin       gig.Address `json:"txOrigin"`
	ClauseIndex    uint32      `json:"clauseIndex"`
	TxIndex        *uint32     `json:"txIndex,omitempty"`
	LogIndex       *uint32     `json:"logIndex,omitempty"`
}

type Options struct {
	Offset         uint64  `json:"offset,omitempty"`
	Limit          *uint64 `json:"limit,omitempty"`
	IncludeIndexes bool    `json:"includeIndexes,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", uint64(math.MaxInt64))
	}
	return nil
}

// WithDefaults fills the unset limit with limit+1, so that exceeding results can be detected.
func (o *Options) WithDefaults(limit uint64) *Options {
	out := Options{Limit: new(uint64)}
	if o != nil {
		out.Offset = o.Offset
		out.IncludeIndexes = o.IncludeIndexes
		if o.Limit != nil {
			*out.Limit = *o.Limit
			return &out
		}
	}
	*out.Limit = limit + 1
	return &out
}

func ConvertOptions(o *Options) *logdb.Options {
	return &logdb.Options{
		Offset: o.Offset,
		Limit:  *o.Limit,
	}
}

type RangeType string

const (
	BlockRangeType RangeType = "block"
	TimeRangeType  RangeType = "time"
)

type Range struct {
	Unit RangeType `json:"unit,omitempty"`
	From *uint64   `json:"from,omitempty"`
	To   *uint64   `json:"to,omitempty"`
}

func (r *Range) Validate() error {
	if r == nil {
		return nil
	}
	if r.Unit != "" && r.Unit != BlockRangeType && r.Unit != TimeRangeType {
		return fmt.Errorf("range.unit must be either 'block' or 'time', got '%s'", r.Unit)
	}
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return fmt.Errorf("range.to must be greater than or equal to range.from")
	}
	return nil
}

// ConvertRange converts r into an inclusive logdb range. Open ends are unbounded.
func ConvertRange(r *Range) *logdb.Range {
	if r == nil {
		return nil
	}
	rng := &logdb.Range{
		Unit: logdb.Block,
		To:   math.MaxUint32,
	}
	if r.Unit == TimeRangeType {
		rng.Unit = logdb.Time
		rng.To = math.MaxInt64
	}
	if r.From != nil {
		rng.From = *r.From
	}
	if r.To != nil {
		rng.To = *r.To
	}
	return rng
}

func ConvertOrder(o string) (logdb.Order, error) {
	switch o {
	case "", string(logdb.ASC):
		return logdb.ASC, nil
	case string(logdb.DESC):
		return logdb.DESC, nil
	default:
		return "", fmt.Errorf("order must be either 'asc' or 'desc', got '%s'", o)
	}
}
