// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gigstream/gigstream/api/logs"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/logdb"
	"github.com/gigstream/gigstream/tx"
)

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address gig.Address           `json:"address"`
	Topics  []*gig.Bytes32        `json:"topics"`
	Data    string                `json:"data"`
	Decoded *builtin.DecodedEvent `json:"decoded,omitempty"`
	Meta    logs.LogMeta          `json:"meta"`
}

// convertEvent converts a logdb.Event into a json format event
func convertEvent(event *logdb.Event, addIndexes bool) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: logs.LogMeta{
			BlockID:        event.BlockID,
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			TxID:           event.TxID,
			TxOrigin:       event.TxOrigin,
			ClauseIndex:    event.ClauseIndex,
		},
	}
	if addIndexes {
		fe.Meta.TxIndex = &event.TxIndex
		fe.Meta.LogIndex = &event.Index
	}

	fe.Topics = make([]*gig.Bytes32, 0)
	topics := make([]gig.Bytes32, 0, len(event.Topics))
	for i := range 5 {
		if event.Topics[i] != nil {
			fe.Topics = append(fe.Topics, event.Topics[i])
			topics = append(topics, *event.Topics[i])
		}
	}
	if decoded, err := builtin.DecodeEvent(&tx.Event{Address: event.Address, Topics: topics, Data: event.Data}); err == nil {
		fe.Decoded = decoded
	}
	return fe
}

type TopicSet struct {
	Topic0 *gig.Bytes32 `json:"topic0"`
	Topic1 *gig.Bytes32 `json:"topic1"`
	Topic2 *gig.Bytes32 `json:"topic2"`
	Topic3 *gig.Bytes32 `json:"topic3"`
	Topic4 *gig.Bytes32 `json:"topic4"`
}

type EventCriteria struct {
	Address *gig.Address `json:"address"`
	TopicSet
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *logs.Range      `json:"range,omitempty"`
	Options     *logs.Options    `json:"options,omitempty"`
	Order       string           `json:"order,omitempty"`
}

func convertEventFilter(filter *EventFilter, order logdb.Order) *logdb.EventFilter {
	f := &logdb.EventFilter{
		Range:   logs.ConvertRange(filter.Range),
		Options: logs.ConvertOptions(filter.Options),
		Order:   order,
	}
	if len(filter.CriteriaSet) > 0 {
		f.CriteriaSet = make([]*logdb.EventCriteria, len(filter.CriteriaSet))
		for i, criterion := range filter.CriteriaSet {
			f.CriteriaSet[i] = &logdb.EventCriteria{
				Address: criterion.Address,
				Topics: [5]*gig.Bytes32{
					criterion.Topic0,
					criterion.Topic1,
					criterion.Topic2,
					criterion.Topic3,
					criterion.Topic4,
				},
			}
		}
	}
	return f
}
