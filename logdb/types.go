// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/gigstream/gigstream/gig"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	BlockNumber uint32
	Index       uint32
	BlockID     gig.Bytes32
	BlockTime   uint64
	TxID        gig.Bytes32
	TxIndex     uint32
	ClauseIndex uint32
	TxOrigin    gig.Address // contract caller
	Address     gig.Address // always a contract address
	Topics      [5]*gig.Bytes32
	Data        []byte
}

// Transfer represents tx.Transfer that can be stored in db.
type Transfer struct {
	BlockNumber uint32
	Index       uint32
	BlockID     gig.Bytes32
	BlockTime   uint64
	TxID        gig.Bytes32
	TxIndex     uint32
	ClauseIndex uint32
	TxOrigin    gig.Address
	Sender      gig.Address
	Recipient   gig.Address
	Amount      *big.Int
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive range of block numbers or timestamps.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *gig.Address // always a contract address
	Topics  [5]*gig.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

type TransferCriteria struct {
	TxOrigin  *gig.Address // who send transaction
	Sender    *gig.Address // who transferred tokens
	Recipient *gig.Address // who received tokens
}

type TransferFilter struct {
	TxID        *gig.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
