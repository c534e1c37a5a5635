// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"encoding/binary"
	"math/big"

	"github.com/gigstream/gigstream/gig"
)

// Status is the lifecycle stage of a job.
type Status uint8

const (
	StatusPosted Status = iota
	StatusAssigned
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPosted:
		return "posted"
	case StatusAssigned:
		return "assigned"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Job is an employer funded work order.
type Job struct {
	ID        uint64
	Employer  gig.Address
	Title     string
	Location  string
	Reward    *big.Int
	Deadline  *big.Int
	Worker    gig.Address
	Completed bool
	Cancelled bool
	CreatedAt uint64
}

// Status derives the lifecycle stage from the latches.
func (j *Job) Status() Status {
	switch {
	case j.Completed:
		return StatusCompleted
	case j.Cancelled:
		return StatusCancelled
	case !j.Worker.IsZero():
		return StatusAssigned
	default:
		return StatusPosted
	}
}

// Bid is the interest of a worker in a job, with an optional counter offer.
type Bid struct {
	Worker    gig.Address
	Amount    *big.Int
	Timestamp uint64
	Accepted  bool
}

type jobKey uint64

func (k jobKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}
