// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package jobs

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/gigstream/gigstream/builtin/escrow"
	"github.com/gigstream/gigstream/gig"
)

// Job for json marshal
type Job struct {
	ID        uint64                `json:"id"`
	Employer  gig.Address           `json:"employer"`
	Title     string                `json:"title"`
	Location  string                `json:"location"`
	Reward    *math.HexOrDecimal256 `json:"reward"`
	Deadline  *math.HexOrDecimal256 `json:"deadline"`
	Worker    *gig.Address          `json:"worker"`
	Completed bool                  `json:"completed"`
	Cancelled bool                  `json:"cancelled"`
	CreatedAt uint64                `json:"createdAt"`
	Status    string                `json:"status"`
}

// Bid for json marshal
type Bid struct {
	Worker    gig.Address           `json:"worker"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Timestamp uint64                `json:"timestamp"`
	Accepted  bool                  `json:"accepted"`
}

func convertJob(job *escrow.Job) *Job {
	j := &Job{
		ID:        job.ID,
		Employer:  job.Employer,
		Title:     job.Title,
		Location:  job.Location,
		Reward:    (*math.HexOrDecimal256)(job.Reward),
		Deadline:  (*math.HexOrDecimal256)(job.Deadline),
		Completed: job.Completed,
		Cancelled: job.Cancelled,
		CreatedAt: job.CreatedAt,
		Status:    job.Status().String(),
	}
	if !job.Worker.IsZero() {
		worker := job.Worker
		j.Worker = &worker
	}
	return j
}

func convertBids(bids []*escrow.Bid) []*Bid {
	out := make([]*Bid, len(bids))
	for i, b := range bids {
		out[i] = &Bid{
			Worker:    b.Worker,
			Amount:    (*math.HexOrDecimal256)(b.Amount),
			Timestamp: b.Timestamp,
			Accepted:  b.Accepted,
		}
	}
	return out
}
