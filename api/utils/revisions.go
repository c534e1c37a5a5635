// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/gig"
)

const revBest int64 = -1

type Revision struct {
	val any
}

// ParseRevision parses a query parameter into a block number or block ID. Empty means best.
func ParseRevision(revision string) (*Revision, error) {
	if revision == "" || revision == "best" {
		return &Revision{revBest}, nil
	}

	if len(revision) == 66 || len(revision) == 64 {
		blockID, err := gig.ParseBytes32(revision)
		if err != nil {
			return nil, err
		}
		return &Revision{blockID}, nil
	}
	n, err := strconv.ParseUint(revision, 0, 0)
	if err != nil {
		return nil, err
	}
	if n > math.MaxUint32 {
		return nil, errors.New("block number out of max uint32")
	}
	return &Revision{uint32(n)}, err
}

// GetBlock returns the block of the revision.
func GetBlock(rev *Revision, repo *chain.Repository) (*block.Block, error) {
	switch rev := rev.val.(type) {
	case gig.Bytes32:
		return repo.GetBlockByID(rev)
	case uint32:
		return repo.GetBlock(rev)
	default:
		return repo.BestBlock(), nil
	}
}
