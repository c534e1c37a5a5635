// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/gigstream/gigstream/chain"
)

// readBatch bounds the blocks visited by a single Read, so a subscriber far behind catches up in steps.
const readBatch = 64

type msgReader interface {
	Read() (msgs []any, hasMore bool, err error)
}

// cursor walks the trunk from the block after the given position.
type cursor struct {
	repo *chain.Repository
	next uint32
}

func newCursor(repo *chain.Repository, position uint32) cursor {
	return cursor{repo: repo, next: position + 1}
}

// scan calls fn on every block from the cursor up to best, at most readBatch of them.
func (c *cursor) scan(fn func(num uint32) error) (bool, error) {
	best := c.repo.BestBlock().Header().Number()
	if c.next > best {
		return false, nil
	}
	end := min(best, c.next+readBatch-1)
	for num := c.next; num <= end; num++ {
		if err := fn(num); err != nil {
			return false, err
		}
		c.next = num + 1
	}
	return end < best, nil
}

type blockReader struct {
	cursor
	cache *messageCache[*BlockMessage]
}

func newBlockReader(repo *chain.Repository, position uint32, cache *messageCache[*BlockMessage]) *blockReader {
	return &blockReader{
		cursor: newCursor(repo, position),
		cache:  cache,
	}
}

func (br *blockReader) Read() ([]any, bool, error) {
	var msgs []any
	hasMore, err := br.scan(func(num uint32) error {
		blk, err := br.repo.GetBlock(num)
		if err != nil {
			return err
		}
		msg, _, err := br.cache.GetOrAdd(blk.Header().ID(), func() (*BlockMessage, error) {
			return convertBlock(blk), nil
		})
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		return nil
	})
	return msgs, hasMore, err
}

type eventReader struct {
	cursor
	filter *EventFilter
	cache  *messageCache[[]*EventMessage]
}

func newEventReader(repo *chain.Repository, position uint32, filter *EventFilter, cache *messageCache[[]*EventMessage]) *eventReader {
	return &eventReader{
		cursor: newCursor(repo, position),
		filter: filter,
		cache:  cache,
	}
}

func (er *eventReader) Read() ([]any, bool, error) {
	var msgs []any
	hasMore, err := er.scan(func(num uint32) error {
		events, err := er.blockEvents(num)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if er.filter.Match(ev) {
				msgs = append(msgs, ev)
			}
		}
		return nil
	})
	return msgs, hasMore, err
}

func (er *eventReader) blockEvents(num uint32) ([]*EventMessage, error) {
	blk, err := er.repo.GetBlock(num)
	if err != nil {
		return nil, err
	}
	events, _, err := er.cache.GetOrAdd(blk.Header().ID(), func() ([]*EventMessage, error) {
		receipts, err := er.repo.GetBlockReceipts(num)
		if err != nil {
			return nil, err
		}
		return convertBlockEvents(blk, receipts)
	})
	return events, err
}
