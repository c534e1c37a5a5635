// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bind calls and sends txs to contracts through a gigclient.Client.
package bind

import (
	"fmt"
	"math/big"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/api/events"
	"github.com/gigstream/gigstream/api/logs"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/gigclient"
)

type Contract struct {
	client *gigclient.Client
	abi    *abi.ABI
	addr   gig.Address
}

func NewContract(client *gigclient.Client, contractABI *abi.ABI, address gig.Address) *Contract {
	return &Contract{
		client: client,
		abi:    contractABI,
		addr:   address,
	}
}

func (c *Contract) Method(method string, args ...any) *MethodBuilder {
	return &MethodBuilder{
		contract: c,
		method:   method,
		args:     args,
		value:    big.NewInt(0),
	}
}

// FilterEvent queries the logs of the named event, in the given block range.
// Topic args match the indexed inputs in order, a nil arg matches anything.
func (c *Contract) FilterEvent(eventName string, rng *logs.Range, topics ...*gig.Bytes32) ([]*events.FilteredEvent, error) {
	ev, ok := c.abi.EventByName(eventName)
	if !ok {
		return nil, fmt.Errorf("event not found: %s", eventName)
	}
	if len(topics) > 4 {
		return nil, fmt.Errorf("too many topics: %d", len(topics))
	}
	id := ev.ID()
	criteria := &events.EventCriteria{
		Address:  &c.addr,
		TopicSet: events.TopicSet{Topic0: &id},
	}
	for i, topic := range topics {
		switch i {
		case 0:
			criteria.Topic1 = topic
		case 1:
			criteria.Topic2 = topic
		case 2:
			criteria.Topic3 = topic
		case 3:
			criteria.Topic4 = topic
		}
	}
	return c.client.FilterEvents(&events.EventFilter{
		CriteriaSet: []*events.EventCriteria{criteria},
		Range:       rng,
	})
}

func (c *Contract) Address() gig.Address {
	return c.addr
}

func (c *Contract) ABI() *abi.ABI {
	return c.abi
}

func (c *Contract) Client() *gigclient.Client {
	return c.client
}
