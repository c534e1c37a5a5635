// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the first block and the initial ledger state.
package genesis

import (
	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

// Genesis to build genesis block.
type Genesis struct {
	builder *Builder
	id      gig.Bytes32
	name    string
}

// Build build the genesis block.
// The returned stage holds the initial state and is meant to be committed along with the block.
func (g *Genesis) Build() (*block.Block, *tx.Output, *state.Stage, error) {
	return g.builder.Build()
}

// ID returns genesis block ID.
func (g *Genesis) ID() gig.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

func newGenesis(builder *Builder, name string) (*Genesis, error) {
	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, name}, nil
}
