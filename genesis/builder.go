// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math"

	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/lvldb"
	"github.com/gigstream/gigstream/runtime"
	"github.com/gigstream/gigstream/state"
	"github.com/gigstream/gigstream/tx"
)

// Builder helper to build genesis block.
type Builder struct {
	timestamp uint64
	gasLimit  uint64

	stateProcs []func(state *state.State) error
	calls      []call
	extraData  [28]byte
}

type call struct {
	clause *tx.Clause
	caller gig.Address
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// GasLimit set gas limit.
func (b *Builder) GasLimit(limit uint64) *Builder {
	b.gasLimit = limit
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a contract call.
func (b *Builder) Call(clause *tx.Clause, caller gig.Address) *Builder {
	b.calls = append(b.calls, call{clause, caller})
	return b
}

// ExtraData set extra data, which will be put into last 28 bytes of genesis parent id.
func (b *Builder) ExtraData(data [28]byte) *Builder {
	b.extraData = data
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (gig.Bytes32, error) {
	blk, _, _, err := b.Build()
	if err != nil {
		return gig.Bytes32{}, err
	}
	return blk.Header().ID(), nil
}

// Build build genesis block according to presets.
// The state is built on a private in-memory store, so the result does not depend on any existing db.
func (b *Builder) Build() (blk *block.Block, out *tx.Output, stage *state.Stage, err error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, nil, nil, err
	}
	defer db.Close()
	st := state.NewStater(db, 1).NewState()

	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, nil, nil, errors.Wrap(err, "state process")
		}
	}

	out = &tx.Output{}
	rt := runtime.New(st, 0, 0, b.timestamp)
	for _, call := range b.calls {
		res := rt.ExecuteClause(call.clause, call.caller, math.MaxUint64)
		if res.Err != nil {
			return nil, nil, nil, errors.Wrap(res.Err, "genesis call")
		}
		out.Events = append(out.Events, res.Events...)
		out.Transfers = append(out.Transfers, res.Transfers...)
	}

	stage = st.Stage()

	parentID := gig.Bytes32{0xff, 0xff, 0xff, 0xff} // so, genesis number is 0
	copy(parentID[4:], b.extraData[:])

	return new(block.Builder).
		ParentID(parentID).
		Timestamp(b.timestamp).
		GasLimit(b.gasLimit).
		StateRoot(stage.Hash()).
		ReceiptsRoot(tx.Receipts(nil).RootHash()).
		Build(), out, stage, nil
}
