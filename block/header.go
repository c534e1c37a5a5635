// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/gigstream/gigstream/gig"
)

// Header contains almost all information about a block, except block body.
// It's immutable.
type Header struct {
	body headerBody

	cache struct {
		hash atomic.Value
		id   atomic.Value
	}
}

// headerBody body of header
type headerBody struct {
	ParentID  gig.Bytes32
	Timestamp uint64
	GasLimit  uint64
	GasUsed   uint64

	TxsRoot      gig.Bytes32
	StateRoot    gig.Bytes32
	ReceiptsRoot gig.Bytes32
}

// ParentID returns id of parent block.
func (h *Header) ParentID() gig.Bytes32 {
	return h.body.ParentID
}

// Number returns sequential number of this block.
func (h *Header) Number() uint32 {
	// inferred from parent id
	return Number(h.body.ParentID) + 1
}

// Timestamp returns timestamp of this block.
func (h *Header) Timestamp() uint64 {
	return h.body.Timestamp
}

// GasLimit returns gas limit of this block.
func (h *Header) GasLimit() uint64 {
	return h.body.GasLimit
}

// GasUsed returns gas used by txs.
func (h *Header) GasUsed() uint64 {
	return h.body.GasUsed
}

// TxsRoot returns the digest of txs contained in this block.
func (h *Header) TxsRoot() gig.Bytes32 {
	return h.body.TxsRoot
}

// StateRoot returns the digest of state changes made by this block.
func (h *Header) StateRoot() gig.Bytes32 {
	return h.body.StateRoot
}

// ReceiptsRoot returns the digest of tx receipts.
func (h *Header) ReceiptsRoot() gig.Bytes32 {
	return h.body.ReceiptsRoot
}

// Hash computes hash of all header fields.
func (h *Header) Hash() (hash gig.Bytes32) {
	if cached := h.cache.hash.Load(); cached != nil {
		return cached.(gig.Bytes32)
	}
	defer func() { h.cache.hash.Store(hash) }()

	return gig.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, &h.body)
	})
}

// ID computes id of block.
// The block ID is defined as: blockNumber + hash[4:].
func (h *Header) ID() (id gig.Bytes32) {
	if cached := h.cache.id.Load(); cached != nil {
		return cached.(gig.Bytes32)
	}
	defer func() { h.cache.id.Store(id) }()

	id = h.Hash()
	// overwrite first 4 bytes of block hash to block number.
	binary.BigEndian.PutUint32(id[:], h.Number())
	return
}

// EncodeRLP implements rlp.Encoder
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*h = Header{body: body}
	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf(`Header(%v):
	Number:         %v
	ParentID:       %v
	Timestamp:      %v
	GasLimit:       %v
	GasUsed:        %v
	TxsRoot:        %v
	StateRoot:      %v
	ReceiptsRoot:   %v`, h.ID(), h.Number(), h.body.ParentID, h.body.Timestamp, h.body.GasLimit,
		h.body.GasUsed, h.body.TxsRoot, h.body.StateRoot, h.body.ReceiptsRoot)
}

// Number extract block number from block id.
func Number(blockID gig.Bytes32) uint32 {
	// first 4 bytes are over written by block number (big endian).
	return binary.BigEndian.Uint32(blockID[:])
}
