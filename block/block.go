// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"slices"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/gigstream/gigstream/tx"
)

// Block is an immutable block type.
type Block struct {
	header *Header
	txs    tx.Transactions
	size   atomic.Uint64
}

// Compose compose a block with all needed components
// Note: This method is usually to recover a block by its portions, and the TxsRoot is not verified.
// To build up a block, use a Builder.
func Compose(header *Header, txs tx.Transactions) *Block {
	return &Block{
		header: header,
		txs:    slices.Clone(txs),
	}
}

// Header returns the block header.
func (b *Block) Header() *Header {
	return b.header
}

// Transactions returns a copy of transactions.
func (b *Block) Transactions() tx.Transactions {
	return slices.Clone(b.txs)
}

// Size returns block size in bytes when RLP encoded.
func (b *Block) Size() uint64 {
	if size := b.size.Load(); size != 0 {
		return size
	}
	data, _ := rlp.EncodeToBytes(b)
	b.size.Store(uint64(len(data)))
	return uint64(len(data))
}

// EncodeRLP implements rlp.Encoder.
func (b *Block) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		b.header,
		b.txs,
	})
}

// DecodeRLP implements rlp.Decoder.
func (b *Block) DecodeRLP(s *rlp.Stream) error {
	payload := struct {
		Header Header
		Txs    tx.Transactions
	}{}

	if err := s.Decode(&payload); err != nil {
		return err
	}
	b.header = &payload.Header
	b.txs = payload.Txs
	b.size.Store(0)
	return nil
}

func (b *Block) String() string {
	return fmt.Sprintf(`Block(%v)
%v
Transactions: %v`, b.header.ID().AbbrevString(), b.header, len(b.txs))
}
