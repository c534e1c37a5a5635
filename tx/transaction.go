// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/gigstream/gigstream/gig"
)

var (
	errIntrinsicGasOverflow = errors.New("intrinsic gas overflow")
	errUnsigned             = errors.New("unsigned transaction")
)

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		signingHash atomic.Pointer[gig.Bytes32]
		origin      atomic.Pointer[gig.Address]
		id          atomic.Pointer[gig.Bytes32]
		size        atomic.Uint64
	}
}

// body describes details of a tx.
type body struct {
	ChainTag   byte
	BlockRef   uint64
	Expiration uint32
	Clauses    []*Clause
	Gas        uint64
	Nonce      uint64
	Signature  []byte
}

// ChainTag returns chain tag.
func (t *Transaction) ChainTag() byte {
	return t.body.ChainTag
}

// Nonce returns nonce value.
func (t *Transaction) Nonce() uint64 {
	return t.body.Nonce
}

// BlockRef returns block reference, which is first 8 bytes of block hash.
func (t *Transaction) BlockRef() (br BlockRef) {
	binary.BigEndian.PutUint64(br[:], t.body.BlockRef)
	return
}

// Expiration returns expiration in unit block.
// A valid transaction requires:
// blockNum in [blockRef.Num... blockRef.Num + Expiration]
func (t *Transaction) Expiration() uint32 {
	return t.body.Expiration
}

// IsExpired returns whether the tx is expired according to the given block number.
func (t *Transaction) IsExpired(blockNum uint32) bool {
	return uint64(blockNum) > uint64(t.BlockRef().Number())+uint64(t.body.Expiration)
}

// Gas returns gas provision for this tx.
func (t *Transaction) Gas() uint64 {
	return t.body.Gas
}

// Clauses returns clauses in tx.
func (t *Transaction) Clauses() []*Clause {
	return append([]*Clause(nil), t.body.Clauses...)
}

// Signature returns signature.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// SigningHash returns hash of tx excludes signature.
func (t *Transaction) SigningHash() (hash gig.Bytes32) {
	if cached := t.cache.signingHash.Load(); cached != nil {
		return *cached
	}
	defer func() { t.cache.signingHash.Store(&hash) }()

	return gig.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			t.body.ChainTag,
			t.body.BlockRef,
			t.body.Expiration,
			t.body.Clauses,
			t.body.Gas,
			t.body.Nonce,
		})
	})
}

// Origin extract address of tx originator from signature.
func (t *Transaction) Origin() (gig.Address, error) {
	if cached := t.cache.origin.Load(); cached != nil {
		return *cached, nil
	}
	if len(t.body.Signature) == 0 {
		return gig.Address{}, errUnsigned
	}

	pub, err := crypto.SigToPub(t.SigningHash().Bytes(), t.body.Signature)
	if err != nil {
		return gig.Address{}, err
	}
	origin := gig.Address(crypto.PubkeyToAddress(*pub))
	t.cache.origin.Store(&origin)
	return origin, nil
}

// ID returns id of tx.
// ID = hash(signingHash, origin).
// It returns zero Bytes32 if origin not available.
func (t *Transaction) ID() (id gig.Bytes32) {
	if cached := t.cache.id.Load(); cached != nil {
		return *cached
	}
	origin, err := t.Origin()
	if err != nil {
		return
	}
	id = gig.Blake2b(t.SigningHash().Bytes(), origin.Bytes())
	t.cache.id.Store(&id)
	return
}

// WithSignature create a new tx with signature set.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{
		body: t.body,
	}
	// copy sig
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	_, size, err := s.Kind()
	if err != nil {
		return err
	}
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	t.cache.size.Store(rlp.ListSize(size))
	return nil
}

// MarshalBinary returns the canonical encoding of the transaction.
func (t *Transaction) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(t)
}

// UnmarshalBinary decodes the canonical encoding of transactions.
func (t *Transaction) UnmarshalBinary(data []byte) error {
	return rlp.DecodeBytes(data, t)
}

// Size returns size in bytes when RLP encoded.
func (t *Transaction) Size() uint64 {
	if size := t.cache.size.Load(); size != 0 {
		return size
	}
	data, _ := rlp.EncodeToBytes(t)
	t.cache.size.Store(uint64(len(data)))
	return uint64(len(data))
}

// IntrinsicGas returns intrinsic gas of tx.
func (t *Transaction) IntrinsicGas() (uint64, error) {
	return IntrinsicGas(t.body.Clauses...)
}

// IntrinsicGas calculate intrinsic gas cost for tx with such clauses.
func IntrinsicGas(clauses ...*Clause) (uint64, error) {
	total := gig.TxGas
	for _, c := range clauses {
		gas, err := dataGas(c.body.Data)
		if err != nil {
			return 0, err
		}
		if math.MaxUint64-total < gig.ClauseGas+gas {
			return 0, errIntrinsicGasOverflow
		}
		total += gig.ClauseGas + gas
	}
	return total, nil
}

// dataGas returns gas cost of clause data.
func dataGas(data []byte) (uint64, error) {
	var z, nz uint64
	for _, b := range data {
		if b == 0 {
			z++
		} else {
			nz++
		}
	}
	if nz > 0 && math.MaxUint64/gig.TxDataNonZeroGas < nz {
		return 0, errIntrinsicGasOverflow
	}
	return z*gig.TxDataZeroGas + nz*gig.TxDataNonZeroGas, nil
}

func (t *Transaction) String() string {
	var originStr = "N/A"
	if origin, err := t.Origin(); err == nil {
		originStr = origin.String()
	}
	br := t.BlockRef()

	return fmt.Sprintf(`
	Tx(%v, %v)
	Origin:         %v
	Clauses:        %v
	Gas:            %v
	ChainTag:       %v
	BlockRef:       %v-%x
	Expiration:     %v
	Nonce:          %v
	Signature:      %v
`, t.ID(), t.Size(), originStr, t.body.Clauses, t.body.Gas,
		t.body.ChainTag, br.Number(), br[4:], t.body.Expiration, t.body.Nonce, hexutil.Encode(t.body.Signature))
}
