// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/builtin"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/tx"
)

// Clause for json marshal
type Clause struct {
	To    *gig.Address         `json:"to"`
	Value math.HexOrDecimal256 `json:"value"`
	Data  string               `json:"data"`
}

// Clauses array of clauses.
type Clauses []Clause

// convertClause convert a raw clause into a json format clause
func convertClause(c *tx.Clause) Clause {
	return Clause{
		c.To(),
		math.HexOrDecimal256(*c.Value()),
		hexutil.Encode(c.Data()),
	}
}

type RawTx struct {
	Raw string `json:"raw"`
}

func (rtx *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(rtx.Raw)
	if err != nil {
		return nil, err
	}
	var trx *tx.Transaction
	if err := rlp.DecodeBytes(data, &trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// Transaction transaction
type Transaction struct {
	ID         gig.Bytes32         `json:"id"`
	Size       uint32              `json:"size"`
	ChainTag   byte                `json:"chainTag"`
	BlockRef   string              `json:"blockRef"`
	Expiration uint32              `json:"expiration"`
	Clauses    Clauses             `json:"clauses"`
	Gas        uint64              `json:"gas"`
	Nonce      math.HexOrDecimal64 `json:"nonce"`
	Origin     gig.Address         `json:"origin"`
	Meta       *TxMeta             `json:"meta"`
}

// convertTransaction convert a raw transaction into a json format transaction.
// A nil header means the tx is pending.
func convertTransaction(trx *tx.Transaction, header *block.Header) (*Transaction, error) {
	origin, err := trx.Origin()
	if err != nil {
		return nil, err
	}
	cls := make(Clauses, len(trx.Clauses()))
	for i, c := range trx.Clauses() {
		cls[i] = convertClause(c)
	}
	br := trx.BlockRef()
	t := &Transaction{
		ChainTag:   trx.ChainTag(),
		ID:         trx.ID(),
		Origin:     origin,
		BlockRef:   hexutil.Encode(br[:]),
		Expiration: trx.Expiration(),
		Nonce:      math.HexOrDecimal64(trx.Nonce()),
		Size:       uint32(trx.Size()),
		Gas:        trx.Gas(),
		Clauses:    cls,
	}
	if header != nil {
		t.Meta = &TxMeta{
			BlockID:        header.ID(),
			BlockNumber:    header.Number(),
			BlockTimestamp: header.Timestamp(),
		}
	}
	return t, nil
}

type TxMeta struct {
	BlockID        gig.Bytes32 `json:"blockID"`
	BlockNumber    uint32      `json:"blockNumber"`
	BlockTimestamp uint64      `json:"blockTimestamp"`
}

type ReceiptMeta struct {
	BlockID        gig.Bytes32 `json:"blockID"`
	BlockNumber    uint32      `json:"blockNumber"`
	BlockTimestamp uint64      `json:"blockTimestamp"`
	TxID           gig.Bytes32 `json:"txID"`
	TxOrigin       gig.Address `json:"txOrigin"`
}

// Receipt for json marshal
type Receipt struct {
	GasUsed      uint64      `json:"gasUsed"`
	Reverted     bool        `json:"reverted"`
	RevertReason string      `json:"revertReason,omitempty"`
	Meta         ReceiptMeta `json:"meta"`
	Outputs      []*Output   `json:"outputs"`
}

// Output output of clause execution.
type Output struct {
	Events    []*Event    `json:"events"`
	Transfers []*Transfer `json:"transfers"`
}

// Event event.
type Event struct {
	Address gig.Address   `json:"address"`
	Topics  []gig.Bytes32 `json:"topics"`
	Data    string        `json:"data"`
	// Decoded is set for events of the builtin ledgers.
	Decoded *builtin.DecodedEvent `json:"decoded,omitempty"`
}

// Transfer transfer.
type Transfer struct {
	Sender    gig.Address           `json:"sender"`
	Recipient gig.Address           `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

// convertReceipt convert a raw clause into a json format clause
func convertReceipt(receipt *tx.Receipt, header *block.Header, trx *tx.Transaction) (*Receipt, error) {
	origin, err := trx.Origin()
	if err != nil {
		return nil, errors.Wrap(err, "origin")
	}
	rcpt := &Receipt{
		GasUsed:      receipt.GasUsed,
		Reverted:     receipt.Reverted,
		RevertReason: receipt.RevertReason,
		Meta: ReceiptMeta{
			header.ID(),
			header.Number(),
			header.Timestamp(),
			trx.ID(),
			origin,
		},
	}
	rcpt.Outputs = make([]*Output, len(receipt.Outputs))
	for i, output := range receipt.Outputs {
		otp := &Output{
			make([]*Event, len(output.Events)),
			make([]*Transfer, len(output.Transfers)),
		}
		for j, ev := range output.Events {
			event := &Event{
				Address: ev.Address,
				Topics:  ev.Topics,
				Data:    hexutil.Encode(ev.Data),
			}
			if decoded, err := builtin.DecodeEvent(ev); err == nil {
				event.Decoded = decoded
			}
			otp.Events[j] = event
		}
		for j, tr := range output.Transfers {
			otp.Transfers[j] = &Transfer{
				tr.Sender,
				tr.Recipient,
				(*math.HexOrDecimal256)(tr.Amount),
			}
		}
		rcpt.Outputs[i] = otp
	}
	return rcpt, nil
}
