// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/tx"
)

const (
	insertEventQuery    = "INSERT OR REPLACE INTO event(" + eventColumns + ") VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)"
	insertTransferQuery = "INSERT OR REPLACE INTO transfer(" + transferColumns + ") VALUES(?,?,?,?,?,?,?,?,?,?)"
)

// Writer writes logs in a db transaction, which is begun on demand.
// It's not thread-safe.
type Writer struct {
	db    *LogDB
	tx    *sql.Tx
	count int
}

func (w *Writer) exec(query string, args ...any) error {
	if w.tx == nil {
		tx, err := w.db.db.Begin()
		if err != nil {
			return err
		}
		w.tx = tx
	}
	_, err := w.tx.Exec(query, args...)
	return err
}

// Write writes all logs of the given block. Reverted txs have no logs.
func (w *Writer) Write(b *block.Block, receipts tx.Receipts) error {
	var (
		header     = b.Header()
		num        = header.Number()
		id         = header.ID()
		ts         = int64(header.Timestamp())
		txs        = b.Transactions()
		eventIndex uint32
		transIndex uint32
		eventCount int
		transCount int
	)
	if len(receipts) != len(txs) {
		return errors.New("receipts count mismatch")
	}

	for i, trx := range txs {
		receipt := receipts[i]
		if receipt.Reverted {
			continue
		}
		origin, err := trx.Origin()
		if err != nil {
			return errors.Wrap(err, "tx origin")
		}
		txID := trx.ID()

		for clauseIndex, output := range receipt.Outputs {
			for _, ev := range output.Events {
				var topics [5][]byte
				for j := 0; j < len(ev.Topics) && j < len(topics); j++ {
					topics[j] = ev.Topics[j].Bytes()
				}
				if err := w.exec(insertEventQuery,
					newSequence(num, eventIndex),
					id.Bytes(),
					ts,
					txID.Bytes(),
					i,
					clauseIndex,
					origin.Bytes(),
					ev.Address.Bytes(),
					topics[0],
					topics[1],
					topics[2],
					topics[3],
					topics[4],
					ev.Data,
				); err != nil {
					return err
				}
				eventIndex++
				eventCount++
			}
			for _, tr := range output.Transfers {
				if err := w.exec(insertTransferQuery,
					newSequence(num, transIndex),
					id.Bytes(),
					ts,
					txID.Bytes(),
					i,
					clauseIndex,
					origin.Bytes(),
					tr.Sender.Bytes(),
					tr.Recipient.Bytes(),
					tr.Amount.Bytes(),
				); err != nil {
					return err
				}
				transIndex++
				transCount++
			}
		}
	}
	w.count += eventCount + transCount
	metricWriteCounter().AddWithLabel(int64(eventCount), map[string]string{"type": "event"})
	metricWriteCounter().AddWithLabel(int64(transCount), map[string]string{"type": "transfer"})
	return nil
}

// Truncate deletes logs of blocks from blockNum (included) onward.
func (w *Writer) Truncate(blockNum uint32) error {
	seq := newSequence(blockNum, 0)
	if err := w.exec("DELETE FROM event WHERE seq >= ?", seq); err != nil {
		return err
	}
	return w.exec("DELETE FROM transfer WHERE seq >= ?", seq)
}

// Commit commits accumulated logs.
func (w *Writer) Commit() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx, w.count = nil, 0
	return err
}

// Rollback rollbacks all uncommitted logs.
func (w *Writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Rollback()
	w.tx, w.count = nil, 0
	return err
}

// UncommittedCount returns the count of uncommitted logs.
func (w *Writer) UncommittedCount() int {
	return w.count
}
