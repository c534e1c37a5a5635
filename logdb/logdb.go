// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb indexes events and transfers of executed txs in SQLite.
package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/log"
)

const (
	eventColumns    = "seq, blockID, blockTime, txID, txIndex, clauseIndex, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data"
	transferColumns = "seq, blockID, blockTime, txID, txIndex, clauseIndex, txOrigin, sender, recipient, amount"
)

var logger = log.WithContext("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	return open(path, path+"?_journal_mode=WAL&_busy_timeout=5000", 0)
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	// every connection to :memory: is a distinct db
	return open(":memory:", ":memory:", 1)
}

func open(path, dsn string, maxConns int) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	db.SetMaxOpenConns(maxConns)

	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// FilterEvents returns the events matching filter, all events if filter is nil.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT "+eventColumns+" FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var (
		args []any
		cond strings.Builder
	)
	cond.WriteString("1")
	args = appendRange(&cond, args, filter.Range)

	if len(filter.CriteriaSet) > 0 {
		cond.WriteString(" AND (")
		for i, c := range filter.CriteriaSet {
			if i > 0 {
				cond.WriteString(" OR ")
			}
			cond.WriteString("(1")
			if c.Address != nil {
				cond.WriteString(" AND address = ?")
				args = append(args, c.Address.Bytes())
			}
			for j, topic := range c.Topics {
				if topic != nil {
					fmt.Fprintf(&cond, " AND topic%d = ?", j)
					args = append(args, topic.Bytes())
				}
			}
			cond.WriteString(")")
		}
		cond.WriteString(")")
	}

	query, args := buildQuery("event", eventColumns, cond.String(), args, filter.Order, filter.Options)
	return db.queryEvents(ctx, query, args...)
}

// FilterTransfers returns the transfers matching filter, all transfers if filter is nil.
func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		return db.queryTransfers(ctx, "SELECT "+transferColumns+" FROM transfer ORDER BY seq ASC")
	}
	metricsHandleCommon(filter.Options, filter.Order, len(filter.CriteriaSet), "transfer")

	var (
		args []any
		cond strings.Builder
	)
	cond.WriteString("1")
	args = appendRange(&cond, args, filter.Range)

	if filter.TxID != nil {
		cond.WriteString(" AND txID = ?")
		args = append(args, filter.TxID.Bytes())
	}
	if len(filter.CriteriaSet) > 0 {
		cond.WriteString(" AND (")
		for i, c := range filter.CriteriaSet {
			if i > 0 {
				cond.WriteString(" OR ")
			}
			cond.WriteString("(1")
			if c.TxOrigin != nil {
				cond.WriteString(" AND txOrigin = ?")
				args = append(args, c.TxOrigin.Bytes())
			}
			if c.Sender != nil {
				cond.WriteString(" AND sender = ?")
				args = append(args, c.Sender.Bytes())
			}
			if c.Recipient != nil {
				cond.WriteString(" AND recipient = ?")
				args = append(args, c.Recipient.Bytes())
			}
			cond.WriteString(")")
		}
		cond.WriteString(")")
	}

	query, args := buildQuery("transfer", transferColumns, cond.String(), args, filter.Order, filter.Options)
	return db.queryTransfers(ctx, query, args...)
}

func appendRange(cond *strings.Builder, args []any, r *Range) []any {
	if r == nil {
		return args
	}
	if r.Unit == Time {
		cond.WriteString(" AND blockTime >= ? AND blockTime <= ?")
		return append(args, int64(min(r.From, math.MaxInt64)), int64(min(r.To, math.MaxInt64)))
	}
	from := min(r.From, math.MaxUint32)
	to := min(r.To, math.MaxUint32)
	cond.WriteString(" AND seq >= ? AND seq <= ?")
	return append(args, newSequence(uint32(from), 0), newSequence(uint32(to), math.MaxInt32))
}

func buildQuery(table, columns, cond string, args []any, order Order, opts *Options) (string, []any) {
	query := "SELECT " + columns + " FROM " + table + " WHERE " + cond
	if order == DESC {
		query += " ORDER BY seq DESC"
	} else {
		query += " ORDER BY seq ASC"
	}
	if opts != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, int64(min(opts.Limit, math.MaxInt64)), int64(min(opts.Offset, math.MaxInt64)))
	}
	return query, args
}

func (db *LogDB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			seq         sequence
			blockID     []byte
			blockTime   uint64
			txID        []byte
			txIndex     uint32
			clauseIndex uint32
			txOrigin    []byte
			address     []byte
			topics      [5][]byte
			data        []byte
		)
		if err := rows.Scan(
			&seq,
			&blockID,
			&blockTime,
			&txID,
			&txIndex,
			&clauseIndex,
			&txOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber: seq.BlockNumber(),
			Index:       seq.Index(),
			BlockID:     gig.BytesToBytes32(blockID),
			BlockTime:   blockTime,
			TxID:        gig.BytesToBytes32(txID),
			TxIndex:     txIndex,
			ClauseIndex: clauseIndex,
			TxOrigin:    gig.BytesToAddress(txOrigin),
			Address:     gig.BytesToAddress(address),
			Data:        data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := gig.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, query string, args ...any) ([]*Transfer, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			seq         sequence
			blockID     []byte
			blockTime   uint64
			txID        []byte
			txIndex     uint32
			clauseIndex uint32
			txOrigin    []byte
			sender      []byte
			recipient   []byte
			amount      []byte
		)
		if err := rows.Scan(
			&seq,
			&blockID,
			&blockTime,
			&txID,
			&txIndex,
			&clauseIndex,
			&txOrigin,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			BlockNumber: seq.BlockNumber(),
			Index:       seq.Index(),
			BlockID:     gig.BytesToBytes32(blockID),
			BlockTime:   blockTime,
			TxID:        gig.BytesToBytes32(txID),
			TxIndex:     txIndex,
			ClauseIndex: clauseIndex,
			TxOrigin:    gig.BytesToAddress(txOrigin),
			Sender:      gig.BytesToAddress(sender),
			Recipient:   gig.BytesToAddress(recipient),
			Amount:      new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// NewestBlockID returns the id of the newest block having logs, zero if the db is empty.
func (db *LogDB) NewestBlockID() (gig.Bytes32, error) {
	var (
		newest   sequence = -1
		newestID []byte
	)
	for _, table := range []string{"event", "transfer"} {
		var (
			seq sequence
			id  []byte
		)
		err := db.db.QueryRow("SELECT seq, blockID FROM " + table + " ORDER BY seq DESC LIMIT 1").Scan(&seq, &id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return gig.Bytes32{}, err
		}
		if seq > newest {
			newest, newestID = seq, id
		}
	}
	return gig.BytesToBytes32(newestID), nil
}

// HasBlockID checks if any log of the block with id was written.
func (db *LogDB) HasBlockID(id gig.Bytes32) (bool, error) {
	from, to := blockSeqRange(id)
	for _, table := range []string{"event", "transfer"} {
		var count int
		if err := db.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE seq >= ? AND seq <= ? AND blockID = ?",
			from, to, id.Bytes()).Scan(&count); err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func blockSeqRange(id gig.Bytes32) (sequence, sequence) {
	num := block.Number(id)
	return newSequence(num, 0), newSequence(num, math.MaxInt32)
}

// NewWriter creates a log writer.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db}
}
