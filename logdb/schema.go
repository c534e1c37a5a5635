// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// seq is the sequence of the log in the whole chain, see sequence.go.
const (
	eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	blockID BLOB NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB NOT NULL,
	txIndex INTEGER NOT NULL,
	clauseIndex INTEGER NOT NULL,
	txOrigin BLOB NOT NULL,
	address BLOB NOT NULL,
	topic0 BLOB,
	topic1 BLOB,
	topic2 BLOB,
	topic3 BLOB,
	topic4 BLOB,
	data BLOB
);
CREATE INDEX IF NOT EXISTS event_i0 ON event(address, seq);
CREATE INDEX IF NOT EXISTS event_i1 ON event(topic0, seq);
CREATE INDEX IF NOT EXISTS event_i2 ON event(topic1, seq);
CREATE INDEX IF NOT EXISTS event_i3 ON event(topic2, seq);
CREATE INDEX IF NOT EXISTS event_i4 ON event(blockTime, seq);
`

	transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	seq INTEGER PRIMARY KEY NOT NULL,
	blockID BLOB NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB NOT NULL,
	txIndex INTEGER NOT NULL,
	clauseIndex INTEGER NOT NULL,
	txOrigin BLOB NOT NULL,
	sender BLOB NOT NULL,
	recipient BLOB NOT NULL,
	amount BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS transfer_i0 ON transfer(txOrigin, seq);
CREATE INDEX IF NOT EXISTS transfer_i1 ON transfer(sender, seq);
CREATE INDEX IF NOT EXISTS transfer_i2 ON transfer(recipient, seq);
CREATE INDEX IF NOT EXISTS transfer_i3 ON transfer(blockTime, seq);
`
)
