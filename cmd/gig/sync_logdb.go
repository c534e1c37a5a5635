// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/gigstream/gigstream/block"
	"github.com/gigstream/gigstream/chain"
	"github.com/gigstream/gigstream/logdb"
	"github.com/gigstream/gigstream/tx"
)

// syncLogDB writes the logs of blocks the log db lags behind.
// With rebuild set, all logs are dropped and written again.
func syncLogDB(ctx context.Context, repo *chain.Repository, logDB *logdb.LogDB, rebuild bool, out io.Writer) error {
	var startPos uint32
	if !rebuild {
		var err error
		if startPos, err = seekLogDBSyncPosition(repo, logDB); err != nil {
			return errors.Wrap(err, "seek log db sync position")
		}
	}

	bestNum := repo.BestBlock().Header().Number()
	if startPos > bestNum {
		return nil
	}

	if startPos == 0 {
		fmt.Fprintln(out, ">> Rebuilding log db <<")
		startPos = 1 // block 0 can be skipped
	} else {
		fmt.Fprintln(out, ">> Syncing log db <<")
	}

	w := logDB.NewWriter()
	if err := w.Truncate(startPos); err != nil {
		return err
	}
	if bestNum < startPos {
		return w.Commit()
	}

	bar := pb.New64(int64(bestNum)).
		Set64(int64(startPos - 1)).
		SetMaxWidth(90)
	bar.Output = out
	bar.Start()
	defer func() { bar.NotPrint = true }()

	for num := startPos; num <= bestNum; num++ {
		b, err := repo.GetBlock(num)
		if err != nil {
			return err
		}
		receipts, err := repo.GetBlockReceipts(num)
		if err != nil {
			return err
		}
		if err := w.Write(b, receipts); err != nil {
			return err
		}
		if w.UncommittedCount() > 2048 {
			if err := w.Commit(); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			if err := w.Commit(); err != nil {
				return err
			}
			return ctx.Err()
		default:
		}
		bar.Add64(1)
	}
	if err := w.Commit(); err != nil {
		return err
	}
	bar.Finish()
	return nil
}

// seekLogDBSyncPosition returns the number of the first block whose logs may be missing.
// Blocks without logs leave no trace in the log db, so the result may point at such blocks,
// which is harmless since writing them is a no-op.
func seekLogDBSyncPosition(repo *chain.Repository, logDB *logdb.LogDB) (uint32, error) {
	best := repo.BestBlock().Header()
	if best.Number() == 0 {
		return 1, nil
	}

	newestID, err := logDB.NewestBlockID()
	if err != nil {
		return 0, err
	}
	if block.Number(newestID) == 0 {
		return 0, nil
	}

	seekStart := min(block.Number(newestID), best.Number())
	for num := seekStart; num > 0; num-- {
		b, err := repo.GetBlock(num)
		if err != nil {
			return 0, err
		}
		has, err := logDB.HasBlockID(b.Header().ID())
		if err != nil {
			return 0, err
		}
		if has {
			return num + 1, nil
		}
	}
	return 0, nil
}

// verifyLogDB compares the logs of blocks [1, endBlockNum] with the ones derived from receipts.
func verifyLogDB(ctx context.Context, endBlockNum uint32, repo *chain.Repository, logDB *logdb.LogDB, out io.Writer) error {
	fmt.Fprintln(out, ">> Verifying log db <<")
	bar := pb.New64(int64(endBlockNum)).
		Set64(0).
		SetMaxWidth(90)
	bar.Output = out
	bar.Start()
	defer func() { bar.NotPrint = true }()

	const logStep = uint32(100)

	for from := uint32(1); from <= endBlockNum; from += logStep {
		to := min(from+logStep-1, endBlockNum)
		rng := &logdb.Range{Unit: logdb.Block, From: uint64(from), To: uint64(to)}

		evLogs, err := logDB.FilterEvents(ctx, &logdb.EventFilter{Range: rng})
		if err != nil {
			return err
		}
		trLogs, err := logDB.FilterTransfers(ctx, &logdb.TransferFilter{Range: rng})
		if err != nil {
			return err
		}

		var expectedEvLogs []*logdb.Event
		var expectedTrLogs []*logdb.Transfer
		for num := from; num <= to; num++ {
			b, err := repo.GetBlock(num)
			if err != nil {
				return err
			}
			receipts, err := repo.GetBlockReceipts(num)
			if err != nil {
				return err
			}
			evs, trs := expectedLogs(b, receipts)
			expectedEvLogs = append(expectedEvLogs, evs...)
			expectedTrLogs = append(expectedTrLogs, trs...)
			bar.Add64(1)
		}

		for _, ev := range evLogs {
			if len(ev.Data) == 0 {
				ev.Data = nil
			}
		}
		if diff := jsonDiff(expectedEvLogs, evLogs); diff != "" {
			fmt.Fprintln(out, "\nDiff event logs")
			fmt.Fprintln(out, diff)
			return errors.Errorf("incorrect event logs in blocks [%v, %v]", from, to)
		}
		if diff := jsonDiff(expectedTrLogs, trLogs); diff != "" {
			fmt.Fprintln(out, "\nDiff transfer logs")
			fmt.Fprintln(out, diff)
			return errors.Errorf("incorrect transfer logs in blocks [%v, %v]", from, to)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	bar.Finish()
	return nil
}

// expectedLogs derives the logs the writer stores for b.
func expectedLogs(b *block.Block, receipts tx.Receipts) (events []*logdb.Event, transfers []*logdb.Transfer) {
	var (
		header = b.Header()
		txs    = b.Transactions()
	)
	for txIndex, r := range receipts {
		if r.Reverted {
			continue
		}
		trx := txs[txIndex]
		origin, _ := trx.Origin()

		for clauseIndex, output := range r.Outputs {
			for _, ev := range output.Events {
				var data []byte
				if len(ev.Data) > 0 {
					data = ev.Data
				}
				event := &logdb.Event{
					BlockNumber: header.Number(),
					Index:       uint32(len(events)),
					BlockID:     header.ID(),
					BlockTime:   header.Timestamp(),
					TxID:        trx.ID(),
					TxIndex:     uint32(txIndex),
					ClauseIndex: uint32(clauseIndex),
					TxOrigin:    origin,
					Address:     ev.Address,
					Data:        data,
				}
				for i, topic := range ev.Topics {
					if i < len(event.Topics) {
						event.Topics[i] = &topic
					}
				}
				events = append(events, event)
			}
			for _, tr := range output.Transfers {
				transfers = append(transfers, &logdb.Transfer{
					BlockNumber: header.Number(),
					Index:       uint32(len(transfers)),
					BlockID:     header.ID(),
					BlockTime:   header.Timestamp(),
					TxID:        trx.ID(),
					TxIndex:     uint32(txIndex),
					ClauseIndex: uint32(clauseIndex),
					TxOrigin:    origin,
					Sender:      tr.Sender,
					Recipient:   tr.Recipient,
					Amount:      tr.Amount,
				})
			}
		}
	}
	return
}

// jsonDiff returns the unified diff of the json forms, or empty if they are equal.
func jsonDiff(expected, actual any) string {
	e, _ := json.MarshalIndent(expected, "", "  ")
	a, _ := json.MarshalIndent(actual, "", "  ")
	if string(e) == string(a) {
		return ""
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(e)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	return diff
}
