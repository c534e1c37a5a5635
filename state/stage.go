// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"io"
	"slices"
	"strings"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/kv"
)

type change struct {
	key   []byte
	value []byte // nil deletes
}

// Stage abstracts the changes of a state, sorted by key.
type Stage struct {
	stater  *Stater
	changes []change
}

func newStage(stater *Stater, latest map[string][]byte) *Stage {
	keys := make([]string, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)

	changes := make([]change, 0, len(keys))
	for _, k := range keys {
		changes = append(changes, change{[]byte(k), latest[k]})
	}
	return &Stage{stater: stater, changes: changes}
}

// Len returns the count of changed keys.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest of the changes.
func (s *Stage) Hash() gig.Bytes32 {
	return gig.Blake2bFn(func(w io.Writer) {
		var lenBuf [4]byte
		writeBytes := func(b []byte) {
			n := len(b)
			lenBuf[0], lenBuf[1], lenBuf[2], lenBuf[3] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
			w.Write(lenBuf[:])
			w.Write(b)
		}
		for _, c := range s.changes {
			writeBytes(c.key)
			writeBytes(c.value)
		}
	})
}

// Commit puts the changes into bulk and writes it, along with anything the caller already put there.
func (s *Stage) Commit(bulk kv.Bulk) error {
	if err := s.stater.apply(s.changes, bulk); err != nil {
		return &Error{err}
	}
	return nil
}
