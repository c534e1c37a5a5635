// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks whether the sequencer is producing blocks.
package health

import (
	"sync"
	"time"

	"github.com/gigstream/gigstream/gig"
)

const delayBuffer = 5 * time.Second

type BlockIngestion struct {
	ID        *gig.Bytes32 `json:"id"`
	Number    uint32       `json:"number"`
	Timestamp *time.Time   `json:"timestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
	Sequencing     bool            `json:"sequencing"`
	LastError      string          `json:"lastError,omitempty"`
}

type Health struct {
	lock         sync.RWMutex
	newBestBlock time.Time
	bestBlockID  *gig.Bytes32
	bestNumber   uint32
	sequencing   bool
	lastErr      error
	maxBlockAge  time.Duration
}

// New creates a Health. A zero maxBlockAge disables the staleness check,
// as an on-demand sequencer may legitimately idle.
func New(maxBlockAge time.Duration) *Health {
	return &Health{maxBlockAge: maxBlockAge}
}

func (h *Health) NewBestBlock(id gig.Bytes32, number uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.newBestBlock = time.Now()
	h.bestBlockID = &id
	h.bestNumber = number
	h.lastErr = nil
}

// SequencerStatus records whether the block loop is running.
func (h *Health) SequencerStatus(running bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.sequencing = running
}

// BlockError records a failure to pack or commit a block. It is cleared by the next best block.
func (h *Health) BlockError(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastErr = err
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{
		BlockIngestion: &BlockIngestion{
			ID:     h.bestBlockID,
			Number: h.bestNumber,
		},
		Sequencing: h.sequencing,
	}
	if h.bestBlockID != nil {
		ts := h.newBestBlock
		status.BlockIngestion.Timestamp = &ts
	}
	if h.lastErr != nil {
		status.LastError = h.lastErr.Error()
	}

	fresh := h.maxBlockAge == 0 || time.Since(h.newBestBlock) <= h.maxBlockAge+delayBuffer
	status.Healthy = h.sequencing && h.lastErr == nil && h.bestBlockID != nil && fresh
	return status
}
