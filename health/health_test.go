// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/gig"
)

func TestHealth_NewBestBlock(t *testing.T) {
	h := New(10 * time.Second)
	blockID := gig.Bytes32{0x01, 0x02, 0x03}

	h.NewBestBlock(blockID, 7)
	h.SequencerStatus(true)

	status := h.Status()
	assert.True(t, status.Healthy)
	require.NotNil(t, status.BlockIngestion.ID)
	assert.Equal(t, blockID, *status.BlockIngestion.ID)
	assert.Equal(t, uint32(7), status.BlockIngestion.Number)
	require.NotNil(t, status.BlockIngestion.Timestamp)
	assert.WithinDuration(t, time.Now(), *status.BlockIngestion.Timestamp, time.Second)
}

func TestHealth_NotSequencing(t *testing.T) {
	h := New(0)
	h.NewBestBlock(gig.Bytes32{1}, 1)

	assert.False(t, h.Status().Healthy)
	h.SequencerStatus(true)
	assert.True(t, h.Status().Healthy)
	h.SequencerStatus(false)
	assert.False(t, h.Status().Healthy)
}

func TestHealth_NoBlock(t *testing.T) {
	h := New(0)
	h.SequencerStatus(true)

	status := h.Status()
	assert.False(t, status.Healthy)
	assert.Nil(t, status.BlockIngestion.ID)
	assert.Nil(t, status.BlockIngestion.Timestamp)
}

func TestHealth_BlockError(t *testing.T) {
	h := New(0)
	h.SequencerStatus(true)
	h.NewBestBlock(gig.Bytes32{1}, 1)

	h.BlockError(errors.New("disk full"))
	status := h.Status()
	assert.False(t, status.Healthy)
	assert.Equal(t, "disk full", status.LastError)

	h.NewBestBlock(gig.Bytes32{2}, 2)
	status = h.Status()
	assert.True(t, status.Healthy)
	assert.Empty(t, status.LastError)
}

func TestHealth_Stale(t *testing.T) {
	h := New(time.Millisecond)
	h.SequencerStatus(true)
	h.NewBestBlock(gig.Bytes32{1}, 1)
	h.newBestBlock = time.Now().Add(-time.Minute)

	assert.False(t, h.Status().Healthy)
}
