// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/test/datagen"
)

func TestEventFilterMatch(t *testing.T) {
	addr := datagen.RandAddress()
	t0 := datagen.RandomHash()
	t1 := datagen.RandomHash()
	ev := &EventMessage{Address: addr, Topics: []gig.Bytes32{t0, t1}}

	other := datagen.RandomHash()
	otherAddr := datagen.RandAddress()

	assert.True(t, (&EventFilter{}).Match(ev))
	assert.True(t, (&EventFilter{Address: &addr}).Match(ev))
	assert.True(t, (&EventFilter{Address: &addr, Topic0: &t0, Topic1: &t1}).Match(ev))
	assert.False(t, (&EventFilter{Address: &otherAddr}).Match(ev))
	assert.False(t, (&EventFilter{Topic1: &other}).Match(ev))
	assert.False(t, (&EventFilter{Topic2: &t0}).Match(ev), "missing topic")
}
