// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gigstream/gigstream/co"
)

func TestSignal_BroadcastBeforeWaiter(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}

	var n int
	for _, w := range ws {
		select {
		case <-w.C():
		default:
			n++
		}
	}
	assert.Equal(t, 10, n, "waiters only see later broadcasts")
}

func TestSignal_BroadcastAfterWaiter(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}

	sig.Broadcast()

	for _, w := range ws {
		<-w.C()
	}
}

func TestSignal_Rearm(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()

	sig.Broadcast()
	<-w.C()

	select {
	case <-w.C():
		t.Fatal("waiter should be re-armed")
	case <-time.After(10 * time.Millisecond):
	}

	sig.Broadcast()
	<-w.C()
}

func TestGoes(t *testing.T) {
	var (
		goes co.Goes
		n    = make(chan int, 3)
	)
	for i := range 3 {
		goes.Go(func() { n <- i })
	}
	<-goes.Done()
	goes.Wait()
	assert.Len(t, n, 3)
}
