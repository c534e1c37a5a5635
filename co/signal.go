// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides channel to wait for.
type Waiter interface {
	C() <-chan struct{}
}

// Signal lets goroutines wait for the next occurrence of an event, with channel selection.
// Every Broadcast closes the current channel, waking all waiters created before it.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
}

func (s *Signal) current() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes all goroutines that are waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	close(s.current())
	s.ch = make(chan struct{})
}

// NewWaiter create a Waiter object for acquiring channel to wait for.
// Each receive from C re-arms the waiter for the following broadcast.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()
	ref := s.current()
	s.l.Unlock()

	return waiterFunc(func() (ch <-chan struct{}) {
		ch = ref

		s.l.Lock()
		ref = s.current()
		s.l.Unlock()
		return
	})
}

type waiterFunc func() <-chan struct{}

func (w waiterFunc) C() <-chan struct{} {
	return w()
}
