// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigstream/gigstream/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	src := map[string]string{"foo": "bar"}
	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true, nil)},
		{func() {}, 2, "foo", "baz1", "foo", M("baz1", true, nil)},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", M("qux", true, nil)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("baz1", true, nil)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(1) }, 1, "", "", "missing", M("", false, nil)},
	}

	for _, tt := range tests {
		tt.f()
		assert.Equal(t, tt.depth, sm.Depth())
		if tt.putKey != "" {
			sm.Put(tt.putKey, tt.putValue)
		}
		if tt.getKey != "" {
			assert.Equal(t, tt.getReturn, M(sm.Get(tt.getKey)))
		}
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(string) (int, bool, error) { return 0, false, nil })

	sm.Put("a", 1)
	cp := sm.Push()
	sm.Put("a", 2)
	sm.Put("b", 3)

	collect := func() (entries []stackedmap.JournalEntry[string, int]) {
		sm.Journal(func(k string, v int) bool {
			entries = append(entries, stackedmap.JournalEntry[string, int]{Key: k, Value: v})
			return true
		})
		return
	}
	assert.Equal(t, []stackedmap.JournalEntry[string, int]{{"a", 1}, {"a", 2}, {"b", 3}}, collect())

	sm.PopTo(cp)
	assert.Equal(t, []stackedmap.JournalEntry[string, int]{{"a", 1}}, collect())
	assert.Equal(t, M(1, true, nil), M(sm.Get("a")))
	assert.Equal(t, M(0, false, nil), M(sm.Get("b")))
}

func TestStackedMapSourceError(t *testing.T) {
	boom := errors.New("boom")
	sm := stackedmap.New(func(string) (int, bool, error) { return 0, false, boom })

	_, _, err := sm.Get("x")
	assert.Equal(t, boom, err)

	sm.Put("x", 7)
	assert.Equal(t, M(7, true, nil), M(sm.Get("x")))
}
