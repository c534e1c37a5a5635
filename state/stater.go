// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"slices"
	"sync"

	"github.com/qianbin/directcache"

	"github.com/gigstream/gigstream/kv"
)

const bucket = kv.Bucket("st.")

var (
	cacheHit  = map[string]string{"event": "hit"}
	cacheMiss = map[string]string{"event": "miss"}
)

// Stater is the state creator.
// States created by the same stater share a read cache which is kept coherent by Stage.Commit.
type Stater struct {
	getter kv.Getter
	cache  *directcache.Cache
	lock   sync.RWMutex
}

// NewStater create a new stater over store, with a read cache of cacheMB megabytes.
func NewStater(store kv.Getter, cacheMB int) *Stater {
	return &Stater{
		getter: bucket.NewGetter(store),
		cache:  directcache.New(max(cacheMB, 1) * 1024 * 1024),
	}
}

// NewState create a new state object on top of the latest committed changes.
func (s *Stater) NewState() *State {
	return newState(s)
}

// read loads the value of key. A nil value with nil error means absent.
func (s *Stater) read(key []byte) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var (
		val   []byte
		found bool
	)
	if s.cache.AdvGet(key, func(v []byte) {
		if len(v) > 0 && v[0] == 1 {
			val, found = slices.Clone(v[1:]), true
		}
	}, false) {
		metricCacheCounter().AddWithLabel(1, cacheHit)
		if !found {
			return nil, nil
		}
		return val, nil
	}
	metricCacheCounter().AddWithLabel(1, cacheMiss)

	data, err := s.getter.Get(key)
	if err != nil {
		if s.getter.IsNotFound(err) {
			s.cache.Set(key, []byte{0})
			return nil, nil
		}
		return nil, err
	}
	s.cache.Set(key, append([]byte{1}, data...))
	return data, nil
}

// apply writes changes through bulk and refreshes the cache, blocking readers meanwhile.
func (s *Stater) apply(changes []change, bulk kv.Bulk) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	putter := bucket.NewPutter(bulk)
	for _, c := range changes {
		var err error
		if c.value == nil {
			err = putter.Delete(c.key)
		} else {
			err = putter.Put(c.key, c.value)
		}
		if err != nil {
			return err
		}
	}
	if err := bulk.Write(); err != nil {
		return err
	}

	for _, c := range changes {
		if c.value == nil {
			s.cache.Set(c.key, []byte{0})
		} else {
			s.cache.Set(c.key, append([]byte{1}, c.value...))
		}
	}
	metricCommittedKeys().Add(int64(len(changes)))
	return nil
}
