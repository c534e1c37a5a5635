// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(buf *buf, key []byte) []byte {
	buf.k = append(append(buf.k[:0], b...), key...)
	return buf.k
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Get(b.key(buf, key))
		},
		func(key []byte) (bool, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Has(b.key(buf, key))
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Put(b.key(buf, key), val)
		},
		func(key []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Delete(b.key(buf, key))
		},
	}
}

// NewBulk creates a bucket bulk from the source bulk.
func (b Bucket) NewBulk(src Bulk) Bulk {
	return &struct {
		Putter
		LenFunc
		WriteFunc
	}{
		b.NewPutter(src),
		src.Len,
		src.Write,
	}
}

// NewStore creates a bucket store from the source store.
// Closing a bucket store is a no-op, the source store owns the resources.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{
		Getter: b.NewGetter(src),
		Putter: b.NewPutter(src),
		bucket: b,
		src:    src,
	}
}

type bucketStore struct {
	Getter
	Putter
	bucket Bucket
	src    Store
}

func (s *bucketStore) Bulk() Bulk {
	return s.bucket.NewBulk(s.src.Bulk())
}

func (s *bucketStore) Iterate(r Range) Iterator {
	prefix := []byte(s.bucket)
	start := append(append([]byte(nil), prefix...), r.Start...)
	var limit []byte
	if len(r.Limit) == 0 {
		limit = util.BytesPrefix(prefix).Limit
	} else {
		limit = append(append([]byte(nil), prefix...), r.Limit...)
	}

	iter := s.src.Iterate(Range{Start: start, Limit: limit})
	return &struct {
		NextFunc
		KeyFunc
		ValueFunc
		ReleaseFunc
		ErrorFunc
	}{
		iter.Next,
		// strip the bucket
		func() []byte { return iter.Key()[len(prefix):] },
		iter.Value,
		iter.Release,
		iter.Error,
	}
}

func (s *bucketStore) Close() error { return nil }

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
