// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

type memBulk struct {
	m   mem
	ops []func()
}

func (b *memBulk) Put(k, v []byte) error {
	k = append([]byte(nil), k...)
	b.ops = append(b.ops, func() { b.m.Put(k, v) })
	return nil
}

func (b *memBulk) Delete(k []byte) error {
	k = append([]byte(nil), k...)
	b.ops = append(b.ops, func() { b.m.Delete(k) })
	return nil
}

func (b *memBulk) Len() int { return len(b.ops) }

func (b *memBulk) Write() error {
	for _, op := range b.ops {
		op()
	}
	b.ops = nil
	return nil
}

func TestBucketGetter(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b       Bucket
		key     string
		want    string
		wantHas bool
	}{
		{Bucket(""), "k1", "v1", true},
		{Bucket(""), "k2", "v2", true},
		{Bucket("k"), "k1", "", false},
		{Bucket("k"), "1", "v1", true},
		{Bucket("k"), "2", "v2", true},
		{Bucket("k1"), "", "v1", true},
	}
	for _, tt := range tests {
		getter := tt.b.NewGetter(m)
		got, err := getter.Get([]byte(tt.key))
		if tt.wantHas {
			assert.NoError(t, err)
		} else {
			assert.True(t, getter.IsNotFound(err))
		}
		assert.Equal(t, tt.want, string(got))

		has, _ := getter.Has([]byte(tt.key))
		assert.Equal(t, tt.wantHas, has)
	}
}

func TestBucketPutter(t *testing.T) {
	m := mem{}
	putter := Bucket("job").NewPutter(m)

	assert.NoError(t, putter.Put([]byte("1"), []byte("a")))
	assert.Equal(t, mem{"job1": "a"}, m)

	assert.NoError(t, putter.Delete([]byte("1")))
	assert.Empty(t, m)
}

func TestBucketBulk(t *testing.T) {
	m := mem{}
	bulk := Bucket("b").NewBulk(&memBulk{m: m})

	bulk.Put([]byte("1"), []byte("x"))
	bulk.Put([]byte("2"), []byte("y"))
	assert.Equal(t, 2, bulk.Len())
	assert.Empty(t, m, "nothing applied before write")

	assert.NoError(t, bulk.Write())
	assert.Equal(t, mem{"b1": "x", "b2": "y"}, m)
}
