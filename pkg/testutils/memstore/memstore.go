// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package memstore provides a sorted in-memory row store keyed by encoded
// row keys. Range-restricted scans over it can be compared with full scans
// to check that a derived span keeps every matching row.
package memstore

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/span"
)

// The degree of the row btree.
const storeBtreeDegree = 8

type entry struct {
	key keys.Key
	row tree.Datums
}

// Less implements the btree.Item interface.
func (a *entry) Less(b btree.Item) bool {
	return a.key.Less(b.(*entry).key)
}

// Store is an ordered map from row keys to rows. It is safe for concurrent
// use.
type Store struct {
	mu sync.RWMutex
	t  *btree.BTree
}

// New returns an empty store.
func New() *Store {
	return &Store{t: btree.New(storeBtreeDegree)}
}

// Load returns a store holding rows of table, keyed by their primary key
// encodings. Rows sharing a primary key are rejected.
func Load(table *catalog.Table, rows []tree.Datums) (*Store, error) {
	s := New()
	for i, row := range rows {
		key, err := table.EncodeRowKey(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		if s.Put(key, row) {
			return nil, errors.Newf("row %d %s duplicates primary key %s", i+1, row, key)
		}
	}
	return s, nil
}

// Put stores row under key and reports whether it replaced a row.
func (s *Store) Put(key keys.Key, row tree.Datums) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.ReplaceOrInsert(&entry{key: key.Clone(), row: row}) != nil
}

// Len returns the number of rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.Len()
}

// All calls fn for every row in key order until fn returns false.
func (s *Store) All(fn func(key keys.Key, row tree.Datums) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.t.Ascend(func(i btree.Item) bool {
		e := i.(*entry)
		return fn(e.key, e.row)
	})
}

// Scan calls fn in key order for every row whose key lies in sp, until fn
// returns false.
func (s *Store) Scan(sp span.Span, fn func(key keys.Key, row tree.Datums) bool) {
	if sp.IsEmpty() {
		return
	}
	visit := func(i btree.Item) bool {
		e := i.(*entry)
		if pastEnd(e.key, sp.End) {
			return false
		}
		if !sp.ContainsKey(e.key) {
			// An exclusive start key.
			return true
		}
		return fn(e.key, e.row)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sp.Start.IsUnbounded() {
		s.t.Ascend(visit)
		return
	}
	s.t.AscendGreaterOrEqual(&entry{key: sp.Start.Key()}, visit)
}

func pastEnd(key keys.Key, end span.Boundary) bool {
	if end.IsUnbounded() {
		return false
	}
	cmp := key.Compare(end.Key())
	return cmp > 0 || (cmp == 0 && !end.IsInclusive())
}
