// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"bytes"

	"github.com/ramfuse/ramfs/internal/ordermap"
)

// base is the ordered (key, node) table every concrete index flavor
// (NameIndex, SizeIndex, LastModifiedIndex, AttributeIndex) wraps, backed
// by the same AVL tree internal/ordermap uses everywhere else. It holds no
// lock: callers run under the Volume's main lock, exactly like nodegraph.
type base struct {
	info Info
	tree *ordermap.Tree[Record]
}

func newBase(name string, t Type, fixedKeyLength int) *base {
	return &base{
		info: Info{Name: name, KeyType: t, FixedKeyLength: fixedKeyLength},
		tree: ordermap.New(compareRecords),
	}
}

func (b *base) Info() Info { return b.info }

// CountEntries mirrors Index::CountEntries.
func (b *base) CountEntries() int { return b.tree.Len() }

func (b *base) insert(r Record) { b.tree.Insert(r) }

func (b *base) remove(r Record) bool { return b.tree.Remove(r) }

func (b *base) update(oldRec, newRec Record) {
	b.tree.Remove(oldRec)
	b.tree.Insert(newRec)
}

// collectAll snapshots every record in ascending key order. Index
// iterators walk a snapshot rather than the live tree: internal/ordermap's
// FindFirst only locates a leftmost exact-primary-key match, it has no
// "first key greater than or equal to" primitive, so a truly live
// mutation-tolerant iterator isn't expressible without one. Building the
// snapshot once and doing a cheap Find-based liveness check per step (see
// Iterator.GetNext) gets suspend/resume-safe semantics without that
// primitive, at the cost of not seeing insertions made during the walk —
// acceptable for the query engine's read-mostly access pattern.
func (b *base) collectAll() []Record {
	var out []Record
	for it := b.tree.First(); it.Valid(); it = it.Next() {
		out = append(out, it.Value())
	}
	return out
}

// collectByExactKey snapshots every record whose key equals key exactly.
func (b *base) collectByExactKey(key []byte) []Record {
	var out []Record
	for it := b.tree.FindFirst(compareKeyPrefix(key)); it.Valid() && bytes.Equal(it.Value().Key, key); it = it.Next() {
		out = append(out, it.Value())
	}
	return out
}

// collectByKeyPrefix snapshots every record whose key starts with prefix.
func (b *base) collectByKeyPrefix(prefix []byte) []Record {
	var out []Record
	for it := b.tree.FindFirst(compareKeyHasPrefix(prefix)); it.Valid() && bytes.HasPrefix(it.Value().Key, prefix); it = it.Next() {
		out = append(out, it.Value())
	}
	return out
}

// collectRange snapshots every record whose key falls within [lo, hi]
// (either bound nil meaning unbounded, each inclusive/exclusive per the
// matching flag). Per the collectAll doc comment, range scans fall back to
// a full scan with a Go-side filter rather than a true bounded tree walk.
func (b *base) collectRange(lo, hi []byte, loInclusive, hiInclusive bool) []Record {
	all := b.collectAll()
	var out []Record
	for _, r := range all {
		if lo != nil {
			c := bytes.Compare(r.Key, lo)
			if c < 0 || (c == 0 && !loInclusive) {
				continue
			}
		}
		if hi != nil {
			c := bytes.Compare(r.Key, hi)
			if c > 0 || (c == 0 && !hiInclusive) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
