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
	"github.com/ramfuse/ramfs/internal/listenerbus"
	"github.com/ramfuse/ramfs/internal/nodegraph"
)

// scalarIndex is the shared shape of SizeIndex and LastModifiedIndex:
// subscribed to NodeBus for Added/Removed so every node is always present
// under its current value, plus an explicit Changed hook the Volume calls
// whenever that value mutates in place — mirroring SizeIndex.h/
// LastModifiedIndex.h, both ": Index, private NodeListener" with their own
// direct Changed(Node*, oldValue) method rather than a third bus event.
type scalarIndex struct {
	*base
	valueOf func(*nodegraph.Node) uint64
}

func newScalarIndex(name string, bus *NodeBus, valueOf func(*nodegraph.Node) uint64) *scalarIndex {
	idx := &scalarIndex{base: newBase(name, TypeUint64, 8), valueOf: valueOf}
	bus.SubscribeAny(listenerbus.All, idx.onEvent)
	return idx
}

func (idx *scalarIndex) onEvent(event listenerbus.Event, n *nodegraph.Node) {
	switch event {
	case listenerbus.Added:
		idx.insert(Record{Key: encodeUint64(idx.valueOf(n)), Node: n.ID})
	case listenerbus.Removed:
		idx.remove(Record{Key: encodeUint64(idx.valueOf(n)), Node: n.ID})
	}
}

// Changed re-keys n after its indexed value has changed from oldValue to
// its current value.
func (idx *scalarIndex) Changed(n *nodegraph.Node, oldValue uint64) {
	idx.update(
		Record{Key: encodeUint64(oldValue), Node: n.ID},
		Record{Key: encodeUint64(idx.valueOf(n)), Node: n.ID},
	)
}

// Find returns every node currently holding exactly value.
func (idx *scalarIndex) Find(value uint64) *Iterator {
	return newIterator(idx.base, idx.collectByExactKey(encodeUint64(value)))
}

// FindRange returns every node whose value falls within [lo, hi] per the
// inclusivity flags, for query predicates like size>1024.
func (idx *scalarIndex) FindRange(lo, hi *uint64, loInclusive, hiInclusive bool) *Iterator {
	var loKey, hiKey []byte
	if lo != nil {
		loKey = encodeUint64(*lo)
	}
	if hi != nil {
		hiKey = encodeUint64(*hi)
	}
	return newIterator(idx.base, idx.collectRange(loKey, hiKey, loInclusive, hiInclusive))
}

// GetIterator walks every node in ascending value order.
func (idx *scalarIndex) GetIterator() *Iterator {
	return newIterator(idx.base, idx.collectAll())
}

// ScalarIndex is the interface SizeIndex and LastModifiedIndex both
// satisfy, letting internal/query's planner seed a scan from either
// without a type switch.
type ScalarIndex interface {
	Find(value uint64) *Iterator
	FindRange(lo, hi *uint64, loInclusive, hiInclusive bool) *Iterator
	CountEntries() int
}

// SizeIndex orders nodes by their logical size, grounded on SizeIndex.h.
type SizeIndex struct{ *scalarIndex }

// NewSizeIndex creates the volume's always-present size index.
func NewSizeIndex(bus *NodeBus) *SizeIndex {
	return &SizeIndex{newScalarIndex("size", bus, func(n *nodegraph.Node) uint64 { return n.Size() })}
}

// LastModifiedIndex orders nodes by mtime, grounded on LastModifiedIndex.h.
type LastModifiedIndex struct{ *scalarIndex }

// NewLastModifiedIndex creates the volume's always-present last-modified
// index.
func NewLastModifiedIndex(bus *NodeBus) *LastModifiedIndex {
	return &LastModifiedIndex{newScalarIndex("last_modified", bus, func(n *nodegraph.Node) uint64 { return uint64(n.MTime) })}
}
