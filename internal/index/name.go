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

// EntryBus is the event bus a Volume dispatches entry add/remove
// notifications on, grounded on EntryListener.h.
type EntryBus = listenerbus.Bus[*nodegraph.Entry]

// NodeBus is the event bus a Volume dispatches node add/remove
// notifications on, grounded on NodeListener.h.
type NodeBus = listenerbus.Bus[*nodegraph.Node]

// NameIndex keeps every entry's (name, parent) pair ordered by name,
// letting queries like name=="foo" resolve without a full directory
// tree walk. Grounded on NameIndex.h/.cpp, which is itself an
// EntryListener subscribed to every entry add/remove in the volume; that
// subscription is reproduced here via EntryBus.SubscribeAny instead of
// hand-writing a second listener interface.
type NameIndex struct {
	*base
}

// NewNameIndex creates the index and subscribes it to bus for the entry
// lifetime of the volume. There is exactly one NameIndex per volume,
// always present — it is one of IndexDirectory's three special indices.
func NewNameIndex(bus *EntryBus) *NameIndex {
	idx := &NameIndex{base: newBase("name", TypeString, 0)}
	bus.SubscribeAny(listenerbus.All, idx.onEvent)
	return idx
}

func (idx *NameIndex) onEvent(event listenerbus.Event, e *nodegraph.Entry) {
	switch event {
	case listenerbus.Added:
		idx.insert(Record{Key: encodeNameKey(e.Name, e.Parent.ID), Node: e.Target.ID})
	case listenerbus.Removed:
		idx.remove(Record{Key: encodeNameKey(e.Name, e.Parent.ID), Node: e.Target.ID})
	}
}

// Find returns every entry currently named name, across the whole volume.
func (idx *NameIndex) Find(name string) *Iterator {
	return newIterator(idx.base, idx.collectByKeyPrefix(encodeNamePrefix(name)))
}

// GetIterator walks every entry name in the volume in ascending order.
func (idx *NameIndex) GetIterator() *Iterator {
	return newIterator(idx.base, idx.collectAll())
}
