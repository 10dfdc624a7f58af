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

import "github.com/ramfuse/ramfs/internal/nodegraph"

// attrType maps a nodegraph.AttrType to the index Type it sorts as.
func attrType(t nodegraph.AttrType) Type {
	switch t {
	case nodegraph.AttrInt32:
		return TypeInt32
	case nodegraph.AttrInt64:
		return TypeInt64
	case nodegraph.AttrUint32:
		return TypeUint32
	case nodegraph.AttrUint64:
		return TypeUint64
	case nodegraph.AttrFloat:
		return TypeFloat
	case nodegraph.AttrDouble:
		return TypeDouble
	default:
		return TypeString
	}
}

// AttributeIndex orders every node carrying a given named attribute by
// that attribute's value. Unlike NameIndex/SizeIndex/LastModifiedIndex it
// is not wired to any event bus: AttributeIndex.h is a plain Index
// subclass with pure virtual Added/Removed/Changed, called directly by
// whatever code path sets, removes, or rewrites an attribute, since
// arbitrary attribute churn is far too frequent (and far too rarely
// indexed) to justify a standing subscription the way name/size/mtime
// always are.
type AttributeIndex struct {
	*base
	attrName string
	attrType nodegraph.AttrType
}

// NewAttributeIndex creates a user-requested index over attrName, whose
// values are of the given type. Grounded on IndexDirectory::CreateIndex,
// which validates the requested type against any data already on disk
// before accepting it; here the volume layer is responsible for rejecting
// a type mismatch against an attribute already carrying a different type.
func NewAttributeIndex(attrName string, t nodegraph.AttrType) *AttributeIndex {
	return &AttributeIndex{
		base:     newBase(attrName, attrType(t), fixedKeyLength(t)),
		attrName: attrName,
		attrType: t,
	}
}

func fixedKeyLength(t nodegraph.AttrType) int {
	switch t {
	case nodegraph.AttrString:
		return 0
	default:
		return 8
	}
}

func readAttrBytes(a *nodegraph.Attribute) []byte {
	if a.Container == nil {
		return nil
	}
	buf := make([]byte, a.Container.Size())
	a.Container.ReadAt(0, buf)
	return buf
}

func (idx *AttributeIndex) keyFor(a *nodegraph.Attribute) []byte {
	return encodeAttrValue(idx.attrType, readAttrBytes(a))
}

// Added indexes a newly attached attribute. A no-op if a belongs to a
// different attribute name than this index covers.
func (idx *AttributeIndex) Added(owner *nodegraph.Node, a *nodegraph.Attribute) {
	if a.Name != idx.attrName {
		return
	}
	idx.insert(Record{Key: idx.keyFor(a), Node: owner.ID})
	a.SetIndexRef(idx)
}

// Removed drops an attribute from the index, e.g. because it was deleted.
func (idx *AttributeIndex) Removed(owner *nodegraph.Node, a *nodegraph.Attribute) {
	if a.IndexRef() != idx {
		return
	}
	idx.remove(Record{Key: idx.keyFor(a), Node: owner.ID})
	a.SetIndexRef(nil)
}

// Changed re-keys an attribute whose value just changed from oldBytes.
func (idx *AttributeIndex) Changed(owner *nodegraph.Node, a *nodegraph.Attribute, oldBytes []byte) {
	if a.IndexRef() != idx {
		return
	}
	idx.update(
		Record{Key: encodeAttrValue(idx.attrType, oldBytes), Node: owner.ID},
		Record{Key: idx.keyFor(a), Node: owner.ID},
	)
}

// Find returns every node whose attrName attribute holds exactly key.
func (idx *AttributeIndex) Find(key []byte) *Iterator {
	return newIterator(idx.base, idx.collectByExactKey(encodeAttrValue(idx.attrType, key)))
}

// FindRange returns every node whose attribute value falls within
// [lo, hi] per the inclusivity flags, both given as the attribute's own
// raw encoding (e.g. big-endian int64 bytes), not the index's internal
// order-preserving encoding.
func (idx *AttributeIndex) FindRange(lo, hi []byte, loInclusive, hiInclusive bool) *Iterator {
	var loKey, hiKey []byte
	if lo != nil {
		loKey = encodeAttrValue(idx.attrType, lo)
	}
	if hi != nil {
		hiKey = encodeAttrValue(idx.attrType, hi)
	}
	return newIterator(idx.base, idx.collectRange(loKey, hiKey, loInclusive, hiInclusive))
}

// GetIterator walks every indexed node in ascending value order.
func (idx *AttributeIndex) GetIterator() *Iterator {
	return newIterator(idx.base, idx.collectAll())
}
