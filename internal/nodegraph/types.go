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

// Package nodegraph is the in-memory object model of a volume: Nodes
// (Directory/File/SymLink variants), Entries naming them, and Attributes
// attached to them. It owns no locks of its own — every call is made while
// the caller (internal/volume) holds the volume's main lock.
//
// Nodes are modeled as a tagged sum with a shared header rather than as a
// deep interface hierarchy, following the Go idiom of fs/inode for grouping
// variant payloads behind one concrete struct.
package nodegraph

import (
	"github.com/ramfuse/ramfs/internal/datacontainer"
)

// NodeID is the monotonically increasing 63-bit identifier assigned to
// every node in a volume. Zero denotes "no parent" (root).
type NodeID uint64

// NodeType distinguishes the tagged variants of Node.
type NodeType int

const (
	TypeDirectory NodeType = iota
	TypeFile
	TypeSymLink
)

// StatField identifies which stat fields changed, for the modified_flags
// dirty bits and the stat_changed notification payload.
type StatField uint32

const (
	StatMode StatField = 1 << iota
	StatUID
	StatGID
	StatATime
	StatMTime
	StatCTime
	StatCrTime
	StatSize
)

// ReservedAttrNames are the three virtual attributes that double as
// reserved names: writing or creating a real attribute with one of these
// names is rejected.
var ReservedAttrNames = map[string]bool{
	"name":          true,
	"size":          true,
	"last_modified": true,
}

// Node is the shared header every variant embeds, mirroring Node.h's fields
// (fID, fMode, fUID, fGID, the four timestamps, fRefCount, fModified) plus
// its insertion-ordered attribute and referrer lists.
type Node struct {
	ID   NodeID
	Type NodeType

	Mode uint32
	UID  uint32
	GID  uint32

	ATime, MTime, CTime, CrTime int64

	RefCount      uint32
	ModifiedFlags StatField

	Attributes []*Attribute
	Referrers  []*Entry

	// removed is set once the last referrer is unlinked; the node then
	// waits only for RefCount to reach zero before the Volume actually
	// frees it.
	removed bool

	// Directory-only, File-only, SymLink-only payloads. Exactly one is
	// non-nil depending on Type.
	Dir  *DirectoryData
	File *FileData
	Link *SymLinkData
}

// DirectoryData is the Directory variant's payload: an insertion-ordered
// list of child Entries. A directory's size is always 0.
type DirectoryData struct {
	Children []*Entry
}

// FileData is the File variant's payload: a Data Container whose size is
// the node's reported size.
type FileData struct {
	Container *datacontainer.Container
}

// SymLinkData is the SymLink variant's payload: a short path string bounded
// by PATH_MAX. Size is the path's length.
type SymLinkData struct {
	Target string
}

// Entry is the tuple (parent, name, target) — the only way to name a node.
// It participates in two intrusive lists (parent's children, target's
// referrers) without owning either.
type Entry struct {
	Parent *Node // always a directory node
	Name   string
	Target *Node

	// attachedIterators holds every suspended EntryIterator currently
	// positioned on this entry, so removal can advance them to the
	// successor atomically.
	attachedIterators []*EntryIterator
}

// AttrType is the wire-compatible scalar/string type enumeration used for
// index comparisons.
type AttrType int

const (
	AttrString AttrType = iota
	AttrInt32
	AttrInt64
	AttrUint32
	AttrUint64
	AttrFloat
	AttrDouble
)

// Attribute is the tuple (owner, name, type, container). Its index
// membership is tracked weakly — see internal/index.
type Attribute struct {
	Owner     *Node
	Name      string
	Type      AttrType
	Container *datacontainer.Container

	// indexRef is the weak back-link to the attribute index this attribute
	// currently belongs to, if any. The edge from index to attribute is
	// weak by design so a live query never keeps a deleted attribute alive.
	indexRef interface{}
}

// SetIndexRef and IndexRef let internal/index track membership without
// nodegraph importing internal/index (which would create an import cycle).
func (a *Attribute) SetIndexRef(ref interface{}) { a.indexRef = ref }
func (a *Attribute) IndexRef() interface{}       { return a.indexRef }
