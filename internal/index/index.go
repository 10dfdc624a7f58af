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

// Package index is the live query engine's secondary-key lookup layer: an
// ordered (primary key, node) table per indexed attribute, kept in sync
// automatically by subscribing to the node/entry event buses instead of
// being updated by every call site that mutates a node.
//
// Grounded on Index.h/IndexImpl.h (the Index base class: name, type, fixed
// key length, CountEntries, iterator/find accessors) and IndexDirectory.h
// (the three always-present special indices plus user-created attribute
// indices, looked up by name or by attribute name).
package index

import "github.com/ramfuse/ramfs/internal/nodegraph"

// Type is the key type an Index compares by, mirroring Index.h's
// TYPE_INT32/TYPE_INT64/.../TYPE_STRING constants used by the original's
// GET_ATTR_INFO-style introspection ioctls.
type Type int

const (
	TypeString Type = iota
	TypeInt32
	TypeInt64
	TypeUint32
	TypeUint64
	TypeFloat
	TypeDouble
)

// Record is one entry in an index: the encoded key bytes this record sorts
// by, and the node it names.
type Record struct {
	Key  []byte
	Node nodegraph.NodeID
}

// Info describes an index's identity, mirroring the fields Index::Name,
// Index::Type, and Index::KeyLength expose through IndexDirectory.
type Info struct {
	Name           string
	KeyType        Type
	FixedKeyLength int // 0 means variable-length (string) keys
}
