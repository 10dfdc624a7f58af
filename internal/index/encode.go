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
	"encoding/binary"
	"math"

	"github.com/ramfuse/ramfs/internal/nodegraph"
)

// encodeInt64/encodeUint64/encodeDouble produce order-preserving big-endian
// encodings: comparing the resulting byte strings with bytes.Compare
// reproduces the numeric ordering, the same property Index.h's fixed-length
// binary keys rely on.
func encodeUint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func encodeInt64(v int64) []byte {
	// Flipping the sign bit maps the signed range onto an unsigned range
	// with the same ordering, so plain byte comparison still sorts
	// correctly across zero.
	return encodeUint64(uint64(v) ^ (1 << 63))
}

func encodeDouble(v float64) []byte {
	bits := math.Float64bits(v)
	if v >= 0 {
		bits ^= 1 << 63
	} else {
		bits = ^bits
	}
	return encodeUint64(bits)
}

// encodeAttrValue renders a typed attribute value as an order-preserving
// byte key, matching the scalar/string type split AttributeIndex.cpp uses
// to compare keys of a fixed key type.
func encodeAttrValue(t nodegraph.AttrType, raw []byte) []byte {
	switch t {
	case nodegraph.AttrInt32:
		return encodeInt64(int64(int32(binary.BigEndian.Uint32(raw))))
	case nodegraph.AttrInt64:
		return encodeInt64(int64(binary.BigEndian.Uint64(raw)))
	case nodegraph.AttrUint32:
		return encodeUint64(uint64(binary.BigEndian.Uint32(raw)))
	case nodegraph.AttrUint64:
		return encodeUint64(binary.BigEndian.Uint64(raw))
	case nodegraph.AttrFloat:
		return encodeDouble(float64(math.Float32frombits(binary.BigEndian.Uint32(raw))))
	case nodegraph.AttrDouble:
		return encodeDouble(math.Float64frombits(binary.BigEndian.Uint64(raw)))
	default:
		return append([]byte(nil), raw...)
	}
}

// compareRecords orders by key first, then by node ID so multiple nodes
// sharing a key still sort deterministically, mirroring the original's use
// of the node pointer as a tiebreaker.
func compareRecords(a, b Record) int {
	if c := bytes.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	if a.Node < b.Node {
		return -1
	}
	if a.Node > b.Node {
		return 1
	}
	return 0
}

// compareKeyPrefix is a PartialComparator matching every record whose key
// equals key, ignoring the node tiebreaker, for FindFirst-style prefix
// lookups.
func compareKeyPrefix(key []byte) func(r Record) int {
	return func(r Record) int { return bytes.Compare(key, r.Key) }
}

// compareKeyHasPrefix is a PartialComparator matching every record whose
// key starts with prefix, used by the name index where the stored key is
// name+separator+parentID and lookups only supply the name.
func compareKeyHasPrefix(prefix []byte) func(r Record) int {
	return func(r Record) int {
		if len(r.Key) < len(prefix) {
			return bytes.Compare(prefix, r.Key)
		}
		return bytes.Compare(prefix, r.Key[:len(prefix)])
	}
}

// nameSeparator cannot appear in a POSIX path component, so appending it
// before the parent ID keeps every (name, parent) pair's key ordered
// strictly after any shorter name sharing the same prefix.
const nameSeparator = 0x00

func encodeNameKey(name string, parent nodegraph.NodeID) []byte {
	key := make([]byte, 0, len(name)+1+8)
	key = append(key, name...)
	key = append(key, nameSeparator)
	key = append(key, encodeUint64(uint64(parent))...)
	return key
}

func encodeNamePrefix(name string) []byte {
	key := make([]byte, 0, len(name)+1)
	key = append(key, name...)
	key = append(key, nameSeparator)
	return key
}
