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

package volume

import (
	"encoding/binary"
	"math"

	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/ramfuse/ramfs/internal/query"
)

// nodeResolver adapts a *nodegraph.Node to query.AttrResolver, resolving
// the three synthetic pseudo-attributes ("name", "size", "last_modified")
// the same way Query.cpp treats stat fields as attributes, falling back to
// the node's real, user-set attributes for everything else.
type nodeResolver struct {
	node *nodegraph.Node
}

func (r nodeResolver) Attr(name string) (query.Value, bool) {
	switch name {
	case "name":
		if len(r.node.Referrers) == 0 {
			return query.Value{}, false
		}
		return query.Value{Type: query.ValString, Str: r.node.Referrers[0].Name}, true
	case "size":
		return query.Value{Type: query.ValUint64, Uint: r.node.Size()}, true
	case "last_modified":
		return query.Value{Type: query.ValInt64, Int: r.node.MTime}, true
	}

	attr := r.node.FindAttribute(name)
	if attr == nil {
		return query.Value{}, false
	}
	return decodeAttrValue(attr), true
}

func decodeAttrValue(a *nodegraph.Attribute) query.Value {
	raw := attrBytes(a)
	switch a.Type {
	case nodegraph.AttrInt32:
		if len(raw) < 4 {
			return query.Value{Type: query.ValInt64}
		}
		return query.Value{Type: query.ValInt64, Int: int64(int32(binary.BigEndian.Uint32(raw)))}
	case nodegraph.AttrInt64:
		if len(raw) < 8 {
			return query.Value{Type: query.ValInt64}
		}
		return query.Value{Type: query.ValInt64, Int: int64(binary.BigEndian.Uint64(raw))}
	case nodegraph.AttrUint32:
		if len(raw) < 4 {
			return query.Value{Type: query.ValUint64}
		}
		return query.Value{Type: query.ValUint64, Uint: uint64(binary.BigEndian.Uint32(raw))}
	case nodegraph.AttrUint64:
		if len(raw) < 8 {
			return query.Value{Type: query.ValUint64}
		}
		return query.Value{Type: query.ValUint64, Uint: binary.BigEndian.Uint64(raw)}
	case nodegraph.AttrFloat:
		if len(raw) < 4 {
			return query.Value{Type: query.ValDouble}
		}
		return query.Value{Type: query.ValDouble, Dbl: float64(math.Float32frombits(binary.BigEndian.Uint32(raw)))}
	case nodegraph.AttrDouble:
		if len(raw) < 8 {
			return query.Value{Type: query.ValDouble}
		}
		return query.Value{Type: query.ValDouble, Dbl: math.Float64frombits(binary.BigEndian.Uint64(raw))}
	default:
		return query.Value{Type: query.ValString, Str: string(raw)}
	}
}
