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

package query

import (
	"encoding/binary"
	"math"

	"github.com/ramfuse/ramfs/internal/index"
	"github.com/ramfuse/ramfs/internal/nodegraph"
)

// Seed is the planner's verdict: either a pre-narrowed candidate set drawn
// from an index, or nothing, meaning the caller should fall back to
// scanning every live node. Grounded on the index-selection step
// Query::Create performs before Rewind, choosing one index to seed the
// walk from rather than always scanning the whole node table.
type Seed struct {
	FromIndex bool
	IndexName string
	Nodes     []nodegraph.NodeID
}

// Plan inspects expr's top-level AND-conjuncts in source order and seeds
// from the first comparison an available index can answer directly: name
// equality, a comparison on size or last_modified, or equality on an
// attribute with a user-created index. Conjuncts are not ranked against
// each other by index kind or selectivity. Only a single seed clause is used; every
// other clause (including the one that seeded the scan) is still run
// through Program.Eval as the residual filter, so picking the "wrong"
// conjunct to seed from never produces an incorrect result, only a less
// selective one.
func Plan(expr Expr, dir *index.Directory) Seed {
	for _, term := range flattenAnd(expr) {
		cmp, ok := term.(*Compare)
		if !ok {
			continue
		}
		if seed, ok := planCompare(cmp, dir); ok {
			return seed
		}
	}
	return Seed{}
}

func flattenAnd(e Expr) []Expr {
	and, ok := e.(*And)
	if !ok {
		return []Expr{e}
	}
	return append(flattenAnd(and.Left), flattenAnd(and.Right)...)
}

func planCompare(cmp *Compare, dir *index.Directory) (Seed, bool) {
	switch cmp.Attr {
	case "name":
		if cmp.Op == OpEq && cmp.Value.Type == ValString {
			return seedFromNameIndex(dir, cmp.Value.Str), true
		}
	case "size":
		return seedFromScalar(dir.Size(), "size", cmp)
	case "last_modified":
		return seedFromScalar(dir.LastModified(), "last_modified", cmp)
	default:
		if idx, ok := dir.FindAttributeIndex(cmp.Attr); ok {
			return seedFromAttribute(idx, cmp)
		}
	}
	return Seed{}, false
}

func seedFromNameIndex(dir *index.Directory, name string) Seed {
	it := dir.Name().Find(name)
	return Seed{FromIndex: true, IndexName: "name", Nodes: drain(it)}
}

func seedFromScalar(idx index.ScalarIndex, name string, cmp *Compare) (Seed, bool) {
	val, ok := asUint64(cmp.Value)
	if !ok {
		return Seed{}, false
	}
	var it *index.Iterator
	switch cmp.Op {
	case OpEq:
		it = idx.Find(val)
	case OpGt:
		it = idx.FindRange(&val, nil, false, false)
	case OpGe:
		it = idx.FindRange(&val, nil, true, false)
	case OpLt:
		it = idx.FindRange(nil, &val, false, false)
	case OpLe:
		it = idx.FindRange(nil, &val, false, true)
	default:
		return Seed{}, false
	}
	return Seed{FromIndex: true, IndexName: name, Nodes: drain(it)}, true
}

// seedFromAttribute only narrows on equality: a range comparison against
// an attribute index would need the comparison's numeric type to be
// reconciled with the index's declared AttrType ahead of encoding, which
// equality alone sidesteps by round-tripping through the same encoder the
// index itself uses.
func seedFromAttribute(idx *index.AttributeIndex, cmp *Compare) (Seed, bool) {
	if cmp.Op != OpEq {
		return Seed{}, false
	}
	raw, ok := encodeForAttribute(idx.Info().KeyType, cmp.Value)
	if !ok {
		return Seed{}, false
	}
	it := idx.Find(raw)
	return Seed{FromIndex: true, IndexName: idx.Info().Name, Nodes: drain(it)}, true
}

func encodeForAttribute(t index.Type, v Value) ([]byte, bool) {
	switch t {
	case index.TypeInt32:
		n, ok := asInt64(v)
		if !ok {
			return nil, false
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(int32(n)))
		return buf, true
	case index.TypeInt64:
		n, ok := asInt64(v)
		if !ok {
			return nil, false
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(n))
		return buf, true
	case index.TypeUint32:
		n, ok := asUint64(v)
		if !ok {
			return nil, false
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(n))
		return buf, true
	case index.TypeUint64:
		n, ok := asUint64(v)
		if !ok {
			return nil, false
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, n)
		return buf, true
	case index.TypeFloat:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(toFloat64(v))))
		return buf, true
	case index.TypeDouble:
		f := toFloat64(v)
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		return buf, true
	case index.TypeString:
		if v.Type != ValString {
			return nil, false
		}
		return []byte(v.Str), true
	default:
		return nil, false
	}
}

func asUint64(v Value) (uint64, bool) {
	switch v.Type {
	case ValInt64:
		if v.Int < 0 {
			return 0, false
		}
		return uint64(v.Int), true
	case ValUint64:
		return v.Uint, true
	case ValDouble:
		if v.Dbl < 0 || v.Dbl != math.Trunc(v.Dbl) {
			return 0, false
		}
		return uint64(v.Dbl), true
	default:
		return 0, false
	}
}

func asInt64(v Value) (int64, bool) {
	switch v.Type {
	case ValInt64:
		return v.Int, true
	case ValUint64:
		return int64(v.Uint), true
	case ValDouble:
		return int64(v.Dbl), true
	default:
		return 0, false
	}
}

func drain(it *index.Iterator) []nodegraph.NodeID {
	var out []nodegraph.NodeID
	for {
		r, ok := it.GetNext()
		if !ok {
			break
		}
		out = append(out, r.Node)
	}
	return out
}
