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

// Package blockalloc implements a sub-page block suballocator: a set of
// fixed-size Areas, each carved into Blocks by address, with a stable
// out-of-band Block Reference so that client code survives defragmentation
// moves.
package blockalloc

// block is one used-or-free span inside an Area's buffer. Blocks form a
// doubly-linked, address-ordered list; free blocks additionally form a
// doubly-linked, address-ordered free list.
type block struct {
	area   *Area
	offset uint32
	size   uint32 // usable (net) size; does not include any header overhead
	free   bool
	ref    *refCell // nil for free blocks

	prev, next         *block // address-order list (all blocks)
	freePrev, freeNext *block // address-order free list
}

// refCell is the indirection a Ref points at. Its identity never changes;
// only the block it points to can be swapped out from under it, which is
// exactly what defragmentation and Resize's copy-on-grow path do.
type refCell struct {
	blk *block
}

// Ref is a stable handle to a block's contents. Copying a Ref is cheap and
// all copies observe the same underlying block, including after the block
// has been moved by defragmentation or reallocated by Resize.
type Ref struct {
	cell *refCell
}

// Valid reports whether the reference still designates a live block.
func (r Ref) Valid() bool { return r.cell != nil && r.cell.blk != nil }

// Size returns the current usable size of the referenced block.
func (r Ref) Size() uint32 {
	if !r.Valid() {
		return 0
	}
	return r.cell.blk.size
}

func (r Ref) block() *block {
	if r.cell == nil {
		return nil
	}
	return r.cell.blk
}
