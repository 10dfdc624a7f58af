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

package blockalloc

import (
	"context"
	"fmt"

	"github.com/ramfuse/ramfs/internal/logger"
	"github.com/ramfuse/ramfs/internal/ramfserrors"
	"golang.org/x/sync/semaphore"
)

// Config controls the shape of Areas an Allocator carves. AreaSize is a
// fixed-size chunk, typically several pages, chosen once at construction;
// MinNetBlock sets the bucket granularity. MaxAreas bounds resource use so
// OutOfMemory is reachable in tests without the host actually exhausting
// RAM.
type Config struct {
	AreaSize    uint32
	MinNetBlock uint32
	MaxAreas    int // 0 means unbounded
}

// Allocator is a sub-page suballocator carving fixed-size Areas into
// variable-size Blocks. It is not internally locked: every call into it is
// made while the caller holds the volume's main write lock, because block
// moves mutate Block References that other subsystems are holding onto.
type Allocator struct {
	cfg     Config
	buckets [][]*Area // bucket index -> areas currently in that bucket
	areas   []*Area   // all areas, for AllocationInfo/DumpIndex-style introspection

	// panicking is the allocator's only piece of process-wide state,
	// folded into the instance rather than a package global. Once true,
	// mutating calls fail immediately without touching state; reads are
	// still permitted.
	panicking bool
}

// New constructs an empty Allocator; it owns no Areas until the first
// Allocate call.
func New(cfg Config) *Allocator {
	if cfg.MinNetBlock == 0 {
		cfg.MinNetBlock = 16
	}
	n := numBuckets(cfg.AreaSize, cfg.MinNetBlock)
	return &Allocator{cfg: cfg, buckets: make([][]*Area, n)}
}

// IsPanicking reports whether the allocator has entered panic mode.
func (al *Allocator) IsPanicking() bool { return al.panicking }

func (al *Allocator) panic(op string, err error) error {
	al.panicking = true
	logger.Errorf("blockalloc: %s: invariant violation, entering panic mode: %v", op, err)
	return ramfserrors.New(ramfserrors.Internal, op, err)
}

// rebucket recomputes which bucket an area belongs in and relocates it: an
// area moves buckets whenever its free-bytes class crosses a boundary.
func (al *Allocator) rebucket(a *Area) {
	want := bucketFor(a.FreeBytes(), al.cfg.MinNetBlock)
	al.removeFromBucket(a)
	a.bucket = want
	for len(al.buckets) <= want {
		al.buckets = append(al.buckets, nil)
	}
	al.buckets[want] = append(al.buckets[want], a)
}

func (al *Allocator) removeFromBucket(a *Area) {
	if a.bucket < 0 || a.bucket >= len(al.buckets) {
		return
	}
	bucket := al.buckets[a.bucket]
	for i, x := range bucket {
		if x == a {
			al.buckets[a.bucket] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

func (al *Allocator) newArea() (*Area, error) {
	if al.cfg.MaxAreas > 0 && len(al.areas) >= al.cfg.MaxAreas {
		return nil, ramfserrors.New(ramfserrors.OutOfMemory, "Allocator.newArea", nil)
	}
	a := newArea(al.cfg.AreaSize)
	a.bucket = -1
	al.areas = append(al.areas, a)
	al.rebucket(a)
	return a, nil
}

// Allocate carves out a block of usableSize bytes and returns a stable
// reference to it. It fails with BadValue if usableSize exceeds the
// maximum net size of one area, and OutOfMemory if MaxAreas is configured
// and exhausted.
func (al *Allocator) Allocate(usableSize uint32) (Ref, error) {
	const op = "Allocator.Allocate"
	if al.panicking {
		return Ref{}, ramfserrors.New(ramfserrors.Internal, op, fmt.Errorf("allocator is in panic mode"))
	}
	if usableSize > al.cfg.AreaSize {
		return Ref{}, ramfserrors.New(ramfserrors.BadValue, op, fmt.Errorf("usable size %d exceeds area capacity %d", usableSize, al.cfg.AreaSize))
	}

	if b := al.findFit(usableSize); b != nil {
		return al.use(b, usableSize)
	}

	// No existing area has room; try defragmenting each area in case
	// fragmentation, not raw space, is the obstacle.
	for _, a := range al.areas {
		if a.FreeBytes() >= usableSize {
			a.defragment()
			al.rebucket(a)
			if b := a.firstFit(usableSize); b != nil {
				return al.use(b, usableSize)
			}
		}
	}

	a, err := al.newArea()
	if err != nil {
		return Ref{}, err
	}
	b := a.firstFit(usableSize)
	if b == nil {
		return Ref{}, al.panic(op, fmt.Errorf("fresh area of size %d has no room for %d", al.cfg.AreaSize, usableSize))
	}
	return al.use(b, usableSize)
}

// findFit scans buckets from the smallest-sufficient bucket upward,
// first-fit within each area's free list.
func (al *Allocator) findFit(usableSize uint32) *block {
	start := bucketFor(usableSize, al.cfg.MinNetBlock)
	for i := start; i < len(al.buckets); i++ {
		for _, a := range al.buckets[i] {
			if b := a.firstFit(usableSize); b != nil {
				return b
			}
		}
	}
	return nil
}

func (al *Allocator) use(b *block, usableSize uint32) (Ref, error) {
	a := b.area
	used := a.splitAndUse(b, usableSize)
	al.rebucket(a)
	cell := &refCell{blk: used}
	used.ref = cell
	return Ref{cell: cell}, nil
}

// Free releases the block a Ref designates. After Free returns, the Ref is
// no longer Valid.
func (al *Allocator) Free(ref Ref) error {
	const op = "Allocator.Free"
	if al.panicking {
		return ramfserrors.New(ramfserrors.Internal, op, fmt.Errorf("allocator is in panic mode"))
	}
	b := ref.block()
	if b == nil {
		return ramfserrors.New(ramfserrors.BadValue, op, fmt.Errorf("invalid reference"))
	}
	a := b.area
	b.ref = nil
	ref.cell.blk = nil
	a.freeBlock(b)
	al.rebucket(a)
	al.maybeDefragmentGlobally()
	return nil
}

// Resize grows or shrinks the block a Ref designates to newUsableSize
// bytes, preserving its first min(old,new) bytes of content. The Ref
// remains Valid and continues to resolve to the same logical block even if
// Resize had to relocate the bytes.
func (al *Allocator) Resize(ref Ref, newUsableSize uint32) error {
	const op = "Allocator.Resize"
	if al.panicking {
		return ramfserrors.New(ramfserrors.Internal, op, fmt.Errorf("allocator is in panic mode"))
	}
	if newUsableSize > al.cfg.AreaSize {
		return ramfserrors.New(ramfserrors.BadValue, op, fmt.Errorf("usable size %d exceeds area capacity %d", newUsableSize, al.cfg.AreaSize))
	}
	b := ref.block()
	if b == nil {
		return ramfserrors.New(ramfserrors.BadValue, op, fmt.Errorf("invalid reference"))
	}
	a := b.area

	if newUsableSize == b.size {
		return nil
	}

	if newUsableSize < b.size {
		al.shrinkInPlace(b, newUsableSize)
		al.rebucket(a)
		return nil
	}

	// Grow: try consuming the adjoining free block first.
	if n := b.next; n != nil && n.free && n.size >= newUsableSize-b.size {
		need := newUsableSize - b.size
		a.removeFree(n)
		if n.size > need {
			remainder := &block{area: a, offset: n.offset + need, size: n.size - need}
			remainder.prev = b
			remainder.next = n.next
			if n.next != nil {
				n.next.prev = remainder
			} else {
				a.tail = remainder
			}
			b.next = remainder
			a.insertFree(remainder)
		} else {
			b.next = n.next
			if n.next != nil {
				n.next.prev = b
			} else {
				a.tail = b
			}
		}
		b.size = newUsableSize
		al.rebucket(a)
		return nil
	}

	// Can't grow in place: allocate fresh, copy, free the old block. This
	// is the one path where the Ref's target block identity changes; the
	// refCell indirection is what keeps the Ref itself valid.
	newRef, err := al.Allocate(newUsableSize)
	if err != nil {
		return err
	}
	newBlk := newRef.block()
	copy(newBlk.area.buf[newBlk.offset:newBlk.offset+b.size], a.buf[b.offset:b.offset+b.size])

	oldCell := ref.cell
	oldBlk := oldCell.blk
	oldCell.blk = newBlk
	newBlk.ref = oldCell
	newRef.cell.blk = nil // the temporary cell from Allocate is discarded

	oldBlk.ref = nil
	a.freeBlock(oldBlk)
	al.rebucket(a)
	al.maybeDefragmentGlobally()
	return nil
}

// shrinkInPlace truncates a used block, turning its tail into a new free
// block (coalesced with whatever follows).
func (al *Allocator) shrinkInPlace(b *block, newUsableSize uint32) {
	a := b.area
	freed := b.size - newUsableSize
	if freed == 0 {
		return
	}
	tail := &block{area: a, offset: b.offset + newUsableSize, size: freed}
	tail.prev = b
	tail.next = b.next
	if b.next != nil {
		b.next.prev = tail
	} else {
		a.tail = tail
	}
	b.next = tail
	b.size = newUsableSize

	// b stays used; only a new free block (tail) appears, optionally
	// merging with whatever free block already followed it. usedBlockCount
	// is untouched because no used block became free here.
	a.insertFree(tail)
	if n := tail.next; n != nil && n.free {
		a.unlinkFree(n)
		a.unlinkAddr(n)
		a.freeBlockCount--
		tail.size += n.size
	}
}

// Defragment runs the in-area defragmentation pass directly, bypassing the
// fit-failure trigger (useful for tests and for the
// DUMP_INDEX/GET_ALLOCATION_INFO diagnostics).
func (al *Allocator) Defragment(a *Area) {
	a.defragment()
	al.rebucket(a)
}

// defragmentTolerance is the slack allowed above one area's worth of free
// space before the global defragmentation sweep triggers.
const defragmentTolerance = 0

func (al *Allocator) totalFreeBytes() uint64 {
	var total uint64
	for _, a := range al.areas {
		total += uint64(a.FreeBytes())
	}
	return total
}

// maybeDefragmentGlobally checks the global trigger — total free space
// across all areas exceeding one area's worth plus tolerance — and, if
// crossed, sweeps every area whose own in-area trigger (shouldDefragment)
// also fires. The sweep visits the areas one after another on the calling
// goroutine; each area's pass holds one slot of a weighted semaphore, but
// no two areas are defragmented concurrently.
func (al *Allocator) maybeDefragmentGlobally() {
	if al.panicking {
		return
	}
	if al.totalFreeBytes() <= uint64(al.cfg.AreaSize)+defragmentTolerance {
		return
	}

	sem := semaphore.NewWeighted(4)
	ctx := context.Background()
	for _, a := range al.areas {
		if !a.shouldDefragment() {
			continue
		}
		_ = sem.Acquire(ctx, 1)
		a.defragment()
		al.rebucket(a)
		sem.Release(1)
	}
}
