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

import "github.com/ramfuse/ramfs/internal/logger"

// AreaInfo is the per-area breakdown of AllocationInfo, grounded on the
// original AllocationInfo.cpp/.h census, exposed to callers via a
// GET_ALLOCATION_INFO-style diagnostic.
type AreaInfo struct {
	Capacity        uint32
	FreeBytes       uint32
	UsedBlockCount  uint32
	FreeBlockCount  uint32
	LargestFreeSize uint32
}

// AllocationInfo is returned by the GET_ALLOCATION_INFO ioctl handler.
type AllocationInfo struct {
	AreaCount  int
	TotalBytes uint64
	UsedBytes  uint64
	FreeBytes  uint64
	Areas      []AreaInfo
}

// AllocationInfo reports a census of every area the allocator owns.
func (al *Allocator) AllocationInfo() AllocationInfo {
	info := AllocationInfo{AreaCount: len(al.areas)}
	for _, a := range al.areas {
		var largest uint32
		for b := a.freeHead; b != nil; b = b.freeNext {
			if b.size > largest {
				largest = b.size
			}
		}
		ai := AreaInfo{
			Capacity:        a.Capacity(),
			FreeBytes:       a.FreeBytes(),
			UsedBlockCount:  a.UsedBlockCount(),
			FreeBlockCount:  a.FreeBlockCount(),
			LargestFreeSize: largest,
		}
		info.Areas = append(info.Areas, ai)
		info.TotalBytes += uint64(ai.Capacity)
		info.FreeBytes += uint64(ai.FreeBytes)
		info.UsedBytes += uint64(ai.Capacity) - uint64(ai.FreeBytes)
	}
	return info
}

// Read returns a copy of the bytes currently backing ref, for use by the
// Data Container's block-chain mode. Reads stay permitted in panic mode
// but log a warning.
func (al *Allocator) Read(ref Ref, dst []byte) int {
	if al.panicking {
		logger.Warnf("blockalloc: read while allocator is in panic mode")
	}
	b := ref.block()
	if b == nil {
		return 0
	}
	n := copy(dst, b.area.buf[b.offset:b.offset+b.size])
	return n
}

// Write copies src into the bytes backing ref, starting at byte offset
// within the block, up to the block's current size.
func (al *Allocator) Write(ref Ref, offset uint32, src []byte) int {
	b := ref.block()
	if b == nil || offset >= b.size {
		return 0
	}
	avail := b.size - offset
	n := uint32(len(src))
	if n > avail {
		n = avail
	}
	copy(b.area.buf[b.offset+offset:b.offset+offset+n], src[:n])
	return int(n)
}
