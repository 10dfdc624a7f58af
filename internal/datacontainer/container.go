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

// Package datacontainer is the polymorphic byte storage backing both file
// contents and attribute values. Small values live in an inline buffer;
// larger ones live in a chain of block references carved from
// internal/blockalloc. Grounded on DataContainer.cpp/.h.
package datacontainer

import (
	"github.com/ramfuse/ramfs/internal/blockalloc"
	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

// InlineThreshold mirrors kSmallDataContainerSize: values up to this size
// live in a small buffer with no heap block allocated.
const InlineThreshold = 32

// Container is not internally locked; every call is made while the owning
// Volume's main write lock is held, same discipline as internal/blockalloc.
type Container struct {
	alloc     *blockalloc.Allocator
	blockSize uint32

	size      uint64
	blockMode bool
	inline    []byte
	blocks    []blockalloc.Ref
}

// New constructs an empty, inline-mode container.
func New(alloc *blockalloc.Allocator, blockSize uint32) *Container {
	return &Container{alloc: alloc, blockSize: blockSize}
}

// Size returns the container's current logical length.
func (c *Container) Size() uint64 { return c.size }

// GetFirstDataBlock exposes the inline buffer directly when the container
// is small enough never to have switched to block mode — mirrors
// DataContainer::GetFirstDataBlock, used by callers (e.g. symlink target
// reads) that want a zero-copy view of small values.
func (c *Container) GetFirstDataBlock() ([]byte, bool) {
	if c.blockMode {
		return nil, false
	}
	return c.inline[:c.size:c.size], true
}

func zeros(n uint32) []byte { return make([]byte, n) }

// growBlocksTo extends block-chain storage from the current logical size up
// to newSize, zero-filling every newly introduced byte. Callers update
// c.size themselves once the chain and content are consistent.
func (c *Container) growBlocksTo(newSize uint64) error {
	remaining := newSize - c.size
	if len(c.blocks) > 0 {
		last := c.blocks[len(c.blocks)-1]
		room := uint64(c.blockSize) - uint64(last.Size())
		if room > 0 {
			grow := remaining
			if grow > room {
				grow = room
			}
			oldSize := last.Size()
			if err := c.alloc.Resize(last, oldSize+uint32(grow)); err != nil {
				return err
			}
			c.alloc.Write(last, oldSize, zeros(uint32(grow)))
			remaining -= grow
		}
	}
	for remaining > 0 {
		chunk := uint64(c.blockSize)
		if chunk > remaining {
			chunk = remaining
		}
		ref, err := c.alloc.Allocate(uint32(chunk))
		if err != nil {
			return err
		}
		c.alloc.Write(ref, 0, zeros(uint32(chunk)))
		c.blocks = append(c.blocks, ref)
		remaining -= chunk
	}
	return nil
}

// shrinkBlocksTo truncates block-chain storage down to newSize, freeing
// blocks that fall entirely past the new end.
func (c *Container) shrinkBlocksTo(newSize uint64) error {
	remaining := c.size - newSize
	for remaining > 0 && len(c.blocks) > 0 {
		last := c.blocks[len(c.blocks)-1]
		lastSize := uint64(last.Size())
		if lastSize <= remaining {
			if err := c.alloc.Free(last); err != nil {
				return err
			}
			c.blocks = c.blocks[:len(c.blocks)-1]
			remaining -= lastSize
		} else {
			if err := c.alloc.Resize(last, uint32(lastSize-remaining)); err != nil {
				return err
			}
			remaining = 0
		}
	}
	return nil
}

// blockWriteAt writes buf into already-allocated block storage at a logical
// offset known to lie within [0, current size].
func (c *Container) blockWriteAt(offset uint64, buf []byte) {
	pos := offset
	remaining := buf
	blockStart := uint64(0)
	for _, ref := range c.blocks {
		sz := uint64(ref.Size())
		blockEnd := blockStart + sz
		if len(remaining) == 0 {
			break
		}
		if pos < blockEnd {
			localOff := uint64(0)
			if pos > blockStart {
				localOff = pos - blockStart
			}
			n := sz - localOff
			if n > uint64(len(remaining)) {
				n = uint64(len(remaining))
			}
			c.alloc.Write(ref, uint32(localOff), remaining[:n])
			remaining = remaining[n:]
			pos += n
		}
		blockStart = blockEnd
	}
}

func (c *Container) blockReadAt(offset uint64, buf []byte) int {
	pos := offset
	total := 0
	blockStart := uint64(0)
	for _, ref := range c.blocks {
		sz := uint64(ref.Size())
		blockEnd := blockStart + sz
		if total == len(buf) {
			break
		}
		if pos < blockEnd {
			localOff := uint64(0)
			if pos > blockStart {
				localOff = pos - blockStart
			}
			total += copyFromRef(c.alloc, ref, localOff, buf[total:])
			pos = blockEnd
		}
		blockStart = blockEnd
	}
	return total
}

func copyFromRef(al *blockalloc.Allocator, ref blockalloc.Ref, localOff uint64, dst []byte) int {
	full := make([]byte, ref.Size())
	n := al.Read(ref, full)
	full = full[:n]
	if localOff >= uint64(len(full)) {
		return 0
	}
	return copy(dst, full[localOff:])
}

// Resize grows or shrinks the container to newSize, switching between
// inline and block-chain storage as the InlineThreshold boundary is
// crossed. Growth zero-fills the newly introduced bytes.
func (c *Container) Resize(newSize uint64) error {
	const op = "Container.Resize"
	switch {
	case !c.blockMode && newSize <= InlineThreshold:
		if newSize > uint64(len(c.inline)) {
			grown := make([]byte, newSize)
			copy(grown, c.inline)
			c.inline = grown
		} else {
			c.inline = c.inline[:newSize]
		}
		c.size = newSize
		return nil

	case !c.blockMode && newSize > InlineThreshold:
		old := append([]byte(nil), c.inline...)
		c.inline = nil
		c.blockMode = true
		c.size = 0
		if err := c.growBlocksTo(newSize); err != nil {
			return err
		}
		c.size = newSize
		if len(old) > 0 {
			c.blockWriteAt(0, old)
		}
		return nil

	case c.blockMode && newSize <= InlineThreshold:
		buf := make([]byte, c.size)
		c.blockReadAt(0, buf)
		for _, ref := range c.blocks {
			if err := c.alloc.Free(ref); err != nil {
				return ramfserrors.New(ramfserrors.Internal, op, err)
			}
		}
		c.blocks = nil
		c.blockMode = false
		c.inline = buf[:newSize:newSize]
		c.size = newSize
		return nil

	default: // block mode staying in block mode
		if newSize == c.size {
			return nil
		}
		if newSize > c.size {
			if err := c.growBlocksTo(newSize); err != nil {
				return err
			}
		} else {
			if err := c.shrinkBlocksTo(newSize); err != nil {
				return err
			}
		}
		c.size = newSize
		return nil
	}
}

// ReadAt copies up to len(buf) bytes starting at offset, clipped at the
// container's current size.
func (c *Container) ReadAt(offset uint64, buf []byte) int {
	if offset >= c.size {
		return 0
	}
	avail := c.size - offset
	if uint64(len(buf)) > avail {
		buf = buf[:avail]
	}
	if !c.blockMode {
		return copy(buf, c.inline[offset:])
	}
	return c.blockReadAt(offset, buf)
}

// WriteAt writes buf at offset, growing the container (zero-filling any gap
// between the old size and offset) if the write extends past the current
// end.
func (c *Container) WriteAt(offset uint64, buf []byte) error {
	end := offset + uint64(len(buf))
	if end > c.size {
		if err := c.Resize(end); err != nil {
			return err
		}
	}
	if !c.blockMode {
		copy(c.inline[offset:], buf)
		return nil
	}
	c.blockWriteAt(offset, buf)
	return nil
}
