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

package nodegraph

import (
	"github.com/ramfuse/ramfs/internal/datacontainer"
	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

const (
	AccessRead    = 0o4
	AccessWrite   = 0o2
	AccessExecute = 0o1
)

// NewDirectory constructs a directory node header; the caller assigns ID
// and links it via CreateChild/AddEntry.
func NewDirectory(id NodeID, mode uint32) *Node {
	return &Node{ID: id, Type: TypeDirectory, Mode: mode, Dir: &DirectoryData{}}
}

// NewFile constructs a file node with an empty data container.
func NewFile(id NodeID, mode uint32, alloc *datacontainer.Container) *Node {
	return &Node{ID: id, Type: TypeFile, Mode: mode, File: &FileData{Container: alloc}}
}

// NewSymLink constructs a symlink node with the given target path.
func NewSymLink(id NodeID, mode uint32, target string) *Node {
	return &Node{ID: id, Type: TypeSymLink, Mode: mode, Link: &SymLinkData{Target: target}}
}

// Size reports the node's logical size: 0 for directories, the data
// container's length for files, the target path's length for symlinks.
func (n *Node) Size() uint64 {
	switch n.Type {
	case TypeFile:
		return n.File.Container.Size()
	case TypeSymLink:
		return uint64(len(n.Link.Target))
	default:
		return 0
	}
}

// SetSize resizes a file's data container. Directories and symlinks reject
// it.
func (n *Node) SetSize(newSize uint64) error {
	const op = "Node.SetSize"
	if n.Type != TypeFile {
		return ramfserrors.New(ramfserrors.Unsupported, op, nil)
	}
	if err := n.File.Container.Resize(newSize); err != nil {
		return err
	}
	n.ModifiedFlags |= StatSize
	return nil
}

// AddReference increments the published-to-VFS ref count.
func (n *Node) AddReference() { n.RefCount++ }

// RemoveReference decrements the published-to-VFS ref count, reporting
// whether the node is now both unreferenced by entries and unpublished —
// i.e. ready for the Volume to free.
func (n *Node) RemoveReference() bool {
	if n.RefCount > 0 {
		n.RefCount--
	}
	return n.RefCount == 0 && n.removed
}

// IsRemoved reports whether the node's last referring entry has already
// been unlinked.
func (n *Node) IsRemoved() bool { return n.removed }

// Unremove cancels a pending removal, mirroring Haiku's unremove_vnode:
// used when a node whose last entry was unlinked gets a new entry linked
// to it (e.g. a rename target resurrected before the old handle's last
// VFS reference was put).
func (n *Node) Unremove() { n.removed = false }

// CheckPermissions is a minimal POSIX permission check against the node's
// mode bits for the "other" class. Full permission checking against a
// calling uid/gid is the VFS shell's job; this exists so in-core callers
// (e.g. rename's temp-reference dance) can still ask.
func (n *Node) CheckPermissions(access uint32) error {
	const op = "Node.CheckPermissions"
	if n.Mode&access != access {
		return ramfserrors.New(ramfserrors.NotAllowed, op, nil)
	}
	return nil
}

// MarkUnmodified clears the dirty bits, mirroring Node::MarkUnmodified,
// returning the flags that were set so the caller can fire a
// stat_changed notification with the correct mask.
func (n *Node) MarkUnmodified(ctime, mtime int64) StatField {
	flags := n.ModifiedFlags
	if flags != 0 {
		n.CTime = ctime
		n.MTime = mtime
		n.ModifiedFlags = 0
	}
	return flags
}
