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

package fuseadapter

import (
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"

	"github.com/ramfuse/ramfs/internal/nodegraph"
)

////////////////////////////////////////////////////////////////////////
// Volume / vnode ops
////////////////////////////////////////////////////////////////////////

// LOCKS_EXCLUDED(fs.vol)
func (fs *FileSystem) Init(op *fuseops.InitOp) error {
	return nil
}

// LOCKS_EXCLUDED(fs.vol)
//
// StatFS reports the allocator's area census as a block count, the closest
// fit between GET_ALLOCATION_INFO's per-area byte accounting and statfs's
// fixed-block-size model.
func (fs *FileSystem) StatFS(op *fuseops.StatFSOp) error {
	fs.vol.Lock()
	info := fs.vol.Allocator().AllocationInfo()
	fs.vol.Unlock()

	const blockSize = 4096
	op.BlockSize = blockSize
	op.IoSize = blockSize
	op.Blocks = info.TotalBytes / blockSize
	op.BlocksFree = info.FreeBytes / blockSize
	op.BlocksAvailable = op.BlocksFree
	return nil
}

// LOCKS_EXCLUDED(fs.vol)
func (fs *FileSystem) LookUpInode(op *fuseops.LookUpInodeOp) (err error) {
	const name = "LookUpInode"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	parent, perr := fs.vol.NodeByID(nodeID(op.Parent))
	if perr != nil {
		err = perr
		return errno(err)
	}
	child, cerr := fs.vol.Lookup(parent, op.Name)
	if cerr != nil {
		err = cerr
		return errno(err)
	}
	// The kernel is handed a new reference to an already-existing node,
	// mirroring get_vnode: every LookUpInode is balanced by a later
	// ForgetInode.
	fs.vol.Get(child.ID)

	op.Entry.Child = inodeID(child.ID)
	op.Entry.Attributes = nodeAttributes(child)
	return nil
}

// LOCKS_EXCLUDED(fs.vol)
func (fs *FileSystem) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, err := fs.vol.NodeByID(nodeID(op.Inode))
	if err != nil {
		return errno(err)
	}
	op.Attributes = nodeAttributes(n)
	return nil
}

// LOCKS_EXCLUDED(fs.vol)
func (fs *FileSystem) SetInodeAttributes(op *fuseops.SetInodeAttributesOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, err := fs.vol.NodeByID(nodeID(op.Inode))
	if err != nil {
		return errno(err)
	}

	if op.Size != nil {
		if err := fs.vol.Truncate(n, *op.Size); err != nil {
			return errno(err)
		}
	}
	if op.Mode != nil {
		n.Mode = uint32(*op.Mode & 0o7777)
		n.ModifiedFlags |= nodegraph.StatMode
	}

	now := fs.clock.Now().UnixNano()
	ctime := n.CTime
	mtime := n.MTime
	if op.Mtime != nil {
		mtime = op.Mtime.UnixNano()
	}
	if op.Size != nil || op.Mode != nil || op.Mtime != nil {
		ctime = now
	}
	fs.vol.Touch(n, ctime, mtime)

	op.Attributes = nodeAttributes(n)
	return nil
}

// LOCKS_EXCLUDED(fs.vol)
func (fs *FileSystem) ForgetInode(op *fuseops.ForgetInodeOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, err := fs.vol.NodeByID(nodeID(op.Inode))
	if err != nil {
		// Already freed by a prior Put; nothing left to forget.
		return nil
	}
	fs.vol.Put(n, uint32(op.N))
	return nil
}

////////////////////////////////////////////////////////////////////////
// Creation
////////////////////////////////////////////////////////////////////////

func (fs *FileSystem) MkDir(op *fuseops.MkDirOp) (err error) {
	const name = "MkDir"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	parent, perr := fs.vol.NodeByID(nodeID(op.Parent))
	if perr != nil {
		err = perr
		return errno(err)
	}
	child, cerr := fs.vol.CreateDir(parent, op.Name, uint32(op.Mode&0o7777))
	if cerr != nil {
		err = cerr
		return errno(err)
	}
	stampCreated(child, fs.clock.Now())
	fs.vol.Publish(child)

	op.Entry.Child = inodeID(child.ID)
	op.Entry.Attributes = nodeAttributes(child)
	return nil
}

func (fs *FileSystem) CreateFile(op *fuseops.CreateFileOp) (err error) {
	const name = "CreateFile"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	parent, perr := fs.vol.NodeByID(nodeID(op.Parent))
	if perr != nil {
		err = perr
		return errno(err)
	}
	child, cerr := fs.vol.CreateFile(parent, op.Name, uint32(op.Mode&0o7777))
	if cerr != nil {
		err = cerr
		return errno(err)
	}
	stampCreated(child, fs.clock.Now())
	fs.vol.Publish(child)

	op.Entry.Child = inodeID(child.ID)
	op.Entry.Attributes = nodeAttributes(child)
	return nil
}

func (fs *FileSystem) CreateSymlink(op *fuseops.CreateSymlinkOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	parent, err := fs.vol.NodeByID(nodeID(op.Parent))
	if err != nil {
		return errno(err)
	}
	child, err := fs.vol.CreateSymlink(parent, op.Name, op.Target)
	if err != nil {
		return errno(err)
	}
	stampCreated(child, fs.clock.Now())
	fs.vol.Publish(child)

	op.Entry.Child = inodeID(child.ID)
	op.Entry.Attributes = nodeAttributes(child)
	return nil
}

// CreateLink is the VFS surface's link op: it attaches a new name to an
// already-existing inode rather than minting a fresh one.
func (fs *FileSystem) CreateLink(op *fuseops.CreateLinkOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	parent, err := fs.vol.NodeByID(nodeID(op.Parent))
	if err != nil {
		return errno(err)
	}
	target, err := fs.vol.NodeByID(nodeID(op.Target))
	if err != nil {
		return errno(err)
	}
	if err := fs.vol.Link(parent, op.Name, target); err != nil {
		return errno(err)
	}
	fs.vol.Get(target.ID)

	op.Entry.Child = inodeID(target.ID)
	op.Entry.Attributes = nodeAttributes(target)
	return nil
}

func (fs *FileSystem) ReadSymlink(op *fuseops.ReadSymlinkOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, err := fs.vol.NodeByID(nodeID(op.Inode))
	if err != nil {
		return errno(err)
	}
	if n.Type != nodegraph.TypeSymLink {
		return fuse.EINVAL
	}
	op.Target = n.Link.Target
	return nil
}

////////////////////////////////////////////////////////////////////////
// Removal and rename
////////////////////////////////////////////////////////////////////////

func (fs *FileSystem) RmDir(op *fuseops.RmDirOp) (err error) {
	const name = "RmDir"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	parent, perr := fs.vol.NodeByID(nodeID(op.Parent))
	if perr != nil {
		err = perr
		return errno(err)
	}
	err = fs.vol.Rmdir(parent, op.Name)
	return errno(err)
}

func (fs *FileSystem) Unlink(op *fuseops.UnlinkOp) (err error) {
	const name = "Unlink"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	parent, perr := fs.vol.NodeByID(nodeID(op.Parent))
	if perr != nil {
		err = perr
		return errno(err)
	}
	err = fs.vol.Unlink(parent, op.Name)
	return errno(err)
}

func (fs *FileSystem) Rename(op *fuseops.RenameOp) (err error) {
	const name = "Rename"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	oldParent, operr := fs.vol.NodeByID(nodeID(op.OldParent))
	if operr != nil {
		err = operr
		return errno(err)
	}
	newParent, nperr := fs.vol.NodeByID(nodeID(op.NewParent))
	if nperr != nil {
		err = nperr
		return errno(err)
	}
	err = fs.vol.Rename(oldParent, op.OldName, newParent, op.NewName)
	return errno(err)
}

////////////////////////////////////////////////////////////////////////
// Directory handles
////////////////////////////////////////////////////////////////////////

func (fs *FileSystem) OpenDir(op *fuseops.OpenDirOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, err := fs.vol.NodeByID(nodeID(op.Inode))
	if err != nil {
		return errno(err)
	}
	if n.Type != nodegraph.TypeDirectory {
		return fuse.ENOTDIR
	}

	handleID := fs.nextHandleID
	fs.nextHandleID++
	fs.handles[handleID] = newDirHandle(n)
	op.Handle = handleID
	return nil
}

func (fs *FileSystem) ReadDir(op *fuseops.ReadDirOp) error {
	fs.vol.Lock()
	dh, ok := fs.handles[op.Handle].(*dirHandle)
	fs.vol.Unlock()
	if !ok {
		return fuse.EIO
	}
	return dh.ReadDir(op, fs.vol)
}

func (fs *FileSystem) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()
	delete(fs.handles, op.Handle)
	return nil
}

////////////////////////////////////////////////////////////////////////
// File I/O
////////////////////////////////////////////////////////////////////////

// ReleaseFileHandle is a no-op: files carry no handle-side state (reads
// and writes resolve straight through to the node by inode ID), the same
// handle-less model fs.fileSystem uses for its own file operations.
func (fs *FileSystem) ReleaseFileHandle(op *fuseops.ReleaseFileHandleOp) error {
	return nil
}

func (fs *FileSystem) OpenFile(op *fuseops.OpenFileOp) error {
	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, err := fs.vol.NodeByID(nodeID(op.Inode))
	if err != nil {
		return errno(err)
	}
	if n.Type != nodegraph.TypeFile {
		return fuse.EINVAL
	}
	return nil
}

func (fs *FileSystem) ReadFile(op *fuseops.ReadFileOp) (err error) {
	const name = "ReadFile"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, nerr := fs.vol.NodeByID(nodeID(op.Inode))
	if nerr != nil {
		err = nerr
		return errno(err)
	}
	read, rerr := fs.vol.Read(n, uint64(op.Offset), op.Dst)
	if rerr != nil {
		err = rerr
		return errno(err)
	}
	op.BytesRead = read
	return nil
}

func (fs *FileSystem) WriteFile(op *fuseops.WriteFileOp) (err error) {
	const name = "WriteFile"
	defer recordLatency(fs, op.Context(), name, time.Now())
	defer func() { fs.recordOp(op.Context(), name, err) }()

	fs.vol.Lock()
	defer fs.vol.Unlock()

	n, nerr := fs.vol.NodeByID(nodeID(op.Inode))
	if nerr != nil {
		err = nerr
		return errno(err)
	}
	_, err = fs.vol.Write(n, uint64(op.Offset), op.Data)
	return errno(err)
}

// SyncFile and FlushFile are no-ops: every write already lands directly in
// the node's in-memory data container, mirroring the original
// implementation's lack of any separate durability step for a ramfs.
func (fs *FileSystem) SyncFile(op *fuseops.SyncFileOp) error  { return nil }
func (fs *FileSystem) FlushFile(op *fuseops.FlushFileOp) error { return nil }
