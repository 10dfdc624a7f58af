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
	"testing"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/stretchr/testify/require"

	"github.com/ramfuse/ramfs/internal/config"
	"github.com/ramfuse/ramfs/internal/volume"
)

func newTestFS(t *testing.T) *FileSystem {
	t.Helper()
	cfg := config.DefaultVolumeConfig()
	cfg.AreaSize = 65536
	return New(volume.New(cfg))
}

func mkdir(t *testing.T, fs *FileSystem, parent fuseops.InodeID, name string) fuseops.InodeID {
	t.Helper()
	op := &fuseops.MkDirOp{Parent: parent, Name: name, Mode: 0o755}
	require.NoError(t, fs.MkDir(op))
	return op.Entry.Child
}

func createFile(t *testing.T, fs *FileSystem, parent fuseops.InodeID, name string) fuseops.InodeID {
	t.Helper()
	op := &fuseops.CreateFileOp{Parent: parent, Name: name, Mode: 0o644}
	require.NoError(t, fs.CreateFile(op))
	return op.Entry.Child
}

func TestInitSucceeds(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Init(&fuseops.InitOp{}))
}

func TestStatFSReportsAllocatorCensus(t *testing.T) {
	fs := newTestFS(t)
	// The allocator owns no area until its first allocation, so write past
	// the inline threshold to give the census something to report.
	id := createFile(t, fs, fuseops.RootInodeID, "f")
	require.NoError(t, fs.WriteFile(&fuseops.WriteFileOp{Inode: id, Data: make([]byte, 100)}))

	op := &fuseops.StatFSOp{}
	require.NoError(t, fs.StatFS(op))
	require.Equal(t, uint32(4096), op.BlockSize)
	require.Greater(t, op.Blocks, uint64(0))
	require.Equal(t, op.BlocksFree, op.BlocksAvailable)
}

func TestMkDirThenLookUpInode(t *testing.T) {
	fs := newTestFS(t)

	childID := mkdir(t, fs, fuseops.RootInodeID, "sub")
	require.NotZero(t, childID)

	lookup := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "sub"}
	require.NoError(t, fs.LookUpInode(lookup))
	require.Equal(t, childID, lookup.Entry.Child)
	require.True(t, lookup.Entry.Attributes.Mode.IsDir())
}

func TestLookUpInodeMissingNameReturnsENOENT(t *testing.T) {
	fs := newTestFS(t)
	lookup := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "missing"}
	require.Error(t, fs.LookUpInode(lookup))
}

func TestCreateFileDuplicateNameFails(t *testing.T) {
	fs := newTestFS(t)
	createFile(t, fs, fuseops.RootInodeID, "a")

	op := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "a", Mode: 0o644}
	require.Error(t, fs.CreateFile(op))
}

func TestGetAndSetInodeAttributes(t *testing.T) {
	fs := newTestFS(t)
	id := createFile(t, fs, fuseops.RootInodeID, "f")

	get := &fuseops.GetInodeAttributesOp{Inode: id}
	require.NoError(t, fs.GetInodeAttributes(get))
	require.EqualValues(t, 0, get.Attributes.Size)

	newSize := uint64(10)
	set := &fuseops.SetInodeAttributesOp{Inode: id, Size: &newSize}
	require.NoError(t, fs.SetInodeAttributes(set))
	require.EqualValues(t, 10, set.Attributes.Size)
}

func TestForgetInodeFreesUnlinkedNode(t *testing.T) {
	fs := newTestFS(t)
	parentNode, err := fs.vol.NodeByID(nodeID(fuseops.RootInodeID))
	require.NoError(t, err)

	id := createFile(t, fs, fuseops.RootInodeID, "f")
	require.NoError(t, fs.vol.Unlink(parentNode, "f"))

	require.NoError(t, fs.ForgetInode(&fuseops.ForgetInodeOp{Inode: id, N: 1}))

	_, err = fs.vol.NodeByID(nodeID(id))
	require.Error(t, err)
}

func TestCreateSymlinkAndReadSymlink(t *testing.T) {
	fs := newTestFS(t)
	op := &fuseops.CreateSymlinkOp{Parent: fuseops.RootInodeID, Name: "link", Target: "target"}
	require.NoError(t, fs.CreateSymlink(op))

	read := &fuseops.ReadSymlinkOp{Inode: op.Entry.Child}
	require.NoError(t, fs.ReadSymlink(read))
	require.Equal(t, "target", read.Target)
}

func TestCreateLinkResurrectsUnlinkedNode(t *testing.T) {
	fs := newTestFS(t)
	parentNode, err := fs.vol.NodeByID(nodeID(fuseops.RootInodeID))
	require.NoError(t, err)

	id := createFile(t, fs, fuseops.RootInodeID, "a")
	require.NoError(t, fs.vol.Unlink(parentNode, "a"))

	link := &fuseops.CreateLinkOp{Parent: fuseops.RootInodeID, Name: "b", Target: id}
	require.NoError(t, fs.CreateLink(link))
	require.Equal(t, id, link.Entry.Child)

	lookup := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "b"}
	require.NoError(t, fs.LookUpInode(lookup))
	require.Equal(t, id, lookup.Entry.Child)
}

func TestRmDirRejectsNonEmptyDirectory(t *testing.T) {
	fs := newTestFS(t)
	dirID := mkdir(t, fs, fuseops.RootInodeID, "d")
	createFile(t, fs, dirID, "f")

	require.Error(t, fs.RmDir(&fuseops.RmDirOp{Parent: fuseops.RootInodeID, Name: "d"}))
}

func TestUnlinkRemovesFile(t *testing.T) {
	fs := newTestFS(t)
	createFile(t, fs, fuseops.RootInodeID, "f")

	require.NoError(t, fs.Unlink(&fuseops.UnlinkOp{Parent: fuseops.RootInodeID, Name: "f"}))

	lookup := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "f"}
	require.Error(t, fs.LookUpInode(lookup))
}

func TestRenameMovesEntryBetweenDirectories(t *testing.T) {
	fs := newTestFS(t)
	dirID := mkdir(t, fs, fuseops.RootInodeID, "d")
	createFile(t, fs, fuseops.RootInodeID, "f")

	require.NoError(t, fs.Rename(&fuseops.RenameOp{
		OldParent: fuseops.RootInodeID,
		OldName:   "f",
		NewParent: dirID,
		NewName:   "moved",
	}))

	require.Error(t, fs.LookUpInode(&fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "f"}))
	require.NoError(t, fs.LookUpInode(&fuseops.LookUpInodeOp{Parent: dirID, Name: "moved"}))
}

func TestWriteFileThenReadFileRoundTrip(t *testing.T) {
	fs := newTestFS(t)
	id := createFile(t, fs, fuseops.RootInodeID, "f")

	data := []byte("hello world")
	require.NoError(t, fs.WriteFile(&fuseops.WriteFileOp{Inode: id, Offset: 0, Data: data}))

	dst := make([]byte, len(data))
	read := &fuseops.ReadFileOp{Inode: id, Offset: 0, Dst: dst}
	require.NoError(t, fs.ReadFile(read))
	require.Equal(t, len(data), read.BytesRead)
	require.Equal(t, data, dst)
}

func TestOpenFileRejectsDirectory(t *testing.T) {
	fs := newTestFS(t)
	dirID := mkdir(t, fs, fuseops.RootInodeID, "d")
	require.Error(t, fs.OpenFile(&fuseops.OpenFileOp{Inode: dirID}))
}

func TestSyncAndFlushFileAreNoOps(t *testing.T) {
	fs := newTestFS(t)
	id := createFile(t, fs, fuseops.RootInodeID, "f")
	require.NoError(t, fs.SyncFile(&fuseops.SyncFileOp{Inode: id}))
	require.NoError(t, fs.FlushFile(&fuseops.FlushFileOp{Inode: id}))
}

func TestReleaseFileHandleIsNoOp(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.ReleaseFileHandle(&fuseops.ReleaseFileHandleOp{Handle: 1}))
}
