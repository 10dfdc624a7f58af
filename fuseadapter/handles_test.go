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
)

func TestDirHandleSnapshotSynthesizesDotAndDotDot(t *testing.T) {
	fs := newTestFS(t)
	subID := mkdir(t, fs, fuseops.RootInodeID, "sub")
	createFile(t, fs, subID, "f")

	sub, err := fs.vol.NodeByID(nodeID(subID))
	require.NoError(t, err)

	fs.vol.Lock()
	entries := newDirHandle(sub).snapshot()
	fs.vol.Unlock()

	require.Len(t, entries, 3)
	require.Equal(t, ".", entries[0].Name)
	require.Equal(t, "..", entries[1].Name)
	require.Equal(t, fuseops.InodeID(fuseops.RootInodeID), entries[1].Inode)
	require.Equal(t, "f", entries[2].Name)
}

func TestOpenDirReadDirReleaseDirHandle(t *testing.T) {
	fs := newTestFS(t)
	createFile(t, fs, fuseops.RootInodeID, "f")

	open := &fuseops.OpenDirOp{Inode: fuseops.RootInodeID}
	require.NoError(t, fs.OpenDir(open))
	require.NotZero(t, open.Handle)

	dst := make([]byte, 4096)
	read := &fuseops.ReadDirOp{Inode: fuseops.RootInodeID, Handle: open.Handle, Offset: 0, Dst: dst}
	require.NoError(t, fs.ReadDir(read))
	require.Greater(t, read.BytesRead, 0)

	require.NoError(t, fs.ReleaseDirHandle(&fuseops.ReleaseDirHandleOp{Handle: open.Handle}))

	require.Error(t, fs.ReadDir(&fuseops.ReadDirOp{Inode: fuseops.RootInodeID, Handle: open.Handle, Dst: dst}))
}

func TestOpenDirRejectsFileInode(t *testing.T) {
	fs := newTestFS(t)
	id := createFile(t, fs, fuseops.RootInodeID, "f")
	require.Error(t, fs.OpenDir(&fuseops.OpenDirOp{Inode: id}))
}

func TestReadDirOffsetPastEndReturnsNoBytes(t *testing.T) {
	fs := newTestFS(t)

	open := &fuseops.OpenDirOp{Inode: fuseops.RootInodeID}
	require.NoError(t, fs.OpenDir(open))

	dst := make([]byte, 4096)
	first := &fuseops.ReadDirOp{Inode: fuseops.RootInodeID, Handle: open.Handle, Offset: 0, Dst: dst}
	require.NoError(t, fs.ReadDir(first))

	// Root has only "." and "..": offset 2 is exactly past the end.
	second := &fuseops.ReadDirOp{Inode: fuseops.RootInodeID, Handle: open.Handle, Offset: 2, Dst: dst}
	require.NoError(t, fs.ReadDir(second))
	require.Zero(t, second.BytesRead)
}
