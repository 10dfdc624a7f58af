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
	"testing"

	"github.com/ramfuse/ramfs/internal/config"
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVolume(t *testing.T) *Volume {
	t.Helper()
	cfg := config.DefaultVolumeConfig()
	cfg.AreaSize = 65536
	return New(cfg)
}

func TestNewVolumeHasRootDirectory(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	require.NotNil(t, root)
	assert.Equal(t, nodegraph.TypeDirectory, root.Type)

	got, err := v.Get(root.ID)
	require.NoError(t, err)
	assert.Same(t, root, got)
}

func TestCreateFileThenLookup(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	f, err := v.CreateFile(root, "hello.txt", 0o644)
	require.NoError(t, err)
	assert.Equal(t, nodegraph.TypeFile, f.Type)

	got, err := v.Lookup(root, "hello.txt")
	require.NoError(t, err)
	assert.Same(t, f, got)

	_, ok := v.FindEntry(root.ID, "hello.txt")
	assert.True(t, ok)
}

func TestCreateDirRejectsDuplicateName(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	_, err := v.CreateDir(root, "sub", 0o755)
	require.NoError(t, err)

	_, err = v.CreateDir(root, "sub", 0o755)
	assert.Error(t, err)
}

func TestUnlinkFreesNeverPublishedNode(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	f, err := v.CreateFile(root, "tmp", 0o644)
	require.NoError(t, err)
	fid := f.ID

	require.NoError(t, v.Unlink(root, "tmp"))
	_, ok := v.FindEntry(root.ID, "tmp")
	assert.False(t, ok)

	_, err = v.Get(fid)
	assert.Error(t, err)
}

func TestUnlinkRejectsDirectory(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	_, err := v.CreateDir(root, "d", 0o755)
	require.NoError(t, err)

	err = v.Unlink(root, "d")
	assert.Error(t, err)
}

func TestRmdirRejectsNonEmptyDirectory(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	d, err := v.CreateDir(root, "d", 0o755)
	require.NoError(t, err)
	_, err = v.CreateFile(d, "child", 0o644)
	require.NoError(t, err)

	err = v.Rmdir(root, "d")
	assert.Error(t, err)
}

func TestRmdirRemovesEmptyDirectory(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	_, err := v.CreateDir(root, "d", 0o755)
	require.NoError(t, err)

	require.NoError(t, v.Rmdir(root, "d"))
	_, ok := v.FindEntry(root.ID, "d")
	assert.False(t, ok)
}

func TestRenameMovesEntryBetweenDirectories(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	a, err := v.CreateDir(root, "a", 0o755)
	require.NoError(t, err)
	b, err := v.CreateDir(root, "b", 0o755)
	require.NoError(t, err)
	f, err := v.CreateFile(a, "x", 0o644)
	require.NoError(t, err)

	require.NoError(t, v.Rename(a, "x", b, "y"))

	_, ok := v.FindEntry(a.ID, "x")
	assert.False(t, ok)
	got, ok := v.FindEntry(b.ID, "y")
	require.True(t, ok)
	assert.Same(t, f, got.Target)
}

func TestRenameOverwritesExistingDestination(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	_, err := v.CreateFile(root, "src", 0o644)
	require.NoError(t, err)
	dst, err := v.CreateFile(root, "dst", 0o644)
	require.NoError(t, err)
	dstID := dst.ID

	require.NoError(t, v.Rename(root, "src", root, "dst"))

	e, ok := v.FindEntry(root.ID, "dst")
	require.True(t, ok)
	assert.NotEqual(t, dstID, e.Target.ID)

	_, err = v.Get(dstID)
	assert.Error(t, err)
}
