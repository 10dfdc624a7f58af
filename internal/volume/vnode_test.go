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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishThenGetBalancedByPut(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	f, err := v.CreateFile(root, "a", 0o644)
	require.NoError(t, err)
	v.Publish(f)
	assert.EqualValues(t, 1, f.RefCount)

	got, err := v.Get(f.ID)
	require.NoError(t, err)
	assert.Same(t, f, got)
	assert.EqualValues(t, 2, f.RefCount)

	v.Put(f, 1)
	assert.EqualValues(t, 1, f.RefCount)

	_, err = v.Get(f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.RefCount)
}

func TestUnlinkThenPutFreesOpenHandleNode(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	f, err := v.CreateFile(root, "open.txt", 0o644)
	require.NoError(t, err)
	v.Publish(f)
	fid := f.ID

	require.NoError(t, v.Unlink(root, "open.txt"))
	// still referenced by the open handle, so the node survives unlink
	_, err = v.Get(fid)
	require.NoError(t, err)
	v.Put(f, 2)

	_, err = v.Get(fid)
	assert.Error(t, err)
}

func TestRemoveFreesUnreferencedNode(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	d, err := v.CreateDir(root, "d", 0o755)
	require.NoError(t, err)
	require.NoError(t, v.Rmdir(root, "d"))

	// Rmdir already frees an unreferenced node via removeEntry, so Remove
	// on it is a no-op rather than a double free.
	v.Remove(d)
}

func TestUnremoveCancelsPendingRemoval(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	f, err := v.CreateFile(root, "keep.txt", 0o644)
	require.NoError(t, err)
	v.Publish(f)

	require.NoError(t, v.Unlink(root, "keep.txt"))
	assert.True(t, f.IsRemoved())

	v.Unremove(f)
	assert.False(t, f.IsRemoved())

	require.NoError(t, v.Link(root, "restored.txt", f))
	got, err := v.Lookup(root, "restored.txt")
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestLinkAddsSecondEntryToSameNode(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	f, err := v.CreateFile(root, "a", 0o644)
	require.NoError(t, err)
	v.Publish(f)

	require.NoError(t, v.Link(root, "b", f))

	got, err := v.Lookup(root, "b")
	require.NoError(t, err)
	assert.Same(t, f, got)

	require.NoError(t, v.Unlink(root, "a"))
	// the second entry keeps the node alive
	got, err = v.Lookup(root, "b")
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestLinkRejectsNonDirectoryParent(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	f, err := v.CreateFile(root, "a", 0o644)
	require.NoError(t, err)

	err = v.Link(f, "b", f)
	assert.Error(t, err)
}
