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
	"encoding/binary"
	"testing"

	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAttributeIndexesNewValue(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	f, err := v.CreateFile(root, "f", 0o644)
	require.NoError(t, err)

	require.NoError(t, v.CreateIndex("tag", nodegraph.AttrInt64))

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, 42)
	_, err = v.CreateAttribute(f, "tag", nodegraph.AttrInt64, buf)
	require.NoError(t, err)

	idx, ok := v.IndexDirectory().FindAttributeIndex("tag")
	require.True(t, ok)
	it := idx.Find(buf)
	rec, ok := it.GetNext()
	require.True(t, ok)
	assert.Equal(t, f.ID, rec.Node)
}

func TestWriteAttributeReKeysIndex(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	f, err := v.CreateFile(root, "f", 0o644)
	require.NoError(t, err)
	require.NoError(t, v.CreateIndex("tag", nodegraph.AttrInt64))

	old := make([]byte, 8)
	binary.BigEndian.PutUint64(old, 1)
	_, err = v.CreateAttribute(f, "tag", nodegraph.AttrInt64, old)
	require.NoError(t, err)

	updated := make([]byte, 8)
	binary.BigEndian.PutUint64(updated, 2)
	require.NoError(t, v.WriteAttribute(f, "tag", updated))

	idx, _ := v.IndexDirectory().FindAttributeIndex("tag")
	_, found := idx.Find(old).GetNext()
	assert.False(t, found)
	rec, found := idx.Find(updated).GetNext()
	require.True(t, found)
	assert.Equal(t, f.ID, rec.Node)
}

func TestRemoveAttributeDropsIndexEntry(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	f, err := v.CreateFile(root, "f", 0o644)
	require.NoError(t, err)
	require.NoError(t, v.CreateIndex("tag", nodegraph.AttrInt64))

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, 7)
	_, err = v.CreateAttribute(f, "tag", nodegraph.AttrInt64, buf)
	require.NoError(t, err)

	require.NoError(t, v.RemoveAttribute(f, "tag"))

	idx, _ := v.IndexDirectory().FindAttributeIndex("tag")
	assert.Equal(t, 0, idx.CountEntries())
}

func TestCreateIndexRejectsSpecialName(t *testing.T) {
	v := newTestVolume(t)
	err := v.CreateIndex("size", nodegraph.AttrUint64)
	assert.Error(t, err)
}
