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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChildLinksEntryAndReferrer(t *testing.T) {
	root := NewDirectory(1, 0o755)
	child := NewDirectory(2, 0o755)

	entry, err := root.CreateChild("a", child)
	require.NoError(t, err)

	assert.Equal(t, root.FindEntry("a"), entry)
	assert.Equal(t, child, root.FindNode("a"))
	assert.Len(t, child.Referrers, 1)
	assert.Equal(t, entry, child.Referrers[0])
}

func TestDirectoryHasAtMostOneReferrer(t *testing.T) {
	rootA := NewDirectory(1, 0o755)
	rootB := NewDirectory(2, 0o755)
	dir := NewDirectory(3, 0o755)

	_, err := rootA.CreateChild("x", dir)
	require.NoError(t, err)

	entry := &Entry{Name: "y", Target: dir}
	err = rootB.AddEntry(entry)
	assert.Error(t, err)
}

func TestRemoveEntryUnlinksBothSides(t *testing.T) {
	root := NewDirectory(1, 0o755)
	child := NewDirectory(2, 0o755)
	entry, _ := root.CreateChild("a", child)

	require.NoError(t, root.RemoveEntry(entry))

	assert.Nil(t, root.FindEntry("a"))
	assert.Empty(t, child.Referrers)
	assert.True(t, child.IsRemoved())
}

func TestEntryIteratorYieldsInsertionOrder(t *testing.T) {
	root := NewDirectory(1, 0o755)
	names := []string{"a", "b", "c"}
	for _, n := range names {
		_, err := root.CreateChild(n, NewDirectory(NodeID(len(n)), 0o644))
		require.NoError(t, err)
	}

	it := NewEntryIterator(root)
	var got []string
	for e := it.GetNext(); e != nil; e = it.GetNext() {
		got = append(got, e.Name)
	}
	assert.Equal(t, names, got)
}

func TestEntryIteratorAdvancesPastConcurrentRemoval(t *testing.T) {
	root := NewDirectory(1, 0o755)
	eA, _ := root.CreateChild("a", NewDirectory(2, 0o644))
	_, _ = root.CreateChild("b", NewDirectory(3, 0o644))
	_, _ = root.CreateChild("c", NewDirectory(4, 0o644))

	it := NewEntryIterator(root)
	first := it.GetNext()
	assert.Equal(t, eA, first)

	it.Suspend()
	require.NoError(t, root.RemoveEntry(eA))
	it.Resume()

	next := it.GetNext()
	require.NotNil(t, next)
	assert.Equal(t, "b", next.Name)

	next = it.GetNext()
	require.NotNil(t, next)
	assert.Equal(t, "c", next.Name)

	assert.Nil(t, it.GetNext())
}

func TestAttributeReservedNamesRejected(t *testing.T) {
	n := NewDirectory(1, 0o755)
	_, err := n.CreateAttribute("name", AttrString, nil)
	assert.Error(t, err)
	_, err = n.CreateAttribute("size", AttrString, nil)
	assert.Error(t, err)
	_, err = n.CreateAttribute("last_modified", AttrString, nil)
	assert.Error(t, err)
}

func TestAttributeIteratorOrder(t *testing.T) {
	n := NewDirectory(1, 0o755)
	_, _ = n.CreateAttribute("one", AttrString, nil)
	_, _ = n.CreateAttribute("two", AttrString, nil)

	it := NewAttributeIterator(n)
	a1 := it.GetNext()
	a2 := it.GetNext()
	a3 := it.GetNext()

	assert.Equal(t, "one", a1.Name)
	assert.Equal(t, "two", a2.Name)
	assert.Nil(t, a3)
}
