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
	"time"

	"github.com/ramfuse/ramfs/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunQueryMatchesByName(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	_, err := v.CreateFile(root, "keep.txt", 0o644)
	require.NoError(t, err)
	_, err = v.CreateFile(root, "drop.log", 0o644)
	require.NoError(t, err)

	results, err := v.RunQuery(`name=="keep.txt"`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "keep.txt", results[0].Node.Referrers[0].Name)
}

func TestRunQueryWildcardOverName(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	_, err := v.CreateFile(root, "a.txt", 0o644)
	require.NoError(t, err)
	_, err = v.CreateFile(root, "b.txt", 0o644)
	require.NoError(t, err)
	_, err = v.CreateFile(root, "c.log", 0o644)
	require.NoError(t, err)

	results, err := v.RunQuery(`name=="*.txt"`)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRunQueryBySizeRangeSeedsFromSizeIndex(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	small, err := v.CreateFile(root, "small", 0o644)
	require.NoError(t, err)
	_, err = v.Write(small, 0, []byte("a"))
	require.NoError(t, err)

	big, err := v.CreateFile(root, "big", 0o644)
	require.NoError(t, err)
	_, err = v.Write(big, 0, []byte("aaaaaaaaaa"))
	require.NoError(t, err)

	results, err := v.RunQuery(`size>5`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, big.ID, results[0].Node.ID)
}

func TestLiveQueryEmitsCreatedForNewlyMatchingNode(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()

	lq, err := v.CreateLiveQuery(`name=="*.txt"`)
	require.NoError(t, err)
	defer v.CloseLiveQuery(lq.Token)

	_, err = v.CreateFile(root, "note.txt", 0o644)
	require.NoError(t, err)

	select {
	case update := <-lq.Updates:
		assert.Equal(t, query.EntryCreated, update.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live query update")
	}
}

func TestLiveQueryEmitsRemovedOnUnlink(t *testing.T) {
	v := newTestVolume(t)
	root := v.Root()
	f, err := v.CreateFile(root, "note.txt", 0o644)
	require.NoError(t, err)

	lq, err := v.CreateLiveQuery(`name=="*.txt"`)
	require.NoError(t, err)
	defer v.CloseLiveQuery(lq.Token)

	// Priming the query against the already-matching node emits its own
	// Created event first, mirroring BFS live queries sending
	// B_ENTRY_CREATED for every entry that matches at subscription time.
	select {
	case update := <-lq.Updates:
		require.Equal(t, query.EntryCreated, update.Kind)
		require.Equal(t, f.ID, update.Node)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for priming update")
	}

	require.NoError(t, v.Unlink(root, "note.txt"))

	select {
	case update := <-lq.Updates:
		assert.Equal(t, query.EntryRemoved, update.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live query update")
	}
}
