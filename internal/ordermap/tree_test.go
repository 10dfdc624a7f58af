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

package ordermap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	primary   int
	secondary int
}

func cmpPair(a, b pair) int {
	if a.primary != b.primary {
		return a.primary - b.primary
	}
	return a.secondary - b.secondary
}

func TestInsertAscendingOrder(t *testing.T) {
	tr := New[pair](cmpPair)
	values := []pair{{3, 0}, {1, 0}, {4, 0}, {1, 1}, {5, 0}, {9, 0}, {2, 0}, {6, 0}}
	for _, v := range values {
		tr.Insert(v)
	}

	assert.Equal(t, len(values), tr.Len())

	var got []pair
	for it := tr.First(); it.Valid(); it = it.Next() {
		got = append(got, it.Value())
	}

	assert.Equal(t, []pair{{1, 0}, {1, 1}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0}, {9, 0}}, got)
}

func TestFindExactAndFirst(t *testing.T) {
	tr := New[pair](cmpPair)
	tr.Insert(pair{1, 0})
	tr.Insert(pair{2, 0})
	tr.Insert(pair{2, 1})
	tr.Insert(pair{2, 2})
	tr.Insert(pair{3, 0})

	it := tr.Find(pair{2, 1})
	assert.True(t, it.Valid())
	assert.Equal(t, pair{2, 1}, it.Value())

	first := tr.FindFirst(func(v pair) int { return 2 - v.primary })
	assert.True(t, first.Valid())
	assert.Equal(t, pair{2, 0}, first.Value())

	assert.False(t, tr.Find(pair{9, 0}).Valid())
}

func TestRemoveKeepsOrderAndBalance(t *testing.T) {
	tr := New[pair](cmpPair)
	r := rand.New(rand.NewSource(1))
	var inserted []pair
	for i := 0; i < 500; i++ {
		v := pair{primary: r.Intn(200), secondary: i}
		tr.Insert(v)
		inserted = append(inserted, v)
	}

	// Remove roughly half.
	for i, v := range inserted {
		if i%2 == 0 {
			assert.True(t, tr.Remove(v))
		}
	}

	var prev *pair
	count := 0
	for it := tr.First(); it.Valid(); it = it.Next() {
		v := it.Value()
		if prev != nil {
			assert.True(t, cmpPair(*prev, v) <= 0)
		}
		prev = &v
		count++
	}
	assert.Equal(t, tr.Len(), count)
	assert.Equal(t, 250, tr.Len())
	assertBalanced(t, tr)
}

// assertBalanced walks the tree checking every node's balance factor stays
// within [-1, 1], the AVL invariant.
func assertBalanced(t *testing.T, tr *Tree[pair]) {
	var height func(n *node[pair]) int
	height = func(n *node[pair]) int {
		if n == nil {
			return 0
		}
		lh := height(n.left)
		rh := height(n.right)
		diff := lh - rh
		assert.True(t, diff >= -1 && diff <= 1, "unbalanced node %v: %d vs %d", n.value, lh, rh)
		if lh > rh {
			return lh + 1
		}
		return rh + 1
	}
	height(tr.root)
}

func TestIteratorRemoveCurrentAdvancesCorrectly(t *testing.T) {
	tr := New[pair](cmpPair)
	for i := 0; i < 5; i++ {
		tr.Insert(pair{i, 0})
	}

	it := tr.Find(pair{2, 0})
	next := it.Next()
	it.RemoveCurrent()

	assert.False(t, it.Valid())
	assert.True(t, next.Valid())
	assert.Equal(t, pair{3, 0}, next.Value())
	assert.Equal(t, 4, tr.Len())
}
