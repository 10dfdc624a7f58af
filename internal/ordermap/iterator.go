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

// Iterator is bidirectional and restartable. Once its RemoveCurrent is
// called it is no longer Valid. Removing a node with two children moves
// its successor's value into that node and unlinks the successor's node,
// so another iterator obtained before a removal (including one from
// Next/Prev) is not guaranteed to still be positioned in the tree.
type Iterator[V any] struct {
	tree *Tree[V]
	n    *node[V]
}

// Valid reports whether the iterator currently designates a value.
func (it *Iterator[V]) Valid() bool { return it != nil && it.n != nil }

// Value returns the value at the iterator's current position.
func (it *Iterator[V]) Value() V {
	var zero V
	if it == nil || it.n == nil {
		return zero
	}
	return it.n.value
}

// Next advances to the next value in ascending order and returns the
// iterator itself (nil once exhausted).
func (it *Iterator[V]) Next() *Iterator[V] {
	if it == nil || it.n == nil {
		return nil
	}
	n := successor(it.n)
	if n == nil {
		return nil
	}
	return &Iterator[V]{tree: it.tree, n: n}
}

// Prev moves to the previous value in ascending order.
func (it *Iterator[V]) Prev() *Iterator[V] {
	if it == nil || it.n == nil {
		return nil
	}
	n := predecessor(it.n)
	if n == nil {
		return nil
	}
	return &Iterator[V]{tree: it.tree, n: n}
}
