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

// Package ordermap is a self-balancing binary search tree parameterized by a
// two-key comparator: items are primarily ordered by one field and, among
// equal primary keys, by a second. It backs every index in internal/index —
// name, size, last-modified, and attribute indices all share this one tree,
// differing only in their comparator.
//
// Grounded on AVLTree.h's node layout (value, parent, left, right,
// balance_factor) and rotation rules; expressed with Go generics rather than
// C++ templates.
package ordermap

// Comparator orders two values by (primary key, secondary key). It must
// return <0, 0, or >0 the way bytes.Compare does.
type Comparator[V any] func(a, b V) int

// PartialComparator orders a fixed primary key against a value v only, zero
// meaning "same primary key, not a full match": it returns <0 when the key
// sorts before v's primary key and >0 when after, the way
// bytes.Compare(key, vKey) does. Used by FindFirst to locate
// the leftmost value sharing a primary key while ignoring the secondary key
// entirely, mirroring AVLTree.h's Find(key) overload.
type PartialComparator[V any] func(v V) int

type node[V any] struct {
	value   V
	parent  *node[V]
	left    *node[V]
	right   *node[V]
	balance int
}

// Tree is a two-key AVL tree. The zero value is not usable; construct with
// New.
type Tree[V any] struct {
	root *node[V]
	size int
	cmp  Comparator[V]
}

// New constructs an empty tree ordered by cmp.
func New[V any](cmp Comparator[V]) *Tree[V] {
	return &Tree[V]{cmp: cmp}
}

// Len reports how many values the tree holds.
func (t *Tree[V]) Len() int { return t.size }

// Insert adds v and returns an iterator positioned on it. No value is
// rejected: one that compares equal to an existing value is placed after
// it. The indices keep pairs unique by using the node ID as the secondary
// key.
func (t *Tree[V]) Insert(v V) *Iterator[V] {
	n := &node[V]{value: v}
	if t.root == nil {
		t.root = n
		t.size++
		return &Iterator[V]{tree: t, n: n}
	}

	cur := t.root
	for {
		c := t.cmp(v, cur.value)
		if c < 0 {
			if cur.left == nil {
				cur.left = n
				n.parent = cur
				break
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = n
				n.parent = cur
				break
			}
			cur = cur.right
		}
	}
	t.size++
	t.rebalanceAfterInsert(n)
	return &Iterator[V]{tree: t, n: n}
}

// Find locates the exact (primary, secondary) match for v.
func (t *Tree[V]) Find(v V) *Iterator[V] {
	cur := t.root
	for cur != nil {
		c := t.cmp(v, cur.value)
		switch {
		case c == 0:
			return &Iterator[V]{tree: t, n: cur}
		case c < 0:
			cur = cur.left
		default:
			cur = cur.right
		}
	}
	return nil
}

// FindFirst locates the leftmost value whose primary key matches primary.
func (t *Tree[V]) FindFirst(primary PartialComparator[V]) *Iterator[V] {
	cur := t.root
	var match *node[V]
	for cur != nil {
		c := primary(cur.value)
		switch {
		case c == 0:
			match = cur
			cur = cur.left // keep looking left for an earlier equal key
		case c < 0:
			cur = cur.left
		default:
			cur = cur.right
		}
	}
	if match == nil {
		return nil
	}
	return &Iterator[V]{tree: t, n: match}
}

// Remove deletes the exact (primary, secondary) match for v, reporting
// whether it was present.
func (t *Tree[V]) Remove(v V) bool {
	it := t.Find(v)
	if it == nil {
		return false
	}
	it.RemoveCurrent()
	return true
}

// First returns an iterator on the smallest value, or nil if the tree is
// empty.
func (t *Tree[V]) First() *Iterator[V] {
	if t.root == nil {
		return nil
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return &Iterator[V]{tree: t, n: n}
}

// Last returns an iterator on the largest value, or nil if the tree is
// empty.
func (t *Tree[V]) Last() *Iterator[V] {
	if t.root == nil {
		return nil
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return &Iterator[V]{tree: t, n: n}
}

func minNode[V any](n *node[V]) *node[V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func maxNode[V any](n *node[V]) *node[V] {
	for n.right != nil {
		n = n.right
	}
	return n
}

func successor[V any](n *node[V]) *node[V] {
	if n.right != nil {
		return minNode(n.right)
	}
	p := n.parent
	for p != nil && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func predecessor[V any](n *node[V]) *node[V] {
	if n.left != nil {
		return maxNode(n.left)
	}
	p := n.parent
	for p != nil && n == p.left {
		n = p
		p = p.parent
	}
	return p
}
