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
	"github.com/ramfuse/ramfs/internal/datacontainer"
	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

// FindAttribute looks up an attribute by name, mirroring Node::FindAttribute.
func (n *Node) FindAttribute(name string) *Attribute {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AddAttribute appends attr to n's insertion-ordered attribute list.
// Reserved names ("name", "size", "last_modified") are rejected since they
// shadow synthetic stat-derived pseudo-attributes.
func (n *Node) AddAttribute(attr *Attribute) error {
	const op = "Node.AddAttribute"
	if ReservedAttrNames[attr.Name] {
		return ramfserrors.New(ramfserrors.NotAllowed, op, nil)
	}
	if n.FindAttribute(attr.Name) != nil {
		return ramfserrors.New(ramfserrors.AlreadyExists, op, nil)
	}
	attr.Owner = n
	n.Attributes = append(n.Attributes, attr)
	return nil
}

// RemoveAttribute detaches attr from n's attribute list without freeing its
// underlying storage — the caller (internal/volume) owns notifying any
// index the attribute belongs to before dropping the last reference.
func (n *Node) RemoveAttribute(attr *Attribute) error {
	const op = "Node.RemoveAttribute"
	for i, a := range n.Attributes {
		if a == attr {
			n.Attributes = append(n.Attributes[:i], n.Attributes[i+1:]...)
			return nil
		}
	}
	return ramfserrors.New(ramfserrors.NotFound, op, nil)
}

// CreateAttribute allocates a zero-length attribute of the given name/type
// and adds it to n.
func (n *Node) CreateAttribute(name string, typ AttrType, container *datacontainer.Container) (*Attribute, error) {
	attr := &Attribute{Name: name, Type: typ, Container: container}
	if err := n.AddAttribute(attr); err != nil {
		return nil, err
	}
	return attr, nil
}

// AttributeIterator walks a node's attributes in insertion order, mirroring
// AttributeIterator.cpp/.h.
type AttributeIterator struct {
	node *Node
	idx  int
}

// NewAttributeIterator creates an iterator rewound to the start of node's
// attributes.
func NewAttributeIterator(node *Node) *AttributeIterator {
	return &AttributeIterator{node: node}
}

// Rewind resets the iterator to its initial position.
func (it *AttributeIterator) Rewind() { it.idx = 0 }

// GetNext returns the next attribute, or nil once exhausted.
func (it *AttributeIterator) GetNext() *Attribute {
	if it.idx >= len(it.node.Attributes) {
		return nil
	}
	a := it.node.Attributes[it.idx]
	it.idx++
	return a
}
