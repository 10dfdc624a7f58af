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
	"github.com/ramfuse/ramfs/internal/datacontainer"
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

// attrBytes copies out an attribute's current raw value, used to capture
// the "old" value before a write so NotifyAttributeChanged can re-key the
// index it belongs to.
func attrBytes(a *nodegraph.Attribute) []byte {
	if a.Container == nil {
		return nil
	}
	buf := make([]byte, a.Container.Size())
	a.Container.ReadAt(0, buf)
	return buf
}

// CreateAttribute attaches a new named attribute to n, seeding its value
// and notifying any AttributeIndex covering attrName.
func (v *Volume) CreateAttribute(n *nodegraph.Node, name string, typ nodegraph.AttrType, value []byte) (*nodegraph.Attribute, error) {
	container := datacontainer.New(v.alloc, v.cfg.BlockSize)
	if len(value) > 0 {
		if err := container.WriteAt(0, value); err != nil {
			return nil, err
		}
	}
	attr, err := n.CreateAttribute(name, typ, container)
	if err != nil {
		return nil, err
	}
	v.indexDir.NotifyAttributeAdded(n, attr)
	return attr, nil
}

// WriteAttribute overwrites an existing attribute's value in place,
// capturing its prior bytes so the owning index (if any) can re-key
// itself rather than simply dropping and re-adding the record.
func (v *Volume) WriteAttribute(n *nodegraph.Node, name string, value []byte) error {
	const op = "Volume.WriteAttribute"
	attr := n.FindAttribute(name)
	if attr == nil {
		return ramfserrors.New(ramfserrors.NotFound, op, nil)
	}
	old := attrBytes(attr)
	if err := attr.Container.Resize(uint64(len(value))); err != nil {
		return err
	}
	if len(value) > 0 {
		if err := attr.Container.WriteAt(0, value); err != nil {
			return err
		}
	}
	v.indexDir.NotifyAttributeChanged(n, attr, old)
	return nil
}

// RemoveAttribute detaches a named attribute from n, notifying its index
// before unlinking it so the index's Removed hook can still read the
// attribute's final value off the container.
func (v *Volume) RemoveAttribute(n *nodegraph.Node, name string) error {
	const op = "Volume.RemoveAttribute"
	attr := n.FindAttribute(name)
	if attr == nil {
		return ramfserrors.New(ramfserrors.NotFound, op, nil)
	}
	v.indexDir.NotifyAttributeRemoved(n, attr)
	return n.RemoveAttribute(attr)
}

// CreateIndex registers a new attribute index over attrName, delegating
// to the index catalog and rejecting the volume's own reserved/special
// names the same way it does.
func (v *Volume) CreateIndex(attrName string, t nodegraph.AttrType) error {
	_, err := v.indexDir.CreateIndex(attrName, t)
	if err == nil && v.counters != nil {
		v.counters.IndexOps.WithLabelValues("create").Inc()
	}
	return err
}

// DeleteIndex removes a previously created attribute index.
func (v *Volume) DeleteIndex(attrName string) error {
	err := v.indexDir.DeleteIndex(attrName)
	if err == nil && v.counters != nil {
		v.counters.IndexOps.WithLabelValues("delete").Inc()
	}
	return err
}
