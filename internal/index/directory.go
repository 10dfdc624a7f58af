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

package index

import (
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

// specialIndexNames are the three indices every volume carries regardless
// of whether a query ever asks for them, mirroring
// IndexDirectory::IsSpecialIndex's name check against "name",
// "last_modified", and "size".
var specialIndexNames = map[string]bool{
	"name":          true,
	"last_modified": true,
	"size":          true,
}

// Directory is the per-volume catalog of indices: the three special
// indices, always present, plus zero or more user-created attribute
// indices, grounded on IndexDirectory.h/.cpp.
type Directory struct {
	name         *NameIndex
	size         *SizeIndex
	lastModified *LastModifiedIndex
	attrs        map[string]*AttributeIndex
}

// NewDirectory builds the special indices, wiring them to the buses a
// Volume dispatches node/entry lifecycle events on.
func NewDirectory(nodes *NodeBus, entries *EntryBus) *Directory {
	return &Directory{
		name:         NewNameIndex(entries),
		size:         NewSizeIndex(nodes),
		lastModified: NewLastModifiedIndex(nodes),
		attrs:        make(map[string]*AttributeIndex),
	}
}

// Name, Size, LastModified return the volume's three always-present
// special indices.
func (d *Directory) Name() *NameIndex                 { return d.name }
func (d *Directory) Size() *SizeIndex                 { return d.size }
func (d *Directory) LastModified() *LastModifiedIndex { return d.lastModified }

// IsSpecialIndex reports whether name denotes one of the three indices
// every volume always carries.
func IsSpecialIndex(name string) bool { return specialIndexNames[name] }

// CreateIndex adds a user-requested attribute index, mirroring
// IndexDirectory::CreateIndex. Fails if name is one of the special index
// names or an index over that attribute already exists.
func (d *Directory) CreateIndex(attrName string, t nodegraph.AttrType) (*AttributeIndex, error) {
	const op = "index.Directory.CreateIndex"
	if IsSpecialIndex(attrName) {
		return nil, ramfserrors.New(ramfserrors.AlreadyExists, op, nil)
	}
	if _, ok := d.attrs[attrName]; ok {
		return nil, ramfserrors.New(ramfserrors.AlreadyExists, op, nil)
	}
	idx := NewAttributeIndex(attrName, t)
	d.attrs[attrName] = idx
	return idx, nil
}

// DeleteIndex removes a previously created attribute index. Special
// indices can never be deleted.
func (d *Directory) DeleteIndex(attrName string) error {
	const op = "index.Directory.DeleteIndex"
	if IsSpecialIndex(attrName) {
		return ramfserrors.New(ramfserrors.NotAllowed, op, nil)
	}
	if _, ok := d.attrs[attrName]; !ok {
		return ramfserrors.New(ramfserrors.NotFound, op, nil)
	}
	delete(d.attrs, attrName)
	return nil
}

// FindIndex resolves any index (special or attribute) by its external
// name, mirroring IndexDirectory::FindIndex.
func (d *Directory) FindIndex(name string) (Info, bool) {
	switch name {
	case "name":
		return d.name.Info(), true
	case "size":
		return d.size.Info(), true
	case "last_modified":
		return d.lastModified.Info(), true
	}
	if idx, ok := d.attrs[name]; ok {
		return idx.Info(), true
	}
	return Info{}, false
}

// FindAttributeIndex resolves a user-created attribute index by the
// attribute name it covers, mirroring IndexDirectory::FindAttributeIndex.
func (d *Directory) FindAttributeIndex(attrName string) (*AttributeIndex, bool) {
	idx, ok := d.attrs[attrName]
	return idx, ok
}

// NotifyAttributeAdded, NotifyAttributeRemoved, and NotifyAttributeChanged
// forward an attribute lifecycle event to the one AttributeIndex (if any)
// covering that attribute's name — the direct-call path AttributeIndex.h
// uses instead of a listener bus.
func (d *Directory) NotifyAttributeAdded(owner *nodegraph.Node, a *nodegraph.Attribute) {
	if idx, ok := d.attrs[a.Name]; ok {
		idx.Added(owner, a)
	}
}

func (d *Directory) NotifyAttributeRemoved(owner *nodegraph.Node, a *nodegraph.Attribute) {
	if idx, ok := d.attrs[a.Name]; ok {
		idx.Removed(owner, a)
	}
}

func (d *Directory) NotifyAttributeChanged(owner *nodegraph.Node, a *nodegraph.Attribute, oldBytes []byte) {
	if idx, ok := d.attrs[a.Name]; ok {
		idx.Changed(owner, a, oldBytes)
	}
}
