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
	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

// FindEntry looks up a child by name without allocating anything, mirroring
// Directory::FindEntry.
func (d *Node) FindEntry(name string) *Entry {
	if d.Type != TypeDirectory {
		return nil
	}
	for _, e := range d.Dir.Children {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindNode is FindEntry().Target, returning nil if the entry does not
// exist.
func (d *Node) FindNode(name string) *Node {
	e := d.FindEntry(name)
	if e == nil {
		return nil
	}
	return e.Target
}

// AddEntry links entry into d's children list and the target's referrers
// list. It does not register the entry in any table — that is the Volume's
// DirectoryEntryTable, updated by the caller in the same atomic step.
func (d *Node) AddEntry(entry *Entry) error {
	const op = "Directory.AddEntry"
	if d.Type != TypeDirectory {
		return ramfserrors.New(ramfserrors.NotADirectory, op, nil)
	}
	if d.removed {
		return ramfserrors.New(ramfserrors.NotAllowed, op, nil)
	}
	if d.FindEntry(entry.Name) != nil {
		return ramfserrors.New(ramfserrors.AlreadyExists, op, nil)
	}
	if entry.Target.Type == TypeDirectory && len(entry.Target.Referrers) > 0 {
		return ramfserrors.New(ramfserrors.NotAllowed, op, nil) // a directory has at most one referrer
	}

	entry.Parent = d
	d.Dir.Children = append(d.Dir.Children, entry)
	entry.Target.Referrers = append(entry.Target.Referrers, entry)
	return nil
}

// RemoveEntry unlinks entry from d's children and from its target's
// referrers list, advancing any suspended EntryIterator attached to it, but
// does not delete the entry from any external table.
func (d *Node) RemoveEntry(entry *Entry) error {
	const op = "Directory.RemoveEntry"
	idx := -1
	for i, e := range d.Dir.Children {
		if e == entry {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ramfserrors.New(ramfserrors.NotFound, op, nil)
	}

	var successor *Entry
	if idx+1 < len(d.Dir.Children) {
		successor = d.Dir.Children[idx+1]
	}
	entry.advanceAttachedIterators(successor)

	d.Dir.Children = append(d.Dir.Children[:idx], d.Dir.Children[idx+1:]...)
	removeEntryFromReferrers(entry.Target, entry)
	entry.Parent = nil

	if len(entry.Target.Referrers) == 0 {
		entry.Target.removed = true
	}
	return nil
}

// DeleteEntry removes entry from d exactly as RemoveEntry does; it has no
// separate unlink step and re-adds nothing on failure.
func (d *Node) DeleteEntry(entry *Entry) error {
	if err := d.RemoveEntry(entry); err != nil {
		return err
	}
	return nil
}

func removeEntryFromReferrers(n *Node, entry *Entry) {
	for i, e := range n.Referrers {
		if e == entry {
			n.Referrers = append(n.Referrers[:i], n.Referrers[i+1:]...)
			return
		}
	}
}

// CreateChild is the shared core of create_dir/create_file/create_symlink:
// it allocates a node of the requested type, links an entry to it under
// name, and returns both as one atomic step. Publishing to the VFS and
// NodeTable/DirectoryEntryTable registration are the Volume's
// responsibility, since this package does not own those tables.
func (d *Node) CreateChild(name string, child *Node) (*Entry, error) {
	const op = "Directory.CreateChild"
	if d.Type != TypeDirectory {
		return nil, ramfserrors.New(ramfserrors.NotADirectory, op, nil)
	}
	entry := &Entry{Name: name, Target: child}
	if err := d.AddEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// IsEmpty reports whether a directory has no children. Volume.Rmdir and
// Volume.Rename refuse to remove a directory for which it is false; its
// children are not deleted on the caller's behalf.
func (d *Node) IsEmpty() bool {
	return d.Type == TypeDirectory && len(d.Dir.Children) == 0
}

// advanceAttachedIterators moves every iterator attached to e onto
// successor (or marks it Done if successor is nil), per the entry-unlink
// state machine below.
func (e *Entry) advanceAttachedIterators(successor *Entry) {
	for _, it := range e.attachedIterators {
		it.advanceFrom(e, successor)
	}
	e.attachedIterators = nil
}
