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

// Lookup resolves a child of dir by name, mirroring Volume::Lookup. Every
// method in this file assumes the caller holds the main lock (LOCKS_
// REQUIRED(v.mu), in gcsfuse's doc-comment convention).
func (v *Volume) Lookup(dir *nodegraph.Node, name string) (*nodegraph.Node, error) {
	const op = "Volume.Lookup"
	if dir.Type != nodegraph.TypeDirectory {
		return nil, ramfserrors.New(ramfserrors.NotADirectory, op, nil)
	}
	e, ok := v.FindEntry(dir.ID, name)
	if !ok {
		return nil, ramfserrors.New(ramfserrors.NotFound, op, nil)
	}
	return e.Target, nil
}

// CreateDir creates a new, empty directory named name under dir.
func (v *Volume) CreateDir(dir *nodegraph.Node, name string, mode uint32) (*nodegraph.Node, error) {
	return v.createChild(dir, name, nodegraph.NewDirectory(v.allocID(), mode))
}

// CreateFile creates a new, empty file named name under dir.
func (v *Volume) CreateFile(dir *nodegraph.Node, name string, mode uint32) (*nodegraph.Node, error) {
	container := datacontainer.New(v.alloc, v.cfg.BlockSize)
	return v.createChild(dir, name, nodegraph.NewFile(v.allocID(), mode, container))
}

// CreateSymlink creates a new symlink named name under dir, pointing at
// target.
func (v *Volume) CreateSymlink(dir *nodegraph.Node, name, target string) (*nodegraph.Node, error) {
	return v.createChild(dir, name, nodegraph.NewSymLink(v.allocID(), 0o777, target))
}

func (v *Volume) createChild(dir *nodegraph.Node, name string, child *nodegraph.Node) (*nodegraph.Node, error) {
	const op = "Volume.createChild"
	if dir.Type != nodegraph.TypeDirectory {
		return nil, ramfserrors.New(ramfserrors.NotADirectory, op, nil)
	}
	entry, err := dir.CreateChild(name, child)
	if err != nil {
		return nil, err
	}
	v.registerNode(child)
	v.registerEntry(entry)
	v.notifyLiveQueries(child.ID, true)
	if v.counters != nil {
		v.counters.NodesAllocated.WithLabelValues(nodeTypeLabel(child.Type)).Inc()
	}
	return child, nil
}

// Unlink removes a non-directory entry named name from dir, freeing its
// target node once no entry or open handle references it.
func (v *Volume) Unlink(dir *nodegraph.Node, name string) error {
	const op = "Volume.Unlink"
	e, ok := v.FindEntry(dir.ID, name)
	if !ok {
		return ramfserrors.New(ramfserrors.NotFound, op, nil)
	}
	if e.Target.Type == nodegraph.TypeDirectory {
		return ramfserrors.New(ramfserrors.IsADirectory, op, nil)
	}
	return v.removeEntry(dir, e)
}

// Rmdir removes an empty directory entry named name from dir.
func (v *Volume) Rmdir(dir *nodegraph.Node, name string) error {
	const op = "Volume.Rmdir"
	e, ok := v.FindEntry(dir.ID, name)
	if !ok {
		return ramfserrors.New(ramfserrors.NotFound, op, nil)
	}
	if e.Target.Type != nodegraph.TypeDirectory {
		return ramfserrors.New(ramfserrors.NotADirectory, op, nil)
	}
	if !e.Target.IsEmpty() {
		return ramfserrors.New(ramfserrors.DirectoryNotEmpty, op, nil)
	}
	return v.removeEntry(dir, e)
}

func (v *Volume) removeEntry(dir *nodegraph.Node, e *nodegraph.Entry) error {
	target := e.Target
	if err := dir.RemoveEntry(e); err != nil {
		return err
	}
	v.unregisterEntry(dir.ID, e.Name, e)
	// A node is only actually freed once it has no entries AND the VFS
	// layer holds no reference on it (see Publish/Get/Put in vnode.go) —
	// entry removal alone never frees a node with a live kernel handle.
	if target.IsRemoved() && target.RefCount == 0 {
		v.freeNode(target)
	}
	v.notifyLiveQueries(target.ID, !target.IsRemoved())
	return nil
}

// Link attaches an additional entry named name under dir pointing at an
// already-existing node, mirroring the VFS surface's link op. Files may
// carry more than one referrer; directories may not. If target was
// previously unlinked but kept alive by an open handle, linking a new
// entry to it cancels the pending removal.
func (v *Volume) Link(dir *nodegraph.Node, name string, target *nodegraph.Node) error {
	const op = "Volume.Link"
	if dir.Type != nodegraph.TypeDirectory {
		return ramfserrors.New(ramfserrors.NotADirectory, op, nil)
	}
	entry := &nodegraph.Entry{Name: name, Target: target}
	if err := dir.AddEntry(entry); err != nil {
		return err
	}
	if target.IsRemoved() {
		target.Unremove()
	}
	v.registerEntry(entry)
	v.notifyLiveQueries(target.ID, true)
	return nil
}

func (v *Volume) freeNode(n *nodegraph.Node) {
	if n.Type == nodegraph.TypeFile {
		_ = n.File.Container.Resize(0)
	}
	v.unregisterNode(n)
	if v.counters != nil {
		v.counters.NodesFreed.WithLabelValues(nodeTypeLabel(n.Type)).Inc()
	}
}

// Rename moves (or renames in place) the entry named oldName under oldDir
// to newName under newDir, mirroring Volume::Rename's "unlink destination
// if present, then relink" sequence.
func (v *Volume) Rename(oldDir *nodegraph.Node, oldName string, newDir *nodegraph.Node, newName string) error {
	const op = "Volume.Rename"
	e, ok := v.FindEntry(oldDir.ID, oldName)
	if !ok {
		return ramfserrors.New(ramfserrors.NotFound, op, nil)
	}

	if existing, ok := v.FindEntry(newDir.ID, newName); ok {
		if existing.Target.Type == nodegraph.TypeDirectory {
			if !existing.Target.IsEmpty() {
				return ramfserrors.New(ramfserrors.DirectoryNotEmpty, op, nil)
			}
		}
		if err := v.removeEntry(newDir, existing); err != nil {
			return err
		}
	}

	if err := oldDir.RemoveEntry(e); err != nil {
		return err
	}
	v.unregisterEntry(oldDir.ID, oldName, e)

	e.Name = newName
	if err := newDir.AddEntry(e); err != nil {
		// best-effort restore under the old name so the volume isn't left
		// with a dangling, unregistered entry
		e.Name = oldName
		_ = oldDir.AddEntry(e)
		v.registerEntry(e)
		return err
	}
	v.registerEntry(e)
	return nil
}
