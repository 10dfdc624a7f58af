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

package fuseadapter

import (
	"sync"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/ramfuse/ramfs/internal/volume"
)

// dirHandle serves ReadDir against a snapshot of a directory's children
// taken under its own lock, mirroring dirHandle's role in fs/dir_handle.go
// while matching the newer fuseops.ReadDirOp, offset-addressed contract
// (distr1-distri's fuse.go ReadDir shows this generation's Dirent/
// WriteDirent/DirOffset usage). Dot and dot-dot are synthesized here, as
// nodegraph.EntryIterator's doc comment calls for.
type dirHandle struct {
	mu   sync.Mutex
	node *nodegraph.Node
}

func newDirHandle(node *nodegraph.Node) *dirHandle {
	return &dirHandle{node: node}
}

func direntType(n *nodegraph.Node) fuseutil.DirentType {
	switch n.Type {
	case nodegraph.TypeDirectory:
		return fuseutil.DT_Directory
	case nodegraph.TypeSymLink:
		return fuseutil.DT_Link
	default:
		return fuseutil.DT_File
	}
}

// snapshot walks the directory fresh each call via a nodegraph
// EntryIterator, so a ReadDir always reflects the directory's current
// contents rather than a token-based page cached from an earlier call.
func (dh *dirHandle) snapshot() []fuseutil.Dirent {
	parentID := dh.node.ID
	if len(dh.node.Referrers) > 0 && dh.node.Referrers[0].Parent != nil {
		parentID = dh.node.Referrers[0].Parent.ID
	}

	entries := []fuseutil.Dirent{
		{Offset: 1, Inode: inodeID(dh.node.ID), Name: ".", Type: fuseutil.DT_Directory},
		{Offset: 2, Inode: inodeID(parentID), Name: "..", Type: fuseutil.DT_Directory},
	}

	it := nodegraph.NewEntryIterator(dh.node)
	for e := it.GetNext(); e != nil; e = it.GetNext() {
		entries = append(entries, fuseutil.Dirent{
			Offset: fuseops.DirOffset(len(entries) + 1),
			Inode:  inodeID(e.Target.ID),
			Name:   e.Name,
			Type:   direntType(e.Target),
		})
	}
	return entries
}

// ReadDir fills op.Dst starting at op.Offset, mirroring the
// entries[op.Offset:] / fuseutil.WriteDirent loop every fuseops-generation
// FileSystem implementation in the pack uses. vol's lock is taken only
// around the snapshot itself: dh.mu (the handle lock) is acquired first
// and held for the whole call, then vol's lock second, per the acquire-
// handle-then-volume-lock ordering fs.fileSystem documents.
func (dh *dirHandle) ReadDir(op *fuseops.ReadDirOp, vol *volume.Volume) error {
	dh.mu.Lock()
	defer dh.mu.Unlock()

	vol.Lock()
	entries := dh.snapshot()
	vol.Unlock()

	if int(op.Offset) > len(entries) {
		return fuse.EIO
	}

	for _, e := range entries[op.Offset:] {
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], e)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}
	return nil
}
