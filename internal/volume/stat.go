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
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

func unsupportedErr(op string) error {
	return ramfserrors.New(ramfserrors.Unsupported, op, nil)
}

// Truncate resizes a file node's data, re-keying the size index and
// notifying live queries of the change, mirroring Volume::SetFileSize
// followed by its SizeIndex::Changed / LiveUpdate pair.
func (v *Volume) Truncate(n *nodegraph.Node, newSize uint64) error {
	oldSize := n.Size()
	if err := n.SetSize(newSize); err != nil {
		return err
	}
	v.indexDir.Size().Changed(n, oldSize)
	v.notifyLiveQueries(n.ID, true)
	return nil
}

// Touch updates a node's mtime/ctime, re-keying the last-modified index,
// mirroring Volume::MarkModified's stat-changed notification path.
func (v *Volume) Touch(n *nodegraph.Node, ctime, mtime int64) {
	oldMTime := uint64(n.MTime)
	n.CTime = ctime
	n.MTime = mtime
	n.ModifiedFlags |= nodegraph.StatMTime | nodegraph.StatCTime
	v.indexDir.LastModified().Changed(n, oldMTime)
	v.notifyLiveQueries(n.ID, true)
}

// Write writes buf at offset into a file node's data container, resizing
// it first if the write extends past the current end, then re-keys the
// size index (if the file grew) and notifies live queries. It leaves
// mtime/ctime and the last-modified index unchanged; Touch updates those.
func (v *Volume) Write(n *nodegraph.Node, offset uint64, buf []byte) (int, error) {
	const op = "Volume.Write"
	if n.Type != nodegraph.TypeFile {
		return 0, unsupportedErr(op)
	}
	end := offset + uint64(len(buf))
	oldSize := n.Size()
	if end > oldSize {
		if err := n.SetSize(end); err != nil {
			return 0, err
		}
	}
	if err := n.File.Container.WriteAt(offset, buf); err != nil {
		return 0, err
	}
	if end > oldSize {
		v.indexDir.Size().Changed(n, oldSize)
	}
	v.notifyLiveQueries(n.ID, true)
	return len(buf), nil
}

// Read copies up to len(buf) bytes starting at offset out of a file
// node's data container.
func (v *Volume) Read(n *nodegraph.Node, offset uint64, buf []byte) (int, error) {
	const op = "Volume.Read"
	if n.Type != nodegraph.TypeFile {
		return 0, unsupportedErr(op)
	}
	return n.File.Container.ReadAt(offset, buf), nil
}
