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

import "github.com/ramfuse/ramfs/internal/iterutil"

// EntryIterator walks a directory's children in insertion order. Dot and
// dot-dot are synthesized by callers (e.g. fuseadapter), not stored or
// iterated here.
type EntryIterator struct {
	dir   *Node
	state iterutil.State
	idx   int // index into dir.Dir.Children when Advancing/Fresh
	cur   *Entry
}

// NewEntryIterator creates an iterator rewound to the start of dir's
// children.
func NewEntryIterator(dir *Node) *EntryIterator {
	return &EntryIterator{dir: dir, state: iterutil.Fresh}
}

// Rewind returns the iterator to its initial, unadvanced state.
func (it *EntryIterator) Rewind() {
	it.state = iterutil.Fresh
	it.idx = 0
	it.cur = nil
}

// GetNext advances to and returns the next entry, or nil once exhausted.
func (it *EntryIterator) GetNext() *Entry {
	if it.state == iterutil.Done {
		return nil
	}
	if it.state == iterutil.Suspended {
		// A GetNext while suspended resumes first; idx already points at a
		// removed entry's successor if advanceFrom ran.
		it.Resume()
	}

	children := it.dir.Dir.Children
	if it.idx >= len(children) {
		it.state = iterutil.Done
		it.cur = nil
		return nil
	}
	it.cur = children[it.idx]
	it.idx++
	it.state = iterutil.Advancing
	return it.cur
}

// Suspend attaches the iterator to its current entry's notification list
// so a concurrent removal can advance it. The caller is expected to
// actually drop the volume's main lock around the suspended region; this
// just does the bookkeeping.
func (it *EntryIterator) Suspend() {
	if it.cur == nil {
		return
	}
	it.state = iterutil.Suspended
	it.cur.attachedIterators = append(it.cur.attachedIterators, it)
}

// Resume detaches the iterator from its current entry's notification list
// and resumes iteration from whatever position advanceFrom left it at.
func (it *EntryIterator) Resume() {
	if it.state != iterutil.Suspended {
		return
	}
	if it.cur != nil {
		removeIteratorFromEntry(it.cur, it)
	}
	it.state = iterutil.Advancing
}

// RemoveCurrent deletes the entry the iterator currently points at, via the
// parent directory, advancing the iterator itself to the successor.
func (it *EntryIterator) RemoveCurrent() error {
	if it.cur == nil {
		return nil
	}
	e := it.cur
	next := nextSibling(e)
	if err := it.dir.RemoveEntry(e); err != nil {
		return err
	}
	// RemoveEntry already advanced any attached iterators (including this
	// one, if suspended); if not suspended, advance manually here.
	if it.state != iterutil.Suspended {
		it.advanceFrom(e, next)
	}
	return nil
}

func nextSibling(e *Entry) *Entry {
	if e.Parent == nil {
		return nil
	}
	for i, c := range e.Parent.Dir.Children {
		if c == e {
			if i+1 < len(e.Parent.Dir.Children) {
				return e.Parent.Dir.Children[i+1]
			}
			return nil
		}
	}
	return nil
}

// advanceFrom is called by Entry removal to move the iterator off of a
// removed entry and onto its successor.
func (it *EntryIterator) advanceFrom(removed, successor *Entry) {
	if it.cur != removed {
		return
	}
	it.cur = successor
	// The removed entry sat at idx-1; once it leaves the slice its
	// successor takes that slot, so step back to yield the successor next.
	if it.idx > 0 {
		it.idx--
	}
	if successor == nil {
		it.state = iterutil.Done
	}
}

func removeIteratorFromEntry(e *Entry, it *EntryIterator) {
	for i, x := range e.attachedIterators {
		if x == it {
			e.attachedIterators = append(e.attachedIterators[:i], e.attachedIterators[i+1:]...)
			return
		}
	}
}
