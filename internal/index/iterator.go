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

import "github.com/ramfuse/ramfs/internal/iterutil"

// Iterator walks a snapshot of matching records, mirroring
// IndexEntryIterator's GetNext/GetPrevious/Suspend/Resume contract. A
// record that was removed from the index between the snapshot and the
// step that would have returned it is skipped rather than surfaced, since
// the snapshot itself can't observe the removal directly.
type Iterator struct {
	owner   *base
	records []Record
	pos     int
	state   iterutil.State
}

func newIterator(owner *base, records []Record) *Iterator {
	return &Iterator{owner: owner, records: records, state: iterutil.Fresh}
}

// GetNext returns the next still-present record, or ok=false once the
// snapshot is exhausted.
func (it *Iterator) GetNext() (Record, bool) {
	if it.state == iterutil.Done {
		return Record{}, false
	}
	for it.pos < len(it.records) {
		r := it.records[it.pos]
		it.pos++
		if it.owner.tree.Find(r) != nil {
			it.state = iterutil.Advancing
			return r, true
		}
	}
	it.state = iterutil.Done
	return Record{}, false
}

// GetPrevious steps backward through the snapshot with the same liveness
// check as GetNext.
func (it *Iterator) GetPrevious() (Record, bool) {
	for it.pos > 0 {
		it.pos--
		r := it.records[it.pos]
		if it.owner.tree.Find(r) != nil {
			it.state = iterutil.Advancing
			return r, true
		}
	}
	it.state = iterutil.Fresh
	return Record{}, false
}

// Suspend and Resume are bookkeeping only: since the iterator walks an
// immutable snapshot rather than the live tree, there is nothing to detach
// from or reattach to. They exist so callers that generically suspend
// every kind of iterator around a lock release don't need a type switch.
func (it *Iterator) Suspend() {
	if it.state != iterutil.Done {
		it.state = iterutil.Suspended
	}
}

func (it *Iterator) Resume() {
	if it.state == iterutil.Suspended {
		it.state = iterutil.Advancing
	}
}
