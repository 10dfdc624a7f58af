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

package query

import (
	"sync"

	"github.com/google/uuid"
	"github.com/ramfuse/ramfs/internal/nodegraph"
)

// UpdateKind distinguishes a node entering or leaving a live query's match
// set, mirroring the B_ENTRY_CREATED/B_ENTRY_REMOVED events
// Query::LiveUpdate delivers to a subscribed port.
type UpdateKind int

const (
	EntryCreated UpdateKind = iota
	EntryRemoved
)

// Update is one live-query notification.
type Update struct {
	Kind UpdateKind
	Node nodegraph.NodeID
}

// LiveQuery tracks one subscriber's compiled predicate and the set of
// nodes it currently matches, so a re-evaluation can tell a still-matching
// node from one that just started or stopped matching. Identified by a
// uuid token rather than the original's (port, token) pair, since this
// domain has no kernel port to address a notification to.
type LiveQuery struct {
	Token   string
	Program Program

	mu      sync.Mutex
	matched map[nodegraph.NodeID]bool
	updates chan Update
}

// NewLiveQuery wraps a compiled program as a live subscription with a
// buffered update channel; a slow or absent consumer drops updates rather
// than blocking the volume's mutation path.
func NewLiveQuery(program Program) *LiveQuery {
	return &LiveQuery{
		Token:   uuid.NewString(),
		Program: program,
		matched: make(map[nodegraph.NodeID]bool),
		updates: make(chan Update, 256),
	}
}

// Updates returns the channel Created/Removed transitions are delivered
// on.
func (lq *LiveQuery) Updates() <-chan Update { return lq.updates }

// Evaluate re-checks node against the query's predicate (via resolver,
// only consulted when exists is true) and emits an update if node's
// membership in the match set just changed.
func (lq *LiveQuery) Evaluate(node nodegraph.NodeID, resolver AttrResolver, exists bool) {
	lq.mu.Lock()
	defer lq.mu.Unlock()

	was := lq.matched[node]
	is := exists && lq.Program.Eval(resolver)
	if is == was {
		return
	}
	if is {
		lq.matched[node] = true
		lq.notifyLocked(EntryCreated, node)
	} else {
		delete(lq.matched, node)
		lq.notifyLocked(EntryRemoved, node)
	}
}

func (lq *LiveQuery) notifyLocked(kind UpdateKind, node nodegraph.NodeID) {
	select {
	case lq.updates <- Update{Kind: kind, Node: node}:
	default:
	}
}

// Registry is the volume-wide set of active live queries, grounded on
// Volume's fQueries DoublyLinkedList<Query>.
type Registry struct {
	mu      sync.Mutex
	queries map[string]*LiveQuery
}

// NewRegistry creates an empty live-query registry.
func NewRegistry() *Registry { return &Registry{queries: make(map[string]*LiveQuery)} }

// Register adds lq to the registry.
func (r *Registry) Register(lq *LiveQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[lq.Token] = lq
}

// Unregister removes a live query by token, mirroring the volume's query
// deregistration on handle close.
func (r *Registry) Unregister(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.queries, token)
}

// Len reports how many live queries are currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

// NotifyNode re-evaluates every registered live query against node,
// called by the volume after any mutation that could change node's
// attribute values (create, remove, write, setattr, attribute change).
func (r *Registry) NotifyNode(node nodegraph.NodeID, resolver AttrResolver, exists bool) {
	r.mu.Lock()
	queries := make([]*LiveQuery, 0, len(r.queries))
	for _, q := range r.queries {
		queries = append(queries, q)
	}
	r.mu.Unlock()

	for _, q := range queries {
		q.Evaluate(node, resolver, exists)
	}
}
