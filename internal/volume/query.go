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
	"github.com/ramfuse/ramfs/internal/query"
)

// QueryResult is one matching node returned by RunQuery.
type QueryResult struct {
	Node *nodegraph.Node
}

// RunQuery parses, compiles, plans, and evaluates src once against the
// current node graph, mirroring Query::Create followed immediately by
// GetNextEntry until exhaustion rather than Query::LiveUpdate.
func (v *Volume) RunQuery(src string) ([]QueryResult, error) {
	expr, err := query.Parse(src)
	if err != nil {
		return nil, err
	}
	program := query.Compile(expr)
	seed := query.Plan(expr, v.indexDir)

	var candidates []nodegraph.NodeID
	if seed.FromIndex {
		candidates = seed.Nodes
	} else {
		for id := range v.nodes {
			candidates = append(candidates, id)
		}
	}

	var results []QueryResult
	for _, id := range candidates {
		n, ok := v.nodes[id]
		if !ok {
			continue
		}
		if program.Eval(nodeResolver{node: n}) {
			results = append(results, QueryResult{Node: n})
		}
	}
	if v.counters != nil {
		v.counters.QueriesRun.WithLabelValues("one_shot").Inc()
	}
	return results, nil
}

// LiveQuery is a subscription's token plus the channel its Created/Removed
// updates arrive on.
type LiveQuery struct {
	Token   string
	Updates <-chan query.Update
}

// CreateLiveQuery parses and compiles src, registers it as a standing
// subscription, and primes its match set against every node currently in
// the volume — mirroring Query::Create with liveUpdatesOn set, which
// evaluates the predicate once up front before tracking further changes.
func (v *Volume) CreateLiveQuery(src string) (LiveQuery, error) {
	expr, err := query.Parse(src)
	if err != nil {
		return LiveQuery{}, err
	}
	lq := query.NewLiveQuery(query.Compile(expr))

	v.queryMu.Lock()
	v.live.Register(lq)
	v.queryMu.Unlock()

	for id, n := range v.nodes {
		lq.Evaluate(id, nodeResolver{node: n}, true)
	}

	if v.counters != nil {
		v.counters.QueriesRun.WithLabelValues("live").Inc()
	}
	return LiveQuery{Token: lq.Token, Updates: lq.Updates()}, nil
}

// CloseLiveQuery deregisters a previously created live query by token.
func (v *Volume) CloseLiveQuery(token string) {
	v.queryMu.Lock()
	defer v.queryMu.Unlock()
	v.live.Unregister(token)
}

// notifyLiveQueries re-evaluates every standing live query against node,
// called after any mutation that could change its matched status: create,
// remove, write, setattr, or attribute churn.
func (v *Volume) notifyLiveQueries(id nodegraph.NodeID, exists bool) {
	var resolver query.AttrResolver
	if exists {
		if n, ok := v.nodes[id]; ok {
			resolver = nodeResolver{node: n}
		} else {
			exists = false
		}
	}
	v.queryMu.Lock()
	defer v.queryMu.Unlock()
	v.live.NotifyNode(id, resolver, exists)
}
