// Copyright 2025 Google LLC
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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// VolumeCounters is the allocator/index/query instrumentation a Volume
// records against, separate from the per-VFS-op Handle above: these track
// node-graph-level events rather than individual kernel calls.
type VolumeCounters struct {
	NodesAllocated *prometheus.CounterVec
	NodesFreed     *prometheus.CounterVec
	IndexOps       *prometheus.CounterVec
	QueriesRun     *prometheus.CounterVec
}

// NewVolumeCounters registers a fresh set of counters against reg. Passing
// prometheus.NewRegistry() keeps tests isolated from the global registry;
// cmd's runMount also passes a fresh registry, which Handler below then
// serves.
func NewVolumeCounters(reg prometheus.Registerer) *VolumeCounters {
	factory := promauto.With(reg)
	return &VolumeCounters{
		NodesAllocated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ramfs_nodes_allocated_total",
			Help: "Nodes allocated, by type (file/dir/symlink).",
		}, []string{"type"}),
		NodesFreed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ramfs_nodes_freed_total",
			Help: "Nodes freed once unlinked and unreferenced, by type.",
		}, []string{"type"}),
		IndexOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ramfs_index_ops_total",
			Help: "Attribute index administration ops, by kind (create/delete).",
		}, []string{"kind"}),
		QueriesRun: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ramfs_queries_total",
			Help: "Queries run, by kind (one_shot/live).",
		}, []string{"kind"}),
	}
}

// Handler exposes reg on the conventional /metrics path via promhttp.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
