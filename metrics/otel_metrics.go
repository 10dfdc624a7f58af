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

// Package metrics instruments the VFS surface with OTel counters and
// histograms, the domain equivalent of the original implementation's
// fs/ops and gcs/request instrumentation.
package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// OpKey annotates the VFS op processed (MkDir, ReadFile, and so on).
	OpKey = "vfs_op"

	// ErrCategoryKey reduces error cardinality by grouping error kinds.
	ErrCategoryKey = "error_category"

	// QueryKindKey annotates whether a query ran once or stayed live.
	QueryKindKey = "query_kind"
)

var (
	vfsMeter   = otel.Meter("vfs_op")
	queryMeter = otel.Meter("query")

	opAttributeSet,
	errCategoryAttributeSet,
	queryKindAttributeSet sync.Map
)

func loadOrStoreAttributeOption[K comparable](mp *sync.Map, key K, gen func() attribute.Set) metric.MeasurementOption {
	if v, ok := mp.Load(key); ok {
		return v.(metric.MeasurementOption)
	}
	v, _ := mp.LoadOrStore(key, metric.WithAttributeSet(gen()))
	return v.(metric.MeasurementOption)
}

func getOpAttributeSet(op string) metric.MeasurementOption {
	return loadOrStoreAttributeOption(&opAttributeSet, op, func() attribute.Set {
		return attribute.NewSet(attribute.String(OpKey, op))
	})
}

func getErrCategoryAttributeSet(op, category string) metric.MeasurementOption {
	type key struct{ op, category string }
	return loadOrStoreAttributeOption(&errCategoryAttributeSet, key{op, category}, func() attribute.Set {
		return attribute.NewSet(attribute.String(OpKey, op), attribute.String(ErrCategoryKey, category))
	})
}

func getQueryKindAttributeSet(kind string) metric.MeasurementOption {
	return loadOrStoreAttributeOption(&queryKindAttributeSet, kind, func() attribute.Set {
		return attribute.NewSet(attribute.String(QueryKindKey, kind))
	})
}

var defaultLatencyDistribution = metric.WithExplicitBucketBoundaries(
	1, 2, 5, 10, 25, 50, 75, 100, 150, 200, 300, 500, 750, 1000, 2000, 5000, 10000, 20000, 50000, 100000)

// Handle is the instrumentation surface fuseadapter records against.
// Grounded on common.MetricHandle's method-set-per-subsystem shape.
type Handle interface {
	OpsCount(ctx context.Context, inc int64, op string)
	OpsLatency(ctx context.Context, latency time.Duration, op string)
	OpsErrorCount(ctx context.Context, inc int64, op, category string)
	QueryCount(ctx context.Context, inc int64, kind string)
}

type otelHandle struct {
	opsCount      metric.Int64Counter
	opsLatency    metric.Float64Histogram
	opsErrorCount metric.Int64Counter
	queryCount    metric.Int64Counter
}

func (h *otelHandle) OpsCount(ctx context.Context, inc int64, op string) {
	h.opsCount.Add(ctx, inc, getOpAttributeSet(op))
}

func (h *otelHandle) OpsLatency(ctx context.Context, latency time.Duration, op string) {
	h.opsLatency.Record(ctx, float64(latency.Microseconds()), getOpAttributeSet(op))
}

func (h *otelHandle) OpsErrorCount(ctx context.Context, inc int64, op, category string) {
	h.opsErrorCount.Add(ctx, inc, getErrCategoryAttributeSet(op, category))
}

func (h *otelHandle) QueryCount(ctx context.Context, inc int64, kind string) {
	h.queryCount.Add(ctx, inc, getQueryKindAttributeSet(kind))
}

// NewOTelHandle builds a Handle backed by the global OTel meter provider,
// mirroring NewOTelMetrics' counter/histogram registration pattern.
func NewOTelHandle() (Handle, error) {
	opsCount, err1 := vfsMeter.Int64Counter("vfs/ops_count",
		metric.WithDescription("The cumulative number of ops processed by the VFS surface."))
	opsLatency, err2 := vfsMeter.Float64Histogram("vfs/ops_latency",
		metric.WithDescription("The cumulative distribution of VFS operation latencies"),
		metric.WithUnit("us"), defaultLatencyDistribution)
	opsErrorCount, err3 := vfsMeter.Int64Counter("vfs/ops_error_count",
		metric.WithDescription("The cumulative number of errors returned by VFS operations"))
	queryCount, err4 := queryMeter.Int64Counter("query/count",
		metric.WithDescription("The cumulative number of queries run, by kind (one-shot/live)"))

	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, err
	}
	return &otelHandle{
		opsCount:      opsCount,
		opsLatency:    opsLatency,
		opsErrorCount: opsErrorCount,
		queryCount:    queryCount,
	}, nil
}
