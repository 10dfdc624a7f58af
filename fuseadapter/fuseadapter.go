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

// Package fuseadapter is the VFS glue layer: it implements jacobsa/fuse's
// fuseops-based FileSystem interface over an internal/volume.Volume,
// translating each kernel op into the node-graph operations the volume
// already exposes and driving every node through the Publish/Get/Put/
// Remove/Unremove lifecycle the volume defines.
//
// Grounded on gcsfuse's fs.fileSystem: one struct embedding
// fuseutil.NotImplementedFileSystem, a single invariant-checked lock
// guarding a handle table, and the same lock-ordering discipline (handle
// locks, then the volume's own lock — never the reverse).
package fuseadapter

import (
	"context"
	"os"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"

	"github.com/ramfuse/ramfs/clock"
	"github.com/ramfuse/ramfs/internal/nodegraph"
	"github.com/ramfuse/ramfs/internal/volume"
	"github.com/ramfuse/ramfs/metrics"
)

// FileSystem adapts a Volume to jacobsa/fuse's fuseops.FileSystem
// interface. nodegraph.NodeID and fuseops.InodeID are both plain uint64s,
// and Volume allocates the root directory's ID first (yielding 1, the
// same value as fuseops.RootInodeID), so no separate inode-ID translation
// table is needed: a fuseops.InodeID is a nodegraph.NodeID.
type FileSystem struct {
	fuseutil.NotImplementedFileSystem

	vol     *volume.Volume
	clock   timeutil.Clock
	metrics metrics.Handle

	// handles is guarded by vol's own lock, following fileSystem.handles:
	// it is just more state hanging off the one struct everything else
	// already locks through Lock/Unlock.
	handles      map[fuseops.HandleID]interface{}
	nextHandleID fuseops.HandleID
}

// New wraps vol as a fuseops.FileSystem, mirroring fs.NewFileSystem's
// shape minus the GCS-specific dependencies the teacher threaded through
// its constructor. Timestamps are stamped off clock.RealClock{}, the same
// default fileSystem.clock uses outside of tests.
func New(vol *volume.Volume) *FileSystem {
	return &FileSystem{
		vol:     vol,
		clock:   clock.RealClock{},
		metrics: metrics.NewNoopHandle(),
		handles: make(map[fuseops.HandleID]interface{}),
		// Handle IDs start at 1 so that no open directory gets handle 0.
		nextHandleID: 1,
	}
}

// NewWithClock is New with an injected clock, letting tests pin
// timestamps with clock.FakeClock/SimulatedClock instead of real time.
func NewWithClock(vol *volume.Volume, c timeutil.Clock) *FileSystem {
	fs := New(vol)
	fs.clock = c
	return fs
}

// SetMetrics attaches a metrics.Handle (metrics.NewOTelHandle in
// production) that every recorded op below reports against. Left unset,
// a FileSystem records into metrics.NewNoopHandle.
func (fs *FileSystem) SetMetrics(h metrics.Handle) { fs.metrics = h }

// recordOp times a single VFS op and reports its count, latency, and
// (if it failed) error category, mirroring fileSystem's use of
// common.MetricHandle around each op in the original implementation.
func (fs *FileSystem) recordOp(ctx context.Context, name string, err error) {
	fs.metrics.OpsCount(ctx, 1, name)
	if err != nil {
		fs.metrics.OpsErrorCount(ctx, 1, name, errnoCategory(err))
	}
}

func recordLatency(fs *FileSystem, ctx context.Context, name string, start time.Time) {
	fs.metrics.OpsLatency(ctx, time.Since(start), name)
}

// Server builds the fuseutil.FileSystemServer that jacobsa/fuse.Mount
// takes, exactly as fs.NewFileSystem's last line does.
func Server(vol *volume.Volume) fuseutil.Server {
	return fuseutil.NewFileSystemServer(New(vol))
}

// NewServer wraps an already-configured FileSystem (clock and/or metrics
// already attached) the same way Server wraps a bare one, for callers that
// need to call SetMetrics before mounting.
func NewServer(fs *FileSystem) fuseutil.Server {
	return fuseutil.NewFileSystemServer(fs)
}

func inodeID(id nodegraph.NodeID) fuseops.InodeID { return fuseops.InodeID(id) }
func nodeID(id fuseops.InodeID) nodegraph.NodeID   { return nodegraph.NodeID(id) }

func fileMode(n *nodegraph.Node) os.FileMode {
	mode := os.FileMode(n.Mode & 0o777)
	switch n.Type {
	case nodegraph.TypeDirectory:
		mode |= os.ModeDir
	case nodegraph.TypeSymLink:
		mode |= os.ModeSymlink
	}
	return mode
}
