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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/fuse"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ramfuse/ramfs/fuseadapter"
	"github.com/ramfuse/ramfs/internal/logger"
	"github.com/ramfuse/ramfs/internal/volume"
	"github.com/ramfuse/ramfs/metrics"
)

// runMount builds a Volume from settings, mounts it at mountPoint, and
// blocks until it is unmounted, mirroring the shape of the original
// implementation's mountWithStorageHandle minus the GCS-specific bucket
// handle and experimental visualizer it also built.
func runMount(mountPoint string, settings mountSettings) error {
	if settings.Logging.FilePath != "" {
		if err := logger.InitLogFile(settings.Logging); err != nil {
			return fmt.Errorf("init log file: %w", err)
		}
		defer logger.Close()
	}

	vol := volume.New(settings.Volume)

	if settings.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		vol.SetCounters(metrics.NewVolumeCounters(reg))
		serveMetrics(settings.Metrics.Addr, reg)
	}

	fsys := fuseadapter.New(vol)
	if settings.Metrics.EnableOTel {
		h, err := metrics.NewOTelHandle()
		if err != nil {
			return fmt.Errorf("build otel metrics handle: %w", err)
		}
		fsys.SetMetrics(h)
	}

	logger.Infof("mounting %s at %s", settings.Volume.Name, mountPoint)
	mfs, err := fuse.Mount(mountPoint, fuseadapter.NewServer(fsys), &fuse.MountConfig{
		FSName:     settings.Volume.Name,
		Subtype:    "ramfs",
		VolumeName: settings.Volume.Name,
		// Directory inode locking in fuseadapter is per-handle, so parallel
		// LookUpInode/ReadDir calls from the kernel's FUSE driver are safe.
		EnableParallelDirOps: true,
	})
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		logger.Infof("received shutdown signal, unmounting %s", mountPoint)
		if err := fuse.Unmount(mountPoint); err != nil {
			logger.Errorf("unmount %s: %v", mountPoint, err)
		}
	}()

	return mfs.Join(context.Background())
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server: %v", err)
		}
	}()
}
