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
	"context"
	"time"
)

// NewNoopHandle returns a Handle that discards every measurement, used
// when a mount is started without an OTel exporter configured.
func NewNoopHandle() Handle {
	var n noopHandle
	return &n
}

type noopHandle struct{}

func (*noopHandle) OpsCount(context.Context, int64, string)              {}
func (*noopHandle) OpsLatency(context.Context, time.Duration, string)    {}
func (*noopHandle) OpsErrorCount(context.Context, int64, string, string) {}
func (*noopHandle) QueryCount(context.Context, int64, string)            {}
