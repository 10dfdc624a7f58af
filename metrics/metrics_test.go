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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopHandleDiscardsEveryCall(t *testing.T) {
	h := NewNoopHandle()
	require.NotPanics(t, func() {
		h.OpsCount(context.Background(), 1, "MkDir")
		h.OpsErrorCount(context.Background(), 1, "MkDir", "not_found")
		h.QueryCount(context.Background(), 1, "live")
	})
}

func TestNewOTelHandleRegistersWithoutError(t *testing.T) {
	h, err := NewOTelHandle()
	require.NoError(t, err)
	require.NotNil(t, h)

	// Recording against the global (noop, in tests) meter provider must not
	// panic even without a configured exporter.
	require.NotPanics(t, func() {
		h.OpsCount(context.Background(), 1, "ReadFile")
		h.OpsErrorCount(context.Background(), 1, "ReadFile", "not_found")
		h.QueryCount(context.Background(), 1, "one_shot")
	})
}
