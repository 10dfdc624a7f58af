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

package blockalloc

import "math/bits"

// bucketFor implements the size-class arithmetic of
// BlockAllocatorAreaBucket.cpp: ceil(log2(freeBytes / minNetBlock)). Areas
// with more free space land in a higher bucket, so Allocate can scan from
// the smallest-sufficient bucket upward.
func bucketFor(freeBytes, minNetBlock uint32) int {
	if minNetBlock == 0 {
		minNetBlock = 1
	}
	ratio := freeBytes / minNetBlock
	if ratio <= 1 {
		return 0
	}
	// ceil(log2(ratio)) == bit length of (ratio-1), for ratio > 1.
	return bits.Len32(ratio - 1)
}

// numBuckets bounds the bucket slice: no area can exceed bucketFor(areaSize, minNetBlock).
func numBuckets(areaSize, minNetBlock uint32) int {
	return bucketFor(areaSize, minNetBlock) + 1
}
