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

package fuseadapter

import (
	"time"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/ramfuse/ramfs/internal/nodegraph"
)

// nodeAttributes translates a node's header fields into the
// fuseops.InodeAttributes shape, mirroring DirInode.Attributes /
// FileInode.Attributes.
func nodeAttributes(n *nodegraph.Node) fuseops.InodeAttributes {
	nlink := uint32(1)
	if n.Type == nodegraph.TypeDirectory {
		nlink = uint32(2 + countSubdirs(n))
	} else {
		nlink = uint32(len(n.Referrers))
		if nlink == 0 {
			nlink = 1
		}
	}
	return fuseops.InodeAttributes{
		Size:   n.Size(),
		Nlink:  nlink,
		Mode:   fileMode(n),
		Atime:  unixNano(n.ATime),
		Mtime:  unixNano(n.MTime),
		Ctime:  unixNano(n.CTime),
		Crtime: unixNano(n.CrTime),
		Uid:    n.UID,
		Gid:    n.GID,
	}
}

func countSubdirs(dir *nodegraph.Node) int {
	if dir.Dir == nil {
		return 0
	}
	count := 0
	for _, e := range dir.Dir.Children {
		if e.Target.Type == nodegraph.TypeDirectory {
			count++
		}
	}
	return count
}

func unixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// stampCreated sets all four timestamps to now, mirroring the original
// implementation's stamping of a freshly minted vnode's stat block.
func stampCreated(n *nodegraph.Node, now time.Time) {
	ns := now.UnixNano()
	n.ATime, n.MTime, n.CTime, n.CrTime = ns, ns, ns, ns
}
