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

import "github.com/ramfuse/ramfs/internal/nodegraph"

// Publish, Get, Put, Remove, and Unremove are the vnode lifecycle hooks
// fuseadapter drives a node through, mirroring Haiku's
// publish_vnode/get_vnode/put_vnode/remove_vnode/unremove_vnode.
// Entry-table membership (tracked by RemoveEntry/AddEntry via
// nodegraph.Node.removed) and the VFS reference count (RefCount,
// maintained here) are independent: a node is only actually freed once
// both say so — it has no entries left AND the kernel holds no handle on
// it. This lets an open-but-unlinked file keep working until its last
// handle closes, matching ordinary POSIX unlink semantics.

// Publish gives a brand-new node its first VFS reference, called once a
// create operation has handed the node to the kernel as a lookup
// response.
func (v *Volume) Publish(n *nodegraph.Node) {
	n.AddReference()
}

// Put releases count VFS references on n, mirroring put_vnode(count).
// Frees the node immediately if this drops its reference count to zero
// while it has already been unlinked from every directory.
func (v *Volume) Put(n *nodegraph.Node, count uint32) {
	for i := uint32(0); i < count; i++ {
		if n.RemoveReference() {
			v.freeNode(n)
			return
		}
	}
}

// Remove frees n right away if it is still in the node table and has no VFS
// references, mirroring remove_vnode; otherwise it does nothing. A node
// that still has references is freed by the Put that drops the last one,
// once it has no entries left.
func (v *Volume) Remove(n *nodegraph.Node) {
	if _, live := v.nodes[n.ID]; live && n.RefCount == 0 {
		v.freeNode(n)
	}
}

// Unremove cancels a pending removal on n, mirroring unremove_vnode.
func (v *Volume) Unremove(n *nodegraph.Node) {
	n.Unremove()
}
