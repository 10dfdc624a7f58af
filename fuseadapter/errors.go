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
	"syscall"

	"github.com/jacobsa/fuse"

	"github.com/ramfuse/ramfs/internal/ramfserrors"
)

// errno translates a ramfserrors.Error into the syscall.Errno values
// jacobsa/fuse expects a FileSystem method to return, the way fs.go
// special-cases *gcs.PreconditionError into fuse.EEXIST at each call site.
func errno(err error) error {
	if err == nil {
		return nil
	}
	rerr, ok := err.(*ramfserrors.Error)
	if !ok {
		return fuse.EIO
	}
	switch rerr.Kind {
	case ramfserrors.NotFound:
		return fuse.ENOENT
	case ramfserrors.AlreadyExists, ramfserrors.NameInUse:
		return fuse.EEXIST
	case ramfserrors.NotADirectory:
		return fuse.ENOTDIR
	case ramfserrors.IsADirectory:
		return syscall.EISDIR
	case ramfserrors.DirectoryNotEmpty:
		return fuse.ENOTEMPTY
	case ramfserrors.NotAllowed:
		return syscall.EPERM
	case ramfserrors.BadValue:
		return fuse.EINVAL
	case ramfserrors.BufferOverflow:
		return syscall.ERANGE
	case ramfserrors.Unsupported:
		return fuse.ENOSYS
	default:
		return fuse.EIO
	}
}

// errnoCategory labels a failed op's error for the ops_error_count metric,
// falling back to the ramfserrors.Internal kind's name for anything that
// didn't originate as a *ramfserrors.Error.
func errnoCategory(err error) string {
	rerr, ok := err.(*ramfserrors.Error)
	if !ok {
		return ramfserrors.Internal.String()
	}
	return rerr.Kind.String()
}
