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

package config

// VolumeConfig controls the shape of a mounted volume's block allocator
// and is decoded the same way LoggingConfig is: YAML/flags into this
// struct via mapstructure tags, mirroring cfg.Config's mount-option
// layout.
type VolumeConfig struct {
	Name string `mapstructure:"name" yaml:"name"`

	// AreaSize and MinNetBlock size internal/blockalloc's Areas and
	// bucket granularity.
	AreaSize    uint32 `mapstructure:"area-size" yaml:"area-size"`
	MinNetBlock uint32 `mapstructure:"min-net-block" yaml:"min-net-block"`
	MaxAreas    int    `mapstructure:"max-areas" yaml:"max-areas"`

	// BlockSize is the chunk size internal/datacontainer carves a file's
	// block-mode chain into.
	BlockSize uint32 `mapstructure:"block-size" yaml:"block-size"`

	// MaxIndexKeyLength bounds a user-created attribute index's key,
	// mirroring IndexDirectory::CreateIndex's own key-length check.
	MaxIndexKeyLength int `mapstructure:"max-index-key-length" yaml:"max-index-key-length"`

	// ExitOnInvariantViolation mirrors gcsfuse's debug-mode invariant
	// checking: when true, Volume.checkInvariants checks the root node and
	// logs then panics on a violation, the way fs.fileSystem.checkInvariants
	// does under --debug_fs; when false it checks nothing.
	ExitOnInvariantViolation bool `mapstructure:"exit-on-invariant-violation" yaml:"exit-on-invariant-violation"`

	// RootDirMode is the permission bits stamped on the root directory at
	// mount time, the one node fuseadapter's MkDir/CreateFile never get a
	// chance to set because the kernel never issues a create for it.
	RootDirMode Octal `mapstructure:"root-dir-mode" yaml:"root-dir-mode"`
}

// DefaultVolumeConfig mirrors gcsfuse's GetDefaultConfig pattern: safe,
// modest defaults usable without any flags or config file at all.
func DefaultVolumeConfig() VolumeConfig {
	return VolumeConfig{
		Name:              "ramfs",
		AreaSize:          1 << 20, // 1 MiB areas
		MinNetBlock:       16,
		MaxAreas:          0,
		BlockSize:         4096,
		MaxIndexKeyLength: 256,
		RootDirMode:       0o755,
	}
}
