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

// Package cmd is the command-line entry point: a cobra/viper-driven
// mount command, grounded on the original implementation's own
// cmd/root.go (the --config-file-plus-flags viper wiring) minus the
// GCS-specific connection/cache flag surface cfg.Config carried.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ramfuse/ramfs/internal/config"
)

// mountSettings is the top-level config-file/flags shape, unmarshalled by
// viper the same way the original implementation unmarshals into
// cfg.Config.
type mountSettings struct {
	Volume  config.VolumeConfig  `mapstructure:"volume"`
	Logging config.LoggingConfig `mapstructure:"logging"`
	Metrics metricsSettings      `mapstructure:"metrics"`
}

type metricsSettings struct {
	Addr       string `mapstructure:"addr"`
	EnableOTel bool   `mapstructure:"enable-otel"`
}

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	settings      mountSettings
)

var rootCmd = &cobra.Command{
	Use:   "ramfs [flags] mount_point",
	Short: "Mount an in-memory hierarchical filesystem locally",
	Long: `ramfs is a FUSE adapter exposing an in-memory node graph,
          attribute index, and query engine as a local filesystem.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if err := viper.Unmarshal(&settings); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		mountPoint, err := resolveMountPoint(args[0])
		if err != nil {
			return err
		}
		return runMount(mountPoint, settings)
	},
}

func resolveMountPoint(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("canonicalizing mount point: %w", err)
	}
	return abs, nil
}

// Execute runs the root command, the package's sole exported entry point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	d := config.DefaultVolumeConfig()
	l := config.DefaultLoggingConfig()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "Path to a YAML config file")
	flags.Uint32("volume.area-size", d.AreaSize, "Allocator area size in bytes")
	flags.Uint32("volume.min-net-block", d.MinNetBlock, "Minimum allocator bucket size in bytes")
	flags.Int("volume.max-areas", d.MaxAreas, "Maximum allocator area count (0 = unbounded)")
	flags.Uint32("volume.block-size", d.BlockSize, "File data-container block size in bytes")
	flags.Int("volume.max-index-key-length", d.MaxIndexKeyLength, "Maximum attribute-index key length")
	flags.Bool("volume.exit-on-invariant-violation", d.ExitOnInvariantViolation, "Panic on internal invariant violations")
	flags.String("logging.severity", l.Severity, "Log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF")
	flags.String("logging.format", l.Format, "Log format: text or json")
	flags.String("logging.file-path", l.FilePath, "Log file path (empty logs to stderr)")
	flags.String("metrics.addr", "", "Address to serve /metrics on (empty disables Prometheus export)")
	flags.Bool("metrics.enable-otel", false, "Record per-op metrics through the OTel meter provider")

	bindErr = viper.BindPFlags(flags)
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	abs, err := filepath.Abs(cfgFile)
	if err != nil {
		configFileErr = fmt.Errorf("resolving config file path: %w", err)
		return
	}
	viper.SetConfigFile(abs)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
	}
}
