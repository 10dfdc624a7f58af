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

// Package config holds the logging severity enum and rotation settings
// consumed by internal/logger, plus the volume settings; cmd/root.go decodes
// flags and the optional YAML config file into them through viper's
// mapstructure tags.
package config

// Severity values are untyped string constants, assignable to
// LoggingConfig.Severity and to any plain string parameter that takes a
// configured severity.
const (
	OFF     = "OFF"
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
)

// severityRank orders severities from least to most verbose suppression;
// a logger configured at level X emits records whose severity rank is >=
// rank(X).
var severityRank = map[string]int{
	TRACE:   0,
	DEBUG:   1,
	INFO:    2,
	WARNING: 3,
	ERROR:   4,
	OFF:     5,
}

// Enabled reports whether a record logged at `level` should be emitted when
// the logger is configured at `configured`.
func Enabled(configured, level string) bool {
	c, ok := severityRank[configured]
	if !ok {
		c = severityRank[INFO]
	}
	l, ok := severityRank[level]
	if !ok {
		return false
	}
	return l >= c
}

// LogRotateConfig mirrors gcsfuse's LogRotateLoggingConfig, consumed
// directly by gopkg.in/natefinch/lumberjack.v2.
type LogRotateConfig struct {
	MaxFileSizeMB   int  `mapstructure:"max-file-size-mb" yaml:"max-file-size-mb"`
	BackupFileCount int  `mapstructure:"backup-file-count" yaml:"backup-file-count"`
	Compress        bool `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig is the full logging configuration block.
type LoggingConfig struct {
	Severity  string          `mapstructure:"severity" yaml:"severity"`
	Format    string          `mapstructure:"format" yaml:"format"` // "text" or "json"
	FilePath  string          `mapstructure:"file-path" yaml:"file-path"`
	LogRotate LogRotateConfig `mapstructure:"log-rotate" yaml:"log-rotate"`
}

// DefaultLoggingConfig is used before any configuration file or flags have
// been parsed, matching gcsfuse's GetDefaultLoggingConfig.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: INFO,
		Format:   "text",
		LogRotate: LogRotateConfig{
			MaxFileSizeMB:   512,
			BackupFileCount: 10,
			Compress:        true,
		},
	}
}
