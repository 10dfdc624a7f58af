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

// Package logger is the structured-logging sink every other package in the
// module writes through. It wraps log/slog with a severity scheme that adds
// TRACE below slog's built-in Debug, and two on-disk shapes (text, json)
// selected by configuration.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ramfuse/ramfs/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Custom levels. slog predefines Debug(-4)/Info(0)/Warn(4)/Error(8); Trace
// sits one notch below Debug and Off one notch above Error so it suppresses
// everything, including Error.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelOff   slog.Level = 12
)

const timeLayout = "2006/01/02 15:04:05.000000"

func levelFromSeverity(sev string) slog.Level {
	switch sev {
	case config.TRACE:
		return LevelTrace
	case config.DEBUG:
		return LevelDebug
	case config.INFO:
		return LevelInfo
	case config.WARNING:
		return LevelWarn
	case config.ERROR:
		return LevelError
	case config.OFF:
		return LevelOff
	default:
		return LevelInfo
	}
}

func severityFromLevel(level slog.Level) string {
	switch level {
	case LevelTrace:
		return config.TRACE
	case LevelDebug:
		return config.DEBUG
	case LevelInfo:
		return config.INFO
	case LevelWarn:
		return config.WARNING
	case LevelError:
		return config.ERROR
	default:
		return level.String()
	}
}

// setLoggingLevel maps a configured severity string onto a shared
// slog.LevelVar, so severity can change at runtime without rebuilding the
// handler.
func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	programLevel.Set(levelFromSeverity(level))
}

// loggerFactory remembers enough to rebuild the handler when the output
// sink or format changes. file is non-nil when logging to a rotating file;
// sysWriter is non-nil when logging to stderr.
type loggerFactory struct {
	file            *os.File
	sysWriter       io.Writer
	format          string // "text" or anything else means "json"
	level           string // a config.Severity value
	logRotateConfig config.LogRotateConfig

	closer io.Closer
}

// createJsonOrTextHandler builds an slog.Handler writing to w, gated by
// level, with every message prefixed by prefix (used by callers that want a
// sub-component tag, e.g. "blockalloc: ").
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	return &ramfsHandler{out: w, level: level, format: f.format, prefix: prefix}
}

// ramfsHandler formats records the way every ramfuse log line is shaped:
// a quoted fixed-width timestamp, an upper-case severity, and a quoted
// message, either as key=value text or as a json object with a structured
// timestamp.
type ramfsHandler struct {
	mu     sync.Mutex
	out    io.Writer
	level  *slog.LevelVar
	format string
	prefix string
}

func (h *ramfsHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ramfsHandler) Handle(_ context.Context, r slog.Record) error {
	sev := severityFromLevel(r.Level)
	msg := h.prefix + r.Message
	now := r.Time
	if now.IsZero() {
		now = time.Now()
	}

	var line string
	if h.format == "text" {
		line = fmt.Sprintf("time=%q severity=%s message=%q\n", now.Format(timeLayout), sev, msg)
	} else {
		line = fmt.Sprintf(
			"{\"timestamp\":{\"seconds\":%d,\"nanos\":%d},\"severity\":%q,\"message\":%q}\n",
			now.Unix(), now.Nanosecond(), sev, msg)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

func (h *ramfsHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *ramfsHandler) WithGroup(_ string) slog.Handler      { return h }

// defaultLoggerFactory and defaultLogger are the package-wide sink every
// Tracef/Debugf/.../Errorf call writes through. InitLogFile and SetLogFormat
// reconfigure them; until then they log text at INFO to stderr.
var (
	defaultLoggerFactory = &loggerFactory{
		sysWriter:       os.Stderr,
		format:          "text",
		level:           config.INFO,
		logRotateConfig: config.DefaultLoggingConfig().LogRotate,
	}
	defaultProgramLevel = func() *slog.LevelVar {
		v := new(slog.LevelVar)
		setLoggingLevel(defaultLoggerFactory.level, v)
		return v
	}()
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, defaultProgramLevel, ""))
)

// InitLogFile points the package-level logger at a rotating file, backed by
// an AsyncLogger so a log call made while the Volume's main lock is held
// never blocks on disk or rotation.
func InitLogFile(cfg config.LoggingConfig) error {
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logger: open log file %s: %w", cfg.FilePath, err)
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.LogRotate.MaxFileSizeMB,
		MaxBackups: cfg.LogRotate.BackupFileCount,
		Compress:   cfg.LogRotate.Compress,
	}
	async := NewAsyncLogger(lj, 1024)

	format := cfg.Format
	if format == "" {
		format = "text"
	}

	if defaultLoggerFactory.closer != nil {
		_ = defaultLoggerFactory.closer.Close()
	}

	defaultLoggerFactory = &loggerFactory{
		file:            f,
		format:          format,
		level:           cfg.Severity,
		logRotateConfig: cfg.LogRotate,
		closer:          async,
	}
	level := new(slog.LevelVar)
	setLoggingLevel(cfg.Severity, level)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(async, level, ""))
	return nil
}

// SetLogFormat switches the package-level logger's on-disk shape without
// disturbing its current sink or severity.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format

	var w io.Writer = os.Stderr
	switch {
	case defaultLoggerFactory.file != nil:
		w = defaultLoggerFactory.file
		if aw, ok := defaultLoggerFactory.closer.(io.Writer); ok {
			w = aw // keep writing through InitLogFile's async rotating writer
		}
	case defaultLoggerFactory.sysWriter != nil:
		w = defaultLoggerFactory.sysWriter
	}

	level := new(slog.LevelVar)
	setLoggingLevel(defaultLoggerFactory.level, level)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, level, ""))
}

// Close flushes and closes whatever sink InitLogFile opened. Safe to call
// even if InitLogFile was never called.
func Close() error {
	if defaultLoggerFactory.closer == nil {
		return nil
	}
	err := defaultLoggerFactory.closer.Close()
	defaultLoggerFactory.closer = nil
	return err
}

func logf(level slog.Level, format string, v ...interface{}) {
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	defaultLogger.Log(context.Background(), level, msg)
}

// Tracef logs at TRACE severity, the most verbose level, used for per-block
// allocator bookkeeping and per-entry query evaluation traces.
func Tracef(format string, v ...interface{}) { logf(LevelTrace, format, v...) }

// Debugf logs at DEBUG severity.
func Debugf(format string, v ...interface{}) { logf(LevelDebug, format, v...) }

// Infof logs at INFO severity.
func Infof(format string, v ...interface{}) { logf(LevelInfo, format, v...) }

// Warnf logs at WARNING severity.
func Warnf(format string, v ...interface{}) { logf(LevelWarn, format, v...) }

// Errorf logs at ERROR severity, used for allocator-panic and other
// invariant-violation paths.
func Errorf(format string, v ...interface{}) { logf(LevelError, format, v...) }
