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

package logger

import (
	"errors"
	"io"
	"sync"
)

// ErrAsyncLoggerClosed is returned by Write after Close has been called.
var ErrAsyncLoggerClosed = errors.New("async logger: closed")

// AsyncLogger decouples log emission from the underlying sink's I/O, so
// that a log call made while the Volume's main lock is held never blocks on
// disk or rotation. It wraps any io.WriteCloser — in practice a
// gopkg.in/natefinch/lumberjack.v2 rotating file.
type AsyncLogger struct {
	out  io.WriteCloser
	ch   chan []byte
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewAsyncLogger starts a background goroutine that drains writes to out in
// the order they were submitted. bufSize bounds how many pending writes may
// queue before Write blocks.
func NewAsyncLogger(out io.WriteCloser, bufSize int) *AsyncLogger {
	if bufSize <= 0 {
		bufSize = 1
	}
	a := &AsyncLogger{
		out:  out,
		ch:   make(chan []byte, bufSize),
		done: make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *AsyncLogger) run() {
	defer a.wg.Done()
	for b := range a.ch {
		_, _ = a.out.Write(b)
	}
}

// Write queues p for asynchronous delivery. The slice is copied, since
// slog handlers are free to reuse their buffer after Write returns.
func (a *AsyncLogger) Write(p []byte) (int, error) {
	select {
	case <-a.done:
		return 0, ErrAsyncLoggerClosed
	default:
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	select {
	case a.ch <- cp:
		return len(p), nil
	case <-a.done:
		return 0, ErrAsyncLoggerClosed
	}
}

// Close drains any queued writes, then closes the underlying sink.
func (a *AsyncLogger) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		a.wg.Wait()
		close(a.done)
		err = a.out.Close()
	})
	return err
}
