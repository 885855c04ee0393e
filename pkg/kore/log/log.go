// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log contains a re-targetable context-aware logging system. Runners
// attach worker and superstep information to the context so that program and
// step logging carries it without threading it through every call.
package log

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// Severity is the severity of the log message.
type Severity int

const (
	SevUnspecified Severity = iota
	SevDebug
	SevInfo
	SevWarn
	SevError
	SevFatal
)

var sevNames = [...]string{"UNSPECIFIED", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(sevNames) {
		return sevNames[SevUnspecified]
	}
	return sevNames[s]
}

// ParseSeverity accepts a severity name in any case.
func ParseSeverity(s string) (Severity, error) {
	for i, n := range sevNames[SevDebug:] {
		if strings.EqualFold(n, s) {
			return SevDebug + Severity(i), nil
		}
	}
	return SevUnspecified, fmt.Errorf("log: unknown severity %q", s)
}

// Logger is a context-aware logging backend. Must be safe for concurrent
// use by the workers of a computation.
type Logger interface {
	// Log writes msg. It returns regardless of the severity.
	Log(ctx context.Context, sev Severity, calldepth int, msg string)
}

type holder struct{ Logger }

var (
	current atomic.Pointer[holder]
	minSev  atomic.Int32
)

func init() {
	current.Store(&holder{&Standard{}})
	minSev.Store(int32(SevInfo))
}

// SetLogger replaces the global Logger.
func SetLogger(l Logger) {
	if l == nil {
		panic("log: Logger cannot be nil")
	}
	current.Store(&holder{l})
}

// SetLevel drops messages below sev. The default level is SevInfo.
func SetLevel(sev Severity) {
	minSev.Store(int32(sev))
}

// Enabled reports whether messages of severity sev are written.
func Enabled(sev Severity) bool {
	return sev >= SevFatal || int32(sev) >= minSev.Load()
}

// Output writes msg to the global logger. Calldepth counts the frames to
// skip when computing the caller's file and line.
func Output(ctx context.Context, sev Severity, calldepth int, msg string) {
	if !Enabled(sev) {
		return
	}
	current.Load().Log(ctx, sev, calldepth+1, msg)
}

func logf(ctx context.Context, sev Severity, format string, v []any) {
	if !Enabled(sev) {
		return
	}
	current.Load().Log(ctx, sev, 3, fmt.Sprintf(format, v...))
}

// Debugf logs with debug severity. Per-superstep and per-stage progress is
// logged here.
func Debugf(ctx context.Context, format string, v ...any) { logf(ctx, SevDebug, format, v) }

// Infof logs with info severity.
func Infof(ctx context.Context, format string, v ...any) { logf(ctx, SevInfo, format, v) }

// Warnf logs with warn severity.
func Warnf(ctx context.Context, format string, v ...any) { logf(ctx, SevWarn, format, v) }

// Errorf logs with error severity.
func Errorf(ctx context.Context, format string, v ...any) { logf(ctx, SevError, format, v) }

// Fatalf logs with fatal severity and then panics with the message.
func Fatalf(ctx context.Context, format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	current.Load().Log(ctx, SevFatal, 2, msg)
	panic(msg)
}
