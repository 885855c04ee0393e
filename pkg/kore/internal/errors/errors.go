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

// Package errors creates and wraps errors so that the chain of operations
// that led to a failure (step, superstep, memory key) reads top-down when
// printed, while remaining matchable with Is and As.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// New returns an error with the given message.
func New(message string) error {
	return &koreError{msg: message, top: message}
}

// Errorf returns an error with a message formatted according to the format
// specifier. A %w verb keeps the wrapped error reachable through Unwrap.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Wrap returns a new error annotating err with a new message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &koreError{cause: err, msg: message, top: topOf(err)}
}

// Wrapf returns a new error annotating err with a new message according to
// the format specifier.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithContext returns a new error adding additional context to err.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return &koreError{cause: err, context: context, top: topOf(err)}
}

// WithContextf returns a new error adding additional context to err according
// to the format specifier.
func WithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return WithContext(err, fmt.Sprintf(format, args...))
}

// SetTopLevelMsg returns a new error with the given top level message. The top
// level message is the first line printed by Error() on the returned error or
// any error wrapping it.
func SetTopLevelMsg(err error, top string) error {
	if err == nil {
		return nil
	}
	return &koreError{cause: err, top: top}
}

// SetTopLevelMsgf is SetTopLevelMsg with a format specifier.
func SetTopLevelMsgf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return SetTopLevelMsg(err, fmt.Sprintf(format, args...))
}

func topOf(e error) string {
	if ke, ok := e.(*koreError); ok {
		return ke.top
	}
	return ""
}

// koreError is one link in an error chain.
//
//   - No cause means this is the original error and msg is set.
//   - If both msg and context are set, the context describes this error.
//   - top is copied up from the cause unless explicitly replaced.
type koreError struct {
	cause   error
	context string
	msg     string
	top     string
}

// Error prints the top level message (when it differs from the innermost
// message) followed by each context and message in the chain.
func (e *koreError) Error() string {
	var b strings.Builder
	if e.top != "" && e.cause != nil {
		fmt.Fprintf(&b, "%s\nFull error:\n", e.top)
	}
	e.printRecursive(&b)
	return b.String()
}

func (e *koreError) printRecursive(b *strings.Builder) {
	wraps := e.cause != nil

	if e.context != "" {
		fmt.Fprintf(b, "\t%s\n", strings.ReplaceAll(e.context, "\n", "\n\t"))
	}
	if e.msg != "" {
		b.WriteString(e.msg)
		if wraps {
			b.WriteString("\n\tcaused by:\n")
		}
	}
	if !wraps {
		return
	}
	if ke, ok := e.cause.(*koreError); ok {
		ke.printRecursive(b)
	} else {
		b.WriteString(e.cause.Error())
	}
}

// Format implements fmt.Formatter.
func (e *koreError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Unwrap returns the cause of this error if present.
func (e *koreError) Unwrap() error {
	return e.cause
}
