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

// Package step implements the pull based step pipeline that traversals are
// built from, and the barrier steps that let one pipeline run either locally
// or split across the workers of a graph computer.
//
// A Step is an iterator of traversers. HasNext reports whether another
// traverser is available and Next returns it; exhaustion is io.EOF. Steps
// are not safe for concurrent use: Clone a step, or a whole Traversal, for
// each concurrent branch.
package step

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/path"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/values"
)

// ErrInterrupted is returned by Next and HasNext when the owning traversal
// has been interrupted or its context is done.
var ErrInterrupted = errors.New("traversal interrupted")

// Step is one node of a traversal pipeline.
type Step interface {
	// AddStart queues a traverser ahead of those pulled from the previous
	// step.
	AddStart(t *traverser.Traverser)
	AddStarts(ts ...*traverser.Traverser)
	// HasStarts reports whether a queued or upstream traverser is available.
	HasStarts() (bool, error)
	// HasNext reports whether Next will return a traverser. It may be called
	// repeatedly without consuming anything.
	HasNext() (bool, error)
	// Next returns the next traverser, or io.EOF.
	Next() (*traverser.Traverser, error)
	// Reset drops all iteration state.
	Reset()

	ID() string
	SetID(id string)
	Labels() path.Labels
	AddLabel(label string)
	RemoveLabel(label string)

	Previous() Step
	SetPrevious(s Step)
	NextStep() Step
	SetNextStep(s Step)
	Traversal() *Traversal
	SetTraversal(t *Traversal)

	// Clone returns a copy with the same id, labels and configuration, and
	// with no starts, links or traversal.
	Clone() Step
}

// Processor produces the outgoing traversers of a step, one per call, and
// returns io.EOF when it has nothing more to emit. Traversers with zero bulk
// are dropped by the caller.
type Processor interface {
	ProcessNextStart() (*traverser.Traverser, error)
}

// NewID returns a fresh step id.
func NewID() string {
	return uuid.NewString()
}

// Configured is implemented by steps whose configuration takes part in
// equality. Config returns a value compared with values.Equal.
type Configured interface {
	Config() any
}

func config(s Step) any {
	if c, ok := s.(Configured); ok {
		return c.Config()
	}
	return nil
}

// Hash hashes the concrete type, labels and configuration of s. Label order
// does not matter.
func Hash(s Step) uint64 {
	var labels uint64
	for _, l := range s.Labels() {
		labels += values.Hash(l)
	}
	return values.Combine(values.Hash(reflect.TypeOf(s).String()), labels, values.Hash(config(s)))
}

// Equal reports whether a and b are interchangeable: the same concrete type
// with the same label set and configuration. When compareIDs is set the ids
// must match too.
func Equal(a, b Step, compareIDs bool) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !a.Labels().Equal(b.Labels()) {
		return false
	}
	if !values.Equal(config(a), config(b)) {
		return false
	}
	return !compareIDs || a.ID() == b.ID()
}

// String renders s as its type name, arguments and labels, for example
// "NoOpBarrier(10)@[a]".
func String(s Step, args ...any) string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var b strings.Builder
	b.WriteString(t.Name())
	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		b.WriteString("(" + strings.Join(parts, ",") + ")")
	}
	if ls := s.Labels(); len(ls) > 0 {
		b.WriteString("@[" + strings.Join(ls, ", ") + "]")
	}
	return b.String()
}
