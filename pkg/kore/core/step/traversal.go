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

package step

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
)

// Traversal is an ordered, linked list of steps sharing side effects and a
// traverser generator. Values are pulled from the last step.
type Traversal struct {
	steps       []Step
	sideEffects *traverser.SideEffects
	generator   traverser.Generator
	ctx         context.Context
	interrupted atomic.Bool

	last *traverser.Traverser
}

// NewTraversal returns a traversal over steps that tracks immutable paths.
func NewTraversal(steps ...Step) *Traversal {
	t := &Traversal{
		sideEffects: traverser.NewSideEffects(),
		generator:   traverser.Generator{Paths: traverser.ImmutablePaths},
	}
	for _, s := range steps {
		t.AddStep(s)
	}
	return t
}

// AddStep appends s and links it to the current end step.
func (t *Traversal) AddStep(s Step) *Traversal {
	s.SetTraversal(t)
	if n := len(t.steps); n > 0 {
		prev := t.steps[n-1]
		prev.SetNextStep(s)
		s.SetPrevious(prev)
	} else {
		s.SetPrevious(Empty)
	}
	s.SetNextStep(Empty)
	t.steps = append(t.steps, s)
	return t
}

// Steps returns the steps in order.
func (t *Traversal) Steps() []Step { return t.steps }

// StartStep returns the first step, or Empty.
func (t *Traversal) StartStep() Step {
	if len(t.steps) == 0 {
		return Empty
	}
	return t.steps[0]
}

// EndStep returns the last step, or Empty.
func (t *Traversal) EndStep() Step {
	if len(t.steps) == 0 {
		return Empty
	}
	return t.steps[len(t.steps)-1]
}

// SideEffects returns the side effects shared by the traversal's
// traversers.
func (t *Traversal) SideEffects() *traverser.SideEffects { return t.sideEffects }

// Generator returns the traverser generator.
func (t *Traversal) Generator() traverser.Generator { return t.generator }

// SetGenerator selects how new traversers track paths.
func (t *Traversal) SetGenerator(g traverser.Generator) { t.generator = g }

// Generate returns a traverser on v carrying the traversal's side effects.
func (t *Traversal) Generate(v any, bulk int64) *traverser.Traverser {
	tr := t.generator.Generate(v, bulk)
	tr.SetSideEffects(t.sideEffects)
	return tr
}

// WithContext makes the traversal stop with ErrInterrupted once ctx is
// done.
func (t *Traversal) WithContext(ctx context.Context) *Traversal {
	t.ctx = ctx
	return t
}

// Interrupt makes every subsequent emission fail with ErrInterrupted.
func (t *Traversal) Interrupt() { t.interrupted.Store(true) }

// Interrupted reports whether the traversal has been interrupted.
func (t *Traversal) Interrupted() bool {
	if t.interrupted.Load() {
		return true
	}
	return t.ctx != nil && t.ctx.Err() != nil
}

// AddStart generates a traverser on v and queues it at the start step.
func (t *Traversal) AddStart(v any, bulk int64) {
	start := t.StartStep()
	tr := t.Generate(v, bulk)
	tr.SetStepID(start.ID())
	start.AddStart(tr)
}

// Inject queues one start per value.
func (t *Traversal) Inject(vs ...any) *Traversal {
	for _, v := range vs {
		t.AddStart(v, 1)
	}
	return t
}

// HasNext reports whether another value is available.
func (t *Traversal) HasNext() (bool, error) {
	if t.last != nil && t.last.Bulk() > 0 {
		return true, nil
	}
	return t.EndStep().HasNext()
}

// NextTraverser returns the next traverser from the end step, with its full
// bulk.
func (t *Traversal) NextTraverser() (*traverser.Traverser, error) {
	if t.last != nil && t.last.Bulk() > 0 {
		tr := t.last
		t.last = nil
		return tr, nil
	}
	return t.EndStep().Next()
}

// Next returns the next value. A traverser with bulk n yields its value n
// times.
func (t *Traversal) Next() (any, error) {
	if t.last == nil || t.last.Bulk() == 0 {
		tr, err := t.EndStep().Next()
		if err != nil {
			return nil, err
		}
		t.last = tr
	}
	t.last.SetBulk(t.last.Bulk() - 1)
	return t.last.Value(), nil
}

// ToList drains the traversal into a slice of values.
func (t *Traversal) ToList() ([]any, error) {
	var out []any
	for {
		v, err := t.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Iterate drains the traversal, discarding its output.
func (t *Traversal) Iterate() error {
	for {
		if _, err := t.NextTraverser(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Reset resets every step.
func (t *Traversal) Reset() {
	for _, s := range t.steps {
		s.Reset()
	}
	t.last = nil
}

// Clone returns an independent copy: cloned steps with the same ids, a copy
// of the side effects, and a fresh interrupt flag.
func (t *Traversal) Clone() *Traversal {
	c := &Traversal{
		sideEffects: t.sideEffects.Clone(),
		generator:   t.generator,
		ctx:         t.ctx,
	}
	for _, s := range t.steps {
		c.AddStep(s.Clone())
	}
	return c
}

func (t *Traversal) String() string {
	parts := make([]string, len(t.steps))
	for i, s := range t.steps {
		if st, ok := s.(fmt.Stringer); ok {
			parts[i] = st.String()
		} else {
			parts[i] = String(s)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
