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
	"io"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/path"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
)

// Base carries the state shared by every step: id, labels, the queue of
// starts, the look-ahead traverser and the links to its neighbours. Steps
// embed Base, implement Processor and call Init from their constructor.
type Base struct {
	id        string
	labels    path.Labels
	starts    *traverser.Set
	nextEnd   *traverser.Traverser
	prev      Step
	next      Step
	traversal *Traversal
	proc      Processor
}

// Init binds b to the Processor of the step embedding it and assigns an id
// if none is set.
func (b *Base) Init(p Processor) {
	if b.id == "" {
		b.id = NewID()
	}
	b.proc = p
	b.starts = traverser.NewSet()
	b.prev, b.next = Empty, Empty
}

// ResetClone prepares a Base copied by value for a cloned step: it keeps the
// id, copies the labels, drops starts, look-ahead, links and traversal, and
// binds the copy to p.
func (b *Base) ResetClone(p Processor) {
	b.labels = append(path.Labels(nil), b.labels...)
	b.starts = traverser.NewSet()
	b.nextEnd = nil
	b.prev, b.next = Empty, Empty
	b.traversal = nil
	b.proc = p
}

// ID returns the step id.
func (b *Base) ID() string { return b.id }

// SetID sets the step id.
func (b *Base) SetID(id string) { b.id = id }

// Labels returns the step labels.
func (b *Base) Labels() path.Labels { return b.labels }

// AddLabel adds a label.
func (b *Base) AddLabel(label string) {
	if !b.labels.Contains(label) {
		b.labels = append(b.labels, label)
	}
}

// RemoveLabel removes a label.
func (b *Base) RemoveLabel(label string) {
	b.labels = b.labels.Minus([]string{label})
}

// Previous returns the upstream step.
func (b *Base) Previous() Step { return b.prev }

// SetPrevious sets the upstream step.
func (b *Base) SetPrevious(s Step) { b.prev = s }

// NextStep returns the downstream step.
func (b *Base) NextStep() Step { return b.next }

// SetNextStep sets the downstream step.
func (b *Base) SetNextStep(s Step) { b.next = s }

// Traversal returns the owning traversal, or nil.
func (b *Base) Traversal() *Traversal { return b.traversal }

// SetTraversal sets the owning traversal.
func (b *Base) SetTraversal(t *Traversal) { b.traversal = t }

// AddStart queues t.
func (b *Base) AddStart(t *traverser.Traverser) {
	b.starts.Add(t)
}

// AddStarts queues ts.
func (b *Base) AddStarts(ts ...*traverser.Traverser) {
	for _, t := range ts {
		b.starts.Add(t)
	}
}

// HasStarts reports whether a start is queued or available upstream.
func (b *Base) HasStarts() (bool, error) {
	if !b.starts.IsEmpty() {
		return true, nil
	}
	return b.prev.HasNext()
}

// NextStart returns a queued start, or pulls one from the previous step.
func (b *Base) NextStart() (*traverser.Traverser, error) {
	if t, ok := b.starts.Remove(); ok {
		return t, nil
	}
	return b.prev.Next()
}

// Reset drops queued starts and the look-ahead.
func (b *Base) Reset() {
	b.starts.Clear()
	b.nextEnd = nil
}

// HasNext reports whether Next will return a traverser, caching it.
func (b *Base) HasNext() (bool, error) {
	if b.nextEnd != nil {
		return true, nil
	}
	for {
		if err := b.checkInterrupt(); err != nil {
			return false, err
		}
		t, err := b.proc.ProcessNextStart()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if t.Bulk() > 0 {
			b.nextEnd = t
			return true, nil
		}
	}
}

// Next returns the next traverser with a positive bulk, routed to the next
// step and labeled with this step's labels.
func (b *Base) Next() (*traverser.Traverser, error) {
	if b.nextEnd != nil {
		t := b.nextEnd
		b.nextEnd = nil
		return b.prepare(t), nil
	}
	for {
		if err := b.checkInterrupt(); err != nil {
			return nil, err
		}
		t, err := b.proc.ProcessNextStart()
		if err != nil {
			return nil, err
		}
		if t.Bulk() > 0 {
			return b.prepare(t), nil
		}
	}
}

func (b *Base) prepare(t *traverser.Traverser) *traverser.Traverser {
	t.SetStepID(b.next.ID())
	t.AddLabels(b.labels...)
	return t
}

func (b *Base) checkInterrupt() error {
	if b.traversal != nil && b.traversal.Interrupted() {
		return ErrInterrupted
	}
	return nil
}

// Generate creates a traverser on v in the owning traversal, or without a
// path when the step is not attached to one.
func (b *Base) Generate(v any, bulk int64) *traverser.Traverser {
	if b.traversal == nil {
		return traverser.Generator{}.Generate(v, bulk)
	}
	return b.traversal.Generate(v, bulk)
}
