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

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// Barrier is a step that consumes all of its starts before emitting. Its
// partial state can be taken out with NextBarrier, moved to another worker,
// and merged into another clone of the same step with AddBarrier. The merge
// uses the reducer of MemoryComputeKey, so a graph computer can merge
// barriers through Memory.
type Barrier interface {
	Step
	// ProcessAllStarts folds every available start into the barrier.
	ProcessAllStarts() error
	// HasNextBarrier processes all starts and reports whether there is
	// partial state to take.
	HasNextBarrier() (bool, error)
	// NextBarrier takes the partial state, or returns io.EOF.
	NextBarrier() (any, error)
	// AddBarrier merges partial state taken from another clone.
	AddBarrier(b any) error
	// Done marks the barrier as drained.
	Done()
	// MemoryComputeKey is the key partial states are merged under.
	MemoryComputeKey() computer.MemoryComputeKey
}

// CollectingBarrier gathers traversers into a traverser.Set and then emits
// them one by one. Consumer, if set, sees the whole set once per
// accumulation before anything is emitted, and may reorder or trim it.
type CollectingBarrier struct {
	Base
	Consumer func(s *traverser.Set)

	set      *traverser.Set
	maxSize  int
	consumed bool
}

// Init prepares c for use. A maxSize of zero is unbounded.
func (c *CollectingBarrier) Init(maxSize int, consumer func(*traverser.Set)) {
	c.Base.Init(c)
	c.set = traverser.NewSet()
	c.maxSize = maxSize
	c.Consumer = consumer
	c.consumed = false
}

// ResetClone prepares a CollectingBarrier copied by value.
func (c *CollectingBarrier) ResetClone() {
	c.Base.ResetClone(c)
	c.set = traverser.NewSet()
	c.consumed = false
}

// MaxSize returns the barrier size, zero meaning unbounded.
func (c *CollectingBarrier) MaxSize() int { return c.maxSize }

// ProcessAllStarts moves available starts into the set, up to the maximum
// size.
func (c *CollectingBarrier) ProcessAllStarts() error {
	for c.maxSize == 0 || c.set.Len() < c.maxSize {
		ok, err := c.HasStarts()
		if err != nil || !ok {
			return err
		}
		t, err := c.NextStart()
		if err != nil {
			return err
		}
		c.set.Add(t)
	}
	return nil
}

// HasNextBarrier reports whether traversers have been collected.
func (c *CollectingBarrier) HasNextBarrier() (bool, error) {
	if err := c.ProcessAllStarts(); err != nil {
		return false, err
	}
	return !c.set.IsEmpty(), nil
}

// NextBarrier returns the collected traversers, detached, as a new
// *traverser.Set and empties the barrier.
func (c *CollectingBarrier) NextBarrier() (any, error) {
	if err := c.ProcessAllStarts(); err != nil {
		return nil, err
	}
	if c.set.IsEmpty() {
		return nil, io.EOF
	}
	out := traverser.NewSet()
	for {
		t, ok := c.set.Remove()
		if !ok {
			break
		}
		out.Add(t.Detach())
	}
	return out, nil
}

// AddBarrier merges a *traverser.Set taken from another clone. The set is
// not modified.
func (c *CollectingBarrier) AddBarrier(b any) error {
	s, ok := b.(*traverser.Set)
	if !ok {
		return errors.Errorf("collecting barrier %v: want *traverser.Set, got %T", c.ID(), b)
	}
	var se *traverser.SideEffects
	if c.Traversal() != nil {
		se = c.Traversal().SideEffects()
	}
	s.Each(func(t *traverser.Traverser) {
		t = t.Split()
		t.SetSideEffects(se)
		c.set.Add(t)
	})
	c.consumed = false
	return nil
}

// Done is a no-op; a collecting barrier is drained by emitting.
func (c *CollectingBarrier) Done() {}

// ProcessNextStart emits the next collected traverser.
func (c *CollectingBarrier) ProcessNextStart() (*traverser.Traverser, error) {
	if c.set.IsEmpty() {
		ok, err := c.HasStarts()
		if err != nil {
			return nil, err
		}
		if ok {
			if err := c.ProcessAllStarts(); err != nil {
				return nil, err
			}
			c.consumed = false
		}
	}
	if !c.consumed {
		if c.Consumer != nil {
			c.Consumer(c.set)
		}
		c.consumed = true
	}
	t, ok := c.set.Remove()
	if !ok {
		return nil, io.EOF
	}
	return t, nil
}

// Reset drops collected traversers.
func (c *CollectingBarrier) Reset() {
	c.Base.Reset()
	c.set.Clear()
	c.consumed = false
}

// Config distinguishes barriers of different sizes.
func (c *CollectingBarrier) Config() any { return c.maxSize }

// MemoryComputeKey merges sets with operator.AddAll.
func (c *CollectingBarrier) MemoryComputeKey() computer.MemoryComputeKey {
	return computer.MustMemoryComputeKey(c.ID(), operator.AddAll, false, true)
}

type nonEmitting struct{}

// NonEmittingSeed is the seed of a reducing barrier that has nothing to
// emit. It is distinct from every value a reducer can produce.
var NonEmittingSeed any = nonEmitting{}

// ReducingBarrier folds its starts into a single value with an associative
// operator and emits that value once.
//
// The fold starts from Seed when set, and from the first projected start
// otherwise. Project maps a traverser to the value folded in; it defaults
// to the traverser's value. Finalize maps the folded value to the emitted
// one; it defaults to the identity.
type ReducingBarrier struct {
	Base
	Seed     func() any
	Operator operator.Reducer
	Project  func(t *traverser.Traverser) any
	Finalize func(v any) any

	seed          any
	processedOnce bool
}

// Init prepares r for use.
func (r *ReducingBarrier) Init(seed func() any, op operator.Reducer, project func(*traverser.Traverser) any) {
	r.Base.Init(r)
	r.Seed = seed
	r.Operator = op
	r.Project = project
	r.seed = NonEmittingSeed
	r.processedOnce = false
}

// ResetClone prepares a ReducingBarrier copied by value.
func (r *ReducingBarrier) ResetClone() {
	r.Base.ResetClone(r)
	r.seed = NonEmittingSeed
	r.processedOnce = false
}

// Current returns the running fold, or NonEmittingSeed.
func (r *ReducingBarrier) Current() any { return r.seed }

func (r *ReducingBarrier) project(t *traverser.Traverser) any {
	if r.Project == nil {
		return t.Value()
	}
	return r.Project(t)
}

// ProcessAllStarts folds the available starts into the running value.
func (r *ReducingBarrier) ProcessAllStarts() error {
	ok, err := r.HasStarts()
	if err != nil {
		return err
	}
	if r.processedOnce && !ok {
		return nil
	}
	r.processedOnce = true
	if r.seed == NonEmittingSeed {
		if r.Seed != nil {
			r.seed = r.Seed()
		} else if ok {
			t, err := r.NextStart()
			if err != nil {
				return err
			}
			r.seed = r.project(t)
		}
	}
	for {
		ok, err := r.HasStarts()
		if err != nil || !ok {
			return err
		}
		t, err := r.NextStart()
		if err != nil {
			return err
		}
		r.seed = r.Operator.Apply(r.seed, r.project(t))
	}
}

// HasNextBarrier reports whether a partial value is available.
func (r *ReducingBarrier) HasNextBarrier() (bool, error) {
	if err := r.ProcessAllStarts(); err != nil {
		return false, err
	}
	return r.seed != NonEmittingSeed, nil
}

// NextBarrier takes the partial value.
func (r *ReducingBarrier) NextBarrier() (any, error) {
	ok, err := r.HasNextBarrier()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}
	v := r.seed
	r.seed = NonEmittingSeed
	return v, nil
}

// AddBarrier merges a partial value from another clone with the operator.
func (r *ReducingBarrier) AddBarrier(b any) error {
	if r.seed == NonEmittingSeed {
		r.seed = b
	} else {
		r.seed = r.Operator.Apply(r.seed, b)
	}
	return nil
}

// Done marks the barrier drained.
func (r *ReducingBarrier) Done() {
	r.processedOnce = true
	r.seed = NonEmittingSeed
}

// ProcessNextStart emits the folded value once.
func (r *ReducingBarrier) ProcessNextStart() (*traverser.Traverser, error) {
	if err := r.ProcessAllStarts(); err != nil {
		return nil, err
	}
	if r.seed == NonEmittingSeed {
		return nil, io.EOF
	}
	v := r.seed
	if r.Finalize != nil {
		v = r.Finalize(v)
	}
	r.seed = NonEmittingSeed
	return r.Generate(v, 1), nil
}

// Reset drops the running value.
func (r *ReducingBarrier) Reset() {
	r.Base.Reset()
	r.processedOnce = false
	r.seed = NonEmittingSeed
}

// MemoryComputeKey merges partial values with the barrier's operator.
func (r *ReducingBarrier) MemoryComputeKey() computer.MemoryComputeKey {
	return computer.MustMemoryComputeKey(r.ID(), r.Operator, false, true)
}

// SupplyingBarrier discards its starts and emits one supplied value per
// activation. Partial states are "done" flags merged with operator.And.
type SupplyingBarrier struct {
	Base
	Supply func() any

	done bool
}

// Init prepares s for use.
func (s *SupplyingBarrier) Init(supply func() any) {
	s.Base.Init(s)
	s.Supply = supply
	s.done = false
}

// ResetClone prepares a SupplyingBarrier copied by value.
func (s *SupplyingBarrier) ResetClone() {
	s.Base.ResetClone(s)
	s.done = false
}

// AddStart queues t and re-arms the barrier.
func (s *SupplyingBarrier) AddStart(t *traverser.Traverser) {
	s.done = false
	s.Base.AddStart(t)
}

// AddStarts queues ts and re-arms the barrier when ts is not empty.
func (s *SupplyingBarrier) AddStarts(ts ...*traverser.Traverser) {
	if len(ts) > 0 {
		s.done = false
		s.Base.AddStarts(ts...)
	}
}

// ProcessAllStarts discards every available start.
func (s *SupplyingBarrier) ProcessAllStarts() error {
	for {
		ok, err := s.HasStarts()
		if err != nil || !ok {
			return err
		}
		if _, err := s.NextStart(); err != nil {
			return err
		}
	}
}

// HasNextBarrier reports whether the barrier has not been drained.
func (s *SupplyingBarrier) HasNextBarrier() (bool, error) {
	return !s.done, nil
}

// NextBarrier drains the starts and returns true.
func (s *SupplyingBarrier) NextBarrier() (any, error) {
	if err := s.ProcessAllStarts(); err != nil {
		return nil, err
	}
	s.done = true
	return true, nil
}

// AddBarrier re-arms the barrier so that it supplies again.
func (s *SupplyingBarrier) AddBarrier(any) error {
	s.done = false
	return nil
}

// Done marks the barrier drained.
func (s *SupplyingBarrier) Done() { s.done = true }

// ProcessNextStart drains the starts and emits the supplied value.
func (s *SupplyingBarrier) ProcessNextStart() (*traverser.Traverser, error) {
	if s.done {
		return nil, io.EOF
	}
	if err := s.ProcessAllStarts(); err != nil {
		return nil, err
	}
	s.done = true
	return s.Generate(s.Supply(), 1), nil
}

// Reset re-arms the barrier.
func (s *SupplyingBarrier) Reset() {
	s.Base.Reset()
	s.done = false
}

// MemoryComputeKey merges done flags with operator.And.
func (s *SupplyingBarrier) MemoryComputeKey() computer.MemoryComputeKey {
	return computer.MustMemoryComputeKey(s.ID(), operator.And, false, true)
}
