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

// Package steps contains concrete steps built on the step framework: a
// start step, simple one-to-one steps, and barriers that count, sum, fold
// and supply.
package steps

import (
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
)

// Inject starts a traversal with fixed values, then passes any other starts
// through.
type Inject struct {
	step.Base
	values   []any
	injected bool
}

// NewInject returns a step emitting vs.
func NewInject(vs ...any) *Inject {
	s := &Inject{values: vs}
	s.Init(s)
	return s
}

// ProcessNextStart emits the injected values, then the queued starts.
func (s *Inject) ProcessNextStart() (*traverser.Traverser, error) {
	if !s.injected {
		s.injected = true
		for _, v := range s.values {
			t := s.Generate(v, 1)
			t.SetStepID(s.ID())
			s.AddStart(t)
		}
	}
	return s.NextStart()
}

// Reset lets the values be injected again.
func (s *Inject) Reset() {
	s.Base.Reset()
	s.injected = false
}

// Clone returns a copy that injects the same values.
func (s *Inject) Clone() step.Step {
	c := *s
	c.ResetClone(&c)
	c.injected = false
	return &c
}

func (s *Inject) String() string {
	return step.String(s, s.values...)
}

// Identity passes traversers through unchanged.
type Identity struct {
	step.Base
}

// NewIdentity returns an identity step.
func NewIdentity() *Identity {
	s := &Identity{}
	s.Init(s)
	return s
}

// ProcessNextStart passes the next start through.
func (s *Identity) ProcessNextStart() (*traverser.Traverser, error) {
	return s.NextStart()
}

// Clone returns a copy.
func (s *Identity) Clone() step.Step {
	c := *s
	c.ResetClone(&c)
	return &c
}

func (s *Identity) String() string { return step.String(s) }

// Map replaces each traverser's value with Fn's result, extending its path.
type Map struct {
	step.Base
	Name string
	Fn   func(t *traverser.Traverser) (any, error)
}

// NewMap returns a map step. The name identifies the function for equality
// and printing.
func NewMap(name string, fn func(t *traverser.Traverser) (any, error)) *Map {
	s := &Map{Name: name, Fn: fn}
	s.Init(s)
	return s
}

// ProcessNextStart maps the next start.
func (s *Map) ProcessNextStart() (*traverser.Traverser, error) {
	t, err := s.NextStart()
	if err != nil {
		return nil, err
	}
	v, err := s.Fn(t)
	if err != nil {
		return nil, err
	}
	return t.SplitTo(v), nil
}

// Clone returns a copy sharing Fn.
func (s *Map) Clone() step.Step {
	c := *s
	c.ResetClone(&c)
	return &c
}

// Config distinguishes maps by name.
func (s *Map) Config() any { return s.Name }

func (s *Map) String() string { return step.String(s, s.Name) }

// Filter drops traversers for which Fn returns false.
type Filter struct {
	step.Base
	Name string
	Fn   func(t *traverser.Traverser) (bool, error)
}

// NewFilter returns a filter step.
func NewFilter(name string, fn func(t *traverser.Traverser) (bool, error)) *Filter {
	s := &Filter{Name: name, Fn: fn}
	s.Init(s)
	return s
}

// ProcessNextStart returns the next start that passes Fn.
func (s *Filter) ProcessNextStart() (*traverser.Traverser, error) {
	for {
		t, err := s.NextStart()
		if err != nil {
			return nil, err
		}
		ok, err := s.Fn(t)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
}

// Clone returns a copy sharing Fn.
func (s *Filter) Clone() step.Step {
	c := *s
	c.ResetClone(&c)
	return &c
}

// Config distinguishes filters by name.
func (s *Filter) Config() any { return s.Name }

func (s *Filter) String() string { return step.String(s, s.Name) }
