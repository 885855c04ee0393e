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

// Package traverser defines the unit of flow through a step pipeline: a
// value with a bulk, an optional path, and routing metadata.
package traverser

import (
	"fmt"
	"maps"
	"sync"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/path"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/values"
)

// Halt is the step id of traversers that have left the last step.
const Halt = "halt"

// Traverser carries a value through the pipeline. A bulk of n stands for n
// identical traversers.
type Traverser struct {
	value       any
	bulk        int64
	path        path.Path
	sideEffects *SideEffects
	stepID      string
	loops       int
}

// Value returns the current value.
func (t *Traverser) Value() any {
	return t.value
}

// Set replaces the current value without touching the path.
func (t *Traverser) Set(v any) {
	t.value = v
}

// Bulk returns the repetition count.
func (t *Traverser) Bulk() int64 {
	return t.bulk
}

// SetBulk sets the repetition count.
func (t *Traverser) SetBulk(b int64) {
	t.bulk = b
}

// Path returns the history. It is path.Empty when paths are not tracked.
func (t *Traverser) Path() path.Path {
	return t.path
}

// StepID returns the id of the step the traverser is headed to.
func (t *Traverser) StepID() string {
	return t.stepID
}

// SetStepID routes the traverser to the step with the given id.
func (t *Traverser) SetStepID(id string) {
	t.stepID = id
}

// Loops returns the loop counter.
func (t *Traverser) Loops() int {
	return t.loops
}

// IncrLoops increments the loop counter.
func (t *Traverser) IncrLoops() {
	t.loops++
}

// ResetLoops zeroes the loop counter.
func (t *Traverser) ResetLoops() {
	t.loops = 0
}

// SideEffects returns the side effects of the owning traversal, if any.
func (t *Traverser) SideEffects() *SideEffects {
	return t.sideEffects
}

// SetSideEffects attaches the traverser to a traversal's side effects.
func (t *Traverser) SetSideEffects(se *SideEffects) {
	t.sideEffects = se
}

// Split forks t. A mutable path is deep copied and an immutable path is
// shared.
func (t *Traverser) Split() *Traverser {
	c := *t
	c.path = t.path.Clone()
	return &c
}

// SplitTo forks t onto a new value and records it in the path under labels.
func (t *Traverser) SplitTo(v any, labels ...string) *Traverser {
	c := t.Split()
	c.value = v
	c.path = c.path.Extend(v, labels...)
	return c
}

// Merge folds other into t by adding its bulk.
func (t *Traverser) Merge(other *Traverser) {
	t.bulk += other.bulk
}

// AddLabels labels the head of the path.
func (t *Traverser) AddLabels(labels ...string) {
	if len(labels) > 0 {
		t.path = t.path.ExtendLabels(labels...)
	}
}

// Detach returns a copy that holds no live graph references and no side
// effects, suitable for crossing a worker boundary.
func (t *Traverser) Detach() *Traverser {
	c := *t
	c.value = values.Detach(t.value)
	c.path = path.Detach(t.path)
	c.sideEffects = nil
	return &c
}

// Equal reports whether t and other are interchangeable, meaning that one
// can absorb the other's bulk.
func (t *Traverser) Equal(other *Traverser) bool {
	return t.stepID == other.stepID &&
		t.loops == other.loops &&
		values.Equal(t.value, other.value) &&
		path.Equal(t.path, other.path)
}

// Hash is consistent with Equal.
func (t *Traverser) Hash() uint64 {
	return values.Combine(values.Hash(t.value), values.Hash(t.stepID), uint64(t.loops), path.Hash(t.path))
}

func (t *Traverser) String() string {
	return fmt.Sprint(t.value)
}

// PathKind selects the path representation a Generator attaches.
type PathKind int

const (
	// NoPaths attaches path.Empty.
	NoPaths PathKind = iota
	// ImmutablePaths attaches persistent paths shared between forks.
	ImmutablePaths
	// MutablePaths attaches slice backed paths copied on fork.
	MutablePaths
)

// Generator creates traversers for a traversal.
type Generator struct {
	Paths PathKind
}

// Generate returns a traverser on v. When paths are tracked, v is the first
// path entry labeled with labels.
func (g Generator) Generate(v any, bulk int64, labels ...string) *Traverser {
	var p path.Path
	switch g.Paths {
	case ImmutablePaths:
		p = path.NewImmutable().Extend(v, labels...)
	case MutablePaths:
		p = path.NewMutable().Extend(v, labels...)
	default:
		p = path.Empty
	}
	return &Traverser{value: v, bulk: bulk, path: p}
}

// SideEffects is the concurrency safe key/value store shared by every
// traverser of a traversal.
type SideEffects struct {
	mu sync.Mutex
	m  map[string]any
}

// NewSideEffects returns an empty store.
func NewSideEffects() *SideEffects {
	return &SideEffects{m: map[string]any{}}
}

// Get returns the value under key.
func (s *SideEffects) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

// Set stores v under key.
func (s *SideEffects) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
}

// Keys returns the stored keys in no particular order.
func (s *SideEffects) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	return out
}

// Clone returns a shallow copy of the store.
func (s *SideEffects) Clone() *SideEffects {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &SideEffects{m: maps.Clone(s.m)}
}
