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

// Package barrier runs a traversal ending in a barrier step as a vertex
// program. Every worker feeds its vertices through its own clone of the
// traversal, hands the partial barrier to memory, and the master merges the
// partials into a single barrier and drains it. The results are the same as
// running the traversal over all vertices in one process.
package barrier

import (
	"fmt"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// ResultKey is the memory key holding the drained results as []any.
const ResultKey = "barrier.result"

// StartFunc selects the start value for a vertex. Vertices for which it
// returns false are skipped.
type StartFunc func(v *structure.Vertex) (any, bool)

// Vertex starts from the vertex itself.
func Vertex(v *structure.Vertex) (any, bool) { return v, true }

// ID starts from the vertex id.
func ID(v *structure.Vertex) (any, bool) { return v.ID(), true }

// Property starts from the value of key, skipping vertices without it.
func Property(key string) StartFunc {
	return func(v *structure.Vertex) (any, bool) {
		return v.Property(key)
	}
}

// Program is a VertexProgram around a traversal whose last step is a
// step.Barrier.
type Program struct {
	traversal *step.Traversal
	start     StartFunc
	key       computer.MemoryComputeKey

	// local is the worker's clone; nil on the program handed to the
	// computer.
	local   *step.Traversal
	barrier step.Barrier
}

// New returns a program running t from the start values chosen by start.
// A nil start uses the vertex itself.
func New(t *step.Traversal, start StartFunc) (*Program, error) {
	b, ok := t.EndStep().(step.Barrier)
	if !ok {
		return nil, errors.Errorf("traversal %v does not end in a barrier", t)
	}
	if start == nil {
		start = Vertex
	}
	return &Program{traversal: t, start: start, key: b.MemoryComputeKey()}, nil
}

// Setup has nothing to initialize.
func (p *Program) Setup(computer.Memory) error { return nil }

// Execute adds the vertex's start value to the worker's traversal.
func (p *Program) Execute(v *structure.Vertex, _ computer.Messenger, m computer.Memory) error {
	if !computer.IsInitialIteration(m) {
		return nil
	}
	if p.local == nil {
		return errors.Errorf("%v executed without a worker clone", p)
	}
	if s, ok := p.start(v); ok {
		p.local.AddStart(s, 1)
	}
	return nil
}

// WorkerIterationEnd folds the worker's starts into its barrier and adds
// the partial result to memory.
func (p *Program) WorkerIterationEnd(m computer.Memory) error {
	if p.local == nil {
		return nil
	}
	defer p.local.Reset()
	ok, err := p.barrier.HasNextBarrier()
	if err != nil || !ok {
		return err
	}
	b, err := p.barrier.NextBarrier()
	if err != nil {
		return err
	}
	return m.Add(p.key.Key(), b)
}

// Terminate merges the partial barriers into a fresh clone of the traversal
// and stores its output under ResultKey.
func (p *Program) Terminate(m computer.Memory) (bool, error) {
	t := p.traversal.Clone()
	if computer.Exists(m, p.key.Key()) {
		b, err := m.Get(p.key.Key())
		if err != nil {
			return false, err
		}
		if err := t.EndStep().(step.Barrier).AddBarrier(b); err != nil {
			return false, errors.WithContextf(err, "merging partial barriers of %v", p)
		}
	}
	out, err := t.ToList()
	if err != nil {
		return false, errors.WithContextf(err, "draining %v", p)
	}
	if out == nil {
		out = []any{}
	}
	return true, m.Set(ResultKey, out)
}

// MemoryComputeKeys returns the barrier's key and the result key.
func (p *Program) MemoryComputeKeys() []computer.MemoryComputeKey {
	return []computer.MemoryComputeKey{
		p.key,
		computer.MustMemoryComputeKey(ResultKey, operator.Assign, false, false),
	}
}

// MessageScopes is empty: workers never message each other.
func (p *Program) MessageScopes(computer.Memory) []computer.MessageScope { return nil }

// PreferredResultGraph keeps the input graph.
func (p *Program) PreferredResultGraph() computer.ResultGraph { return computer.Original }

// PreferredPersist writes nothing back.
func (p *Program) PreferredPersist() computer.Persist { return computer.Nothing }

// Clone returns a worker copy with its own traversal.
func (p *Program) Clone() computer.VertexProgram {
	c := *p
	c.local = p.traversal.Clone()
	c.barrier = c.local.EndStep().(step.Barrier)
	return &c
}

func (p *Program) String() string {
	return fmt.Sprintf("barrierProgram[%v]", p.traversal)
}

// Results returns the output stored by a completed Program.
func Results(m computer.Memory) ([]any, error) {
	v, err := m.Get(ResultKey)
	if err != nil {
		return nil, err
	}
	out, ok := v.([]any)
	if !ok {
		return nil, errors.Errorf("memory key %v holds %T, not []any", ResultKey, v)
	}
	return out, nil
}
