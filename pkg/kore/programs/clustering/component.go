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

// Package clustering finds the connected components of a graph and counts
// them.
package clustering

import (
	"cmp"
	"fmt"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/number"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
)

const (
	// ComponentKey is the vertex property holding the component id: the
	// smallest vertex id in the component.
	ComponentKey = "clustering.component"
	haltKey      = "clustering.halt"
)

// ConnectedComponent labels every vertex with the smallest id reachable over
// the edges chosen by Scope, ignoring direction by default. Each superstep
// a vertex adopts the smallest id it hears about and, if that changed its
// label, tells its neighbors. The program halts once no label changes.
type ConnectedComponent struct {
	Scope computer.LocalScope
}

// NewConnectedComponent returns the program over all edges in both
// directions.
func NewConnectedComponent() *ConnectedComponent {
	return &ConnectedComponent{Scope: computer.Local(computer.BothE())}
}

func (p *ConnectedComponent) Setup(m computer.Memory) error {
	return m.Set(haltKey, true)
}

func (p *ConnectedComponent) Execute(v *structure.Vertex, msgr computer.Messenger, m computer.Memory) error {
	if computer.IsInitialIteration(m) {
		v.SetProperty(ComponentKey, v.ID())
		if err := msgr.SendMessage(p.Scope, v.ID()); err != nil {
			return err
		}
		return m.Add(haltKey, false)
	}
	current, _ := v.Property(ComponentKey)
	best := current
	for _, id := range msgr.ReceiveMessages() {
		if compareIDs(id, best) < 0 {
			best = id
		}
	}
	if compareIDs(best, current) == 0 {
		return m.Add(haltKey, true)
	}
	v.SetProperty(ComponentKey, best)
	if err := msgr.SendMessage(p.Scope, best); err != nil {
		return err
	}
	return m.Add(haltKey, false)
}

// Terminate halts when no vertex changed its component in the last
// superstep.
func (p *ConnectedComponent) Terminate(m computer.Memory) (bool, error) {
	halt, err := m.Get(haltKey)
	if err != nil {
		return false, err
	}
	if halt.(bool) {
		return true, nil
	}
	return false, m.Set(haltKey, true)
}

func (p *ConnectedComponent) MemoryComputeKeys() []computer.MemoryComputeKey {
	return []computer.MemoryComputeKey{computer.MustMemoryComputeKey(haltKey, operator.And, false, true)}
}

func (p *ConnectedComponent) VertexComputeKeys() []computer.VertexComputeKey {
	return []computer.VertexComputeKey{{Key: ComponentKey}}
}

func (p *ConnectedComponent) MessageScopes(computer.Memory) []computer.MessageScope {
	return []computer.MessageScope{p.Scope}
}

// MessageCombiner keeps the smallest id sent to a vertex.
func (p *ConnectedComponent) MessageCombiner() operator.Reducer {
	return operator.BinaryOperator(func(a, b any) any {
		if compareIDs(b, a) < 0 {
			return b
		}
		return a
	})
}

func (p *ConnectedComponent) PreferredResultGraph() computer.ResultGraph { return computer.NewGraph }

func (p *ConnectedComponent) PreferredPersist() computer.Persist { return computer.VertexProperties }

func (p *ConnectedComponent) Clone() computer.VertexProgram {
	c := *p
	return &c
}

func (p *ConnectedComponent) String() string {
	return fmt.Sprintf("connectedComponent[%v]", p.Scope.Incident)
}

// compareIDs orders numbers numerically, strings lexically, and anything
// else, including numbers against strings, by its printed form.
func compareIDs(a, b any) int {
	if number.IsNumber(a) && number.IsNumber(b) {
		return number.Compare(a, b)
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return cmp.Compare(sa, sb)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
