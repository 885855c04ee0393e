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

package local

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// testGraph is 1-knows->2, 1-knows->4, 1-created->3, 4-created->3.
func testGraph(t *testing.T) *structure.Graph {
	t.Helper()
	g := structure.NewGraph()
	vs := map[int]*structure.Vertex{}
	for _, id := range []int{1, 2, 3, 4} {
		label := "person"
		if id == 3 {
			label = "software"
		}
		v, err := g.AddVertex(id, label)
		if err != nil {
			t.Fatal(err)
		}
		vs[id] = v
	}
	for _, e := range []struct {
		label   string
		out, in int
	}{
		{"knows", 1, 2}, {"knows", 1, 4}, {"created", 1, 3}, {"created", 4, 3},
	} {
		if _, err := g.AddEdge(e.label, vs[e.out], vs[e.in]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

// inDegree counts incoming edges in two supersteps: every vertex sends 1
// along its out edges, then sums what it receives. It also counts edges in
// memory and writes a transient scratch key.
type inDegree struct {
	combine bool
	scope   computer.LocalScope
}

func newInDegree() *inDegree {
	return &inDegree{scope: computer.Local(computer.OutE())}
}

func (p *inDegree) Setup(m computer.Memory) error {
	return m.Set("edges", int64(0))
}

func (p *inDegree) Execute(v *structure.Vertex, msgr computer.Messenger, m computer.Memory) error {
	v.SetProperty("scratch", true)
	if computer.IsInitialIteration(m) {
		if err := m.Add("edges", int64(len(v.Edges(structure.Out)))); err != nil {
			return err
		}
		return msgr.SendMessage(p.scope, int64(1))
	}
	var n int64
	for _, msg := range msgr.ReceiveMessages() {
		n += msg.(int64)
	}
	v.SetProperty("inDegree", n)
	return nil
}

func (p *inDegree) Terminate(m computer.Memory) (bool, error) {
	return m.Iteration() == 1, nil
}

func (p *inDegree) MemoryComputeKeys() []computer.MemoryComputeKey {
	return []computer.MemoryComputeKey{computer.MustMemoryComputeKey("edges", operator.Sum, false, false)}
}

func (p *inDegree) MessageScopes(computer.Memory) []computer.MessageScope {
	return []computer.MessageScope{p.scope}
}

func (p *inDegree) VertexComputeKeys() []computer.VertexComputeKey {
	return []computer.VertexComputeKey{{Key: "inDegree"}, {Key: "scratch", Transient: true}}
}

func (p *inDegree) MessageCombiner() operator.Reducer {
	if p.combine {
		return operator.Sum
	}
	return nil
}

func (p *inDegree) PreferredPersist() computer.Persist { return computer.VertexProperties }

func (p *inDegree) Clone() computer.VertexProgram {
	c := *p
	return &c
}

func (p *inDegree) String() string { return "inDegree" }

func degrees(g *structure.Graph) map[any]any {
	out := map[any]any{}
	for _, v := range g.Vertices() {
		if d, ok := v.Property("inDegree"); ok {
			out[v.ID()] = d
		}
	}
	return out
}

func TestInDegree(t *testing.T) {
	want := map[any]any{1: int64(0), 2: int64(1), 3: int64(2), 4: int64(1)}
	for _, workers := range []int{1, 2, 3, 8} {
		for _, combine := range []bool{false, true} {
			t.Run(fmt.Sprintf("workers=%d/combine=%v", workers, combine), func(t *testing.T) {
				g := testGraph(t)
				p := newInDegree()
				p.combine = combine
				res, err := New(g).Program(p).Workers(workers).Submit(context.Background())
				if err != nil {
					t.Fatalf("Submit() = %v", err)
				}
				if diff := cmp.Diff(want, degrees(res.Graph)); diff != "" {
					t.Errorf("in degrees mismatch (-want +got):\n%s", diff)
				}
				if got, err := res.Memory.Get("edges"); err != nil || got != int64(4) {
					t.Errorf("Get(edges) = %v, %v; want 4", got, err)
				}
				if got := res.Memory.Iteration(); got != 1 {
					t.Errorf("Iteration() = %d, want 1", got)
				}
				for _, v := range res.Graph.Vertices() {
					if _, ok := v.Property("scratch"); ok {
						t.Errorf("transient key scratch kept on %v", v)
					}
				}
				if len(degrees(g)) != 0 {
					t.Errorf("input graph modified: %v", degrees(g))
				}
			})
		}
	}
}

func TestResultGraphPersist(t *testing.T) {
	tests := []struct {
		result          computer.ResultGraph
		persist         computer.Persist
		original        bool
		vertices, edges int
		degrees         int
	}{
		{computer.Original, computer.Nothing, true, 4, 4, 0},
		{computer.NewGraph, computer.Nothing, false, 0, 0, 0},
		{computer.Original, computer.VertexProperties, true, 4, 4, 4},
		{computer.NewGraph, computer.VertexProperties, false, 4, 0, 4},
		{computer.NewGraph, computer.Edges, false, 4, 4, 4},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v/%v", test.result, test.persist), func(t *testing.T) {
			g := testGraph(t)
			res, err := New(g).Program(newInDegree()).Result(test.result).Persist(test.persist).Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit() = %v", err)
			}
			if got := res.Graph == g; got != test.original {
				t.Errorf("result is input graph = %v, want %v", got, test.original)
			}
			if got := res.Graph.VertexCount(); got != test.vertices {
				t.Errorf("VertexCount() = %d, want %d", got, test.vertices)
			}
			if got := res.Graph.EdgeCount(); got != test.edges {
				t.Errorf("EdgeCount() = %d, want %d", got, test.edges)
			}
			if got := len(degrees(res.Graph)); got != test.degrees {
				t.Errorf("vertices with inDegree = %d, want %d", got, test.degrees)
			}
		})
	}
}

func TestGraphFilters(t *testing.T) {
	t.Run("edges", func(t *testing.T) {
		c := New(testGraph(t))
		if err := c.Edges(computer.Filter{computer.OutE("knows")}); err != nil {
			t.Fatal(err)
		}
		res, err := c.Program(newInDegree()).Persist(computer.Edges).Submit(context.Background())
		if err != nil {
			t.Fatalf("Submit() = %v", err)
		}
		want := map[any]any{1: int64(0), 2: int64(1), 3: int64(0), 4: int64(1)}
		if diff := cmp.Diff(want, degrees(res.Graph)); diff != "" {
			t.Errorf("in degrees mismatch (-want +got):\n%s", diff)
		}
		if got := res.Graph.EdgeCount(); got != 2 {
			t.Errorf("EdgeCount() = %d, want 2", got)
		}
	})
	t.Run("vertices", func(t *testing.T) {
		c := New(testGraph(t))
		if err := c.Vertices(computer.Filter{computer.Has(structure.KeyLabel, "person")}); err != nil {
			t.Fatal(err)
		}
		res, err := c.Program(newInDegree()).Submit(context.Background())
		if err != nil {
			t.Fatalf("Submit() = %v", err)
		}
		want := map[any]any{1: int64(0), 2: int64(1), 4: int64(1)}
		if diff := cmp.Diff(want, degrees(res.Graph)); diff != "" {
			t.Errorf("in degrees mismatch (-want +got):\n%s", diff)
		}
		if got, _ := res.Memory.Get("edges"); got != int64(2) {
			t.Errorf("Get(edges) = %v, want 2", got)
		}
	})
	t.Run("illegal", func(t *testing.T) {
		c := New(testGraph(t))
		if err := c.Vertices(computer.Filter{computer.OutE()}); !errors.Is(err, computer.ErrVertexFilterAccessesEdges) {
			t.Errorf("Vertices(outE()) = %v, want ErrVertexFilterAccessesEdges", err)
		}
		if err := c.Edges(computer.Filter{computer.OutE(), computer.InV(), computer.OutE()}); !errors.Is(err, computer.ErrEdgeFilterAccessesAdjacent) {
			t.Errorf("Edges(outE().inV().outE()) = %v, want ErrEdgeFilterAccessesAdjacent", err)
		}
	})
}

// broadcaster sends its id to every vertex through the global scope and
// records the largest id it hears about.
type broadcaster struct {
	ids []any
}

func (p *broadcaster) Setup(computer.Memory) error { return nil }

func (p *broadcaster) Execute(v *structure.Vertex, msgr computer.Messenger, m computer.Memory) error {
	if computer.IsInitialIteration(m) {
		return msgr.SendMessage(computer.Global(p.ids...), v.ID())
	}
	best := 0
	for _, msg := range msgr.ReceiveMessages() {
		best = max(best, msg.(int))
	}
	if err := m.Add("heard", int64(len(msgr.ReceiveMessages()))); err != nil {
		return err
	}
	v.SetProperty("max", best)
	return nil
}

func (p *broadcaster) Terminate(m computer.Memory) (bool, error) { return m.Iteration() == 1, nil }

func (p *broadcaster) MemoryComputeKeys() []computer.MemoryComputeKey {
	return []computer.MemoryComputeKey{computer.MustMemoryComputeKey("heard", operator.SumLong, false, false)}
}

func (p *broadcaster) MessageScopes(computer.Memory) []computer.MessageScope {
	return []computer.MessageScope{computer.Global(p.ids...)}
}

func (p *broadcaster) PreferredPersist() computer.Persist { return computer.VertexProperties }

func (p *broadcaster) Clone() computer.VertexProgram {
	c := *p
	return &c
}

func TestGlobalMessages(t *testing.T) {
	g := testGraph(t)
	res, err := New(g).Program(&broadcaster{ids: []any{1, 2, 3, 4}}).Workers(2).Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	for _, v := range res.Graph.Vertices() {
		if got, _ := v.Property("max"); got != 4 {
			t.Errorf("%v max = %v, want 4", v, got)
		}
	}
	if got, _ := res.Memory.Get("heard"); got != int64(16) {
		t.Errorf("Get(heard) = %v, want 16", got)
	}
}

// forever never terminates and may fail or panic on request.
type forever struct {
	fail, panics bool
	iterations   int
}

func (p *forever) Setup(computer.Memory) error { return nil }

func (p *forever) Execute(v *structure.Vertex, _ computer.Messenger, _ computer.Memory) error {
	if p.panics {
		panic("boom")
	}
	if p.fail {
		return errors.New("execute failed")
	}
	return nil
}

func (p *forever) Terminate(m computer.Memory) (bool, error) {
	p.iterations++
	return false, nil
}

func (p *forever) MemoryComputeKeys() []computer.MemoryComputeKey        { return nil }
func (p *forever) MessageScopes(computer.Memory) []computer.MessageScope { return nil }

func (p *forever) Clone() computer.VertexProgram {
	c := *p
	return &c
}

func TestMaxIterations(t *testing.T) {
	p := &forever{}
	res, err := New(testGraph(t)).MaxIterations(5).Program(p).Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	if p.iterations != 5 {
		t.Errorf("Terminate called %d times, want 5", p.iterations)
	}
	if got := res.Memory.Iteration(); got != 4 {
		t.Errorf("Iteration() = %d, want 4", got)
	}
}

func TestSubmitErrors(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t)
	tests := []struct {
		name string
		c    computer.GraphComputer
		want error
	}{
		{"no program", New(g), computer.ErrNoProgram},
		{"too many workers", New(g).Program(&forever{}).Workers(MaxWorkers + 1), computer.ErrTooManyWorkers},
		{"original edges", New(g).Program(&forever{}).Result(computer.Original).Persist(computer.Edges), computer.ErrResultPersistUnsupported},
	}
	for _, test := range tests {
		if _, err := test.c.Submit(ctx); !errors.Is(err, test.want) {
			t.Errorf("%s: Submit() = %v, want %v", test.name, err, test.want)
		}
	}

	c := New(g).MaxIterations(1).Program(&forever{})
	if _, err := c.Submit(ctx); err != nil {
		t.Fatalf("first Submit() = %v", err)
	}
	if _, err := c.Submit(ctx); !errors.Is(err, computer.ErrAlreadySubmitted) {
		t.Errorf("second Submit() = %v, want ErrAlreadySubmitted", err)
	}
}

func TestExecuteFailures(t *testing.T) {
	ctx := context.Background()
	if _, err := New(testGraph(t)).Program(&forever{fail: true}).Submit(ctx); err == nil {
		t.Error("Submit() with failing program succeeded")
	}
	_, err := New(testGraph(t)).Program(&forever{panics: true}).Workers(2).Submit(ctx)
	if err == nil {
		t.Fatal("Submit() with panicking program succeeded")
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := New(testGraph(t)).Program(&forever{}).Submit(cctx); !errors.Is(err, step.ErrInterrupted) {
		t.Errorf("Submit() with cancelled context = %v, want ErrInterrupted", err)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(testGraph(t)).WithMetrics(m)
	if _, err := c.Program(newInDegree()).Workers(2).Submit(context.Background()); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	if got := testutil.ToFloat64(m.supersteps); got != 2 {
		t.Errorf("supersteps = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.executions); got != 8 {
		t.Errorf("vertex executions = %v, want 8", got)
	}
	if got := testutil.ToFloat64(m.messages.WithLabelValues("local")); got != 4 {
		t.Errorf("local messages = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok submissions = %v, want 1", got)
	}
}
