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

package barrier

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/runners/local"
	"github.com/tinkercat/gremlin-kore/pkg/kore/steps"
)

// valueGraph has n vertices; all but every seventh carry a random "value".
func valueGraph(t *testing.T, n int, seed int64) *structure.Graph {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	g := structure.NewGraph()
	for i := 0; i < n; i++ {
		var kvs []any
		if i%7 != 0 {
			kvs = []any{"value", r.Intn(100)}
		}
		if _, err := g.AddVertex(i, "number", kvs...); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

// oltp runs t in a single process over the start values of g.
func oltp(t *testing.T, tr *step.Traversal, g *structure.Graph) []any {
	t.Helper()
	c := tr.Clone()
	for _, v := range g.Vertices() {
		if s, ok := v.Property("value"); ok {
			c.AddStart(s, 1)
		}
	}
	out, err := c.ToList()
	if err != nil {
		t.Fatalf("ToList() = %v", err)
	}
	return out
}

// olap runs t as a Program on the local computer.
func olap(t *testing.T, tr *step.Traversal, g *structure.Graph, workers int) []any {
	t.Helper()
	p, err := New(tr, Property("value"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := local.New(g).Program(p).Workers(workers).Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	out, err := Results(res.Memory)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func sortInts(vs []any) []any {
	out := append([]any(nil), vs...)
	sort.Slice(out, func(i, j int) bool { return out[i].(int) < out[j].(int) })
	return out
}

func TestOLTPEqualsOLAP(t *testing.T) {
	byValue := func(a, b any) bool { return a.(int) < b.(int) }
	tests := []struct {
		name      string
		traversal func() *step.Traversal
		// normalize puts results whose order depends on the merge order
		// into a canonical form.
		normalize func([]any) []any
	}{
		{name: "sum", traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewSum()) }},
		{name: "count", traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewCount()) }},
		{name: "min", traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewMin()) }},
		{name: "max", traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewMax()) }},
		{
			name:      "fold",
			traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewFold()) },
			normalize: func(vs []any) []any {
				if len(vs) == 0 {
					return vs
				}
				return []any{sortInts(vs[0].([]any))}
			},
		},
		{
			name:      "noop",
			traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewNoOpBarrier(0)) },
			normalize: sortInts,
		},
		{name: "order", traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewOrder(byValue)) }},
		{
			name:      "supply",
			traversal: func() *step.Traversal { return step.NewTraversal(steps.NewIdentity(), steps.NewSupply("answer", func() any { return 42 })) },
		},
	}
	for _, test := range tests {
		for _, n := range []int{0, 1, 40} {
			for _, workers := range []int{1, 3, 8} {
				t.Run(fmt.Sprintf("%s/vertices=%d/workers=%d", test.name, n, workers), func(t *testing.T) {
					g := valueGraph(t, n, int64(n))
					want := oltp(t, test.traversal(), g)
					got := olap(t, test.traversal(), g, workers)
					if test.normalize != nil {
						want, got = test.normalize(want), test.normalize(got)
					}
					if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
						t.Errorf("OLAP differs from OLTP (-oltp +olap):\n%s", diff)
					}
				})
			}
		}
	}
}

func TestKnownResults(t *testing.T) {
	g := structure.NewGraph()
	for i, v := range []int{2, 2, 3, 4, 4} {
		if _, err := g.AddVertex(i, "number", "value", v); err != nil {
			t.Fatal(err)
		}
	}
	got := olap(t, step.NewTraversal(steps.NewIdentity(), steps.NewSum()), g, 2)
	if diff := cmp.Diff([]any{int64(15)}, got); diff != "" {
		t.Errorf("sum mismatch (-want +got):\n%s", diff)
	}
	got = olap(t, step.NewTraversal(steps.NewIdentity(), steps.NewCount()), g, 3)
	if diff := cmp.Diff([]any{int64(5)}, got); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}
}

func TestStartFuncs(t *testing.T) {
	g := structure.NewGraph()
	v, err := g.AddVertex("a", "letter", "value", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := ID(v); !ok || got != "a" {
		t.Errorf("ID(v) = %v, %v", got, ok)
	}
	if got, ok := Vertex(v); !ok || got != v {
		t.Errorf("Vertex(v) = %v, %v", got, ok)
	}
	if _, ok := Property("missing")(v); ok {
		t.Error("Property(missing) selected a vertex without the key")
	}
}

func TestNewRequiresBarrier(t *testing.T) {
	if _, err := New(step.NewTraversal(steps.NewIdentity()), nil); err == nil {
		t.Error("New() accepted a traversal without a barrier")
	}
	p, err := New(step.NewTraversal(steps.NewIdentity(), steps.NewCount()), nil)
	if err != nil {
		t.Fatal(err)
	}
	keys := p.MemoryComputeKeys()
	if len(keys) != 2 || !keys[0].Transient() || keys[1].Key() != ResultKey {
		t.Errorf("MemoryComputeKeys() = %v", keys)
	}
	if _, err := Results(computer.NewMapMemory()); err == nil {
		t.Error("Results() on empty memory succeeded")
	}
}
