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

package clustering

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/runners/local"
)

func buildGraph(t *testing.T, n int, edges [][2]int) *structure.Graph {
	t.Helper()
	g := structure.NewGraph()
	vs := make(map[int]*structure.Vertex)
	for i := 1; i <= n; i++ {
		v, err := g.AddVertex(i, "node")
		if err != nil {
			t.Fatal(err)
		}
		vs[i] = v
	}
	for _, e := range edges {
		if _, err := g.AddEdge("link", vs[e[0]], vs[e[1]]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func components(g *structure.Graph) map[any]any {
	out := make(map[any]any)
	for _, v := range g.Vertices() {
		c, _ := v.Property(ComponentKey)
		out[v.ID()] = c
	}
	return out
}

func TestConnectedComponents(t *testing.T) {
	edges := [][2]int{{1, 2}, {3, 2}, {5, 4}, {7, 8}, {8, 9}, {9, 7}}
	wantComponents := map[any]any{1: 1, 2: 1, 3: 1, 4: 4, 5: 4, 6: 6, 7: 7, 8: 7, 9: 7}
	wantPopulation := map[any]int64{1: 3, 4: 2, 6: 1, 7: 3}
	for _, workers := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			g := buildGraph(t, 9, edges)
			res, err := local.New(g).
				Program(NewConnectedComponent()).
				MapReduce(ClusterCount{}).
				MapReduce(ClusterPopulation{}).
				Workers(workers).
				Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit() = %v", err)
			}
			if diff := cmp.Diff(wantComponents, components(res.Graph)); diff != "" {
				t.Errorf("components mismatch (-want +got):\n%s", diff)
			}
			if got, err := res.Memory.Get(ClusterCountKey); err != nil || got != int64(4) {
				t.Errorf("Get(%v) = %v, %v; want 4", ClusterCountKey, got, err)
			}
			got, err := res.Memory.Get(ClusterPopulationKey)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(wantPopulation, got); diff != "" {
				t.Errorf("population mismatch (-want +got):\n%s", diff)
			}
			if computer.Exists(res.Memory, haltKey) {
				t.Error("transient halt key kept in the result memory")
			}
		})
	}
}

func TestDirectedScope(t *testing.T) {
	// Ids only flow along out edges, so 3->2->1 keeps every label while
	// 1->2->3 spreads 1 to the end of the chain.
	tests := []struct {
		edges [][2]int
		want  map[any]any
	}{
		{[][2]int{{3, 2}, {2, 1}}, map[any]any{1: 1, 2: 2, 3: 3}},
		{[][2]int{{1, 2}, {2, 3}}, map[any]any{1: 1, 2: 1, 3: 1}},
	}
	for _, test := range tests {
		p := &ConnectedComponent{Scope: computer.Local(computer.OutE())}
		res, err := local.New(buildGraph(t, 3, test.edges)).Program(p).Workers(2).Submit(context.Background())
		if err != nil {
			t.Fatalf("Submit() = %v", err)
		}
		if diff := cmp.Diff(test.want, components(res.Graph)); diff != "" {
			t.Errorf("edges %v: components mismatch (-want +got):\n%s", test.edges, diff)
		}
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{1, 2, -1},
		{int64(3), 2, 1},
		{2.5, 2.5, 0},
		{"a", "b", -1},
		{"10", 9, -1},
	}
	for _, test := range tests {
		if got := compareIDs(test.a, test.b); got != test.want {
			t.Errorf("compareIDs(%v, %v) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
