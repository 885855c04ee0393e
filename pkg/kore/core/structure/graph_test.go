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

package structure

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// modern builds a small social graph: 1 knows 2 and 4, 1 created 3, 4
// created 3 and 5, 6 created 3.
func modern(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	v := map[int]*Vertex{}
	for _, id := range []int{1, 2, 3, 4, 5, 6} {
		label := "person"
		if id == 3 || id == 5 {
			label = "software"
		}
		var err error
		if v[id], err = g.AddVertex(id, label, "name", label+string(rune('a'+id))); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []struct {
		label   string
		out, in int
	}{
		{"knows", 1, 2}, {"knows", 1, 4}, {"created", 1, 3},
		{"created", 4, 3}, {"created", 4, 5}, {"created", 6, 3},
	} {
		if _, err := g.AddEdge(e.label, v[e.out], v[e.in]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func ids(vs []*Vertex) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.ID()
	}
	return out
}

func TestIncidence(t *testing.T) {
	g := modern(t)
	one, _ := g.Vertex(1)
	three, _ := g.Vertex(3)

	if diff := cmp.Diff([]any{2, 4, 3}, ids(one.Vertices(Out))); diff != "" {
		t.Errorf("out vertices (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{2, 4}, ids(one.Vertices(Out, "knows"))); diff != "" {
		t.Errorf("out knows (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{1, 4, 6}, ids(three.Vertices(In))); diff != "" {
		t.Errorf("in vertices (-want +got):\n%s", diff)
	}
	if got := len(three.Edges(Both)); got != 3 {
		t.Errorf("both edges = %d, want 3", got)
	}
	if g.VertexCount() != 6 || g.EdgeCount() != 6 {
		t.Errorf("counts %d/%d", g.VertexCount(), g.EdgeCount())
	}
}

func TestDuplicateVertex(t *testing.T) {
	g := NewGraph()
	if _, err := g.AddVertex(1, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddVertex(1, "b"); !errors.Is(err, ErrDuplicateVertex) {
		t.Errorf("err = %v, want ErrDuplicateVertex", err)
	}
	if _, err := g.AddVertex(2, "b", "odd"); err == nil {
		t.Error("odd key/values should fail")
	}
}

func TestProperties(t *testing.T) {
	g := modern(t)
	v, _ := g.Vertex(2)
	if got, _ := v.Property(KeyLabel); got != "person" {
		t.Errorf("label property = %v", got)
	}
	v.SetProperty("age", 27)
	if diff := cmp.Diff([]string{"age", "name"}, v.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	v.RemoveProperty("age")
	if _, ok := v.Property("age"); ok {
		t.Error("removed property still present")
	}
	if got := v.Detach(); got != (Reference{ID: 2, Label: "person"}) {
		t.Errorf("Detach() = %v", got)
	}
}

func TestSubgraph(t *testing.T) {
	g := modern(t)
	sub := g.Subgraph(
		func(v *Vertex) bool { return v.Label() == "person" },
		func(e *Edge) bool { return e.Label() == "knows" },
	)
	if sub.VertexCount() != 4 || sub.EdgeCount() != 2 {
		t.Fatalf("subgraph counts %d/%d", sub.VertexCount(), sub.EdgeCount())
	}
	one, _ := sub.Vertex(1)
	one.SetProperty("name", "changed")
	orig, _ := g.Vertex(1)
	if got, _ := orig.Property("name"); got == "changed" {
		t.Error("subgraph shares properties with the source")
	}
}

func TestDirection(t *testing.T) {
	for _, d := range []Direction{Out, In, Both} {
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDirection(%v) = %v, %v", d, got, err)
		}
	}
	if Out.Opposite() != In || Both.Opposite() != Both {
		t.Error("Opposite mismatch")
	}
}
