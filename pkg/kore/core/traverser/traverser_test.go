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

package traverser

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/path"
)

func valuesOf(s *Set) []any {
	var out []any
	s.Each(func(t *Traverser) { out = append(out, t.Value()) })
	return out
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		kind     PathKind
		wantSize int
	}{
		{NoPaths, 0},
		{ImmutablePaths, 1},
		{MutablePaths, 1},
	}
	for _, test := range tests {
		tr := Generator{Paths: test.kind}.Generate("v", 3, "a")
		if tr.Value() != "v" || tr.Bulk() != 3 {
			t.Errorf("Generate(%v) = %v bulk %d", test.kind, tr.Value(), tr.Bulk())
		}
		if got := tr.Path().Size(); got != test.wantSize {
			t.Errorf("Generate(%v) path size = %d, want %d", test.kind, got, test.wantSize)
		}
	}
}

func TestSplitMutableIsIndependent(t *testing.T) {
	a := Generator{Paths: MutablePaths}.Generate(1, 1, "a")
	b := a.SplitTo(2, "b")
	a.AddLabels("z")

	if diff := cmp.Diff([]any{1, 2}, b.Path().Objects()); diff != "" {
		t.Errorf("split path (-want +got):\n%s", diff)
	}
	if b.Path().Labels()[0].Contains("z") {
		t.Error("split observed a label added to the original")
	}
	if a.Path().Size() != 1 {
		t.Errorf("original path grew to %d", a.Path().Size())
	}
}

func TestSplitImmutableShares(t *testing.T) {
	a := Generator{Paths: ImmutablePaths}.Generate(1, 1, "a")
	b := a.Split()
	if a.Path() != b.Path() {
		t.Error("immutable split should share the path")
	}
}

func TestDetachDropsSideEffects(t *testing.T) {
	a := Generator{Paths: ImmutablePaths}.Generate(1, 2)
	a.SetSideEffects(NewSideEffects())
	d := a.Detach()
	if d.SideEffects() != nil {
		t.Error("detached traverser kept side effects")
	}
	if !d.Equal(a) {
		t.Error("detached traverser should equal its source")
	}
}

func TestSetMergesEqual(t *testing.T) {
	g := Generator{}
	s := NewSet(g.Generate("a", 1), g.Generate("b", 2), g.Generate("a", 4))
	if got, want := s.Len(), 2; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := s.BulkSize(), int64(7); got != want {
		t.Errorf("BulkSize() = %d, want %d", got, want)
	}
	if got, _ := s.Get(g.Generate("a", 1)); got.Bulk() != 5 {
		t.Errorf("merged bulk = %d, want 5", got.Bulk())
	}

	routed := g.Generate("a", 1)
	routed.SetStepID("other")
	if !s.Add(routed) {
		t.Error("traverser at another step should not merge")
	}
}

func TestSetNonComparableValues(t *testing.T) {
	type wrapped struct{ V any }
	g := Generator{Paths: ImmutablePaths}
	s := NewSet(
		g.Generate(wrapped{[]int{1}}, 1),
		g.Generate([]any{1, "x"}, 2),
		g.Generate(wrapped{[]int{1}}, 3),
		g.Generate(wrapped{[]int{2}}, 1),
		g.Generate([]any{1, "x"}, 1),
	)
	if got, want := s.Len(), 3; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	var bulks []int64
	s.Each(func(t *Traverser) { bulks = append(bulks, t.Bulk()) })
	if diff := cmp.Diff([]int64{4, 3, 1}, bulks); diff != "" {
		t.Errorf("bulks mismatch (-want +got):\n%s", diff)
	}
}

func TestSetQueueOrder(t *testing.T) {
	g := Generator{}
	s := NewSet(g.Generate(3, 1), g.Generate(1, 1), g.Generate(2, 1))
	first, ok := s.Peek()
	if !ok || first.Value() != 3 {
		t.Fatalf("Peek() = %v, %v", first, ok)
	}
	var got []any
	for {
		tr, ok := s.Remove()
		if !ok {
			break
		}
		got = append(got, tr.Value())
	}
	if diff := cmp.Diff([]any{3, 1, 2}, got); diff != "" {
		t.Errorf("FIFO order (-want +got):\n%s", diff)
	}
	if !s.IsEmpty() {
		t.Error("set not empty after draining")
	}
}

func TestSetSortShuffleDelete(t *testing.T) {
	g := Generator{}
	s := NewSet(g.Generate(3, 1), g.Generate(1, 1), g.Generate(2, 1))
	s.Sort(func(a, b *Traverser) bool { return a.Value().(int) < b.Value().(int) })
	if diff := cmp.Diff([]any{1, 2, 3}, valuesOf(s)); diff != "" {
		t.Errorf("sorted (-want +got):\n%s", diff)
	}
	s.Shuffle(rand.New(rand.NewSource(1)))
	if s.Len() != 3 || s.BulkSize() != 3 {
		t.Errorf("shuffle changed contents: %v", s)
	}
	if !s.Delete(g.Generate(2, 1)) || s.Contains(g.Generate(2, 1)) {
		t.Error("Delete(2) failed")
	}
	other := NewSet(g.Generate(1, 1), g.Generate(3, 1))
	if !s.Equal(other) {
		t.Errorf("%v should equal %v", s, other)
	}
	other.Add(g.Generate(1, 1))
	if s.Equal(other) {
		t.Error("sets with different bulks compared equal")
	}
}

func TestPathAwareEquality(t *testing.T) {
	g := Generator{Paths: ImmutablePaths}
	a := g.Generate(1, 1, "x")
	b := g.Generate(1, 1, "y")
	if a.Equal(b) {
		t.Error("traversers with different path labels must not merge")
	}
	c := Generator{Paths: MutablePaths}.Generate(1, 1, "x")
	if !a.Equal(c) {
		t.Error("path representation must not affect equality")
	}
	if !path.Equal(a.Path(), c.Path()) {
		t.Error("paths differ")
	}
}

func TestSideEffects(t *testing.T) {
	se := NewSideEffects()
	se.Set("k", 1)
	c := se.Clone()
	se.Set("k", 2)
	if v, _ := c.Get("k"); v != 1 {
		t.Errorf("clone observed later Set, got %v", v)
	}
	if diff := cmp.Diff([]string{"k"}, se.Keys()); diff != "" {
		t.Errorf("Keys (-want +got):\n%s", diff)
	}
}
