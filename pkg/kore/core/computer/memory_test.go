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

package computer

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

func TestMemoryComputeKey(t *testing.T) {
	if _, err := NewMemoryComputeKey("", operator.Sum, false, false); !errors.Is(err, ErrInvalidMemoryKey) {
		t.Errorf("NewMemoryComputeKey(\"\") = %v, want ErrInvalidMemoryKey", err)
	}
	k := MustMemoryComputeKey("count", operator.Sum, true, false)
	if k.Key() != "count" || !k.Broadcast() || k.Transient() {
		t.Errorf("accessors = %q %v %v", k.Key(), k.Broadcast(), k.Transient())
	}
	if got := k.Reduce(2, 3); got != 5 {
		t.Errorf("Reduce(2, 3) = %v, want 5", got)
	}
}

func TestMapMemory(t *testing.T) {
	m := NewMapMemory()
	if m.Iteration() != -1 {
		t.Errorf("Iteration() = %d, want -1", m.Iteration())
	}
	m.AddComputeKey(MustMemoryComputeKey("sum", operator.Sum, false, false))
	for _, v := range []int{1, 2, 3} {
		if err := m.Add("sum", v); err != nil {
			t.Fatal(err)
		}
	}
	if got, err := m.Get("sum"); err != nil || got != 6 {
		t.Errorf("Get(sum) = %v, %v; want 6", got, err)
	}
	if err := m.Add("other", 1); !errors.Is(err, ErrNotMemoryComputeKey) {
		t.Errorf("Add(other) = %v, want ErrNotMemoryComputeKey", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrMemoryDoesNotExist) {
		t.Errorf("Get(missing) = %v, want ErrMemoryDoesNotExist", err)
	}
	if err := m.Set("", 1); !errors.Is(err, ErrInvalidMemoryKey) {
		t.Errorf("Set(\"\") = %v, want ErrInvalidMemoryKey", err)
	}
	if err := m.Set("x", nil); !errors.Is(err, ErrInvalidMemoryValue) {
		t.Errorf("Set(x, nil) = %v, want ErrInvalidMemoryValue", err)
	}
	if err := m.Set("name", "marko"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"name", "sum"}, m.Keys()); diff != "" {
		t.Errorf("Keys() (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"name": "marko", "sum": 6}, AsMap(m)); diff != "" {
		t.Errorf("AsMap() (-want +got):\n%s", diff)
	}
	m.IncrIteration()
	if !IsInitialIteration(m) {
		t.Error("IsInitialIteration() = false after first increment")
	}
	m.SetRuntime(time.Second)

	c := MapMemoryOf(m)
	if c.Iteration() != 0 || c.Runtime() != time.Second || !Exists(c, "sum") {
		t.Errorf("MapMemoryOf lost state: %d %v %v", c.Iteration(), c.Runtime(), c.Keys())
	}
	if v, ok := c.Remove("sum"); !ok || v != 6 || Exists(c, "sum") {
		t.Errorf("Remove(sum) = %v, %v", v, ok)
	}
	if !Exists(m, "sum") {
		t.Error("MapMemoryOf shares storage with its source")
	}
}

func TestImmutable(t *testing.T) {
	m := NewMapMemory()
	if err := m.Set("a", 1); err != nil {
		t.Fatal(err)
	}
	im := Immutable(m)
	if Immutable(im) != im {
		t.Error("Immutable(Immutable(m)) wrapped twice")
	}
	if v, err := im.Get("a"); err != nil || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, err)
	}
	if err := im.Set("a", 2); !errors.Is(err, ErrMemoryImmutable) {
		t.Errorf("Set = %v, want ErrMemoryImmutable", err)
	}
	if err := im.Add("a", 2); !errors.Is(err, ErrMemoryImmutable) {
		t.Errorf("Add = %v, want ErrMemoryImmutable", err)
	}
}

type countJob struct{}

func (countJob) MemoryKey() string { return "count" }

func (countJob) DoStage(s Stage) bool { return s == MapStage }

func (countJob) Map(v *structure.Vertex, emit Emitter) error {
	emit(nil, 1)
	return nil
}

func (countJob) Clone() MapReduce { return countJob{} }

func (countJob) GenerateFinalResult(kvs []KeyValue) (any, error) { return len(kvs), nil }

func TestAddResultToMemory(t *testing.T) {
	m := NewMapMemory()
	m.AddMapReduceKey(countJob{})
	kvs := []KeyValue{{Value: 1}, {Value: 1}, {Value: 1}}
	if err := AddResultToMemory(countJob{}, m, kvs); err != nil {
		t.Fatal(err)
	}
	if v, err := m.Get("count"); err != nil || v != 3 {
		t.Errorf("Get(count) = %v, %v; want 3", v, err)
	}
	// The result key assigns.
	if err := m.Add("count", 7); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Get("count"); v != 7 {
		t.Errorf("Get(count) after Add = %v, want 7", v)
	}
}

func TestMessageScopes(t *testing.T) {
	if got := Global(1, 2).ScopeKey(); got != "global" {
		t.Errorf("Global.ScopeKey() = %q", got)
	}
	local := Local(OutE("knows"))
	if got := local.ScopeKey(); got != "local:outE(knows)" {
		t.Errorf("Local.ScopeKey() = %q", got)
	}
	if got := local.Reverse().Incident.String(); got != "inE(knows)" {
		t.Errorf("Reverse() = %q, want inE(knows)", got)
	}
	if got := local.ApplyEdge(3, nil); got != 3 {
		t.Errorf("ApplyEdge without function = %v", got)
	}
	weighted := local.WithEdgeFunction(func(msg any, e *structure.Edge) any { return msg.(int) * 2 })
	if weighted.ScopeKey() == local.ScopeKey() {
		t.Error("edge function does not distinguish scope keys")
	}
	if got := weighted.Reverse().ApplyEdge(3, nil); got != 6 {
		t.Errorf("reversed ApplyEdge = %v, want 6", got)
	}
}
