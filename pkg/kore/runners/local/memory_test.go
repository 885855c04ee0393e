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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// keyed is a program that only declares memory keys.
type keyed struct {
	forever
	keys []computer.MemoryComputeKey
}

func (p *keyed) MemoryComputeKeys() []computer.MemoryComputeKey { return p.keys }

func testMemory() *memory {
	return newMemory(&keyed{keys: []computer.MemoryComputeKey{
		computer.MustMemoryComputeKey("sum", operator.Sum, false, false),
		computer.MustMemoryComputeKey("max", operator.Max, true, false),
		computer.MustMemoryComputeKey("tmp", operator.Or, true, true),
	}}, []computer.MapReduce{labelCount{}})
}

func TestMemoryPhases(t *testing.T) {
	m := testMemory()

	// Setup: only Set, visible after the sub round completes.
	for k, v := range map[string]any{"sum": 0, "max": 0, "tmp": false} {
		if err := m.Set(k, v); err != nil {
			t.Fatalf("Set(%v) in setup = %v", k, err)
		}
	}
	if _, err := m.Get("sum"); !errors.Is(err, computer.ErrMemoryDoesNotExist) {
		t.Errorf("Get before publish = %v, want ErrMemoryDoesNotExist", err)
	}
	if err := m.Add("sum", 1); !errors.Is(err, computer.ErrMemoryAddOutsideExecute) {
		t.Errorf("Add in setup = %v, want ErrMemoryAddOutsideExecute", err)
	}
	if err := m.Set("nope", 1); !errors.Is(err, computer.ErrNotMemoryComputeKey) {
		t.Errorf("Set(nope) = %v, want ErrNotMemoryComputeKey", err)
	}

	// Execute: only Add, non-broadcast keys are hidden.
	m.completeSubRound()
	if diff := cmp.Diff([]string{"max", "tmp"}, m.Keys()); diff != "" {
		t.Errorf("Keys() in execute mismatch (-want +got):\n%s", diff)
	}
	if _, err := m.Get("sum"); !errors.Is(err, computer.ErrMemoryDoesNotExist) {
		t.Errorf("Get(sum) in execute = %v, want ErrMemoryDoesNotExist", err)
	}
	if v, err := m.Get("max"); err != nil || v != 0 {
		t.Errorf("Get(max) in execute = %v, %v; want 0", v, err)
	}
	if err := m.Set("max", 3); !errors.Is(err, computer.ErrMemorySetOutsideSetup) {
		t.Errorf("Set in execute = %v, want ErrMemorySetOutsideSetup", err)
	}
	for _, v := range []int{3, 4, 5} {
		if err := m.Add("sum", v); err != nil {
			t.Fatal(err)
		}
		if err := m.Add("max", v); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Add("tmp", true); err != nil {
		t.Fatal(err)
	}

	// Terminate: everything is visible again.
	m.completeSubRound()
	want := map[string]any{"sum": 12, "max": 5, "tmp": true}
	if diff := cmp.Diff(want, computer.AsMap(m)); diff != "" {
		t.Errorf("memory after execute mismatch (-want +got):\n%s", diff)
	}

	m.IncrIteration()
	m.IncrIteration()
	m.complete()
	if got := m.Iteration(); got != 1 {
		t.Errorf("Iteration() after complete = %d, want 1", got)
	}
	if computer.Exists(m, "tmp") {
		t.Error("transient key tmp survived complete")
	}
	if err := m.Set("labels", 7); err != nil {
		t.Errorf("Set(labels) after complete = %v", err)
	}
}

func TestWorkerMemoryFolds(t *testing.T) {
	m := testMemory()
	if err := m.Set("sum", 100); err != nil {
		t.Fatal(err)
	}
	m.completeSubRound()
	w1, w2 := newWorkerMemory(m), newWorkerMemory(m)
	for i := 1; i <= 4; i++ {
		if err := w1.Add("sum", i); err != nil {
			t.Fatal(err)
		}
		if err := w2.Add("sum", 10*i); err != nil {
			t.Fatal(err)
		}
	}
	if err := w1.Add("nope", 1); !errors.Is(err, computer.ErrNotMemoryComputeKey) {
		t.Errorf("Add(nope) = %v, want ErrNotMemoryComputeKey", err)
	}
	if got := w1.partial["sum"]; got != 10 {
		t.Errorf("worker partial = %v, want 10", got)
	}
	if err := w1.complete(); err != nil {
		t.Fatal(err)
	}
	if err := w2.complete(); err != nil {
		t.Fatal(err)
	}
	if len(w1.partial) != 0 {
		t.Errorf("partial not cleared: %v", w1.partial)
	}
	m.completeSubRound()
	if v, _ := m.Get("sum"); v != 210 {
		t.Errorf("Get(sum) = %v, want 210", v)
	}
}
