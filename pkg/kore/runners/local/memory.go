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
	"sort"
	"sync"
	"time"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// memory is the master memory of a computation. Writes go to current and
// reads come from previous, so values set in one phase become visible when
// the phase completes. The computation alternates between the
// setup/terminate phase, where only Set is legal, and the execute phase,
// where only Add is legal and non-broadcast keys are hidden.
type memory struct {
	mu        sync.RWMutex
	keys      map[string]computer.MemoryComputeKey
	previous  map[string]any
	current   map[string]any
	inExecute bool
	iteration int
	runtime   time.Duration
	metrics   *Metrics
}

func newMemory(vp computer.VertexProgram, mrs []computer.MapReduce) *memory {
	m := &memory{
		keys:     make(map[string]computer.MemoryComputeKey),
		previous: make(map[string]any),
		current:  make(map[string]any),
	}
	if vp != nil {
		for _, k := range vp.MemoryComputeKeys() {
			m.keys[k.Key()] = k
		}
	}
	for _, mr := range mrs {
		m.keys[mr.MemoryKey()] = computer.MustMemoryComputeKey(mr.MemoryKey(), operator.Assign, false, false)
	}
	return m
}

func (m *memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.previous {
		if !m.inExecute || m.keys[k].Broadcast() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (m *memory) Get(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.previous[key]
	if !ok || (m.inExecute && !m.keys[key].Broadcast()) {
		return nil, errors.WithContextf(computer.ErrMemoryDoesNotExist, "getting memory key %q", key)
	}
	return v, nil
}

func (m *memory) Set(key string, value any) error {
	if err := m.check(key, value); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inExecute {
		return errors.WithContextf(computer.ErrMemorySetOutsideSetup, "setting memory key %q", key)
	}
	m.current[key] = value
	return nil
}

func (m *memory) Add(key string, value any) error {
	if err := m.check(key, value); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inExecute {
		return errors.WithContextf(computer.ErrMemoryAddOutsideExecute, "adding to memory key %q", key)
	}
	if prev, ok := m.current[key]; ok {
		value = m.keys[key].Reduce(prev, value)
	}
	m.current[key] = value
	m.metrics.merged(key)
	return nil
}

// check rejects keys that were not declared as compute keys.
func (m *memory) check(key string, value any) error {
	if err := computer.ValidateKey(key); err != nil {
		return err
	}
	if err := computer.ValidateValue(value); err != nil {
		return errors.WithContextf(err, "memory key %q", key)
	}
	m.mu.RLock()
	_, ok := m.keys[key]
	m.mu.RUnlock()
	if !ok {
		return errors.WithContextf(computer.ErrNotMemoryComputeKey, "memory key %q", key)
	}
	return nil
}

func (m *memory) Iteration() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.iteration
}

func (m *memory) Runtime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runtime
}

func (m *memory) IncrIteration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iteration++
}

func (m *memory) SetIteration(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iteration = i
}

func (m *memory) SetRuntime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runtime = d
}

// completeSubRound publishes the values written in the phase that just ended
// and switches between the execute and setup/terminate phases.
func (m *memory) completeSubRound() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previous = make(map[string]any, len(m.current))
	for k, v := range m.current {
		m.previous[k] = v
	}
	m.inExecute = !m.inExecute
}

// complete ends the computation. The iteration counter is stepped back to
// the last superstep run and transient keys are dropped.
func (m *memory) complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.iteration > 0 {
		m.iteration--
	}
	m.previous = m.current
	m.inExecute = false
	for k, ck := range m.keys {
		if ck.Transient() {
			delete(m.previous, k)
		}
	}
	m.current = make(map[string]any, len(m.previous))
	for k, v := range m.previous {
		m.current[k] = v
	}
}

// workerMemory folds the Adds of one worker with the key reducers and merges
// the partial results into the master memory when the worker completes.
// Reads and Sets go straight to the master.
type workerMemory struct {
	main    *memory
	partial map[string]any
}

func newWorkerMemory(main *memory) *workerMemory {
	return &workerMemory{main: main, partial: make(map[string]any)}
}

func (w *workerMemory) Keys() []string              { return w.main.Keys() }
func (w *workerMemory) Get(key string) (any, error) { return w.main.Get(key) }
func (w *workerMemory) Set(key string, v any) error { return w.main.Set(key, v) }
func (w *workerMemory) Iteration() int              { return w.main.Iteration() }
func (w *workerMemory) Runtime() time.Duration      { return w.main.Runtime() }

func (w *workerMemory) Add(key string, value any) error {
	if err := w.main.check(key, value); err != nil {
		return err
	}
	if prev, ok := w.partial[key]; ok {
		value = w.main.keys[key].Reduce(prev, value)
	}
	w.partial[key] = value
	return nil
}

// complete merges the partial values into the master memory.
func (w *workerMemory) complete() error {
	keys := make([]string, 0, len(w.partial))
	for k := range w.partial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.main.Add(k, w.partial[k]); err != nil {
			return err
		}
	}
	clear(w.partial)
	return nil
}
