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
	"sort"
	"sync"
	"time"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// Memory is the global state shared by all vertices of a computation. Keys
// are declared up front as MemoryComputeKeys; their reducers define what
// Add means.
//
// Set is only legal during setup and terminate and Add is only legal during
// execute. Memory implementations that back a running computer enforce this;
// MapMemory, the post-computation view, does not.
type Memory interface {
	// Keys returns the keys currently visible.
	Keys() []string
	// Get returns the value of key, or an error wrapping
	// ErrMemoryDoesNotExist.
	Get(key string) (any, error)
	// Set replaces the value of key.
	Set(key string, value any) error
	// Add merges value into key with the key's reducer.
	Add(key string, value any) error
	// Iteration returns the current superstep, starting at 0.
	Iteration() int
	// Runtime returns the elapsed compute time.
	Runtime() time.Duration
}

// AdminMemory is the view of Memory held by the computer driving a
// computation.
type AdminMemory interface {
	Memory
	IncrIteration()
	SetIteration(i int)
	SetRuntime(d time.Duration)
}

// IsInitialIteration reports whether m is in its first superstep.
func IsInitialIteration(m Memory) bool {
	return m.Iteration() == 0
}

// Exists reports whether key currently has a value in m.
func Exists(m Memory, key string) bool {
	_, err := m.Get(key)
	return err == nil
}

// AsMap copies the visible values of m.
func AsMap(m Memory) map[string]any {
	out := make(map[string]any)
	for _, k := range m.Keys() {
		if v, err := m.Get(k); err == nil {
			out[k] = v
		}
	}
	return out
}

// ValidateKey checks that key is a legal memory key.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidMemoryKey
	}
	return nil
}

// ValidateValue checks that v is a legal memory value.
func ValidateValue(v any) error {
	if v == nil {
		return ErrInvalidMemoryValue
	}
	return nil
}

// MemoryComputeKey binds a memory key to the reducer that merges partial
// values for it. Broadcast keys are readable by every worker during
// execute. Transient keys are dropped when the computation completes.
type MemoryComputeKey struct {
	key       string
	reducer   operator.Reducer
	broadcast bool
	transient bool
}

// NewMemoryComputeKey returns a compute key, rejecting an empty key.
func NewMemoryComputeKey(key string, reducer operator.Reducer, broadcast, transient bool) (MemoryComputeKey, error) {
	if err := ValidateKey(key); err != nil {
		return MemoryComputeKey{}, err
	}
	return MemoryComputeKey{key: key, reducer: reducer, broadcast: broadcast, transient: transient}, nil
}

// MustMemoryComputeKey is NewMemoryComputeKey for keys known to be valid.
func MustMemoryComputeKey(key string, reducer operator.Reducer, broadcast, transient bool) MemoryComputeKey {
	k, err := NewMemoryComputeKey(key, reducer, broadcast, transient)
	if err != nil {
		panic(err)
	}
	return k
}

// Key returns the memory key.
func (k MemoryComputeKey) Key() string { return k.key }

// Reducer returns the reducer bound to the key.
func (k MemoryComputeKey) Reducer() operator.Reducer { return k.reducer }

// Broadcast reports whether the key is visible to workers during execute.
func (k MemoryComputeKey) Broadcast() bool { return k.broadcast }

// Transient reports whether the key is dropped at completion.
func (k MemoryComputeKey) Transient() bool { return k.transient }

// Reduce merges two partial values.
func (k MemoryComputeKey) Reduce(a, b any) any {
	return k.reducer.Apply(a, b)
}

func (k MemoryComputeKey) String() string {
	return "memoryComputeKey[" + k.key + "]"
}

// MapMemory is a plain map-backed Memory. Computers hand one out as the
// result of a computation, and programs use it to run outside a computer.
type MapMemory struct {
	mu        sync.RWMutex
	values    map[string]any
	keys      map[string]MemoryComputeKey
	iteration int
	runtime   time.Duration
}

// NewMapMemory returns an empty memory at iteration -1, the state before
// setup.
func NewMapMemory() *MapMemory {
	return &MapMemory{
		values:    make(map[string]any),
		keys:      make(map[string]MemoryComputeKey),
		iteration: -1,
	}
}

// MapMemoryOf copies the visible values, iteration and runtime of other.
func MapMemoryOf(other Memory) *MapMemory {
	m := NewMapMemory()
	for k, v := range AsMap(other) {
		m.values[k] = v
	}
	m.iteration = other.Iteration()
	m.runtime = other.Runtime()
	return m
}

// AddComputeKey registers k so that Add can reduce into it.
func (m *MapMemory) AddComputeKey(k MemoryComputeKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[k.Key()] = k
}

// AddVertexProgramKeys registers the memory compute keys of vp.
func (m *MapMemory) AddVertexProgramKeys(vp VertexProgram) {
	for _, k := range vp.MemoryComputeKeys() {
		m.AddComputeKey(k)
	}
}

// AddMapReduceKey registers the result key of mr, which is assigned rather
// than reduced.
func (m *MapMemory) AddMapReduceKey(mr MapReduce) {
	m.AddComputeKey(MustMemoryComputeKey(mr.MemoryKey(), operator.Assign, false, false))
}

// Keys returns the keys with values, sorted.
func (m *MapMemory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key.
func (m *MapMemory) Get(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, errors.WithContextf(ErrMemoryDoesNotExist, "getting memory key %q", key)
	}
	return v, nil
}

// Set replaces the value of key.
func (m *MapMemory) Set(key string, value any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateValue(value); err != nil {
		return errors.WithContextf(err, "setting memory key %q", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Add reduces value into key with the registered reducer. An absent value
// is replaced.
func (m *MapMemory) Add(key string, value any) error {
	if err := ValidateValue(value); err != nil {
		return errors.WithContextf(err, "adding to memory key %q", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[key]
	if !ok {
		return errors.WithContextf(ErrNotMemoryComputeKey, "adding to memory key %q", key)
	}
	if prev, ok := m.values[key]; ok {
		value = k.Reduce(prev, value)
	}
	m.values[key] = value
	return nil
}

// Remove deletes key and returns its value.
func (m *MapMemory) Remove(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	delete(m.values, key)
	return v, ok
}

// Iteration returns the current iteration.
func (m *MapMemory) Iteration() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.iteration
}

// Runtime returns the recorded runtime.
func (m *MapMemory) Runtime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runtime
}

// IncrIteration advances the iteration.
func (m *MapMemory) IncrIteration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iteration++
}

// SetIteration sets the iteration.
func (m *MapMemory) SetIteration(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iteration = i
}

// SetRuntime sets the runtime.
func (m *MapMemory) SetRuntime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runtime = d
}

// Immutable returns a read-only view of m. Set and Add fail with
// ErrMemoryImmutable.
func Immutable(m Memory) Memory {
	if im, ok := m.(immutableMemory); ok {
		return im
	}
	return immutableMemory{m}
}

type immutableMemory struct {
	m Memory
}

func (im immutableMemory) Keys() []string              { return im.m.Keys() }
func (im immutableMemory) Get(key string) (any, error) { return im.m.Get(key) }
func (im immutableMemory) Iteration() int              { return im.m.Iteration() }
func (im immutableMemory) Runtime() time.Duration      { return im.m.Runtime() }

func (im immutableMemory) Set(key string, _ any) error {
	return errors.WithContextf(ErrMemoryImmutable, "setting memory key %q", key)
}

func (im immutableMemory) Add(key string, _ any) error {
	return errors.WithContextf(ErrMemoryImmutable, "adding to memory key %q", key)
}
