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
	"container/list"
	"math/rand"
	"sort"
	"strings"
)

// Set is an insertion ordered queue of traversers in which equal traversers
// are merged by adding their bulks. The zero value is ready to use.
//
// A traverser must not have its value, path or step id changed while it is
// stored.
type Set struct {
	order   list.List
	buckets map[uint64][]*list.Element
}

// NewSet returns a set holding ts.
func NewSet(ts ...*Traverser) *Set {
	s := &Set{}
	for _, t := range ts {
		s.Add(t)
	}
	return s
}

func (s *Set) find(t *Traverser) (uint64, *list.Element) {
	h := t.Hash()
	for _, e := range s.buckets[h] {
		if e.Value.(*Traverser).Equal(t) {
			return h, e
		}
	}
	return h, nil
}

// Add inserts t, or merges it into an equal traverser already present. It
// reports whether t was inserted.
func (s *Set) Add(t *Traverser) bool {
	h, e := s.find(t)
	if e != nil {
		e.Value.(*Traverser).Merge(t)
		return false
	}
	if s.buckets == nil {
		s.buckets = map[uint64][]*list.Element{}
	}
	s.buckets[h] = append(s.buckets[h], s.order.PushBack(t))
	return true
}

// AddAll adds every traverser of other in order.
func (s *Set) AddAll(other *Set) {
	if other == nil {
		return
	}
	other.Each(func(t *Traverser) { s.Add(t) })
}

// Get returns the stored traverser equal to t.
func (s *Set) Get(t *Traverser) (*Traverser, bool) {
	if _, e := s.find(t); e != nil {
		return e.Value.(*Traverser), true
	}
	return nil, false
}

// Contains reports whether a traverser equal to t is stored.
func (s *Set) Contains(t *Traverser) bool {
	_, e := s.find(t)
	return e != nil
}

func (s *Set) unlink(h uint64, e *list.Element) {
	b := s.buckets[h]
	for i, o := range b {
		if o == e {
			b = append(b[:i], b[i+1:]...)
			break
		}
	}
	if len(b) == 0 {
		delete(s.buckets, h)
	} else {
		s.buckets[h] = b
	}
	s.order.Remove(e)
}

// Remove pops the oldest traverser. It reports false when the set is empty.
func (s *Set) Remove() (*Traverser, bool) {
	e := s.order.Front()
	if e == nil {
		return nil, false
	}
	t := e.Value.(*Traverser)
	h := t.Hash()
	s.unlink(h, e)
	return t, true
}

// Delete removes the traverser equal to t. It reports whether one was present.
func (s *Set) Delete(t *Traverser) bool {
	h, e := s.find(t)
	if e == nil {
		return false
	}
	s.unlink(h, e)
	return true
}

// Peek returns the oldest traverser without removing it.
func (s *Set) Peek() (*Traverser, bool) {
	e := s.order.Front()
	if e == nil {
		return nil, false
	}
	return e.Value.(*Traverser), true
}

// Len returns the number of distinct traversers.
func (s *Set) Len() int {
	return s.order.Len()
}

// IsEmpty reports whether Len is zero.
func (s *Set) IsEmpty() bool {
	return s.order.Len() == 0
}

// BulkSize returns the sum of the stored bulks.
func (s *Set) BulkSize() int64 {
	var n int64
	s.Each(func(t *Traverser) { n += t.Bulk() })
	return n
}

// Clear removes every traverser.
func (s *Set) Clear() {
	s.order.Init()
	s.buckets = nil
}

// Each calls fn with every traverser in order.
func (s *Set) Each(fn func(t *Traverser)) {
	for e := s.order.Front(); e != nil; e = e.Next() {
		fn(e.Value.(*Traverser))
	}
}

// Slice returns the traversers in order.
func (s *Set) Slice() []*Traverser {
	out := make([]*Traverser, 0, s.Len())
	s.Each(func(t *Traverser) { out = append(out, t) })
	return out
}

func (s *Set) reorder(ts []*Traverser) {
	s.Clear()
	for _, t := range ts {
		s.Add(t)
	}
}

// Sort reorders the traversers stably with less.
func (s *Set) Sort(less func(a, b *Traverser) bool) {
	ts := s.Slice()
	sort.SliceStable(ts, func(i, j int) bool { return less(ts[i], ts[j]) })
	s.reorder(ts)
}

// Shuffle reorders the traversers randomly.
func (s *Set) Shuffle(r *rand.Rand) {
	ts := s.Slice()
	r.Shuffle(len(ts), func(i, j int) { ts[i], ts[j] = ts[j], ts[i] })
	s.reorder(ts)
}

// Equal reports whether both sets hold equal traversers with equal bulks.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	equal := true
	s.Each(func(t *Traverser) {
		o, ok := other.Get(t)
		if !ok || o.Bulk() != t.Bulk() {
			equal = false
		}
	})
	return equal
}

func (s *Set) String() string {
	parts := make([]string, 0, s.Len())
	s.Each(func(t *Traverser) { parts = append(parts, t.String()) })
	return "[" + strings.Join(parts, ", ") + "]"
}
