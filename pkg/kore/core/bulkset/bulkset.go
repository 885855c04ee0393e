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

// Package bulkset provides a multiset that stores each distinct value once
// together with a 64 bit repetition count.
package bulkset

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/values"
)

// Entry is a distinct value and its bulk.
type Entry[T any] struct {
	Value T
	Bulk  int64
}

// BulkSet maps distinct values to their bulk, keeping first-insertion order.
// A value is present iff its bulk is positive. Values are matched with
// values.Equal, so lists, maps and other non-comparable values are
// accepted. The zero value is ready to use.
type BulkSet[T any] struct {
	entries []Entry[T]
	buckets map[uint64][]int
}

// New returns an empty BulkSet.
func New[T any]() *BulkSet[T] {
	return &BulkSet[T]{}
}

// Of returns a BulkSet holding each of vs with bulk 1 per occurrence.
func Of[T any](vs ...T) *BulkSet[T] {
	b := New[T]()
	b.AddSlice(vs)
	return b
}

func (b *BulkSet[T]) find(v T) (uint64, int) {
	h := values.Hash(v)
	for _, i := range b.buckets[h] {
		if values.Equal(b.entries[i].Value, v) {
			return h, i
		}
	}
	return h, -1
}

// Add adds v with bulk 1. It reports whether v was not already present.
func (b *BulkSet[T]) Add(v T) bool {
	return b.AddBulk(v, 1)
}

// AddBulk adds bulk repetitions of v. It reports whether v was not already
// present. Non-positive bulks are ignored.
func (b *BulkSet[T]) AddBulk(v T, bulk int64) bool {
	if bulk <= 0 {
		return false
	}
	h, i := b.find(v)
	if i >= 0 {
		b.entries[i].Bulk += bulk
		return false
	}
	if b.buckets == nil {
		b.buckets = map[uint64][]int{}
	}
	b.buckets[h] = append(b.buckets[h], len(b.entries))
	b.entries = append(b.entries, Entry[T]{Value: v, Bulk: bulk})
	return true
}

// AddAll merges other into b by adding counts directly, so the cost is
// proportional to other's unique size rather than its long size.
func (b *BulkSet[T]) AddAll(other *BulkSet[T]) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		b.AddBulk(e.Value, e.Bulk)
	}
}

// AddSlice adds each element of vs with bulk 1.
func (b *BulkSet[T]) AddSlice(vs []T) {
	for _, v := range vs {
		b.Add(v)
	}
}

// Get returns the bulk of v, or zero if absent.
func (b *BulkSet[T]) Get(v T) int64 {
	if _, i := b.find(v); i >= 0 {
		return b.entries[i].Bulk
	}
	return 0
}

// Contains reports whether v is present.
func (b *BulkSet[T]) Contains(v T) bool {
	_, i := b.find(v)
	return i >= 0
}

// Remove drops v entirely. It reports whether v was present.
func (b *BulkSet[T]) Remove(v T) bool {
	h, i := b.find(v)
	if i < 0 {
		return false
	}
	b.entries = slices.Delete(b.entries, i, i+1)
	b.buckets[h] = slices.DeleteFunc(b.buckets[h], func(j int) bool { return j == i })
	if len(b.buckets[h]) == 0 {
		delete(b.buckets, h)
	}
	for _, ids := range b.buckets {
		for k, j := range ids {
			if j > i {
				ids[k] = j - 1
			}
		}
	}
	return true
}

// RemoveAll drops every value in vs. It reports whether any was present.
func (b *BulkSet[T]) RemoveAll(vs ...T) bool {
	modified := false
	for _, v := range vs {
		if b.Remove(v) {
			modified = true
		}
	}
	return modified
}

// Clear removes all values.
func (b *BulkSet[T]) Clear() {
	clear(b.entries)
	b.entries = b.entries[:0]
	clear(b.buckets)
}

// LongSize returns the sum of all bulks.
func (b *BulkSet[T]) LongSize() int64 {
	var n int64
	for _, e := range b.entries {
		n += e.Bulk
	}
	return n
}

// Len returns LongSize as an int.
func (b *BulkSet[T]) Len() int {
	return int(b.LongSize())
}

// UniqueSize returns the number of distinct values.
func (b *BulkSet[T]) UniqueSize() int {
	return len(b.entries)
}

// IsEmpty reports whether no values are present.
func (b *BulkSet[T]) IsEmpty() bool {
	return len(b.entries) == 0
}

// Each calls fn with every distinct value and its bulk in insertion order.
func (b *BulkSet[T]) Each(fn func(v T, bulk int64)) {
	for _, e := range b.entries {
		fn(e.Value, e.Bulk)
	}
}

// AsBulk returns the distinct values and their bulks in insertion order.
func (b *BulkSet[T]) AsBulk() []Entry[T] {
	return slices.Clone(b.entries)
}

// All yields every value repeated bulk times, distinct values in insertion
// order.
func (b *BulkSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range b.entries {
			for n := e.Bulk; n > 0; n-- {
				if !yield(e.Value) {
					return
				}
			}
		}
	}
}

// Slice returns the expanded values as produced by All.
func (b *BulkSet[T]) Slice() []T {
	out := make([]T, 0, b.Len())
	for v := range b.All() {
		out = append(out, v)
	}
	return out
}

// Clone returns an independent copy of b. Values themselves are shared.
func (b *BulkSet[T]) Clone() *BulkSet[T] {
	c := New[T]()
	c.AddAll(b)
	return c
}

// Equal reports whether b and other hold the same values with the same
// bulks. Insertion order is not compared.
func (b *BulkSet[T]) Equal(other *BulkSet[T]) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.entries) != len(other.entries) {
		return false
	}
	for _, e := range b.entries {
		if other.Get(e.Value) != e.Bulk {
			return false
		}
	}
	return true
}

func (b *BulkSet[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v=%d", e.Value, e.Bulk)
	}
	sb.WriteByte('}')
	return sb.String()
}
