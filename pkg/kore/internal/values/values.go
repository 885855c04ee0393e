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

// Package values holds the equality and hashing rules shared by paths,
// traverser sets, bulk sets and map-reduce grouping for arbitrary element
// values.
package values

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"io"
	"math"
	"reflect"
)

// Detacher is implemented by values holding live graph references. Detach
// returns a copy that is safe to hand to another worker.
type Detacher interface {
	Detach() any
}

// Detach returns v detached if it knows how, and v itself otherwise.
func Detach(v any) any {
	if d, ok := v.(Detacher); ok {
		return d.Detach()
	}
	return v
}

// Equal reports whether a and b are the same value. Values of different
// dynamic types are never equal, so int(1) and int64(1) differ. Values that
// cannot be compared with == at run time, such as a struct holding a slice
// in an interface field, are compared with reflect.DeepEqual.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// maxDepth bounds the walk into nested values. Deeper structure still
// compares through Equal; it only stops contributing to the hash.
const maxDepth = 32

// Hash returns a 64 bit hash of v's type and structure. Equal values hash
// equally. It never panics.
func Hash(v any) uint64 {
	h := fnv.New64a()
	hashValue(h, reflect.ValueOf(v), 0)
	return h.Sum64()
}

func hashValue(h hash.Hash64, v reflect.Value, depth int) {
	if !v.IsValid() {
		h.Write([]byte{0})
		return
	}
	io.WriteString(h, v.Type().String())
	if depth > maxDepth {
		return
	}
	var buf [8]byte
	word := func(x uint64) {
		binary.LittleEndian.PutUint64(buf[:], x)
		h.Write(buf[:])
	}
	float := func(f float64) {
		if f == 0 {
			f = 0 // -0 == +0
		}
		word(math.Float64bits(f))
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			word(1)
		} else {
			word(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		word(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		word(v.Uint())
	case reflect.Float32, reflect.Float64:
		float(v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		float(real(c))
		float(imag(c))
	case reflect.String:
		word(uint64(v.Len()))
		io.WriteString(h, v.String())
	case reflect.Slice, reflect.Array:
		word(uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			hashValue(h, v.Index(i), depth+1)
		}
	case reflect.Map:
		// Entries are hashed separately and summed so that iteration order
		// does not matter.
		var sum uint64
		it := v.MapRange()
		for it.Next() {
			e := fnv.New64a()
			hashValue(e, it.Key(), depth+1)
			hashValue(e, it.Value(), depth+1)
			sum += e.Sum64()
		}
		word(uint64(v.Len()))
		word(sum)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			hashValue(h, v.Field(i), depth+1)
		}
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			word(0)
			return
		}
		hashValue(h, v.Elem(), depth+1)
	default:
		word(uint64(v.Pointer()))
	}
}

// Combine mixes a sequence of hashes in order.
func Combine(hs ...uint64) uint64 {
	var r uint64 = 1
	for _, h := range hs {
		r = r*31 + h
	}
	return r
}

// Index assigns dense ids to values in first-seen order, giving Equal values
// the same id. Hash picks the bucket and Equal decides membership, so values
// need not be comparable. The zero value is ready to use.
type Index struct {
	buckets map[uint64][]int
	values  []any
}

// Find returns the id of the value Equal to v.
func (x *Index) Find(v any) (int, bool) {
	return x.find(Hash(v), v)
}

func (x *Index) find(h uint64, v any) (int, bool) {
	for _, id := range x.buckets[h] {
		if Equal(x.values[id], v) {
			return id, true
		}
	}
	return -1, false
}

// Insert returns the id of v, adding v when no Equal value is present. It
// reports whether v was added.
func (x *Index) Insert(v any) (int, bool) {
	h := Hash(v)
	if id, ok := x.find(h, v); ok {
		return id, false
	}
	if x.buckets == nil {
		x.buckets = map[uint64][]int{}
	}
	id := len(x.values)
	x.values = append(x.values, v)
	x.buckets[h] = append(x.buckets[h], id)
	return id, true
}

// Len returns the number of distinct values.
func (x *Index) Len() int {
	return len(x.values)
}

// Value returns the first value inserted with the given id.
func (x *Index) Value(id int) any {
	return x.values[id]
}
