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

// Package number implements arithmetic over the Go numeric kinds that flow
// through traversals as plain values.
//
// Operands of the same type produce a result of that type. Mixed operands
// are promoted: any floating point operand yields float64, otherwise the
// result is int64. Two unsigned operands are computed as uint64, and an
// unsigned value above math.MaxInt64 mixed with a signed one promotes to
// float64 rather than changing sign.
package number

import (
	"math"

	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// IsNumber reports whether v is one of the numeric kinds understood here.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint, uint64:
		if u, _ := toUint64(v); u <= math.MaxInt64 {
			return int64(u), true
		}
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	}
	return 0, false
}

// bigUnsigned reports whether v is an unsigned value that int64 cannot hold.
func bigUnsigned(v any) bool {
	u, ok := toUint64(v)
	return ok && u > math.MaxInt64
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if u, ok := toUint64(v); ok {
		return float64(u), true
	}
	i, ok := toInt64(v)
	return float64(i), ok
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

// Int64 converts v to int64, truncating floats. Unsigned values above
// math.MaxInt64 are an error.
func Int64(v any) (int64, error) {
	if bigUnsigned(v) {
		return 0, errors.Errorf("number: %v overflows int64", v)
	}
	if f, ok := v.(float64); ok {
		return int64(f), nil
	}
	if f, ok := v.(float32); ok {
		return int64(f), nil
	}
	if i, ok := toInt64(v); ok {
		return i, nil
	}
	return 0, errors.Errorf("number: %T is not a number", v)
}

// Float64 converts v to float64.
func Float64(v any) (float64, error) {
	if f, ok := toFloat64(v); ok {
		return f, nil
	}
	return 0, errors.Errorf("number: %T is not a number", v)
}

type binop struct {
	i func(a, b int64) int64
	u func(a, b uint64) uint64
	f func(a, b float64) float64
}

func apply(name string, a, b any, op binop) any {
	if !IsNumber(a) || !IsNumber(b) {
		panic(errors.Errorf("number.%s: operands %T and %T must be numbers", name, a, b))
	}
	ua, aUnsigned := toUint64(a)
	ub, bUnsigned := toUint64(b)
	if aUnsigned && bUnsigned {
		return narrowUnsigned(a, b, op.u(ua, ub))
	}
	if isFloat(a) || isFloat(b) || bigUnsigned(a) || bigUnsigned(b) {
		fa, _ := toFloat64(a)
		fb, _ := toFloat64(b)
		r := op.f(fa, fb)
		if _, ok := a.(float32); ok {
			if _, ok := b.(float32); ok {
				return float32(r)
			}
		}
		return r
	}
	ia, _ := toInt64(a)
	ib, _ := toInt64(b)
	return narrow(a, b, op.i(ia, ib))
}

// narrow converts r back to the operands' type when both share one.
func narrow(a, b any, r int64) any {
	switch a.(type) {
	case int:
		if _, ok := b.(int); ok {
			return int(r)
		}
	case int32:
		if _, ok := b.(int32); ok {
			return int32(r)
		}
	}
	return r
}

// narrowUnsigned keeps uint and uint64 results in their type. Smaller
// unsigned kinds yield int64, or uint64 when the result does not fit.
func narrowUnsigned(a, b any, r uint64) any {
	switch a.(type) {
	case uint64:
		if _, ok := b.(uint64); ok {
			return r
		}
	case uint:
		if _, ok := b.(uint); ok {
			return uint(r)
		}
	}
	if r > math.MaxInt64 {
		return r
	}
	return int64(r)
}

// Add returns a+b. It panics if either operand is not a number.
func Add(a, b any) any {
	return apply("Add", a, b, binop{
		i: func(x, y int64) int64 { return x + y },
		u: func(x, y uint64) uint64 { return x + y },
		f: func(x, y float64) float64 { return x + y },
	})
}

// Mul returns a*b. It panics if either operand is not a number.
func Mul(a, b any) any {
	return apply("Mul", a, b, binop{
		i: func(x, y int64) int64 { return x * y },
		u: func(x, y uint64) uint64 { return x * y },
		f: func(x, y float64) float64 { return x * y },
	})
}

// Compare returns -1, 0 or +1 depending on whether a is less than, equal to
// or greater than b. NaN sorts before every other value.
func Compare(a, b any) int {
	if !IsNumber(a) || !IsNumber(b) {
		panic(errors.Errorf("number.Compare: operands %T and %T must be numbers", a, b))
	}
	if ua, ok := toUint64(a); ok {
		if ub, ok := toUint64(b); ok {
			return cmpOrdered(ua, ub)
		}
	}
	if !isFloat(a) && !isFloat(b) {
		// A big unsigned value is above every int64.
		switch {
		case bigUnsigned(a):
			return 1
		case bigUnsigned(b):
			return -1
		}
	}
	if isFloat(a) || isFloat(b) {
		fa, _ := toFloat64(a)
		fb, _ := toFloat64(b)
		switch {
		case math.IsNaN(fa) && math.IsNaN(fb):
			return 0
		case math.IsNaN(fa):
			return -1
		case math.IsNaN(fb):
			return 1
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	ia, _ := toInt64(a)
	ib, _ := toInt64(b)
	return cmpOrdered(ia, ib)
}

func cmpOrdered[T int64 | uint64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Min returns the smaller of a and b, preferring a on ties.
func Min(a, b any) any {
	if Compare(b, a) < 0 {
		return b
	}
	return a
}

// Max returns the larger of a and b, preferring a on ties.
func Max(a, b any) any {
	if Compare(b, a) > 0 {
		return b
	}
	return a
}
