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

// Package operator defines the named associative binary operators used as
// barrier folds and memory reducers.
package operator

import (
	"fmt"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/bulkset"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/number"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// Reducer combines two partial results. Implementations must be
// associative under any merge tree; this is a documented precondition and is
// not checked.
type Reducer interface {
	Apply(a, b any) any
}

// BinaryOperator adapts a function to Reducer.
type BinaryOperator func(a, b any) any

// Apply calls f(a, b).
func (f BinaryOperator) Apply(a, b any) any {
	return f(a, b)
}

// Operator is one of the built in reducers.
type Operator int

const (
	// Sum adds numbers.
	Sum Operator = iota
	// SumLong adds numbers as int64.
	SumLong
	// Mult multiplies numbers.
	Mult
	// Min keeps the smaller number.
	Min
	// Max keeps the larger number.
	Max
	// And is logical conjunction of bools.
	And
	// Or is logical disjunction of bools.
	Or
	// Assign keeps the right operand.
	Assign
	// AddAll merges collections: []any, *bulkset.BulkSet[any] and
	// *traverser.Set. The left operand is modified in place.
	AddAll
)

var names = [...]string{"sum", "sumLong", "mult", "min", "max", "and", "or", "assign", "addAll"}

func (o Operator) String() string {
	if int(o) < len(names) {
		return names[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Parse returns the operator named s.
func Parse(s string) (Operator, error) {
	for i, n := range names {
		if n == s {
			return Operator(i), nil
		}
	}
	return 0, errors.Errorf("operator: unknown operator %q", s)
}

// Apply combines a and b.
func (o Operator) Apply(a, b any) any {
	switch o {
	case Sum:
		return number.Add(a, b)
	case SumLong:
		x, err := number.Int64(a)
		if err != nil {
			panic(err)
		}
		y, err := number.Int64(b)
		if err != nil {
			panic(err)
		}
		return x + y
	case Mult:
		return number.Mul(a, b)
	case Min:
		return number.Min(a, b)
	case Max:
		return number.Max(a, b)
	case And:
		return a.(bool) && b.(bool)
	case Or:
		return a.(bool) || b.(bool)
	case Assign:
		return b
	case AddAll:
		return addAll(a, b)
	}
	panic(errors.Errorf("operator: unknown operator %v", o))
}

func addAll(a, b any) any {
	switch x := a.(type) {
	case []any:
		if y, ok := b.([]any); ok {
			return append(x, y...)
		}
		return append(x, b)
	case *bulkset.BulkSet[any]:
		if y, ok := b.(*bulkset.BulkSet[any]); ok {
			x.AddAll(y)
		} else {
			x.Add(b)
		}
		return x
	case *traverser.Set:
		switch y := b.(type) {
		case *traverser.Set:
			x.AddAll(y)
		case *traverser.Traverser:
			x.Add(y)
		default:
			panic(errors.Errorf("operator: cannot add %T to a traverser set", b))
		}
		return x
	}
	panic(errors.Errorf("operator: addAll does not support %T", a))
}
