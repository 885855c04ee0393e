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

package steps

import (
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/number"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
)

// Reduce is a reducing barrier: sum, count, min, max or fold.
type Reduce struct {
	step.ReducingBarrier
	name string
}

func newReduce(name string, seed func() any, op operator.Reducer, project func(*traverser.Traverser) any) *Reduce {
	s := &Reduce{name: name}
	s.ReducingBarrier.Init(seed, op, project)
	return s
}

// NewSum adds the values of its starts, weighted by bulk. Integer values
// sum as int64 however the starts were merged. It emits nothing when there
// are no starts.
func NewSum() *Reduce {
	return newReduce("sum", nil, operator.Sum, func(t *traverser.Traverser) any {
		return number.Mul(t.Value(), t.Bulk())
	})
}

// NewCount counts its starts as an int64, emitting 0 when there are none.
func NewCount() *Reduce {
	return newReduce("count", func() any { return int64(0) }, operator.SumLong, func(t *traverser.Traverser) any {
		return t.Bulk()
	})
}

// NewMin emits the smallest value of its starts.
func NewMin() *Reduce {
	return newReduce("min", nil, operator.Min, nil)
}

// NewMax emits the largest value of its starts.
func NewMax() *Reduce {
	return newReduce("max", nil, operator.Max, nil)
}

// NewFold gathers the values of its starts, repeated by bulk, into a []any.
func NewFold() *Reduce {
	return newReduce("fold", func() any { return []any{} }, operator.AddAll, func(t *traverser.Traverser) any {
		out := make([]any, t.Bulk())
		for i := range out {
			out[i] = t.Value()
		}
		return out
	})
}

// NewReduce returns the reducing step named by op: "sum", "count", "min",
// "max" or "fold".
func NewReduce(op string) (*Reduce, bool) {
	switch op {
	case "sum":
		return NewSum(), true
	case "count":
		return NewCount(), true
	case "min":
		return NewMin(), true
	case "max":
		return NewMax(), true
	case "fold":
		return NewFold(), true
	}
	return nil, false
}

// Name returns the reduction name.
func (s *Reduce) Name() string { return s.name }

// Clone returns a copy with the same id and reduction.
func (s *Reduce) Clone() step.Step {
	c := *s
	c.ReducingBarrier.ResetClone()
	return &c
}

// Config distinguishes reductions by name.
func (s *Reduce) Config() any { return s.name }

func (s *Reduce) String() string { return step.String(s, s.name) }
