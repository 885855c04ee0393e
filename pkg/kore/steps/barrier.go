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
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
)

// NoOpBarrier collects traversers, up to a maximum when one is set, so that
// equal traversers merge before they continue. It changes nothing else.
type NoOpBarrier struct {
	step.CollectingBarrier
}

// NewNoOpBarrier returns a barrier holding at most maxSize distinct
// traversers at once. Zero is unbounded.
func NewNoOpBarrier(maxSize int) *NoOpBarrier {
	s := &NoOpBarrier{}
	s.CollectingBarrier.Init(maxSize, nil)
	return s
}

// Clone returns a copy with the same id and size.
func (s *NoOpBarrier) Clone() step.Step {
	c := *s
	c.CollectingBarrier.ResetClone()
	return &c
}

func (s *NoOpBarrier) String() string {
	if s.MaxSize() == 0 {
		return step.String(s)
	}
	return step.String(s, s.MaxSize())
}

// Order is a collecting barrier that sorts everything it collects.
type Order struct {
	step.CollectingBarrier
	less func(a, b any) bool
}

// NewOrder returns a barrier emitting its starts sorted by less.
func NewOrder(less func(a, b any) bool) *Order {
	s := &Order{less: less}
	s.CollectingBarrier.Init(0, s.sort)
	return s
}

func (s *Order) sort(set *traverser.Set) {
	set.Sort(func(a, b *traverser.Traverser) bool { return s.less(a.Value(), b.Value()) })
}

// Clone returns a copy with the same id and ordering.
func (s *Order) Clone() step.Step {
	c := *s
	c.CollectingBarrier.ResetClone()
	c.Consumer = c.sort
	return &c
}

func (s *Order) String() string { return step.String(s) }

// Supply discards its starts and emits one value from Fn per activation.
type Supply struct {
	step.SupplyingBarrier
	name string
}

// NewSupply returns a supplying barrier. The name identifies fn for
// equality and printing.
func NewSupply(name string, fn func() any) *Supply {
	s := &Supply{name: name}
	s.SupplyingBarrier.Init(fn)
	return s
}

// Clone returns a copy sharing the supplier.
func (s *Supply) Clone() step.Step {
	c := *s
	c.SupplyingBarrier.ResetClone()
	return &c
}

// Config distinguishes supplies by name.
func (s *Supply) Config() any { return s.name }

func (s *Supply) String() string { return step.String(s, s.name) }
