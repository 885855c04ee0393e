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

package path

// immutable is one node of a persistent chain. Every chain ends at the
// shared tail sentinel and nodes are never modified after construction.
type immutable struct {
	prev   *immutable
	value  any
	labels Labels
}

var tail = &immutable{}

// NewImmutable returns the empty persistent path. Extending it allocates one
// node per call and shares the previous chain.
func NewImmutable() Path {
	return tail
}

func (p *immutable) isTail() bool {
	return p == tail
}

func (p *immutable) Size() int {
	n := 0
	for cur := p; !cur.isTail(); cur = cur.prev {
		n++
	}
	return n
}

func (p *immutable) IsEmpty() bool {
	return p.isTail()
}

func (p *immutable) Head() any {
	return p.value
}

func (p *immutable) Extend(value any, labels ...string) Path {
	return &immutable{prev: p, value: value, labels: NewLabels(labels...)}
}

func (p *immutable) ExtendLabels(labels ...string) Path {
	if p.isTail() || len(labels) == 0 || p.labels.ContainsAll(labels) {
		return p
	}
	return &immutable{prev: p.prev, value: p.value, labels: p.labels.Union(labels)}
}

func (p *immutable) Retract(labels ...string) Path {
	if len(labels) == 0 {
		return p
	}
	nodes := p.nodes()
	var out Path = tail
	for _, n := range nodes {
		if kept := n.labels.Minus(labels); len(kept) > 0 {
			out = out.Extend(n.value, kept...)
		}
	}
	return out
}

// nodes returns the chain oldest first.
func (p *immutable) nodes() []*immutable {
	out := make([]*immutable, p.Size())
	i := len(out) - 1
	for cur := p; !cur.isTail(); cur = cur.prev {
		out[i] = cur
		i--
	}
	return out
}

func (p *immutable) At(i int) any {
	n := p.Size()
	for cur := p; !cur.isTail(); cur = cur.prev {
		n--
		if n == i {
			return cur.value
		}
	}
	panic("path: index out of range")
}

func (p *immutable) Get(pop Pop, label string) (any, error) {
	if pop == Last {
		for cur := p; !cur.isTail(); cur = cur.prev {
			if cur.labels.Contains(label) {
				return cur.value, nil
			}
		}
		return resolve(pop, label, nil)
	}
	var matches []any
	for cur := p; !cur.isTail(); cur = cur.prev {
		if cur.labels.Contains(label) {
			matches = append(matches, cur.value)
		}
	}
	// Walked newest first.
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return resolve(pop, label, matches)
}

func (p *immutable) HasLabel(label string) bool {
	for cur := p; !cur.isTail(); cur = cur.prev {
		if cur.labels.Contains(label) {
			return true
		}
	}
	return false
}

func (p *immutable) Objects() []any {
	nodes := p.nodes()
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n.value
	}
	return out
}

func (p *immutable) Labels() []Labels {
	nodes := p.nodes()
	out := make([]Labels, len(nodes))
	for i, n := range nodes {
		out[i] = n.labels
	}
	return out
}

func (p *immutable) IsSimple() bool {
	return isSimple(p.Objects())
}

// Clone returns p itself; nodes are never mutated.
func (p *immutable) Clone() Path {
	return p
}

func (p *immutable) String() string {
	return String(p)
}
