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

// mutable keeps values and label sets in parallel slices and is modified in
// place. Forks must Clone.
type mutable struct {
	objects []any
	labels  []Labels
}

// NewMutable returns an empty slice backed path.
func NewMutable() Path {
	return &mutable{}
}

func (p *mutable) Size() int {
	return len(p.objects)
}

func (p *mutable) IsEmpty() bool {
	return len(p.objects) == 0
}

func (p *mutable) Head() any {
	if len(p.objects) == 0 {
		return nil
	}
	return p.objects[len(p.objects)-1]
}

func (p *mutable) Extend(value any, labels ...string) Path {
	p.objects = append(p.objects, value)
	p.labels = append(p.labels, NewLabels(labels...))
	return p
}

func (p *mutable) ExtendLabels(labels ...string) Path {
	last := len(p.labels) - 1
	if last < 0 || len(labels) == 0 || p.labels[last].ContainsAll(labels) {
		return p
	}
	p.labels[last] = p.labels[last].Union(labels)
	return p
}

func (p *mutable) Retract(labels ...string) Path {
	if len(labels) == 0 {
		return p
	}
	for i := len(p.labels) - 1; i >= 0; i-- {
		p.labels[i] = p.labels[i].Minus(labels)
		if len(p.labels[i]) == 0 {
			p.labels = append(p.labels[:i], p.labels[i+1:]...)
			p.objects = append(p.objects[:i], p.objects[i+1:]...)
		}
	}
	return p
}

func (p *mutable) At(i int) any {
	return p.objects[i]
}

func (p *mutable) Get(pop Pop, label string) (any, error) {
	switch pop {
	case Last:
		for i := len(p.labels) - 1; i >= 0; i-- {
			if p.labels[i].Contains(label) {
				return p.objects[i], nil
			}
		}
		return resolve(pop, label, nil)
	case First:
		for i, ls := range p.labels {
			if ls.Contains(label) {
				return p.objects[i], nil
			}
		}
		return resolve(pop, label, nil)
	}
	var matches []any
	for i, ls := range p.labels {
		if ls.Contains(label) {
			matches = append(matches, p.objects[i])
		}
	}
	return resolve(pop, label, matches)
}

func (p *mutable) HasLabel(label string) bool {
	for _, ls := range p.labels {
		if ls.Contains(label) {
			return true
		}
	}
	return false
}

func (p *mutable) Objects() []any {
	out := make([]any, len(p.objects))
	copy(out, p.objects)
	return out
}

func (p *mutable) Labels() []Labels {
	out := make([]Labels, len(p.labels))
	copy(out, p.labels)
	return out
}

func (p *mutable) IsSimple() bool {
	return isSimple(p.objects)
}

// Clone deep copies the value slice and every label set.
func (p *mutable) Clone() Path {
	c := &mutable{
		objects: make([]any, len(p.objects)),
		labels:  make([]Labels, len(p.labels)),
	}
	copy(c.objects, p.objects)
	for i, ls := range p.labels {
		c.labels[i] = ls.Clone()
	}
	return c
}

func (p *mutable) String() string {
	return String(p)
}
