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

// Package path contains the two representations of a traverser's history:
// a persistent linked chain that is shared between forks, and a slice
// backed variant mutated in place and deep copied on fork. Both resolve
// labels through the same Pop policies and are observationally equal for
// equal extend sequences.
package path

import (
	"fmt"
	"strings"

	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/values"
)

var (
	// ErrLabelNotFound is returned when no path entry carries the label.
	ErrLabelNotFound = errors.New("the step with the provided label does not exist")
	// ErrSubPath is returned when a sub path cannot be isolated.
	ErrSubPath = errors.New("could not isolate sub path")
)

// Pop selects which entries a label resolves to when several carry it.
type Pop int

const (
	// First resolves to the earliest entry with the label.
	First Pop = iota
	// Last resolves to the latest entry with the label.
	Last
	// All resolves to every matching value as an ordered []any.
	All
	// Mixed is All, except that a single match resolves to the bare value.
	Mixed
)

func (p Pop) String() string {
	switch p {
	case First:
		return "first"
	case Last:
		return "last"
	case All:
		return "all"
	case Mixed:
		return "mixed"
	}
	return fmt.Sprintf("Pop(%d)", int(p))
}

// ParsePop returns the Pop named s.
func ParsePop(s string) (Pop, error) {
	for _, p := range []Pop{First, Last, All, Mixed} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, errors.Errorf("unknown pop %q", s)
}

// Path is an ordered sequence of (value, label set) entries.
//
// Implementations differ in mutability. Callers must always continue with
// the Path returned by Extend, ExtendLabels and Retract.
type Path interface {
	// Size returns the number of entries.
	Size() int
	// IsEmpty reports whether Size is zero.
	IsEmpty() bool
	// Head returns the most recently extended value, or nil when empty.
	Head() any
	// Extend appends value labeled with labels.
	Extend(value any, labels ...string) Path
	// ExtendLabels widens the label set of the head entry.
	ExtendLabels(labels ...string) Path
	// Retract removes labels from every entry and drops entries left with
	// no labels.
	Retract(labels ...string) Path
	// At returns the value at position i.
	At(i int) any
	// Get resolves label according to pop.
	Get(pop Pop, label string) (any, error)
	// HasLabel reports whether any entry carries label.
	HasLabel(label string) bool
	// Objects returns the values in extend order.
	Objects() []any
	// Labels returns the label sets in extend order.
	Labels() []Labels
	// IsSimple reports whether no value occurs twice.
	IsSimple() bool
	// Clone returns a Path that later mutations of either side cannot affect.
	Clone() Path
}

// Get resolves label with the Mixed policy.
func Get(p Path, label string) (any, error) {
	return p.Get(Mixed, label)
}

// resolve implements the Pop policies over a list of matches.
func resolve(pop Pop, label string, matches []any) (any, error) {
	switch pop {
	case All:
		if matches == nil {
			return []any{}, nil
		}
		return matches, nil
	case Mixed:
		switch len(matches) {
		case 0:
			return nil, errors.Wrapf(ErrLabelNotFound, "label %q", label)
		case 1:
			return matches[0], nil
		}
		return matches, nil
	case First:
		if len(matches) == 0 {
			return nil, errors.Wrapf(ErrLabelNotFound, "label %q", label)
		}
		return matches[0], nil
	case Last:
		if len(matches) == 0 {
			return nil, errors.Wrapf(ErrLabelNotFound, "label %q", label)
		}
		return matches[len(matches)-1], nil
	}
	return nil, errors.Errorf("unknown pop %v", pop)
}

// Equal reports whether a and b hold equal values with equal label sets at
// every position, regardless of representation.
func Equal(a, b Path) bool {
	if a.Size() != b.Size() {
		return false
	}
	ao, bo := a.Objects(), b.Objects()
	al, bl := a.Labels(), b.Labels()
	for i := len(ao) - 1; i >= 0; i-- {
		if !values.Equal(ao[i], bo[i]) || !al[i].Equal(bl[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash of the path values consistent with Equal.
func Hash(p Path) uint64 {
	objs := p.Objects()
	hs := make([]uint64, len(objs))
	for i, o := range objs {
		hs[i] = values.Hash(o)
	}
	return values.Combine(hs...)
}

// PopEqual reports whether every label of a resolves under pop to an equal
// value in b.
func PopEqual(pop Pop, a, b Path) bool {
	for _, ls := range a.Labels() {
		for _, l := range ls {
			if !b.HasLabel(l) {
				return false
			}
			va, errA := a.Get(pop, l)
			vb, errB := b.Get(pop, l)
			if errA != nil || errB != nil || !values.Equal(va, vb) {
				return false
			}
		}
	}
	return true
}

// SubPath returns the entries between the latest entry labeled from and the
// latest entry labeled to, inclusive. An empty label leaves that end open.
// The result is always a mutable path.
func SubPath(p Path, from, to string) (Path, error) {
	if from == "" && to == "" {
		return p, nil
	}
	labels := p.Labels()
	fromIndex, toIndex := -1, -1
	for i := len(labels) - 1; i >= 0; i-- {
		if fromIndex == -1 && from != "" && labels[i].Contains(from) {
			fromIndex = i
		}
		if toIndex == -1 && to != "" && labels[i].Contains(to) {
			toIndex = i
		}
	}
	if from != "" && fromIndex == -1 {
		return nil, errors.Wrapf(ErrSubPath, "could not locate from-label %q", from)
	}
	if to != "" && toIndex == -1 {
		return nil, errors.Wrapf(ErrSubPath, "could not locate to-label %q", to)
	}
	if fromIndex == -1 {
		fromIndex = 0
	}
	if toIndex == -1 {
		toIndex = len(labels) - 1
	}
	if fromIndex > toIndex {
		return nil, errors.Wrapf(ErrSubPath, "from comes after to: %s->%s", from, to)
	}
	sub := NewMutable()
	for i := fromIndex; i <= toIndex; i++ {
		sub = sub.Extend(p.At(i), labels[i]...)
	}
	return sub, nil
}

// Detach returns a path of the same representation whose values have been
// detached from any live graph.
func Detach(p Path) Path {
	var out Path
	switch p.(type) {
	case *immutable:
		out = NewImmutable()
	case emptyPath:
		return p
	default:
		out = NewMutable()
	}
	labels := p.Labels()
	for i, o := range p.Objects() {
		out = out.Extend(values.Detach(o), labels[i]...)
	}
	return out
}

// String renders p as path[v1, v2, ...].
func String(p Path) string {
	objs := p.Objects()
	parts := make([]string, len(objs))
	for i, o := range objs {
		parts[i] = fmt.Sprint(o)
	}
	return "path[" + strings.Join(parts, ", ") + "]"
}

func isSimple(objs []any) bool {
	var seen values.Index
	for _, o := range objs {
		if _, added := seen.Insert(o); !added {
			return false
		}
	}
	return true
}
