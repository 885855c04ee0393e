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

package computer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/number"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/values"
)

// Filter is a small linear program over graph elements, starting at a
// vertex. It selects vertices for a vertex filter, incident edges for an edge
// filter or message scope, and is the input to legality reasoning.
type Filter []FilterStep

// FilterStep is one step of a Filter. The set of steps is closed:
// VertexStep, EdgeVertexStep, PropertiesStep, HasStep, RangeStep, UnionStep,
// IdentityStep and OtherStep.
type FilterStep interface {
	fmt.Stringer
	apply(in []any) []any
	reverse() FilterStep
}

// VertexStep moves from a vertex to its incident edges, or to its adjacent
// vertices, in a direction, optionally restricted to edge labels.
type VertexStep struct {
	Direction    structure.Direction
	Labels       []string
	ReturnsEdges bool
}

func (s VertexStep) apply(in []any) []any {
	var out []any
	for _, e := range in {
		v, ok := e.(*structure.Vertex)
		if !ok {
			continue
		}
		if s.ReturnsEdges {
			for _, x := range v.Edges(s.Direction, s.Labels...) {
				out = append(out, x)
			}
		} else {
			for _, x := range v.Vertices(s.Direction, s.Labels...) {
				out = append(out, x)
			}
		}
	}
	return out
}

func (s VertexStep) reverse() FilterStep {
	s.Direction = s.Direction.Opposite()
	return s
}

func (s VertexStep) String() string {
	name := strings.ToLower(s.Direction.String())
	if s.ReturnsEdges {
		name += "E"
	}
	return name + "(" + strings.Join(s.Labels, ",") + ")"
}

// EdgeVertexStep moves from an edge to its vertices.
type EdgeVertexStep struct {
	Direction structure.Direction
}

func (s EdgeVertexStep) apply(in []any) []any {
	var out []any
	for _, x := range in {
		e, ok := x.(*structure.Edge)
		if !ok {
			continue
		}
		for _, v := range e.Vertices(s.Direction) {
			out = append(out, v)
		}
	}
	return out
}

func (s EdgeVertexStep) reverse() FilterStep {
	s.Direction = s.Direction.Opposite()
	return s
}

func (s EdgeVertexStep) String() string {
	return strings.ToLower(s.Direction.String()) + "V()"
}

type element interface {
	Property(key string) (any, bool)
	Keys() []string
}

// PropertiesStep emits the values of the named properties, or of all
// properties when Keys is empty.
type PropertiesStep struct {
	Keys []string
}

func (s PropertiesStep) apply(in []any) []any {
	var out []any
	for _, x := range in {
		el, ok := x.(element)
		if !ok {
			continue
		}
		keys := s.Keys
		if len(keys) == 0 {
			keys = el.Keys()
		}
		for _, k := range keys {
			if v, ok := el.Property(k); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

func (s PropertiesStep) reverse() FilterStep { return s }

func (s PropertiesStep) String() string {
	return "values(" + strings.Join(s.Keys, ",") + ")"
}

// HasStep keeps elements whose property Key equals Value. A nil Value only
// requires the property to exist.
type HasStep struct {
	Key   string
	Value any
}

func (s HasStep) apply(in []any) []any {
	var out []any
	for _, x := range in {
		el, ok := x.(element)
		if !ok {
			continue
		}
		v, ok := el.Property(s.Key)
		if ok && (s.Value == nil || equalValues(v, s.Value)) {
			out = append(out, x)
		}
	}
	return out
}

func equalValues(a, b any) bool {
	if number.IsNumber(a) && number.IsNumber(b) {
		return number.Compare(a, b) == 0
	}
	return values.Equal(a, b)
}

func (s HasStep) reverse() FilterStep { return s }

func (s HasStep) String() string {
	if s.Value == nil {
		return "has(" + s.Key + ")"
	}
	return fmt.Sprintf("has(%s,%v)", s.Key, s.Value)
}

// RangeStep keeps the elements at positions [Low, High). A negative High is
// unbounded.
type RangeStep struct {
	Low, High int64
}

func (s RangeStep) apply(in []any) []any {
	lo, hi := s.Low, s.High
	n := int64(len(in))
	if hi < 0 || hi > n {
		hi = n
	}
	if lo < 0 {
		lo = 0
	}
	if lo > hi {
		lo = hi
	}
	return in[lo:hi]
}

func (s RangeStep) reverse() FilterStep { return s }

func (s RangeStep) String() string {
	if s.Low == 0 && s.High >= 0 {
		return fmt.Sprintf("limit(%d)", s.High)
	}
	return fmt.Sprintf("range(%d,%d)", s.Low, s.High)
}

// UnionStep runs each branch on every element and concatenates the results.
type UnionStep struct {
	Branches []Filter
}

func (s UnionStep) apply(in []any) []any {
	var out []any
	for _, x := range in {
		for _, b := range s.Branches {
			out = append(out, b.apply([]any{x})...)
		}
	}
	return out
}

func (s UnionStep) reverse() FilterStep {
	bs := make([]Filter, len(s.Branches))
	for i, b := range s.Branches {
		bs[i] = b.Reverse()
	}
	return UnionStep{Branches: bs}
}

func (s UnionStep) String() string {
	parts := make([]string, len(s.Branches))
	for i, b := range s.Branches {
		parts[i] = b.String()
	}
	return "union(" + strings.Join(parts, ",") + ")"
}

// IdentityStep passes elements through.
type IdentityStep struct{}

func (IdentityStep) apply(in []any) []any { return in }

func (s IdentityStep) reverse() FilterStep { return s }

func (IdentityStep) String() string { return "identity()" }

// OtherStep is an opaque predicate. Legality reasoning knows nothing about
// it. A nil Keep passes everything.
type OtherStep struct {
	Name string
	Keep func(any) bool
}

func (s OtherStep) apply(in []any) []any {
	if s.Keep == nil {
		return in
	}
	var out []any
	for _, x := range in {
		if s.Keep(x) {
			out = append(out, x)
		}
	}
	return out
}

func (s OtherStep) reverse() FilterStep { return s }

func (s OtherStep) String() string {
	return s.Name + "()"
}

// OutE selects outgoing edges.
func OutE(labels ...string) VertexStep {
	return VertexStep{Direction: structure.Out, Labels: labels, ReturnsEdges: true}
}

// InE selects incoming edges.
func InE(labels ...string) VertexStep {
	return VertexStep{Direction: structure.In, Labels: labels, ReturnsEdges: true}
}

// BothE selects incident edges.
func BothE(labels ...string) VertexStep {
	return VertexStep{Direction: structure.Both, Labels: labels, ReturnsEdges: true}
}

// Out selects outgoing adjacent vertices.
func Out(labels ...string) VertexStep {
	return VertexStep{Direction: structure.Out, Labels: labels}
}

// In selects incoming adjacent vertices.
func In(labels ...string) VertexStep {
	return VertexStep{Direction: structure.In, Labels: labels}
}

// Both selects adjacent vertices.
func Both(labels ...string) VertexStep {
	return VertexStep{Direction: structure.Both, Labels: labels}
}

// OutV selects the tail of an edge.
func OutV() EdgeVertexStep { return EdgeVertexStep{Direction: structure.Out} }

// InV selects the head of an edge.
func InV() EdgeVertexStep { return EdgeVertexStep{Direction: structure.In} }

// BothV selects both ends of an edge.
func BothV() EdgeVertexStep { return EdgeVertexStep{Direction: structure.Both} }

// Has keeps elements with key equal to value.
func Has(key string, value any) HasStep { return HasStep{Key: key, Value: value} }

// Values emits property values.
func Values(keys ...string) PropertiesStep { return PropertiesStep{Keys: keys} }

// Limit keeps the first n elements.
func Limit(n int64) RangeStep { return RangeStep{Low: 0, High: n} }

// Union concatenates the results of branches.
func Union(branches ...Filter) UnionStep { return UnionStep{Branches: branches} }

// Apply runs f from start and returns every element it emits.
func (f Filter) Apply(start any) []any {
	return f.apply([]any{start})
}

func (f Filter) apply(in []any) []any {
	for _, s := range f {
		in = s.apply(in)
		if len(in) == 0 {
			return nil
		}
	}
	return in
}

// Test reports whether f emits anything from start.
func (f Filter) Test(start any) bool {
	return len(f.Apply(start)) > 0
}

// Reverse returns f with every direction flipped.
func (f Filter) Reverse() Filter {
	out := make(Filter, len(f))
	for i, s := range f {
		out[i] = s.reverse()
	}
	return out
}

// Direction returns the direction of the last VertexStep in f, or Both if
// there is none.
func (f Filter) Direction() structure.Direction {
	for i := len(f) - 1; i >= 0; i-- {
		if vs, ok := f[i].(VertexStep); ok {
			return vs.Direction
		}
	}
	return structure.Both
}

func (f Filter) String() string {
	if len(f) == 0 {
		return "identity()"
	}
	parts := make([]string, len(f))
	for i, s := range f {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// isLocalProperties reports whether f reads only the vertex and its
// properties.
func isLocalProperties(f Filter) bool {
	for _, s := range f {
		switch s := s.(type) {
		case VertexStep, EdgeVertexStep:
			return false
		case UnionStep:
			for _, b := range s.Branches {
				if !isLocalProperties(b) {
					return false
				}
			}
		}
	}
	return true
}

// Star graph walk states.
const (
	atVertex   = 'v'
	atEdge     = 'e'
	atAdjacent = 'u'
	illegal    = 'x'
)

// isLocalStarGraph reports whether f stays within the star graph of its
// start vertex: the vertex, its incident edges, and the ids of adjacent
// vertices.
func isLocalStarGraph(f Filter) bool {
	return localStarGraphState(f, atVertex) != illegal
}

func localStarGraphState(f Filter, state rune) rune {
	for _, s := range f {
		switch s := s.(type) {
		case PropertiesStep:
			if state == atAdjacent {
				return illegal
			}
		case HasStep:
			if state == atAdjacent && s.Key != structure.KeyID {
				return illegal
			}
		case VertexStep:
			if state == atAdjacent {
				return illegal
			}
			if s.ReturnsEdges {
				state = atEdge
			} else {
				state = atAdjacent
			}
		case EdgeVertexStep:
			state = atAdjacent
		case UnionStep:
			var sawEdge, sawAdjacent bool
			for _, b := range s.Branches {
				switch localStarGraphState(b, state) {
				case illegal:
					return illegal
				case atEdge:
					sawEdge = true
				case atAdjacent:
					sawAdjacent = true
				}
			}
			if sawAdjacent {
				state = atAdjacent
			} else if sawEdge {
				state = atEdge
			}
		}
	}
	return state
}

// ParseFilter parses the String form of a Filter, such as
// "bothE(knows).limit(0)" or "union(outE(created),inE(knows).has(weight,1))".
// OtherStep cannot be parsed.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var f Filter
	for _, part := range splitTop(s, '.') {
		st, err := parseStep(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Wrapf(err, "computer: parsing filter %q", s)
		}
		f = append(f, st)
	}
	return f, nil
}

func parseStep(s string) (FilterStep, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, errors.Errorf("malformed step %q", s)
	}
	name, body := s[:open], s[open+1:len(s)-1]
	var args []string
	if strings.TrimSpace(body) != "" {
		for _, a := range splitTop(body, ',') {
			args = append(args, strings.TrimSpace(a))
		}
	}
	switch name {
	case "outE":
		return OutE(args...), nil
	case "inE":
		return InE(args...), nil
	case "bothE":
		return BothE(args...), nil
	case "out":
		return Out(args...), nil
	case "in":
		return In(args...), nil
	case "both":
		return Both(args...), nil
	case "outV":
		return OutV(), nil
	case "inV":
		return InV(), nil
	case "bothV":
		return BothV(), nil
	case "values":
		return Values(args...), nil
	case "identity":
		return IdentityStep{}, nil
	case "has":
		switch len(args) {
		case 1:
			return HasStep{Key: args[0]}, nil
		case 2:
			return Has(args[0], parseScalar(args[1])), nil
		}
		return nil, errors.Errorf("has takes 1 or 2 arguments, got %d", len(args))
	case "limit":
		if len(args) != 1 {
			return nil, errors.Errorf("limit takes 1 argument, got %d", len(args))
		}
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return nil, err
		}
		return Limit(n), nil
	case "range":
		if len(args) != 2 {
			return nil, errors.Errorf("range takes 2 arguments, got %d", len(args))
		}
		lo, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return nil, err
		}
		return RangeStep{Low: lo, High: hi}, nil
	case "union":
		var bs []Filter
		for _, a := range args {
			b, err := ParseFilter(a)
			if err != nil {
				return nil, err
			}
			bs = append(bs, b)
		}
		return Union(bs...), nil
	}
	return nil, errors.Errorf("unknown step %q", name)
}

func parseScalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// splitTop splits s on sep outside parentheses.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
