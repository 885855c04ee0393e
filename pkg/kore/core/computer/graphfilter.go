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
	"sort"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// Legal classifies a set of edges against an edge filter. The order
// Yes < Maybe < No runs from most to least permissive.
type Legal int

const (
	// Yes means the edges are never removed by the filter.
	Yes Legal = iota
	// Maybe means the edges may or may not be removed.
	Maybe
	// No means the edges are always removed.
	No
)

// Positive reports whether l is Yes or Maybe.
func (l Legal) Positive() bool { return l != No }

// Negative reports whether l is No.
func (l Legal) Negative() bool { return l == No }

func (l Legal) String() string {
	switch l {
	case Yes:
		return "YES"
	case Maybe:
		return "MAYBE"
	case No:
		return "NO"
	}
	return fmt.Sprintf("Legal(%d)", int(l))
}

// AnyLabel is the label key standing for every edge label.
const AnyLabel = ""

var directions = [...]structure.Direction{structure.Out, structure.In, structure.Both}

// GraphFilter prunes the graph a computer loads. The vertex filter may only
// read the vertex and its properties; a vertex is loaded when the filter
// emits anything. The edge filter starts at a vertex and emits the incident
// edges to load; it may not read adjacent vertices beyond their ids.
//
// From the shape of the edge filter, the GraphFilter also works out which
// directions and labels can be skipped without running the filter.
type GraphFilter struct {
	vertexFilter Filter
	edgeFilter   Filter
	hasVertex    bool
	hasEdge      bool
	legality     map[structure.Direction]map[string]Legal
	allowNoEdges bool
}

// SetVertexFilter validates and sets the vertex filter.
func (g *GraphFilter) SetVertexFilter(f Filter) error {
	if !isLocalProperties(f) {
		return errors.WithContextf(ErrVertexFilterAccessesEdges, "setting vertex filter %v", f)
	}
	g.vertexFilter = append(Filter(nil), f...)
	g.hasVertex = true
	return nil
}

// SetEdgeFilter validates and sets the edge filter, and classifies the
// legality of each direction and label.
func (g *GraphFilter) SetEdgeFilter(f Filter) error {
	if !isLocalStarGraph(f) {
		return errors.WithContextf(ErrEdgeFilterAccessesAdjacent, "setting edge filter %v", f)
	}
	g.edgeFilter = append(Filter(nil), f...)
	g.hasEdge = true
	g.legality = map[structure.Direction]map[string]Legal{
		structure.Out:  {},
		structure.In:   {},
		structure.Both: {},
	}
	g.allowNoEdges = false
	if len(f) == 0 {
		g.markUnreasoned()
		return nil
	}
	if r, ok := f[len(f)-1].(RangeStep); ok && r.High == 0 {
		g.allowNoEdges = true
	}

	switch start := f[0].(type) {
	case VertexStep:
		g.classify(start, len(f) == 1)
	case UnionStep:
		for _, b := range start.Branches {
			if len(b) == 0 {
				continue
			}
			if vs, ok := b[0].(VertexStep); ok {
				g.classify(vs, len(b) == 1)
			}
		}
	}

	out, in, both := g.legality[structure.Out], g.legality[structure.In], g.legality[structure.Both]
	// Both constrains each single direction.
	for label, l := range both {
		if cur, ok := in[label]; !ok || cur > l {
			in[label] = l
		}
	}
	for label, l := range both {
		if cur, ok := out[label]; !ok || cur > l {
			out[label] = l
		}
	}
	// A label present in both single directions is bounded by the more
	// restrictive of the two.
	for label, l := range out {
		if cur, ok := in[label]; ok {
			both[label] = max(cur, l)
		}
	}
	if len(out) == 0 && len(in) == 0 && len(both) == 0 {
		g.markUnreasoned()
	}
	return nil
}

func (g *GraphFilter) classify(vs VertexStep, alone bool) {
	if !vs.ReturnsEdges {
		return
	}
	l := Maybe
	if alone {
		l = Yes
	}
	m := g.legality[vs.Direction]
	if len(vs.Labels) == 0 {
		m[AnyLabel] = l
		return
	}
	for _, label := range vs.Labels {
		m[label] = l
	}
}

// markUnreasoned records that nothing could be proven about the filter.
func (g *GraphFilter) markUnreasoned() {
	for _, d := range directions {
		g.legality[d][AnyLabel] = Maybe
	}
}

// HasFilter reports whether a vertex or edge filter is set.
func (g *GraphFilter) HasFilter() bool { return g.hasVertex || g.hasEdge }

// HasVertexFilter reports whether a vertex filter is set.
func (g *GraphFilter) HasVertexFilter() bool { return g.hasVertex }

// HasEdgeFilter reports whether an edge filter is set.
func (g *GraphFilter) HasEdgeFilter() bool { return g.hasEdge }

// VertexFilter returns the vertex filter, or nil.
func (g *GraphFilter) VertexFilter() Filter { return g.vertexFilter }

// EdgeFilter returns the edge filter, or nil.
func (g *GraphFilter) EdgeFilter() Filter { return g.edgeFilter }

// LegalVertex reports whether v passes the vertex filter.
func (g *GraphFilter) LegalVertex(v *structure.Vertex) bool {
	return !g.hasVertex || g.vertexFilter.Test(v)
}

// LegalEdges returns the incident edges of v that pass the edge filter, or
// all incident edges when there is none.
func (g *GraphFilter) LegalEdges(v *structure.Vertex) []*structure.Edge {
	if !g.hasEdge {
		return v.Edges(structure.Both)
	}
	seen := make(map[*structure.Edge]bool)
	var out []*structure.Edge
	for _, x := range g.edgeFilter.Apply(v) {
		if e, ok := x.(*structure.Edge); ok && !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// CheckEdgeLegality returns the most permissive legality of any label in
// direction d.
func (g *GraphFilter) CheckEdgeLegality(d structure.Direction) Legal {
	if !g.hasEdge {
		return Yes
	}
	if g.allowNoEdges {
		return No
	}
	res := No
	for _, l := range g.legality[d] {
		res = min(res, l)
	}
	return res
}

// CheckEdgeLabelLegality returns the legality of edges labeled label in
// direction d.
func (g *GraphFilter) CheckEdgeLabelLegality(d structure.Direction, label string) Legal {
	if !g.hasEdge {
		return Yes
	}
	if g.CheckEdgeLegality(d).Negative() {
		return No
	}
	m := g.legality[d]
	if l, ok := m[label]; ok {
		return l
	}
	if l, ok := m[AnyLabel]; ok {
		return l
	}
	return No
}

// LegallyPositiveEdgeLabels returns the labels in direction d that are Yes or
// Maybe, sorted. A result of []string{AnyLabel} means every label.
func (g *GraphFilter) LegallyPositiveEdgeLabels(d structure.Direction) []string {
	if !g.hasEdge {
		return []string{AnyLabel}
	}
	if g.allowNoEdges {
		return []string{}
	}
	m := g.legality[d]
	if _, ok := m[AnyLabel]; ok {
		return []string{AnyLabel}
	}
	labels := []string{}
	for label, l := range m {
		if l.Positive() {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// Clone returns an independent copy of g.
func (g *GraphFilter) Clone() *GraphFilter {
	c := *g
	c.vertexFilter = append(Filter(nil), g.vertexFilter...)
	c.edgeFilter = append(Filter(nil), g.edgeFilter...)
	if g.legality != nil {
		c.legality = make(map[structure.Direction]map[string]Legal, len(g.legality))
		for d, m := range g.legality {
			cm := make(map[string]Legal, len(m))
			for k, v := range m {
				cm[k] = v
			}
			c.legality[d] = cm
		}
	}
	return &c
}

func (g *GraphFilter) String() string {
	switch {
	case g.hasVertex && g.hasEdge:
		return fmt.Sprintf("graphfilter[%v,%v]", g.vertexFilter, g.edgeFilter)
	case g.hasVertex:
		return fmt.Sprintf("graphfilter[%v]", g.vertexFilter)
	case g.hasEdge:
		return fmt.Sprintf("graphfilter[%v]", g.edgeFilter)
	}
	return "graphfilter[none]"
}
