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

// Package structure is a minimal in-memory property graph: enough structure
// for a graph computer to partition vertices, walk incident edges and keep
// per-vertex compute properties.
package structure

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// ErrDuplicateVertex is returned when a vertex id is already in use.
var ErrDuplicateVertex = errors.New("vertex with id already exists")

// Direction of an edge relative to a vertex.
type Direction int

const (
	// Out edges start at the vertex.
	Out Direction = iota
	// In edges end at the vertex.
	In
	// Both covers Out and In.
	Both
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "OUT"
	case In:
		return "IN"
	case Both:
		return "BOTH"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Opposite swaps Out and In; Both is its own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Out:
		return In
	case In:
		return Out
	}
	return Both
}

// ParseDirection parses "out", "in" or "both" in any case.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "out", "OUT", "Out":
		return Out, nil
	case "in", "IN", "In":
		return In, nil
	case "both", "BOTH", "Both":
		return Both, nil
	}
	return 0, errors.Errorf("unknown direction %q", s)
}

// Property keys with special meaning in filters.
const (
	KeyID    = "~id"
	KeyLabel = "~label"
)

type properties struct {
	mu sync.RWMutex
	m  map[string]any
}

func (p *properties) get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.m[key]
	return v, ok
}

func (p *properties) set(key string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = map[string]any{}
	}
	p.m[key] = v
}

func (p *properties) remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, key)
}

func (p *properties) keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ks := slices.Collect(maps.Keys(p.m))
	slices.Sort(ks)
	return ks
}

func (p *properties) clone() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.m)
}

// Graph owns vertices and edges. Adding elements is not safe for concurrent
// use; property access is.
type Graph struct {
	vertices map[any]*Vertex
	order    []*Vertex
	edges    []*Edge
	nextEdge int64
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{vertices: map[any]*Vertex{}}
}

// AddVertex adds a vertex with the given id, label and alternating
// key/value properties.
func (g *Graph) AddVertex(id any, label string, kvs ...any) (*Vertex, error) {
	if _, ok := g.vertices[id]; ok {
		return nil, errors.Wrapf(ErrDuplicateVertex, "id %v", id)
	}
	v := &Vertex{id: id, label: label}
	if err := setAll(&v.props, kvs); err != nil {
		return nil, err
	}
	g.vertices[id] = v
	g.order = append(g.order, v)
	return v, nil
}

// AddEdge connects out to in with a labeled edge.
func (g *Graph) AddEdge(label string, out, in *Vertex, kvs ...any) (*Edge, error) {
	g.nextEdge++
	e := &Edge{id: g.nextEdge, label: label, out: out, in: in}
	if err := setAll(&e.props, kvs); err != nil {
		return nil, err
	}
	out.outE = append(out.outE, e)
	in.inE = append(in.inE, e)
	g.edges = append(g.edges, e)
	return e, nil
}

func setAll(p *properties, kvs []any) error {
	if len(kvs)%2 != 0 {
		return errors.Errorf("odd number of property key/values: %v", kvs)
	}
	for i := 0; i < len(kvs); i += 2 {
		k, ok := kvs[i].(string)
		if !ok {
			return errors.Errorf("property key %v is not a string", kvs[i])
		}
		p.set(k, kvs[i+1])
	}
	return nil
}

// Vertex returns the vertex with the given id.
func (g *Graph) Vertex(id any) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	return slices.Clone(g.order)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return slices.Clone(g.edges)
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Subgraph copies the vertices accepted by keepVertex and, among the edges
// between them, those accepted by keepEdge. Properties are copied; edge ids
// are preserved.
func (g *Graph) Subgraph(keepVertex func(*Vertex) bool, keepEdge func(*Edge) bool) *Graph {
	out := NewGraph()
	for _, v := range g.order {
		if keepVertex == nil || keepVertex(v) {
			nv := &Vertex{id: v.id, label: v.label}
			nv.props.m = v.props.clone()
			out.vertices[v.id] = nv
			out.order = append(out.order, nv)
		}
	}
	for _, e := range g.edges {
		ov, okOut := out.vertices[e.out.id]
		iv, okIn := out.vertices[e.in.id]
		if !okOut || !okIn || (keepEdge != nil && !keepEdge(e)) {
			continue
		}
		ne := &Edge{id: e.id, label: e.label, out: ov, in: iv}
		ne.props.m = e.props.clone()
		ov.outE = append(ov.outE, ne)
		iv.inE = append(iv.inE, ne)
		out.edges = append(out.edges, ne)
		if e.id.(int64) > out.nextEdge {
			out.nextEdge = e.id.(int64)
		}
	}
	return out
}

// Vertex is a graph vertex.
type Vertex struct {
	id        any
	label     string
	props     properties
	outE, inE []*Edge
}

// ID returns the vertex id.
func (v *Vertex) ID() any { return v.id }

// Label returns the vertex label.
func (v *Vertex) Label() string { return v.label }

// Property returns the value of key. The keys KeyID and KeyLabel resolve to
// the id and label.
func (v *Vertex) Property(key string) (any, bool) {
	switch key {
	case KeyID:
		return v.id, true
	case KeyLabel:
		return v.label, true
	}
	return v.props.get(key)
}

// SetProperty sets key to value.
func (v *Vertex) SetProperty(key string, value any) {
	v.props.set(key, value)
}

// RemoveProperty deletes key.
func (v *Vertex) RemoveProperty(key string) {
	v.props.remove(key)
}

// Keys returns the property keys in sorted order.
func (v *Vertex) Keys() []string {
	return v.props.keys()
}

// Edges returns the incident edges in direction d, restricted to labels when
// any are given.
func (v *Vertex) Edges(d Direction, labels ...string) []*Edge {
	var out []*Edge
	if d == Out || d == Both {
		out = appendLabeled(out, v.outE, labels)
	}
	if d == In || d == Both {
		out = appendLabeled(out, v.inE, labels)
	}
	return out
}

// Vertices returns the adjacent vertices in direction d.
func (v *Vertex) Vertices(d Direction, labels ...string) []*Vertex {
	var out []*Vertex
	for _, e := range v.Edges(d, labels...) {
		out = append(out, e.Other(v))
	}
	return out
}

func appendLabeled(dst, edges []*Edge, labels []string) []*Edge {
	for _, e := range edges {
		if len(labels) == 0 || slices.Contains(labels, e.label) {
			dst = append(dst, e)
		}
	}
	return dst
}

// Detach returns a reference to v that carries only its id and label.
func (v *Vertex) Detach() any {
	return Reference{ID: v.id, Label: v.label}
}

func (v *Vertex) String() string {
	return fmt.Sprintf("v[%v]", v.id)
}

// Edge is a directed labeled edge.
type Edge struct {
	id      any
	label   string
	out, in *Vertex
	props   properties
}

// ID returns the edge id.
func (e *Edge) ID() any { return e.id }

// Label returns the edge label.
func (e *Edge) Label() string { return e.label }

// OutVertex returns the tail vertex.
func (e *Edge) OutVertex() *Vertex { return e.out }

// InVertex returns the head vertex.
func (e *Edge) InVertex() *Vertex { return e.in }

// Vertices returns the endpoint(s) in direction d: Out is the tail, In the
// head and Both the tail then the head.
func (e *Edge) Vertices(d Direction) []*Vertex {
	switch d {
	case Out:
		return []*Vertex{e.out}
	case In:
		return []*Vertex{e.in}
	}
	return []*Vertex{e.out, e.in}
}

// Other returns the endpoint that is not v.
func (e *Edge) Other(v *Vertex) *Vertex {
	if e.out == v {
		return e.in
	}
	return e.out
}

// Property returns the value of key, resolving KeyID and KeyLabel.
func (e *Edge) Property(key string) (any, bool) {
	switch key {
	case KeyID:
		return e.id, true
	case KeyLabel:
		return e.label, true
	}
	return e.props.get(key)
}

// SetProperty sets key to value.
func (e *Edge) SetProperty(key string, value any) {
	e.props.set(key, value)
}

// Keys returns the property keys in sorted order.
func (e *Edge) Keys() []string {
	return e.props.keys()
}

// Detach returns a reference to e that carries only its id and label.
func (e *Edge) Detach() any {
	return Reference{ID: e.id, Label: e.label}
}

func (e *Edge) String() string {
	return fmt.Sprintf("e[%v][%v-%s->%v]", e.id, e.out.id, e.label, e.in.id)
}

// Reference identifies an element without holding on to the graph.
type Reference struct {
	ID    any
	Label string
}

func (r Reference) String() string {
	return fmt.Sprintf("ref[%v]", r.ID)
}
