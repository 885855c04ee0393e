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

// Package computer defines the contracts between a graph computer and the
// programs it runs: Memory and its compute keys, VertexProgram, MapReduce,
// message scopes, and the GraphFilter that prunes the loaded graph.
package computer

import (
	"context"
	"fmt"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
)

// ResultGraph selects the graph returned by a computation.
type ResultGraph int

const (
	// Original returns the input graph, updated in place.
	Original ResultGraph = iota
	// NewGraph returns a copy of the input graph.
	NewGraph
)

func (r ResultGraph) String() string {
	switch r {
	case Original:
		return "original"
	case NewGraph:
		return "new"
	}
	return fmt.Sprintf("ResultGraph(%d)", int(r))
}

// ParseResultGraph parses "original" or "new".
func ParseResultGraph(s string) (ResultGraph, error) {
	switch s {
	case "original":
		return Original, nil
	case "new":
		return NewGraph, nil
	}
	return 0, fmt.Errorf("computer: unknown result graph %q", s)
}

// Persist selects what program output is kept in the result graph.
type Persist int

const (
	// Nothing keeps no vertex compute keys.
	Nothing Persist = iota
	// VertexProperties keeps the non-transient vertex compute keys.
	VertexProperties
	// Edges keeps vertex compute keys and the loaded edges.
	Edges
)

func (p Persist) String() string {
	switch p {
	case Nothing:
		return "nothing"
	case VertexProperties:
		return "vertexProperties"
	case Edges:
		return "edges"
	}
	return fmt.Sprintf("Persist(%d)", int(p))
}

// ParsePersist parses "nothing", "vertexProperties" or "edges".
func ParsePersist(s string) (Persist, error) {
	switch s {
	case "nothing":
		return Nothing, nil
	case "vertexProperties":
		return VertexProperties, nil
	case "edges":
		return Edges, nil
	}
	return 0, fmt.Errorf("computer: unknown persist %q", s)
}

// Features describes the capabilities of a GraphComputer.
type Features interface {
	// MaxWorkers is the largest supported worker count.
	MaxWorkers() int
	// SupportsResultGraphPersistCombination reports whether r and p may be
	// requested together.
	SupportsResultGraphPersistCombination(r ResultGraph, p Persist) bool
}

// GraphComputer runs a VertexProgram and MapReduce jobs over a graph. The
// configuration methods return the computer so calls chain. Filters are
// validated when they are set.
type GraphComputer interface {
	Program(vp VertexProgram) GraphComputer
	MapReduce(mr MapReduce) GraphComputer
	Workers(n int) GraphComputer
	Result(r ResultGraph) GraphComputer
	Persist(p Persist) GraphComputer
	// Vertices sets the vertex filter, failing with
	// ErrVertexFilterAccessesEdges if it reads incident edges.
	Vertices(f Filter) error
	// Edges sets the edge filter, failing with
	// ErrEdgeFilterAccessesAdjacent if it reads adjacent vertices.
	Edges(f Filter) error
	Features() Features
	// Submit runs the computation. A computer may be submitted once.
	Submit(ctx context.Context) (*Result, error)
}

// Result is the outcome of a computation: the result graph and a read-only
// view of the final memory.
type Result struct {
	Graph  *structure.Graph
	Memory Memory
}

func (r *Result) String() string {
	return fmt.Sprintf("result[graph[%d vertices, %d edges],memory[%d keys, %d iterations]]",
		r.Graph.VertexCount(), r.Graph.EdgeCount(), len(r.Memory.Keys()), r.Memory.Iteration())
}
