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

// Package local is an in-process graph computer. It runs a VertexProgram in
// bulk synchronous supersteps over a copy of a structure.Graph, with one
// goroutine per worker, followed by any MapReduce jobs.
package local

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
	"github.com/tinkercat/gremlin-kore/pkg/kore/log"
)

// MaxWorkers is the largest worker count a Computer accepts.
const MaxWorkers = 64

// Computer runs programs over a graph held in memory. It is used for a
// single submission.
type Computer struct {
	graph         *structure.Graph
	program       computer.VertexProgram
	mapReducers   []computer.MapReduce
	workers       int
	maxIterations int
	resultGraph   *computer.ResultGraph
	persist       *computer.Persist
	filter        computer.GraphFilter
	metrics       *Metrics

	mu        sync.Mutex
	submitted bool
}

// New returns a Computer over g with one worker per CPU.
func New(g *structure.Graph) *Computer {
	return &Computer{graph: g, workers: min(runtime.NumCPU(), MaxWorkers)}
}

// Program sets the vertex program.
func (c *Computer) Program(vp computer.VertexProgram) computer.GraphComputer {
	c.program = vp
	return c
}

// MapReduce adds a job to run after the vertex program.
func (c *Computer) MapReduce(mr computer.MapReduce) computer.GraphComputer {
	c.mapReducers = append(c.mapReducers, mr)
	return c
}

// Workers sets the number of worker goroutines.
func (c *Computer) Workers(n int) computer.GraphComputer {
	c.workers = n
	return c
}

// Result sets the result graph, overriding the program's preference.
func (c *Computer) Result(r computer.ResultGraph) computer.GraphComputer {
	c.resultGraph = &r
	return c
}

// Persist sets what is kept in the result graph, overriding the program's
// preference.
func (c *Computer) Persist(p computer.Persist) computer.GraphComputer {
	c.persist = &p
	return c
}

// Vertices restricts the computation to the vertices passing f.
func (c *Computer) Vertices(f computer.Filter) error {
	return c.filter.SetVertexFilter(f)
}

// Edges restricts the computation to the edges passing f.
func (c *Computer) Edges(f computer.Filter) error {
	return c.filter.SetEdgeFilter(f)
}

// MaxIterations stops the program after n supersteps even if it has not
// terminated. Zero means no limit.
func (c *Computer) MaxIterations(n int) *Computer {
	c.maxIterations = n
	return c
}

// WithMetrics records the computation in m.
func (c *Computer) WithMetrics(m *Metrics) *Computer {
	c.metrics = m
	return c
}

// Features reports the capabilities of the local computer.
func (c *Computer) Features() computer.Features {
	return features{}
}

type features struct{}

func (features) MaxWorkers() int { return MaxWorkers }

// SupportsResultGraphPersistCombination rejects persisting edges into the
// original graph, which already has them.
func (features) SupportsResultGraphPersistCombination(r computer.ResultGraph, p computer.Persist) bool {
	return !(r == computer.Original && p == computer.Edges)
}

func (c *Computer) String() string {
	return fmt.Sprintf("localgraphcomputer[workers:%d]", c.workers)
}

// Submit runs the computation and blocks until it completes, fails or ctx
// is done. Configuration errors are returned before any work starts.
func (c *Computer) Submit(ctx context.Context) (*computer.Result, error) {
	c.mu.Lock()
	if c.submitted {
		c.mu.Unlock()
		return nil, errors.WithContext(computer.ErrAlreadySubmitted, "submitting local computer")
	}
	c.submitted = true
	c.mu.Unlock()

	if c.program == nil && len(c.mapReducers) == 0 {
		return nil, errors.WithContext(computer.ErrNoProgram, "submitting local computer")
	}
	mrs := c.mapReducers
	if c.program != nil {
		mrs = append(mrs, computer.MapReducersOf(c.program)...)
	}
	rg, p := c.resultState()
	if !c.Features().SupportsResultGraphPersistCombination(rg, p) {
		return nil, errors.WithContextf(computer.ErrResultPersistUnsupported, "result graph %v, persist %v", rg, p)
	}
	if c.workers > MaxWorkers {
		return nil, errors.WithContextf(computer.ErrTooManyWorkers, "requested %d workers, at most %d supported", c.workers, MaxWorkers)
	}
	if c.workers < 1 {
		return nil, errors.Errorf("worker count must be positive, got %d", c.workers)
	}

	ctx = log.With(ctx, "job", uuid.NewString())
	start := time.Now()
	mem := newMemory(c.program, mrs)
	mem.metrics = c.metrics
	g, err := c.execute(ctx, mem, mrs, rg, p)
	c.metrics.submitted(err, time.Since(start).Seconds())
	if err != nil {
		log.Errorf(ctx, "computation failed: %v", err)
		return nil, err
	}
	log.Infof(ctx, "computation finished after %d iterations in %v", mem.Iteration(), mem.Runtime())
	return &computer.Result{Graph: g, Memory: computer.Immutable(mem)}, nil
}

// resultState resolves the result graph and persist settings: explicit
// settings first, then the program's preferences, then the defaults.
func (c *Computer) resultState() (computer.ResultGraph, computer.Persist) {
	rg, p := computer.Original, computer.Nothing
	if c.program != nil {
		rg = computer.NewGraph
		if pr, ok := c.program.(computer.ResultGraphPreferrer); ok {
			rg = pr.PreferredResultGraph()
		}
		if pp, ok := c.program.(computer.PersistPreferrer); ok {
			p = pp.PreferredPersist()
		}
	}
	if c.resultGraph != nil {
		rg = *c.resultGraph
	}
	if c.persist != nil {
		p = *c.persist
	}
	return rg, p
}

// worker is the state one worker keeps across supersteps.
type worker struct {
	program  computer.VertexProgram
	memory   *workerMemory
	vertices []*structure.Vertex
}

func (c *Computer) execute(ctx context.Context, mem *memory, mrs []computer.MapReduce, rg computer.ResultGraph, p computer.Persist) (*structure.Graph, error) {
	start := time.Now()
	view := c.view()
	parts := partition(view.Vertices(), c.workers)
	log.Infof(ctx, "running %v over %s vertices and %s edges with %d workers",
		c.program, humanize.Comma(int64(view.VertexCount())), humanize.Comma(int64(view.EdgeCount())), c.workers)

	if c.program != nil {
		if err := c.runProgram(ctx, mem, parts); err != nil {
			return nil, err
		}
		c.dropTransient(view)
	}
	for _, mr := range mrs {
		if err := checkInterrupt(ctx); err != nil {
			return nil, err
		}
		if err := c.runMapReduce(ctx, mr, parts, mem); err != nil {
			return nil, errors.WithContextf(err, "running map reduce %v", mr.MemoryKey())
		}
	}
	mem.SetRuntime(time.Since(start))
	mem.complete()
	return c.processResult(view, rg, p), nil
}

func (c *Computer) runProgram(ctx context.Context, mem *memory, parts [][]*structure.Vertex) error {
	vp := c.program
	if err := callNoPanic(ctx, func(context.Context) error { return vp.Setup(mem) }); err != nil {
		return errors.WithContext(err, "program setup")
	}
	combiner, _ := computer.MessageCombinerOf(vp)
	board := newMessageBoard(combiner, c.metrics)
	workers := make([]*worker, len(parts))
	for i, vs := range parts {
		workers[i] = &worker{program: vp.Clone(), memory: newWorkerMemory(mem), vertices: vs}
	}
	for {
		if err := checkInterrupt(ctx); err != nil {
			return err
		}
		iteration := mem.Iteration()
		mem.completeSubRound()
		g, gctx := errgroup.WithContext(log.With(ctx, "iteration", iteration))
		for i, w := range workers {
			g.Go(func() error {
				return callNoPanic(log.With(gctx, "worker", i), w.superstep(board))
			})
		}
		if err := g.Wait(); err != nil {
			return errors.WithContextf(err, "superstep %d", iteration)
		}
		board.completeIteration()
		mem.completeSubRound()
		var done bool
		err := callNoPanic(ctx, func(context.Context) error {
			var err error
			done, err = vp.Terminate(mem)
			return err
		})
		if err != nil {
			return errors.WithContextf(err, "terminating superstep %d", iteration)
		}
		mem.IncrIteration()
		c.metrics.superstep()
		log.Debugf(ctx, "superstep %d complete, terminate=%v", iteration, done)
		if done {
			return nil
		}
		if c.maxIterations > 0 && mem.Iteration() >= c.maxIterations {
			log.Warnf(ctx, "stopping %v after %d iterations without termination", vp, c.maxIterations)
			return nil
		}
	}
}

// superstep executes the worker's program on each of its vertices and
// merges its partial memory into the master.
func (w *worker) superstep(board *messageBoard) func(context.Context) error {
	return func(ctx context.Context) error {
		vp := w.program
		if s, ok := vp.(computer.WorkerIterationStarter); ok {
			if err := s.WorkerIterationStart(computer.Immutable(w.memory)); err != nil {
				return errors.WithContext(err, "worker iteration start")
			}
		}
		scopes := vp.MessageScopes(w.memory)
		for _, v := range w.vertices {
			if err := checkInterrupt(ctx); err != nil {
				return err
			}
			msgr := &messenger{v: v, board: board, scopes: scopes}
			if err := vp.Execute(v, msgr, w.memory); err != nil {
				return errors.WithContextf(err, "executing on %v", v)
			}
		}
		board.metrics.executed(len(w.vertices))
		if e, ok := vp.(computer.WorkerIterationEnder); ok {
			if err := e.WorkerIterationEnd(w.memory); err != nil {
				return errors.WithContext(err, "worker iteration end")
			}
		}
		return w.memory.complete()
	}
}

// view copies the legal part of the graph. Programs write their compute
// keys to the copy, so the input graph is untouched until the result is
// processed. An edge is kept when it is legal from either endpoint.
func (c *Computer) view() *structure.Graph {
	if !c.filter.HasFilter() {
		return c.graph.Subgraph(nil, nil)
	}
	var keepEdge func(*structure.Edge) bool
	if c.filter.HasEdgeFilter() {
		legal := make(map[*structure.Edge]bool)
		for _, v := range c.graph.Vertices() {
			if !c.filter.LegalVertex(v) {
				continue
			}
			for _, e := range c.filter.LegalEdges(v) {
				legal[e] = true
			}
		}
		keepEdge = func(e *structure.Edge) bool { return legal[e] }
	}
	return c.graph.Subgraph(c.filter.LegalVertex, keepEdge)
}

func (c *Computer) dropTransient(view *structure.Graph) {
	for _, k := range computer.VertexComputeKeysOf(c.program) {
		if !k.Transient {
			continue
		}
		for _, v := range view.Vertices() {
			v.RemoveProperty(k.Key)
		}
	}
}

// processResult builds the result graph for the requested result graph and
// persist settings.
func (c *Computer) processResult(view *structure.Graph, rg computer.ResultGraph, p computer.Persist) *structure.Graph {
	switch p {
	case computer.VertexProperties:
		if rg == computer.Original {
			c.copyComputeKeys(view)
			return c.graph
		}
		return view.Subgraph(nil, func(*structure.Edge) bool { return false })
	case computer.Edges:
		return view
	}
	if rg == computer.Original {
		return c.graph
	}
	return structure.NewGraph()
}

// copyComputeKeys writes the persistent vertex compute keys of the view
// back to the input graph.
func (c *Computer) copyComputeKeys(view *structure.Graph) {
	if c.program == nil {
		return
	}
	keys := computer.VertexComputeKeysOf(c.program)
	for _, v := range view.Vertices() {
		orig, ok := c.graph.Vertex(v.ID())
		if !ok {
			continue
		}
		for _, k := range keys {
			if val, ok := v.Property(k.Key); ok && !k.Transient {
				orig.SetProperty(k.Key, val)
			}
		}
	}
}
