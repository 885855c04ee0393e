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
	"reflect"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
)

// VertexProgram is the per-vertex logic of a bulk synchronous computation.
// A computer calls Setup once, then for each superstep calls Execute on every
// vertex followed by Terminate, until Terminate returns true.
//
// A program may also implement any of WorkerIterationStarter,
// WorkerIterationEnder, VertexComputeKeyer, MessageCombinerProvider,
// MapReducerProvider, ResultGraphPreferrer and PersistPreferrer. Computers
// discover these with type assertions.
type VertexProgram interface {
	// Setup initializes memory before the first superstep. Only Set is
	// legal.
	Setup(m Memory) error
	// Execute runs the program on one vertex. Only Add is legal.
	Execute(v *structure.Vertex, msgr Messenger, m Memory) error
	// Terminate decides whether the computation is done. Only Set is legal.
	Terminate(m Memory) (bool, error)
	// MemoryComputeKeys declares the memory keys the program uses.
	MemoryComputeKeys() []MemoryComputeKey
	// MessageScopes returns the scopes messages are received from in the
	// current superstep.
	MessageScopes(m Memory) []MessageScope
	// Clone returns an independent copy for another worker.
	Clone() VertexProgram
}

// WorkerIterationStarter is called by each worker before it executes its
// vertices in a superstep.
type WorkerIterationStarter interface {
	WorkerIterationStart(m Memory) error
}

// WorkerIterationEnder is called by each worker after it executes its
// vertices in a superstep.
type WorkerIterationEnder interface {
	WorkerIterationEnd(m Memory) error
}

// VertexComputeKeyer declares the vertex properties a program writes.
type VertexComputeKeyer interface {
	VertexComputeKeys() []VertexComputeKey
}

// MessageCombinerProvider supplies a reducer that merges messages bound for
// the same vertex before delivery.
type MessageCombinerProvider interface {
	MessageCombiner() operator.Reducer
}

// MapReducerProvider supplies MapReduce jobs to run after the program.
type MapReducerProvider interface {
	MapReducers() []MapReduce
}

// ResultGraphPreferrer names the result graph a program wants when the
// computer is not told otherwise.
type ResultGraphPreferrer interface {
	PreferredResultGraph() ResultGraph
}

// PersistPreferrer names the persistence a program wants when the computer is
// not told otherwise.
type PersistPreferrer interface {
	PreferredPersist() Persist
}

// VertexComputeKeysOf returns the vertex compute keys of vp, if any.
func VertexComputeKeysOf(vp VertexProgram) []VertexComputeKey {
	if k, ok := vp.(VertexComputeKeyer); ok {
		return k.VertexComputeKeys()
	}
	return nil
}

// MessageCombinerOf returns the message combiner of vp, if any.
func MessageCombinerOf(vp VertexProgram) (operator.Reducer, bool) {
	if p, ok := vp.(MessageCombinerProvider); ok {
		if c := p.MessageCombiner(); c != nil {
			return c, true
		}
	}
	return nil, false
}

// MapReducersOf returns the MapReduce jobs of vp, if any.
func MapReducersOf(vp VertexProgram) []MapReduce {
	if p, ok := vp.(MapReducerProvider); ok {
		return p.MapReducers()
	}
	return nil
}

// VertexComputeKey is a vertex property written by a program. Transient keys
// are removed from the result graph.
type VertexComputeKey struct {
	Key       string
	Transient bool
}

// Messenger sends and receives messages for the vertex being executed.
type Messenger interface {
	// ReceiveMessages returns the messages sent to the vertex in the
	// previous superstep through the program's current message scopes.
	ReceiveMessages() []any
	// SendMessage sends msg to the vertices selected by scope.
	SendMessage(scope MessageScope, msg any) error
}

// MessageScope selects the recipients of a message. It is either a
// GlobalScope or a LocalScope.
type MessageScope interface {
	// ScopeKey identifies the scope. Messages sent through scopes with the
	// same key share a mailbox.
	ScopeKey() string
	isMessageScope()
}

// GlobalScope sends to arbitrary vertices by id.
type GlobalScope struct {
	IDs []any
}

// Global returns a scope addressing the vertices with the given ids.
func Global(ids ...any) GlobalScope {
	return GlobalScope{IDs: ids}
}

// ScopeKey returns "global".
func (GlobalScope) ScopeKey() string { return "global" }

func (GlobalScope) isMessageScope() {}

func (s GlobalScope) String() string {
	return fmt.Sprintf("global%v", s.IDs)
}

// EdgeFunction transforms a message as it crosses an edge.
type EdgeFunction func(msg any, e *structure.Edge) any

// LocalScope sends to the vertices reachable over the incident edges chosen
// by a filter program, such as OutE("knows"). Computers deliver local
// messages by walking the reversed program from the receiver, so the sender
// stores a single message however many recipients it has.
type LocalScope struct {
	Incident Filter
	Edge     EdgeFunction
}

// Local returns a scope over the edges selected by incident. Messages cross
// edges unchanged.
func Local(incident ...FilterStep) LocalScope {
	return LocalScope{Incident: Filter(incident)}
}

// WithEdgeFunction returns a copy of s that transforms messages with fn.
func (s LocalScope) WithEdgeFunction(fn EdgeFunction) LocalScope {
	s.Edge = fn
	return s
}

// ScopeKey identifies the scope by its incident program and edge function.
func (s LocalScope) ScopeKey() string {
	if s.Edge == nil {
		return "local:" + s.Incident.String()
	}
	return fmt.Sprintf("local:%v:%x", s.Incident, reflect.ValueOf(s.Edge).Pointer())
}

func (LocalScope) isMessageScope() {}

// Reverse returns the scope seen from a receiving vertex: the incident
// program with every direction flipped.
func (s LocalScope) Reverse() LocalScope {
	return LocalScope{Incident: s.Incident.Reverse(), Edge: s.Edge}
}

// ApplyEdge transforms msg for edge e.
func (s LocalScope) ApplyEdge(msg any, e *structure.Edge) any {
	if s.Edge == nil {
		return msg
	}
	return s.Edge(msg, e)
}

func (s LocalScope) String() string {
	return "local[" + s.Incident.String() + "]"
}
