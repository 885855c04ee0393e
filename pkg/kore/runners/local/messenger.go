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

package local

import (
	"sync"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/operator"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// mailbox holds the messages of one scope, keyed by vertex id. Global
// messages are stored at the receiver, local messages at the sender.
type mailbox map[any][]any

// messageBoard holds the messages sent in the current superstep and those
// delivered from the previous one.
type messageBoard struct {
	mu       sync.Mutex
	send     map[string]mailbox
	receive  map[string]mailbox
	combiner operator.Reducer
	metrics  *Metrics
}

func newMessageBoard(combiner operator.Reducer, metrics *Metrics) *messageBoard {
	return &messageBoard{
		send:     make(map[string]mailbox),
		receive:  make(map[string]mailbox),
		combiner: combiner,
		metrics:  metrics,
	}
}

// post stores msg under scope for vertex id, folding it into the queued
// message when a combiner is set.
func (b *messageBoard) post(scope string, id any, msg any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	box, ok := b.send[scope]
	if !ok {
		box = make(mailbox)
		b.send[scope] = box
	}
	q := box[id]
	if b.combiner != nil && len(q) > 0 {
		q[0] = b.combiner.Apply(q[0], msg)
		return
	}
	box[id] = append(q, msg)
}

// delivered returns the messages of the previous superstep for vertex id.
func (b *messageBoard) delivered(scope string, id any) []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.receive[scope][id]
}

// completeIteration makes the messages sent in this superstep the ones
// received in the next.
func (b *messageBoard) completeIteration() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receive = b.send
	b.send = make(map[string]mailbox)
}

// messenger is the Messenger of one vertex in one superstep.
type messenger struct {
	v      *structure.Vertex
	board  *messageBoard
	scopes []computer.MessageScope
}

// ReceiveMessages gathers the messages for the vertex through each of the
// program's scopes. Local scopes walk the reversed incident program from
// the receiver and read the mailbox of the vertex at the other end of each
// edge, applying the edge function.
func (m *messenger) ReceiveMessages() []any {
	var out []any
	seen := make(map[string]bool, len(m.scopes))
	for _, scope := range m.scopes {
		key := scope.ScopeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		switch s := scope.(type) {
		case computer.LocalScope:
			r := s.Reverse()
			for _, el := range r.Incident.Apply(m.v) {
				e, ok := el.(*structure.Edge)
				if !ok {
					continue
				}
				for _, msg := range m.board.delivered(key, e.Other(m.v).ID()) {
					out = append(out, s.ApplyEdge(msg, e))
				}
			}
		case computer.GlobalScope:
			out = append(out, m.board.delivered(key, m.v.ID())...)
		}
	}
	return out
}

// SendMessage posts msg. A local message is stored once at the sender
// regardless of how many vertices will read it.
func (m *messenger) SendMessage(scope computer.MessageScope, msg any) error {
	if msg == nil {
		return errors.Errorf("sending nil message from %v", m.v)
	}
	switch s := scope.(type) {
	case computer.LocalScope:
		m.board.post(s.ScopeKey(), m.v.ID(), msg)
		m.board.metrics.sent("local")
	case computer.GlobalScope:
		for _, id := range s.IDs {
			m.board.post(s.ScopeKey(), id, msg)
			m.board.metrics.sent("global")
		}
	default:
		return errors.Errorf("unsupported message scope %T", scope)
	}
	return nil
}
