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

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// Stage is a phase of a MapReduce job.
type Stage int

const (
	// MapStage runs once per vertex.
	MapStage Stage = iota
	// CombineStage reduces map output locally on each worker.
	CombineStage
	// ReduceStage reduces all values for a key.
	ReduceStage
)

func (s Stage) String() string {
	switch s {
	case MapStage:
		return "map"
	case CombineStage:
		return "combine"
	case ReduceStage:
		return "reduce"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// KeyValue is one emitted pair.
type KeyValue struct {
	Key, Value any
}

func (kv KeyValue) String() string {
	return fmt.Sprintf("%v=%v", kv.Key, kv.Value)
}

// Emitter receives the pairs produced by a stage.
type Emitter func(key, value any)

// MapReduce is a post-processing job over the vertices of a computation. The
// map stage is required; CombineStage and ReduceStage run when DoStage
// reports them and the job implements Combiner or Reducer respectively.
//
// Jobs may also implement MapKeySorter, ReduceKeySorter and StageWorker.
type MapReduce interface {
	// MemoryKey is the memory key the final result is stored under.
	MemoryKey() string
	// DoStage reports whether the job runs stage s.
	DoStage(s Stage) bool
	// Map emits pairs for one vertex.
	Map(v *structure.Vertex, emit Emitter) error
	// GenerateFinalResult folds the last stage's output into the value
	// stored in memory.
	GenerateFinalResult(kvs []KeyValue) (any, error)
	// Clone returns an independent copy for another worker.
	Clone() MapReduce
}

// Combiner is the combine stage of a MapReduce.
type Combiner interface {
	Combine(key any, values []any, emit Emitter) error
}

// Reducer is the reduce stage of a MapReduce.
type Reducer interface {
	Reduce(key any, values []any, emit Emitter) error
}

// MapKeySorter orders the keys of map output. MapKeySort returns a negative
// number when a sorts first.
type MapKeySorter interface {
	MapKeySort(a, b any) int
}

// ReduceKeySorter orders the keys of reduce output.
type ReduceKeySorter interface {
	ReduceKeySort(a, b any) int
}

// StageWorker is notified when a worker starts and finishes a stage.
type StageWorker interface {
	WorkerStart(s Stage) error
	WorkerEnd(s Stage) error
}

// AddResultToMemory generates the final result of mr from kvs and stores it
// in m under the job's memory key.
func AddResultToMemory(mr MapReduce, m Memory, kvs []KeyValue) error {
	res, err := mr.GenerateFinalResult(kvs)
	if err != nil {
		return errors.WithContextf(err, "generating final result of %v", mr.MemoryKey())
	}
	if err := m.Set(mr.MemoryKey(), res); err != nil {
		return errors.WithContextf(err, "storing final result of %v", mr.MemoryKey())
	}
	return nil
}
