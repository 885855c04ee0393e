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

package clustering

import (
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
)

// Memory keys of the MapReduce jobs.
const (
	ClusterCountKey      = "clusterCount"
	ClusterPopulationKey = "clusterPopulation"
)

// ClusterCount counts the distinct components written by
// ConnectedComponent. Its result is an int64.
type ClusterCount struct{}

func (ClusterCount) MemoryKey() string { return ClusterCountKey }

func (ClusterCount) DoStage(computer.Stage) bool { return true }

func (ClusterCount) Map(v *structure.Vertex, emit computer.Emitter) error {
	if c, ok := v.Property(ComponentKey); ok {
		emit(c, int64(1))
	}
	return nil
}

// Combine collapses the vertices of a component seen by one worker.
func (ClusterCount) Combine(key any, values []any, emit computer.Emitter) error {
	emit(key, total(values))
	return nil
}

func (ClusterCount) Reduce(key any, values []any, emit computer.Emitter) error {
	emit(key, total(values))
	return nil
}

func (ClusterCount) GenerateFinalResult(kvs []computer.KeyValue) (any, error) {
	return int64(len(kvs)), nil
}

func (ClusterCount) Clone() computer.MapReduce { return ClusterCount{} }

// ClusterPopulation maps each component id to its number of vertices. Its
// result is a map[any]int64.
type ClusterPopulation struct{}

func (ClusterPopulation) MemoryKey() string { return ClusterPopulationKey }

func (ClusterPopulation) DoStage(computer.Stage) bool { return true }

func (ClusterPopulation) Map(v *structure.Vertex, emit computer.Emitter) error {
	return ClusterCount{}.Map(v, emit)
}

func (ClusterPopulation) Combine(key any, values []any, emit computer.Emitter) error {
	emit(key, total(values))
	return nil
}

func (ClusterPopulation) Reduce(key any, values []any, emit computer.Emitter) error {
	emit(key, total(values))
	return nil
}

func (ClusterPopulation) ReduceKeySort(a, b any) int { return compareIDs(a, b) }

func (ClusterPopulation) GenerateFinalResult(kvs []computer.KeyValue) (any, error) {
	out := make(map[any]int64, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value.(int64)
	}
	return out, nil
}

func (ClusterPopulation) Clone() computer.MapReduce { return ClusterPopulation{} }

func total(values []any) int64 {
	var n int64
	for _, v := range values {
		n += v.(int64)
	}
	return n
}
