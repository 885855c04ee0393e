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
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/values"
	"github.com/tinkercat/gremlin-kore/pkg/kore/log"
)

// group is the values emitted for one key.
type group struct {
	key    any
	values []any
}

// runMapReduce runs mr over the partitioned vertices, one clone per
// partition, and stores the final result in mem under the job's memory key.
func (c *Computer) runMapReduce(ctx context.Context, mr computer.MapReduce, parts [][]*structure.Vertex, mem *memory) error {
	ctx = log.With(ctx, "mapReduce", mr.MemoryKey())
	clones := make([]computer.MapReduce, len(parts))
	for i := range clones {
		clones[i] = mr.Clone()
	}
	_, combine := mr.(computer.Combiner)
	combine = combine && mr.DoStage(computer.CombineStage)
	_, reduce := mr.(computer.Reducer)
	reduce = reduce && mr.DoStage(computer.ReduceStage)

	outputs := make([][]computer.KeyValue, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, vs := range parts {
		g.Go(func() error {
			return callNoPanic(gctx, func(ctx context.Context) error {
				w := clones[i]
				if err := stageStart(w, computer.MapStage); err != nil {
					return err
				}
				emit := func(k, v any) { outputs[i] = append(outputs[i], computer.KeyValue{Key: k, Value: v}) }
				for _, v := range vs {
					if err := checkInterrupt(ctx); err != nil {
						return err
					}
					if err := w.Map(v, emit); err != nil {
						return errors.WithContextf(err, "mapping %v", v)
					}
				}
				if err := stageEnd(w, computer.MapStage); err != nil {
					return err
				}
				if !combine {
					return nil
				}
				wc := w.(computer.Combiner)
				if err := stageStart(w, computer.CombineStage); err != nil {
					return err
				}
				var combined []computer.KeyValue
				emit = func(k, v any) { combined = append(combined, computer.KeyValue{Key: k, Value: v}) }
				for _, grp := range groupByKey(outputs[i]) {
					if err := wc.Combine(grp.key, grp.values, emit); err != nil {
						return errors.WithContextf(err, "combining key %v", grp.key)
					}
				}
				outputs[i] = combined
				return stageEnd(w, computer.CombineStage)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return errors.WithContext(err, "map stage")
	}
	kvs := slices.Concat(outputs...)
	c.metrics.emitted(computer.MapStage.String(), len(kvs))
	log.Debugf(ctx, "map stage emitted %d pairs (combine %v)", len(kvs), combine)

	if sorter, ok := mr.(computer.MapKeySorter); ok {
		slices.SortStableFunc(kvs, func(a, b computer.KeyValue) int { return sorter.MapKeySort(a.Key, b.Key) })
	}
	if reduce {
		groups := groupByKey(kvs)
		reduced := make([][]computer.KeyValue, len(clones))
		g, gctx := errgroup.WithContext(ctx)
		for i, batch := range partitionGroups(groups, len(clones)) {
			g.Go(func() error {
				return callNoPanic(gctx, func(ctx context.Context) error {
					w := clones[i]
					wr := w.(computer.Reducer)
					if err := stageStart(w, computer.ReduceStage); err != nil {
						return err
					}
					emit := func(k, v any) { reduced[i] = append(reduced[i], computer.KeyValue{Key: k, Value: v}) }
					for _, grp := range batch {
						if err := checkInterrupt(ctx); err != nil {
							return err
						}
						if err := wr.Reduce(grp.key, grp.values, emit); err != nil {
							return errors.WithContextf(err, "reducing key %v", grp.key)
						}
					}
					return stageEnd(w, computer.ReduceStage)
				})
			})
		}
		if err := g.Wait(); err != nil {
			return errors.WithContext(err, "reduce stage")
		}
		kvs = slices.Concat(reduced...)
		c.metrics.emitted(computer.ReduceStage.String(), len(kvs))
		if sorter, ok := mr.(computer.ReduceKeySorter); ok {
			slices.SortStableFunc(kvs, func(a, b computer.KeyValue) int { return sorter.ReduceKeySort(a.Key, b.Key) })
		}
	}
	return computer.AddResultToMemory(mr, mem, kvs)
}

// groupByKey groups pairs by equal keys in first-seen order.
func groupByKey(kvs []computer.KeyValue) []*group {
	var (
		groups []*group
		index  values.Index
	)
	for _, kv := range kvs {
		id, added := index.Insert(kv.Key)
		if added {
			groups = append(groups, &group{key: kv.Key})
		}
		groups[id].values = append(groups[id].values, kv.Value)
	}
	return groups
}

// partitionGroups deals groups round robin over n batches.
func partitionGroups(groups []*group, n int) [][]*group {
	out := make([][]*group, n)
	for i, grp := range groups {
		out[i%n] = append(out[i%n], grp)
	}
	return out
}

func stageStart(mr computer.MapReduce, s computer.Stage) error {
	if w, ok := mr.(computer.StageWorker); ok {
		return errors.WithContextf(w.WorkerStart(s), "starting %v stage", s)
	}
	return nil
}

func stageEnd(mr computer.MapReduce, s computer.Stage) error {
	if w, ok := mr.(computer.StageWorker); ok {
		return errors.WithContextf(w.WorkerEnd(s), "ending %v stage", s)
	}
	return nil
}
