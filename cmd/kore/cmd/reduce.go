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

package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/programs/barrier"
	"github.com/tinkercat/gremlin-kore/pkg/kore/runners/local"
	"github.com/tinkercat/gremlin-kore/pkg/kore/steps"
)

var (
	reduceCmd = &cobra.Command{
		Use:   "reduce VALUES...",
		Short: "Reduce values in one process and on the graph computer, and print both",
		Long: `Reduce folds the given numbers with a reducing barrier twice: once by
pulling them through a single traversal and once as a vertex program where
every worker folds its share and the partial results merge through memory.`,
		RunE: reduceFn,
		Args: cobra.MinimumNArgs(1),
	}

	reduceOp      string
	reduceWorkers int
)

func init() {
	reduceCmd.Flags().StringVar(&reduceOp, "op", "sum", "Reduction: sum, count, min, max or fold")
	reduceCmd.Flags().IntVarP(&reduceWorkers, "workers", "w", 4, "Graph computer workers")
}

func reduceFn(cmd *cobra.Command, args []string) error {
	vs, err := parseValues(args)
	if err != nil {
		return err
	}
	r, ok := steps.NewReduce(reduceOp)
	if !ok {
		return fmt.Errorf("unknown reduction %q", reduceOp)
	}
	t := step.NewTraversal(steps.NewIdentity(), r)

	oltp := t.Clone().Inject(vs...)
	single, err := oltp.ToList()
	if err != nil {
		return fmt.Errorf("reducing in one process: %w", err)
	}

	g := structure.NewGraph()
	for i, v := range vs {
		if _, err := g.AddVertex(i, "value", "value", v); err != nil {
			return err
		}
	}
	p, err := barrier.New(t, barrier.Property("value"))
	if err != nil {
		return err
	}
	res, err := local.New(g).Program(p).Workers(reduceWorkers).Submit(cmd.Context())
	if err != nil {
		return fmt.Errorf("reducing on the graph computer: %w", err)
	}
	computed, err := barrier.Results(res.Memory)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "oltp: %v\n", single)
	fmt.Fprintf(cmd.OutOrStdout(), "olap: %v (%s values, %d workers, %v)\n", computed, humanize.Comma(int64(len(vs))), reduceWorkers, res.Memory.Runtime())
	return nil
}

// parseValues parses integers as int64 and anything else as float64.
func parseValues(args []string) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, a := range args {
		if i, err := strconv.ParseInt(a, 10, 64); err == nil {
			out = append(out, i)
			continue
		}
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", a)
		}
		out = append(out, f)
	}
	return out, nil
}
