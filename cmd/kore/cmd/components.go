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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/programs/clustering"
	"github.com/tinkercat/gremlin-kore/pkg/kore/runners/local"
)

var (
	componentsCmd = &cobra.Command{
		Use:   "components EDGES...",
		Short: "Find the connected components of a graph given as edges",
		Long: `Components builds a graph from edges written as OUT-IN pairs, such as
1-2 or alice-bob, and labels every vertex with the smallest vertex id in its
connected component. A single id adds an isolated vertex.`,
		RunE: componentsFn,
		Args: cobra.MinimumNArgs(1),
	}

	configPath        string
	componentsWorkers int
)

func init() {
	componentsCmd.Flags().StringVar(&configPath, "config", "", "Runner configuration YAML file")
	componentsCmd.Flags().IntVarP(&componentsWorkers, "workers", "w", 0, "Graph computer workers; overrides the configuration")
}

func componentsFn(cmd *cobra.Command, args []string) error {
	g, err := parseEdges(args)
	if err != nil {
		return err
	}
	gc := local.New(g)
	if configPath != "" {
		cfg, err := local.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Apply(gc); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("workers") {
		gc.Workers(componentsWorkers)
	}
	res, err := gc.Program(clustering.NewConnectedComponent()).
		MapReduce(clustering.ClusterCount{}).
		MapReduce(clustering.ClusterPopulation{}).
		Submit(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, v := range res.Graph.Vertices() {
		c, _ := v.Property(clustering.ComponentKey)
		fmt.Fprintf(out, "%v\t%v\n", v.ID(), c)
	}
	count, err := res.Memory.Get(clustering.ClusterCountKey)
	if err != nil {
		return err
	}
	population, err := res.Memory.Get(clustering.ClusterPopulationKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s components over %s vertices after %d iterations\n",
		humanize.Comma(count.(int64)), humanize.Comma(int64(g.VertexCount())), res.Memory.Iteration())
	fmt.Fprintf(out, "population: %v\n", population)
	return nil
}

// parseEdges builds a graph from OUT-IN pairs and single ids. Ids that
// parse as integers become int64.
func parseEdges(args []string) (*structure.Graph, error) {
	g := structure.NewGraph()
	vertex := func(s string) (*structure.Vertex, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, errors.New("empty vertex id")
		}
		var id any = s
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			id = i
		}
		if v, ok := g.Vertex(id); ok {
			return v, nil
		}
		return g.AddVertex(id, "vertex")
	}
	for _, a := range args {
		out, in, isEdge := strings.Cut(a, "-")
		ov, err := vertex(out)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", a, err)
		}
		if !isEdge {
			continue
		}
		iv, err := vertex(in)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", a, err)
		}
		if _, err := g.AddEdge("edge", ov, iv); err != nil {
			return nil, err
		}
	}
	return g, nil
}
