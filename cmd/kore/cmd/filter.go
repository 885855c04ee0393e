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
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
)

var (
	filterCmd = &cobra.Command{
		Use:   "filter",
		Short: "Print which edges a graph filter can load",
		Long: `Filter validates a vertex and an edge filter and prints, per direction,
whether edges are certainly loaded (YES), certainly skipped (NO) or depend
on the vertex (MAYBE), with the labels that may be loaded.

  kore filter --edges "bothE(knows).limit(0)" --label knows --label created`,
		RunE: filterFn,
		Args: cobra.NoArgs,
	}

	vertexFilter string
	edgeFilter   string
	labels       []string
)

func init() {
	filterCmd.Flags().StringVar(&vertexFilter, "vertices", "", "Vertex filter, such as has(~label,person)")
	filterCmd.Flags().StringVar(&edgeFilter, "edges", "", "Edge filter, such as outE(knows).has(weight,1)")
	filterCmd.Flags().StringSliceVar(&labels, "label", nil, "Edge labels to check")
}

func filterFn(cmd *cobra.Command, _ []string) error {
	var gf computer.GraphFilter
	if vertexFilter != "" {
		f, err := computer.ParseFilter(vertexFilter)
		if err != nil {
			return err
		}
		if err := gf.SetVertexFilter(f); err != nil {
			return err
		}
	}
	if edgeFilter != "" {
		f, err := computer.ParseFilter(edgeFilter)
		if err != nil {
			return err
		}
		if err := gf.SetEdgeFilter(f); err != nil {
			return err
		}
	}
	if !gf.HasFilter() {
		return errors.New("no filter given: set --vertices or --edges")
	}
	printLegality(cmd, &gf, labels)
	return nil
}

func printLegality(cmd *cobra.Command, gf *computer.GraphFilter, labels []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, gf)
	fmt.Fprintf(out, "%-10s%-10s%-20s", "DIRECTION", "LEGAL", "LABELS")
	for _, l := range labels {
		fmt.Fprintf(out, "%-10s", l)
	}
	fmt.Fprintln(out)
	for _, d := range []structure.Direction{structure.Out, structure.In, structure.Both} {
		positive := gf.LegallyPositiveEdgeLabels(d)
		shown := make([]string, len(positive))
		for i, l := range positive {
			if l == computer.AnyLabel {
				l = "*"
			}
			shown[i] = l
		}
		fmt.Fprintf(out, "%-10v%-10v%-20s", d, gf.CheckEdgeLegality(d), "["+strings.Join(shown, ",")+"]")
		for _, l := range labels {
			fmt.Fprintf(out, "%-10v", gf.CheckEdgeLabelLegality(d, l))
		}
		fmt.Fprintln(out)
	}
}
