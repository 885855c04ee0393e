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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
)

func vertexIDs(xs []any) []any {
	var out []any
	for _, x := range xs {
		out = append(out, x.(*structure.Vertex).ID())
	}
	return out
}

func TestFilterApply(t *testing.T) {
	g := testGraph(t)
	one, _ := g.Vertex(1)
	four, _ := g.Vertex(4)
	tests := []struct {
		name   string
		filter Filter
		start  *structure.Vertex
		want   []any
	}{
		{"out", Filter{Out()}, one, []any{2, 4, 3}},
		{"out knows", Filter{Out("knows")}, one, []any{2, 4}},
		{"in", Filter{In()}, four, []any{1}},
		{"edge heads", Filter{OutE("created"), InV()}, one, []any{3}},
		{"both ends", Filter{OutE("created"), BothV()}, four, []any{4, 3}},
		{"limit", Filter{Out(), Limit(2)}, one, []any{2, 4}},
		{"range", Filter{Out(), RangeStep{Low: 1, High: -1}}, one, []any{4, 3}},
		{"has", Filter{Out(), Has("age", 24)}, one, []any{4}},
		{"union", Filter{Union(Filter{Out("created")}, Filter{Out("knows"), Limit(1)})}, one, []any{3, 2}},
		{"identity", Filter{IdentityStep{}}, one, []any{1}},
		{"other", Filter{Out(), OtherStep{Name: "odd", Keep: func(x any) bool { return x.(*structure.Vertex).ID().(int)%2 == 1 }}}, one, []any{3}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.want, vertexIDs(test.filter.Apply(test.start))); diff != "" {
				t.Errorf("%v.Apply(%v) (-want +got):\n%s", test.filter, test.start, diff)
			}
		})
	}
}

func TestFilterValues(t *testing.T) {
	g := testGraph(t)
	one, _ := g.Vertex(1)
	got := Filter{OutE("knows"), Values("weight")}.Apply(one)
	if diff := cmp.Diff([]any{0.5, 1.0}, got); diff != "" {
		t.Errorf("weights (-want +got):\n%s", diff)
	}
	if (Filter{Has("missing", nil)}).Test(one) {
		t.Error("has(missing) passed")
	}
}

func TestFilterReverse(t *testing.T) {
	f := Filter{OutE("knows"), InV(), Union(Filter{In()}, Filter{BothE()})}
	want := "inE(knows).outV().union(out(),bothE())"
	if got := f.Reverse().String(); got != want {
		t.Errorf("Reverse() = %q, want %q", got, want)
	}
	if got := f.String(); got != "outE(knows).inV().union(in(),bothE())" {
		t.Errorf("Reverse modified the receiver: %q", got)
	}
	if got := (Filter{OutE(), Has("weight", 1)}).Direction(); got != structure.Out {
		t.Errorf("Direction() = %v, want OUT", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []string{
		"bothE(knows).limit(0)",
		"outE(created)",
		"union(outE(created),inE(knows).has(weight,0.5))",
		"out().has(~id,2).values(name,age)",
		"outE().inV().range(1,3)",
		"identity()",
	}
	for _, s := range tests {
		f, err := ParseFilter(s)
		if err != nil {
			t.Errorf("ParseFilter(%q) = %v", s, err)
			continue
		}
		if got := f.String(); got != s {
			t.Errorf("ParseFilter(%q).String() = %q", s, got)
		}
	}

	f, err := ParseFilter("has(weight,1)")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Filter{Has("weight", int64(1))}, f); diff != "" {
		t.Errorf("parsed has (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"outE", "nope()", "limit(x)", "has()", "range(1)"} {
		if _, err := ParseFilter(bad); err == nil {
			t.Errorf("ParseFilter(%q) succeeded, want error", bad)
		}
	}
}

func TestParseFilterErrorChain(t *testing.T) {
	_, err := ParseFilter("outE().nope()")
	if err == nil {
		t.Fatal("ParseFilter(outE().nope()) succeeded, want error")
	}
	msg := err.Error()
	for _, want := range []string{`computer: parsing filter "outE().nope()"`, "caused by:", `unknown step "nope"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not contain %q", msg, want)
		}
	}
}
