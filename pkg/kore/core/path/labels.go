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

package path

import "slices"

// Labels is an insertion ordered set of step labels.
type Labels []string

// NewLabels returns the distinct labels of ls in first occurrence order.
func NewLabels(ls ...string) Labels {
	out := make(Labels, 0, len(ls))
	for _, l := range ls {
		if !out.Contains(l) {
			out = append(out, l)
		}
	}
	return out
}

// Contains reports whether l is in the set.
func (ls Labels) Contains(l string) bool {
	return slices.Contains(ls, l)
}

// ContainsAll reports whether every element of other is in the set.
func (ls Labels) ContainsAll(other []string) bool {
	for _, o := range other {
		if !ls.Contains(o) {
			return false
		}
	}
	return true
}

// Union returns a new set holding ls followed by the new members of other.
func (ls Labels) Union(other []string) Labels {
	out := make(Labels, len(ls), len(ls)+len(other))
	copy(out, ls)
	for _, o := range other {
		if !out.Contains(o) {
			out = append(out, o)
		}
	}
	return out
}

// Minus returns a new set holding the members of ls not in other.
func (ls Labels) Minus(other []string) Labels {
	out := make(Labels, 0, len(ls))
	for _, l := range ls {
		if !slices.Contains(other, l) {
			out = append(out, l)
		}
	}
	return out
}

// Equal compares as sets.
func (ls Labels) Equal(other Labels) bool {
	return len(ls) == len(other) && ls.ContainsAll(other)
}

// Clone returns an independent copy.
func (ls Labels) Clone() Labels {
	return slices.Clone(ls)
}
