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

// Empty is the path of traversers that do not track history. Extending it
// has no effect.
var Empty Path = emptyPath{}

type emptyPath struct{}

func (emptyPath) Size() int { return 0 }

func (emptyPath) IsEmpty() bool { return true }

func (emptyPath) Head() any { return nil }

func (e emptyPath) Extend(any, ...string) Path { return e }

func (e emptyPath) ExtendLabels(...string) Path { return e }

func (e emptyPath) Retract(...string) Path { return e }

func (emptyPath) At(int) any { panic("path: index out of range") }

func (emptyPath) HasLabel(string) bool { return false }

func (emptyPath) Objects() []any { return []any{} }

func (emptyPath) Labels() []Labels { return []Labels{} }

func (emptyPath) IsSimple() bool { return true }

func (e emptyPath) Clone() Path { return e }

func (emptyPath) String() string { return "path[]" }

func (emptyPath) Get(pop Pop, label string) (any, error) {
	return resolve(pop, label, nil)
}
