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

package step

import (
	"io"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/path"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/traverser"
)

// Empty is the step before the first and after the last step of a
// traversal. It emits nothing and ignores everything, and its id routes
// traversers to traverser.Halt.
var Empty Step = emptyStep{}

type emptyStep struct{}

func (emptyStep) AddStart(*traverser.Traverser) {}

func (emptyStep) AddStarts(...*traverser.Traverser) {}

func (emptyStep) HasStarts() (bool, error) { return false, nil }

func (emptyStep) HasNext() (bool, error) { return false, nil }

func (emptyStep) Next() (*traverser.Traverser, error) { return nil, io.EOF }

func (emptyStep) Reset() {}

func (emptyStep) ID() string { return traverser.Halt }

func (emptyStep) SetID(string) {}

func (emptyStep) Labels() path.Labels { return nil }

func (emptyStep) AddLabel(string) {}

func (emptyStep) RemoveLabel(string) {}

func (emptyStep) Previous() Step { return Empty }

func (emptyStep) SetPrevious(Step) {}

func (emptyStep) NextStep() Step { return Empty }

func (emptyStep) SetNextStep(Step) {}

func (emptyStep) Traversal() *Traversal { return nil }

func (emptyStep) SetTraversal(*Traversal) {}

func (emptyStep) Clone() Step { return Empty }

func (emptyStep) String() string { return "EmptyStep" }
