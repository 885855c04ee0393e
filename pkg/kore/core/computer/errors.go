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

import "github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"

// Configuration and memory lifecycle errors. They are returned wrapped with
// the offending key or setting, so match them with errors.Is.
var (
	ErrMemorySetOutsideSetup      = errors.New("memory can only be set() during vertex program setup and terminate")
	ErrMemoryAddOutsideExecute    = errors.New("memory can only be add() during vertex program execute")
	ErrNotMemoryComputeKey        = errors.New("the provided key is not a memory compute key")
	ErrMemoryDoesNotExist         = errors.New("the memory does not have a value for the provided key")
	ErrMemoryImmutable            = errors.New("memory is currently immutable")
	ErrInvalidMemoryKey           = errors.New("memory key can not be the empty string")
	ErrInvalidMemoryValue         = errors.New("memory value can not be nil")
	ErrAlreadySubmitted           = errors.New("this computer has already been submitted")
	ErrNoProgram                  = errors.New("the computer has no vertex program or map reducers to execute")
	ErrResultPersistUnsupported   = errors.New("the computer does not support the result graph and persist combination")
	ErrTooManyWorkers             = errors.New("the computer requires more workers than supported")
	ErrVertexFilterAccessesEdges  = errors.New("the vertex filter accesses incident edges")
	ErrEdgeFilterAccessesAdjacent = errors.New("the edge filter accesses data on adjacent vertices")
)
