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
	"runtime/debug"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/step"
	"github.com/tinkercat/gremlin-kore/pkg/kore/core/structure"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// callNoPanic calls the given function and catches any panic.
func callNoPanic(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.SetTopLevelMsgf(errors.Errorf("panic: %v %s", r, debug.Stack()), "panic: %v", r)
		}
	}()
	return fn(ctx)
}

// checkInterrupt returns step.ErrInterrupted once ctx is done.
func checkInterrupt(ctx context.Context) error {
	if ctx.Err() != nil {
		return errors.WithContext(step.ErrInterrupted, ctx.Err().Error())
	}
	return nil
}

// partition splits vs into n contiguous batches of len(vs)/n vertices (at
// least one), the last batch taking the remainder. Batches may be empty
// when there are fewer vertices than workers.
func partition(vs []*structure.Vertex, n int) [][]*structure.Vertex {
	parts := make([][]*structure.Vertex, n)
	size := len(vs) / n
	if size == 0 {
		size = 1
	}
	for i := range parts {
		lo := i * size
		if lo >= len(vs) {
			break
		}
		hi := lo + size
		if i == n-1 || hi > len(vs) {
			hi = len(vs)
		}
		parts[i] = vs[lo:hi]
	}
	return parts
}
