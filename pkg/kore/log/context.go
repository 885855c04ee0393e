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

package log

import (
	"context"
	"fmt"
	"strings"
)

type fieldsKey struct{}

// Fields are key/value annotations carried on a context.
type Fields []Field

// Field is a single annotation.
type Field struct {
	Key   string
	Value any
}

func (fs Fields) String() string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = fmt.Sprintf("%s=%v", f.Key, f.Value)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// With returns a context whose log output is annotated with key=value. Later
// annotations with the same key shadow earlier ones.
func With(ctx context.Context, key string, value any) context.Context {
	prev := fieldsFrom(ctx)
	next := make(Fields, 0, len(prev)+1)
	for _, f := range prev {
		if f.Key != key {
			next = append(next, f)
		}
	}
	next = append(next, Field{Key: key, Value: value})
	return context.WithValue(ctx, fieldsKey{}, next)
}

func fieldsFrom(ctx context.Context) Fields {
	if ctx == nil {
		return nil
	}
	fs, _ := ctx.Value(fieldsKey{}).(Fields)
	return fs
}
