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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus collectors a Computer updates. A nil *Metrics
// records nothing.
type Metrics struct {
	supersteps  prometheus.Counter
	executions  prometheus.Counter
	merges      *prometheus.CounterVec
	messages    *prometheus.CounterVec
	mapReduce   *prometheus.CounterVec
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics registers the runner collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		supersteps: f.NewCounter(prometheus.CounterOpts{
			Name: "kore_local_supersteps_total",
			Help: "Total supersteps completed by the local graph computer",
		}),
		executions: f.NewCounter(prometheus.CounterOpts{
			Name: "kore_local_vertex_executions_total",
			Help: "Total vertex program executions",
		}),
		merges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kore_local_memory_merges_total",
			Help: "Worker memory values merged into the master memory",
		}, []string{"key"}),
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kore_local_messages_total",
			Help: "Messages sent between vertices",
		}, []string{"scope"}),
		mapReduce: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kore_local_mapreduce_emits_total",
			Help: "Key/value pairs emitted by MapReduce stages",
		}, []string{"stage"}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kore_local_submissions_total",
			Help: "Computations submitted, by result",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kore_local_computation_duration_seconds",
			Help:    "Wall time of a whole computation",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// DefaultMetrics returns the collectors registered with the default
// prometheus registerer. They are registered on first use.
func DefaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func (m *Metrics) superstep() {
	if m != nil {
		m.supersteps.Inc()
	}
}

func (m *Metrics) executed(n int) {
	if m != nil {
		m.executions.Add(float64(n))
	}
}

func (m *Metrics) merged(key string) {
	if m != nil {
		m.merges.WithLabelValues(key).Inc()
	}
}

func (m *Metrics) sent(scope string) {
	if m != nil {
		m.messages.WithLabelValues(scope).Inc()
	}
}

func (m *Metrics) emitted(stage string, n int) {
	if m != nil {
		m.mapReduce.WithLabelValues(stage).Add(float64(n))
	}
}

func (m *Metrics) submitted(err error, seconds float64) {
	if m == nil {
		return
	}
	if err != nil {
		m.submissions.WithLabelValues("error").Inc()
		return
	}
	m.submissions.WithLabelValues("ok").Inc()
	m.duration.Observe(seconds)
}
