/*
 * Copyright 2024 QuestDB
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package questdb

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records query outcomes and throughput as Prometheus metrics.
//
// A nil *Metrics records nothing.
type Metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
	bytes    prometheus.Counter
	rows     prometheus.Counter
	chunks   prometheus.Counter
}

// NewMetrics creates the query metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questdb",
			Subsystem: "query",
			Name:      "total",
			Help:      "Number of queries executed, by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "questdb",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Time from the metadata request to the last chunk of successful queries.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "questdb",
			Subsystem: "query",
			Name:      "downloaded_bytes_total",
			Help:      "CSV bytes downloaded by successful queries.",
		}),
		rows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "questdb",
			Subsystem: "query",
			Name:      "rows_total",
			Help:      "Rows returned by successful queries.",
		}),
		chunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "questdb",
			Subsystem: "query",
			Name:      "chunks_total",
			Help:      "Chunks downloaded by successful queries.",
		}),
	}
}

func (m *Metrics) observe(stats *Stats, err error) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome(err)).Inc()
	if err != nil || stats == nil {
		return
	}
	m.duration.Observe(stats.DurationSeconds())
	m.bytes.Add(float64(stats.ByteCount))
	m.rows.Add(float64(stats.RowCount))
	m.chunks.Add(float64(stats.Chunks))
}

func outcome(err error) string {
	var (
		configErr      *ConfigError
		queryErr       *QueryError
		transportErr   *TransportError
		coercionErr    *CoercionError
		unsupportedErr *UnsupportedTypeError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &configErr):
		return "config_error"
	case errors.As(err, &queryErr):
		return "query_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	case errors.As(err, &coercionErr), errors.As(err, &unsupportedErr):
		return "type_error"
	default:
		return "error"
	}
}
