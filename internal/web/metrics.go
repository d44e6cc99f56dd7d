// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the server's Prometheus instruments. Each server owns
// its registry so tests can run servers side by side without duplicate
// registration panics.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	redacted *prometheus.CounterVec
	rejected prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redact_http_requests_total",
			Help: "HTTP requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redact_http_request_duration_seconds",
			Help:    "End-to-end request latency by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redact_http_requests_in_flight",
			Help: "Requests currently being processed.",
		}),
		redacted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redact_spans_total",
			Help: "Redacted spans by category.",
		}, []string{"category"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redact_requests_rejected_total",
			Help: "Requests rejected because the server was at capacity.",
		}),
	}

	m.registry.MustRegister(m.requests, m.duration, m.inFlight, m.redacted, m.rejected)
	return m
}

func (m *metrics) observe(endpoint string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
