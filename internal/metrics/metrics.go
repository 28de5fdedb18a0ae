/*
Copyright © 2024 the gridmeta authors.
This file is part of gridmeta.

gridmeta is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

gridmeta is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with gridmeta.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package metrics provides Prometheus metrics for gridmeta.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for gridmeta.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Cache metrics
	CacheLookupsTotal *prometheus.CounterVec

	// Extraction metrics
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Registry metrics
	SupportedFormats prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.CacheLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridmeta_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"kind", "result"},
	)

	m.ExtractionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridmeta_extractions_total",
			Help: "Total number of file metadata requests handled by extractors",
		},
		[]string{"format", "status"},
	)

	m.ExtractionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridmeta_extraction_duration_seconds",
			Help:    "Duration of file metadata extraction in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridmeta_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)

	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridmeta_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.SupportedFormats = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridmeta_supported_formats",
			Help: "Number of file formats with a registered extractor",
		},
	)

	return m
}

// RecordCacheLookup records a cache lookup of the given entry kind.
func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordExtraction records a call to an extractor.
func (m *Metrics) RecordExtraction(format, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(format, status).Inc()
	m.ExtractionDuration.WithLabelValues(format).Observe(d.Seconds())
}

// RecordRequest records an HTTP request.
func (m *Metrics) RecordRequest(route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, code).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// SetSupportedFormats records the number of registered formats.
func (m *Metrics) SetSupportedFormats(n int) {
	if m == nil {
		return
	}
	m.SupportedFormats.Set(float64(n))
}
