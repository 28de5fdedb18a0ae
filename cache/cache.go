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

// Package cache provides gridmeta.Cache implementations.
package cache

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridmeta/internal/metrics"
)

// Config holds the settings for an in-process cache.
type Config struct {
	// MaxCost is the total cost of the entries the cache can hold.
	// gridmeta stores every entry with gridmeta.AttrsCost or
	// gridmeta.HandleCost, so MaxCost / 99999 is the number of entries.
	MaxCost int64

	// NumCounters is the number of keys whose access frequency is
	// tracked. It should be about ten times the number of entries.
	NumCounters int64

	// BufferItems is the size of the Get buffers. 64 is a good default.
	BufferItems int64

	// Metrics, if not nil, records cache hits and misses.
	Metrics *metrics.Metrics

	// Log receives errors from closing evicted file handles.
	Log logrus.FieldLogger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxCost:     1 << 30,
		NumCounters: 1e5,
		BufferItems: 64,
	}
}

// Memory is a cost-based in-process cache. Values that implement io.Closer
// are closed when they are evicted, rejected, replaced or dropped.
type Memory struct {
	c          *ristretto.Cache[string, interface{}]
	metrics    *metrics.Metrics
	closeValue func(interface{})
}

// New creates a new in-process cache.
func New(cfg Config) (*Memory, error) {
	def := DefaultConfig()
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = def.MaxCost
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = def.NumCounters
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = def.BufferItems
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	closeValue := func(v interface{}) {
		if c, ok := v.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.WithError(err).Warn("cache: closing evicted file")
			}
		}
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, interface{}]{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		IgnoreInternalCost: true,
		OnExit:             closeValue,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %v", err)
	}
	return &Memory{c: c, metrics: cfg.Metrics, closeValue: closeValue}, nil
}

// Get implements gridmeta.Cache.
func (m *Memory) Get(key string) (interface{}, bool) {
	v, ok := m.c.Get(key)
	m.metrics.RecordCacheLookup(Kind(key), ok)
	return v, ok
}

// Put implements gridmeta.Cache. Entries become visible to Get once
// the cache has processed them; call Wait to block until then.
func (m *Memory) Put(key string, value interface{}, cost int64) {
	if !m.c.Set(key, value, cost) {
		// Dropped because the set buffer is full.
		m.closeValue(value)
	}
}

// Wait blocks until all previous Puts have been applied.
func (m *Memory) Wait() { m.c.Wait() }

// Close stops the cache's background goroutines.
func (m *Memory) Close() { m.c.Close() }

// Kind returns the entry kind at the end of a gridmeta cache key, e.g.
// "attrs" or "handle".
func Kind(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return "unknown"
}
