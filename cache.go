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

package gridmeta

import "io"

// Cache is a cost-aware key-value cache. Get and Put must each be safe for
// concurrent use; gridmeta does not assume that a Get followed by a Put is
// atomic. Eviction is up to the implementation.
type Cache interface {
	// Get returns the value stored under key, if there is one.
	Get(key string) (interface{}, bool)

	// Put stores value under key with the given cost. The cache owns
	// value from then on: when a value that implements io.Closer is
	// evicted or not stored at all, the cache should close it.
	Put(key string, value interface{}, cost int64)
}

// Cache entry kinds.
const (
	kindHandle = "handle"
	kindAttrs  = "attrs"
)

// AttrsCost and HandleCost are the weights that attribute maps and open
// file handles are stored with. They are fixed rather than based on size,
// so a cache with a given maximum cost holds a fixed number of datasets.
const (
	AttrsCost  int64 = 99999
	HandleCost int64 = 99999
)

func cacheKey(ds Dataset, f FormatKey, kind string) string {
	id := ds.ID()
	if v, ok := ds.(Versioned); ok && v.Version() != "" {
		id += "@" + v.Version()
	}
	return id + "/" + string(f) + "/" + kind
}

// AttrsKey returns the cache key for the attribute map of ds in format f.
// For a Versioned dataset, the key includes the version.
func AttrsKey(ds Dataset, f FormatKey) string { return cacheKey(ds, f, kindAttrs) }

// HandleKey returns the cache key for the open file handle of ds in format f.
func HandleKey(ds Dataset, f FormatKey) string { return cacheKey(ds, f, kindHandle) }

// NopCache is a Cache that never stores anything.
type NopCache struct{}

// Get always returns false.
func (NopCache) Get(string) (interface{}, bool) { return nil, false }

// Put closes value if it is an io.Closer and otherwise does nothing.
func (NopCache) Put(_ string, value interface{}, _ int64) {
	if c, ok := value.(io.Closer); ok {
		c.Close()
	}
}
