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

import (
	"fmt"
)

// Extractor reads the metadata of datasets in one file format.
type Extractor interface {
	// FileMetadata returns the metadata of ds, leaving out the attributes
	// in hide. Implementations may use c to store open files and
	// previously read attributes.
	FileMetadata(ds Dataset, c Cache, hide HideSet) (*FileMetadata, error)
}

// AttrReader is the format-specific part of an Extractor: it opens the
// source file of a dataset and reads all of its global attributes.
type AttrReader interface {
	ReadAttrs(ds Dataset, c Cache) (*AttributeMap, error)
}

// AttrReaderFunc is an AttrReader implemented by a function.
type AttrReaderFunc func(ds Dataset, c Cache) (*AttributeMap, error)

// ReadAttrs calls f.
func (f AttrReaderFunc) ReadAttrs(ds Dataset, c Cache) (*AttributeMap, error) { return f(ds, c) }

// NewExtractor returns an Extractor for format f that reads attributes using
// r and keeps the results in the cache.
func NewExtractor(f FormatKey, r AttrReader) Extractor {
	return &cachedExtractor{format: f, r: r}
}

type cachedExtractor struct {
	format FormatKey
	r      AttrReader
}

// FileMetadata implements Extractor. Hidden attributes are removed from
// cached results as well as from new ones, in case the cached value was
// stored under a different hide list.
func (e *cachedExtractor) FileMetadata(ds Dataset, c Cache, hide HideSet) (*FileMetadata, error) {
	if c == nil {
		c = NopCache{}
	}
	key := AttrsKey(ds, e.format)
	if v, ok := c.Get(key); ok {
		if attrs, ok := v.(*AttributeMap); ok {
			return &FileMetadata{Format: e.format, Attrs: attrs.Without(hide)}, nil
		}
	}

	attrs, err := e.r.ReadAttrs(ds, c)
	if err != nil {
		return nil, fmt.Errorf("gridmeta: reading %s attributes from %s: %w", e.format, ds.Source(), err)
	}
	attrs = attrs.Without(hide)
	c.Put(key, attrs, AttrsCost)
	return &FileMetadata{Format: e.format, Attrs: attrs.Without(nil)}, nil
}
