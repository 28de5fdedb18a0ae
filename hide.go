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
	"sort"

	"github.com/spatialmodel/gridmeta/internal/hash"
)

// HideSet is a set of attribute names that must not be returned to a caller.
type HideSet map[string]struct{}

// NewHideSet returns a HideSet containing names.
func NewHideSet(names ...string) HideSet {
	h := make(HideSet, len(names))
	for _, n := range names {
		h[n] = struct{}{}
	}
	return h
}

// Contains returns whether name is hidden. A nil HideSet hides nothing.
func (h HideSet) Contains(name string) bool {
	_, ok := h[name]
	return ok
}

// Names returns the hidden names in sorted order.
func (h HideSet) Names() []string {
	o := make([]string, 0, len(h))
	for n := range h {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

// HideList holds the hidden attribute names for each format.
// It is created once, when the Service is created, and is not modified
// afterwards.
type HideList map[FormatKey]HideSet

// HideAll returns a HideList that hides names for every format.
func HideAll(names ...string) HideList {
	h := make(HideList, len(formats))
	for _, f := range formats {
		h[f] = NewHideSet(names...)
	}
	return h
}

// HideByFormat returns a HideList from a map of format names to
// attribute names. Format names that are not recognized cause an error.
func HideByFormat(m map[string][]string) (HideList, error) {
	h := make(HideList, len(m))
	for k, names := range m {
		f, err := ParseFormat(k)
		if err != nil {
			return nil, fmt.Errorf("gridmeta: hidden attributes: %w", err)
		}
		if hs, ok := h[f]; ok {
			for _, n := range names {
				hs[n] = struct{}{}
			}
			continue
		}
		h[f] = NewHideSet(names...)
	}
	return h, nil
}

// For returns the hidden attributes for format f.
func (h HideList) For(f FormatKey) HideSet {
	if h == nil {
		return nil
	}
	return h[f]
}

// Fingerprint returns a token that is the same for any two HideLists that
// hide the same names for every format.
func (h HideList) Fingerprint() string {
	m := make(map[FormatKey][]string, len(h))
	for f, hs := range h {
		if len(hs) > 0 {
			m[f] = hs.Names()
		}
	}
	return hash.Hash(m)
}
