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

// Package grib registers the GRIB format so that GRIB files are
// recognized. Their attributes are not read: every request fails with
// gridmeta.ErrNotImplemented, which the HTTP layer reports as 501.
package grib

import (
	"fmt"

	"github.com/spatialmodel/gridmeta"
)

// Candidate returns the registry candidate for GRIB files.
func Candidate() gridmeta.Candidate {
	return gridmeta.Candidate{
		Name:   "grib_file_metadata",
		Format: gridmeta.GRIB,
		Load:   func() (interface{}, error) { return New(), nil },
	}
}

// New returns an Extractor for GRIB files.
func New() gridmeta.Extractor {
	return gridmeta.NewExtractor(gridmeta.GRIB, gridmeta.AttrReaderFunc(readAttrs))
}

// readAttrs always fails with gridmeta.ErrNotImplemented.
func readAttrs(ds gridmeta.Dataset, _ gridmeta.Cache) (*gridmeta.AttributeMap, error) {
	return nil, fmt.Errorf("grib: reading attributes of %s: %w", ds.Source(), gridmeta.ErrNotImplemented)
}
