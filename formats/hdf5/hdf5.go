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

// Package hdf5 reads the attributes of the root group of HDF5 files.
package hdf5

import (
	"fmt"

	nativeh5 "github.com/batchatco/go-native-netcdf/netcdf/hdf5"
	"github.com/spatialmodel/gridmeta"
	"github.com/spatialmodel/gridmeta/formats/netcdf"
)

// Candidate returns the registry candidate for HDF5 files.
func Candidate() gridmeta.Candidate {
	return gridmeta.Candidate{
		Name:   "hdf5_file_metadata",
		Format: gridmeta.HDF5,
		Load:   func() (interface{}, error) { return New(), nil },
	}
}

// New returns an Extractor for HDF5 files.
func New() gridmeta.Extractor {
	return gridmeta.NewExtractor(gridmeta.HDF5, gridmeta.AttrReaderFunc(readAttrs))
}

// readAttrs opens the source file of ds, reads the attributes of its root
// group and closes it again. The file isn't kept open because the
// attribute map is cached by the Extractor.
func readAttrs(ds gridmeta.Dataset, _ gridmeta.Cache) (*gridmeta.AttributeMap, error) {
	g, err := nativeh5.Open(ds.Source())
	if err != nil {
		return nil, fmt.Errorf("hdf5: opening %s: %v", ds.Source(), err)
	}
	defer g.Close()
	attrs, err := netcdf.GroupAttrs(g)
	if err != nil {
		return nil, fmt.Errorf("hdf5: %s: %v", ds.Source(), err)
	}
	return attrs, nil
}
