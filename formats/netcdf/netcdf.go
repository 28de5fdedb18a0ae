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

// Package netcdf reads global attributes from NetCDF files. Classic
// (CDF-1 and CDF-2) files are read with github.com/ctessum/cdf and
// NetCDF-4 files, which are HDF5 files underneath, are read with
// github.com/batchatco/go-native-netcdf.
package netcdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	nativenc "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/cdf"
	"github.com/spatialmodel/gridmeta"
)

var (
	classicMagic = []byte("CDF")
	hdf5Magic    = []byte("\x89HDF\r\n\x1a\n")
)

// Candidate returns the registry candidate for NetCDF files.
func Candidate() gridmeta.Candidate {
	return gridmeta.Candidate{
		Name:   "netcdf_file_metadata",
		Format: gridmeta.NetCDF,
		Load:   func() (interface{}, error) { return New(), nil },
	}
}

// New returns an Extractor for NetCDF files. The parsed header of each
// file is kept in the cache so that files only need to be read once per
// dataset.
func New() gridmeta.Extractor {
	return gridmeta.NewExtractor(gridmeta.NetCDF, gridmeta.AttrReaderFunc(readAttrs))
}

// Handle is the parsed header of a NetCDF file. The file itself is closed
// once its header has been read.
type Handle interface {
	// Attrs returns the global attributes of the file.
	Attrs() (*gridmeta.AttributeMap, error)
}

// readAttrs reads the attributes of ds using the cached Handle for ds,
// reading the file header if it isn't in the cache yet.
func readAttrs(ds gridmeta.Dataset, c gridmeta.Cache) (*gridmeta.AttributeMap, error) {
	key := gridmeta.HandleKey(ds, gridmeta.NetCDF)
	if v, ok := c.Get(key); ok {
		if h, ok := v.(Handle); ok {
			return h.Attrs()
		}
	}
	h, err := Open(ds.Source())
	if err != nil {
		return nil, err
	}
	attrs, err := h.Attrs()
	if err != nil {
		return nil, err
	}
	c.Put(key, h, gridmeta.HandleCost)
	return attrs, nil
}

// Open reads the header of the NetCDF file at path.
func Open(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("netcdf: %v", err)
	}
	magic := make([]byte, len(hdf5Magic))
	n, err := f.ReadAt(magic, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("netcdf: reading %s: %v", path, err)
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, classicMagic):
		defer f.Close()
		cf, err := cdf.Open(f)
		if err != nil {
			return nil, fmt.Errorf("netcdf: opening %s: %v", path, err)
		}
		return &classicHeader{h: cf.Header}, nil
	case bytes.Equal(magic, hdf5Magic):
		f.Close()
		g, err := nativenc.Open(path)
		if err != nil {
			return nil, fmt.Errorf("netcdf: opening %s: %v", path, err)
		}
		defer g.Close()
		attrs, err := GroupAttrs(g)
		if err != nil {
			return nil, fmt.Errorf("netcdf: %s: %v", path, err)
		}
		return &groupHeader{attrs: attrs}, nil
	default:
		f.Close()
		return nil, fmt.Errorf("netcdf: %s is not a NetCDF file", path)
	}
}

// classicHeader is the header of a CDF-1 or CDF-2 file.
type classicHeader struct {
	h *cdf.Header
}

func (h *classicHeader) Attrs() (*gridmeta.AttributeMap, error) {
	a := gridmeta.NewAttributeMap()
	for _, name := range h.h.Attributes("") {
		a.SetValue(name, h.h.GetAttribute("", name))
	}
	return a, nil
}

// groupHeader holds the root attributes of a NetCDF-4 file.
type groupHeader struct {
	attrs *gridmeta.AttributeMap
}

func (h *groupHeader) Attrs() (*gridmeta.AttributeMap, error) {
	return h.attrs.Without(nil), nil
}

// GroupAttrs returns the attributes of a go-native-netcdf group, sorted
// by name. HDF5 does not keep the order that attributes were written in.
func GroupAttrs(g api.Group) (a *gridmeta.AttributeMap, err error) {
	// go-native-netcdf panics on malformed files.
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("reading attributes: %v", r)
		}
	}()
	a = gridmeta.NewAttributeMap()
	am := g.Attributes()
	if am == nil {
		return a, nil
	}
	keys := append([]string(nil), am.Keys()...)
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := am.Get(k)
		a.SetValue(k, v)
	}
	return a, nil
}
