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
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeExtractor returns an empty attribute map.
type fakeExtractor struct {
	format FormatKey
}

func (e fakeExtractor) FileMetadata(ds Dataset, c Cache, hide HideSet) (*FileMetadata, error) {
	return &FileMetadata{Format: e.format, Attrs: NewAttributeMap()}, nil
}

func extractorCandidate(name string, f FormatKey) Candidate {
	return Candidate{
		Name:   name,
		Format: f,
		Load:   func() (interface{}, error) { return fakeExtractor{format: f}, nil },
	}
}

func TestLoadRegistry(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := LoadRegistry(log,
		extractorCandidate("netcdf_file_metadata", NetCDF),
		Candidate{
			Name:   "hdf5_file_metadata",
			Format: HDF5,
			Load: func() (interface{}, error) {
				return nil, fmt.Errorf("hdf5 library missing: %w", ErrExtractorUnavailable)
			},
		},
		Candidate{
			Name:   "geotiff_file_metadata",
			Format: GeoTIFF,
			Load:   func() (interface{}, error) { panic("broken plugin") },
		},
		Candidate{
			Name:   "grib_file_metadata",
			Format: GRIB,
			Load:   func() (interface{}, error) { return "not an extractor", nil },
		},
		extractorCandidate("zarr_file_metadata", "zarr"),
		extractorCandidate("netcdf_duplicate", NetCDF),
		Candidate{Name: "no_load", Format: GRIB},
	)

	if want := []FormatKey{NetCDF}; !reflect.DeepEqual(r.Supported(), want) {
		t.Errorf("supported: have %v, want %v", r.Supported(), want)
	}
	if _, ok := r.Lookup(NetCDF); !ok {
		t.Error("netcdf should be registered")
	}
	for _, f := range []FormatKey{HDF5, GeoTIFF, GRIB, "zarr"} {
		if _, ok := r.Lookup(f); ok {
			t.Errorf("%s should not be registered", f)
		}
	}

	var warnings int
	var hint bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
		if e.Message == InstallHint(HDF5) {
			hint = true
		}
	}
	if warnings != 6 {
		t.Errorf("have %d warnings, want 6", warnings)
	}
	if !hint {
		t.Error("the install hint for hdf5 was not logged")
	}
}

func TestLoadRegistryOrder(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := LoadRegistry(log,
		extractorCandidate("grib", GRIB),
		extractorCandidate("geotiff", GeoTIFF),
		extractorCandidate("netcdf", NetCDF),
	)
	want := []FormatKey{NetCDF, GeoTIFF, GRIB}
	if !reflect.DeepEqual(r.Supported(), want) {
		t.Errorf("have %v, want %v", r.Supported(), want)
	}
	r.Supported()[0] = HDF5
	if r.Supported()[0] != NetCDF {
		t.Error("Supported returned the internal slice")
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	if len(r.Supported()) != 0 {
		t.Error("nil registry should support nothing")
	}
	if _, ok := r.Lookup(NetCDF); ok {
		t.Error("nil registry should not find netcdf")
	}
}
