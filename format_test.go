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
	"errors"
	"testing"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		path string
		want FormatKey
		err  bool
	}{
		{path: "data/ds.nc", want: NetCDF},
		{path: "ds.nc4", want: NetCDF},
		{path: "ds.nc3", want: NetCDF},
		{path: "/abs/path/ds.NC", want: NetCDF},
		{path: "ds.hdf", want: HDF5},
		{path: "ds.tif", want: GeoTIFF},
		{path: "ds.tiff", want: GeoTIFF},
		{path: "ds.TIFF", want: GeoTIFF},
		{path: "ds.grib", want: GRIB},
		{path: "ds.xyz", err: true},
		{path: "ds.nc.gz", err: true},
		{path: "ds", err: true},
		{path: "data.nc/ds", err: true},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			f, err := Identify(test.path)
			if test.err {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("want ErrUnsupportedFormat, have %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if f != test.want {
				t.Errorf("have %s, want %s", f, test.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"netcdf", "HDF5", " geotiff ", "grib"} {
		f, err := ParseFormat(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
		}
		if !f.Valid() {
			t.Errorf("%s: %s is not valid", s, f)
		}
	}
	if _, err := ParseFormat("zarr"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("zarr: want ErrUnsupportedFormat, have %v", err)
	}
}

func TestFormats(t *testing.T) {
	f := Formats()
	f[0] = "changed"
	if Formats()[0] != NetCDF {
		t.Error("Formats returned the internal slice")
	}
	for _, ff := range Formats() {
		if InstallHint(ff) == "" {
			t.Errorf("no install hint for %s", ff)
		}
	}
}
