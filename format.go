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
	"path/filepath"
	"strings"
)

// FormatKey identifies a supported file format.
type FormatKey string

// These are the supported file formats.
const (
	NetCDF  FormatKey = "netcdf"
	HDF5    FormatKey = "hdf5"
	GeoTIFF FormatKey = "geotiff"
	GRIB    FormatKey = "grib"
)

// formats is the closed set of formats, in canonical order.
var formats = []FormatKey{NetCDF, HDF5, GeoTIFF, GRIB}

// Formats returns all of the formats that gridmeta knows about, whether or
// not an Extractor is available for them.
func Formats() []FormatKey {
	o := make([]FormatKey, len(formats))
	copy(o, formats)
	return o
}

// Valid returns whether f is one of the known formats.
func (f FormatKey) Valid() bool {
	for _, ff := range formats {
		if f == ff {
			return true
		}
	}
	return false
}

func (f FormatKey) String() string { return string(f) }

// ParseFormat converts s to a FormatKey.
func ParseFormat(s string) (FormatKey, error) {
	f := FormatKey(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("gridmeta: invalid format %q: %w", s, ErrUnsupportedFormat)
	}
	return f, nil
}

// extensions maps lower-case file extensions to formats.
var extensions = map[string]FormatKey{
	".nc":   NetCDF,
	".nc4":  NetCDF,
	".nc3":  NetCDF,
	".hdf":  HDF5,
	".tif":  GeoTIFF,
	".tiff": GeoTIFF,
	".grib": GRIB,
}

// Identify returns the format of the file at path, based on the final
// extension of the path. Extensions are compared case-insensitively.
func Identify(path string) (FormatKey, error) {
	ext := filepath.Ext(path)
	if f, ok := extensions[strings.ToLower(ext)]; ok {
		return f, nil
	}
	if ext == "" {
		return "", fmt.Errorf("gridmeta: %s has no file extension: %w", path, ErrUnsupportedFormat)
	}
	return "", fmt.Errorf("gridmeta: unknown file extension %q: %w", ext, ErrUnsupportedFormat)
}

// installHints tell the user what to do when the library needed for a
// format is missing.
var installHints = map[FormatKey]string{
	NetCDF:  "Rebuild gridmeta with github.com/ctessum/cdf and github.com/batchatco/go-native-netcdf to get file metadata for netcdf files.",
	HDF5:    "Rebuild gridmeta with github.com/batchatco/go-native-netcdf to get file metadata for hdf5 files.",
	GeoTIFF: "Install GDAL (libgdal-dev) and rebuild gridmeta with '-tags gdal' to get file metadata for geotiff files.",
	GRIB:    "Rebuild gridmeta with GRIB support to get file metadata for grib files.",
}

// InstallHint returns a message explaining how to enable format f.
func InstallHint(f FormatKey) string {
	if h, ok := installHints[f]; ok {
		return h
	}
	return fmt.Sprintf("Format %q is not supported.", f)
}
