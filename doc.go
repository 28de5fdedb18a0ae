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

// Package gridmeta exposes the global attributes of gridded scientific data
// files (NetCDF, HDF5, GeoTIFF and GRIB).
//
// Each supported format has an Extractor, which is loaded into a Registry at
// startup. A Service ties the Registry to a Cache and a HideList: it identifies
// the format of a Dataset from its source path, dispatches to the matching
// Extractor, and makes sure that hidden attributes never reach the caller,
// whether the attributes were just read from the file or were already in the
// cache.
package gridmeta

// Version gives the version number.
const Version = "0.1.0"
