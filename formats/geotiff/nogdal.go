//go:build !gdal

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

package geotiff

import (
	"fmt"

	"github.com/spatialmodel/gridmeta"
)

const gdalEnabled = false

var errNoGDAL = fmt.Errorf("geotiff: gridmeta was built without the gdal tag: %w", gridmeta.ErrExtractorUnavailable)

func load() (interface{}, error) { return nil, errNoGDAL }

func readRaster(string) (*Raster, error) { return nil, errNoGDAL }
