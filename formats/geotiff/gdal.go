//go:build gdal

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
	"sync"

	"github.com/airbusgeo/godal"
)

const gdalEnabled = true

var registerOnce sync.Once

func load() (interface{}, error) {
	registerOnce.Do(godal.RegisterAll)
	return New(), nil
}

// readRaster opens the raster file at path with GDAL and reads its
// metadata.
func readRaster(path string) (*Raster, error) {
	registerOnce.Do(godal.RegisterAll)
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geotiff: opening %s: %v", path, err)
	}
	defer ds.Close()

	st := ds.Structure()
	r := &Raster{
		Profile: Profile{
			Driver:     ds.Driver().ShortName(),
			DType:      dtype(st.DataType),
			Width:      st.SizeX,
			Height:     st.SizeY,
			Count:      st.NBands,
			BlockXSize: st.BlockSizeX,
			BlockYSize: st.BlockSizeY,
			Interleave: ds.Metadata("INTERLEAVE", godal.Domain("IMAGE_STRUCTURE")),
		},
		Tags: ds.Metadatas(),
	}
	if bands := ds.Bands(); len(bands) > 0 {
		if nd, ok := bands[0].NoData(); ok {
			r.NoData = &nd
		}
	}
	r.CRS = crs(ds.Projection())
	if gt, err := ds.GeoTransform(); err == nil {
		r.Transform, r.HasTransform = gt, true
	}
	if r.Bounds, err = ds.Bounds(); err != nil {
		return nil, fmt.Errorf("geotiff: computing bounds of %s: %v", path, err)
	}
	for _, name := range ds.MetadataDomains() {
		if name == "" {
			continue
		}
		r.Domains = append(r.Domains, Domain{
			Name:  name,
			Items: ds.Metadatas(godal.Domain(name)),
		})
	}
	return r, nil
}

// crs returns the authority code of the projection wkt, e.g. "EPSG:4326",
// or wkt itself if it has no authority.
func crs(wkt string) string {
	if wkt == "" {
		return ""
	}
	sr, err := godal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		return wkt
	}
	defer sr.Close()
	if name, code := sr.AuthorityName(""), sr.AuthorityCode(""); name != "" && code != "" {
		return name + ":" + code
	}
	return wkt
}

// dtype returns the numpy-style name of a GDAL data type.
func dtype(t godal.DataType) string {
	switch t {
	case godal.Byte:
		return "uint8"
	case godal.UInt16:
		return "uint16"
	case godal.Int16:
		return "int16"
	case godal.UInt32:
		return "uint32"
	case godal.Int32:
		return "int32"
	case godal.Float32:
		return "float32"
	case godal.Float64:
		return "float64"
	case godal.CInt16, godal.CInt32, godal.CFloat32:
		return "complex64"
	case godal.CFloat64:
		return "complex128"
	default:
		return t.String()
	}
}
