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

// Package geotiff reads metadata from GeoTIFF files using GDAL.
//
// GDAL is a C library, so the reader is only compiled when gridmeta is built
// with the "gdal" build tag. Without it, the candidate returned by Candidate
// fails to load with gridmeta.ErrExtractorUnavailable.
package geotiff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmodel/gridmeta"
)

// Candidate returns the registry candidate for GeoTIFF files.
func Candidate() gridmeta.Candidate {
	return gridmeta.Candidate{
		Name:   "geotiff_file_metadata",
		Format: gridmeta.GeoTIFF,
		Load:   load,
	}
}

// New returns an Extractor for GeoTIFF files.
func New() gridmeta.Extractor {
	return gridmeta.NewExtractor(gridmeta.GeoTIFF, gridmeta.AttrReaderFunc(readAttrs))
}

func readAttrs(ds gridmeta.Dataset, _ gridmeta.Cache) (*gridmeta.AttributeMap, error) {
	r, err := readRaster(ds.Source())
	if err != nil {
		return nil, err
	}
	return r.Attrs(), nil
}

// Profile holds the basic properties of a raster file.
type Profile struct {
	Driver        string
	DType         string
	NoData        *float64
	Width, Height int
	Count         int
	CRS           string // empty if the file has no spatial reference.

	// Transform is the GDAL geotransform, if HasTransform is true.
	Transform    [6]float64
	HasTransform bool

	BlockXSize, BlockYSize int
	Interleave             string
}

// Tiled returns whether the raster is stored in tiles rather than strips.
func (p *Profile) Tiled() bool { return p.BlockXSize != p.Width }

// Domain is a named group of metadata items.
type Domain struct {
	Name  string
	Items map[string]string
}

// Raster holds the metadata read from a raster file.
type Raster struct {
	Profile

	// Tags are the items of the default metadata domain.
	Tags map[string]string

	// Domains are the other metadata domains.
	Domains []Domain

	// Bounds are the left, bottom, right and top edges of the raster.
	Bounds [4]float64
}

// Attrs returns the metadata in r as a flat attribute map: the profile
// first, then the default tags, then one entry for each other metadata
// domain, then the bounding box.
func (r *Raster) Attrs() *gridmeta.AttributeMap {
	a := gridmeta.NewAttributeMap()
	a.Set("driver", r.Driver)
	a.Set("dtype", r.DType)
	a.SetValue("nodata", r.NoData)
	a.SetValue("width", r.Width)
	a.SetValue("height", r.Height)
	a.SetValue("count", r.Count)
	if r.CRS == "" {
		a.Set("crs", "None")
	} else {
		a.Set("crs", r.CRS)
	}
	if r.HasTransform {
		a.Set("transform", affine(r.Transform))
	}
	a.SetValue("blockxsize", r.BlockXSize)
	a.SetValue("blockysize", r.BlockYSize)
	a.SetValue("tiled", r.Tiled())
	if r.Interleave != "" {
		a.Set("interleave", strings.ToLower(r.Interleave))
	}
	for _, k := range sortedKeys(r.Tags) {
		a.Set(k, r.Tags[k])
	}
	for _, d := range r.Domains {
		a.Set(d.Name, dict(d.Items))
	}
	a.Set("bounding_box", fmt.Sprintf("BoundingBox(left=%s, bottom=%s, right=%s, top=%s)",
		gridmeta.Stringify(r.Bounds[0]), gridmeta.Stringify(r.Bounds[1]),
		gridmeta.Stringify(r.Bounds[2]), gridmeta.Stringify(r.Bounds[3])))
	return a
}

// affine formats a GDAL geotransform as an affine matrix.
func affine(gt [6]float64) string {
	c := []float64{gt[1], gt[2], gt[0], gt[4], gt[5], gt[3]}
	s := make([]string, len(c))
	for i, v := range c {
		s[i] = gridmeta.Stringify(v)
	}
	return "Affine(" + strings.Join(s, ", ") + ")"
}

// dict formats items as a dictionary literal with sorted keys.
func dict(items map[string]string) string {
	keys := sortedKeys(items)
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = fmt.Sprintf("'%s': '%s'", k, items[k])
	}
	return "{" + strings.Join(s, ", ") + "}"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
