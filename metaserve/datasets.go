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

package metaserve

import (
	"fmt"
	"os"
	"sort"

	"github.com/spatialmodel/gridmeta"
)

// Datasets finds the datasets that are being served.
type Datasets interface {
	// Dataset returns the dataset with the given id.
	Dataset(id string) (gridmeta.Dataset, bool)

	// IDs returns the ids of all datasets.
	IDs() []string
}

// StaticDatasets is a fixed set of datasets, mapping dataset ids to
// file paths. Each lookup stamps the file again, so attributes cached
// for a file that has since changed are not served.
type StaticDatasets map[string]string

// NewStaticDatasets creates a StaticDatasets from a map of dataset ids to
// file paths. Environment variables in the paths are expanded. The files
// must exist, but their format is not checked until they are requested.
func NewStaticDatasets(paths map[string]string) (StaticDatasets, error) {
	d := make(StaticDatasets, len(paths))
	for id, p := range paths {
		if id == "" {
			return nil, fmt.Errorf("metaserve: dataset with path %s has an empty id", p)
		}
		f, err := gridmeta.NewFile(id, os.ExpandEnv(p))
		if err != nil {
			return nil, fmt.Errorf("metaserve: dataset %s: %v", id, err)
		}
		d[id] = f.Path
	}
	return d, nil
}

// Dataset implements Datasets. A dataset whose file has been removed is
// not found.
func (d StaticDatasets) Dataset(id string) (gridmeta.Dataset, bool) {
	p, ok := d[id]
	if !ok {
		return nil, false
	}
	f, err := gridmeta.NewFile(id, p)
	if err != nil {
		return nil, false
	}
	return f, true
}

// IDs implements Datasets.
func (d StaticDatasets) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
