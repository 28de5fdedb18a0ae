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

package hdf5

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spatialmodel/gridmeta"
)

func TestFileMetadata(t *testing.T) {
	ds := &gridmeta.File{Identity: "attrs", Path: filepath.Join("testdata", "attrs.hdf")}
	md, err := New().FileMetadata(ds, nil, gridmeta.NewHideSet("platform"))
	if err != nil {
		t.Fatal(err)
	}
	if md.Format != gridmeta.HDF5 {
		t.Errorf("format = %s", md.Format)
	}
	want := map[string]string{
		"Conventions": "CF-1.8",
		"references":  "none",
		"scale":       "[1.0 0.5]",
		"title":       "Example Data",
		"version":     "3",
	}
	if diff := cmp.Diff(want, md.Attrs.Map()); diff != "" {
		t.Errorf("attributes (-want +have):\n%s", diff)
	}
	// HDF5 files don't record the order of their attributes, so they are
	// sorted by name.
	order := []string{"Conventions", "references", "scale", "title", "version"}
	if diff := cmp.Diff(order, md.Attrs.Names()); diff != "" {
		t.Errorf("order (-want +have):\n%s", diff)
	}
}

func TestFileMetadataRepeatable(t *testing.T) {
	ds := &gridmeta.File{Identity: "attrs", Path: filepath.Join("testdata", "attrs.hdf")}
	first, err := New().FileMetadata(ds, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		md, err := New().FileMetadata(ds, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first.Attrs.Names(), md.Attrs.Names()); diff != "" {
			t.Fatalf("read %d (-first +have):\n%s", i, diff)
		}
	}
}

func TestNotHDF5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.hdf")
	if err := os.WriteFile(path, []byte("not an hdf5 file"), 0o644); err != nil {
		t.Fatal(err)
	}
	ds := &gridmeta.File{Identity: "text", Path: path}
	if _, err := New().FileMetadata(ds, nil, nil); err == nil {
		t.Error("expected an error")
	}
}

func TestCandidate(t *testing.T) {
	r := gridmeta.LoadRegistry(nil, Candidate())
	if _, ok := r.Lookup(gridmeta.HDF5); !ok {
		t.Error("hdf5 extractor did not load")
	}
}
