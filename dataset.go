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
	"os"
	"path/filepath"

	"github.com/spatialmodel/gridmeta/internal/hash"
)

// Dataset is a gridded dataset that is being served.
type Dataset interface {
	// ID returns a token that identifies the dataset. It is used to
	// build cache keys, so it must be unique among the served datasets.
	ID() string

	// Source returns the path of the file the dataset was read from.
	Source() string
}

// Versioned is implemented by datasets whose source file can change
// while their ID stays the same. The version is part of the dataset's
// cache keys, so entries cached for one version of a file are never
// returned for another.
type Versioned interface {
	Version() string
}

// File is a Dataset backed by a file on disk.
type File struct {
	Identity string
	Path     string

	// Stamp identifies the contents of the file. It is empty if the
	// contents are not tracked.
	Stamp string
}

// ID implements Dataset.
func (f *File) ID() string { return f.Identity }

// Source implements Dataset.
func (f *File) Source() string { return f.Path }

// Version implements Versioned.
func (f *File) Version() string { return f.Stamp }

// fileStamp is hashed to derive the Stamp of a File.
type fileStamp struct {
	Path    string
	Size    int64
	ModTime int64
}

// NewFile returns a File with the given id for the file at path, stamped
// with the absolute path, size and modification time of the file, so a
// file that changes gets a new version.
func NewFile(id, path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("gridmeta: %v", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("gridmeta: %v", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("gridmeta: %s is a directory", abs)
	}
	return &File{
		Identity: id,
		Path:     abs,
		Stamp:    hash.Hash(fileStamp{Path: abs, Size: fi.Size(), ModTime: fi.ModTime().UnixNano()}),
	}, nil
}

// OpenFile returns a File for the file at path, identified by its
// absolute path.
func OpenFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("gridmeta: %v", err)
	}
	return NewFile(abs, abs)
}
