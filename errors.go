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
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when a file extension is not recognized
	// or when no Extractor is registered for the recognized format.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrAttributeNotFound is returned when a requested attribute does not
	// exist or is hidden.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrExtractorUnavailable is returned by Candidate.Load when a library
	// the Extractor needs is not available in this build.
	ErrExtractorUnavailable = errors.New("extractor unavailable")

	// ErrNotImplemented is returned when a format is registered but reading
	// its attributes has not been implemented.
	ErrNotImplemented = errors.New("not implemented")
)

// Error records a failed Service operation on a dataset.
type Error struct {
	Op      string // e.g. "metadata", "attr"
	Dataset string // dataset identity
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gridmeta: %s %s: %v", e.Op, e.Dataset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
