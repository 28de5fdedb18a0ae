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

	"github.com/sirupsen/logrus"
)

// Candidate is a possible Extractor for a format. Candidates are collected
// by the program that builds the Service and loaded with LoadRegistry.
type Candidate struct {
	// Name identifies the candidate in log messages.
	Name string

	// Format is the format the candidate reads.
	Format FormatKey

	// Load creates the Extractor. It should return an error wrapping
	// ErrExtractorUnavailable if a library the Extractor needs is missing.
	// The returned value is only registered if it implements Extractor.
	Load func() (interface{}, error)
}

// Registry holds the Extractors that are available. It is created once
// by LoadRegistry and is safe for concurrent use because it is never
// modified afterwards.
type Registry struct {
	extractors map[FormatKey]Extractor
	supported  []FormatKey
}

// LoadRegistry loads the candidates and returns a Registry of the ones that
// loaded successfully. A candidate that fails to load is logged and left
// out; it never prevents the other candidates from loading.
func LoadRegistry(log logrus.FieldLogger, candidates ...Candidate) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Registry{extractors: make(map[FormatKey]Extractor)}
	for _, c := range candidates {
		clog := log.WithFields(logrus.Fields{"candidate": c.Name, "format": c.Format})
		if !c.Format.Valid() {
			clog.Warnf("skipping file metadata extractor: unknown format %q", c.Format)
			continue
		}
		if _, dup := r.extractors[c.Format]; dup {
			clog.Warn("skipping file metadata extractor: format already registered")
			continue
		}
		e, err := loadCandidate(c)
		if errors.Is(err, ErrExtractorUnavailable) {
			clog.WithError(err).Warn(InstallHint(c.Format))
			continue
		} else if err != nil {
			clog.WithError(err).Warn("could not load file metadata extractor")
			continue
		}
		r.extractors[c.Format] = e
		clog.Debug("loaded file metadata extractor")
	}
	for _, f := range formats {
		if _, ok := r.extractors[f]; ok {
			r.supported = append(r.supported, f)
		}
	}
	return r
}

// loadCandidate calls c.Load and checks that the result is an Extractor.
// A panic in c.Load is turned into an error.
func loadCandidate(c Candidate) (e Extractor, err error) {
	if c.Load == nil {
		return nil, fmt.Errorf("gridmeta: candidate %s has no Load function", c.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, fmt.Errorf("gridmeta: loading candidate %s: %v", c.Name, r)
		}
	}()
	v, err := c.Load()
	if err != nil {
		return nil, err
	}
	e, ok := v.(Extractor)
	if !ok || e == nil {
		return nil, fmt.Errorf("gridmeta: candidate %s of type %T does not implement Extractor", c.Name, v)
	}
	return e, nil
}

// Lookup returns the Extractor for format f.
func (r *Registry) Lookup(f FormatKey) (Extractor, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.extractors[f]
	return e, ok
}

// Supported returns the formats that have a registered Extractor, in
// canonical order.
func (r *Registry) Supported() []FormatKey {
	o := []FormatKey{}
	if r == nil {
		return o
	}
	return append(o, r.supported...)
}
