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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridmeta/internal/metrics"
)

// extractionWorkers is the maximum number of extractions a Service runs
// at the same time.
const extractionWorkers = 64

// Service answers metadata requests for datasets by dispatching them to the
// Extractor registered for each dataset's format.
type Service struct {
	registry *Registry
	hide     HideList
	cache    Cache

	// inflight merges concurrent extractions of the same dataset.
	inflight *requestcache.Cache

	// Log receives diagnostic messages. It defaults to the logrus
	// standard logger.
	Log logrus.FieldLogger

	// Metrics, if not nil, records extraction counts and timings.
	Metrics *metrics.Metrics
}

// NewService creates a new Service. The registry and hide list must not be
// modified after they are passed to NewService. If c is nil, nothing is
// cached.
func NewService(r *Registry, hide HideList, c Cache) *Service {
	if c == nil {
		c = NopCache{}
	}
	s := &Service{
		registry: r,
		hide:     hide,
		cache:    c,
		Log:      logrus.StandardLogger(),
	}
	s.inflight = requestcache.NewCache(s.extract, extractionWorkers, requestcache.Deduplicate())
	return s
}

// extraction is a request to read the metadata of a dataset.
type extraction struct {
	ds     Dataset
	format FormatKey
	e      Extractor
}

// extract is the requestcache.ProcessFunc for extractions.
func (s *Service) extract(_ context.Context, payload interface{}) (interface{}, error) {
	x := payload.(extraction)
	start := time.Now()
	md, err := x.e.FileMetadata(x.ds, s.cache, s.hide.For(x.format))
	s.Metrics.RecordExtraction(string(x.format), extractionStatus(err), time.Since(start))
	return md, err
}

// Supported returns the formats that have a registered Extractor.
func (s *Service) Supported() []FormatKey { return s.registry.Supported() }

// Hidden returns the attribute names hidden for format f.
func (s *Service) Hidden(f FormatKey) HideSet { return s.hide.For(f) }

// Format returns the format of ds, based on its source path.
func (s *Service) Format(ds Dataset) (FormatKey, error) {
	f, err := Identify(ds.Source())
	if err != nil {
		return "", &Error{Op: "format", Dataset: ds.ID(), Err: err}
	}
	return f, nil
}

// Metadata returns the format and the visible attributes of ds.
func (s *Service) Metadata(ds Dataset) (*FileMetadata, error) {
	f, err := Identify(ds.Source())
	if err != nil {
		return nil, &Error{Op: "metadata", Dataset: ds.ID(), Err: err}
	}
	e, ok := s.registry.Lookup(f)
	if !ok {
		err = fmt.Errorf("no extractor is registered for format %s: %w", f, ErrUnsupportedFormat)
		return nil, &Error{Op: "metadata", Dataset: ds.ID(), Err: err}
	}

	// Requests for a dataset that is already being read wait for and share
	// the result of that read.
	req := s.inflight.NewRequest(context.Background(), extraction{ds: ds, format: f, e: e}, AttrsKey(ds, f))
	v, err := req.Result()
	if err != nil {
		s.Log.WithFields(logrus.Fields{
			"dataset": ds.ID(),
			"format":  f,
			"source":  ds.Source(),
		}).WithError(err).Warn("failed to read file metadata")
		return nil, &Error{Op: "metadata", Dataset: ds.ID(), Err: err}
	}
	md := v.(*FileMetadata)
	return &FileMetadata{Format: md.Format, Attrs: md.Attrs.Without(nil)}, nil
}

func extractionStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotImplemented):
		return "not_implemented"
	default:
		return "error"
	}
}

// Attrs returns the visible attributes of ds.
func (s *Service) Attrs(ds Dataset) (*AttributeMap, error) {
	md, err := s.Metadata(ds)
	if err != nil {
		return nil, err
	}
	return md.Attrs, nil
}

// AttrNames returns the names of the visible attributes of ds, in the same
// order as Attrs.
func (s *Service) AttrNames(ds Dataset) ([]string, error) {
	attrs, err := s.Attrs(ds)
	if err != nil {
		return nil, err
	}
	return attrs.Names(), nil
}

// Attr returns the value of attribute name of ds. Attributes that are hidden
// are reported as not found, the same as attributes that do not exist.
func (s *Service) Attr(ds Dataset, name string) (string, error) {
	attrs, err := s.Attrs(ds)
	if err != nil {
		return "", err
	}
	v, ok := attrs.Get(name)
	if !ok {
		return "", &Error{Op: "attr", Dataset: ds.ID(), Err: fmt.Errorf("%q: %w", name, ErrAttributeNotFound)}
	}
	return v, nil
}
