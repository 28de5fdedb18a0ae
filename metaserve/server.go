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

// Package metaserve serves the file metadata of gridded datasets over HTTP.
//
// For a dataset with id {id}, the routes are:
//
//	GET /datasets/{id}/file-metadata                  format and attributes
//	GET /datasets/{id}/file-metadata/format           format
//	GET /datasets/{id}/file-metadata/attrs            attributes
//	GET /datasets/{id}/file-metadata/attr-names       attribute names
//	GET /datasets/{id}/file-metadata/attrs/{name}     value of one attribute
//	GET /datasets/{id}/file-metadata/supported        supported formats
//
// Additionally, /supported lists the supported formats, /datasets lists
// the dataset ids and /metrics serves Prometheus metrics.
package metaserve

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridmeta"
	"github.com/spatialmodel/gridmeta/internal/metrics"
)

// Prefix is the path, below each dataset, that the metadata routes are
// served under.
const Prefix = "/file-metadata"

// Server is an http.Handler for file metadata requests.
type Server struct {
	svc      *gridmeta.Service
	datasets Datasets
	mux      *http.ServeMux
	metrics  *metrics.Metrics

	// Log receives request errors.
	Log logrus.FieldLogger
}

// NewServer creates a new server. m and g may be nil, in which case no
// metrics are recorded or served.
func NewServer(svc *gridmeta.Service, datasets Datasets, m *metrics.Metrics, g prometheus.Gatherer) *Server {
	s := &Server{
		svc:      svc,
		datasets: datasets,
		mux:      http.NewServeMux(),
		metrics:  m,
		Log:      logrus.StandardLogger(),
	}
	m.SetSupportedFormats(len(svc.Supported()))

	base := "/datasets/{id}" + Prefix
	s.handle("GET /supported", "supported", s.supported)
	s.handle("GET /datasets", "datasets", s.listDatasets)
	s.handle("GET "+base, "metadata", s.withDataset(s.metadata))
	s.handle("GET "+base+"/{$}", "metadata", s.withDataset(s.metadata))
	s.handle("GET "+base+"/format", "format", s.withDataset(s.format))
	s.handle("GET "+base+"/attrs", "attrs", s.withDataset(s.attrs))
	s.handle("GET "+base+"/attr-names", "attr-names", s.withDataset(s.attrNames))
	s.handle("GET "+base+"/attrs/{name}", "attr", s.withDataset(s.attr))
	s.handle("GET "+base+"/supported", "supported", s.supported)
	if g != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handle registers h under pattern, recording metrics under route.
func (s *Server) handle(pattern, route string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		s.metrics.RecordRequest(route, strconv.Itoa(sw.status), time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type datasetHandler func(w http.ResponseWriter, r *http.Request, ds gridmeta.Dataset)

// withDataset looks up the dataset named in the request path.
func (s *Server) withDataset(h datasetHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		ds, ok := s.datasets.Dataset(id)
		if !ok {
			s.writeError(w, r, http.StatusNotFound, fmt.Sprintf("Dataset not found: %s", id))
			return
		}
		h(w, r, ds)
	}
}

func (s *Server) supported(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.svc.Supported())
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.datasets.IDs())
}

func (s *Server) metadata(w http.ResponseWriter, r *http.Request, ds gridmeta.Dataset) {
	md, err := s.svc.Metadata(ds)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.writeJSON(w, r, md)
}

func (s *Server) format(w http.ResponseWriter, r *http.Request, ds gridmeta.Dataset) {
	f, err := s.svc.Format(ds)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.writeJSON(w, r, f)
}

func (s *Server) attrs(w http.ResponseWriter, r *http.Request, ds gridmeta.Dataset) {
	attrs, err := s.svc.Attrs(ds)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.writeJSON(w, r, attrs)
}

func (s *Server) attrNames(w http.ResponseWriter, r *http.Request, ds gridmeta.Dataset) {
	names, err := s.svc.AttrNames(ds)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.writeJSON(w, r, names)
}

func (s *Server) attr(w http.ResponseWriter, r *http.Request, ds gridmeta.Dataset) {
	name := r.PathValue("name")
	v, err := s.svc.Attr(ds, name)
	if errors.Is(err, gridmeta.ErrAttributeNotFound) {
		s.writeError(w, r, http.StatusNotFound, fmt.Sprintf(
			"File attribute not found: %s! Use /datasets/%s%s/attr-names to list available attributes.",
			name, ds.ID(), Prefix))
		return
	} else if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.writeJSON(w, r, v)
}

// serviceError writes err with a status code that depends on its kind.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gridmeta.ErrUnsupportedFormat), errors.Is(err, gridmeta.ErrAttributeNotFound):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, gridmeta.ErrNotImplemented):
		s.writeError(w, r, http.StatusNotImplemented, err.Error())
	default:
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	if status >= http.StatusInternalServerError {
		s.Log.WithFields(logrus.Fields{"path": r.URL.Path, "status": status}).Error(detail)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Detail string `json:"detail"`
	}{Detail: detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}
