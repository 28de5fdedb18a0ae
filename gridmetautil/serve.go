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

package gridmetautil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridmeta"
	"github.com/spatialmodel/gridmeta/internal/metrics"
	"github.com/spatialmodel/gridmeta/metaserve"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// NewServer creates a metadata server from the configuration, along with
// a function that releases its resources.
func NewServer(cfg *viper.Viper) (*metaserve.Server, func(), error) {
	paths, err := GetStringMapString("Datasets", cfg)
	if err != nil {
		return nil, nil, err
	}
	datasets, err := metaserve.NewStaticDatasets(paths)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	svc, release, err := NewService(cfg, m)
	if err != nil {
		return nil, nil, err
	}
	s := metaserve.NewServer(svc, datasets, m, reg)
	s.Log = Log
	return s, release, nil
}

// Serve runs a metadata server until ctx is canceled.
func Serve(ctx context.Context, cfg *viper.Viper) error {
	s, release, err := NewServer(cfg)
	if err != nil {
		return err
	}
	defer release()

	addr := cfg.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		Log.WithField("addr", addr).Info("serving file metadata")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("gridmeta: %v", err)
	case <-ctx.Done():
	}
	Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gridmeta: shutting down: %v", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gridmeta: %v", err)
	}
	return nil
}

// inspection is the output of Inspect for one file.
type inspection struct {
	Path   string                 `json:"path"`
	Format gridmeta.FormatKey     `json:"format,omitempty"`
	Attrs  *gridmeta.AttributeMap `json:"attrs,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// Inspect reads the metadata of the given files, at most Concurrency at a
// time, and writes one json object per file to w, in the order of paths.
// Files that can't be read are reported in the output and the returned
// error, but don't stop the other files from being read.
func Inspect(ctx context.Context, cfg *viper.Viper, w io.Writer, paths ...string) error {
	svc, release, err := NewService(cfg, nil)
	if err != nil {
		return err
	}
	defer release()

	results := make([]inspection, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.GetInt("Concurrency"), 1))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = inspect(svc, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e := json.NewEncoder(w)
	var failed int
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		if err := e.Encode(r); err != nil {
			return fmt.Errorf("gridmeta: writing output: %v", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("gridmeta: metadata could not be read from %d of %d files", failed, len(paths))
	}
	return nil
}

func inspect(svc *gridmeta.Service, path string) inspection {
	r := inspection{Path: path}
	ds, err := gridmeta.OpenFile(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	md, err := svc.Metadata(ds)
	if err != nil {
		Log.WithFields(logrus.Fields{"path": path}).Debug(err)
		r.Error = err.Error()
		return r
	}
	r.Format = md.Format
	r.Attrs = md.Attrs
	return r
}
