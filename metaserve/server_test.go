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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/gridmeta"
	"github.com/spatialmodel/gridmeta/formats/geotiff"
	"github.com/spatialmodel/gridmeta/formats/grib"
	"github.com/spatialmodel/gridmeta/formats/netcdf"
	"github.com/spatialmodel/gridmeta/internal/metrics"
)

func writeNetCDF(t *testing.T, path string) {
	t.Helper()
	h := cdf.NewHeader([]string{"x"}, []int{2})
	h.AddAttribute("", "Conventions", "CF-1.6")
	h.AddAttribute("", "title", "Example Data")
	h.AddAttribute("", "platform", "Model")
	h.AddAttribute("", "description", "made up for testing")
	h.AddAttribute("", "references", "none")
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.Define()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := cdf.Create(f, h); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testServer(t *testing.T) (*httptest.Server, *metrics.Metrics, *gridmeta.Service) {
	t.Helper()
	dir := t.TempDir()
	writeNetCDF(t, filepath.Join(dir, "air.nc"))
	touch(t, filepath.Join(dir, "elev.tif"))
	touch(t, filepath.Join(dir, "forecast.grib"))
	touch(t, filepath.Join(dir, "table.csv"))

	datasets, err := NewStaticDatasets(map[string]string{
		"air":      filepath.Join(dir, "air.nc"),
		"elev":     filepath.Join(dir, "elev.tif"),
		"forecast": filepath.Join(dir, "forecast.grib"),
		"table":    filepath.Join(dir, "table.csv"),
	})
	if err != nil {
		t.Fatal(err)
	}

	log, _ := test.NewNullLogger()
	reg := gridmeta.LoadRegistry(log, netcdf.Candidate(), geotiff.Candidate(), grib.Candidate())
	hide, err := gridmeta.HideByFormat(map[string][]string{"netcdf": {"platform", "description"}})
	if err != nil {
		t.Fatal(err)
	}
	svc := gridmeta.NewService(reg, hide, nil)
	svc.Log = log

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	svc.Metrics = m
	s := NewServer(svc, datasets, m, promReg)
	s.Log = log
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts, m, svc
}

func get(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: content type %q", url, ct)
		}
		if err := json.Unmarshal(b, v); err != nil {
			t.Fatalf("%s: %v: %s", url, err, b)
		}
	}
	return resp.StatusCode
}

type detail struct {
	Detail string `json:"detail"`
}

func TestServer(t *testing.T) {
	ts, m, svc := testServer(t)
	base := ts.URL + "/datasets/air" + Prefix

	t.Run("metadata", func(t *testing.T) {
		var md gridmeta.FileMetadata
		if code := get(t, base, &md); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if md.Format != gridmeta.NetCDF {
			t.Errorf("format = %s", md.Format)
		}
		want := []string{"Conventions", "title", "references"}
		if diff := cmp.Diff(want, md.Attrs.Names()); diff != "" {
			t.Errorf("names (-want +have):\n%s", diff)
		}
		if code := get(t, base+"/", &md); code != http.StatusOK {
			t.Errorf("trailing slash: status %d", code)
		}
	})

	t.Run("format", func(t *testing.T) {
		var f string
		if code := get(t, base+"/format", &f); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if f != "netcdf" {
			t.Errorf("format = %s", f)
		}
	})

	t.Run("attrs", func(t *testing.T) {
		var attrs gridmeta.AttributeMap
		if code := get(t, base+"/attrs", &attrs); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		var names []string
		if code := get(t, base+"/attr-names", &names); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if diff := cmp.Diff(attrs.Names(), names); diff != "" {
			t.Errorf("attr-names differs from attrs (-attrs +names):\n%s", diff)
		}
		if _, ok := attrs.Get("platform"); ok {
			t.Error("platform should be hidden")
		}
	})

	t.Run("attr", func(t *testing.T) {
		var v string
		if code := get(t, base+"/attrs/Conventions", &v); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if v != "CF-1.6" {
			t.Errorf("Conventions = %q", v)
		}
	})

	t.Run("hidden attr", func(t *testing.T) {
		var hidden, absent detail
		if code := get(t, base+"/attrs/platform", &hidden); code != http.StatusNotFound {
			t.Errorf("hidden: status %d", code)
		}
		if code := get(t, base+"/attrs/nonexistent", &absent); code != http.StatusNotFound {
			t.Errorf("absent: status %d", code)
		}
		if !strings.Contains(hidden.Detail, "/attr-names") {
			t.Errorf("detail should name the attr-names endpoint: %q", hidden.Detail)
		}
		if strings.Replace(hidden.Detail, "platform", "nonexistent", 1) != absent.Detail {
			t.Errorf("hidden and absent attributes are reported differently: %q, %q", hidden.Detail, absent.Detail)
		}
	})

	t.Run("supported", func(t *testing.T) {
		for _, url := range []string{ts.URL + "/supported", base + "/supported"} {
			var formats []gridmeta.FormatKey
			if code := get(t, url, &formats); code != http.StatusOK {
				t.Fatalf("%s: status %d", url, code)
			}
			if diff := cmp.Diff(svc.Supported(), formats); diff != "" {
				t.Errorf("%s (-want +have):\n%s", url, diff)
			}
		}
	})

	t.Run("unregistered format", func(t *testing.T) {
		if isSupported(svc, gridmeta.GeoTIFF) {
			t.Skip("built with gdal")
		}
		var d detail
		if code := get(t, ts.URL+"/datasets/elev"+Prefix, &d); code != http.StatusNotFound {
			t.Errorf("status %d", code)
		}
		if d.Detail == "" {
			t.Error("no detail")
		}
		var f string
		if code := get(t, ts.URL+"/datasets/elev"+Prefix+"/format", &f); code != http.StatusOK || f != "geotiff" {
			t.Errorf("format: status %d, format %q", code, f)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		var d detail
		if code := get(t, ts.URL+"/datasets/table"+Prefix+"/format", &d); code != http.StatusNotFound {
			t.Errorf("status %d", code)
		}
	})

	t.Run("not implemented", func(t *testing.T) {
		var d detail
		if code := get(t, ts.URL+"/datasets/forecast"+Prefix+"/attrs", &d); code != http.StatusNotImplemented {
			t.Errorf("status %d", code)
		}
	})

	t.Run("unknown dataset", func(t *testing.T) {
		var d detail
		if code := get(t, ts.URL+"/datasets/missing"+Prefix, &d); code != http.StatusNotFound {
			t.Errorf("status %d", code)
		}
	})

	t.Run("datasets", func(t *testing.T) {
		var ids []string
		if code := get(t, ts.URL+"/datasets", &ids); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if diff := cmp.Diff([]string{"air", "elev", "forecast", "table"}, ids); diff != "" {
			t.Errorf("ids (-want +have):\n%s", diff)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		if code := get(t, ts.URL+"/metrics", nil); code != http.StatusOK {
			t.Errorf("status %d", code)
		}
		if n := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("format", "200")); n < 1 {
			t.Errorf("format requests = %g", n)
		}
		if n := testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("grib", "not_implemented")); n != 1 {
			t.Errorf("grib extractions = %g", n)
		}
	})
}

func isSupported(svc *gridmeta.Service, f gridmeta.FormatKey) bool {
	for _, ff := range svc.Supported() {
		if ff == f {
			return true
		}
	}
	return false
}

func TestNewStaticDatasets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.nc")
	touch(t, path)
	t.Setenv("GRIDMETA_TEST_DIR", dir)

	d, err := NewStaticDatasets(map[string]string{"a": "$GRIDMETA_TEST_DIR/a.nc"})
	if err != nil {
		t.Fatal(err)
	}
	ds, ok := d.Dataset("a")
	if !ok {
		t.Fatal("dataset a not found")
	}
	if ds.Source() != path || ds.ID() != "a" {
		t.Errorf("dataset = %s %s", ds.ID(), ds.Source())
	}
	v1 := ds.(gridmeta.Versioned).Version()
	if v1 == "" {
		t.Error("dataset has no version")
	}
	if err := os.WriteFile(path, []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, _ = d.Dataset("a")
	if v2 := ds.(gridmeta.Versioned).Version(); v2 == v1 {
		t.Error("version unchanged after the file was modified")
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Dataset("a"); ok {
		t.Error("removed file still found")
	}

	if _, err := NewStaticDatasets(map[string]string{"b": filepath.Join(dir, "b.nc")}); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := NewStaticDatasets(map[string]string{"d": dir}); err == nil {
		t.Error("expected an error for a directory")
	}
}
