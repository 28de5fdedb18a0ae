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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridmeta"
	"github.com/spatialmodel/gridmeta/cache"
	"github.com/spatialmodel/gridmeta/cache/rediscache"
	"github.com/spatialmodel/gridmeta/formats/geotiff"
	"github.com/spatialmodel/gridmeta/formats/grib"
	"github.com/spatialmodel/gridmeta/formats/hdf5"
	"github.com/spatialmodel/gridmeta/formats/netcdf"
	"github.com/spatialmodel/gridmeta/internal/metrics"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Log is the logger used by the commands.
var Log = logrus.New()

// setLogging sets the level and format of Log.
func setLogging(cfg *viper.Viper) error {
	lvl, err := logrus.ParseLevel(cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("gridmeta: %v", err)
	}
	Log.SetLevel(lvl)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	return nil
}

// Candidates returns the extractors for all of the formats that gridmeta
// knows about. Whether each of them can be used is determined when they
// are loaded into a registry.
func Candidates() []gridmeta.Candidate {
	return []gridmeta.Candidate{
		netcdf.Candidate(),
		hdf5.Candidate(),
		geotiff.Candidate(),
		grib.Candidate(),
	}
}

// NewRegistry loads all of the Candidates into a registry.
func NewRegistry(log logrus.FieldLogger) *gridmeta.Registry {
	return gridmeta.LoadRegistry(log, Candidates()...)
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return make(map[string]string), nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return make(map[string]string), nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("gridmeta: invalid value for %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("gridmeta: invalid type for %s: %#v", varName, i)
	}
}

// HideList returns the attributes that should be hidden, as specified by
// the HideAttrs configuration variable. HideAttrs can be a list of names
// to hide for every format, or a map of format names to lists of names.
// From the command line or environment, a list is given as a
// comma-separated string and a map as a json object.
func HideList(cfg *viper.Viper) (gridmeta.HideList, error) {
	i := cfg.Get("HideAttrs")
	switch v := i.(type) {
	case nil:
		return gridmeta.HideAll(), nil
	case []string, []interface{}:
		names, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("gridmeta: invalid value for HideAttrs: %v", err)
		}
		return gridmeta.HideAll(names...), nil
	case map[string]interface{}, map[string][]string:
		m, err := cast.ToStringMapStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("gridmeta: invalid value for HideAttrs: %v", err)
		}
		return gridmeta.HideByFormat(m)
	case string:
		s := strings.TrimSpace(v)
		switch {
		case s == "":
			return gridmeta.HideAll(), nil
		case strings.HasPrefix(s, "{"):
			m := make(map[string][]string)
			if err := json.Unmarshal([]byte(s), &m); err != nil {
				return nil, fmt.Errorf("gridmeta: invalid value for HideAttrs: %v", err)
			}
			return gridmeta.HideByFormat(m)
		case strings.HasPrefix(s, "["):
			var names []string
			if err := json.Unmarshal([]byte(s), &names); err != nil {
				return nil, fmt.Errorf("gridmeta: invalid value for HideAttrs: %v", err)
			}
			return gridmeta.HideAll(names...), nil
		default:
			var names []string
			for _, n := range strings.Split(s, ",") {
				if n = strings.TrimSpace(n); n != "" {
					names = append(names, n)
				}
			}
			return gridmeta.HideAll(names...), nil
		}
	default:
		return nil, fmt.Errorf("gridmeta: invalid type for HideAttrs: %#v", i)
	}
}

// CacheConfig returns the in-process cache settings.
func CacheConfig(cfg *viper.Viper) cache.Config {
	return cache.Config{
		MaxCost:     cfg.GetInt64("Cache.MaxCost"),
		NumCounters: cfg.GetInt64("Cache.NumCounters"),
		BufferItems: cfg.GetInt64("Cache.BufferItems"),
	}
}

// RedisConfig returns the Redis settings. The returned bool is false if
// no Redis server is configured.
func RedisConfig(cfg *viper.Viper) (rediscache.Config, bool) {
	c := rediscache.Config{
		URL:    cfg.GetString("Redis.URL"),
		TTL:    cfg.GetDuration("Redis.TTL"),
		Prefix: cfg.GetString("Redis.Prefix"),
	}
	return c, c.URL != ""
}

// NewCache creates the cache described by cfg: an in-process cache,
// backed by Redis if Redis.URL is set. Attributes in Redis are only shared
// between servers with the same hide list. The returned function releases
// the cache's resources.
func NewCache(cfg *viper.Viper, hide gridmeta.HideList, m *metrics.Metrics) (gridmeta.Cache, func(), error) {
	cc := CacheConfig(cfg)
	cc.Metrics = m
	cc.Log = Log
	local, err := cache.New(cc)
	if err != nil {
		return nil, nil, err
	}
	rc, ok := RedisConfig(cfg)
	if !ok {
		return local, local.Close, nil
	}
	shared, err := rediscache.New(rc)
	if err != nil {
		local.Close()
		return nil, nil, err
	}
	shared.Log = Log
	Log.WithField("prefix", rc.Prefix).Info("sharing file attributes through redis")
	closeAll := func() {
		local.Close()
		if err := shared.Close(); err != nil {
			Log.WithError(err).Warn("closing redis connection")
		}
	}
	return &cache.Layered{
		Local:     local,
		Shared:    shared,
		Namespace: hide.Fingerprint() + ":",
	}, closeAll, nil
}

// NewService creates a metadata service from the configuration. The
// returned function releases the service's resources.
func NewService(cfg *viper.Viper, m *metrics.Metrics) (*gridmeta.Service, func(), error) {
	hide, err := HideList(cfg)
	if err != nil {
		return nil, nil, err
	}
	c, closeCache, err := NewCache(cfg, hide, m)
	if err != nil {
		return nil, nil, err
	}
	svc := gridmeta.NewService(NewRegistry(Log), hide, c)
	svc.Log = Log
	svc.Metrics = m
	return svc, closeCache, nil
}
