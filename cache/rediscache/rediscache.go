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

// Package rediscache is a gridmeta.Cache that keeps attribute maps in Redis,
// so that they can be shared between servers and survive restarts.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gridmeta"
)

// Config holds the Redis connection settings.
type Config struct {
	URL    string        // redis://<user>:<password>@<host>:<port>/<db>
	TTL    time.Duration // expiration of stored attribute maps; 0 means none
	Prefix string        // prepended to every key
}

// Cache stores attribute maps in Redis. Values of other types can't be
// shared between processes and are not stored.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	prefix  string
	timeout time.Duration

	// Log receives warnings when Redis can't be reached. Redis errors are
	// otherwise treated as cache misses.
	Log logrus.FieldLogger
}

// New connects to Redis and returns a new Cache.
func New(cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rediscache: invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("rediscache: failed to connect to redis: %w", err)
	}
	return &Cache{
		client:  client,
		ttl:     cfg.TTL,
		prefix:  cfg.Prefix,
		timeout: 2 * time.Second,
		Log:     logrus.StandardLogger(),
	}, nil
}

// pair is one attribute. Attribute maps are stored as a list of pairs so
// that their order is kept.
type pair struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Value string
}

func isAttrsKey(key string) bool { return strings.HasSuffix(key, "/attrs") }

// Get implements gridmeta.Cache.
func (c *Cache) Get(key string) (interface{}, bool) {
	if !isAttrsKey(key) {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	} else if err != nil {
		c.Log.WithError(err).WithField("key", key).Warn("rediscache: get failed")
		return nil, false
	}
	attrs, err := decode(b)
	if err != nil {
		c.Log.WithError(err).WithField("key", key).Warn("rediscache: invalid entry")
		return nil, false
	}
	return attrs, true
}

// Put implements gridmeta.Cache. The cost is ignored; entries expire after
// the configured TTL.
func (c *Cache) Put(key string, value interface{}, _ int64) {
	attrs, ok := value.(*gridmeta.AttributeMap)
	if !ok || !isAttrsKey(key) {
		if cl, ok := value.(io.Closer); ok {
			cl.Close()
		}
		return
	}
	b, err := encode(attrs)
	if err != nil {
		c.Log.WithError(err).WithField("key", key).Warn("rediscache: encoding failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.client.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		c.Log.WithError(err).WithField("key", key).Warn("rediscache: set failed")
	}
}

// Close closes the connection to Redis.
func (c *Cache) Close() error { return c.client.Close() }

func encode(attrs *gridmeta.AttributeMap) ([]byte, error) {
	names := attrs.Names()
	pairs := make([]pair, len(names))
	for i, n := range names {
		v, _ := attrs.Get(n)
		pairs[i] = pair{Name: n, Value: v}
	}
	return cbor.Marshal(pairs)
}

func decode(b []byte) (*gridmeta.AttributeMap, error) {
	var pairs []pair
	if err := cbor.Unmarshal(b, &pairs); err != nil {
		return nil, err
	}
	attrs := gridmeta.NewAttributeMap()
	for _, p := range pairs {
		attrs.Set(p.Name, p.Value)
	}
	return attrs, nil
}
