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

package cache

import (
	"github.com/spatialmodel/gridmeta"
)

// Layered is a gridmeta.Cache with a fast local tier and a shared tier,
// such as a Redis cache used by several servers. File handles only go to
// the local tier; attribute maps go to both.
type Layered struct {
	Local  gridmeta.Cache
	Shared gridmeta.Cache

	// Namespace is prepended to keys in the shared tier. Attribute maps
	// are stored with hidden attributes already removed, so servers with
	// different hide lists must use different namespaces.
	Namespace string
}

// Get returns the value from the local tier if it is there, or else from
// the shared tier. Values found in the shared tier are copied to the local
// tier.
func (l *Layered) Get(key string) (interface{}, bool) {
	if v, ok := l.Local.Get(key); ok {
		return v, true
	}
	if l.Shared == nil {
		return nil, false
	}
	v, ok := l.Shared.Get(l.Namespace + key)
	if !ok {
		return nil, false
	}
	l.Local.Put(key, v, gridmeta.AttrsCost)
	return v, true
}

// Put stores value in the local tier, and in the shared tier if it is an
// attribute map.
func (l *Layered) Put(key string, value interface{}, cost int64) {
	l.Local.Put(key, value, cost)
	if _, ok := value.(*gridmeta.AttributeMap); ok && l.Shared != nil {
		l.Shared.Put(l.Namespace+key, value, cost)
	}
}
