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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// AttributeMap is a set of attribute names and their string values that
// remembers the order the attributes were added in.
// An AttributeMap must not be modified after it has been stored in a Cache.
type AttributeMap struct {
	names  []string
	values map[string]string
}

// NewAttributeMap returns an empty AttributeMap.
func NewAttributeMap() *AttributeMap {
	return &AttributeMap{values: make(map[string]string)}
}

// Set sets the value of attribute name. Setting an attribute that
// already exists replaces its value but keeps its position.
func (a *AttributeMap) Set(name, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[name]; !ok {
		a.names = append(a.names, name)
	}
	a.values[name] = value
}

// SetValue stringifies v and sets it as the value of attribute name.
func (a *AttributeMap) SetValue(name string, v interface{}) {
	a.Set(name, Stringify(v))
}

// Get returns the value of attribute name.
func (a *AttributeMap) Get(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a.values[name]
	return v, ok
}

// Names returns the attribute names in insertion order.
func (a *AttributeMap) Names() []string {
	if a == nil {
		return []string{}
	}
	o := make([]string, len(a.names))
	copy(o, a.names)
	return o
}

// Len returns the number of attributes.
func (a *AttributeMap) Len() int {
	if a == nil {
		return 0
	}
	return len(a.names)
}

// Without returns a copy of a that does not contain any of the attributes
// in hide.
func (a *AttributeMap) Without(hide HideSet) *AttributeMap {
	o := NewAttributeMap()
	if a == nil {
		return o
	}
	for _, n := range a.names {
		if hide.Contains(n) {
			continue
		}
		o.Set(n, a.values[n])
	}
	return o
}

// Map returns the attributes as a Go map.
func (a *AttributeMap) Map() map[string]string {
	o := make(map[string]string, a.Len())
	if a == nil {
		return o
	}
	for k, v := range a.values {
		o[k] = v
	}
	return o
}

// MarshalJSON encodes a as a JSON object, keeping the attribute order.
func (a *AttributeMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, n := range a.Names() {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.values[n])
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into a, keeping the attribute order.
func (a *AttributeMap) UnmarshalJSON(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))
	t, err := d.Token()
	if err != nil {
		return err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("gridmeta: attributes must be a JSON object")
	}
	*a = AttributeMap{values: make(map[string]string)}
	for d.More() {
		t, err := d.Token()
		if err != nil {
			return err
		}
		name := t.(string)
		var v string
		if err := d.Decode(&v); err != nil {
			return fmt.Errorf("gridmeta: attribute %s: %v", name, err)
		}
		a.Set(name, v)
	}
	_, err = d.Token()
	return err
}

// FileMetadata is the result of reading the metadata of a file.
type FileMetadata struct {
	Format FormatKey     `json:"format"`
	Attrs  *AttributeMap `json:"attrs"`
}

// Stringify converts an attribute value to a string. Strings are returned
// as-is, arrays with a single element are treated as scalars, and
// other arrays are written as space-separated lists in brackets.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float32:
		return formatFloat(float64(t), 32)
	case float64:
		return formatFloat(t, 64)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 1 {
			return Stringify(rv.Index(0).Interface())
		}
		s := make([]string, rv.Len())
		for i := range s {
			s[i] = Stringify(rv.Index(i).Interface())
		}
		return "[" + strings.Join(s, " ") + "]"
	case reflect.Ptr:
		if rv.IsNil() {
			return "None"
		}
		return Stringify(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
