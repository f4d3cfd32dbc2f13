// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

// Dict assigns dense indices to identifiers in insertion order.
type Dict struct {
	si map[string]int
	is []string
}

func NewDict(capacity int) *Dict {
	return &Dict{
		si: make(map[string]int, capacity),
		is: make([]string, 0, capacity),
	}
}

func (d *Dict) Count() int {
	return len(d.is)
}

// Add inserts s and returns its index. The second return value is false if s
// has been added before.
func (d *Dict) Add(s string) (int, bool) {
	if y, ok := d.si[s]; ok {
		return y, false
	}
	y := len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	return y, true
}

func (d *Dict) Id(s string) (int, bool) {
	y, ok := d.si[s]
	return y, ok
}

func (d *Dict) String(id int) (s string, ok bool) {
	if id < 0 || id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

// Strings returns a copy of all identifiers in insertion order.
func (d *Dict) Strings() []string {
	return append([]string(nil), d.is...)
}
