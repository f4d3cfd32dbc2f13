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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDict(t *testing.T) {
	dict := NewDict(0)
	id, added := dict.Add("a")
	assert.Equal(t, 0, id)
	assert.True(t, added)
	id, added = dict.Add("b")
	assert.Equal(t, 1, id)
	assert.True(t, added)
	id, added = dict.Add("a")
	assert.Equal(t, 0, id)
	assert.False(t, added)
	assert.Equal(t, 2, dict.Count())

	id, ok := dict.Id("b")
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	_, ok = dict.Id("c")
	assert.False(t, ok)

	s, ok := dict.String(1)
	assert.True(t, ok)
	assert.Equal(t, "b", s)
	_, ok = dict.String(2)
	assert.False(t, ok)
	_, ok = dict.String(-1)
	assert.False(t, ok)

	strs := dict.Strings()
	assert.Equal(t, []string{"a", "b"}, strs)
	strs[0] = "z"
	assert.Equal(t, []string{"a", "b"}, dict.Strings())
}
