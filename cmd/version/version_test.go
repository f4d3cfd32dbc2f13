// Copyright 2021 gorse Project Authors
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

package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfo(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(BuildInfo(), "\n"), "\n")
	assert.Len(t, lines, 7)
	assert.Equal(t, "filmrec", lines[0])
	assert.Equal(t, "  Version:     unknown-version", lines[1])
	assert.Equal(t, "  API version: v1", lines[2])
	assert.True(t, strings.HasPrefix(lines[5], "  Built:"))
}
