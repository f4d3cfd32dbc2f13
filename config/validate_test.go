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

package config

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, GetDefaultConfig().Validate())

	for _, source := range []string{"file://a.json", "sqlite://a.db", "redis://localhost:6379/0", "rediss://localhost:6379/0"} {
		config := GetDefaultConfig()
		config.Data.Source = source
		assert.NoError(t, config.Validate(), source)
	}

	config := GetDefaultConfig()
	config.Data.Source = "mongodb://localhost:27017"
	err := config.Validate()
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "Config.Data.Source")
	assert.Contains(t, err.Error(), "sqlite://")

	config = GetDefaultConfig()
	config.Data.Source = ""
	err = config.Validate()
	assert.True(t, errors.Is(err, errors.NotValid))

	config = GetDefaultConfig()
	config.Server.Port = 70000
	config.Recommend.ExplainLimit = -1
	err = config.Validate()
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "Config.Server.Port")
	assert.Contains(t, err.Error(), "Config.Recommend.ExplainLimit")
}
