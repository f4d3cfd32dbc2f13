// Copyright 2020 gorse Project Authors
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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("config.toml.template")
	assert.NoError(t, err)
	// [data]
	assert.Equal(t, "sqlite://filmrec.db", config.Data.Source)
	assert.Equal(t, "filmrec_", config.Data.TablePrefix)
	// [server]
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 8087, config.Server.Port)
	assert.Equal(t, "", config.Server.APIKey)
	assert.Equal(t, 10*time.Minute, config.Server.ReloadPeriod)
	assert.Equal(t, 0, config.Server.RequestsPerSecond)
	assert.Equal(t, time.Minute, config.Server.CacheTTL)
	// [recommend]
	assert.Equal(t, 20, config.Recommend.ExplainLimit)
}

func TestSetDefault(t *testing.T) {
	config, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}

type environmentVariable struct {
	key   string
	value string
}

func TestBindEnv(t *testing.T) {
	variables := []environmentVariable{
		{"FILMREC_DATA_SOURCE", "redis://localhost:6379/1"},
		{"FILMREC_TABLE_PREFIX", "test_"},
		{"FILMREC_SERVER_HOST", "<server_host>"},
		{"FILMREC_SERVER_PORT", "123"},
		{"FILMREC_SERVER_API_KEY", "<server_api_key>"},
		{"FILMREC_SERVER_RELOAD_PERIOD", "1h"},
		{"FILMREC_SERVER_REQUESTS_PER_SECOND", "50"},
		{"FILMREC_SERVER_CACHE_TTL", "30s"},
	}
	for _, variable := range variables {
		t.Setenv(variable.key, variable.value)
	}

	config, err := LoadConfig("config.toml.template")
	assert.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/1", config.Data.Source)
	assert.Equal(t, "test_", config.Data.TablePrefix)
	assert.Equal(t, "<server_host>", config.Server.Host)
	assert.Equal(t, 123, config.Server.Port)
	assert.Equal(t, "<server_api_key>", config.Server.APIKey)
	assert.Equal(t, time.Hour, config.Server.ReloadPeriod)
	assert.Equal(t, 50, config.Server.RequestsPerSecond)
	assert.Equal(t, 30*time.Second, config.Server.CacheTTL)

	// values without environment variables come from the file
	assert.Equal(t, 20, config.Recommend.ExplainLimit)
}

func TestLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
[data]
source = "postgres://localhost/filmrec"
`), 0644)
	assert.NoError(t, err)
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
