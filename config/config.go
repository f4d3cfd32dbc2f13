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
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for filmrec.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Server    ServerConfig    `mapstructure:"server"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// DataConfig is the configuration of the dataset source.
type DataConfig struct {
	Source      string `mapstructure:"source" validate:"required,data_store"`
	TablePrefix string `mapstructure:"table_prefix"`
}

// ServerConfig is the configuration of the REST server.
type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	APIKey string `mapstructure:"api_key"`
	// ReloadPeriod rebuilds the relations from the source periodically. Zero disables it.
	ReloadPeriod time.Duration `mapstructure:"reload_period" validate:"gte=0"`
	// RequestsPerSecond limits the REST API throughput. Zero disables it.
	RequestsPerSecond int `mapstructure:"requests_per_second" validate:"gte=0"`
	// CacheTTL keeps recommendations of a relations snapshot. Zero disables it.
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

type RecommendConfig struct {
	// ExplainLimit caps the rows printed by explain, zero prints all movies.
	ExplainLimit int `mapstructure:"explain_limit" validate:"gte=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Source: "file://example/data1.toml",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8087,
		},
		Tracing: TracingConfig{
			Exporter: "otlp",
			Sampler:  "always_on",
			Ratio:    1,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [data]
	v.SetDefault("data.source", defaultConfig.Data.Source)
	v.SetDefault("data.table_prefix", defaultConfig.Data.TablePrefix)
	// [server]
	v.SetDefault("server.host", defaultConfig.Server.Host)
	v.SetDefault("server.port", defaultConfig.Server.Port)
	v.SetDefault("server.api_key", defaultConfig.Server.APIKey)
	v.SetDefault("server.reload_period", defaultConfig.Server.ReloadPeriod)
	v.SetDefault("server.requests_per_second", defaultConfig.Server.RequestsPerSecond)
	v.SetDefault("server.cache_ttl", defaultConfig.Server.CacheTTL)
	// [recommend]
	v.SetDefault("recommend.explain_limit", defaultConfig.Recommend.ExplainLimit)
	// [tracing]
	v.SetDefault("tracing.enable_tracing", defaultConfig.Tracing.EnableTracing)
	v.SetDefault("tracing.exporter", defaultConfig.Tracing.Exporter)
	v.SetDefault("tracing.collector_endpoint", defaultConfig.Tracing.CollectorEndpoint)
	v.SetDefault("tracing.sampler", defaultConfig.Tracing.Sampler)
	v.SetDefault("tracing.ratio", defaultConfig.Tracing.Ratio)
}

type configBinding struct {
	key string
	env string
}

var bindings = []configBinding{
	{"data.source", "FILMREC_DATA_SOURCE"},
	{"data.table_prefix", "FILMREC_TABLE_PREFIX"},
	{"server.host", "FILMREC_SERVER_HOST"},
	{"server.port", "FILMREC_SERVER_PORT"},
	{"server.api_key", "FILMREC_SERVER_API_KEY"},
	{"server.reload_period", "FILMREC_SERVER_RELOAD_PERIOD"},
	{"server.requests_per_second", "FILMREC_SERVER_REQUESTS_PER_SECOND"},
	{"server.cache_ttl", "FILMREC_SERVER_CACHE_TTL"},
	{"tracing.enable_tracing", "FILMREC_TRACING_ENABLE"},
	{"tracing.collector_endpoint", "FILMREC_TRACING_COLLECTOR_ENDPOINT"},
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefault(v)
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return v, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// LoadConfig loads configuration from a TOML file. An empty path loads the
// defaults. Environment variables override both.
func LoadConfig(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err = v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return unmarshal(v)
}
