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

package config

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewTracerProvider(t *testing.T) {
	ctx := context.Background()
	config := GetDefaultConfig().Tracing
	provider, err := config.NewTracerProvider(ctx)
	assert.NoError(t, err)
	assert.Nil(t, provider)

	for _, exporter := range []string{"otlp", "otlphttp"} {
		config = TracingConfig{EnableTracing: true, Exporter: exporter, CollectorEndpoint: "localhost:4317", Sampler: "ratio", Ratio: 0.5}
		provider, err = config.NewTracerProvider(ctx)
		assert.NoError(t, err, exporter)
		if assert.NotNil(t, provider, exporter) {
			assert.NoError(t, provider.Shutdown(ctx))
		}
	}

	config = TracingConfig{EnableTracing: true, Exporter: "zipkin", CollectorEndpoint: "http://localhost:9411/api/v2/spans", Sampler: "always_off"}
	provider, err = config.NewTracerProvider(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, provider) {
		assert.NoError(t, provider.Shutdown(ctx))
	}

	config = TracingConfig{EnableTracing: true, Exporter: "jaeger"}
	_, err = config.NewTracerProvider(ctx)
	assert.True(t, errors.Is(err, errors.NotSupported))
}

func TestValidateTracing(t *testing.T) {
	config := GetDefaultConfig()
	config.Tracing.Exporter = "jaeger"
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	config = GetDefaultConfig()
	config.Tracing.Ratio = 2
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))
}
