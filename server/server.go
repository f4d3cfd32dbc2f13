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

package server

import (
	"context"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/filmrec/base/log"
	"github.com/gorse-io/filmrec/config"
	"github.com/gorse-io/filmrec/storage/data"
	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Server manages states of a server node.
type Server struct {
	RestServer
	ctx            context.Context
	cancel         context.CancelFunc
	tracerProvider *sdktrace.TracerProvider
}

// NewServer creates a server node.
func NewServer(cfg *config.Config) (*Server, error) {
	dataClient, err := data.Open(cfg.Data.Source, cfg.Data.TablePrefix)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctx:    ctx,
		cancel: cancel,
		RestServer: RestServer{
			Config:     cfg,
			DataClient: dataClient,
			WebService: new(restful.WebService),
		},
	}
	s.SetRateLimit(cfg.Server.RequestsPerSecond)
	s.SetCacheTTL(cfg.Server.CacheTTL)
	return s, nil
}

// Serve loads relations and starts the server node.
func (s *Server) Serve() {
	otel.SetErrorHandler(log.GetErrorHandler())
	tp, err := s.Config.Tracing.NewTracerProvider(s.ctx)
	if err != nil {
		log.Logger().Fatal("failed to create trace provider", zap.Error(err))
	}
	if tp != nil {
		s.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	log.Logger().Info("start server",
		zap.String("data_source", log.RedactURL(s.Config.Data.Source)),
		zap.String("server_host", s.Config.Server.Host),
		zap.Int("server_port", s.Config.Server.Port),
		zap.Duration("reload_period", s.Config.Server.ReloadPeriod))
	if err = s.Reload(s.ctx); err != nil {
		log.Logger().Fatal("failed to load relations", zap.Error(err))
	}
	if s.Config.Server.ReloadPeriod > 0 {
		go s.Sync()
	}
	s.StartHttpServer()
}

// Sync rebuilds relations periodically until the server shuts down.
func (s *Server) Sync() {
	ticker := time.NewTicker(s.Config.Server.ReloadPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reload(s.ctx); err != nil {
				log.Logger().Error("failed to reload relations", zap.Error(err))
				continue
			}
			log.Logger().Info("reload relations", zap.Int("clusters", s.status().Clusters))
		}
	}
}

// Shutdown stops reloading and closes the data source.
func (s *Server) Shutdown() {
	s.cancel()
	if err := s.DataClient.Close(); err != nil {
		log.Logger().Error("failed to close data source", zap.Error(err))
	}
	if s.tracerProvider != nil {
		if err := s.tracerProvider.Shutdown(context.Background()); err != nil {
			log.Logger().Error("failed to shutdown trace provider", zap.Error(err))
		}
	}
}
