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
	"fmt"
	"net/http"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/filmrec/base/log"
	"github.com/gorse-io/filmrec/config"
	"github.com/gorse-io/filmrec/logics"
	"github.com/gorse-io/filmrec/storage/data"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"github.com/juju/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/emicklei/go-restful/otelrestful"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const ErrNotReady = errors.ConstError("relations are not loaded")

// RestServer implements a REST-ful API server.
type RestServer struct {
	Config     *config.Config
	DataClient data.Database
	WebService *restful.WebService

	// recommender is replaced as a whole on reload, never mutated.
	recommender    atomic.Pointer[logics.Recommender]
	limiter        *ratelimit.Bucket
	recommendCache *ttlcache.Cache[string, cachedRecommendation]
}

// cachedRecommendation remembers the snapshot it was computed from, so an
// entry written during a reload is never served for the new snapshot.
type cachedRecommendation struct {
	recommender    *logics.Recommender
	recommendation Recommendation
}

// Score is the score breakdown of a movie for a user.
type Score struct {
	Movie          string
	Seen           bool
	Discussability int
	Uniqueness     float64
	// Score is absent if the movie is excluded from recommendation.
	Score    *float64 `json:",omitempty"`
	Excluded bool
}

func newScore(detail logics.ScoreDetail) Score {
	score := Score{
		Movie:          detail.Movie,
		Seen:           detail.Seen,
		Discussability: detail.Discussability,
		Uniqueness:     detail.Uniqueness,
		Excluded:       detail.Excluded(),
	}
	if !score.Excluded {
		value := detail.Score
		score.Score = &value
	}
	return score
}

// Recommendation is the best movie for a user.
type Recommendation struct {
	User string
	Score
}

type Cluster struct {
	Movie   string
	Similar []string
}

type Status struct {
	Ready    bool
	Users    int
	Movies   int
	Clusters int
}

// StartHttpServer starts the REST-ful API server.
func (s *RestServer) StartHttpServer() {
	container := restful.NewContainer()
	s.CreateWebService()
	container.Add(s.WebService)
	// register OpenAPI spec
	specConfig := restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}
	container.Add(restfulspec.NewOpenAPIService(specConfig))
	// register prometheus
	container.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	log.Logger().Info("start http server", zap.String("url", "http://"+addr))
	log.Logger().Fatal("failed to start http server", zap.Error(http.ListenAndServe(addr, container)))
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)
	log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("used_time", time.Since(start)))
}

// RateLimitFilter rejects requests once the token bucket runs dry.
func (s *RestServer) RateLimitFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	if s.limiter != nil && s.limiter.TakeAvailable(1) == 0 {
		resp.Header().Set("Access-Control-Allow-Origin", "*")
		if err := resp.WriteErrorString(http.StatusTooManyRequests, "too many requests"); err != nil {
			log.ResponseLogger(resp).Error("failed to write error", zap.Error(err))
		}
		return
	}
	chain.ProcessFilter(req, resp)
}

// SetRateLimit limits the throughput of the API. Zero removes the limit.
func (s *RestServer) SetRateLimit(requestsPerSecond int) {
	if requestsPerSecond > 0 {
		s.limiter = ratelimit.NewBucketWithRate(float64(requestsPerSecond), int64(requestsPerSecond))
	} else {
		s.limiter = nil
	}
}

// SetCacheTTL caches recommendations for the given duration. Zero disables the
// cache.
func (s *RestServer) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.recommendCache = ttlcache.New(ttlcache.WithTTL[string, cachedRecommendation](ttl))
	} else {
		s.recommendCache = nil
	}
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(otelrestful.OTelFilter("filmrec"))
	ws.Filter(LogFilter)
	ws.Filter(s.RateLimitFilter)

	ws.Route(ws.GET("/recommend/{user-id}").To(s.getRecommend).
		Doc("Get the best unseen movie for a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("string")).
		Returns(http.StatusOK, "OK", Recommendation{}).
		Writes(Recommendation{}))
	ws.Route(ws.GET("/explain/{user-id}").To(s.getExplain).
		Doc("Get the score breakdown of every movie for a user in catalog order.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("string")).
		Returns(http.StatusOK, "OK", []Score{}).
		Writes([]Score{}))
	ws.Route(ws.GET("/score/{user-id}/{movie-id}").To(s.getScore).
		Doc("Get the score of a movie for a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("string")).
		Param(ws.PathParameter("movie-id", "identifier of the movie").DataType("string")).
		Returns(http.StatusOK, "OK", Score{}).
		Writes(Score{}))
	ws.Route(ws.GET("/cluster/{movie-id}").To(s.getCluster).
		Doc("Get the movies transitively similar to a movie.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"movie"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("movie-id", "identifier of the movie").DataType("string")).
		Returns(http.StatusOK, "OK", Cluster{}).
		Writes(Cluster{}))
	ws.Route(ws.POST("/reload").To(s.reload).
		Doc("Rebuild relations from the data source.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Returns(http.StatusOK, "OK", Status{}).
		Writes(Status{}))
	ws.Route(ws.GET("/status").To(s.getStatus).
		Doc("Get the status of loaded relations.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Returns(http.StatusOK, "OK", Status{}).
		Writes(Status{}))
}

// SetRecommender swaps the current relations snapshot.
func (s *RestServer) SetRecommender(recommender *logics.Recommender) {
	s.recommender.Store(recommender)
	if s.recommendCache != nil {
		s.recommendCache.DeleteAll()
	}
	NumUsers.Set(float64(len(recommender.Relations().Users())))
	NumMovies.Set(float64(len(recommender.Relations().Movies())))
}

// Reload rebuilds relations from the data source. The current snapshot keeps
// serving if the rebuild fails.
func (s *RestServer) Reload(ctx context.Context) error {
	start := time.Now()
	relations, err := data.LoadRelations(ctx, s.DataClient)
	if err != nil {
		ReloadErrorsTotal.Inc()
		return errors.Trace(err)
	}
	s.SetRecommender(logics.NewRecommender(relations))
	ReloadSeconds.Observe(time.Since(start).Seconds())
	return nil
}

func (s *RestServer) status() Status {
	recommender := s.recommender.Load()
	if recommender == nil {
		return Status{}
	}
	relations := recommender.Relations()
	return Status{
		Ready:    true,
		Users:    len(relations.Users()),
		Movies:   len(relations.Movies()),
		Clusters: relations.Clusters().CountClusters(),
	}
}

func (s *RestServer) getRecommender(response *restful.Response) (*logics.Recommender, bool) {
	recommender := s.recommender.Load()
	if recommender == nil {
		ServiceUnavailable(response, ErrNotReady)
		return nil, false
	}
	return recommender, true
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	recommender, ok := s.getRecommender(response)
	if !ok {
		return
	}
	start := time.Now()
	userId := request.PathParameter("user-id")
	if s.recommendCache != nil {
		if item := s.recommendCache.Get(userId); item != nil && item.Value().recommender == recommender {
			Ok(response, item.Value().recommendation)
			return
		}
	}
	detail, err := recommender.RecommendDetail(userId)
	if err != nil {
		handleError(response, err)
		return
	}
	recommendation := Recommendation{User: userId, Score: newScore(detail)}
	if s.recommendCache != nil {
		s.recommendCache.Set(userId, cachedRecommendation{recommender: recommender, recommendation: recommendation}, ttlcache.DefaultTTL)
	}
	GetRecommendSeconds.Observe(time.Since(start).Seconds())
	Ok(response, recommendation)
}

func (s *RestServer) getExplain(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	recommender, ok := s.getRecommender(response)
	if !ok {
		return
	}
	details, err := recommender.ExplainAll(request.PathParameter("user-id"))
	if err != nil {
		handleError(response, err)
		return
	}
	scores := make([]Score, len(details))
	for i, detail := range details {
		scores[i] = newScore(detail)
	}
	Ok(response, scores)
}

func (s *RestServer) getScore(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	recommender, ok := s.getRecommender(response)
	if !ok {
		return
	}
	start := time.Now()
	detail, err := recommender.Scorer().Explain(request.PathParameter("user-id"), request.PathParameter("movie-id"))
	if err != nil {
		handleError(response, err)
		return
	}
	GetScoreSeconds.Observe(time.Since(start).Seconds())
	Ok(response, newScore(detail))
}

func (s *RestServer) getCluster(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	recommender, ok := s.getRecommender(response)
	if !ok {
		return
	}
	movieId := request.PathParameter("movie-id")
	relations := recommender.Relations()
	cluster, err := relations.SimilarityComponentOf(movieId)
	if err != nil {
		handleError(response, err)
		return
	}
	// list similar movies in catalog order
	similar := make([]string, 0, cluster.Cardinality())
	for _, movie := range relations.Movies() {
		if cluster.Contains(movie) {
			similar = append(similar, movie)
		}
	}
	Ok(response, Cluster{Movie: movieId, Similar: similar})
}

func (s *RestServer) reload(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	if err := s.Reload(request.Request.Context()); err != nil {
		handleError(response, err)
		return
	}
	Ok(response, s.status())
}

func (s *RestServer) getStatus(_ *restful.Request, response *restful.Response) {
	Ok(response, s.status())
}

func handleError(response *restful.Response, err error) {
	switch {
	case errors.Is(err, errors.NotFound):
		PageNotFound(response, err)
	case errors.Is(err, errors.NotValid), errors.Is(err, logics.ErrEmptyCatalog):
		BadRequest(response, err)
	default:
		InternalServerError(response, err)
	}
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// ServiceUnavailable returns a service unavailable error.
func ServiceUnavailable(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err = response.WriteError(http.StatusServiceUnavailable, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteError(http.StatusNotFound, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}

func (s *RestServer) auth(request *restful.Request, response *restful.Response) bool {
	if s.Config.Server.APIKey == "" {
		return true
	}
	apikey := request.HeaderParameter("X-API-Key")
	if apikey == s.Config.Server.APIKey {
		return true
	}
	log.ResponseLogger(response).Error("unauthorized", zap.String("X-API-Key", apikey))
	if err := response.WriteError(http.StatusUnauthorized, fmt.Errorf("unauthorized")); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
	return false
}
