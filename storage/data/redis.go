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

package data

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorse-io/filmrec/dataset"
	"github.com/gorse-io/filmrec/storage"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const (
	usersKey                 = "users"
	moviesKey                = "movies"
	usersConnectionsKey      = "users_connections"
	moviesSimilaritiesKey    = "movies_similarities"
	userMoviesConnectionsKey = "user_movies_connections"
)

// Redis stores a dataset in five lists. Edges are encoded as JSON pairs.
type Redis struct {
	storage.TablePrefix
	client *redis.Client
}

func (r *Redis) keys() []string {
	return []string{
		r.Key(usersKey),
		r.Key(moviesKey),
		r.Key(usersConnectionsKey),
		r.Key(moviesSimilaritiesKey),
		r.Key(userMoviesConnectionsKey),
	}
}

func (r *Redis) Init() error {
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Purge() error {
	return errors.Trace(r.client.Del(context.Background(), r.keys()...).Err())
}

func (r *Redis) Load(ctx context.Context) (*dataset.Dataset, error) {
	ds := new(dataset.Dataset)
	var err error
	if ds.Users, err = r.client.LRange(ctx, r.Key(usersKey), 0, -1).Result(); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Movies, err = r.client.LRange(ctx, r.Key(moviesKey), 0, -1).Result(); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Friendships, err = r.loadEdges(ctx, usersConnectionsKey); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Similarities, err = r.loadEdges(ctx, moviesSimilaritiesKey); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Views, err = r.loadEdges(ctx, userMoviesConnectionsKey); err != nil {
		return nil, errors.Trace(err)
	}
	return ds, nil
}

func (r *Redis) loadEdges(ctx context.Context, key string) ([]dataset.Edge, error) {
	values, err := r.client.LRange(ctx, r.Key(key), 0, -1).Result()
	if err != nil {
		return nil, errors.Trace(err)
	}
	pairs := make([][]string, len(values))
	for i, value := range values {
		if err = json.Unmarshal([]byte(value), &pairs[i]); err != nil {
			return nil, errors.NotValidf("%s entry %s", key, value)
		}
	}
	return toEdges(key, pairs)
}

func (r *Redis) Save(ctx context.Context, ds *dataset.Dataset) error {
	start := time.Now()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys()...)
		if len(ds.Users) > 0 {
			pipe.RPush(ctx, r.Key(usersKey), lo.ToAnySlice(ds.Users)...)
		}
		if len(ds.Movies) > 0 {
			pipe.RPush(ctx, r.Key(moviesKey), lo.ToAnySlice(ds.Movies)...)
		}
		for key, edges := range map[string][]dataset.Edge{
			usersConnectionsKey:      ds.Friendships,
			moviesSimilaritiesKey:    ds.Similarities,
			userMoviesConnectionsKey: ds.Views,
		} {
			if len(edges) == 0 {
				continue
			}
			values := make([]any, len(edges))
			for i, pair := range fromEdges(edges) {
				value, err := json.Marshal(pair)
				if err != nil {
					return errors.Trace(err)
				}
				values[i] = string(value)
			}
			pipe.RPush(ctx, r.Key(key), values...)
		}
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}
	SaveDatasetSeconds.Observe(time.Since(start).Seconds())
	return nil
}
