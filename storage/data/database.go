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
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/gorse-io/filmrec/base/log"
	"github.com/gorse-io/filmrec/dataset"
	"github.com/gorse-io/filmrec/storage"
	"github.com/juju/errors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database supplies the users, movies and relation edges of a dataset. Every
// implementation preserves the declared order of users and movies.
type Database interface {
	Init() error
	Close() error
	Purge() error
	Load(ctx context.Context) (*dataset.Dataset, error)
	// Save replaces the stored dataset.
	Save(ctx context.Context, ds *dataset.Dataset) error
}

// Open a connection to a database.
func Open(path, tablePrefix string) (Database, error) {
	var err error
	if strings.HasPrefix(path, storage.FilePrefix) {
		return NewFile(path[len(storage.FilePrefix):])
	} else if strings.HasPrefix(path, storage.SQLitePrefix) {
		dataSourceName := path[len(storage.SQLitePrefix):]
		// append parameters
		if dataSourceName, err = storage.AppendURLParams(dataSourceName, []lo.Tuple2[string, string]{
			{A: "_pragma", B: "busy_timeout(10000)"},
			{A: "_pragma", B: "journal_mode(wal)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		// connect to database
		database := new(SQLite)
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("sqlite", dataSourceName,
			otelsql.WithAttributes(semconv.DBSystemSqlite),
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		); err != nil {
			return nil, errors.Trace(err)
		}
		if database.gormDB, err = gorm.Open(sqlite.Dialector{Conn: database.client}, storage.NewGORMConfig(tablePrefix)); err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.RedisPrefix) || strings.HasPrefix(path, storage.RedissPrefix) {
		opt, err := redis.ParseURL(path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		database := new(Redis)
		database.client = redis.NewClient(opt)
		if err = redisotel.InstrumentTracing(database.client); err != nil {
			return nil, errors.Trace(err)
		}
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		return database, nil
	}
	return nil, errors.NotSupportedf("database %s", log.RedactURL(path))
}

// LoadRelations loads a dataset and builds its relations.
func LoadRelations(ctx context.Context, database Database) (*dataset.Relations, error) {
	start := time.Now()
	ds, err := database.Load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	LoadDatasetSeconds.Observe(time.Since(start).Seconds())
	relations, err := dataset.Build(ds)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load dataset",
		zap.Int("n_users", ds.CountUsers()),
		zap.Int("n_movies", ds.CountMovies()),
		zap.Int("n_edges", ds.CountEdges()),
		zap.Int("n_clusters", relations.Clusters().CountClusters()),
		zap.Duration("used_time", time.Since(start)))
	return relations, nil
}

func toEdges(name string, pairs [][]string) ([]dataset.Edge, error) {
	edges := make([]dataset.Edge, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 {
			return nil, errors.NotValidf("%s entry %v", name, pair)
		}
		edges = append(edges, dataset.NewEdge(pair[0], pair[1]))
	}
	return edges, nil
}

func fromEdges(edges []dataset.Edge) [][]string {
	return lo.Map(edges, func(edge dataset.Edge, _ int) []string {
		return []string{edge.A, edge.B}
	})
}
