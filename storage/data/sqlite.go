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
	"database/sql"
	"time"

	"github.com/gorse-io/filmrec/dataset"
	"github.com/gorse-io/filmrec/storage"
	"github.com/juju/errors"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// SQLVertex is a user or movie row. Position keeps the declared order.
type SQLVertex struct {
	Position int    `gorm:"column:position;primaryKey;autoIncrement:false"`
	Id       string `gorm:"column:id;type:text;not null"`
}

// SQLEdge is a relation row between two vertices.
type SQLEdge struct {
	Position int    `gorm:"column:position;primaryKey;autoIncrement:false"`
	A        string `gorm:"column:a;type:text;not null"`
	B        string `gorm:"column:b;type:text;not null"`
}

// SQLite stores a dataset in five tables.
type SQLite struct {
	storage.TablePrefix
	client *sql.DB
	gormDB *gorm.DB
}

func (s *SQLite) Init() error {
	for _, table := range s.vertexTables() {
		if err := s.gormDB.Table(table).AutoMigrate(&SQLVertex{}); err != nil {
			return errors.Trace(err)
		}
	}
	for _, table := range s.edgeTables() {
		if err := s.gormDB.Table(table).AutoMigrate(&SQLEdge{}); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.client.Close()
}

func (s *SQLite) Purge() error {
	return errors.Trace(purgeTables(s.gormDB, s.vertexTables(), s.edgeTables()))
}

func (s *SQLite) vertexTables() []string {
	return []string{s.UsersTable(), s.MoviesTable()}
}

func (s *SQLite) edgeTables() []string {
	return []string{s.UsersConnectionsTable(), s.MoviesSimilaritiesTable(), s.UserMoviesConnectionsTable()}
}

func purgeTables(db *gorm.DB, vertexTables, edgeTables []string) error {
	db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, table := range vertexTables {
		if err := db.Table(table).Delete(&SQLVertex{}).Error; err != nil {
			return errors.Trace(err)
		}
	}
	for _, table := range edgeTables {
		if err := db.Table(table).Delete(&SQLEdge{}).Error; err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context) (*dataset.Dataset, error) {
	db := s.gormDB.WithContext(ctx)
	ds := new(dataset.Dataset)
	var err error
	if ds.Users, err = loadVertices(db, s.UsersTable()); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Movies, err = loadVertices(db, s.MoviesTable()); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Friendships, err = loadEdges(db, s.UsersConnectionsTable()); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Similarities, err = loadEdges(db, s.MoviesSimilaritiesTable()); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Views, err = loadEdges(db, s.UserMoviesConnectionsTable()); err != nil {
		return nil, errors.Trace(err)
	}
	return ds, nil
}

func loadVertices(db *gorm.DB, table string) ([]string, error) {
	var rows []SQLVertex
	if err := db.Table(table).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Trace(err)
	}
	var vertices []string
	for _, row := range rows {
		vertices = append(vertices, row.Id)
	}
	return vertices, nil
}

func loadEdges(db *gorm.DB, table string) ([]dataset.Edge, error) {
	var rows []SQLEdge
	if err := db.Table(table).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Trace(err)
	}
	var edges []dataset.Edge
	for _, row := range rows {
		edges = append(edges, dataset.NewEdge(row.A, row.B))
	}
	return edges, nil
}

func (s *SQLite) Save(ctx context.Context, ds *dataset.Dataset) error {
	start := time.Now()
	err := s.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := purgeTables(tx, s.vertexTables(), s.edgeTables()); err != nil {
			return errors.Trace(err)
		}
		if err := saveVertices(tx, s.UsersTable(), ds.Users); err != nil {
			return errors.Trace(err)
		}
		if err := saveVertices(tx, s.MoviesTable(), ds.Movies); err != nil {
			return errors.Trace(err)
		}
		if err := saveEdges(tx, s.UsersConnectionsTable(), ds.Friendships); err != nil {
			return errors.Trace(err)
		}
		if err := saveEdges(tx, s.MoviesSimilaritiesTable(), ds.Similarities); err != nil {
			return errors.Trace(err)
		}
		return saveEdges(tx, s.UserMoviesConnectionsTable(), ds.Views)
	})
	if err != nil {
		return errors.Trace(err)
	}
	SaveDatasetSeconds.Observe(time.Since(start).Seconds())
	return nil
}

func saveVertices(tx *gorm.DB, table string, vertices []string) error {
	if len(vertices) == 0 {
		return nil
	}
	rows := make([]SQLVertex, len(vertices))
	for i, id := range vertices {
		rows[i] = SQLVertex{Position: i, Id: id}
	}
	return errors.Trace(tx.Table(table).CreateInBatches(rows, 1000).Error)
}

func saveEdges(tx *gorm.DB, table string, edges []dataset.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	rows := make([]SQLEdge, len(edges))
	for i, edge := range edges {
		rows[i] = SQLEdge{Position: i, A: edge.A, B: edge.B}
	}
	return errors.Trace(tx.Table(table).CreateInBatches(rows, 1000).Error)
}
