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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorse-io/filmrec/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var fileFormats = []string{"json", "yaml", "yml", "toml"}

// document is the layout of a dataset file. The keys follow the data supply
// contract: users, movies and three adjacency lists of pairs.
type document struct {
	Users                 []string   `mapstructure:"users"`
	Movies                []string   `mapstructure:"movies"`
	MoviesSimilarities    [][]string `mapstructure:"movies_similarities"`
	UsersConnections      [][]string `mapstructure:"users_connections"`
	UserMoviesConnections [][]string `mapstructure:"user_movies_connections"`
}

// File stores a dataset in a JSON, YAML or TOML file.
type File struct {
	path string
}

func NewFile(path string) (*File, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !lo.Contains(fileFormats, ext) {
		return nil, errors.NotSupportedf("dataset file format %q", ext)
	}
	return &File{path: path}, nil
}

func (f *File) Init() error {
	return nil
}

func (f *File) Close() error {
	return nil
}

func (f *File) Purge() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Trace(err)
	}
	return nil
}

func (f *File) Load(_ context.Context) (*dataset.Dataset, error) {
	v := viper.New()
	v.SetConfigFile(f.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var doc document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, errors.Trace(err)
	}
	ds := &dataset.Dataset{
		Users:  doc.Users,
		Movies: doc.Movies,
	}
	var err error
	if ds.Friendships, err = toEdges("users_connections", doc.UsersConnections); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Similarities, err = toEdges("movies_similarities", doc.MoviesSimilarities); err != nil {
		return nil, errors.Trace(err)
	}
	if ds.Views, err = toEdges("user_movies_connections", doc.UserMoviesConnections); err != nil {
		return nil, errors.Trace(err)
	}
	return ds, nil
}

func (f *File) Save(_ context.Context, ds *dataset.Dataset) error {
	start := time.Now()
	v := viper.New()
	v.Set("users", lo.Ternary(ds.Users == nil, []string{}, ds.Users))
	v.Set("movies", lo.Ternary(ds.Movies == nil, []string{}, ds.Movies))
	v.Set("users_connections", fromEdges(ds.Friendships))
	v.Set("movies_similarities", fromEdges(ds.Similarities))
	v.Set("user_movies_connections", fromEdges(ds.Views))
	if err := v.WriteConfigAs(f.path); err != nil {
		return errors.Trace(err)
	}
	SaveDatasetSeconds.Observe(time.Since(start).Seconds())
	return nil
}
