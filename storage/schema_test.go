// Copyright 2022 gorse Project Authors
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

package storage

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestAppendURLParams(t *testing.T) {
	// test windows path
	url, err := AppendURLParams(`c:\\sqlite.db`, []lo.Tuple2[string, string]{{A: "a", B: "b"}})
	assert.NoError(t, err)
	assert.Equal(t, `c:\\sqlite.db?a=b`, url)
	// test no scheme
	url, err = AppendURLParams(`sqlite.db`, []lo.Tuple2[string, string]{{A: "a", B: "b"}})
	assert.NoError(t, err)
	assert.Equal(t, `sqlite.db?a=b`, url)
}

func TestTablePrefix(t *testing.T) {
	prefix := TablePrefix("filmrec_")
	assert.Equal(t, "filmrec_users", prefix.UsersTable())
	assert.Equal(t, "filmrec_movies", prefix.MoviesTable())
	assert.Equal(t, "filmrec_users_connections", prefix.UsersConnectionsTable())
	assert.Equal(t, "filmrec_movies_similarities", prefix.MoviesSimilaritiesTable())
	assert.Equal(t, "filmrec_user_movies_connections", prefix.UserMoviesConnectionsTable())
	assert.Equal(t, "filmrec_users", prefix.Key("users"))
	assert.Equal(t, "users", TablePrefix("").Key("users"))
}

func TestNewGORMConfig(t *testing.T) {
	cfg := NewGORMConfig("filmrec_")
	prefix := TablePrefix("filmrec_")
	assert.True(t, cfg.SkipDefaultTransaction)
	assert.Equal(t, 1000, cfg.CreateBatchSize)
	assert.Equal(t, prefix.UsersTable(), cfg.NamingStrategy.TableName("Users"))
	assert.Equal(t, prefix.UsersConnectionsTable(), cfg.NamingStrategy.TableName("UsersConnections"))
	assert.Equal(t, prefix.UserMoviesConnectionsTable(), cfg.NamingStrategy.TableName("UserMoviesConnections"))
}
