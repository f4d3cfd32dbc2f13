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

package dataset

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
)

// Relations holds the friendship, similarity and viewing relations built from
// a Dataset. It is immutable once built and safe for concurrent readers.
type Relations struct {
	friendship *Graph
	similarity *Graph
	viewing    *BipartiteGraph
	clusters   *ClusterResolver
}

// Build inserts every declared vertex before any edge, so isolated users and
// movies are present. An edge referencing an undeclared vertex fails the build.
func Build(ds *Dataset) (*Relations, error) {
	r := &Relations{
		friendship: NewGraph(len(ds.Users)),
		similarity: NewGraph(len(ds.Movies)),
		viewing:    NewBipartiteGraph(len(ds.Users), len(ds.Movies)),
	}
	for _, user := range ds.Users {
		if !r.friendship.AddNode(user) {
			return nil, errors.NotValidf("duplicate user %s", user)
		}
		r.viewing.AddLeft(user)
	}
	for _, movie := range ds.Movies {
		if !r.similarity.AddNode(movie) {
			return nil, errors.NotValidf("duplicate movie %s", movie)
		}
		r.viewing.AddRight(movie)
	}
	for _, edge := range ds.Friendships {
		if err := r.friendship.AddEdge(edge.A, edge.B); err != nil {
			return nil, errors.NotValidf("friendship (%s, %s) with undeclared user", edge.A, edge.B)
		}
	}
	for _, edge := range ds.Similarities {
		if err := r.similarity.AddEdge(edge.A, edge.B); err != nil {
			return nil, errors.NotValidf("similarity (%s, %s) with undeclared movie", edge.A, edge.B)
		}
	}
	for _, edge := range ds.Views {
		if err := r.viewing.AddEdge(edge.A, edge.B); err != nil {
			return nil, errors.NotValidf("view (%s, %s) with undeclared user or movie", edge.A, edge.B)
		}
	}
	r.clusters = NewClusterResolver(r.similarity)
	return r, nil
}

// Users returns all users in declared order.
func (r *Relations) Users() []string {
	return r.friendship.Nodes()
}

// Movies returns all movies in declared order.
func (r *Relations) Movies() []string {
	return r.similarity.Nodes()
}

func (r *Relations) HasUser(user string) bool {
	return r.friendship.HasNode(user)
}

func (r *Relations) HasMovie(movie string) bool {
	return r.similarity.HasNode(movie)
}

func (r *Relations) FriendsOf(user string) (mapset.Set[string], error) {
	friends, ok := r.friendship.Neighbors(user)
	if !ok {
		return nil, errors.NotFoundf("user %s", user)
	}
	return friends, nil
}

// SeenBy returns the movies a user has seen.
func (r *Relations) SeenBy(user string) (mapset.Set[string], error) {
	movies, ok := r.viewing.LeftNeighbors(user)
	if !ok {
		return nil, errors.NotFoundf("user %s", user)
	}
	return movies, nil
}

// ViewersOf returns the users who have seen a movie.
func (r *Relations) ViewersOf(movie string) (mapset.Set[string], error) {
	users, ok := r.viewing.RightNeighbors(movie)
	if !ok {
		return nil, errors.NotFoundf("movie %s", movie)
	}
	return users, nil
}

func (r *Relations) HasSeen(user, movie string) (bool, error) {
	if !r.HasUser(user) {
		return false, errors.NotFoundf("user %s", user)
	}
	if !r.HasMovie(movie) {
		return false, errors.NotFoundf("movie %s", movie)
	}
	return r.viewing.HasEdge(user, movie), nil
}

// CountSeen counts how many of the given movies a user has seen.
func (r *Relations) CountSeen(user string, movies mapset.Set[string]) (int, error) {
	i, ok := r.viewing.left.index(user)
	if !ok {
		return 0, errors.NotFoundf("user %s", user)
	}
	seen := r.viewing.left.neighbors(i)
	small, large := seen, movies
	if small.Cardinality() > large.Cardinality() {
		small, large = large, small
	}
	count := 0
	small.Each(func(movie string) bool {
		if large.Contains(movie) {
			count++
		}
		return false
	})
	return count, nil
}

// SimilarityComponentOf returns the similarity cluster of a movie, excluding
// the movie itself.
func (r *Relations) SimilarityComponentOf(movie string) (mapset.Set[string], error) {
	return r.clusters.ClusterOf(movie)
}

func (r *Relations) Clusters() *ClusterResolver {
	return r.clusters
}
