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

// Graph is an undirected graph. Vertices keep their insertion order and every
// vertex owns an adjacency set, so isolated vertices are still queryable.
type Graph struct {
	nodes     *Dict
	adjacency []mapset.Set[string]
}

func NewGraph(capacity int) *Graph {
	return &Graph{
		nodes:     NewDict(capacity),
		adjacency: make([]mapset.Set[string], 0, capacity),
	}
}

// AddNode inserts a vertex. It returns false if the vertex exists already.
func (g *Graph) AddNode(v string) bool {
	if _, added := g.nodes.Add(v); !added {
		return false
	}
	g.adjacency = append(g.adjacency, mapset.NewThreadUnsafeSet[string]())
	return true
}

// AddEdge connects two existing vertices.
func (g *Graph) AddEdge(a, b string) error {
	i, ok := g.nodes.Id(a)
	if !ok {
		return errors.NotFoundf("vertex %s", a)
	}
	j, ok := g.nodes.Id(b)
	if !ok {
		return errors.NotFoundf("vertex %s", b)
	}
	g.adjacency[i].Add(b)
	g.adjacency[j].Add(a)
	return nil
}

func (g *Graph) HasNode(v string) bool {
	_, ok := g.nodes.Id(v)
	return ok
}

func (g *Graph) HasEdge(a, b string) bool {
	i, ok := g.nodes.Id(a)
	return ok && g.adjacency[i].Contains(b)
}

// Neighbors returns a copy of the adjacency set of v.
func (g *Graph) Neighbors(v string) (mapset.Set[string], bool) {
	i, ok := g.nodes.Id(v)
	if !ok {
		return nil, false
	}
	return g.adjacency[i].Clone(), true
}

func (g *Graph) Nodes() []string {
	return g.nodes.Strings()
}

func (g *Graph) CountNodes() int {
	return g.nodes.Count()
}

func (g *Graph) index(v string) (int, bool) {
	return g.nodes.Id(v)
}

func (g *Graph) neighbors(i int) mapset.Set[string] {
	return g.adjacency[i]
}

// BipartiteGraph is an undirected graph between two disjoint vertex classes.
// The classes have separate namespaces, so a user and a movie may share an
// identifier without colliding.
type BipartiteGraph struct {
	left  *Graph
	right *Graph
}

func NewBipartiteGraph(leftCapacity, rightCapacity int) *BipartiteGraph {
	return &BipartiteGraph{
		left:  NewGraph(leftCapacity),
		right: NewGraph(rightCapacity),
	}
}

func (g *BipartiteGraph) AddLeft(v string) bool {
	return g.left.AddNode(v)
}

func (g *BipartiteGraph) AddRight(v string) bool {
	return g.right.AddNode(v)
}

// AddEdge connects a left vertex to a right vertex.
func (g *BipartiteGraph) AddEdge(l, r string) error {
	i, ok := g.left.index(l)
	if !ok {
		return errors.NotFoundf("vertex %s", l)
	}
	j, ok := g.right.index(r)
	if !ok {
		return errors.NotFoundf("vertex %s", r)
	}
	g.left.adjacency[i].Add(r)
	g.right.adjacency[j].Add(l)
	return nil
}

func (g *BipartiteGraph) HasEdge(l, r string) bool {
	return g.left.HasEdge(l, r)
}

// LeftNeighbors returns a copy of the right vertices adjacent to l.
func (g *BipartiteGraph) LeftNeighbors(l string) (mapset.Set[string], bool) {
	return g.left.Neighbors(l)
}

// RightNeighbors returns a copy of the left vertices adjacent to r.
func (g *BipartiteGraph) RightNeighbors(r string) (mapset.Set[string], bool) {
	return g.right.Neighbors(r)
}
