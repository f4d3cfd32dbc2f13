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
	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
)

// ClusterResolver answers transitive similarity queries. Two movies are
// transitively similar iff they lie in the same connected component of the
// similarity graph. Components are labelled once since the graph is immutable.
type ClusterResolver struct {
	graph      *Graph
	labels     []int
	components [][]int
}

func NewClusterResolver(graph *Graph) *ClusterResolver {
	n := graph.CountNodes()
	r := &ClusterResolver{
		graph:  graph,
		labels: make([]int, n),
	}
	visited := bitset.New(uint(n))
	for start := 0; start < n; start++ {
		if visited.Test(uint(start)) {
			continue
		}
		label := len(r.components)
		component := []int{start}
		visited.Set(uint(start))
		// breadth-first search, the component slice doubles as the queue
		for head := 0; head < len(component); head++ {
			current := component[head]
			r.labels[current] = label
			graph.neighbors(current).Each(func(neighbor string) bool {
				j, _ := graph.index(neighbor)
				if !visited.Test(uint(j)) {
					visited.Set(uint(j))
					component = append(component, j)
				}
				return false
			})
		}
		r.components = append(r.components, component)
	}
	return r
}

// ClusterOf returns the movies transitively similar to movie, excluding movie
// itself. The result is empty if movie has no similarity edges.
func (r *ClusterResolver) ClusterOf(movie string) (mapset.Set[string], error) {
	i, ok := r.graph.index(movie)
	if !ok {
		return nil, errors.NotFoundf("movie %s", movie)
	}
	component := r.components[r.labels[i]]
	cluster := mapset.NewThreadUnsafeSetWithSize[string](len(component) - 1)
	for _, j := range component {
		if j != i {
			name, _ := r.graph.nodes.String(j)
			cluster.Add(name)
		}
	}
	return cluster, nil
}

func (r *ClusterResolver) CountClusters() int {
	return len(r.components)
}
