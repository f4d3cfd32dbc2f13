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
	"fmt"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestGraph(t *testing.T) {
	g := NewGraph(0)
	assert.True(t, g.AddNode("a"))
	assert.True(t, g.AddNode("b"))
	assert.True(t, g.AddNode("c"))
	assert.False(t, g.AddNode("a"))
	assert.NoError(t, g.AddEdge("a", "b"))
	assert.NoError(t, g.AddEdge("a", "b"))
	assert.True(t, errors.Is(g.AddEdge("a", "d"), errors.NotFound))
	assert.True(t, errors.Is(g.AddEdge("d", "a"), errors.NotFound))

	assert.True(t, g.HasEdge("a", "b"))
	assert.True(t, g.HasEdge("b", "a"))
	assert.False(t, g.HasEdge("a", "c"))
	assert.False(t, g.HasEdge("d", "a"))
	neighbors, ok := g.Neighbors("a")
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"b"}, neighbors.ToSlice())
	assert.Equal(t, []string{"a", "b", "c"}, g.Nodes())

	neighbors, ok = g.Neighbors("c")
	assert.True(t, ok)
	assert.Equal(t, 0, neighbors.Cardinality())
	_, ok = g.Neighbors("d")
	assert.False(t, ok)
}

func TestBipartiteGraph(t *testing.T) {
	g := NewBipartiteGraph(0, 0)
	assert.True(t, g.AddLeft("u"))
	assert.True(t, g.AddRight("m"))
	assert.True(t, g.AddRight("u"))
	assert.NoError(t, g.AddEdge("u", "m"))
	assert.True(t, errors.Is(g.AddEdge("m", "u"), errors.NotFound))
	assert.True(t, g.HasEdge("u", "m"))

	right, ok := g.LeftNeighbors("u")
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"m"}, right.ToSlice())
	left, ok := g.RightNeighbors("m")
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"u"}, left.ToSlice())
	left, ok = g.RightNeighbors("u")
	assert.True(t, ok)
	assert.Equal(t, 0, left.Cardinality())
}

func TestClusterResolver(t *testing.T) {
	g := NewGraph(0)
	for i := 0; i < 10; i++ {
		g.AddNode(fmt.Sprintf("m%d", i))
	}
	// chain m0 - m1 - m2 - m3, star m4 - {m5, m6}, cycle m7 - m8 - m7, isolated m9
	assert.NoError(t, g.AddEdge("m0", "m1"))
	assert.NoError(t, g.AddEdge("m1", "m2"))
	assert.NoError(t, g.AddEdge("m2", "m3"))
	assert.NoError(t, g.AddEdge("m4", "m5"))
	assert.NoError(t, g.AddEdge("m4", "m6"))
	assert.NoError(t, g.AddEdge("m7", "m8"))
	assert.NoError(t, g.AddEdge("m8", "m7"))
	r := NewClusterResolver(g)
	assert.Equal(t, 4, r.CountClusters())

	cluster, err := r.ClusterOf("m0")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"m1", "m2", "m3"}, cluster.ToSlice())
	cluster, err = r.ClusterOf("m5")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"m4", "m6"}, cluster.ToSlice())
	cluster, err = r.ClusterOf("m7")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"m8"}, cluster.ToSlice())
	cluster, err = r.ClusterOf("m9")
	assert.NoError(t, err)
	assert.Equal(t, 0, cluster.Cardinality())
	_, err = r.ClusterOf("m10")
	assert.True(t, errors.Is(err, errors.NotFound))

	// never contains the movie itself, and is symmetric
	for _, a := range g.Nodes() {
		cluster, err := r.ClusterOf(a)
		assert.NoError(t, err)
		assert.False(t, cluster.Contains(a))
		cluster.Each(func(b string) bool {
			other, err := r.ClusterOf(b)
			assert.NoError(t, err)
			assert.True(t, other.Contains(a))
			return false
		})
	}
}
