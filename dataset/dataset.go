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

import "github.com/samber/lo"

// Edge is an undirected pair of identifiers.
type Edge = lo.Tuple2[string, string]

func NewEdge(a, b string) Edge {
	return lo.T2(a, b)
}

// Dataset is the raw material of recommendation. The order of Movies is
// authoritative: recommendation ties are broken by it.
type Dataset struct {
	Users        []string
	Movies       []string
	Friendships  []Edge
	Similarities []Edge
	Views        []Edge
}

func (d *Dataset) CountUsers() int {
	return len(d.Users)
}

func (d *Dataset) CountMovies() int {
	return len(d.Movies)
}

func (d *Dataset) CountEdges() int {
	return len(d.Friendships) + len(d.Similarities) + len(d.Views)
}
