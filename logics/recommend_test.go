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

package logics

import (
	"testing"

	"github.com/gorse-io/filmrec/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	relations, err := dataset.Build(newSeedDataset())
	assert.NoError(t, err)
	recommender := NewRecommender(relations)
	movie, err := recommender.Recommend("User3")
	assert.NoError(t, err)
	assert.Equal(t, "Movie2", movie)

	detail, err := recommender.RecommendDetail("User3")
	assert.NoError(t, err)
	assert.Equal(t, ScoreDetail{Movie: "Movie2", Discussability: 2, Uniqueness: 0.5, Score: 4}, detail)

	// deterministic
	for i := 0; i < 10; i++ {
		again, err := recommender.Recommend("User3")
		assert.NoError(t, err)
		assert.Equal(t, movie, again)
	}
}

func TestRecommendMaximum(t *testing.T) {
	relations, err := dataset.Build(newSeedDataset())
	assert.NoError(t, err)
	recommender := NewRecommender(relations)
	for _, user := range relations.Users() {
		movie, err := recommender.Recommend(user)
		assert.NoError(t, err)
		best, err := recommender.Scorer().Score(user, movie)
		assert.NoError(t, err)
		for _, other := range relations.Movies() {
			score, err := recommender.Scorer().Score(user, other)
			assert.NoError(t, err)
			assert.LessOrEqual(t, score, best)
		}
	}
}

func TestRecommendTieBreak(t *testing.T) {
	// Movie1 and Movie2 both score 2, the earlier one in the catalog wins
	relations, err := dataset.Build(&dataset.Dataset{
		Users:  []string{"User1", "User2", "User3"},
		Movies: []string{"Movie1", "Movie2", "Movie3"},
		Friendships: []dataset.Edge{
			dataset.NewEdge("User3", "User1"),
			dataset.NewEdge("User3", "User2"),
		},
		Similarities: []dataset.Edge{dataset.NewEdge("Movie1", "Movie2")},
		Views: []dataset.Edge{
			dataset.NewEdge("User1", "Movie1"),
			dataset.NewEdge("User2", "Movie2"),
			dataset.NewEdge("User2", "Movie3"),
		},
	})
	assert.NoError(t, err)
	details, err := NewRecommender(relations).ExplainAll("User3")
	assert.NoError(t, err)
	assert.Equal(t, 2.0, details[0].Score)
	assert.Equal(t, 2.0, details[1].Score)
	assert.True(t, details[2].Excluded())
	movie, err := NewRecommender(relations).Recommend("User3")
	assert.NoError(t, err)
	assert.Equal(t, "Movie1", movie)

	// reversing the catalog reverses the winner
	relations, err = dataset.Build(&dataset.Dataset{
		Users:  []string{"User1", "User2", "User3"},
		Movies: []string{"Movie3", "Movie2", "Movie1"},
		Friendships: []dataset.Edge{
			dataset.NewEdge("User3", "User1"),
			dataset.NewEdge("User3", "User2"),
		},
		Similarities: []dataset.Edge{dataset.NewEdge("Movie1", "Movie2")},
		Views: []dataset.Edge{
			dataset.NewEdge("User1", "Movie1"),
			dataset.NewEdge("User2", "Movie2"),
			dataset.NewEdge("User2", "Movie3"),
		},
	})
	assert.NoError(t, err)
	movie, err = NewRecommender(relations).Recommend("User3")
	assert.NoError(t, err)
	assert.Equal(t, "Movie2", movie)
}

func TestRecommendDegenerate(t *testing.T) {
	ds := newSeedDataset()
	ds.Users = append(ds.Users, "Loner")
	relations, err := dataset.Build(ds)
	assert.NoError(t, err)
	recommender := NewRecommender(relations)

	// no friends: every movie is excluded, the first one is returned
	movie, err := recommender.Recommend("Loner")
	assert.NoError(t, err)
	assert.Equal(t, "Movie1", movie)

	// seen everything
	ds = newSeedDataset()
	ds.Views = append(ds.Views,
		dataset.NewEdge("User3", "Movie1"),
		dataset.NewEdge("User3", "Movie2"),
		dataset.NewEdge("User3", "Movie3"))
	relations, err = dataset.Build(ds)
	assert.NoError(t, err)
	details, err := NewRecommender(relations).ExplainAll("User3")
	assert.NoError(t, err)
	for _, detail := range details {
		assert.True(t, detail.Seen)
		assert.True(t, detail.Excluded())
	}
	movie, err = NewRecommender(relations).Recommend("User3")
	assert.NoError(t, err)
	assert.Equal(t, "Movie1", movie)
}

func TestRecommendErrors(t *testing.T) {
	relations, err := dataset.Build(&dataset.Dataset{Users: []string{"User1"}})
	assert.NoError(t, err)
	_, err = NewRecommender(relations).Recommend("User1")
	assert.True(t, errors.Is(err, ErrEmptyCatalog))
	_, err = NewRecommender(relations).Recommend("User2")
	assert.True(t, errors.Is(err, ErrEmptyCatalog))

	relations, err = dataset.Build(newSeedDataset())
	assert.NoError(t, err)
	_, err = NewRecommender(relations).Recommend("User4")
	assert.True(t, errors.Is(err, errors.NotFound))
}
