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
	"github.com/gorse-io/filmrec/dataset"
	"github.com/juju/errors"
)

const ErrEmptyCatalog = errors.ConstError("empty movie catalog")

// Recommender selects the best unseen movie for a user.
type Recommender struct {
	relations *dataset.Relations
	scorer    *Scorer
}

func NewRecommender(relations *dataset.Relations) *Recommender {
	return &Recommender{
		relations: relations,
		scorer:    NewScorer(relations),
	}
}

func (r *Recommender) Relations() *dataset.Relations {
	return r.relations
}

func (r *Recommender) Scorer() *Scorer {
	return r.scorer
}

// Recommend scores every movie in catalog order and returns the first movie
// with the greatest score. If every movie scores negative infinity, the first
// movie of the catalog is returned.
func (r *Recommender) Recommend(user string) (string, error) {
	detail, err := r.RecommendDetail(user)
	if err != nil {
		return "", errors.Trace(err)
	}
	return detail.Movie, nil
}

// RecommendDetail is Recommend with the score breakdown of the chosen movie.
func (r *Recommender) RecommendDetail(user string) (ScoreDetail, error) {
	details, err := r.ExplainAll(user)
	if err != nil {
		return ScoreDetail{}, errors.Trace(err)
	}
	best := 0
	for i := 1; i < len(details); i++ {
		// strict comparison keeps the earliest movie on ties
		if details[i].Score > details[best].Score {
			best = i
		}
	}
	return details[best], nil
}

// ExplainAll returns the score breakdown of every movie in catalog order.
func (r *Recommender) ExplainAll(user string) ([]ScoreDetail, error) {
	movies := r.relations.Movies()
	if len(movies) == 0 {
		return nil, ErrEmptyCatalog
	}
	scorer, err := r.scorer.ForUser(user)
	if err != nil {
		return nil, errors.Trace(err)
	}
	details := make([]ScoreDetail, len(movies))
	for i, movie := range movies {
		if details[i], err = scorer.Explain(movie); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return details, nil
}
