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
	"math"

	"github.com/gorse-io/filmrec/dataset"
	"github.com/juju/errors"
)

// ScoreDetail breaks a recommendation score into its components.
type ScoreDetail struct {
	Movie string
	// Seen is true if the user has already seen the movie.
	Seen bool
	// Discussability is the number of friends who have seen the movie.
	Discussability int
	// Uniqueness is the mean number of similar movies seen per friend.
	Uniqueness float64
	Score      float64
}

// Excluded reports whether the movie can never be recommended.
func (d ScoreDetail) Excluded() bool {
	return math.IsInf(d.Score, -1)
}

// Scorer computes the discussability-over-uniqueness score of a movie for a
// user. It never mutates the relations.
type Scorer struct {
	relations *dataset.Relations
}

func NewScorer(relations *dataset.Relations) *Scorer {
	return &Scorer{relations: relations}
}

// Discussability counts the friends of user who have seen movie.
func (s *Scorer) Discussability(user, movie string) (int, error) {
	u, err := s.ForUser(user)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return u.discussability(movie)
}

// Uniqueness is the mean, over the friends of user, of the number of movies
// each friend has seen within the similarity cluster of movie. It is zero for
// a user without friends.
func (s *Scorer) Uniqueness(user, movie string) (float64, error) {
	u, err := s.ForUser(user)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return u.uniqueness(movie)
}

// Score returns F/S, or negative infinity if the user has seen the movie or S
// is zero.
func (s *Scorer) Score(user, movie string) (float64, error) {
	u, err := s.ForUser(user)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return u.Score(movie)
}

func (s *Scorer) Explain(user, movie string) (ScoreDetail, error) {
	u, err := s.ForUser(user)
	if err != nil {
		return ScoreDetail{}, errors.Trace(err)
	}
	return u.Explain(movie)
}

// ForUser binds a user so that the friend list is resolved once for many
// movies.
func (s *Scorer) ForUser(user string) (*UserScorer, error) {
	friends, err := s.relations.FriendsOf(user)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &UserScorer{
		relations: s.relations,
		user:      user,
		friends:   friends.ToSlice(),
	}, nil
}

// UserScorer scores movies for a single user.
type UserScorer struct {
	relations *dataset.Relations
	user      string
	friends   []string
}

func (u *UserScorer) Score(movie string) (float64, error) {
	detail, err := u.Explain(movie)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return detail.Score, nil
}

func (u *UserScorer) Explain(movie string) (ScoreDetail, error) {
	detail := ScoreDetail{Movie: movie}
	var err error
	if detail.Seen, err = u.relations.HasSeen(u.user, movie); err != nil {
		return ScoreDetail{}, errors.Trace(err)
	}
	if detail.Discussability, err = u.discussability(movie); err != nil {
		return ScoreDetail{}, errors.Trace(err)
	}
	if detail.Uniqueness, err = u.uniqueness(movie); err != nil {
		return ScoreDetail{}, errors.Trace(err)
	}
	switch {
	case detail.Seen:
		// never recommend a movie twice
		detail.Score = math.Inf(-1)
	case detail.Uniqueness == 0:
		detail.Score = math.Inf(-1)
	default:
		detail.Score = float64(detail.Discussability) / detail.Uniqueness
	}
	return detail, nil
}

func (u *UserScorer) discussability(movie string) (int, error) {
	if !u.relations.HasMovie(movie) {
		return 0, errors.NotFoundf("movie %s", movie)
	}
	count := 0
	for _, friend := range u.friends {
		seen, err := u.relations.HasSeen(friend, movie)
		if err != nil {
			return 0, errors.Trace(err)
		}
		if seen {
			count++
		}
	}
	return count, nil
}

func (u *UserScorer) uniqueness(movie string) (float64, error) {
	cluster, err := u.relations.SimilarityComponentOf(movie)
	if err != nil {
		return 0, errors.Trace(err)
	}
	if len(u.friends) == 0 {
		return 0, nil
	}
	sum := 0
	for _, friend := range u.friends {
		count, err := u.relations.CountSeen(friend, cluster)
		if err != nil {
			return 0, errors.Trace(err)
		}
		sum += count
	}
	return float64(sum) / float64(len(u.friends)), nil
}
