// Copyright 2026 boardrec Project Authors
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

package cf

import (
	"github.com/boardrec/boardrec/base"
	"github.com/boardrec/boardrec/dataset"
	"github.com/juju/errors"
)

// Target records one rating held out from a user's row: the item and the
// masked true value. Targets exist only for the duration of one evaluation
// round.
type Target struct {
	User   string
	Item   string
	Rating float32
}

// SampleTargets withholds one uniformly sampled rating per user and returns
// the targets with ground truth, plus a reduced copy of the matrix with those
// cells removed. The input matrix is never mutated. A user with no ratings
// yields ErrInsufficientData.
func SampleTargets(m *dataset.Matrix, rng base.RandomGenerator) ([]Target, *dataset.Matrix, error) {
	reduced := m.Copy()
	targets := make([]Target, 0, m.UserCount())
	for i, user := range m.Users() {
		row := m.Row(int32(i))
		if row.Count() == 0 {
			return nil, nil, errors.Annotatef(ErrInsufficientData, "user %q has no ratings to hold out", user)
		}
		items := row.Items()
		itemIndex := items[rng.Intn(len(items))]
		rating, _ := row.Get(itemIndex)
		item, _ := m.ItemDict().String(itemIndex)
		targets = append(targets, Target{User: user, Item: item, Rating: rating})
		reduced.Remove(user, item)
	}
	return targets, reduced, nil
}

// SelectTargets withholds a caller-chosen item per user instead of sampling.
// Every user in the matrix must have a pick, and the pick must be rated by
// that user; otherwise ErrItemNotExist is returned.
func SelectTargets(m *dataset.Matrix, picks map[string]string) ([]Target, *dataset.Matrix, error) {
	reduced := m.Copy()
	targets := make([]Target, 0, m.UserCount())
	for i, user := range m.Users() {
		item, ok := picks[user]
		if !ok {
			return nil, nil, errors.Annotatef(ErrItemNotExist, "no pick for user %q", user)
		}
		row := m.Row(int32(i))
		itemIndex, ok := m.ItemDict().Lookup(item)
		if !ok || !row.Rated(itemIndex) {
			return nil, nil, errors.Annotatef(ErrItemNotExist, "item %q is not rated by user %q", item, user)
		}
		rating, _ := row.Get(itemIndex)
		targets = append(targets, Target{User: user, Item: item, Rating: rating})
		reduced.Remove(user, item)
	}
	return targets, reduced, nil
}
