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
	"context"
	"testing"

	"github.com/boardrec/boardrec/dataset"
	"github.com/stretchr/testify/assert"
)

// A single neighbor collapses the weight ratio to 1, so the prediction is
// the user's mean plus the neighbor's deviation from its own mean.
func TestPredict_SingleNeighborCollapse(t *testing.T) {
	train := dataset.NewMatrix()
	train.Add("a", "i1", 5)
	train.Add("a", "i2", 3)
	train.Add("b", "i1", 4)
	train.Add("b", "i2", 3)
	train.Add("b", "i3", 5)
	train.Add("c", "i1", 4)
	train.Add("c", "i2", 2)
	train.Add("c", "i4", 5)

	aRow, _ := train.RowOf("a")
	cRow, _ := train.RowOf("c")
	_, meanA, _ := aRow.Stats()
	_, meanC, _ := cRow.Stats()
	assert.Positive(t, Similarity(aRow, cRow, Unweighted, 1))

	p := NewPredictor(train, Unweighted, 1, nil)
	prediction, err := p.Predict("a", "i4")
	assert.NoError(t, err)
	assert.InDelta(t, meanA+(5-meanC), prediction, 1e-4)
}

func TestPredict_ScaleByStdDev(t *testing.T) {
	train := dataset.NewMatrix()
	train.Add("a", "i1", 5)
	train.Add("a", "i2", 3)
	train.Add("c", "i1", 4)
	train.Add("c", "i2", 2)
	train.Add("c", "i4", 5)

	aRow, _ := train.RowOf("a")
	cRow, _ := train.RowOf("c")
	_, meanA, sdA := aRow.Stats()
	_, meanC, sdC := cRow.Stats()

	p := NewPredictor(train, Unweighted, 1, NewPredictConfig().SetScaleByStdDev(true))
	prediction, err := p.Predict("a", "i4")
	assert.NoError(t, err)
	assert.InDelta(t, meanA+sdA*(5-meanC)/sdC, prediction, 1e-4)
}

// With item4 held out, userA shares only one rated item with the single
// candidate neighbor, so every weight is zero and the aggregation is
// undefined.
func TestPredict_NoNeighbors(t *testing.T) {
	m := newTestMatrix()
	train := m.Copy()
	assert.True(t, train.Remove("a", "i4"))

	p := NewPredictor(train, Unweighted, 1, nil)
	_, err := p.Predict("a", "i4")
	assert.ErrorIs(t, err, ErrNoNeighbors)

	// the documented fallback substitutes the user's raw mean
	prediction, err := p.PredictOrMean("a", "i4")
	assert.NoError(t, err)
	assert.InDelta(t, 4.0, prediction, 1e-4)
}

func TestPredict_UnknownKeys(t *testing.T) {
	p := NewPredictor(newTestMatrix(), Unweighted, 1, nil)
	_, err := p.Predict("nobody", "i1")
	assert.ErrorIs(t, err, ErrUserNotExist)
	_, err = p.Predict("a", "i9")
	assert.ErrorIs(t, err, ErrItemNotExist)
}

func TestPredict_ZeroVarianceNeighborDropped(t *testing.T) {
	train := dataset.NewMatrix()
	train.Add("a", "i1", 5)
	train.Add("a", "i2", 3)
	// b rated the queried item but nothing else, so its standard deviation
	// is zero and it cannot be a neighbor.
	train.Add("b", "i3", 4)
	p := NewPredictor(train, Unweighted, 1, nil)
	_, err := p.Predict("a", "i3")
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func newSubsetMatrix() *dataset.Matrix {
	train := dataset.NewMatrix()
	train.Add("u0", "j1", 5)
	train.Add("u0", "j2", 3)
	train.Add("u0", "j3", 4)
	ratings := [][]float32{
		{4, 2, 3, 4},
		{5, 3, 5, 5},
		{3, 1, 2, 2},
		{4, 3, 5, 3},
		{2, 1, 1, 1},
	}
	for i, vals := range ratings {
		user := string(rune('a' + i))
		train.Add(user, "j1", vals[0])
		train.Add(user, "j2", vals[1])
		train.Add(user, "j3", vals[2])
		train.Add(user, "j4", vals[3])
	}
	return train
}

func TestPredict_NeighborSubset(t *testing.T) {
	train := newSubsetMatrix()
	first := NewPredictor(train, Unweighted, 1, NewPredictConfig().SetNeighbors(3).SetSeed(7))
	second := NewPredictor(train, Unweighted, 1, NewPredictConfig().SetNeighbors(3).SetSeed(7))
	a, err := first.Predict("u0", "j4")
	assert.NoError(t, err)
	b, err := second.Predict("u0", "j4")
	assert.NoError(t, err)
	assert.Equal(t, a, b)

	// requesting more neighbors than the pool holds fails loudly
	tooMany := NewPredictor(train, Unweighted, 1, NewPredictConfig().SetNeighbors(10).SetSeed(7))
	_, err = tooMany.Predict("u0", "j4")
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPredict_PrecomputedMatrix(t *testing.T) {
	train := newSubsetMatrix()
	sim, err := BuildSimilarityMatrix(context.Background(), train, Exponential, 0.5, nil)
	assert.NoError(t, err)
	onTheFly := NewPredictor(train, Exponential, 0.5, nil)
	precomputed := NewPredictor(train, Exponential, 0.5, NewPredictConfig().SetMatrix(sim))
	for _, user := range []string{"u0", "a", "b"} {
		want, err := onTheFly.Predict(user, "j4")
		if err != nil {
			continue
		}
		got, err := precomputed.Predict(user, "j4")
		assert.NoError(t, err)
		assert.InDelta(t, want, got, 1e-4)
	}
}

func TestPredictTargets_Isolation(t *testing.T) {
	train := newSubsetMatrix()
	// j9 is rated by nobody else, so the second target cannot be predicted
	train.Add("u0", "j9", 1)
	assert.True(t, train.Remove("u0", "j9"))
	p := NewPredictor(train, Unweighted, 1, NewPredictConfig().SetJobs(2))
	targets := []Target{
		{User: "u0", Item: "j4", Rating: 4},
		{User: "u0", Item: "j9", Rating: 1},
		{User: "a", Item: "j4", Rating: 4},
	}
	predictions, errs, err := p.PredictTargets(context.Background(), targets)
	assert.NoError(t, err)
	assert.Len(t, predictions, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], ErrInsufficientData)
	assert.NoError(t, errs[2])
}
