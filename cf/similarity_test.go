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
	"testing"

	"github.com/boardrec/boardrec/dataset"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const simTestDelta = 1e-4

func rowsOf(m *dataset.Matrix, users ...string) []*dataset.Row {
	rows := make([]*dataset.Row, len(users))
	for i, user := range users {
		row, ok := m.RowOf(user)
		if !ok {
			panic("unknown user " + user)
		}
		rows[i] = row
	}
	return rows
}

func TestSimilarity_KnownValues(t *testing.T) {
	m := dataset.NewMatrix()
	m.Add("a", "i1", 1)
	m.Add("a", "i2", 2)
	m.Add("a", "i3", 3)
	m.Add("b", "i1", 4)
	m.Add("b", "i2", 5)
	m.Add("b", "i3", 6)
	m.Add("c", "i1", 6)
	m.Add("c", "i2", 5)
	m.Add("c", "i3", 4)
	rows := rowsOf(m, "a", "b", "c")
	assert.InDelta(t, 1.0, Similarity(rows[0], rows[1], Unweighted, 1), simTestDelta)
	assert.InDelta(t, -1.0, Similarity(rows[0], rows[2], Unweighted, 1), simTestDelta)
}

func TestSimilarity_Symmetry(t *testing.T) {
	m := dataset.NewMatrix()
	m.Add("a", "i1", 5)
	m.Add("a", "i2", 3)
	m.Add("a", "i4", 4)
	m.Add("b", "i1", 4)
	m.Add("b", "i2", 3)
	m.Add("b", "i3", 5)
	m.Add("b", "i5", 2)
	rows := rowsOf(m, "a", "b")
	for _, mode := range []DecayMode{Unweighted, Linear, InversePower, Exponential} {
		for _, alpha := range []float32{0.5, 1, 2} {
			assert.Equal(t,
				Similarity(rows[0], rows[1], mode, alpha),
				Similarity(rows[1], rows[0], mode, alpha),
				"mode=%v alpha=%v", mode, alpha)
		}
	}
}

func TestSimilarity_Degenerate(t *testing.T) {
	m := dataset.NewMatrix()
	// a and b share a single item
	m.Add("a", "i1", 5)
	m.Add("a", "i2", 3)
	m.Add("b", "i2", 4)
	m.Add("b", "i3", 2)
	// c is constant over the items it shares with d
	m.Add("c", "i1", 3)
	m.Add("c", "i2", 3)
	m.Add("d", "i1", 1)
	m.Add("d", "i2", 5)
	rows := rowsOf(m, "a", "b", "c", "d")
	for _, mode := range []DecayMode{Unweighted, Linear, InversePower, Exponential} {
		assert.Zero(t, Similarity(rows[0], rows[1], mode, 1))
		assert.Zero(t, Similarity(rows[2], rows[3], mode, 1))
		assert.False(t, math32.IsNaN(Similarity(rows[0], rows[1], mode, 1)))
	}
}

func TestSimilarity_DecayMonotonicity(t *testing.T) {
	// b and c rate the common items identically, but c has more extra
	// ratings, so its count difference from a is larger.
	m := dataset.NewMatrix()
	m.Add("a", "i1", 1)
	m.Add("a", "i2", 3)
	m.Add("a", "i3", 5)
	for _, user := range []string{"b", "c"} {
		m.Add(user, "i1", 2)
		m.Add(user, "i2", 3)
		m.Add(user, "i3", 4)
	}
	m.Add("c", "i4", 1)
	m.Add("c", "i5", 2)
	m.Add("c", "i6", 3)
	rows := rowsOf(m, "a", "b", "c")
	for _, mode := range []DecayMode{InversePower, Exponential} {
		near := Similarity(rows[0], rows[1], mode, 0.5)
		far := Similarity(rows[0], rows[2], mode, 0.5)
		assert.Positive(t, near)
		assert.Positive(t, far)
		assert.Less(t, far, near, "mode=%v", mode)
	}
	// the unweighted score ignores the count difference
	assert.Equal(t,
		Similarity(rows[0], rows[1], Unweighted, 1),
		Similarity(rows[0], rows[2], Unweighted, 1))
}

func TestSimilarity_DecayFormulas(t *testing.T) {
	m := dataset.NewMatrix()
	m.Add("a", "i1", 1)
	m.Add("a", "i2", 2)
	m.Add("b", "i1", 3)
	m.Add("b", "i2", 5)
	m.Add("b", "i3", 4)
	m.Add("b", "i4", 2)
	rows := rowsOf(m, "a", "b")
	r := Similarity(rows[0], rows[1], Unweighted, 1)
	countDiff := float32(2)
	alpha := float32(0.7)
	assert.InDelta(t, r*alpha/(countDiff+1), Similarity(rows[0], rows[1], Linear, alpha), simTestDelta)
	assert.InDelta(t, r/math32.Pow(countDiff+1, alpha), Similarity(rows[0], rows[1], InversePower, alpha), simTestDelta)
	assert.InDelta(t, r*math32.Exp(-alpha*countDiff), Similarity(rows[0], rows[1], Exponential, alpha), simTestDelta)
}

func TestParseDecayMode(t *testing.T) {
	for _, mode := range []DecayMode{Unweighted, Linear, InversePower, Exponential} {
		parsed, err := ParseDecayMode(mode.String())
		assert.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	_, err := ParseDecayMode("quadratic")
	assert.Error(t, err)
}
