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
	"fmt"

	"github.com/boardrec/boardrec/dataset"
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// DecayMode selects the strategy that shrinks the similarity between users
// with very different numbers of ratings.
type DecayMode int

const (
	// Unweighted applies no adjustment.
	Unweighted DecayMode = iota
	// Linear multiplies the correlation by alpha/(countDiff+1).
	Linear
	// InversePower divides the correlation by (countDiff+1)^alpha.
	InversePower
	// Exponential multiplies the correlation by exp(-alpha*countDiff).
	Exponential
)

func (m DecayMode) String() string {
	switch m {
	case Unweighted:
		return "unweighted"
	case Linear:
		return "linear"
	case InversePower:
		return "inverse-power"
	case Exponential:
		return "exponential"
	default:
		return fmt.Sprintf("DecayMode(%d)", int(m))
	}
}

// ParseDecayMode parses the name of a decay mode.
func ParseDecayMode(s string) (DecayMode, error) {
	switch s {
	case "unweighted":
		return Unweighted, nil
	case "linear":
		return Linear, nil
	case "inverse-power":
		return InversePower, nil
	case "exponential":
		return Exponential, nil
	default:
		return 0, errors.NotValidf("decay mode %q", s)
	}
}

// Similarity computes the similarity between two users as the Pearson
// correlation over their commonly rated items, decayed by the difference in
// their total rating counts. An undefined correlation (fewer than 2 common
// items, or zero variance over the common items) yields 0, not an error.
// Similarity is symmetric in the two rows for every mode.
func Similarity(a, b *dataset.Row, mode DecayMode, alpha float32) float32 {
	r := pearson(a, b)
	if r == 0 {
		return 0
	}
	countDiff := float32(a.Count() - b.Count())
	if countDiff < 0 {
		countDiff = -countDiff
	}
	switch mode {
	case Unweighted:
		return r
	case Linear:
		return r * alpha / (countDiff + 1)
	case InversePower:
		return r / math32.Pow(countDiff+1, alpha)
	case Exponential:
		return r * math32.Exp(-alpha*countDiff)
	default:
		panic(fmt.Sprintf("unknown decay mode %d", int(mode)))
	}
}

// pearson computes the Pearson correlation of two rows restricted to their
// common items.
func pearson(a, b *dataset.Row) float32 {
	var n, sumA, sumB, sumA2, sumB2, sumAB float32
	a.ForIntersection(b, func(_ int32, x, y float32) {
		n++
		sumA += x
		sumB += y
		sumA2 += x * x
		sumB2 += y * y
		sumAB += x * y
	})
	if n < 2 {
		return 0
	}
	varA := n*sumA2 - sumA*sumA
	varB := n*sumB2 - sumB*sumB
	if varA <= 0 || varB <= 0 {
		return 0
	}
	r := (n*sumAB - sumA*sumB) / math32.Sqrt(varA*varB)
	if math32.IsNaN(r) {
		return 0
	}
	return r
}
