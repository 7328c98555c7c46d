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

	"github.com/boardrec/boardrec/base"
	"github.com/boardrec/boardrec/common/parallel"
	"github.com/boardrec/boardrec/dataset"
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// PredictConfig configures a Predictor.
type PredictConfig struct {
	// Matrix is an optional precomputed similarity matrix. When set, weights
	// are looked up instead of recomputed per pair.
	Matrix *SimilarityMatrix
	// ScaleByStdDev normalizes neighbor deviations by their standard
	// deviation and rescales by the target user's.
	ScaleByStdDev bool
	// Neighbors caps the candidate pool by sampling that many rows without
	// replacement. Zero means the whole pool.
	Neighbors int
	Seed      int64
	Jobs      int
}

func NewPredictConfig() *PredictConfig {
	return &PredictConfig{Jobs: 1}
}

func (config *PredictConfig) SetMatrix(matrix *SimilarityMatrix) *PredictConfig {
	config.Matrix = matrix
	return config
}

func (config *PredictConfig) SetScaleByStdDev(scale bool) *PredictConfig {
	config.ScaleByStdDev = scale
	return config
}

func (config *PredictConfig) SetNeighbors(neighbors int) *PredictConfig {
	config.Neighbors = neighbors
	return config
}

func (config *PredictConfig) SetSeed(seed int64) *PredictConfig {
	config.Seed = seed
	return config
}

func (config *PredictConfig) SetJobs(jobs int) *PredictConfig {
	config.Jobs = jobs
	return config
}

// Predictor predicts a user's rating for an item from the deviations of
// similar users, weighted by similarity. It never mutates the training
// matrix or the similarity matrix it was given.
type Predictor struct {
	train  *dataset.Matrix
	mode   DecayMode
	alpha  float32
	config *PredictConfig
}

func NewPredictor(train *dataset.Matrix, mode DecayMode, alpha float32, config *PredictConfig) *Predictor {
	if config == nil {
		config = NewPredictConfig()
	}
	return &Predictor{
		train:  train,
		mode:   mode,
		alpha:  alpha,
		config: config,
	}
}

// Predict returns the predicted rating of an item by a user.
//
// The neighbor pool is every other user that rated the item and has nonzero
// standard deviation. The prediction is the user's mean plus the
// similarity-weighted mean deviation of the pool:
//
//	mean_u + Σ[s(u,v)·(r_v − mean_v)] / Σ|s(u,v)|
//
// or, with ScaleByStdDev, deviations are z-scores rescaled by the user's own
// standard deviation. The similarity weight always appears in the numerator,
// whether weights are computed on the fly or looked up in a precomputed
// matrix.
func (p *Predictor) Predict(user, item string) (float32, error) {
	userIndex, ok := p.train.UserDict().Lookup(user)
	if !ok {
		return 0, errors.Annotatef(ErrUserNotExist, "%q", user)
	}
	itemIndex, ok := p.train.ItemDict().Lookup(item)
	if !ok {
		return 0, errors.Annotatef(ErrItemNotExist, "%q", item)
	}
	row := p.train.Row(userIndex)
	_, mean, sd := row.Stats()

	// Neighbors with zero variance cannot carry a defined correlation, so
	// they are dropped from the pool.
	pool := make([]int32, 0, p.train.UserCount())
	for v := int32(0); int(v) < p.train.UserCount(); v++ {
		if v == userIndex || !p.train.Row(v).Rated(itemIndex) {
			continue
		}
		if _, _, vSd := p.train.Row(v).Stats(); vSd == 0 {
			continue
		}
		pool = append(pool, v)
	}
	if len(pool) == 0 {
		return 0, errors.Annotatef(ErrInsufficientData, "no candidate neighbors for user %q and item %q", user, item)
	}
	if p.config.Neighbors > 0 {
		if p.config.Neighbors > len(pool) {
			return 0, errors.Annotatef(ErrInsufficientData,
				"neighbor subset %d exceeds pool of %d", p.config.Neighbors, len(pool))
		}
		// The seed is derived per user so parallel batches stay reproducible.
		rng := base.NewRandomGenerator(p.config.Seed + int64(userIndex))
		sampled := rng.Sample(0, len(pool), p.config.Neighbors)
		subset := make([]int32, 0, len(sampled))
		for _, i := range sampled {
			subset = append(subset, pool[i])
		}
		pool = subset
	}

	var numerator, denominator float32
	for _, v := range pool {
		vRow := p.train.Row(v)
		_, vMean, vSd := vRow.Stats()
		s, err := p.weight(userIndex, v, row, vRow)
		if err != nil {
			return 0, errors.Trace(err)
		}
		rating, _ := vRow.Get(itemIndex)
		if p.config.ScaleByStdDev {
			numerator += s * (rating - vMean) / vSd
		} else {
			numerator += s * (rating - vMean)
		}
		denominator += math32.Abs(s)
	}
	if denominator == 0 {
		return 0, errors.Annotatef(ErrNoNeighbors, "user %q and item %q", user, item)
	}
	if p.config.ScaleByStdDev {
		return mean + sd*numerator/denominator, nil
	}
	return mean + numerator/denominator, nil
}

// PredictOrMean is the documented fallback policy for reporting: when no
// usable neighbors exist, the user's raw mean rating is substituted.
func (p *Predictor) PredictOrMean(user, item string) (float32, error) {
	prediction, err := p.Predict(user, item)
	if errors.Is(err, ErrNoNeighbors) {
		row, _ := p.train.RowOf(user)
		_, mean, _ := row.Stats()
		return mean, nil
	}
	return prediction, errors.Trace(err)
}

// PredictTargets predicts every target in input order. Failures are isolated
// per user: the error slice is aligned with the predictions, and one user's
// failure never aborts the batch. The returned error is non-nil only when
// the context is canceled.
func (p *Predictor) PredictTargets(ctx context.Context, targets []Target) ([]float32, []error, error) {
	predictions := make([]float32, len(targets))
	errs := make([]error, len(targets))
	err := parallel.Parallel(ctx, len(targets), p.config.Jobs, func(_, i int) error {
		predictions[i], errs[i] = p.Predict(targets[i].User, targets[i].Item)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return predictions, errs, nil
}

func (p *Predictor) weight(u, v int32, a, b *dataset.Row) (float32, error) {
	if p.config.Matrix == nil {
		return Similarity(a, b, p.mode, p.alpha), nil
	}
	uId, _ := p.train.UserDict().String(u)
	vId, _ := p.train.UserDict().String(v)
	s, err := p.config.Matrix.Lookup(uId, vId)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return s, nil
}
