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
	"github.com/boardrec/boardrec/base/log"
	"github.com/boardrec/boardrec/dataset"
	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// RMSE computes the root mean squared error over aligned predictions and
// ground truths. It panics when the lengths differ, since misaligned slices
// are a caller bug, and returns 0 when both are empty.
func RMSE(predictions, truths []float32) float32 {
	if len(predictions) != len(truths) {
		panic("prediction and truth lengths mismatch")
	}
	if len(predictions) == 0 {
		return 0
	}
	var sum float32
	for i := range predictions {
		diff := predictions[i] - truths[i]
		sum += diff * diff
	}
	return math32.Sqrt(sum / float32(len(predictions)))
}

// CrossValidateResult contains the result of Monte-Carlo cross validation.
type CrossValidateResult struct {
	// Rounds holds the RMSE of every completed round.
	Rounds []float64
	// Mean is the mean RMSE over completed rounds.
	Mean float64
	// Failed counts rounds excluded because no prediction succeeded.
	Failed int
}

// CrossValidate evaluates prediction accuracy by k rounds of Monte-Carlo
// cross validation: each round holds one random rating per user out of the
// matrix, predicts it back and measures RMSE against the ground truth.
// Within a round, per-user prediction failures are dropped from the RMSE; a
// round with no successful prediction is excluded from the mean. Round seeds
// are derived from config.Seed, so results are reproducible.
func CrossValidate(ctx context.Context, m *dataset.Matrix, k int, mode DecayMode, alpha float32, config *PredictConfig) (CrossValidateResult, error) {
	if config == nil {
		config = NewPredictConfig()
	}
	result := CrossValidateResult{Rounds: make([]float64, 0, k)}
	for round := 0; round < k; round++ {
		if err := ctx.Err(); err != nil {
			return CrossValidateResult{}, errors.Trace(err)
		}
		rng := base.NewRandomGenerator(config.Seed + int64(round))
		targets, reduced, err := SampleTargets(m, rng)
		if err != nil {
			return CrossValidateResult{}, errors.Trace(err)
		}
		roundConfig := *config
		roundConfig.Seed = config.Seed + int64(round)
		predictor := NewPredictor(reduced, mode, alpha, &roundConfig)
		predictions, errs, err := predictor.PredictTargets(ctx, targets)
		if err != nil {
			return CrossValidateResult{}, errors.Trace(err)
		}
		predicted := make([]float32, 0, len(targets))
		truth := make([]float32, 0, len(targets))
		for i := range targets {
			if errs[i] != nil {
				log.Logger().Debug("prediction failed",
					zap.String("user", targets[i].User),
					zap.String("item", targets[i].Item),
					zap.Error(errs[i]))
				continue
			}
			predicted = append(predicted, predictions[i])
			truth = append(truth, targets[i].Rating)
		}
		if len(predicted) == 0 {
			result.Failed++
			log.Logger().Warn("cross validation round excluded", zap.Int("round", round))
			continue
		}
		rmse := float64(RMSE(predicted, truth))
		result.Rounds = append(result.Rounds, rmse)
		log.Logger().Info("cross validation round",
			zap.Int("round", round),
			zap.Float64("rmse", rmse),
			zap.Int("predicted", len(predicted)),
			zap.Int("failed", len(targets)-len(predicted)))
	}
	if len(result.Rounds) > 0 {
		result.Mean = stat.Mean(result.Rounds, nil)
	}
	return result, nil
}
