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

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/boardrec/boardrec/base/log"
	"github.com/boardrec/boardrec/cf"
	"github.com/boardrec/boardrec/config"
	"github.com/boardrec/boardrec/dataset"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "boardrec",
	Short: "Boardgame rating prediction by user-user collaborative filtering.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Root().PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.Root().PersistentFlags(), debug)
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate RATINGS_FILE",
	Short: "Estimate prediction accuracy by Monte-Carlo cross validation.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		mode, err := conf.DecayMode()
		if err != nil {
			log.Logger().Fatal("invalid decay mode", zap.Error(err))
		}
		ratings, err := dataset.LoadRatings(args[0])
		if err != nil {
			log.Logger().Fatal("failed to load ratings", zap.Error(err))
		}
		log.Logger().Info("loaded ratings",
			zap.String("path", args[0]),
			zap.Int("users", ratings.UserCount()),
			zap.Int("items", ratings.ItemCount()),
			zap.Int("ratings", ratings.NumRatings()))
		predictConfig := cf.NewPredictConfig().
			SetScaleByStdDev(conf.Eval.ScaleByStdDev).
			SetNeighbors(conf.Eval.Neighbors).
			SetSeed(conf.Eval.Seed).
			SetJobs(conf.Eval.Jobs)
		if path, _ := cmd.Flags().GetString("similarity-matrix"); path != "" {
			matrix, err := cf.LoadSimilarityMatrixFile(path)
			if err != nil {
				log.Logger().Fatal("failed to load similarity matrix", zap.Error(err))
			}
			predictConfig.SetMatrix(matrix)
		}
		result, err := cf.CrossValidate(context.Background(), ratings,
			conf.Eval.Rounds, mode, conf.Similarity.Alpha, predictConfig)
		if err != nil {
			log.Logger().Fatal("cross validation failed", zap.Error(err))
		}
		table := tablewriter.NewTable(os.Stdout)
		table.Header("round", "rmse")
		for i, rmse := range result.Rounds {
			_ = table.Append(strconv.Itoa(i+1), fmt.Sprintf("%.4f", rmse))
		}
		_ = table.Append("mean", fmt.Sprintf("%.4f", result.Mean))
		if err = table.Render(); err != nil {
			log.Logger().Fatal("failed to render table", zap.Error(err))
		}
		if result.Failed > 0 {
			fmt.Printf("%d rounds excluded\n", result.Failed)
		}
	},
}

var similarityCmd = &cobra.Command{
	Use:   "similarity RATINGS_FILE OUTPUT_FILE",
	Short: "Precompute the pairwise user similarity matrix.",
	Long: "Precompute the pairwise user similarity matrix and save it as CSV. " +
		"The build costs O(n^2) pair evaluations, so for large user populations " +
		"it is worth paying once and reusing across evaluate runs.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		mode, err := conf.DecayMode()
		if err != nil {
			log.Logger().Fatal("invalid decay mode", zap.Error(err))
		}
		ratings, err := dataset.LoadRatings(args[0])
		if err != nil {
			log.Logger().Fatal("failed to load ratings", zap.Error(err))
		}
		bar := progressbar.Default(int64(ratings.UserCount()), "similarity")
		matrix, err := cf.BuildSimilarityMatrix(context.Background(), ratings,
			mode, conf.Similarity.Alpha,
			cf.NewBuildConfig().
				SetJobs(conf.Eval.Jobs).
				SetProgress(func(completed, total int) {
					_ = bar.Set(completed)
				}))
		if err != nil {
			log.Logger().Fatal("failed to build similarity matrix", zap.Error(err))
		}
		if err = matrix.SaveFile(args[1]); err != nil {
			log.Logger().Fatal("failed to save similarity matrix", zap.Error(err))
		}
		log.Logger().Info("saved similarity matrix",
			zap.String("path", args[1]),
			zap.Int("users", matrix.UserCount()))
	},
}

// loadConfig reads the config file if given and applies flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	var conf *config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		conf, err = config.LoadConfig(path)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
	} else {
		conf = config.GetDefaultConfig()
	}
	flags := cmd.Flags()
	if flags.Changed("mode") {
		conf.Similarity.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("alpha") {
		conf.Similarity.Alpha, _ = flags.GetFloat32("alpha")
	}
	if flags.Changed("rounds") {
		conf.Eval.Rounds, _ = flags.GetInt("rounds")
	}
	if flags.Changed("neighbors") {
		conf.Eval.Neighbors, _ = flags.GetInt("neighbors")
	}
	if flags.Changed("scale-by-std-dev") {
		conf.Eval.ScaleByStdDev, _ = flags.GetBool("scale-by-std-dev")
	}
	if flags.Changed("seed") {
		conf.Eval.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("jobs") {
		conf.Eval.Jobs, _ = flags.GetInt("jobs")
	}
	if err := conf.Validate(); err != nil {
		log.Logger().Fatal("invalid config", zap.Error(err))
	}
	return conf
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path of config file")
	cmd.Flags().String("mode", "unweighted", "decay mode (unweighted, linear, inverse-power, exponential)")
	cmd.Flags().Float32("alpha", 1, "smoothing parameter of the decay")
	cmd.Flags().Int("jobs", 1, "number of parallel workers")
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "use debug log mode")
	log.AddFlags(rootCmd.PersistentFlags())
	addCommonFlags(evaluateCmd)
	evaluateCmd.Flags().String("similarity-matrix", "", "path of a precomputed similarity matrix")
	evaluateCmd.Flags().Int("rounds", 10, "number of evaluation rounds")
	evaluateCmd.Flags().Int("neighbors", 0, "neighbor pool cap per prediction (0 keeps the whole pool)")
	evaluateCmd.Flags().Bool("scale-by-std-dev", false, "normalize neighbor deviations by standard deviation")
	evaluateCmd.Flags().Int64("seed", 0, "random seed")
	addCommonFlags(similarityCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(similarityCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
