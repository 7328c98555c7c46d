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

package config

import (
	"github.com/boardrec/boardrec/cf"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for boardrec.
type Config struct {
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Eval       EvalConfig       `mapstructure:"eval"`
}

// SimilarityConfig configures the similarity function.
type SimilarityConfig struct {
	// Mode is the decay mode: unweighted, linear, inverse-power or
	// exponential.
	Mode string `mapstructure:"mode"`
	// Alpha is the smoothing parameter of the decay.
	Alpha float32 `mapstructure:"alpha"`
}

// EvalConfig configures Monte-Carlo cross validation.
type EvalConfig struct {
	// Rounds is the number of evaluation rounds.
	Rounds int `mapstructure:"rounds"`
	// Neighbors caps the neighbor pool per prediction. Zero keeps the whole
	// pool.
	Neighbors int `mapstructure:"neighbors"`
	// ScaleByStdDev normalizes neighbor deviations by standard deviation.
	ScaleByStdDev bool `mapstructure:"scale_by_std_dev"`
	// Seed makes holdout sampling and neighbor subsetting reproducible.
	Seed int64 `mapstructure:"seed"`
	// Jobs is the number of parallel workers.
	Jobs int `mapstructure:"jobs"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Similarity: SimilarityConfig{
			Mode:  "unweighted",
			Alpha: 1,
		},
		Eval: EvalConfig{
			Rounds: 10,
			Seed:   0,
			Jobs:   1,
		},
	}
}

func setDefault() {
	defaults := GetDefaultConfig()
	viper.SetDefault("similarity.mode", defaults.Similarity.Mode)
	viper.SetDefault("similarity.alpha", defaults.Similarity.Alpha)
	viper.SetDefault("eval.rounds", defaults.Eval.Rounds)
	viper.SetDefault("eval.neighbors", defaults.Eval.Neighbors)
	viper.SetDefault("eval.scale_by_std_dev", defaults.Eval.ScaleByStdDev)
	viper.SetDefault("eval.seed", defaults.Eval.Seed)
	viper.SetDefault("eval.jobs", defaults.Eval.Jobs)
}

// LoadConfig loads a TOML configuration file and validates it.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// DecayMode parses the configured decay mode.
func (config *Config) DecayMode() (cf.DecayMode, error) {
	return cf.ParseDecayMode(config.Similarity.Mode)
}

// Validate checks the configuration.
func (config *Config) Validate() error {
	if _, err := cf.ParseDecayMode(config.Similarity.Mode); err != nil {
		return errors.Trace(err)
	}
	if config.Similarity.Alpha < 0 {
		return errors.NotValidf("similarity.alpha %v", config.Similarity.Alpha)
	}
	if config.Eval.Rounds <= 0 {
		return errors.NotValidf("eval.rounds %v", config.Eval.Rounds)
	}
	if config.Eval.Neighbors < 0 {
		return errors.NotValidf("eval.neighbors %v", config.Eval.Neighbors)
	}
	if config.Eval.Jobs <= 0 {
		return errors.NotValidf("eval.jobs %v", config.Eval.Jobs)
	}
	return nil
}
