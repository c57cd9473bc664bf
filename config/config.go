// Copyright 2025 recwave Project Authors
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
	"runtime"

	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of the batch job.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Tune      TuneConfig      `mapstructure:"tune"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// DataConfig describes the input file and the train/test split.
type DataConfig struct {
	Path      string  `mapstructure:"path"`
	Separator string  `mapstructure:"separator"`
	TestRatio float64 `mapstructure:"test_ratio"`
	Seed      int64   `mapstructure:"seed"`
}

// TuneConfig describes the hyper-parameter sweep.
type TuneConfig struct {
	Ranks        []int     `mapstructure:"ranks"`
	Regs         []float64 `mapstructure:"regs"`
	NEpochs      int       `mapstructure:"n_epochs"`
	FitJobs      int       `mapstructure:"fit_jobs"`
	TrialJobs    int       `mapstructure:"trial_jobs"`
	TrialLogPath string    `mapstructure:"trial_log_path"`
	BestLogPath  string    `mapstructure:"best_log_path"`
}

// RecommendConfig describes recommendation output.
type RecommendConfig struct {
	TopN int `mapstructure:"top_n"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Separator: "\t",
			TestRatio: 0.2,
			Seed:      0,
		},
		Tune: TuneConfig{
			Ranks:        []int{5, 10, 20},
			Regs:         []float64{0.01, 0.1, 0.5},
			NEpochs:      10,
			FitJobs:      runtime.NumCPU(),
			TrialJobs:    1,
			TrialLogPath: "trials.log",
			BestLogPath:  "best.log",
		},
		Recommend: RecommendConfig{
			TopN: 10,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaults := GetDefaultConfig()
	v.SetDefault("data.separator", defaults.Data.Separator)
	v.SetDefault("data.test_ratio", defaults.Data.TestRatio)
	v.SetDefault("data.seed", defaults.Data.Seed)
	v.SetDefault("tune.ranks", defaults.Tune.Ranks)
	v.SetDefault("tune.regs", defaults.Tune.Regs)
	v.SetDefault("tune.n_epochs", defaults.Tune.NEpochs)
	v.SetDefault("tune.fit_jobs", defaults.Tune.FitJobs)
	v.SetDefault("tune.trial_jobs", defaults.Tune.TrialJobs)
	v.SetDefault("tune.trial_log_path", defaults.Tune.TrialLogPath)
	v.SetDefault("tune.best_log_path", defaults.Tune.BestLogPath)
	v.SetDefault("recommend.top_n", defaults.Recommend.TopN)
}

// LoadConfig loads the configuration from a TOML file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
