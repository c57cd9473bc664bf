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
package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recwave/recwave/base/log"
	"github.com/recwave/recwave/model/mf"
	"github.com/recwave/recwave/storage"
)

var tuneCommand = &cobra.Command{
	Use:   "tune",
	Short: "Sweep the hyper-parameter grid and keep the best model by held-out RMSE.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := setupConfig(cmd)
		dataset, err := mf.LoadDataFromTSV(conf.Data.Path, conf.Data.Separator)
		if err != nil {
			log.Logger().Fatal("failed to load data set", zap.Error(err))
		}
		trainSet, testSet, err := dataset.SplitRatio(conf.Data.TestRatio, conf.Data.Seed)
		if err != nil {
			log.Logger().Fatal("failed to split data set", zap.Error(err))
		}
		trialLog, err := storage.OpenTrialLog(conf.Tune.TrialLogPath)
		if err != nil {
			log.Logger().Fatal("failed to open trial log", zap.Error(err))
		}
		defer trialLog.Close()
		bar := progressbar.Default(int64(len(conf.Tune.Ranks)*len(conf.Tune.Regs)), "tune")
		searchConfig := mf.NewSearchConfig().
			SetNEpochs(conf.Tune.NEpochs).
			SetSeed(conf.Data.Seed).
			SetFitJobs(conf.Tune.FitJobs).
			SetTrialJobs(conf.Tune.TrialJobs)
		searchConfig.OnTrial = func(trial mf.Trial) {
			if err := trialLog.Append(trial.Reg, trial.Rank, trial.RMSE); err != nil {
				log.Logger().Warn("failed to append trial log", zap.Error(err))
			}
			_ = bar.Add(1)
		}
		result, err := mf.GridSearch(conf.Tune.Ranks, conf.Tune.Regs, trainSet, testSet, searchConfig)
		if err != nil {
			log.Logger().Fatal("grid search failed", zap.Error(err))
		}
		_ = bar.Finish()
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"rank", "lambda", "RMSE"})
		for _, row := range lo.Map(result.Trials, func(trial mf.Trial, _ int) []string {
			return []string{
				fmt.Sprintf("%v", trial.Rank),
				fmt.Sprintf("%v", trial.Reg),
				fmt.Sprintf("%v", trial.RMSE),
			}
		}) {
			table.Append(row)
		}
		table.Render()
		bestLog, err := storage.OpenTrialLog(conf.Tune.BestLogPath)
		if err != nil {
			log.Logger().Fatal("failed to open best log", zap.Error(err))
		}
		defer bestLog.Close()
		if err := bestLog.Append(result.BestTrial.Reg, result.BestTrial.Rank, result.BestTrial.RMSE); err != nil {
			log.Logger().Fatal("failed to append best log", zap.Error(err))
		}
		log.Logger().Info("best model",
			zap.Int("rank", result.BestTrial.Rank),
			zap.Float64("reg", result.BestTrial.Reg),
			zap.Float32("RMSE", result.BestTrial.RMSE))
	},
}
