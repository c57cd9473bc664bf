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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recwave/recwave/base/log"
	"github.com/recwave/recwave/model"
	"github.com/recwave/recwave/model/mf"
)

var recommendCommand = &cobra.Command{
	Use:   "recommend",
	Short: "Fit a model on the full data set and print top products for a user.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := setupConfig(cmd)
		userId, _ := cmd.Flags().GetString("user")
		topN, _ := cmd.Flags().GetInt("top-n")
		if topN <= 0 {
			topN = conf.Recommend.TopN
		}
		rank, _ := cmd.Flags().GetInt("rank")
		reg, _ := cmd.Flags().GetFloat64("reg")
		nEpochs, _ := cmd.Flags().GetInt("n-epochs")
		dataset, err := mf.LoadDataFromTSV(conf.Data.Path, conf.Data.Separator)
		if err != nil {
			log.Logger().Fatal("failed to load data set", zap.Error(err))
		}
		estimator := mf.NewALS(model.Params{
			model.NFactors:    rank,
			model.Reg:         reg,
			model.NEpochs:     nEpochs,
			model.RandomState: conf.Data.Seed,
		})
		if err := estimator.Fit(dataset, mf.NewFitConfig().SetJobs(conf.Tune.FitJobs)); err != nil {
			log.Logger().Fatal("failed to fit model", zap.Error(err))
		}
		recommendations, err := mf.Recommend(estimator, dataset, userId, topN)
		if err != nil {
			log.Logger().Fatal("failed to recommend", zap.Error(err))
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"product", "score"})
		for _, recommendation := range recommendations {
			table.Append([]string{recommendation.ItemId, fmt.Sprintf("%v", recommendation.Score)})
		}
		table.Render()
	},
}

func init() {
	recommendCommand.Flags().StringP("user", "u", "", "user to recommend for")
	recommendCommand.Flags().IntP("top-n", "n", 0, "number of products to recommend")
	recommendCommand.Flags().Int("rank", 10, "number of latent factors")
	recommendCommand.Flags().Float64("reg", 0.1, "regularization strength")
	recommendCommand.Flags().Int("n-epochs", 10, "number of training epochs")
	_ = recommendCommand.MarkFlagRequired("user")
}
