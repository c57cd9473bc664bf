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

package mf

import (
	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/recwave/recwave/base/log"
	"github.com/recwave/recwave/base/parallel"
)

const evaluatorBatchSize = 128

// RMSE computes the root-mean-square error of predictions over the held-out
// set. Triples whose user or item has no training-time observations carry no
// learned factors; they are skipped and counted instead of scored. Scoring an
// entirely cold held-out set is an error.
func RMSE(estimator MatrixFactorization, testSet, trainSet *DataSet, nJobs int) (float32, error) {
	if nJobs < 1 {
		nJobs = 1
	}
	partSum := make([]float32, nJobs)
	partCount := make([]int, nJobs)
	partSkip := make([]int, nJobs)
	err := parallel.BatchParallel(testSet.Count(), nJobs, evaluatorBatchSize, func(workerId, beginJobId, endJobId int) error {
		for i := beginJobId; i < endJobId; i++ {
			rating := testSet.Ratings[i]
			if len(trainSet.UserFeedback[rating.User]) == 0 || len(trainSet.ItemFeedback[rating.Item]) == 0 {
				partSkip[workerId]++
				continue
			}
			diff := estimator.InternalPredict(rating.User, rating.Item) - rating.Confidence
			partSum[workerId] += diff * diff
			partCount[workerId]++
		}
		return nil
	})
	if err != nil {
		return 0, errors.Trace(err)
	}
	sum := float32(0)
	count, skipped := 0, 0
	for i := 0; i < nJobs; i++ {
		sum += partSum[i]
		count += partCount[i]
		skipped += partSkip[i]
	}
	if count == 0 {
		return 0, errors.New("no scorable ratings in the held-out set")
	}
	if skipped > 0 {
		log.Logger().Debug("skipped cold-start ratings in evaluation",
			zap.Int("n_skipped", skipped),
			zap.Int("n_scored", count))
	}
	return math32.Sqrt(sum / float32(count)), nil
}
