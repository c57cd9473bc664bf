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
	"fmt"
	"sync"
	"time"

	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/recwave/recwave/base/log"
	"github.com/recwave/recwave/base/parallel"
	"github.com/recwave/recwave/model"
)

// Trial is the outcome of a single grid cell.
type Trial struct {
	Rank int
	Reg  float64
	RMSE float32
}

// SearchConfig carries runtime options for a grid search sweep.
type SearchConfig struct {
	NEpochs   int
	Seed      int64
	FitJobs   int // workers inside a single trial
	TrialJobs int // concurrent trials
	// OnTrial observes every completed trial. Calls are serialized, so the
	// observer may append to a durable trial log without extra locking.
	OnTrial func(Trial)
}

// NewSearchConfig creates a default search config.
func NewSearchConfig() *SearchConfig {
	return &SearchConfig{
		NEpochs:   10,
		FitJobs:   1,
		TrialJobs: 1,
	}
}

func (config *SearchConfig) SetNEpochs(nEpochs int) *SearchConfig {
	config.NEpochs = nEpochs
	return config
}

func (config *SearchConfig) SetSeed(seed int64) *SearchConfig {
	config.Seed = seed
	return config
}

func (config *SearchConfig) SetFitJobs(nJobs int) *SearchConfig {
	config.FitJobs = nJobs
	return config
}

func (config *SearchConfig) SetTrialJobs(nJobs int) *SearchConfig {
	config.TrialJobs = nJobs
	return config
}

func (config *SearchConfig) LoadDefaultIfNil() *SearchConfig {
	if config == nil {
		return NewSearchConfig()
	}
	return config
}

// SearchResult contains the return of a grid search.
type SearchResult struct {
	BestModel *ALS
	BestTrial Trial
	BestIndex int
	Trials    []Trial
}

type gridCell struct {
	rank int
	reg  float64
}

type trialResult struct {
	model *ALS
	trial Trial
	err   error
}

// GridSearch sweeps the Cartesian product of rank and regularization
// candidates, ranks outer and regularization inner, fits a model per cell on
// the train set and scores it on the test set by RMSE. Trials are independent
// and run on a worker pool; the best cell is selected by a reduction step
// afterwards, minimum RMSE with ties kept by the first-seen combination. A
// trial that fails to fit or score is dropped from selection and the sweep
// continues.
func GridSearch(ranks []int, regs []float64, trainSet, testSet *DataSet, config *SearchConfig) (*SearchResult, error) {
	config = config.LoadDefaultIfNil()
	if len(ranks) == 0 || len(regs) == 0 {
		return nil, errors.New("empty hyper-parameter grid")
	}
	cells := make([]gridCell, 0, len(ranks)*len(regs))
	for _, rank := range ranks {
		for _, reg := range regs {
			cells = append(cells, gridCell{rank: rank, reg: reg})
		}
	}
	log.Logger().Info("grid search",
		zap.Ints("ranks", ranks),
		zap.Float64s("regs", regs),
		zap.Int("n_trials", len(cells)),
		zap.Int("n_epochs", config.NEpochs))
	startTime := time.Now()
	results := make([]trialResult, len(cells))
	completed := atomic.NewInt32(0)
	var observerMutex sync.Mutex
	err := parallel.Parallel(len(cells), config.TrialJobs, func(workerId, cellIndex int) error {
		cell := cells[cellIndex]
		results[cellIndex] = runTrial(cell, trainSet, testSet, config)
		progress := completed.Inc()
		if results[cellIndex].err == nil {
			log.Logger().Info(fmt.Sprintf("grid search (%v/%v)", progress, len(cells)),
				zap.Int("rank", cell.rank),
				zap.Float64("reg", cell.reg),
				zap.Float32("RMSE", results[cellIndex].trial.RMSE))
			if config.OnTrial != nil {
				observerMutex.Lock()
				config.OnTrial(results[cellIndex].trial)
				observerMutex.Unlock()
			}
		} else {
			log.Logger().Warn(fmt.Sprintf("grid search (%v/%v): trial failed", progress, len(cells)),
				zap.Int("rank", cell.rank),
				zap.Float64("reg", cell.reg),
				zap.Error(results[cellIndex].err))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	// Reduction: pick the minimum RMSE, first seen cell wins ties.
	result := &SearchResult{BestIndex: -1}
	for i, r := range results {
		if r.err != nil {
			continue
		}
		result.Trials = append(result.Trials, r.trial)
		if result.BestModel == nil || r.trial.RMSE < result.BestTrial.RMSE {
			result.BestModel = r.model
			result.BestTrial = r.trial
			result.BestIndex = i
		}
	}
	if result.BestModel == nil {
		return nil, errors.New("all grid search trials failed")
	}
	log.Logger().Info("complete grid search",
		zap.Int("rank", result.BestTrial.Rank),
		zap.Float64("reg", result.BestTrial.Reg),
		zap.Float32("RMSE", result.BestTrial.RMSE),
		zap.String("search_time", time.Since(startTime).String()))
	return result, nil
}

func runTrial(cell gridCell, trainSet, testSet *DataSet, config *SearchConfig) trialResult {
	estimator := NewALS(model.Params{
		model.NFactors:    cell.rank,
		model.Reg:         cell.reg,
		model.NEpochs:     config.NEpochs,
		model.RandomState: config.Seed,
	})
	if err := estimator.Fit(trainSet, NewFitConfig().SetJobs(config.FitJobs)); err != nil {
		return trialResult{err: errors.Trace(err)}
	}
	rmse, err := RMSE(estimator, testSet, trainSet, config.FitJobs)
	if err != nil {
		return trialResult{err: errors.Trace(err)}
	}
	return trialResult{
		model: estimator,
		trial: Trial{Rank: cell.rank, Reg: cell.reg, RMSE: rmse},
	}
}
