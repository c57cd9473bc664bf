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
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/recwave/recwave/base"
	"github.com/recwave/recwave/base/log"
	"github.com/recwave/recwave/base/parallel"
	"github.com/recwave/recwave/model"
)

// FitConfig carries runtime options for model fitting.
type FitConfig struct {
	Jobs    int
	Verbose int
}

// NewFitConfig creates a default fit config.
func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
	}
}

func (config *FitConfig) SetJobs(nJobs int) *FitConfig {
	config.Jobs = nJobs
	return config
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// MatrixFactorization is the interface for factorization models over implicit
// feedback.
type MatrixFactorization interface {
	model.Model
	// Fit a model with a train set.
	Fit(trainSet *DataSet, config *FitConfig) error
	// Predict the score given by a user (userId) to an item (itemId).
	Predict(userId, itemId string) float32
	// InternalPredict predicts the score given by a user index to an item index.
	InternalPredict(userIndex, itemIndex int32) float32
	// GetUserIndex returns the user index.
	GetUserIndex() *base.Index
	// GetItemIndex returns the item index.
	GetItemIndex() *base.Index
}

// ALS factorizes the implicit rating matrix by alternating least squares.
// Only observed (user, item) pairs enter the per-row least-squares systems;
// unobserved pairs are not penalized. This is the simplified variant for
// binary implicit feedback, not the weighted full-matrix one.
//
// Hyper-parameters:
//
//	NFactors   - The number of latent factors. Default is 10.
//	NEpochs    - The number of training epochs. Default is 10.
//	Reg        - The strength of regularization. Must be positive. Default is 0.1.
//	InitMean   - The mean of initial latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial latent factors. Default is 0.1.
type ALS struct {
	model.BaseModel
	UserIndex *base.Index
	ItemIndex *base.Index
	// Model parameters
	UserFactor *mat.Dense // p_u
	ItemFactor *mat.Dense // q_i
	// Hyper parameters
	nFactors   int
	nEpochs    int
	reg        float64
	initMean   float64
	initStdDev float64
}

// NewALS creates an ALS model.
func NewALS(params model.Params) *ALS {
	als := new(ALS)
	als.SetParams(params)
	return als
}

// SetParams sets hyper-parameters for the ALS model.
func (als *ALS) SetParams(params model.Params) {
	als.BaseModel.SetParams(params)
	als.nFactors = als.Params.GetInt(model.NFactors, 10)
	als.nEpochs = als.Params.GetInt(model.NEpochs, 10)
	als.reg = als.Params.GetFloat64(model.Reg, 0.1)
	als.initMean = als.Params.GetFloat64(model.InitMean, 0)
	als.initStdDev = als.Params.GetFloat64(model.InitStdDev, 0.1)
}

func (als *ALS) GetParamsGrid() model.ParamsGrid {
	return model.ParamsGrid{
		model.NFactors: []interface{}{5, 10, 20, 50},
		model.Reg:      []interface{}{0.01, 0.05, 0.1, 0.5},
	}
}

// Rank returns the dimensionality of the latent factor space.
func (als *ALS) Rank() int {
	return als.nFactors
}

func (als *ALS) GetUserIndex() *base.Index {
	return als.UserIndex
}

func (als *ALS) GetItemIndex() *base.Index {
	return als.ItemIndex
}

// Predict by the ALS model.
func (als *ALS) Predict(userId, itemId string) float32 {
	userIndex := als.UserIndex.ToNumber(userId)
	itemIndex := als.ItemIndex.ToNumber(itemId)
	if userIndex == base.NotId {
		log.Logger().Info("unknown user", zap.String("user_id", userId))
		return 0
	}
	if itemIndex == base.NotId {
		log.Logger().Info("unknown item", zap.String("item_id", itemId))
		return 0
	}
	return als.InternalPredict(userIndex, itemIndex)
}

func (als *ALS) InternalPredict(userIndex, itemIndex int32) float32 {
	if userIndex == base.NotId || itemIndex == base.NotId {
		log.Logger().Warn("unknown user or item")
		return 0
	}
	return float32(mat.Dot(als.UserFactor.RowView(int(userIndex)),
		als.ItemFactor.RowView(int(itemIndex))))
}

// Fit the ALS model. Alternates between recomputing all user factors against
// fixed item factors and vice versa. Each per-row solve is the closed-form
// ridge system over that row's observed interactions only:
//
//	(Q^T Q + λI) p_u = Q^T r_u
//
// where Q stacks the factors of the user's observed items and r_u is all
// ones. λ > 0 keeps the system positive definite, so the Cholesky solve
// cannot hit a singular matrix; a failed factorization is surfaced as an
// error and aborts the fit.
func (als *ALS) Fit(trainSet *DataSet, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if als.reg <= 0 {
		return errors.Errorf("regularization must be positive, got %v", als.reg)
	}
	if als.nFactors <= 0 {
		return errors.Errorf("number of factors must be positive, got %v", als.nFactors)
	}
	if trainSet.Count() == 0 {
		return errors.New("train set is empty")
	}
	log.Logger().Info("fit als",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("n_users", trainSet.UserCount()),
		zap.Int("n_items", trainSet.ItemCount()),
		zap.Any("params", als.GetParams()),
		zap.Any("config", config))
	als.Init(trainSet)
	// Create temporary buffers
	a := make([]*mat.SymDense, config.Jobs)
	b := make([]*mat.VecDense, config.Jobs)
	x := make([]*mat.VecDense, config.Jobs)
	for i := 0; i < config.Jobs; i++ {
		a[i] = mat.NewSymDense(als.nFactors, nil)
		b[i] = mat.NewVecDense(als.nFactors, nil)
		x[i] = mat.NewVecDense(als.nFactors, nil)
	}
	for epoch := 1; epoch <= als.nEpochs; epoch++ {
		fitStart := time.Now()
		// Recompute all user factors: p_u = (Q^T Q + λI)^{-1} Q^T r_u
		err := parallel.Parallel(trainSet.UserCount(), config.Jobs, func(workerId, userIndex int) error {
			feedback := trainSet.UserFeedback[userIndex]
			if len(feedback) == 0 {
				return nil
			}
			if err := solveRow(a[workerId], b[workerId], x[workerId], als.ItemFactor, feedback, als.reg); err != nil {
				return errors.Annotatef(err, "user %d", userIndex)
			}
			als.UserFactor.SetRow(userIndex, x[workerId].RawVector().Data)
			return nil
		})
		if err != nil {
			return errors.Trace(err)
		}
		// Recompute all item factors: q_i = (P^T P + λI)^{-1} P^T r_i
		err = parallel.Parallel(trainSet.ItemCount(), config.Jobs, func(workerId, itemIndex int) error {
			feedback := trainSet.ItemFeedback[itemIndex]
			if len(feedback) == 0 {
				return nil
			}
			if err := solveRow(a[workerId], b[workerId], x[workerId], als.UserFactor, feedback, als.reg); err != nil {
				return errors.Annotatef(err, "item %d", itemIndex)
			}
			als.ItemFactor.SetRow(itemIndex, x[workerId].RawVector().Data)
			return nil
		})
		if err != nil {
			return errors.Trace(err)
		}
		if epoch%config.Verbose == 0 || epoch == als.nEpochs {
			log.Logger().Debug(fmt.Sprintf("fit als %v/%v", epoch, als.nEpochs),
				zap.String("fit_time", time.Since(fitStart).String()))
		}
	}
	log.Logger().Info("fit als complete")
	return nil
}

// solveRow solves (F^T F + λI) x = F^T 1 over the observed rows of the fixed
// factor matrix.
func solveRow(a *mat.SymDense, b, x *mat.VecDense, factors *mat.Dense, observed []int32, reg float64) error {
	a.Zero()
	b.Zero()
	for _, index := range observed {
		row := factors.RowView(int(index))
		a.SymRankOne(a, 1, row)
		b.AddVec(b, row)
	}
	n := a.SymmetricDim()
	for i := 0; i < n; i++ {
		a.SetSym(i, i, a.At(i, i)+reg)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return errors.New("linear system is not positive definite")
	}
	if err := chol.SolveVecTo(x, b); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// Init allocates factor matrices filled with seeded gaussian noise. Rows of
// users and items without observations keep these initial values.
func (als *ALS) Init(trainSet *DataSet) {
	rng := als.GetRandomGenerator()
	als.UserFactor = mat.NewDense(trainSet.UserCount(), als.nFactors,
		rng.NormalVector64(trainSet.UserCount()*als.nFactors, als.initMean, als.initStdDev))
	als.ItemFactor = mat.NewDense(trainSet.ItemCount(), als.nFactors,
		rng.NormalVector64(trainSet.ItemCount()*als.nFactors, als.initMean, als.initStdDev))
	als.UserIndex = trainSet.UserIndex
	als.ItemIndex = trainSet.ItemIndex
}

func (als *ALS) Clear() {
	als.UserIndex = nil
	als.ItemIndex = nil
	als.UserFactor = nil
	als.ItemFactor = nil
}

func (als *ALS) Invalid() bool {
	return als == nil ||
		als.UserIndex == nil ||
		als.ItemIndex == nil ||
		als.UserFactor == nil ||
		als.ItemFactor == nil
}
