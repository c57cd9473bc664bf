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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recwave/recwave/model"
)

// newTestDataset builds a small dense purchase history.
func newTestDataset() *DataSet {
	dataset := NewMapIndexDataset()
	users := []string{"u1", "u2", "u3", "u4", "u5"}
	items := []string{"pA", "pB", "pC", "pD"}
	for i, userId := range users {
		for j, itemId := range items {
			// drop one pair per user to leave unobserved cells
			if (i+j)%4 == 0 {
				continue
			}
			dataset.AddFeedback(userId, itemId)
		}
	}
	return dataset
}

func TestALS_Fit(t *testing.T) {
	trainSet := newTestDataset()
	als := NewALS(model.Params{
		model.NFactors:    4,
		model.NEpochs:     10,
		model.Reg:         0.01,
		model.RandomState: 42,
	})
	assert.True(t, als.Invalid())
	err := als.Fit(trainSet, NewFitConfig().SetJobs(2))
	assert.NoError(t, err)
	assert.False(t, als.Invalid())
	// factor shapes: users x k and items x k
	rows, cols := als.UserFactor.Dims()
	assert.Equal(t, trainSet.UserCount(), rows)
	assert.Equal(t, 4, cols)
	rows, cols = als.ItemFactor.Dims()
	assert.Equal(t, trainSet.ItemCount(), rows)
	assert.Equal(t, 4, cols)
	// observed pairs regress toward unit confidence
	rmse, err := RMSE(als, trainSet, trainSet, 1)
	assert.NoError(t, err)
	assert.Less(t, rmse, float32(0.3))
}

func TestALS_MoreEpochsFitBetter(t *testing.T) {
	trainSet := newTestDataset()
	fitAndScore := func(nEpochs int) float32 {
		als := NewALS(model.Params{
			model.NFactors:    4,
			model.NEpochs:     nEpochs,
			model.Reg:         0.01,
			model.RandomState: 42,
		})
		assert.NoError(t, als.Fit(trainSet, nil))
		rmse, err := RMSE(als, trainSet, trainSet, 1)
		assert.NoError(t, err)
		return rmse
	}
	short := fitAndScore(1)
	long := fitAndScore(15)
	assert.LessOrEqual(t, long, short+1e-3)
}

func TestALS_Deterministic(t *testing.T) {
	trainSet := newTestDataset()
	params := model.Params{
		model.NFactors:    4,
		model.NEpochs:     5,
		model.Reg:         0.1,
		model.RandomState: 7,
	}
	a := NewALS(params)
	assert.NoError(t, a.Fit(trainSet, nil))
	b := NewALS(params)
	assert.NoError(t, b.Fit(trainSet, nil))
	assert.Equal(t, a.UserFactor.RawMatrix().Data, b.UserFactor.RawMatrix().Data)
	assert.Equal(t, a.ItemFactor.RawMatrix().Data, b.ItemFactor.RawMatrix().Data)
}

func TestALS_Fit_Invalid(t *testing.T) {
	trainSet := newTestDataset()
	// non-positive regularization
	als := NewALS(model.Params{model.Reg: 0.0})
	assert.Error(t, als.Fit(trainSet, nil))
	als = NewALS(model.Params{model.Reg: -0.1})
	assert.Error(t, als.Fit(trainSet, nil))
	// non-positive rank
	als = NewALS(model.Params{model.NFactors: 0})
	assert.Error(t, als.Fit(trainSet, nil))
	// empty train set
	als = NewALS(nil)
	assert.Error(t, als.Fit(NewMapIndexDataset(), nil))
}

func TestALS_Predict(t *testing.T) {
	trainSet := newTestDataset()
	als := NewALS(model.Params{model.NEpochs: 5, model.RandomState: 1})
	assert.NoError(t, als.Fit(trainSet, nil))
	// known pair scores, unknown IDs fall back to zero
	assert.NotZero(t, als.Predict("u1", "pB"))
	assert.Zero(t, als.Predict("nobody", "pB"))
	assert.Zero(t, als.Predict("u1", "nothing"))
}

func TestALS_Clear(t *testing.T) {
	trainSet := newTestDataset()
	als := NewALS(nil)
	assert.NoError(t, als.Fit(trainSet, nil))
	assert.False(t, als.Invalid())
	als.Clear()
	assert.True(t, als.Invalid())
}

func TestALS_SetParams(t *testing.T) {
	als := NewALS(model.Params{model.NFactors: 20, model.Reg: 0.5})
	assert.Equal(t, 20, als.Rank())
	assert.Equal(t, 0.5, als.reg)
	// defaults
	als = NewALS(nil)
	assert.Equal(t, 10, als.Rank())
	assert.Equal(t, 10, als.nEpochs)
	assert.Equal(t, 0.1, als.reg)
}
