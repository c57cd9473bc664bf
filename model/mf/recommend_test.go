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

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/recwave/recwave/model"
)

func TestRecommend(t *testing.T) {
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	dataset.AddFeedback("u2", "pA")
	dataset.AddFeedback("u2", "pB")
	dataset.AddFeedback("u2", "pC")
	dataset.AddFeedback("u2", "pD")
	als := NewALS(model.Params{model.NEpochs: 10, model.RandomState: 42})
	assert.NoError(t, als.Fit(dataset, nil))
	recommendations, err := Recommend(als, dataset, "u1", 10)
	assert.NoError(t, err)
	// purchased products never reappear
	for _, recommendation := range recommendations {
		assert.NotEqual(t, "pA", recommendation.ItemId)
	}
	assert.Len(t, recommendations, 3)
	// scores come out in descending order
	for i := 1; i < len(recommendations); i++ {
		assert.GreaterOrEqual(t, recommendations[i-1].Score, recommendations[i].Score)
	}
	// n caps the result
	recommendations, err = Recommend(als, dataset, "u1", 2)
	assert.NoError(t, err)
	assert.Len(t, recommendations, 2)
}

func TestRecommend_UnknownUser(t *testing.T) {
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	als := NewALS(model.Params{model.RandomState: 42})
	assert.NoError(t, als.Fit(dataset, nil))
	_, err := Recommend(als, dataset, "nobody", 10)
	assert.True(t, errors.IsNotFound(err))
}

func TestRecommend_ColdUser(t *testing.T) {
	// u2 is indexed but all its rows are held out of the train set
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	dataset.AddFeedback("u1", "pB")
	dataset.AddFeedback("u2", "pA")
	trainSet := dataset.subset([]int{0, 1})
	als := NewALS(model.Params{model.RandomState: 42})
	assert.NoError(t, als.Fit(trainSet, nil))
	_, err := Recommend(als, trainSet, "u2", 10)
	assert.True(t, errors.IsNotFound(err))
}

func TestRecommend_Unfitted(t *testing.T) {
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	_, err := Recommend(NewALS(nil), dataset, "u1", 10)
	assert.Error(t, err)
}

func TestRecommend_TieOrder(t *testing.T) {
	// hand-built factors force equal scores for every item
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	dataset.AddFeedback("u2", "pB")
	dataset.AddFeedback("u2", "pC")
	dataset.AddFeedback("u2", "pD")
	als := NewALS(nil)
	als.UserIndex = dataset.UserIndex
	als.ItemIndex = dataset.ItemIndex
	als.UserFactor = mat.NewDense(2, 1, []float64{1, 1})
	als.ItemFactor = mat.NewDense(4, 1, []float64{1, 1, 1, 1})
	recommendations, err := Recommend(als, dataset, "u1", 2)
	assert.NoError(t, err)
	// ties resolve by ascending item index: pB before pC before pD
	assert.Equal(t, []Recommendation{
		{ItemId: "pB", Score: 1},
		{ItemId: "pC", Score: 1},
	}, recommendations)
}
