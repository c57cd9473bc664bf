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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"

	"github.com/recwave/recwave/base"
)

// Recommendation is a scored product translated back to its external ID.
type Recommendation struct {
	ItemId string
	Score  float32
}

// Recommend returns the top n unseen items for a user, ranked by descending
// predicted score with ties broken by ascending item index. Items the user
// interacted with at training time are excluded. A user unknown to the index
// or without training observations has no learned factors; recommending for
// one is a lookup failure the caller must handle with its own fallback.
func Recommend(estimator MatrixFactorization, trainSet *DataSet, userId string, n int) ([]Recommendation, error) {
	if estimator.Invalid() {
		return nil, errors.New("model is not fitted")
	}
	userIndex := estimator.GetUserIndex().ToNumber(userId)
	if userIndex == base.NotId {
		return nil, errors.NotFoundf("user %q", userId)
	}
	seen := trainSet.UserFeedback[userIndex]
	if len(seen) == 0 {
		return nil, errors.NotFoundf("factors for cold-start user %q", userId)
	}
	exclude := mapset.NewSet[int32](seen...)
	filter := base.NewTopKFilter(n)
	for itemIndex := int32(0); itemIndex < int32(trainSet.ItemCount()); itemIndex++ {
		if exclude.Contains(itemIndex) {
			continue
		}
		filter.Push(itemIndex, estimator.InternalPredict(userIndex, itemIndex))
	}
	items, scores := filter.PopAll()
	recommendations := make([]Recommendation, 0, len(items))
	for i, itemIndex := range items {
		itemId, err := estimator.GetItemIndex().ToName(itemIndex)
		if err != nil {
			return nil, errors.Trace(err)
		}
		recommendations = append(recommendations, Recommendation{ItemId: itemId, Score: scores[i]})
	}
	return recommendations, nil
}
