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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataSet_AddFeedback(t *testing.T) {
	// three purchases: u1 buys pA and pB, u2 buys pA
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	dataset.AddFeedback("u1", "pB")
	dataset.AddFeedback("u2", "pA")
	assert.Equal(t, 3, dataset.Count())
	assert.Equal(t, 2, dataset.UserCount())
	assert.Equal(t, 2, dataset.ItemCount())
	// indices follow first-occurrence order
	assert.Equal(t, int32(0), dataset.UserIndex.ToNumber("u1"))
	assert.Equal(t, int32(1), dataset.UserIndex.ToNumber("u2"))
	assert.Equal(t, int32(0), dataset.ItemIndex.ToNumber("pA"))
	assert.Equal(t, int32(1), dataset.ItemIndex.ToNumber("pB"))
	// every rating carries unit confidence
	assert.Equal(t, []Rating{
		{User: 0, Item: 0, Confidence: 1},
		{User: 0, Item: 1, Confidence: 1},
		{User: 1, Item: 0, Confidence: 1},
	}, dataset.Ratings)
	assert.Equal(t, [][]int32{{0, 1}, {0}}, dataset.UserFeedback)
	assert.Equal(t, [][]int32{{0, 1}, {0}}, dataset.ItemFeedback)
}

func TestDataSet_Deduplicate(t *testing.T) {
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	dataset.AddFeedback("u1", "pA")
	dataset.AddFeedback("u2", "pA")
	dataset.AddFeedback("u1", "pA")
	assert.Equal(t, 2, dataset.Count())
	assert.Equal(t, [][]int32{{0}, {0}}, dataset.UserFeedback)
}

func TestDataSet_SplitRatio(t *testing.T) {
	dataset := NewMapIndexDataset()
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			dataset.AddFeedback(string(rune('a'+i)), string(rune('A'+j)))
		}
	}
	trainSet, testSet, err := dataset.SplitRatio(0.2, 42)
	assert.NoError(t, err)
	assert.Equal(t, 80, trainSet.Count())
	assert.Equal(t, 20, testSet.Count())
	// both halves share the parent's indices
	assert.Same(t, dataset.UserIndex, trainSet.UserIndex)
	assert.Same(t, dataset.ItemIndex, testSet.ItemIndex)
	// the same seed reproduces the same partition
	trainSet2, testSet2, err := dataset.SplitRatio(0.2, 42)
	assert.NoError(t, err)
	assert.Equal(t, trainSet.Ratings, trainSet2.Ratings)
	assert.Equal(t, testSet.Ratings, testSet2.Ratings)
	// a different seed gives a different partition
	_, testSet3, err := dataset.SplitRatio(0.2, 43)
	assert.NoError(t, err)
	assert.NotEqual(t, testSet.Ratings, testSet3.Ratings)
}

func TestDataSet_SplitRatio_Invalid(t *testing.T) {
	dataset := NewMapIndexDataset()
	dataset.AddFeedback("u1", "pA")
	_, _, err := dataset.SplitRatio(-0.1, 0)
	assert.Error(t, err)
	_, _, err = dataset.SplitRatio(1, 0)
	assert.Error(t, err)
}

func TestLoadDataFromTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "purchases.tsv")
	content := "1716000000\tu1\tpA\n" +
		"1716000001\tu1\tpB\n" +
		"malformed row\n" +
		"1716000002\t\tpC\n" +
		"1716000003\tu2\tpA\n" +
		"1716000004\tu1\tpA\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	dataset, err := LoadDataFromTSV(path, "\t")
	assert.NoError(t, err)
	assert.Equal(t, 3, dataset.Count())
	assert.Equal(t, 2, dataset.UserCount())
	assert.Equal(t, 2, dataset.ItemCount())
}

func TestLoadDataFromTSV_Missing(t *testing.T) {
	_, err := LoadDataFromTSV(filepath.Join(t.TempDir(), "no-such-file"), "\t")
	assert.Error(t, err)
}
