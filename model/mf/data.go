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
	"bufio"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/recwave/recwave/base"
	"github.com/recwave/recwave/base/log"
)

// positiveConfidence is the confidence of an implicit positive signal.
const positiveConfidence = float32(1)

// Rating is a (user index, item index, confidence) triple. Confidence is
// binary presence for implicit data and never negative.
type Rating struct {
	User       int32
	Item       int32
	Confidence float32
}

// DataSet contains preprocessed data structures for recommendation models.
// Feedback is deduplicated on insertion: a (user, item) pair appears at most
// once no matter the multiplicity or ordering of the input.
type DataSet struct {
	UserIndex    *base.Index
	ItemIndex    *base.Index
	Ratings      []Rating
	UserFeedback [][]int32
	ItemFeedback [][]int32
	userSeen     []mapset.Set[int32]
}

// NewMapIndexDataset creates an empty data set.
func NewMapIndexDataset() *DataSet {
	s := new(DataSet)
	s.UserIndex = base.NewMapIndex()
	s.ItemIndex = base.NewMapIndex()
	s.UserFeedback = make([][]int32, 0)
	s.ItemFeedback = make([][]int32, 0)
	s.userSeen = make([]mapset.Set[int32], 0)
	return s
}

// AddFeedback inserts a (user, item) interaction. Identifiers are indexed in
// first-occurrence order. Duplicated pairs are ignored.
func (dataset *DataSet) AddFeedback(userId, itemId string) {
	dataset.UserIndex.Add(userId)
	dataset.ItemIndex.Add(itemId)
	userIndex := dataset.UserIndex.ToNumber(userId)
	itemIndex := dataset.ItemIndex.ToNumber(itemId)
	for int(userIndex) >= len(dataset.UserFeedback) {
		dataset.UserFeedback = append(dataset.UserFeedback, make([]int32, 0))
		dataset.userSeen = append(dataset.userSeen, mapset.NewSet[int32]())
	}
	for int(itemIndex) >= len(dataset.ItemFeedback) {
		dataset.ItemFeedback = append(dataset.ItemFeedback, make([]int32, 0))
	}
	if dataset.userSeen[userIndex].Contains(itemIndex) {
		return
	}
	dataset.userSeen[userIndex].Add(itemIndex)
	dataset.Ratings = append(dataset.Ratings, Rating{User: userIndex, Item: itemIndex, Confidence: positiveConfidence})
	dataset.UserFeedback[userIndex] = append(dataset.UserFeedback[userIndex], itemIndex)
	dataset.ItemFeedback[itemIndex] = append(dataset.ItemFeedback[itemIndex], userIndex)
}

// Count returns the number of ratings.
func (dataset *DataSet) Count() int {
	return len(dataset.Ratings)
}

// UserCount returns the number of users.
func (dataset *DataSet) UserCount() int {
	return int(dataset.UserIndex.Len())
}

// ItemCount returns the number of items.
func (dataset *DataSet) ItemCount() int {
	return int(dataset.ItemIndex.Len())
}

func createSliceOfSlice(n int) [][]int32 {
	x := make([][]int32, n)
	for i := range x {
		x[i] = make([]int32, 0)
	}
	return x
}

// subset creates a data set from selected rating rows. Indices are shared
// with the parent.
func (dataset *DataSet) subset(rows []int) *DataSet {
	s := new(DataSet)
	s.UserIndex = dataset.UserIndex
	s.ItemIndex = dataset.ItemIndex
	s.Ratings = make([]Rating, 0, len(rows))
	s.UserFeedback = createSliceOfSlice(dataset.UserCount())
	s.ItemFeedback = createSliceOfSlice(dataset.ItemCount())
	for _, row := range rows {
		rating := dataset.Ratings[row]
		s.Ratings = append(s.Ratings, rating)
		s.UserFeedback[rating.User] = append(s.UserFeedback[rating.User], rating.Item)
		s.ItemFeedback[rating.Item] = append(s.ItemFeedback[rating.Item], rating.User)
	}
	return s
}

// SplitRatio partitions the rating table into a training set and a test set.
// testRatio is the fraction of ratings held out. The partition is driven by a
// seeded permutation, so a fixed seed reproduces the same split. Both halves
// share the parent's indices.
func (dataset *DataSet) SplitRatio(testRatio float64, seed int64) (*DataSet, *DataSet, error) {
	if testRatio < 0 || testRatio >= 1 {
		return nil, nil, errors.Errorf("test ratio %v out of range [0, 1)", testRatio)
	}
	rng := base.NewRandomGenerator(seed)
	perm := rng.Perm(dataset.Count())
	testSize := int(float64(dataset.Count()) * testRatio)
	testSet := dataset.subset(perm[:testSize])
	trainSet := dataset.subset(perm[testSize:])
	return trainSet, testSet, nil
}

// LoadDataFromTSV loads a data set from a delimited text file. Each row is
//
//	<timestamp> <sep> <userId> <sep> <itemId>
//
// The timestamp is read and discarded. Malformed rows are skipped with a
// warning instead of failing the whole load.
func LoadDataFromTSV(path, sep string) (*DataSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	dataset := NewMapIndexDataset()
	skipped := 0
	lineNumber := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) < 3 || fields[1] == "" || fields[2] == "" {
			skipped++
			log.Logger().Warn("skip malformed row",
				zap.String("file", path),
				zap.Int("line", lineNumber),
				zap.Int("columns", len(fields)))
			continue
		}
		dataset.AddFeedback(fields[1], fields[2])
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load data set",
		zap.String("file", path),
		zap.Int("n_users", dataset.UserCount()),
		zap.Int("n_items", dataset.ItemCount()),
		zap.Int("n_ratings", dataset.Count()),
		zap.Int("n_skipped", skipped))
	return dataset, nil
}
