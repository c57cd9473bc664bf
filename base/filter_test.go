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

package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopKFilter(t *testing.T) {
	filter := NewTopKFilter(3)
	filter.Push(10, 1)
	filter.Push(20, 8)
	filter.Push(30, 2)
	filter.Push(40, 9)
	filter.Push(50, 5)
	items, weights := filter.PopAll()
	assert.Equal(t, []int32{40, 20, 50}, items)
	assert.Equal(t, []float32{9, 8, 5}, weights)
}

func TestTopKFilter_Ties(t *testing.T) {
	// equal weights keep the smallest indices, output in ascending index order
	filter := NewTopKFilter(2)
	filter.Push(2, 1)
	filter.Push(0, 1)
	filter.Push(1, 1)
	items, weights := filter.PopAll()
	assert.Equal(t, []int32{0, 1}, items)
	assert.Equal(t, []float32{1, 1}, weights)
}

func TestTopKFilter_TiesInterleaved(t *testing.T) {
	filter := NewTopKFilter(4)
	filter.Push(3, 0.5)
	filter.Push(1, 0.7)
	filter.Push(2, 0.5)
	filter.Push(0, 0.7)
	items, _ := filter.PopAll()
	assert.Equal(t, []int32{0, 1, 2, 3}, items)
}

func TestTopKFilter_FewerThanK(t *testing.T) {
	filter := NewTopKFilter(10)
	filter.Push(1, 2)
	filter.Push(2, 3)
	items, weights := filter.PopAll()
	assert.Equal(t, []int32{2, 1}, items)
	assert.Equal(t, []float32{3, 2}, weights)
}
