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

package parallel

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestParallel(t *testing.T) {
	for _, nWorkers := range []int{1, 4} {
		results := make([]int, 100)
		err := Parallel(len(results), nWorkers, func(workerId, jobId int) error {
			results[jobId] = jobId * jobId
			return nil
		})
		assert.NoError(t, err)
		for i, v := range results {
			assert.Equal(t, i*i, v)
		}
	}
}

func TestParallel_Error(t *testing.T) {
	err := Parallel(100, 4, func(workerId, jobId int) error {
		if jobId == 42 {
			return errors.New("boom")
		}
		return nil
	})
	assert.Error(t, err)
}

func TestBatchParallel(t *testing.T) {
	for _, nWorkers := range []int{1, 4} {
		count := atomic.NewInt32(0)
		covered := make([]*atomic.Int32, 100)
		for i := range covered {
			covered[i] = atomic.NewInt32(0)
		}
		err := BatchParallel(len(covered), nWorkers, 7, func(workerId, beginJobId, endJobId int) error {
			for i := beginJobId; i < endJobId; i++ {
				covered[i].Inc()
				count.Inc()
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, int32(100), count.Load())
		for _, c := range covered {
			assert.Equal(t, int32(1), c.Load())
		}
	}
}

func TestBatchParallel_Error(t *testing.T) {
	err := BatchParallel(100, 4, 10, func(workerId, beginJobId, endJobId int) error {
		if beginJobId == 0 {
			return errors.New("boom")
		}
		return nil
	})
	assert.Error(t, err)
}
