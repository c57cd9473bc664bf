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

// Package storage provides the durable append-only logs of the tuning job.
package storage

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/juju/errors"
)

// TrialLog is an append-only text log of grid search outcomes. One line per
// record:
//
//	<RFC 3339 time>\tlambda=<reg>\trank=<rank>\trmse=<rmse>
//
// Reopening an existing log appends, never truncates.
type TrialLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenTrialLog opens a trial log for appending, creating it if needed.
func OpenTrialLog(path string) (*TrialLog, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &TrialLog{file: file}, nil
}

// Append writes one trial outcome.
func (l *TrialLog) Append(reg float64, rank int, rmse float32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.file, "%s\tlambda=%v\trank=%v\trmse=%v\n",
		time.Now().Format(time.RFC3339), reg, rank, rmse)
	return errors.Trace(err)
}

// Close flushes and closes the underlying file.
func (l *TrialLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Trace(l.file.Close())
}
