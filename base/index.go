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
	"github.com/juju/errors"
)

// NotId represents an ID doesn't exist.
const NotId = int32(-1)

// Index manages the map between sparse names and dense indices. A sparse name
// is an external user ID or product ID. The dense index is the internal index
// optimized for faster factor access and less memory usage. Indices are
// allocated in first-occurrence order and never removed, so the mapping is a
// bijection for the lifetime of a model.
type Index struct {
	Numbers map[string]int32 // sparse ID -> dense index
	Names   []string         // dense index -> sparse ID
}

// NewMapIndex creates an Index.
func NewMapIndex() *Index {
	idx := new(Index)
	idx.Numbers = make(map[string]int32)
	idx.Names = make([]string, 0)
	return idx
}

// Len returns the number of indexed names.
func (idx *Index) Len() int32 {
	if idx == nil {
		return 0
	}
	return int32(len(idx.Names))
}

// Add adds a new ID to the indexer. Adding an existing ID is a no-op.
func (idx *Index) Add(name string) {
	if _, exist := idx.Numbers[name]; !exist {
		idx.Numbers[name] = int32(len(idx.Names))
		idx.Names = append(idx.Names, name)
	}
}

// ToNumber converts a sparse ID to a dense index. Returns NotId for an
// unknown ID.
func (idx *Index) ToNumber(name string) int32 {
	if denseId, exist := idx.Numbers[name]; exist {
		return denseId
	}
	return NotId
}

// ToName converts a dense index back to a sparse ID. An index that was never
// allocated is a lookup failure.
func (idx *Index) ToName(index int32) (string, error) {
	if index < 0 || index >= idx.Len() {
		return "", errors.NotFoundf("index %d", index)
	}
	return idx.Names[index], nil
}

// GetNames returns all names in current index.
func (idx *Index) GetNames() []string {
	return idx.Names
}
