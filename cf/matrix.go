// Copyright 2026 boardrec Project Authors
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

package cf

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/boardrec/boardrec/common/parallel"
	"github.com/boardrec/boardrec/common/util"
	"github.com/boardrec/boardrec/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// SimilarityMatrix holds the pairwise similarity of every ordered user pair,
// built once from a fixed snapshot of users. It is stale if the underlying
// rating matrix changes, and it is never mutated by the prediction engine.
type SimilarityMatrix struct {
	users  *dataset.Dict
	values [][]float32
}

// BuildConfig configures BuildSimilarityMatrix.
type BuildConfig struct {
	Jobs       int
	OnProgress func(completed, total int)
}

func NewBuildConfig() *BuildConfig {
	return &BuildConfig{Jobs: 1}
}

func (config *BuildConfig) SetJobs(jobs int) *BuildConfig {
	config.Jobs = jobs
	return config
}

func (config *BuildConfig) SetProgress(f func(completed, total int)) *BuildConfig {
	config.OnProgress = f
	return config
}

// BuildSimilarityMatrix evaluates every unordered user pair exactly once and
// mirrors the score onto both triangles, with the diagonal forced to 1. The
// cost is O(n^2) pair evaluations, each linear in the number of shared items.
// For user populations in the thousands this dominates the whole pipeline,
// which is why the result is worth persisting across queries. Adding a user
// invalidates the matrix: the baseline update path is a full rebuild.
func BuildSimilarityMatrix(ctx context.Context, m *dataset.Matrix, mode DecayMode, alpha float32, config *BuildConfig) (*SimilarityMatrix, error) {
	if config == nil {
		config = NewBuildConfig()
	}
	n := m.UserCount()
	values := make([][]float32, n)
	for i := range values {
		values[i] = make([]float32, n)
	}
	// Row i computes pairs (i, j) for j > i. Mirrored writes from different
	// rows never touch the same cell, so no locking is needed.
	var completed atomic.Int64
	err := parallel.Parallel(ctx, n, config.Jobs, func(_, i int) error {
		values[i][i] = 1
		a := m.Row(int32(i))
		for j := i + 1; j < n; j++ {
			s := Similarity(a, m.Row(int32(j)), mode, alpha)
			values[i][j] = s
			values[j][i] = s
		}
		if config.OnProgress != nil {
			config.OnProgress(int(completed.Add(1)), n)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &SimilarityMatrix{
		users:  m.UserDict().Copy(),
		values: values,
	}, nil
}

// UserCount returns the number of users covered by the matrix.
func (s *SimilarityMatrix) UserCount() int {
	return s.users.Count()
}

// Users returns the user ids covered by the matrix.
func (s *SimilarityMatrix) Users() []string {
	return s.users.Strings()
}

// Lookup returns the similarity of two users by id.
func (s *SimilarityMatrix) Lookup(u, v string) (float32, error) {
	i, ok := s.users.Lookup(u)
	if !ok {
		return 0, errors.Annotatef(ErrUserNotExist, "%q", u)
	}
	j, ok := s.users.Lookup(v)
	if !ok {
		return 0, errors.Annotatef(ErrUserNotExist, "%q", v)
	}
	return s.values[i][j], nil
}

// Save writes the matrix as CSV: a header of user ids, then one row per user
// holding the user id and its similarity to every user in header order.
func (s *SimilarityMatrix) Save(w io.Writer) error {
	writer := csv.NewWriter(w)
	users := s.users.Strings()
	if err := writer.Write(append([]string{"user"}, users...)); err != nil {
		return errors.Trace(err)
	}
	for i, user := range users {
		record := append([]string{user}, lo.Map(s.values[i], func(v float32, _ int) string {
			return strconv.FormatFloat(float64(v), 'g', -1, 32)
		})...)
		if err := writer.Write(record); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}

// SaveFile writes the matrix as CSV to a file.
func (s *SimilarityMatrix) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	return errors.Trace(s.Save(f))
}

// LoadSimilarityMatrix reads a matrix written by Save.
func LoadSimilarityMatrix(r io.Reader) (*SimilarityMatrix, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(records) < 2 {
		return nil, errors.Errorf("similarity matrix is empty")
	}
	if records[0][0] != "user" {
		return nil, errors.Errorf("expect header to start with %q, got %q", "user", records[0][0])
	}
	header := records[0][1:]
	n := len(header)
	if len(records)-1 != n {
		return nil, errors.Errorf("expect %d rows, got %d", n, len(records)-1)
	}
	users := dataset.NewDict()
	for _, user := range header {
		users.Id(user)
	}
	values := make([][]float32, n)
	for _, record := range records[1:] {
		if len(record) != n+1 {
			return nil, errors.Errorf("expect %d columns, got %d", n+1, len(record))
		}
		i, ok := users.Lookup(record[0])
		if !ok {
			return nil, errors.Errorf("user %q is not in the header", record[0])
		}
		if values[i] != nil {
			return nil, errors.Errorf("duplicated row for user %q", record[0])
		}
		row := make([]float32, n)
		for j, field := range record[1:] {
			row[j], err = util.ParseFloat[float32](field)
			if err != nil {
				return nil, errors.Annotatef(err, "invalid similarity for user %q", record[0])
			}
		}
		values[i] = row
	}
	return &SimilarityMatrix{users: users, values: values}, nil
}

// LoadSimilarityMatrixFile reads a matrix written by SaveFile.
func LoadSimilarityMatrixFile(path string) (*SimilarityMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	return LoadSimilarityMatrix(f)
}
