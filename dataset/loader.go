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

package dataset

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/boardrec/boardrec/common/util"
	"github.com/juju/errors"
)

// LoadRatings reads (user, item, rating) triples from a CSV file and reshapes
// them into a wide Matrix. A header line is skipped if its rating column does
// not parse as a number. A duplicated (user, item) pair keeps the last value.
func LoadRatings(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Annotatef(err, "failed to parse %s", path)
	}
	m := NewMatrix()
	for i, record := range records {
		if len(record) < 3 {
			return nil, errors.Errorf("%s:%d: expect 3 fields, got %d", path, i+1, len(record))
		}
		rating, err := util.ParseFloat[float32](strings.TrimSpace(record[2]))
		if err != nil {
			if i == 0 {
				// header line
				continue
			}
			return nil, errors.Annotatef(err, "%s:%d: invalid rating", path, i+1)
		}
		m.Add(strings.TrimSpace(record[0]), strings.TrimSpace(record[1]), rating)
	}
	return m, nil
}
