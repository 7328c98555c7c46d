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
	"github.com/bits-and-blooms/bitset"
	"github.com/chewxy/math32"
)

// Row is one user's sparse ratings. A missing item is an absent entry, never
// a sentinel value, so a zero rating and "no rating" stay distinct.
type Row struct {
	rated  *bitset.BitSet
	values map[int32]float32
}

func newRow() *Row {
	return &Row{
		rated:  bitset.New(0),
		values: make(map[int32]float32),
	}
}

// Count returns the number of rated items.
func (r *Row) Count() int {
	return len(r.values)
}

// Get returns the rating of an item. The second value is false if the item
// is unrated.
func (r *Row) Get(item int32) (float32, bool) {
	v, ok := r.values[item]
	return v, ok
}

// Rated returns true if the item is rated.
func (r *Row) Rated(item int32) bool {
	return r.rated.Test(uint(item))
}

func (r *Row) set(item int32, rating float32) {
	r.rated.Set(uint(item))
	r.values[item] = rating
}

func (r *Row) remove(item int32) {
	r.rated.Clear(uint(item))
	delete(r.values, item)
}

// ForEach iterates rated items in ascending item order.
func (r *Row) ForEach(f func(item int32, rating float32)) {
	for i, ok := r.rated.NextSet(0); ok; i, ok = r.rated.NextSet(i + 1) {
		f(int32(i), r.values[int32(i)])
	}
}

// ForIntersection iterates items rated in both rows in ascending item order.
func (r *Row) ForIntersection(other *Row, f func(item int32, a, b float32)) {
	common := r.rated.Intersection(other.rated)
	for i, ok := common.NextSet(0); ok; i, ok = common.NextSet(i + 1) {
		f(int32(i), r.values[int32(i)], other.values[int32(i)])
	}
}

// Items returns the rated item indices in ascending order.
func (r *Row) Items() []int32 {
	items := make([]int32, 0, len(r.values))
	r.ForEach(func(item int32, _ float32) {
		items = append(items, item)
	})
	return items
}

// Stats returns the count, mean and sample standard deviation of the rated
// items. The standard deviation is 0 when fewer than 2 items are rated.
func (r *Row) Stats() (n int, mean, sd float32) {
	n = len(r.values)
	if n == 0 {
		return
	}
	var sum float32
	for _, v := range r.values {
		sum += v
	}
	mean = sum / float32(n)
	if n < 2 {
		return
	}
	var sumSq float32
	for _, v := range r.values {
		sumSq += (v - mean) * (v - mean)
	}
	sd = math32.Sqrt(sumSq / float32(n-1))
	return
}

func (r *Row) copy() *Row {
	c := &Row{
		rated:  r.rated.Clone(),
		values: make(map[int32]float32, len(r.values)),
	}
	for i, v := range r.values {
		c.values[i] = v
	}
	return c
}

// Matrix is a sparse user by item rating table. Users are rows, items are
// columns, and the item universe is the union of items rated by any user.
type Matrix struct {
	userDict *Dict
	itemDict *Dict
	rows     []*Row
}

func NewMatrix() *Matrix {
	return &Matrix{
		userDict: NewDict(),
		itemDict: NewDict(),
	}
}

// Add inserts or overwrites one rating.
func (m *Matrix) Add(user, item string, rating float32) {
	userIndex := m.userDict.Id(user)
	itemIndex := m.itemDict.Id(item)
	for int(userIndex) >= len(m.rows) {
		m.rows = append(m.rows, newRow())
	}
	m.rows[userIndex].set(itemIndex, rating)
}

// Remove deletes one rating. It returns false if the user is unknown or the
// item is unrated by the user.
func (m *Matrix) Remove(user, item string) bool {
	userIndex, ok := m.userDict.Lookup(user)
	if !ok {
		return false
	}
	itemIndex, ok := m.itemDict.Lookup(item)
	if !ok {
		return false
	}
	if !m.rows[userIndex].Rated(itemIndex) {
		return false
	}
	m.rows[userIndex].remove(itemIndex)
	return true
}

func (m *Matrix) UserCount() int {
	return m.userDict.Count()
}

func (m *Matrix) ItemCount() int {
	return m.itemDict.Count()
}

func (m *Matrix) UserDict() *Dict {
	return m.userDict
}

func (m *Matrix) ItemDict() *Dict {
	return m.itemDict
}

// Users returns all user ids in insertion order.
func (m *Matrix) Users() []string {
	return m.userDict.Strings()
}

// Items returns all item ids in insertion order.
func (m *Matrix) Items() []string {
	return m.itemDict.Strings()
}

// Row returns the ratings of a user by index.
func (m *Matrix) Row(userIndex int32) *Row {
	return m.rows[userIndex]
}

// RowOf returns the ratings of a user by id.
func (m *Matrix) RowOf(user string) (*Row, bool) {
	userIndex, ok := m.userDict.Lookup(user)
	if !ok {
		return nil, false
	}
	return m.rows[userIndex], true
}

// Copy returns a deep copy sharing no state with the receiver.
func (m *Matrix) Copy() *Matrix {
	c := &Matrix{
		userDict: m.userDict.Copy(),
		itemDict: m.itemDict.Copy(),
		rows:     make([]*Row, len(m.rows)),
	}
	for i, row := range m.rows {
		c.rows[i] = row.copy()
	}
	return c
}

// NumRatings returns the total number of ratings.
func (m *Matrix) NumRatings() int {
	count := 0
	for _, row := range m.rows {
		count += row.Count()
	}
	return count
}
