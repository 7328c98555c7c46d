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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDict(t *testing.T) {
	d := NewDict()
	assert.Equal(t, int32(0), d.Id("a"))
	assert.Equal(t, int32(1), d.Id("b"))
	assert.Equal(t, int32(0), d.Id("a"))
	assert.Equal(t, 2, d.Count())

	id, ok := d.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, int32(1), id)
	_, ok = d.Lookup("c")
	assert.False(t, ok)

	s, ok := d.String(0)
	assert.True(t, ok)
	assert.Equal(t, "a", s)
	_, ok = d.String(2)
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, d.Strings())
}

func TestDict_Copy(t *testing.T) {
	d := NewDict()
	d.Id("a")
	c := d.Copy()
	c.Id("b")
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, 2, c.Count())
}
