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

import "github.com/juju/errors"

var (
	// ErrInsufficientData means a user row is too sparse for the requested
	// operation: nothing to hold out, or an empty neighbor pool.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoNeighbors means the similarity weights of all candidate neighbors
	// sum to zero, so the weighted aggregation is undefined. Callers may
	// substitute the user's raw mean rating as a fallback.
	ErrNoNeighbors = errors.New("no usable neighbors")

	ErrUserNotExist = errors.NotFoundf("user")
	ErrItemNotExist = errors.NotFoundf("item")
)
