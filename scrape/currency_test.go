// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
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
package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToUSDNoOpForUSD(t *testing.T) {
	ctx := context.Background()

	for _, table := range []FXTable{nil, {}, {"EUR": 0.92, "USD": 2}} {
		norm := NewNormalizer(table)

		for _, amount := range []float64{-12.5, 0, 1, 1e12} {
			assert.Equal(t, amount, norm.ToUSD(ctx, amount, "USD"))
			assert.Equal(t, amount, norm.ToUSD(ctx, amount, ""))
		}

		assert.Empty(t, norm.Misses())
	}
}

func TestToUSDConverts(t *testing.T) {
	ctx := context.Background()
	norm := NewNormalizer(FXTable{"EUR": 0.92})

	assert.InDelta(t, 100.0, norm.ToUSD(ctx, 92, "EUR"), 1e-9)
	assert.Empty(t, norm.Misses())
}

func TestToUSDMissIsFailOpen(t *testing.T) {
	ctx := context.Background()
	norm := NewNormalizer(FXTable{"EUR": 0.92})

	// unknown code passes the amount through unchanged and is counted
	assert.Equal(t, 500.0, norm.ToUSD(ctx, 500, "ZWL"))
	assert.Equal(t, 250.0, norm.ToUSD(ctx, 250, "ZWL"))

	assert.Equal(t, map[string]int{"ZWL": 2}, norm.Misses())
}

func TestToUSDZeroRateIsMiss(t *testing.T) {
	ctx := context.Background()
	norm := NewNormalizer(FXTable{"XXX": 0})

	assert.Equal(t, 10.0, norm.ToUSD(ctx, 10, "XXX"))
	assert.Equal(t, 1, norm.Misses()["XXX"])
}
