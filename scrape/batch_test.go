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
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessAllSkipsFailures(t *testing.T) {
	ctx := context.Background()
	symbols := []string{"AAA", "BBB", "CCC", "DDD"}

	results := processAll(ctx, symbols, 1, func(_ context.Context, symbol string) (string, error) {
		if symbol == "BBB" || symbol == "DDD" {
			return "", errors.New("no data")
		}

		return "payload-" + symbol, nil
	})

	assert.Equal(t, map[string]string{
		"AAA": "payload-AAA",
		"CCC": "payload-CCC",
	}, results)
}

func TestProcessAllZeroSuccessesIsNotAnError(t *testing.T) {
	ctx := context.Background()

	results := processAll(ctx, []string{"AAA", "BBB"}, 1, func(_ context.Context, _ string) (int, error) {
		return 0, errors.New("always fails")
	})

	assert.Empty(t, results)
}

func TestProcessAllBoundedConcurrency(t *testing.T) {
	ctx := context.Background()

	const workers = 3

	var inFlight, peak atomic.Int64

	symbols := make([]string, 50)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%02d", i)
	}

	results := processAll(ctx, symbols, workers, func(_ context.Context, symbol string) (bool, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}

		return true, nil
	})

	assert.Len(t, results, len(symbols))
	assert.LessOrEqual(t, peak.Load(), int64(workers))
}

func TestProcessAllEmptyUniverse(t *testing.T) {
	ctx := context.Background()

	results := processAll(ctx, nil, 1, func(_ context.Context, _ string) (int, error) {
		t.Fatal("fetch must not be called")
		return 0, nil
	})

	assert.Empty(t, results)
}
