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

// Package scrape implements the batch pipeline that turns a list of ticker
// symbols into a ranked snapshot of company records.
package scrape

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// processAll drives fetch over all symbols with the given number of workers
// (production default is 1, strictly sequential, to stay inside upstream
// rate limits). Symbols whose fetch terminally fails are omitted from the
// result map; a batch with zero successes is not an error at this layer.
func processAll[T any](ctx context.Context, symbols []string, workers int, fetch func(context.Context, string) (T, error)) map[string]T {
	logger := zerolog.Ctx(ctx)

	if workers < 1 {
		workers = 1
	}

	results := haxmap.New[string, T]()

	var processed, succeeded atomic.Int64

	sometimes := rate.Sometimes{Interval: 30 * time.Second}
	started := time.Now()

	work := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for symbol := range work {
				value, err := fetch(ctx, symbol)
				count := processed.Add(1)

				if err != nil {
					logger.Debug().Err(err).Str("Symbol", symbol).Msg("skipping symbol")
				} else {
					results.Set(symbol, value)
					succeeded.Add(1)
				}

				sometimes.Do(func() {
					elapsed := time.Since(started)
					perItem := elapsed / time.Duration(count)
					remaining := time.Duration(int64(len(symbols))-count) * perItem

					logger.Info().
						Int64("Processed", count).
						Int64("Succeeded", succeeded.Load()).
						Int("Total", len(symbols)).
						Str("Elapsed", elapsed.Round(time.Second).String()).
						Str("ETA", remaining.Round(time.Second).String()).
						Msg("batch progress")
				})
			}
		}()
	}

	for _, symbol := range symbols {
		work <- symbol
	}

	close(work)
	wg.Wait()

	out := make(map[string]T, len(symbols))
	results.ForEach(func(symbol string, value T) bool {
		out[symbol] = value
		return true
	})

	return out
}
