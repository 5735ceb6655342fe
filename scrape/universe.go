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
	"strings"

	"github.com/cosmic-glitch/companiesmarketcap/fmp"
	"github.com/rs/zerolog"
)

var ErrEmptyUniverse = errors.New("symbol universe is empty")

// ResolveUniverse builds the ordered list of symbols to process: the market
// screener result above the market-cap floor, followed by any supplemental
// symbols not already present. The supplemental list exists because the
// screener systematically omits certain OTC and foreign-listed securities
// that the per-symbol endpoints nonetheless support.
func ResolveUniverse(ctx context.Context, client *fmp.Client, minMarketCap int64, supplemental []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	entries, err := client.Screener(ctx, minMarketCap)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(entries)+len(supplemental))
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		if entry.Symbol == "" || seen[entry.Symbol] {
			continue
		}

		seen[entry.Symbol] = true
		symbols = append(symbols, entry.Symbol)
	}

	added := 0

	for _, symbol := range supplemental {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			continue
		}

		seen[symbol] = true
		symbols = append(symbols, symbol)
		added++
	}

	if len(symbols) == 0 {
		return nil, ErrEmptyUniverse
	}

	logger.Info().Int("FromScreener", len(entries)).Int("Supplemental", added).Int("Total", len(symbols)).Msg("resolved symbol universe")

	return symbols, nil
}
