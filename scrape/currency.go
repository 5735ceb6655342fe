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

	"github.com/rs/zerolog"
)

// FXTable maps a currency code to units of that currency per one USD. It is
// fetched once per run and shared, unchanged, by every conversion in the run.
type FXTable map[string]float64

// Normalizer converts reporting-currency amounts to USD against one FXTable.
// Lookup misses are fail-open: an unconverted figure is still more useful
// than a dropped one, and misses are rare in practice. Each miss is counted
// per currency for the run summary.
//
// Not safe for concurrent use; record assembly runs on a single goroutine.
type Normalizer struct {
	table  FXTable
	misses map[string]int
}

func NewNormalizer(table FXTable) *Normalizer {
	return &Normalizer{
		table:  table,
		misses: make(map[string]int),
	}
}

// ToUSD converts amount from the given reporting currency to USD. USD (or an
// unset code) passes through unchanged.
func (norm *Normalizer) ToUSD(ctx context.Context, amount float64, currency string) float64 {
	if currency == "" || currency == "USD" {
		return amount
	}

	unitsPerUSD, ok := norm.table[currency]
	if !ok || unitsPerUSD <= 0 {
		norm.misses[currency]++
		zerolog.Ctx(ctx).Warn().Str("Currency", currency).Msg("no exchange rate for currency, amount left unconverted")

		return amount
	}

	return amount / unitsPerUSD
}

// Misses returns the per-currency count of failed rate lookups.
func (norm *Normalizer) Misses() map[string]int {
	return norm.misses
}
