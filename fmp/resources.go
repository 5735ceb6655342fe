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
package fmp

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
)

// quarterly statements to request; four quarters make one TTM window but an
// extra row tolerates a not-yet-filed quarter
const incomeStatementLimit = 5

// symbolError wraps a fetch failure with the symbol and resource it belongs
// to so the batch layer can log and skip it.
func symbolError(symbol, resource string, err error) *SymbolError {
	return &SymbolError{Symbol: symbol, Resource: resource, Err: err}
}

// Quote retrieves the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var quotes []*Quote
	if err := c.getJSON(ctx, "/quote/"+symbol, nil, &quotes); err != nil {
		return nil, symbolError(symbol, "quote", err)
	}

	if len(quotes) == 0 {
		return nil, symbolError(symbol, "quote", ErrNoData)
	}

	return quotes[0], nil
}

// Profile retrieves company reference data for symbol.
func (c *Client) Profile(ctx context.Context, symbol string) (*Profile, error) {
	var profiles []*Profile
	if err := c.getJSON(ctx, "/profile/"+symbol, nil, &profiles); err != nil {
		return nil, symbolError(symbol, "profile", err)
	}

	if len(profiles) == 0 {
		return nil, symbolError(symbol, "profile", ErrNoData)
	}

	return profiles[0], nil
}

// IncomeStatements retrieves the most recent quarterly income statements for
// symbol, newest first.
func (c *Client) IncomeStatements(ctx context.Context, symbol string) ([]*IncomeStatement, error) {
	var statements []*IncomeStatement

	params := map[string]string{
		"period": "quarter",
		"limit":  strconv.Itoa(incomeStatementLimit),
	}

	if err := c.getJSON(ctx, "/income-statement/"+symbol, params, &statements); err != nil {
		return nil, symbolError(symbol, "income-statement", err)
	}

	if len(statements) == 0 {
		return nil, symbolError(symbol, "income-statement", ErrNoData)
	}

	return statements, nil
}

// Ratios retrieves trailing-twelve-month ratios for symbol.
func (c *Client) Ratios(ctx context.Context, symbol string) (*Ratios, error) {
	var ratios []*Ratios
	if err := c.getJSON(ctx, "/ratios-ttm/"+symbol, nil, &ratios); err != nil {
		return nil, symbolError(symbol, "ratios", err)
	}

	if len(ratios) == 0 {
		return nil, symbolError(symbol, "ratios", ErrNoData)
	}

	return ratios[0], nil
}

// Growth retrieves multi-year cumulative growth figures for symbol.
func (c *Client) Growth(ctx context.Context, symbol string) (*Growth, error) {
	var growth []*Growth

	params := map[string]string{"limit": "1"}
	if err := c.getJSON(ctx, "/financial-growth/"+symbol, params, &growth); err != nil {
		return nil, symbolError(symbol, "growth", err)
	}

	if len(growth) == 0 {
		return nil, symbolError(symbol, "growth", ErrNoData)
	}

	return growth[0], nil
}

// Estimates retrieves analyst estimates for future fiscal years of symbol.
func (c *Client) Estimates(ctx context.Context, symbol string) ([]*Estimate, error) {
	var estimates []*Estimate
	if err := c.getJSON(ctx, "/analyst-estimates/"+symbol, nil, &estimates); err != nil {
		return nil, symbolError(symbol, "estimates", err)
	}

	if len(estimates) == 0 {
		return nil, symbolError(symbol, "estimates", ErrNoData)
	}

	return estimates, nil
}

const screenerPageSize = 1000

// maxScreenerPages bounds the pagination loop so a misbehaving upstream
// cannot keep us querying forever
const maxScreenerPages = 100

// Screener retrieves all actively traded stocks above the given market cap
// floor, paginating until the upstream returns a short page.
func (c *Client) Screener(ctx context.Context, minMarketCap int64) ([]*ScreenerEntry, error) {
	logger := zerolog.Ctx(ctx)

	entries := make([]*ScreenerEntry, 0, 8000)

	for page := 0; page < maxScreenerPages; page++ {
		params := map[string]string{
			"marketCapMoreThan": strconv.FormatInt(minMarketCap, 10),
			"isActivelyTrading": "true",
			"isEtf":             "false",
			"limit":             strconv.Itoa(screenerPageSize),
			"page":              strconv.Itoa(page),
		}

		var pageEntries []*ScreenerEntry
		if err := c.getJSON(ctx, "/stock-screener", params, &pageEntries); err != nil {
			return nil, err
		}

		entries = append(entries, pageEntries...)

		logger.Debug().Int("Page", page).Int("PageSize", len(pageEntries)).Int("Total", len(entries)).Msg("screener page fetched")

		if len(pageEntries) < screenerPageSize {
			break
		}
	}

	return entries, nil
}

// ForexRates retrieves the currency conversion table: units of each currency
// per one USD. It is fetched once per run and treated as immutable for the
// run's duration.
func (c *Client) ForexRates(ctx context.Context) (map[string]float64, error) {
	rates := make(map[string]float64)
	if err := c.getJSON(ctx, "/fx", nil, &rates); err != nil {
		return nil, err
	}

	return rates, nil
}
