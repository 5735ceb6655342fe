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
	"time"

	"github.com/cosmic-glitch/companiesmarketcap/data"
	"github.com/cosmic-glitch/companiesmarketcap/fmp"
)

// fetched holds the per-symbol results of the six batch stages. Every map is
// keyed by symbol; a missing key means the stage terminally failed for that
// symbol.
type fetched struct {
	Quotes    map[string]*fmp.Quote
	Profiles  map[string]*fmp.Profile
	Income    map[string][]*fmp.IncomeStatement
	Ratios    map[string]*fmp.Ratios
	Growth    map[string]*fmp.Growth
	Estimates map[string][]*fmp.Estimate
}

// assemble joins the batch results into company records. A record is emitted
// if and only if a quote with positive market cap was retrieved; any missing
// non-quote sub-resource simply leaves its fields nil. The returned records
// are unranked; callers rank via Snapshot.Rank.
func assemble(ctx context.Context, results *fetched, norm *Normalizer, now time.Time) []*data.CompanyRecord {
	records := make([]*data.CompanyRecord, 0, len(results.Quotes))

	for symbol, quote := range results.Quotes {
		if record := assembleOne(ctx, symbol, quote, results, norm, now); record != nil {
			records = append(records, record)
		}
	}

	return records
}

func assembleOne(ctx context.Context, symbol string, quote *fmp.Quote, results *fetched, norm *Normalizer, now time.Time) *data.CompanyRecord {
	if quote.MarketCap <= 0 {
		return nil
	}

	record := &data.CompanyRecord{
		Symbol:      symbol,
		Name:        quote.Name,
		Country:     quote.Country,
		MarketCap:   quote.MarketCap,
		Price:       quote.Price,
		LastUpdated: now,
	}

	record.DailyChangePercent = ptr(quote.ChangesPercentage)

	if quote.YearHigh > 0 {
		record.Week52High = ptr(quote.YearHigh)
	}

	if quote.PE != 0 {
		record.PERatio = ptr(quote.PE)
	}

	if profile := results.Profiles[symbol]; profile != nil {
		if profile.CompanyName != "" {
			record.Name = profile.CompanyName
		}

		if profile.Country != "" {
			record.Country = profile.Country
		}
	}

	// the income statement's reportedCurrency governs conversion of every
	// monetary aggregate for this symbol, forward EPS included
	currency := "USD"

	if statements := results.Income[symbol]; len(statements) > 0 {
		if statements[0].ReportedCurrency != "" {
			currency = statements[0].ReportedCurrency
		}

		revenue, netIncome, operatingIncome := ttmSums(statements)

		// a non-positive TTM revenue means insufficient or unreliable data,
		// not a valid negative figure; negative earnings are meaningful and
		// are kept
		if revenue > 0 {
			// margin is a ratio of two same-currency figures, so it is
			// computed before conversion
			record.OperatingMargin = ptr(operatingIncome / revenue)
			record.Revenue = ptr(norm.ToUSD(ctx, revenue, currency))
		}

		record.Earnings = ptr(norm.ToUSD(ctx, netIncome, currency))
	}

	if ratios := results.Ratios[symbol]; ratios != nil {
		if ratios.DividendYield > 0 {
			record.DividendPercent = ptr(ratios.DividendYield * 100)
		}

		if record.PERatio == nil && ratios.PERatio != 0 {
			record.PERatio = ptr(ratios.PERatio)
		}
	}

	if record.PERatio != nil && *record.PERatio > 0 {
		record.TTMEPS = ptr(record.Price / *record.PERatio)
	}

	if growth := results.Growth[symbol]; growth != nil {
		record.RevenueGrowth5Y = ptr(CAGR(growth.FiveYRevenueGrowth, 5))
		record.RevenueGrowth3Y = ptr(CAGR(growth.ThreeYRevenueGrowth, 3))
		record.EPSGrowth5Y = ptr(CAGR(growth.FiveYNetIncomeGrowth, 5))
		record.EPSGrowth3Y = ptr(CAGR(growth.ThreeYNetIncomeGrowth, 3))
	}

	if estimates := results.Estimates[symbol]; len(estimates) > 0 {
		if estimate := selectForwardEstimate(estimates, now); estimate != nil && estimate.EstimatedEPSAvg > 0 {
			forwardEPS := norm.ToUSD(ctx, estimate.EstimatedEPSAvg, currency)
			record.ForwardEPS = ptr(forwardEPS)
			record.ForwardEPSDate = estimate.Date

			if forwardEPS > 0 {
				record.ForwardPE = ptr(record.Price / forwardEPS)
			}
		}
	}

	return record
}

func ptr(v float64) *float64 {
	return &v
}
