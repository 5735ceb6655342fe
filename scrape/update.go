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
	"time"

	"github.com/cosmic-glitch/companiesmarketcap/data"
	"github.com/cosmic-glitch/companiesmarketcap/fmp"
	"github.com/rs/zerolog"
)

// Category selects a partial-update variant. Each category re-runs only its
// own batch stage(s) against an existing snapshot and mutates only the
// fields it owns.
type Category string

const (
	// CategoryQuotes refreshes price, market cap and the other quote-owned
	// fields, then re-ranks.
	CategoryQuotes Category = "quotes"

	// CategoryGrowth refreshes the four CAGR fields.
	CategoryGrowth Category = "growth"

	// CategoryFinancials refreshes TTM revenue, earnings and operating
	// margin from fresh income statements.
	CategoryFinancials Category = "financials"

	// CategoryCurrencyFix re-derives the reporting currency per symbol and
	// re-converts monetary fields for non-USD reporters only.
	CategoryCurrencyFix Category = "currency-fix"

	// CategoryNewSymbols runs the full per-symbol pipeline for symbols not
	// yet present in the snapshot, merges them in and re-ranks.
	CategoryNewSymbols Category = "new-symbols"
)

var ErrUnknownCategory = errors.New("unknown update category")

// Categories lists every supported update category.
func Categories() []Category {
	return []Category{CategoryQuotes, CategoryGrowth, CategoryFinancials, CategoryCurrencyFix, CategoryNewSymbols}
}

// ParseCategory validates a category selector from the command line.
func ParseCategory(s string) (Category, error) {
	for _, category := range Categories() {
		if s == string(category) {
			return category, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// UpdateStats counts per-record outcomes of a partial update.
type UpdateStats struct {
	Updated int
	Skipped int
	Failed  int
}

// Update loads the existing snapshot, applies one update category, restamps
// every record's LastUpdated (touched or not) and rewrites the snapshot.
func (r *Runner) Update(ctx context.Context, category Category) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	summary := newSummary(string(category))

	defer func() {
		summary.EndTime = time.Now()
		summary.log(ctx)
	}()

	snap, err := data.Load(r.SnapshotPath)
	if err != nil {
		return summary, fmt.Errorf("a partial update requires an existing snapshot: %w", err)
	}

	now := time.Now()

	var stats UpdateStats

	switch category {
	case CategoryQuotes:
		stats = r.updateQuotes(ctx, snap, summary)
		snap.Rank()
	case CategoryGrowth:
		stats = r.updateGrowth(ctx, snap, summary)
	case CategoryFinancials:
		stats = r.updateFinancials(ctx, snap, summary)
	case CategoryCurrencyFix:
		stats = r.updateCurrencyFix(ctx, snap, summary)
	case CategoryNewSymbols:
		stats, err = r.updateNewSymbols(ctx, snap, summary, now)
		if err != nil {
			return summary, err
		}

		snap.Rank()
	default:
		return summary, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	for _, company := range snap.Companies {
		company.LastUpdated = now
	}

	snap.LastUpdated = now
	snap.ExportedAt = time.Now()

	if err := r.writeSnapshot(snap); err != nil {
		return summary, err
	}

	logger.Info().Str("Category", string(category)).
		Int("Updated", stats.Updated).Int("Skipped", stats.Skipped).Int("Failed", stats.Failed).
		Msg("partial update applied")

	summary.NumCompanies = len(snap.Companies)
	summary.SnapshotPath = r.SnapshotPath

	return summary, nil
}

func (r *Runner) updateQuotes(ctx context.Context, snap *data.Snapshot, summary *Summary) UpdateStats {
	symbols := snap.Symbols()
	quotes := processAll(ctx, symbols, r.Concurrency, r.Client.Quote)
	summary.Stages["quotes"] = StageCount{Requested: len(symbols), Fetched: len(quotes)}

	var stats UpdateStats

	for _, company := range snap.Companies {
		quote, ok := quotes[company.Symbol]
		if !ok {
			// record keeps its previous values
			stats.Failed++
			continue
		}

		if quote.MarketCap > 0 {
			company.MarketCap = quote.MarketCap
		}

		company.Price = quote.Price
		company.DailyChangePercent = ptr(quote.ChangesPercentage)

		if quote.YearHigh > 0 {
			company.Week52High = ptr(quote.YearHigh)
		}

		if quote.PE != 0 {
			company.PERatio = ptr(quote.PE)

			if quote.PE > 0 {
				company.TTMEPS = ptr(quote.Price / quote.PE)
			}
		}

		stats.Updated++
	}

	return stats
}

func (r *Runner) updateGrowth(ctx context.Context, snap *data.Snapshot, summary *Summary) UpdateStats {
	symbols := snap.Symbols()
	growth := processAll(ctx, symbols, r.Concurrency, r.Client.Growth)
	summary.Stages["growth"] = StageCount{Requested: len(symbols), Fetched: len(growth)}

	var stats UpdateStats

	for _, company := range snap.Companies {
		figures, ok := growth[company.Symbol]
		if !ok {
			stats.Failed++
			continue
		}

		company.RevenueGrowth5Y = ptr(CAGR(figures.FiveYRevenueGrowth, 5))
		company.RevenueGrowth3Y = ptr(CAGR(figures.ThreeYRevenueGrowth, 3))
		company.EPSGrowth5Y = ptr(CAGR(figures.FiveYNetIncomeGrowth, 5))
		company.EPSGrowth3Y = ptr(CAGR(figures.ThreeYNetIncomeGrowth, 3))

		stats.Updated++
	}

	return stats
}

func (r *Runner) updateFinancials(ctx context.Context, snap *data.Snapshot, summary *Summary) UpdateStats {
	symbols := snap.Symbols()
	norm := NewNormalizer(r.fetchFXTable(ctx))

	income := processAll(ctx, symbols, r.Concurrency, r.Client.IncomeStatements)
	summary.Stages["income"] = StageCount{Requested: len(symbols), Fetched: len(income)}

	var stats UpdateStats

	for _, company := range snap.Companies {
		statements, ok := income[company.Symbol]
		if !ok {
			stats.Failed++
			continue
		}

		applyFinancials(ctx, company, statements, norm)
		stats.Updated++
	}

	summary.CurrencyMisses = norm.Misses()

	return stats
}

// updateCurrencyFix re-converts monetary fields for symbols whose reporting
// currency is not USD. USD reporters are left completely untouched and only
// counted, so a byte-identical record proves the skip.
func (r *Runner) updateCurrencyFix(ctx context.Context, snap *data.Snapshot, summary *Summary) UpdateStats {
	logger := zerolog.Ctx(ctx)

	symbols := snap.Symbols()
	norm := NewNormalizer(r.fetchFXTable(ctx))

	income := processAll(ctx, symbols, r.Concurrency, r.Client.IncomeStatements)
	summary.Stages["income"] = StageCount{Requested: len(symbols), Fetched: len(income)}

	var stats UpdateStats

	for _, company := range snap.Companies {
		statements, ok := income[company.Symbol]
		if !ok {
			stats.Failed++
			continue
		}

		if len(statements) == 0 || statements[0].ReportedCurrency == "" || statements[0].ReportedCurrency == "USD" {
			stats.Skipped++
			continue
		}

		applyFinancials(ctx, company, statements, norm)
		stats.Updated++
	}

	summary.CurrencyMisses = norm.Misses()

	logger.Info().Int("SkippedUSD", stats.Skipped).Msg("currency fix skipped USD-reporting symbols")

	return stats
}

// applyFinancials recomputes the income-statement-owned fields of a record.
func applyFinancials(ctx context.Context, company *data.CompanyRecord, statements []*fmp.IncomeStatement, norm *Normalizer) {
	currency := "USD"
	if statements[0].ReportedCurrency != "" {
		currency = statements[0].ReportedCurrency
	}

	revenue, netIncome, operatingIncome := ttmSums(statements)

	if revenue > 0 {
		company.OperatingMargin = ptr(operatingIncome / revenue)
		company.Revenue = ptr(norm.ToUSD(ctx, revenue, currency))
	} else {
		company.OperatingMargin = nil
		company.Revenue = nil
	}

	company.Earnings = ptr(norm.ToUSD(ctx, netIncome, currency))
}

// updateNewSymbols fetches the full per-symbol pipeline, but only for
// symbols the screener knows and the snapshot does not, then merges the new
// records in. Existing records are never touched by this category.
func (r *Runner) updateNewSymbols(ctx context.Context, snap *data.Snapshot, summary *Summary, now time.Time) (UpdateStats, error) {
	logger := zerolog.Ctx(ctx)

	var stats UpdateStats

	universe, err := ResolveUniverse(ctx, r.Client, r.MinMarketCap, r.ExtraSymbols)
	if err != nil {
		return stats, err
	}

	existing := snap.Index()

	newSymbols := make([]string, 0, 64)
	for _, symbol := range universe {
		if _, ok := existing[symbol]; !ok {
			newSymbols = append(newSymbols, symbol)
		}
	}

	stats.Skipped = len(universe) - len(newSymbols)

	if len(newSymbols) == 0 {
		logger.Info().Msg("no new symbols to add")
		return stats, nil
	}

	logger.Info().Int("NumNewSymbols", len(newSymbols)).Msg("fetching newly listed symbols")

	norm := NewNormalizer(r.fetchFXTable(ctx))
	results := r.fetchAll(ctx, newSymbols, summary)

	records := assemble(ctx, results, norm, now)
	summary.CurrencyMisses = norm.Misses()

	stats.Updated = len(records)
	stats.Failed = len(newSymbols) - len(records)

	snap.Companies = append(snap.Companies, records...)

	return stats, nil
}
