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
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoCompanies = errors.New("no companies survived record assembly")
)

// Runner holds the configuration of one scraper invocation.
type Runner struct {
	Client       *fmp.Client
	SnapshotPath string

	// Concurrency is the batch worker count; production default is 1.
	Concurrency int

	// MinMarketCap is the screener market-cap floor in USD.
	MinMarketCap int64

	// ExtraSymbols supplements the screener result with symbols it
	// systematically omits.
	ExtraSymbols []string

	// Upload, when set, ships the written snapshot to remote blob storage.
	Upload func(fn string) error
}

// StageCount records per-stage batch outcomes for the run summary.
type StageCount struct {
	Requested int
	Fetched   int
}

// Summary describes the outcome of one run, produced whether or not the run
// as a whole succeeded.
type Summary struct {
	ID             uuid.UUID
	Kind           string
	StartTime      time.Time
	EndTime        time.Time
	Stages         map[string]StageCount
	CurrencyMisses map[string]int
	NumCompanies   int
	SnapshotPath   string
}

func newSummary(kind string) *Summary {
	return &Summary{
		ID:        uuid.New(),
		Kind:      kind,
		StartTime: time.Now(),
		Stages:    make(map[string]StageCount),
	}
}

func (summary *Summary) Duration() time.Duration {
	return summary.EndTime.Sub(summary.StartTime)
}

func (summary *Summary) log(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	event := logger.Info().
		Str("RunID", summary.ID.String()).
		Str("Kind", summary.Kind).
		Int("NumCompanies", summary.NumCompanies).
		Str("Duration", summary.Duration().Round(time.Second).String())

	for stage, count := range summary.Stages {
		event = event.Str(stage, fmt.Sprintf("%d/%d", count.Fetched, count.Requested))
	}

	for currency, misses := range summary.CurrencyMisses {
		event = event.Int("FXMiss_"+currency, misses)
	}

	event.Msg("run summary")
}

// Full executes a complete pipeline run: resolve the universe, fetch the FX
// table, run the six batch stages sequentially, assemble, rank and write a
// brand-new snapshot.
func (r *Runner) Full(ctx context.Context) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	summary := newSummary("full")

	defer func() {
		summary.EndTime = time.Now()
		summary.log(ctx)
	}()

	symbols, err := ResolveUniverse(ctx, r.Client, r.MinMarketCap, r.ExtraSymbols)
	if err != nil {
		// fall back to the previous snapshot's symbols when one exists; an
		// empty universe with nothing to fall back on is fatal
		snap, loadErr := data.Load(r.SnapshotPath)
		if loadErr != nil {
			logger.Error().Err(err).Msg("could not resolve symbol universe and no prior snapshot exists")
			return summary, err
		}

		logger.Warn().Err(err).Msg("screener unavailable, re-using symbols from prior snapshot")
		symbols = snap.Symbols()
	}

	norm := NewNormalizer(r.fetchFXTable(ctx))
	now := time.Now()

	results := r.fetchAll(ctx, symbols, summary)

	records := assemble(ctx, results, norm, now)
	summary.CurrencyMisses = norm.Misses()

	if len(records) == 0 {
		return summary, ErrNoCompanies
	}

	snap := &data.Snapshot{
		Companies:   records,
		LastUpdated: now,
		ExportedAt:  time.Now(),
	}
	snap.Rank()

	if err := r.writeSnapshot(snap); err != nil {
		return summary, err
	}

	summary.NumCompanies = len(snap.Companies)
	summary.SnapshotPath = r.SnapshotPath

	return summary, nil
}

// fetchAll runs the six batch stages strictly sequentially; a later stage
// never starts before the prior one's batch fully drains.
func (r *Runner) fetchAll(ctx context.Context, symbols []string, summary *Summary) *fetched {
	results := &fetched{}

	results.Quotes = processAll(ctx, symbols, r.Concurrency, r.Client.Quote)
	summary.Stages["quotes"] = StageCount{Requested: len(symbols), Fetched: len(results.Quotes)}

	results.Profiles = processAll(ctx, symbols, r.Concurrency, r.Client.Profile)
	summary.Stages["profiles"] = StageCount{Requested: len(symbols), Fetched: len(results.Profiles)}

	results.Income = processAll(ctx, symbols, r.Concurrency, r.Client.IncomeStatements)
	summary.Stages["income"] = StageCount{Requested: len(symbols), Fetched: len(results.Income)}

	results.Ratios = processAll(ctx, symbols, r.Concurrency, r.Client.Ratios)
	summary.Stages["ratios"] = StageCount{Requested: len(symbols), Fetched: len(results.Ratios)}

	results.Growth = processAll(ctx, symbols, r.Concurrency, r.Client.Growth)
	summary.Stages["growth"] = StageCount{Requested: len(symbols), Fetched: len(results.Growth)}

	results.Estimates = processAll(ctx, symbols, r.Concurrency, r.Client.Estimates)
	summary.Stages["estimates"] = StageCount{Requested: len(symbols), Fetched: len(results.Estimates)}

	return results
}

// fetchFXTable loads the run's FX rate table. A failed fetch degrades to an
// empty table: every non-USD conversion then takes the fail-open path and is
// counted, which matches the per-currency miss behavior.
func (r *Runner) fetchFXTable(ctx context.Context) FXTable {
	logger := zerolog.Ctx(ctx)

	rates, err := r.Client.ForexRates(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("could not fetch FX rates, monetary figures will be left unconverted")
		return FXTable{}
	}

	logger.Info().Int("NumCurrencies", len(rates)).Msg("fetched FX rate table")

	return FXTable(rates)
}

func (r *Runner) writeSnapshot(snap *data.Snapshot) error {
	if err := snap.Save(r.SnapshotPath); err != nil {
		return err
	}

	if r.Upload != nil {
		if err := r.Upload(r.SnapshotPath); err != nil {
			// the local snapshot is good; a failed upload is operational,
			// not structural
			log.Warn().Err(err).Str("FileName", r.SnapshotPath).Msg("snapshot upload failed")
		}
	}

	return nil
}
