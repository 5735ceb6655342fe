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
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cosmic-glitch/companiesmarketcap/data"
	"github.com/cosmic-glitch/companiesmarketcap/fmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunner(t *testing.T, handler http.Handler) *Runner {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := fmp.New("test-key",
		fmp.WithBaseURL(srv.URL),
		fmp.WithRequestInterval(time.Millisecond),
		fmp.WithBackoff(time.Millisecond, 10*time.Millisecond),
		fmp.WithMaxAttempts(2),
	)

	return &Runner{
		Client:       client,
		SnapshotPath: filepath.Join(t.TempDir(), "companies.json"),
		Concurrency:  1,
	}
}

func writeTestSnapshot(t *testing.T, r *Runner, companies ...*data.CompanyRecord) {
	t.Helper()

	snap := &data.Snapshot{
		Companies:   companies,
		LastUpdated: time.Now().Add(-24 * time.Hour),
		ExportedAt:  time.Now().Add(-24 * time.Hour),
	}
	snap.Rank()

	require.NoError(t, snap.Save(r.SnapshotPath))
}

func TestParseCategory(t *testing.T) {
	for _, category := range Categories() {
		parsed, err := ParseCategory(string(category))
		require.NoError(t, err)
		assert.Equal(t, category, parsed)
	}

	_, err := ParseCategory("dividends")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestUpdateRequiresExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := r.Update(ctx, CategoryQuotes)
	require.Error(t, err)
}

func TestUpdateCurrencyFixSkipsUSDReporters(t *testing.T) {
	ctx := context.Background()

	r := testRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch req.URL.Path {
		case "/fx":
			fmt.Fprint(w, `{"EUR":0.92}`)
		case "/income-statement/EEE":
			fmt.Fprint(w, `[{"symbol":"EEE","reportedCurrency":"USD","revenue":999,"netIncome":99,"operatingIncome":199}]`)
		case "/income-statement/FRF":
			fmt.Fprint(w, `[{"symbol":"FRF","reportedCurrency":"EUR","revenue":92,"netIncome":9.2,"operatingIncome":23}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	eee := &data.CompanyRecord{Symbol: "EEE", MarketCap: 100, Price: 5, Revenue: ptr(123.0), Earnings: ptr(45.0), OperatingMargin: ptr(0.2)}
	frf := &data.CompanyRecord{Symbol: "FRF", MarketCap: 50, Price: 5, Revenue: ptr(92.0), Earnings: ptr(9.2), OperatingMargin: ptr(0.25)}
	writeTestSnapshot(t, r, eee, frf)

	snap, err := data.Load(r.SnapshotPath)
	require.NoError(t, err)

	stats := r.updateCurrencyFix(ctx, snap, newSummary("currency-fix"))
	assert.Equal(t, UpdateStats{Updated: 1, Skipped: 1}, stats)

	byName := snap.Index()

	// the USD reporter keeps its stale figures untouched
	require.NotNil(t, byName["EEE"].Revenue)
	assert.Equal(t, 123.0, *byName["EEE"].Revenue)
	assert.Equal(t, 45.0, *byName["EEE"].Earnings)
	assert.Equal(t, 0.2, *byName["EEE"].OperatingMargin)

	// the EUR reporter is re-converted from the fresh statements
	require.NotNil(t, byName["FRF"].Revenue)
	assert.InDelta(t, 100.0, *byName["FRF"].Revenue, 1e-9)
	assert.InDelta(t, 10.0, *byName["FRF"].Earnings, 1e-9)
	assert.InDelta(t, 0.25, *byName["FRF"].OperatingMargin, 1e-9)
}

func TestUpdateQuotesRefreshesAndReranks(t *testing.T) {
	ctx := context.Background()

	r := testRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch req.URL.Path {
		case "/quote/AAA":
			fmt.Fprint(w, `[{"symbol":"AAA","price":11,"changesPercentage":1.5,"marketCap":100,"pe":20,"yearHigh":12}]`)
		case "/quote/BBB":
			// BBB overtakes AAA on market cap
			fmt.Fprint(w, `[{"symbol":"BBB","price":40,"changesPercentage":-0.5,"marketCap":400,"pe":0,"yearHigh":0}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	aaa := &data.CompanyRecord{Symbol: "AAA", MarketCap: 300, Price: 10}
	bbb := &data.CompanyRecord{Symbol: "BBB", MarketCap: 200, Price: 30, PERatio: ptr(15.0)}
	writeTestSnapshot(t, r, aaa, bbb)

	before := time.Now()

	summary, err := r.Update(ctx, CategoryQuotes)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.NumCompanies)
	assert.Equal(t, StageCount{Requested: 2, Fetched: 2}, summary.Stages["quotes"])

	snap, err := data.Load(r.SnapshotPath)
	require.NoError(t, err)
	require.Len(t, snap.Companies, 2)

	byName := snap.Index()
	assert.Equal(t, 1, byName["BBB"].Rank)
	assert.Equal(t, 2, byName["AAA"].Rank)

	assert.Equal(t, 11.0, byName["AAA"].Price)
	require.NotNil(t, byName["AAA"].DailyChangePercent)
	assert.Equal(t, 1.5, *byName["AAA"].DailyChangePercent)
	require.NotNil(t, byName["AAA"].PERatio)
	assert.Equal(t, 20.0, *byName["AAA"].PERatio)
	require.NotNil(t, byName["AAA"].TTMEPS)
	assert.InDelta(t, 0.55, *byName["AAA"].TTMEPS, 1e-9)

	// a zero PE from the quote leaves the prior ratio in place
	require.NotNil(t, byName["BBB"].PERatio)
	assert.Equal(t, 15.0, *byName["BBB"].PERatio)
	assert.Nil(t, byName["BBB"].Week52High)

	// every record is restamped, refreshed or not
	for _, company := range snap.Companies {
		assert.False(t, company.LastUpdated.Before(before.Truncate(time.Second)))
	}
	assert.False(t, snap.LastUpdated.Before(before.Truncate(time.Second)))
}

func TestUpdateQuotesKeepsRecordOnFetchFailure(t *testing.T) {
	ctx := context.Background()

	r := testRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if req.URL.Path == "/quote/AAA" {
			fmt.Fprint(w, `[{"symbol":"AAA","price":12,"marketCap":300}]`)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))

	aaa := &data.CompanyRecord{Symbol: "AAA", MarketCap: 300, Price: 10}
	gone := &data.CompanyRecord{Symbol: "GONE", MarketCap: 200, Price: 30, Revenue: ptr(55.0)}
	writeTestSnapshot(t, r, aaa, gone)

	snap, err := data.Load(r.SnapshotPath)
	require.NoError(t, err)

	stats := r.updateQuotes(ctx, snap, newSummary("quotes"))
	assert.Equal(t, UpdateStats{Updated: 1, Failed: 1}, stats)

	byName := snap.Index()
	assert.Equal(t, 12.0, byName["AAA"].Price)

	// the delisted symbol keeps its previous values
	assert.Equal(t, 30.0, byName["GONE"].Price)
	assert.Equal(t, 200.0, byName["GONE"].MarketCap)
	require.NotNil(t, byName["GONE"].Revenue)
	assert.Equal(t, 55.0, *byName["GONE"].Revenue)
}

func TestUpdateNewSymbolsMergesOnlyUnknown(t *testing.T) {
	ctx := context.Background()

	r := testRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case req.URL.Path == "/stock-screener":
			if req.URL.Query().Get("page") == "0" {
				fmt.Fprint(w, `[{"symbol":"OLD","marketCap":100},{"symbol":"FRESH","marketCap":80}]`)
				return
			}

			fmt.Fprint(w, `[]`)
		case req.URL.Path == "/fx":
			fmt.Fprint(w, `{}`)
		case req.URL.Path == "/quote/FRESH":
			fmt.Fprint(w, `[{"symbol":"FRESH","name":"Fresh Co","price":8,"marketCap":80}]`)
		case req.URL.Path == "/quote/OLD":
			t.Error("existing symbols must not be re-fetched")
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	old := &data.CompanyRecord{Symbol: "OLD", Name: "Old Co", MarketCap: 100, Price: 10}
	writeTestSnapshot(t, r, old)

	summary, err := r.Update(ctx, CategoryNewSymbols)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.NumCompanies)

	snap, err := data.Load(r.SnapshotPath)
	require.NoError(t, err)
	require.Len(t, snap.Companies, 2)

	byName := snap.Index()
	assert.Equal(t, "Old Co", byName["OLD"].Name)
	assert.Equal(t, 1, byName["OLD"].Rank)
	assert.Equal(t, "Fresh Co", byName["FRESH"].Name)
	assert.Equal(t, 2, byName["FRESH"].Rank)
}
