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
	"math"
	"testing"
	"time"

	"github.com/cosmic-glitch/companiesmarketcap/fmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCAGRRoundTrip(t *testing.T) {
	for _, years := range []int{3, 5} {
		for _, total := range []float64{-0.99, -0.5, -0.1, 0, 0.12, 0.5, 1, 3.2, 10} {
			annual := CAGR(total, years)
			roundTrip := math.Pow(1+annual, float64(years)) - 1
			assert.InDelta(t, total, roundTrip, 1e-9, "total=%v years=%d", total, years)
		}
	}
}

func TestCAGRFullDecline(t *testing.T) {
	assert.Equal(t, -1.0, CAGR(-1, 5))
	assert.Equal(t, -1.0, CAGR(-1.5, 3))
	assert.Equal(t, -1.0, CAGR(-2, 5))
}

func TestTTMSums(t *testing.T) {
	statements := []*fmp.IncomeStatement{
		{Revenue: 100, NetIncome: 10, OperatingIncome: 20},
		{Revenue: 90, NetIncome: -5, OperatingIncome: 15},
		{Revenue: 80, NetIncome: 8, OperatingIncome: 12},
		{Revenue: 70, NetIncome: 7, OperatingIncome: 10},
	}

	revenue, netIncome, operatingIncome := ttmSums(statements)
	assert.Equal(t, 340.0, revenue)
	assert.Equal(t, 20.0, netIncome)
	assert.Equal(t, 57.0, operatingIncome)
}

func TestTTMSumsIgnoresOlderQuarters(t *testing.T) {
	statements := []*fmp.IncomeStatement{
		{Revenue: 1}, {Revenue: 1}, {Revenue: 1}, {Revenue: 1},
		{Revenue: 1000},
	}

	revenue, _, _ := ttmSums(statements)
	assert.Equal(t, 4.0, revenue)
}

func TestSelectForwardEstimatePrefersNearestQualifying(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	estimates := []*fmp.Estimate{
		{Date: "2027-12-31", EstimatedEPSAvg: 4},
		{Date: "2025-12-31", EstimatedEPSAvg: 2},
		{Date: "2026-12-31", EstimatedEPSAvg: 3},
	}

	estimate := selectForwardEstimate(estimates, now)
	require.NotNil(t, estimate)
	assert.Equal(t, "2025-12-31", estimate.Date)
}

func TestSelectForwardEstimateSkipsImminentFiscalYear(t *testing.T) {
	// a fiscal year ending within three months is not forward guidance
	now := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

	estimates := []*fmp.Estimate{
		{Date: "2025-12-31", EstimatedEPSAvg: 2},
		{Date: "2026-12-31", EstimatedEPSAvg: 3},
	}

	estimate := selectForwardEstimate(estimates, now)
	require.NotNil(t, estimate)
	assert.Equal(t, "2026-12-31", estimate.Date)
}

func TestSelectForwardEstimateFallsBackToFurthest(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	estimates := []*fmp.Estimate{
		{Date: "2024-12-31", EstimatedEPSAvg: 1},
		{Date: "2025-03-31", EstimatedEPSAvg: 2},
	}

	estimate := selectForwardEstimate(estimates, now)
	require.NotNil(t, estimate)
	assert.Equal(t, "2025-03-31", estimate.Date)
}

func TestSelectForwardEstimateEmpty(t *testing.T) {
	assert.Nil(t, selectForwardEstimate(nil, time.Now()))
	assert.Nil(t, selectForwardEstimate([]*fmp.Estimate{{Date: "not-a-date"}}, time.Now()))
}
