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
	"time"

	"github.com/cosmic-glitch/companiesmarketcap/fmp"
)

// ttmQuarters is the number of most recent quarterly statements summed into
// a trailing-twelve-month figure.
const ttmQuarters = 4

// CAGR converts a total N-year growth fraction into a compound annual
// growth rate. A total decline of 100% or more is clamped to exactly -1
// since a fractional power of a non-positive base is undefined.
func CAGR(totalGrowth float64, years int) float64 {
	if totalGrowth <= -1 {
		return -1
	}

	return math.Pow(1+totalGrowth, 1/float64(years)) - 1
}

// ttmSums sums revenue, net income and operating income over the most
// recent four quarters. Statements are expected newest first.
func ttmSums(statements []*fmp.IncomeStatement) (revenue, netIncome, operatingIncome float64) {
	quarters := statements
	if len(quarters) > ttmQuarters {
		quarters = quarters[:ttmQuarters]
	}

	for _, statement := range quarters {
		revenue += statement.Revenue
		netIncome += statement.NetIncome
		operatingIncome += statement.OperatingIncome
	}

	return revenue, netIncome, operatingIncome
}

// selectForwardEstimate picks the analyst estimate to use for forward EPS:
// the earliest fiscal year ending at least three months out, so an
// imminently-closing fiscal year is not mistaken for forward guidance. When
// no estimate qualifies, the furthest-out one is used instead.
func selectForwardEstimate(estimates []*fmp.Estimate, now time.Time) *fmp.Estimate {
	cutoff := now.AddDate(0, 3, 0)

	var (
		nearest, furthest         *fmp.Estimate
		nearestDate, furthestDate time.Time
	)

	for _, estimate := range estimates {
		fiscalYearEnd, err := time.Parse("2006-01-02", estimate.Date)
		if err != nil {
			continue
		}

		if furthest == nil || fiscalYearEnd.After(furthestDate) {
			furthest = estimate
			furthestDate = fiscalYearEnd
		}

		if fiscalYearEnd.Before(cutoff) {
			continue
		}

		if nearest == nil || fiscalYearEnd.Before(nearestDate) {
			nearest = estimate
			nearestDate = fiscalYearEnd
		}
	}

	if nearest != nil {
		return nearest
	}

	return furthest
}
