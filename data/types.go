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
package data

import (
	"sort"
	"time"
)

// CompanyRecord is the per-symbol unit of output produced by the scraper
// pipeline. Monetary aggregates (Earnings, Revenue, ForwardEPS) are always
// expressed in USD regardless of the company's reporting currency.
//
// Nil pointer fields mean the upstream source had no data for that metric;
// zero is a valid value and is never used to stand in for "unknown".
type CompanyRecord struct {
	Symbol  string
	Name    string
	Country string

	// Rank is 1-based and dense, assigned by descending market cap. A zero
	// rank means the record has not been ranked since it was merged in.
	Rank int

	MarketCap float64
	Price     float64

	Week52High         *float64
	DailyChangePercent *float64
	PERatio            *float64
	TTMEPS             *float64
	Earnings           *float64
	Revenue            *float64
	OperatingMargin    *float64
	DividendPercent    *float64
	ForwardPE          *float64
	ForwardEPS         *float64
	ForwardEPSDate     string
	RevenueGrowth5Y    *float64
	RevenueGrowth3Y    *float64
	EPSGrowth5Y        *float64
	EPSGrowth3Y        *float64

	LastUpdated time.Time
}

// Snapshot is one complete, timestamped output of the pipeline.
type Snapshot struct {
	Companies   []*CompanyRecord
	LastUpdated time.Time
	ExportedAt  time.Time
}

// Index returns a symbol-keyed view of the snapshot's records.
func (snap *Snapshot) Index() map[string]*CompanyRecord {
	idx := make(map[string]*CompanyRecord, len(snap.Companies))
	for _, company := range snap.Companies {
		idx[company.Symbol] = company
	}

	return idx
}

// Symbols returns the snapshot's symbols in record order.
func (snap *Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(snap.Companies))
	for _, company := range snap.Companies {
		symbols = append(symbols, company.Symbol)
	}

	return symbols
}

// Rank sorts the records by descending market cap and assigns a dense
// 1-based rank. The sort is stable so re-ranking an already ranked set
// leaves it unchanged. Records are first ordered by symbol so the result
// does not depend on assembly order.
func (snap *Snapshot) Rank() {
	sort.Slice(snap.Companies, func(i, j int) bool {
		return snap.Companies[i].Symbol < snap.Companies[j].Symbol
	})

	sort.SliceStable(snap.Companies, func(i, j int) bool {
		return snap.Companies[i].MarketCap > snap.Companies[j].MarketCap
	})

	for idx, company := range snap.Companies {
		company.Rank = idx + 1
	}
}
