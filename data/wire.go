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
	"time"
)

// wireCompany is the serialized form of a CompanyRecord. The query API and
// frontend consume this schema, so the snake_case field names are a contract
// and must only change together with those consumers. The toWire/fromWire
// pair below is the single place where the two forms are mapped.
type wireCompany struct {
	Symbol             string   `json:"symbol"`
	Name               string   `json:"name"`
	Country            string   `json:"country"`
	Rank               int      `json:"rank"`
	MarketCap          float64  `json:"market_cap"`
	Price              float64  `json:"price"`
	Week52High         *float64 `json:"week_52_high"`
	DailyChangePercent *float64 `json:"daily_change_percent"`
	PERatio            *float64 `json:"pe_ratio"`
	TTMEPS             *float64 `json:"ttm_eps"`
	Earnings           *float64 `json:"earnings"`
	Revenue            *float64 `json:"revenue"`
	OperatingMargin    *float64 `json:"operating_margin"`
	DividendPercent    *float64 `json:"dividend_percent"`
	ForwardPE          *float64 `json:"forward_pe"`
	ForwardEPS         *float64 `json:"forward_eps"`
	ForwardEPSDate     string   `json:"forward_eps_date"`
	RevenueGrowth5Y    *float64 `json:"revenue_growth_5y"`
	RevenueGrowth3Y    *float64 `json:"revenue_growth_3y"`
	EPSGrowth5Y        *float64 `json:"eps_growth_5y"`
	EPSGrowth3Y        *float64 `json:"eps_growth_3y"`
	LastUpdated        string   `json:"last_updated"`
}

type wireSnapshot struct {
	Companies   []*wireCompany `json:"companies"`
	LastUpdated string         `json:"lastUpdated"`
	ExportedAt  string         `json:"exportedAt"`
}

func toWire(company *CompanyRecord) *wireCompany {
	return &wireCompany{
		Symbol:             company.Symbol,
		Name:               company.Name,
		Country:            company.Country,
		Rank:               company.Rank,
		MarketCap:          company.MarketCap,
		Price:              company.Price,
		Week52High:         company.Week52High,
		DailyChangePercent: company.DailyChangePercent,
		PERatio:            company.PERatio,
		TTMEPS:             company.TTMEPS,
		Earnings:           company.Earnings,
		Revenue:            company.Revenue,
		OperatingMargin:    company.OperatingMargin,
		DividendPercent:    company.DividendPercent,
		ForwardPE:          company.ForwardPE,
		ForwardEPS:         company.ForwardEPS,
		ForwardEPSDate:     company.ForwardEPSDate,
		RevenueGrowth5Y:    company.RevenueGrowth5Y,
		RevenueGrowth3Y:    company.RevenueGrowth3Y,
		EPSGrowth5Y:        company.EPSGrowth5Y,
		EPSGrowth3Y:        company.EPSGrowth3Y,
		LastUpdated:        company.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func fromWire(wire *wireCompany) *CompanyRecord {
	lastUpdated, err := time.Parse(time.RFC3339, wire.LastUpdated)
	if err != nil {
		lastUpdated = time.Time{}
	}

	return &CompanyRecord{
		Symbol:             wire.Symbol,
		Name:               wire.Name,
		Country:            wire.Country,
		Rank:               wire.Rank,
		MarketCap:          wire.MarketCap,
		Price:              wire.Price,
		Week52High:         wire.Week52High,
		DailyChangePercent: wire.DailyChangePercent,
		PERatio:            wire.PERatio,
		TTMEPS:             wire.TTMEPS,
		Earnings:           wire.Earnings,
		Revenue:            wire.Revenue,
		OperatingMargin:    wire.OperatingMargin,
		DividendPercent:    wire.DividendPercent,
		ForwardPE:          wire.ForwardPE,
		ForwardEPS:         wire.ForwardEPS,
		ForwardEPSDate:     wire.ForwardEPSDate,
		RevenueGrowth5Y:    wire.RevenueGrowth5Y,
		RevenueGrowth3Y:    wire.RevenueGrowth3Y,
		EPSGrowth5Y:        wire.EPSGrowth5Y,
		EPSGrowth3Y:        wire.EPSGrowth3Y,
		LastUpdated:        lastUpdated,
	}
}
