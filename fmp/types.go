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

// Quote holds the latest market quote for a symbol.
type Quote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Country           string  `json:"country"`
	Price             float64 `json:"price"`
	ChangesPercentage float64 `json:"changesPercentage"`
	YearHigh          float64 `json:"yearHigh"`
	MarketCap         float64 `json:"marketCap"`
	PE                float64 `json:"pe"`
	EPS               float64 `json:"eps"`
}

// Profile holds company reference data.
type Profile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Country     string  `json:"country"`
	Currency    string  `json:"currency"`
	Exchange    string  `json:"exchangeShortName"`
	Industry    string  `json:"industry"`
	Beta        float64 `json:"beta"`
	IsEtf       bool    `json:"isEtf"`
}

// IncomeStatement is one quarterly income statement entry. Monetary figures
// are in the company's reporting currency, not USD.
type IncomeStatement struct {
	Symbol           string  `json:"symbol"`
	Date             string  `json:"date"`
	ReportedCurrency string  `json:"reportedCurrency"`
	Revenue          float64 `json:"revenue"`
	OperatingIncome  float64 `json:"operatingIncome"`
	NetIncome        float64 `json:"netIncome"`
	EPSDiluted       float64 `json:"epsdiluted"`
}

// Ratios holds trailing-twelve-month financial ratios.
type Ratios struct {
	Symbol        string  `json:"symbol"`
	PERatio       float64 `json:"peRatioTTM"`
	DividendYield float64 `json:"dividendYielTTM"`
	PayoutRatio   float64 `json:"payoutRatioTTM"`
}

// Growth holds multi-year cumulative growth figures. The 5Y/3Y values are
// total growth over the period as a fraction (e.g. 0.5 = +50% over 5 years),
// not annualized rates.
type Growth struct {
	Symbol               string  `json:"symbol"`
	Date                 string  `json:"date"`
	FiveYRevenueGrowth   float64 `json:"fiveYRevenueGrowthPerShare"`
	ThreeYRevenueGrowth  float64 `json:"threeYRevenueGrowthPerShare"`
	FiveYNetIncomeGrowth float64 `json:"fiveYNetIncomeGrowthPerShare"`
	ThreeYNetIncomeGrowth float64 `json:"threeYNetIncomeGrowthPerShare"`
}

// Estimate is one analyst estimate for a future fiscal year. Date is the
// fiscal-year-end date in YYYY-MM-DD form. EPS estimates are in the
// company's reporting currency.
type Estimate struct {
	Symbol             string  `json:"symbol"`
	Date               string  `json:"date"`
	EstimatedEPSAvg    float64 `json:"estimatedEpsAvg"`
	EstimatedRevenueAvg float64 `json:"estimatedRevenueAvg"`
	NumAnalystsEPS     int     `json:"numberAnalystEstimatedEps"`
}

// ScreenerEntry is one row of the market screener result.
type ScreenerEntry struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	MarketCap   float64 `json:"marketCap"`
	Country     string  `json:"country"`
	Exchange    string  `json:"exchangeShortName"`
}
