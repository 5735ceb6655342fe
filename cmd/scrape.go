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
package cmd

import (
	"context"
	"time"

	"github.com/cosmic-glitch/companiesmarketcap/backblaze"
	"github.com/cosmic-glitch/companiesmarketcap/fmp"
	"github.com/cosmic-glitch/companiesmarketcap/scrape"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var onlyCategory string

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the scraper pipeline and write a new snapshot",
	Long: `The scrape sub-command executes the aggregation pipeline. Without flags a
full run is performed: the symbol universe is resolved from the market
screener, all six data categories are fetched for every symbol, and a
brand-new ranked snapshot is written.

With --only, a single partial-update category is run against the existing
snapshot instead (one of: quotes, growth, financials, currency-fix,
new-symbols).`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		runner := newRunner()

		var (
			summary *scrape.Summary
			err     error
		)

		startTime := time.Now()

		if onlyCategory == "" {
			summary, err = runner.Full(ctx)
		} else {
			var category scrape.Category
			if category, err = scrape.ParseCategory(onlyCategory); err != nil {
				log.Fatal().Err(err).Msg("invalid --only selector")
			}

			summary, err = runner.Update(ctx, category)
		}

		runTime := time.Since(startTime)

		if err != nil {
			log.Fatal().Err(err).Str("RunTime", durafmt.Parse(runTime).String()).Msg("scrape run failed")
		}

		log.Info().Str("RunTime", durafmt.Parse(runTime).String()).
			Int("NumCompanies", summary.NumCompanies).
			Str("Snapshot", summary.SnapshotPath).
			Msg("scrape run finished")
	},
}

// newRunner builds a pipeline runner from the active configuration.
func newRunner() *scrape.Runner {
	client := fmp.New(viper.GetString("fmp.apikey"),
		fmp.WithRequestInterval(time.Duration(viper.GetInt("fmp.ratelimit_ms"))*time.Millisecond))

	runner := &scrape.Runner{
		Client:       client,
		SnapshotPath: viper.GetString("snapshot.path"),
		Concurrency:  viper.GetInt("scraper.concurrency"),
		MinMarketCap: viper.GetInt64("scraper.mincap"),
		ExtraSymbols: viper.GetStringSlice("scraper.extra_symbols"),
	}

	if bucket := viper.GetString("backblaze.bucket"); bucket != "" {
		runner.Upload = func(fn string) error {
			return backblaze.Upload(fn, bucket, viper.GetString("backblaze.dir"))
		}
	}

	return runner
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().StringVar(&onlyCategory, "only", "", "restrict the run to one update category")
}
