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
	"fmt"

	"github.com/cosmic-glitch/companiesmarketcap/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print a summary of the current snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		fn := viper.GetString("snapshot.path")

		snap, err := data.Load(fn)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", fn).Msg("could not load snapshot")
		}

		p := message.NewPrinter(language.English)

		p.Printf("Snapshot: %s\n", fn)
		p.Printf("Companies: %d\n", len(snap.Companies))
		p.Printf("Last Updated: %s (%s)\n\n", timeago.English.Format(snap.LastUpdated), snap.LastUpdated.Local().Format("01/02/2006 15:04"))

		limit := 10
		if len(snap.Companies) < limit {
			limit = len(snap.Companies)
		}

		for _, company := range snap.Companies[:limit] {
			p.Printf("%4d. %-8s %-32s %s\n", company.Rank, company.Symbol, company.Name, formatMarketCap(company.MarketCap))
		}
	},
}

func formatMarketCap(marketCap float64) string {
	switch {
	case marketCap >= 1e12:
		return fmt.Sprintf("$%.2fT", marketCap/1e12)
	case marketCap >= 1e9:
		return fmt.Sprintf("$%.2fB", marketCap/1e9)
	case marketCap >= 1e6:
		return fmt.Sprintf("$%.2fM", marketCap/1e6)
	default:
		return fmt.Sprintf("$%.0f", marketCap)
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
