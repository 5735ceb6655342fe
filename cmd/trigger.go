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
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/cosmic-glitch/companiesmarketcap/healthcheck"
	"github.com/cosmic-glitch/companiesmarketcap/scrape"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// triggerCmd represents the trigger command
var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Serve an HTTP endpoint that triggers scraper runs",
	Long: `The trigger sub-command starts a small HTTP server so an external
scheduler can start runs. Requests must carry the shared-secret token and
may restrict the run to one update category:

    POST /api/scrape?token=SECRET[&only=CATEGORY]

Each triggered run executes under the configured time ceiling; exceeding it
fails the run so the scheduler can retry on its next tick.`,
	Run: func(cmd *cobra.Command, args []string) {
		token := viper.GetString("trigger.token")
		if token == "" {
			log.Fatal().Msg("trigger.token must be configured")
		}

		listen := viper.GetString("trigger.listen")

		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/scrape", handleScrape)

		log.Info().Str("Listen", listen).Msg("trigger server listening")

		if err := http.ListenAndServe(listen, mux); err != nil {
			log.Fatal().Err(err).Msg("trigger server failed")
		}
	},
}

type triggerResponse struct {
	Companies int    `json:"companies,omitempty"`
	Snapshot  string `json:"snapshot,omitempty"`
	Error     string `json:"error,omitempty"`
	Elapsed   string `json:"elapsed"`
}

func handleScrape(w http.ResponseWriter, r *http.Request) {
	token := viper.GetString("trigger.token")
	provided := r.URL.Query().Get("token")

	if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	timeLimit := viper.GetDuration("trigger.timelimit")

	ctx, cancel := context.WithTimeout(log.Logger.WithContext(r.Context()), timeLimit)
	defer cancel()

	runner := newRunner()

	var (
		summary *scrape.Summary
		err     error
	)

	startTime := time.Now()

	if only := r.URL.Query().Get("only"); only != "" {
		var category scrape.Category
		if category, err = scrape.ParseCategory(only); err == nil {
			summary, err = runner.Update(ctx, category)
		}
	} else {
		summary, err = runner.Full(ctx)
	}

	elapsed := time.Since(startTime)

	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		log.Error().Err(err).Str("Elapsed", elapsed.Round(time.Second).String()).Msg("triggered run failed")
		healthcheck.PingFailure(r.Context())

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(triggerResponse{
			Error:   err.Error(),
			Elapsed: elapsed.Round(time.Second).String(),
		})

		return
	}

	healthcheck.Ping(r.Context())

	_ = json.NewEncoder(w).Encode(triggerResponse{
		Companies: summary.NumCompanies,
		Snapshot:  summary.SnapshotPath,
		Elapsed:   elapsed.Round(time.Second).String(),
	})
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}
