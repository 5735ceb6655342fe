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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "companiesmarketcap",
	Short: "companiesmarketcap builds the ranked company dataset served by the marketcap site",
	Long: `companiesmarketcap aggregates per-company financial metrics (market cap,
price, earnings, revenue, ratios, growth rates) from an external financial
data API, merges them into unified per-symbol records, normalizes all
monetary figures to USD, and writes a ranked snapshot consumed by the query
API and web frontend.

A full run rebuilds the snapshot from scratch; partial-update runs refresh
only one category of fields (quotes, growth, financials, currency-fix,
new-symbols) against the existing snapshot.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.companiesmarketcap.toml)")
	rootCmd.PersistentFlags().String("snapshot", "", "path of the snapshot file to read and write")
	if err := viper.BindPFlag("snapshot.path", rootCmd.PersistentFlags().Lookup("snapshot")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for snapshot failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".companiesmarketcap" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".companiesmarketcap")
	}

	viper.SetDefault("snapshot.path", "companies.json")
	viper.SetDefault("fmp.ratelimit_ms", 750)
	viper.SetDefault("scraper.concurrency", 1)
	viper.SetDefault("scraper.mincap", 100_000_000)
	viper.SetDefault("trigger.listen", ":8085")
	viper.SetDefault("trigger.timelimit", "50m")

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
