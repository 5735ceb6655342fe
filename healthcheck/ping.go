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

// Package healthcheck notifies a healthchecks.io style monitor about
// scheduled run outcomes so missed or failing runs page the operator.
package healthcheck

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Ping reports a successful run. A missing ping URL disables reporting.
func Ping(ctx context.Context) {
	ping(ctx, "")
}

// PingFailure reports a failed run.
func PingFailure(ctx context.Context) {
	ping(ctx, "/fail")
}

func ping(ctx context.Context, suffix string) {
	pingURL := viper.GetString("healthchecks.pingurl")
	if pingURL == "" {
		return
	}

	client := resty.New()
	resp, err := client.R().SetContext(ctx).Post(pingURL + suffix)

	if err != nil {
		log.Warn().Err(err).Msg("healthcheck ping failed")
		return
	}

	if resp.StatusCode() >= 300 {
		log.Warn().Int("StatusCode", resp.StatusCode()).Msg("healthcheck ping returned an error status")
	}
}
