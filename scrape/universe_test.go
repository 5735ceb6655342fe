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
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func screenerHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("page") == "0" {
			fmt.Fprint(w, body)
			return
		}

		fmt.Fprint(w, `[]`)
	})
}

func TestResolveUniverseScreenerOnly(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t, screenerHandler(`[{"symbol":"AAPL","marketCap":1},{"symbol":"MSFT","marketCap":1},{"symbol":"AAPL","marketCap":1}]`))

	symbols, err := ResolveUniverse(ctx, r.Client, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestResolveUniverseSupplementalAppended(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t, screenerHandler(`[{"symbol":"AAPL","marketCap":1}]`))

	// supplemental entries are normalized and deduplicated against the
	// screener result, keeping screener order first
	symbols, err := ResolveUniverse(ctx, r.Client, 100, []string{" brk-b ", "aapl", "", "BRK-B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "BRK-B"}, symbols)
}

func TestResolveUniverseEmpty(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t, screenerHandler(`[]`))

	_, err := ResolveUniverse(ctx, r.Client, 100, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyUniverse))
}

func TestResolveUniverseSupplementalOnly(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t, screenerHandler(`[]`))

	symbols, err := ResolveUniverse(ctx, r.Client, 100, []string{"tcehy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"TCEHY"}, symbols)
}

func TestResolveUniverseScreenerFailure(t *testing.T) {
	ctx := context.Background()
	r := testRunner(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := ResolveUniverse(ctx, r.Client, 100, []string{"AAPL"})
	require.Error(t, err)
}
