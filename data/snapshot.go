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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptySnapshot = errors.New("refusing to write an empty snapshot")
)

// Load reads a snapshot file and converts it from its wire form.
func Load(fn string) (*Snapshot, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var wire wireSnapshot
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	snap := &Snapshot{
		Companies: make([]*CompanyRecord, 0, len(wire.Companies)),
	}

	if snap.LastUpdated, err = time.Parse(time.RFC3339, wire.LastUpdated); err != nil {
		return nil, fmt.Errorf("parse snapshot lastUpdated: %w", err)
	}

	if snap.ExportedAt, err = time.Parse(time.RFC3339, wire.ExportedAt); err != nil {
		return nil, fmt.Errorf("parse snapshot exportedAt: %w", err)
	}

	for _, company := range wire.Companies {
		snap.Companies = append(snap.Companies, fromWire(company))
	}

	return snap, nil
}

// Save serializes the snapshot to its wire form and writes it to fn. The
// write goes to a temporary file in the same directory which is then renamed
// into place, so a reader never observes a partially written snapshot and a
// failed run never clobbers the previous good one.
func (snap *Snapshot) Save(fn string) error {
	if len(snap.Companies) == 0 {
		return ErrEmptySnapshot
	}

	wire := &wireSnapshot{
		Companies:   make([]*wireCompany, 0, len(snap.Companies)),
		LastUpdated: snap.LastUpdated.UTC().Format(time.RFC3339),
		ExportedAt:  snap.ExportedAt.UTC().Format(time.RFC3339),
	}

	for _, company := range snap.Companies {
		wire.Companies = append(wire.Companies, toWire(company))
	}

	raw, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(fn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fn)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), fn); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename snapshot into place: %w", err)
	}

	log.Info().Str("FileName", fn).Int("NumCompanies", len(snap.Companies)).Msg("wrote snapshot")

	return nil
}
