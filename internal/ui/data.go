/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop shell around the scene engine. The Fyne
// implementation is build-tagged; headless builds keep the data-loading path
// so the CLI subcommands share it.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yardview/internal/domain"
	"yardview/internal/inventory"
	"yardview/internal/layout"
)

// LoadYardData loads the terminal layout and, when source is non-empty, the
// container inventory and reserved set. A postgres:// DSN selects the live
// yard system; any other value is treated as a local snapshot database path.
func LoadYardData(layoutPath, source string) (domain.Terminal, map[string]domain.Entity, []string, error) {
	term, err := layout.Load(layoutPath)
	if err != nil {
		return term, nil, nil, fmt.Errorf("load layout: %w", err)
	}

	entities := map[string]domain.Entity{}
	var reserved []string
	if source != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		inv, err := openProvider(ctx, source)
		if err != nil {
			return term, nil, nil, fmt.Errorf("open inventory: %w", err)
		}
		defer func() { _ = inv.Close() }()

		if entities, err = inv.Entities(ctx); err != nil {
			return term, nil, nil, fmt.Errorf("load inventory: %w", err)
		}
		if reserved, err = inv.Reserved(ctx); err != nil {
			return term, nil, nil, fmt.Errorf("load reserved set: %w", err)
		}
	}
	return term, entities, reserved, nil
}

func openProvider(ctx context.Context, source string) (inventory.Provider, error) {
	if strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://") {
		return inventory.OpenPostgres(ctx, source)
	}
	return inventory.OpenSQLite(source)
}
