/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package inventory delivers the container table the viewer renders. A local
// SQLite snapshot database covers offline use; the Postgres provider reads a
// live yard system. Both return the same id-keyed entity table the store
// consumes via ReplaceData.
package inventory

import (
	"context"

	"yardview/internal/domain"
)

// Provider is a source of container inventory.
type Provider interface {
	// Entities returns the full container table keyed by id.
	Entities(ctx context.Context) (map[string]domain.Entity, error)
	// Reserved returns the ids flagged for reserved display mode.
	Reserved(ctx context.Context) ([]string, error)
	Close() error
}
