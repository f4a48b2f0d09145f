// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import "errors"

// Sentinel errors returned by store operations. Callers match them with
// errors.Is; the store wraps them with the offending id or category.
var (
	// ErrNotFound is returned by Update when the id is unknown.
	// Delete on an unknown id is deliberately a logged no-op instead.
	ErrNotFound = errors.New("memory not found")

	// ErrUnknownCategory is returned when a store or query targets a
	// category outside the configured partitions.
	ErrUnknownCategory = errors.New("unknown memory category")

	// ErrInvalidImportance is returned when an importance value falls
	// outside [0, 1].
	ErrInvalidImportance = errors.New("importance must be in [0, 1]")
)
