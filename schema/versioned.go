// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

// Versioned is a tiny struct used to grab the schema version of a config file
type Versioned struct {
	// SchemaVersion is the schema that this file follows
	SchemaVersion string `json:"schema-version"`
}
