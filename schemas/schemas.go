// Package schemas embeds the JSON Schemas that imported configuration
// payload entries are validated against.
package schemas

import _ "embed"

// BoundariesEntrySchemaJSON describes the value of one metric in a
// boundaries payload.
//
//go:embed boundaries-entry.schema.json
var BoundariesEntrySchemaJSON string

// WeightEntrySchemaJSON describes the value of one metric in a weights payload.
//
//go:embed weight-entry.schema.json
var WeightEntrySchemaJSON string
