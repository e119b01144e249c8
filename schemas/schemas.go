// Package schemas embeds the JSON Schemas for napr's YAML files.
package schemas

import _ "embed"

// ExperimentSchemaJSON is the schema for experiment.yaml files.
//
//go:embed experiment.schema.json
var ExperimentSchemaJSON string
