// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"pii-redact/internal/formatters"
	"pii-redact/internal/pipeline"
)

// Formatter implements machine-readable JSON output.
type Formatter struct{}

// NewFormatter creates a new JSON formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// Format marshals the result. Verbose output includes the original text
// and all span detail; non-verbose output carries only the redacted text
// and the statistics, so pipelines that log their output do not reprint
// the PII they just removed.
func (f *Formatter) Format(result *pipeline.Result, options formatters.Options) (string, error) {
	var payload any = result
	if !options.Verbose {
		payload = struct {
			Redacted   string         `json:"redacted"`
			Statistics map[string]int `json:"statistics"`
		}{
			Redacted:   result.Redacted,
			Statistics: statNames(result),
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling result: %w", err)
	}
	return string(data), nil
}

func statNames(result *pipeline.Result) map[string]int {
	stats := make(map[string]int, len(result.Statistics))
	for category, n := range result.Statistics {
		stats[string(category)] = n
	}
	return stats
}
