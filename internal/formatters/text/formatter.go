// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"sort"
	"strings"

	"pii-redact/internal/detector"
	"pii-redact/internal/formatters"
	"pii-redact/internal/pipeline"

	"github.com/fatih/color"
)

// Formatter implements human-readable terminal output.
type Formatter struct {
	header   *color.Color
	category *color.Color
	count    *color.Color
	muted    *color.Color
}

// NewFormatter creates a new text formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		header:   color.New(color.FgWhite, color.Bold),
		category: color.New(color.FgCyan),
		count:    color.New(color.FgYellow),
		muted:    color.New(color.FgHiBlack),
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(result *pipeline.Result, options formatters.Options) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder

	builder.WriteString(f.header.Sprint("Redacted text"))
	builder.WriteString("\n")
	builder.WriteString(result.Redacted)
	builder.WriteString("\n\n")

	builder.WriteString(f.header.Sprint("Detections"))
	builder.WriteString("\n")
	total := 0
	for _, category := range sortedCategories(result.Statistics) {
		n := result.Statistics[category]
		total += n
		line := fmt.Sprintf("  %s: %s", f.category.Sprint(category), f.count.Sprint(n))
		if n == 0 {
			line = f.muted.Sprintf("  %s: 0", category)
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	builder.WriteString(fmt.Sprintf("  total: %d\n", total))

	if options.Verbose {
		f.appendDetail(&builder, result)
	}

	return builder.String(), nil
}

// appendDetail lists each redacted span with its offsets and provenance,
// plus the reviewer explanation when one was returned.
func (f *Formatter) appendDetail(builder *strings.Builder, result *pipeline.Result) {
	builder.WriteString("\n")
	builder.WriteString(f.header.Sprint("Spans"))
	builder.WriteString("\n")

	for _, category := range sortedCategories(result.Statistics) {
		for _, s := range result.Detections[category] {
			builder.WriteString(fmt.Sprintf("  [%d:%d] %s %q (%s)\n",
				s.Start, s.End, f.category.Sprint(category), s.Value, s.Source))
		}
	}

	if result.Explanation != "" {
		builder.WriteString("\n")
		builder.WriteString(f.header.Sprint("Reviewer notes"))
		builder.WriteString("\n  ")
		builder.WriteString(result.Explanation)
		builder.WriteString("\n")
	}
}

func sortedCategories(stats map[detector.Category]int) []detector.Category {
	categories := make([]detector.Category, 0, len(stats))
	for c := range stats {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i] < categories[j]
	})
	return categories
}
