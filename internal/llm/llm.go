// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package llm reviews candidate spans with an external language model.
// The review stage is mandatory and blocking: it removes false positives
// the rules let through, discovers PII the rules missed, and produces the
// human-readable explanation attached to every result.
package llm

import (
	"context"
	"errors"

	"pii-redact/internal/detector"
)

// Validator is the capability the pipeline needs from a language-model
// backend. Implementations must honor ctx cancellation and must not
// return a partial Review alongside an error.
type Validator interface {
	Review(ctx context.Context, text string, candidates []detector.Span) (*Review, error)
}

// Review is the authoritative outcome of the model review.
type Review struct {
	// Spans is the final set: accepted candidates plus validated
	// discoveries, all confirmed, pairwise disjoint, ordered by start.
	Spans []detector.Span

	// Rejected lists the candidates the model refused, with reasoning.
	Rejected []Rejection

	// Explanation is the model's free-text summary of what was found and
	// why it was redacted.
	Explanation string
}

// Rejection is one refused candidate.
type Rejection struct {
	Span   detector.Span `json:"span"`
	Reason string        `json:"reason"`
}

var (
	// ErrMissingAPIKey means no credential was configured for the model
	// service. The pipeline cannot run without one.
	ErrMissingAPIKey = errors.New("language model API key is required")

	// ErrUnparsableResponse means the model replied but its output could
	// not be interpreted. Terminal: retrying will not help, and
	// substituting a best-guess span set would silently break the
	// precision guarantee downstream users rely on.
	ErrUnparsableResponse = errors.New("language model response could not be parsed")

	// ErrServiceUnavailable means the model service could not be reached
	// after exhausting retries.
	ErrServiceUnavailable = errors.New("language model service unavailable")
)
