// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs the redaction pipeline: detect, filter,
// reconcile, validate, render. Each request is processed independently
// and synchronously end to end; the only shared state is the read-only
// filter rule table and the entity model, both loaded once at startup.
package pipeline

import (
	"context"
	"fmt"

	"pii-redact/internal/detector"
	"pii-redact/internal/entity"
	"pii-redact/internal/filter"
	"pii-redact/internal/llm"
	"pii-redact/internal/observability"
	"pii-redact/internal/recognize"
	"pii-redact/internal/reconcile"
	"pii-redact/internal/redact"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxChars bounds input size so memory use and the model payload
// stay predictable. Long documents are not chunked in this design.
const DefaultMaxChars = 100_000

// Config assembles a Pipeline.
type Config struct {
	// Recognizers defaults to the full structural set.
	Recognizers []recognize.Recognizer

	// Entities is the NER-backed name/location detector. Required.
	Entities *entity.Detector

	// Rules is the false-positive rule table. Defaults to the built-in
	// table.
	Rules *filter.RuleSet

	// Validator is the mandatory language-model review stage. Required.
	Validator llm.Validator

	// MaxChars caps input length; zero means DefaultMaxChars.
	MaxChars int

	Observer *observability.Observer
}

// Pipeline is safe for concurrent use; all per-request data stays on the
// stack of Redact.
type Pipeline struct {
	recognizers []recognize.Recognizer
	entities    *entity.Detector
	rules       *filter.RuleSet
	validator   llm.Validator
	maxChars    int
	observer    *observability.Observer
}

// New builds a pipeline from cfg, applying defaults for optional fields.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Validator == nil {
		return nil, fmt.Errorf("pipeline requires a language-model validator")
	}
	if cfg.Entities == nil {
		return nil, fmt.Errorf("pipeline requires an entity detector")
	}
	if cfg.Recognizers == nil {
		cfg.Recognizers = recognize.All()
	}
	if cfg.Rules == nil {
		cfg.Rules = filter.Default()
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}

	return &Pipeline{
		recognizers: cfg.Recognizers,
		entities:    cfg.Entities,
		rules:       cfg.Rules,
		validator:   cfg.Validator,
		maxChars:    cfg.MaxChars,
		observer:    cfg.Observer,
	}, nil
}

// Result is the complete outcome of one redaction request. It is built
// once per request and never persisted.
type Result struct {
	Original    string                                 `json:"original"`
	Redacted    string                                 `json:"redacted"`
	Detections  map[detector.Category][]detector.Span `json:"detections"`
	Statistics  map[detector.Category]int             `json:"statistics"`
	Explanation string                                 `json:"explanation"`
}

// Redact runs the full pipeline over text. The caller receives either a
// complete, consistent result or an error; there is no degraded mode.
// Cancellation of ctx aborts the in-flight model call.
func (p *Pipeline) Redact(ctx context.Context, text string, settings redact.Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if len(text) == 0 {
		return nil, ErrEmptyText
	}
	if len(text) > p.maxChars {
		return nil, fmt.Errorf("%w: %d > %d characters", ErrTextTooLarge, len(text), p.maxChars)
	}

	finish := p.observer.StartTiming("pipeline", "redact")

	candidates, err := p.detect(ctx, text, settings)
	if err != nil {
		finish(false, nil)
		return nil, &StageError{Stage: StageDetect, Err: err}
	}

	kept, suppressed := p.rules.Apply(text, candidates)
	merged := reconcile.Merge(kept)

	review, err := p.validator.Review(ctx, text, merged)
	if err != nil {
		finish(false, nil)
		return nil, &StageError{Stage: StageValidate, Err: err}
	}

	// Discovery may return categories the caller did not enable; those
	// are dropped here so they neither alter the text nor the counts.
	final := review.Spans[:0:0]
	for _, s := range review.Spans {
		if settings.Enabled(s.Category) {
			final = append(final, s)
		}
	}

	redacted, err := redact.Render(text, final, settings)
	if err != nil {
		finish(false, nil)
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	result := &Result{
		Original:    text,
		Redacted:    redacted,
		Detections:  groupByCategory(final),
		Statistics:  redact.Count(final, settings),
		Explanation: review.Explanation,
	}

	finish(true, map[string]any{
		"candidates": len(candidates),
		"suppressed": len(suppressed),
		"confirmed":  len(final),
		"rejected":   len(review.Rejected),
	})
	return result, nil
}

// detect runs the pattern recognizers and the entity detector over the
// same text. The two detector families are independent pure functions,
// so they run concurrently; their combined output is deterministic
// because it is re-sorted during reconciliation.
func (p *Pipeline) detect(ctx context.Context, text string, settings redact.Settings) ([]detector.Span, error) {
	var patternSpans, entitySpans []detector.Span

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, r := range p.recognizers {
			if !settings.Enabled(r.Category()) {
				continue
			}
			patternSpans = append(patternSpans, r.Recognize(text)...)
		}
		return nil
	})
	g.Go(func() error {
		if !settings.Enabled(detector.CategoryName) && !settings.Enabled(detector.CategoryAddress) {
			return nil
		}
		spans, err := p.entities.Detect(text)
		if err != nil {
			return err
		}
		for _, s := range spans {
			if settings.Enabled(s.Category) {
				entitySpans = append(entitySpans, s)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(patternSpans, entitySpans...), nil
}

func groupByCategory(spans []detector.Span) map[detector.Category][]detector.Span {
	grouped := make(map[detector.Category][]detector.Span)
	for _, s := range spans {
		grouped[s.Category] = append(grouped[s.Category], s)
	}
	return grouped
}
