// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pii-redact/internal/detector"
	"pii-redact/internal/observability"

	"github.com/sethvargo/go-retry"
)

// Config holds the settings for the Gemini-style model client. Endpoint
// and model default to the public generateContent API; tests point
// Endpoint at a local server.
type Config struct {
	Endpoint   string        // base URL, e.g. https://generativelanguage.googleapis.com/v1beta
	Model      string        // e.g. gemini-1.5-flash
	APIKey     string        // required
	Timeout    time.Duration // per-attempt timeout
	MaxRetries uint64        // transport retries after the first attempt
	HTTPClient *http.Client  // optional; a default client is built from Timeout
}

// DefaultConfig returns client settings matching the public API.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "https://generativelanguage.googleapis.com/v1beta",
		Model:      "gemini-1.5-flash",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// Client reviews spans via an HTTP generateContent endpoint. It is
// stateless per request and safe for concurrent use.
type Client struct {
	cfg      Config
	http     *http.Client
	observer *observability.Observer
}

// NewClient builds a review client. The API key is mandatory: the review
// stage has no degraded mode.
func NewClient(cfg Config, observer *observability.Observer) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	defaults := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{cfg: cfg, http: httpClient, observer: observer}, nil
}

// generateContent wire format.
type genaiPart struct {
	Text string `json:"text"`
}

type genaiContent struct {
	Parts []genaiPart `json:"parts"`
}

type genaiRequest struct {
	Contents []genaiContent `json:"contents"`
}

type genaiResponse struct {
	Candidates []struct {
		Content genaiContent `json:"content"`
	} `json:"candidates"`
}

// Reply schema the prompt instructs the model to produce.
type modelReply struct {
	Verdicts []struct {
		Index  int    `json:"index"`
		Accept bool   `json:"accept"`
		Reason string `json:"reason"`
	} `json:"verdicts"`
	Discovered []struct {
		Category string `json:"category"`
		Value    string `json:"value"`
		Start    int    `json:"start"`
		End      int    `json:"end"`
		Reason   string `json:"reason"`
	} `json:"discovered"`
	Explanation string `json:"explanation"`
}

// Review implements Validator. Transient transport errors are retried
// with exponential backoff up to MaxRetries; a reply that cannot be
// interpreted is terminal and fails the whole request.
func (c *Client) Review(ctx context.Context, text string, candidates []detector.Span) (*Review, error) {
	finish := c.observer.StartTiming("llm", "review")

	raw, err := c.generate(ctx, buildPrompt(text, candidates))
	if err != nil {
		finish(false, map[string]any{"candidates": len(candidates)})
		return nil, err
	}

	review, err := c.interpret(text, candidates, raw)
	if err != nil {
		finish(false, map[string]any{"candidates": len(candidates)})
		return nil, err
	}

	finish(true, map[string]any{
		"candidates": len(candidates),
		"confirmed":  len(review.Spans),
		"rejected":   len(review.Rejected),
	})
	return review, nil
}

// generate performs the HTTP call with retry and returns the model's raw
// text reply.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(genaiRequest{
		Contents: []genaiContent{{Parts: []genaiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode model request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Model, url.QueryEscape(c.cfg.APIKey))

	backoff := retry.WithMaxRetries(c.cfg.MaxRetries,
		retry.WithCappedDuration(8*time.Second,
			retry.NewExponential(500*time.Millisecond)))

	var reply string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			// Connection refused, DNS failure, attempt timeout: transient.
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return retry.RetryableError(err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			// Parsed below.
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("model service returned status %d", resp.StatusCode))
		default:
			return fmt.Errorf("model service returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
		}

		var envelope genaiResponse
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
		}
		if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("%w: empty candidate list", ErrUnparsableResponse)
		}

		var b strings.Builder
		for _, part := range envelope.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
		reply = b.String()
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("model review canceled: %w", ctx.Err())
		}
		if errors.Is(err, ErrUnparsableResponse) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return reply, nil
}

// interpret parses the model's reply and assembles the final span set.
func (c *Client) interpret(text string, candidates []detector.Span, raw string) (*Review, error) {
	var reply modelReply
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}

	// Candidates default to accepted: the model already saw them, and an
	// omitted verdict means it had nothing to object to.
	accept := make(map[int]bool, len(candidates))
	reason := make(map[int]string, len(candidates))
	for i := range candidates {
		accept[i] = true
	}
	for _, v := range reply.Verdicts {
		if v.Index < 0 || v.Index >= len(candidates) {
			continue
		}
		accept[v.Index] = v.Accept
		reason[v.Index] = v.Reason
	}

	review := &Review{Explanation: strings.TrimSpace(reply.Explanation)}
	for i, s := range candidates {
		if !accept[i] {
			review.Rejected = append(review.Rejected, Rejection{Span: s, Reason: reason[i]})
			continue
		}
		s.Confirmed = true
		s.Reason = reason[i]
		review.Spans = append(review.Spans, s)
	}

	// Discovered spans must satisfy the same invariant as every span:
	// value == text[start:end]. Offsets that fail are re-anchored to the
	// first exact occurrence of the value; spans that still fail are
	// discarded rather than trusted.
	for _, d := range reply.Discovered {
		if d.Value == "" {
			continue
		}
		start, end, err := locate(text, d.Value, d.Start, d.End)
		if err != nil {
			c.observer.Log(observability.Event{
				Component: "llm",
				Operation: "discard_discovered",
				Success:   false,
				Error:     err.Error(),
			})
			continue
		}

		span := detector.Span{
			Category:  mapCategory(d.Category),
			Value:     d.Value,
			Start:     start,
			End:       end,
			Source:    detector.SourceLLMDiscovered,
			Confirmed: true,
			Reason:    d.Reason,
		}
		if overlapsAny(span, review.Spans) {
			continue
		}
		review.Spans = append(review.Spans, span)
	}

	detector.SortSpans(review.Spans)
	return review, nil
}

func overlapsAny(s detector.Span, set []detector.Span) bool {
	for _, other := range set {
		if s.Overlaps(other) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
