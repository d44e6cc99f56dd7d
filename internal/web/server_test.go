// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pii-redact/internal/detector"
	"pii-redact/internal/entity"
	"pii-redact/internal/llm"
	"pii-redact/internal/pipeline"
	"pii-redact/internal/redact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator confirms all candidates, or fails with err.
type stubValidator struct {
	err error
}

func (v *stubValidator) Review(ctx context.Context, text string, candidates []detector.Span) (*llm.Review, error) {
	if v.err != nil {
		return nil, v.err
	}
	review := &llm.Review{Explanation: "ok"}
	for _, s := range candidates {
		s.Confirmed = true
		review.Spans = append(review.Spans, s)
	}
	return review, nil
}

func newTestServer(t *testing.T, v llm.Validator) *Server {
	t.Helper()

	p, err := pipeline.New(pipeline.Config{
		Entities:  entity.NewDetector(entity.NewLexiconModel()),
		Validator: v,
	})
	require.NoError(t, err)

	enabled := make(map[detector.Category]bool)
	for _, c := range detector.AllCategories() {
		enabled[c] = true
	}
	return NewServer(p, Options{
		Defaults: redact.Settings{Categories: enabled, Style: redact.StyleLabels},
	})
}

func postJSON(t *testing.T, s *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestRedactTextEndpoint(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	w := postJSON(t, s, "/api/redact/text", redactRequest{
		Text: "mail jane@example.com today",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp redactResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mail jane@example.com today", resp.Original)
	assert.Equal(t, "mail [EMAIL_1] today", resp.Redacted)
	assert.Equal(t, 1, resp.Statistics[string(detector.CategoryEmail)])
	assert.NotEmpty(t, resp.RequestID)

	spans := resp.Detections[string(detector.CategoryEmail)]
	require.Len(t, spans, 1)
	assert.Equal(t, "jane@example.com", spans[0].Value)
	assert.Equal(t, 5, spans[0].Start)
	assert.Equal(t, 21, spans[0].End)
}

func TestRedactTextWithRequestSettings(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	settings := &redact.Settings{
		Categories:  map[detector.Category]bool{detector.CategoryEmail: true},
		Style:       redact.StyleCustom,
		CustomLabel: "[GONE]",
	}
	w := postJSON(t, s, "/api/redact/text", redactRequest{
		Text:     "mail jane@example.com or call (555) 123-4567",
		Settings: settings,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp redactResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mail [GONE] or call (555) 123-4567", resp.Redacted)
}

func TestRedactTextRejectsEmptyBody(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	w := postJSON(t, s, "/api/redact/text", redactRequest{Text: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestRedactTextRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	req := httptest.NewRequest(http.MethodPost, "/api/redact/text", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedactTextMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	req := httptest.NewRequest(http.MethodGet, "/api/redact/text", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRedactTextValidatorOutage(t *testing.T) {
	s := newTestServer(t, &stubValidator{err: llm.ErrServiceUnavailable})

	w := postJSON(t, s, "/api/redact/text", redactRequest{Text: "mail jane@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRedactDocumentEndpoint(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("document", "note.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("ssn 123-45-6789 on record"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/redact/document", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp redactResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ssn [SSN_1] on record", resp.Redacted)
}

func TestRedactDocumentRequiresFile(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("settings", "{}"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/redact/document", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubValidator{})

	// Generate one request so counters exist.
	postJSON(t, s, "/api/redact/text", redactRequest{Text: "mail jane@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "redact_http_requests_total")
}

func TestCapacityLimit(t *testing.T) {
	block := make(chan struct{})
	release := make(chan struct{})

	p, err := pipeline.New(pipeline.Config{
		Entities: entity.NewDetector(entity.NewLexiconModel()),
		Validator: validatorFunc(func(ctx context.Context, text string, candidates []detector.Span) (*llm.Review, error) {
			close(block)
			<-release
			return &llm.Review{}, nil
		}),
	})
	require.NoError(t, err)

	enabled := make(map[detector.Category]bool)
	for _, c := range detector.AllCategories() {
		enabled[c] = true
	}
	s := NewServer(p, Options{
		MaxConcurrent: 1,
		Defaults:      redact.Settings{Categories: enabled, Style: redact.StyleLabels},
	})

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- postJSON(t, s, "/api/redact/text", redactRequest{Text: "mail a@example.com"})
	}()

	<-block // first request holds the only slot

	w := postJSON(t, s, "/api/redact/text", redactRequest{Text: "mail b@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)
}

// validatorFunc adapts a function to the Validator interface.
type validatorFunc func(ctx context.Context, text string, candidates []detector.Span) (*llm.Review, error)

func (f validatorFunc) Review(ctx context.Context, text string, candidates []detector.Span) (*llm.Review, error) {
	return f(ctx, text, candidates)
}
