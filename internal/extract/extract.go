// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract turns input documents into plain text for the
// redaction pipeline. Redaction operates on the extracted text, not on
// the source document; PDF output keeps the extracted layout, not the
// original formatting.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxPages bounds per-document work; pages beyond it are skipped.
const maxPages = 50

// FromFile extracts text from path based on its extension. Anything
// that is not a PDF is read as UTF-8 plain text.
func FromFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FromPDF(path)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("error reading input file: %w", err)
	}
	return string(data), nil
}

// FromReader spools r to a temporary file and extracts from it. Used for
// uploaded documents, which arrive as streams but the PDF reader needs
// random access. The temporary file is always removed before returning.
func FromReader(r io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "pii-redact-upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("error spooling upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("error spooling upload: %w", err)
	}

	return FromFile(tmp.Name())
}

// FromPDF validates the document structure, then extracts text page by
// page. Extraction works row by row so values keep their reading order;
// form field values are appended because PII routinely lives in
// AcroForm fields rather than the page stream.
func FromPDF(path string) (string, error) {
	// Reject malformed documents before parsing content out of them.
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("invalid PDF document: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if pageCount > maxPages {
		pageCount = maxPages
	}

	var buf bytes.Buffer
	for i := 1; i <= pageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}

	if form := formText(r); form != "" {
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(form)
	}

	text := normalize(buf.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in %s", filepath.Base(path))
	}
	return text, nil
}

// pageText extracts one page row by row, falling back to the plain-text
// walk when row geometry is unavailable.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	kept := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			kept = append(kept, row)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return averageY(kept[i].Content) < averageY(kept[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range kept {
		line := rowText(row.Content)
		if strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

func averageY(elements []pdf.Text) float64 {
	if len(elements) == 0 {
		return 0
	}
	var total float64
	for _, e := range elements {
		total += e.Y
	}
	return total / float64(len(elements))
}

// rowText joins one row's elements left to right, inserting a space
// wherever the horizontal gap exceeds a fraction of the font size.
func rowText(elements []pdf.Text) string {
	sorted := make([]pdf.Text, len(elements))
	copy(sorted, elements)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		buf.WriteString(e.S)
		if i == len(sorted)-1 {
			continue
		}
		gap := sorted[i+1].X - (e.X + e.W)
		fontSize := e.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// formText pulls AcroForm field names and values out of the document
// catalog. A PDF without forms yields the empty string.
func formText(r *pdf.Reader) string {
	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return ""
	}
	fields := root.Key("AcroForm").Key("Fields")
	if fields.IsNull() || fields.Kind() != pdf.Array {
		return ""
	}

	var buf bytes.Buffer
	for i := 0; i < fields.Len(); i++ {
		field := fields.Index(i)
		name, value := fieldNameValue(field)
		if name != "" && value != "" {
			fmt.Fprintf(&buf, "%s: %s\n", name, value)
		}
	}
	return buf.String()
}

func fieldNameValue(field pdf.Value) (string, string) {
	if field.Kind() != pdf.Dict {
		return "", ""
	}

	var name, value string
	if t := field.Key("T"); !t.IsNull() && t.Kind() == pdf.String {
		name = t.Text()
	}
	for _, key := range []string{"V", "DV"} {
		v := field.Key(key)
		if v.IsNull() {
			continue
		}
		switch v.Kind() {
		case pdf.String:
			value = v.Text()
		case pdf.Name:
			value = v.Name()
		}
		if value != "" {
			break
		}
	}
	return name, value
}

// normalize trims blank lines and collapses runs of spaces within each
// line, keeping line breaks so field labels stay next to their values.
func normalize(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
