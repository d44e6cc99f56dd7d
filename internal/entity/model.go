// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package entity wraps a pretrained named-entity recognition model and
// turns its token-level output into character-exact candidate spans.
package entity

// Label is the entity class a model assigns to a token.
type Label string

const (
	LabelPerson   Label = "PERSON"
	LabelLocation Label = "LOCATION"
)

// Token is one model output piece: a label plus character offsets into the
// analyzed text. Models that tokenize into sub-word pieces emit one Token
// per piece; the detector reconciles pieces back into whole spans.
type Token struct {
	Label Label
	Start int
	End   int
}

// Model is the capability the entity detector needs from an NER backend.
// Implementations are loaded once at process start and must be safe for
// concurrent read-only use: Predict must not mutate model state.
type Model interface {
	Predict(text string) ([]Token, error)
}
