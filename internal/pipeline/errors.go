// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
)

// Input errors are rejected before the pipeline runs and map to
// client-side validation failures at the API boundary.
var (
	ErrEmptyText    = errors.New("input text is empty")
	ErrTextTooLarge = errors.New("input text exceeds the configured size limit")
)

// Stage names used in failure messages, so callers always learn which
// part of the pipeline gave out.
const (
	StageDetect   = "detect"
	StageValidate = "validate"
	StageRender   = "render"
)

// StageError labels a failure with the pipeline stage that produced it.
// Detect and render failures indicate a service or programming problem;
// validate failures mean the language-model service could not deliver an
// authoritative answer. There is no partial-success mode in any case.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err is a client-side validation failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyText) || errors.Is(err, ErrTextTooLarge)
}
