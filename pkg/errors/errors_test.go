/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeInvalidGroupCount, "group count must be 1, 2, or 3"),
			want: "[INVALID_GROUP_COUNT] group count must be 1, 2, or 3",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeInternal, "solve failed", stderrors.New("boom")),
			want: "[INTERNAL] solve failed: boom",
		},
		{
			name: "formatted",
			err:  Newf(ErrCodeUnknownForageIngredient, "forage ingredient %q not in library", "Oat hay"),
			want: `[UNKNOWN_FORAGE_INGREDIENT] forage ingredient "Oat hay" not in library`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInfeasibleModel, "no feasible point", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeUnboundedModel, CodeOf(New(ErrCodeUnboundedModel, "x")))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))

	// Code survives wrapping with %w.
	wrapped := fmt.Errorf("group 1: %w", New(ErrCodeMissingCriterion, "no DIM"))
	assert.Equal(t, ErrCodeMissingCriterion, CodeOf(wrapped))
}

func TestIsCode(t *testing.T) {
	err := NewWithContext(ErrCodeIngredientNotInLibrary, "missing price", map[string]any{"ingredient": "Corn silage"})

	assert.True(t, IsCode(err, ErrCodeIngredientNotInLibrary))
	assert.False(t, IsCode(err, ErrCodeInvalidConfig))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeInternal))
}
