package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DjordjeVuckovic/context-bench/internal/apperr"
)

func TestValidationError_Error(t *testing.T) {
	inner := errors.New("unexpected end of JSON input")

	tests := []struct {
		name string
		err  *apperr.ValidationError
		want string
	}{
		{name: "message only", err: apperr.NewValidation("candidate has no name"), want: "candidate has no name"},
		{name: "with issues", err: apperr.NewValidation("invalid dataset", "a: no path", "b: no name"), want: "invalid dataset (a: no path; b: no name)"},
		{name: "wrapped", err: apperr.NewValidationWrap("parse candidates JSON", inner), want: "parse candidates JSON: unexpected end of JSON input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	assert.ErrorIs(t, apperr.NewValidationWrap("parse", inner), inner)
	assert.Nil(t, apperr.NewValidation("x").Unwrap())
}

func TestValidationError_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("get report: %w", fmt.Errorf("resolve: %w", apperr.NewValidation("report name must end with .json")))

	var ve *apperr.ValidationError
	require.ErrorAs(t, wrapped, &ve)
	assert.Equal(t, "report name must end with .json", ve.Message)

	plain := fmt.Errorf("publish report: %w", errors.New("connection refused"))
	assert.False(t, errors.As(plain, &ve))
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", apperr.NewNotFound("repo", "repoA"))

	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "repo", nf.Kind)
	assert.Equal(t, "repo repoA not found", nf.Error())
}
