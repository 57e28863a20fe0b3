package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_IsMatchesByCode(t *testing.T) {
	err := ErrNotFound.WithDetails("Job posting not found.")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
}

func TestAPIError_IsMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading job: %w", ErrNotFound.WithDetails("gone"))

	assert.ErrorIs(t, err, ErrNotFound)

	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "gone", apiErr.Details)
}

func TestAPIError_WithDetailsDoesNotMutateSentinel(t *testing.T) {
	detailed := ErrConflict.WithDetails("duplicate provider id")

	assert.Equal(t, "duplicate provider id", detailed.Details)
	assert.Nil(t, ErrConflict.Details, "sentinels must stay detail-free")
	assert.NotSame(t, ErrConflict, detailed)
}

func TestIsAPIError_PlainErrorsAreNotAPIErrors(t *testing.T) {
	_, ok := IsAPIError(errors.New("disk full"))
	assert.False(t, ok)
}
