package compat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCheckOS passes on every platform the test suite itself runs on.
func TestCheckOS(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckOS(context.Background()))
	require.NotEmpty(t, OSName())
}
