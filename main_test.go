package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunDemo(t *testing.T) {
	require.NoError(t, run(t.TempDir(), 5, 5))
}
