// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinnerSilentWhenRedirected(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stderr.log"))
	require.NoError(t, err)
	defer f.Close()

	stop := startInlineSpinner(f, "Processing CSV file")
	time.Sleep(3 * spinnerInterval)
	stop()
	stop()

	st, err := f.Stat()
	require.NoError(t, err)
	assert.Zero(t, st.Size())
}
