// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"csvflow/cli/internal/result"
)

func TestWriteXLSX(t *testing.T) {
	p, err := result.Decode([]byte(`{"rows":[{"name":"Alice","age":30,"active":true},{"name":"Bob","age":null}],"columns":["name","age","active"],"count":2}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, p))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "age", "active"}, rows[0])
	assert.Equal(t, []string{"Alice", "30", "TRUE"}, rows[1])
	assert.Equal(t, "Bob", rows[2][0])
}

func TestWriteXLSXHeaderFromFirstRow(t *testing.T) {
	p, err := result.Decode([]byte(`{"rows":[{"z":"1","a":"2"}],"count":1}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, p))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, rows[0])
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestWriteXLSXWithoutRows(t *testing.T) {
	p, err := result.Decode([]byte(`{"aggregation":{"a":1},"total_rows":1}`))
	require.NoError(t, err)

	err = WriteXLSX(&bytes.Buffer{}, p)
	assert.True(t, errors.Is(err, ErrNoRows))
}
