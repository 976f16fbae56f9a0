package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, Write(path, []string{"BTC", "ETH"}))

	var got []string
	require.NoError(t, Read(path, &got))
	assert.Equal(t, []string{"BTC", "ETH"}, got)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	var v []string
	err := Read(filepath.Join(dir, "missing.json"), &v)
	assert.True(t, IsNotExist(err))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.True(t, errors.Is(Read(empty, &v), ErrEmpty))

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))
	err = Read(corrupt, &v)
	require.Error(t, err)
	assert.False(t, IsNotExist(err))
}
