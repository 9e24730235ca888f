package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_ResolvesProcessToken(t *testing.T) {
	ctx := context.Background()
	catalog := catalogWithBOM()
	registry := newTestRegistry(&fakeStore{}, catalog)
	proc, err := registry.Create(ctx, "Build Widget", 100)
	require.NoError(t, err)

	scanner := NewBarcodeScanner(registry, catalog)

	match, err := scanner.Scan(ctx, "PROC:"+proc.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, proc.ID, match.ProcessID)
	assert.Equal(t, "Build Widget", match.ProcessName)
	assert.Equal(t, int64(100), match.OutputPartID)
	assert.Equal(t, "Widget", match.OutputPartName)
	assert.Equal(t, "/api/processes/"+proc.ID+"/run", match.RunURL)
}

func TestScan_UnrecognizedTokensAreNotErrors(t *testing.T) {
	ctx := context.Background()
	catalog := catalogWithBOM()
	registry := newTestRegistry(&fakeStore{}, catalog)
	scanner := NewBarcodeScanner(registry, catalog)

	for _, token := range []string{
		"",
		"JUNK",
		"PROC:",
		"PROC:   ",
		"PROC:unknown-id",
		"proc:lowercase-prefix",
	} {
		match, err := scanner.Scan(ctx, token)
		require.NoError(t, err, "token %q", token)
		assert.Nil(t, match, "token %q", token)
	}
}

func TestScan_OutputPartGone(t *testing.T) {
	ctx := context.Background()
	catalog := catalogWithBOM()
	registry := newTestRegistry(&fakeStore{}, catalog)
	proc, err := registry.Create(ctx, "Build Widget", 100)
	require.NoError(t, err)

	// Part removed from the catalog after the process was created.
	delete(catalog.parts, 100)

	scanner := NewBarcodeScanner(registry, catalog)
	match, err := scanner.Scan(ctx, "PROC:"+proc.ID)
	require.NoError(t, err)
	assert.Nil(t, match)
}
