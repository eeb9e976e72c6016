package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFacilities_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facilities.json")
	data := `[
		{"place_id":"p1","name":"Acme Gym","website":"https://acmegym.mt"},
		{"place_id":"p2","name":"Iron Works"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	facilities, err := loadFacilities(path, "", "")
	require.NoError(t, err)
	require.Len(t, facilities, 2)
	assert.Equal(t, "Acme Gym", facilities[0].Name)
	assert.Equal(t, "https://acmegym.mt", facilities[0].Website)
	assert.Equal(t, "p2", facilities[1].PlaceID)
}

func TestLoadFacilities_FileMissing(t *testing.T) {
	_, err := loadFacilities(filepath.Join(t.TempDir(), "nope.json"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read facilities file")
}

func TestLoadFacilities_FileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := loadFacilities(path, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse facilities file")
}

func TestLoadFacilities_SingleRecord(t *testing.T) {
	facilities, err := loadFacilities("", "Acme Gym", "https://acmegym.mt")
	require.NoError(t, err)
	require.Len(t, facilities, 1)
	assert.Equal(t, "Acme Gym", facilities[0].Name)
	assert.Equal(t, "https://acmegym.mt", facilities[0].Website)
}

func TestLoadFacilities_Empty(t *testing.T) {
	facilities, err := loadFacilities("", "", "")
	require.NoError(t, err)
	assert.Empty(t, facilities)
}
