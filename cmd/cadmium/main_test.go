package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cadmium/core"
)

func TestPresetPropertiesIsCaseInsensitive(t *testing.T) {
	r := core.NewRegistry()

	props, ok := presetProperties(r, "chip-8")
	assert.True(t, ok)
	assert.Equal(t, "CHIP-8-GENERIC", props.Class)
}

func TestPresetPropertiesReportsUnknownName(t *testing.T) {
	r := core.NewRegistry()

	_, ok := presetProperties(r, "does-not-exist")
	assert.False(t, ok)
}

func TestBlockForCoversAllQuadrantCombinations(t *testing.T) {
	assert.Equal(t, '█', blockFor(true, true))
	assert.Equal(t, '▀', blockFor(true, false))
	assert.Equal(t, '▄', blockFor(false, true))
	assert.Equal(t, ' ', blockFor(false, false))
}

func TestOpenDatabaseFallsBackWithNoPaths(t *testing.T) {
	db := openDatabase("", "")
	_, ok := db.Platform("chip-8")
	assert.True(t, ok)
}
