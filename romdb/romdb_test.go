package romdb

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadmium/chip8"
)

func TestFallbackCoversEveryVariant(t *testing.T) {
	db := Fallback()

	for _, name := range []string{"chip-8", "chip-48", "schip-1.0", "schip-1.1", "schip-modern", "xo-chip", "mega-chip", "chip-8x"} {
		p, ok := db.Platform(name)
		require.True(t, ok, "missing platform %q", name)
		assert.NotEmpty(t, p.VariantName)
	}
}

func TestResolveQuirksMemberwiseOverride(t *testing.T) {
	db := Fallback()
	platform, ok := db.Platform("schip-1.1")
	require.True(t, ok)

	trueVal := true
	program := &Program{
		SHA1: "abc123",
		QuirkyPlatforms: map[string]QuirkOverrides{
			"schip-1.1": {WrapSprites: &trueVal},
		},
	}

	q := ResolveQuirks(platform, program)

	base := chip8.QuirksFor(chip8.VariantSCHIP11)
	assert.True(t, q.WrapSprites, "override should have flipped WrapSprites to true")
	assert.Equal(t, base.IUnchanged, q.IUnchanged, "non-overridden fields must carry the platform default")
}

func TestResolveQuirksNoProgramUsesPlatformDefault(t *testing.T) {
	db := Fallback()
	platform, ok := db.Platform("chip-8")
	require.True(t, ok)

	q := ResolveQuirks(platform, nil)
	assert.Equal(t, chip8.QuirksFor(chip8.VariantCHIP8), q)
}

func TestSaveAndLoadRoundTripsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	platformsPath := filepath.Join(dir, "platforms.json")
	programsPath := filepath.Join(dir, "programs.json")

	db := New()
	db.Platforms["chip-8"] = &Platform{
		Name:        "chip-8",
		Variant:     chip8.VariantCHIP8,
		VariantName: "CHIP-8",
		Unknown:     map[string]json.RawMessage{"future_field": json.RawMessage(`"kept"`)},
	}
	db.Programs["aa"] = &Program{
		SHA1:      "aa",
		Title:     "Test Program",
		Platforms: []string{"chip-8"},
		Unknown:   map[string]json.RawMessage{"future_program_field": json.RawMessage(`42`)},
	}

	require.NoError(t, db.Save(platformsPath, programsPath))

	loaded, err := Load(platformsPath, programsPath)
	require.NoError(t, err)

	p, ok := loaded.Platform("chip-8")
	require.True(t, ok)
	require.Contains(t, p.Unknown, "future_field")

	prog, ok := loaded.Lookup("aa")
	require.True(t, ok)
	require.Contains(t, prog.Unknown, "future_program_field")
}
