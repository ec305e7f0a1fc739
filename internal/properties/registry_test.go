package properties

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryCreateUnknownClassFails(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Create(nil, New("NO-SUCH-CLASS"))
	require.Error(t, err)
}

func TestRegistryFuzzyClassLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("CHIP-8-GENERIC", func(host interface{}, p *Properties) (string, interface{}, error) {
		return "CHIP-8", "core", nil
	})

	variant, core, err := r.Create(nil, New("chip8 generic"))
	require.NoError(t, err)
	require.Equal(t, "CHIP-8", variant)
	require.Equal(t, "core", core)
}

func TestRegistryPresetOrderStable(t *testing.T) {
	r := NewRegistry()
	r.Register("CHIP-8-GENERIC", nil)
	r.Register("SCHIP-1.1", nil)

	require.NoError(t, r.AddPreset("CHIP-8-GENERIC", Preset{Name: "CHIP-8", Properties: New("CHIP-8-GENERIC")}))
	require.NoError(t, r.AddPreset("SCHIP-1.1", Preset{Name: "SUPER-CHIP 1.1", Properties: New("SCHIP-1.1")}))
	require.NoError(t, r.AddPreset("CHIP-8-GENERIC", Preset{Name: "CHIP-8 (modern)", Properties: New("CHIP-8-GENERIC")}))

	names := make([]string, 0)
	for _, p := range r.Presets() {
		names = append(names, p.Name)
	}

	require.Equal(t, []string{"CHIP-8", "CHIP-8 (modern)", "SUPER-CHIP 1.1"}, names)
}

func TestPropertiesForExtension(t *testing.T) {
	r := NewRegistry()
	r.Register("CHIP-8-GENERIC", nil)
	require.NoError(t, r.AddPreset("CHIP-8-GENERIC", Preset{
		Name:              "CHIP-8",
		DefaultExtensions: []string{".ch8"},
		Properties:        New("CHIP-8-GENERIC"),
	}))

	p, ok := r.PropertiesForExtension("CH8")
	require.True(t, ok)
	require.Equal(t, "CHIP-8-GENERIC", p.Class)

	_, ok = r.PropertiesForExtension("xyz")
	require.False(t, ok)
}

func TestPresetForProperties(t *testing.T) {
	r := NewRegistry()
	r.Register("CHIP-8-GENERIC", nil)
	template := New("CHIP-8-GENERIC").Define(Property{Name: "Tickrate", Value: Value{Kind: KindInt, Int: 15}})
	require.NoError(t, r.AddPreset("CHIP-8-GENERIC", Preset{Name: "CHIP-8", Properties: template}))

	match := New("CHIP-8-GENERIC").Define(Property{Name: "Tickrate", Value: Value{Kind: KindInt, Int: 15}})
	name, ok := r.PresetForProperties(match)
	require.True(t, ok)
	require.Equal(t, "CHIP-8", name)
}
