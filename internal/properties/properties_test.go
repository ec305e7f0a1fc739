package properties

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleProperties() *Properties {
	return New("CHIP-8-GENERIC").
		Define(Property{Name: "VF Reset", Value: Value{Kind: KindBool, Bool: true}}).
		Define(Property{Name: "Tickrate", Value: Value{Kind: KindInt, Int: 15}}).
		Define(Property{Name: "Start Address", Access: ReadOnly, Value: Value{Kind: KindInt, Int: 0x200}})
}

func TestJSONKeyNormalisation(t *testing.T) {
	require.Equal(t, "vfReset", jsonKey("VF Reset"))
	require.Equal(t, "startAddress", jsonKey("Start Address"))
}

func TestEqualityIsStructural(t *testing.T) {
	a := sampleProperties()
	b := sampleProperties()

	require.True(t, a.Equal(b))

	require.NoError(t, b.SetInt("Tickrate", 30))
	require.False(t, a.Equal(b))
}

func TestSetRejectsReadOnly(t *testing.T) {
	p := sampleProperties()
	err := p.SetInt("Start Address", 0x600)
	require.Error(t, err)
}

func TestSetRejectsKindMismatch(t *testing.T) {
	p := sampleProperties()
	err := p.Set("Tickrate", Value{Kind: KindBool, Bool: true})
	require.Error(t, err)
}

func TestDiffRoundTrip(t *testing.T) {
	p := sampleProperties()
	q := sampleProperties()
	require.NoError(t, q.SetInt("Tickrate", 30))
	require.NoError(t, q.SetBool("VF Reset", false))

	diff := Diff(p, q)
	require.Len(t, diff, 2)

	applied, err := ApplyDiff(p, diff)
	require.NoError(t, err)
	require.True(t, applied.Equal(q))
}

func TestDiffEmptyWhenEqual(t *testing.T) {
	p := sampleProperties()
	q := sampleProperties()
	require.Empty(t, Diff(p, q))
}

func TestCloneIsIndependent(t *testing.T) {
	p := sampleProperties()
	clone := p.Clone()
	require.NoError(t, clone.SetInt("Tickrate", 99))
	require.NotEqual(t, p.Int("Tickrate"), clone.Int("Tickrate"))
}

func TestMarshalJSONValuesOnly(t *testing.T) {
	p := sampleProperties()
	data, err := p.MarshalJSON()
	require.NoError(t, err)
	require.Contains(t, string(data), `"tickrate":15`)
	require.NotContains(t, string(data), "Description")
}
