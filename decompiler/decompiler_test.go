package decompiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadmium/chip8"
)

func hasVariant(vs []chip8.Variant, want chip8.Variant) bool {
	for _, v := range vs {
		if v == want {
			return true
		}
	}

	return false
}

func TestAnalyzeClassicProgramKeepsAllVariantsPossible(t *testing.T) {
	rom := []byte{
		0x60, 0x0A, // 0200: LD V0, 0x0A
		0xA2, 0x10, // 0202: LD I, 0x210
		0xD0, 0x15, // 0204: DRW V0,V1,5
		0x12, 0x04, // 0206: JP 0x204 (back to the DRW)
	}

	r := Analyze(rom, 0x200, 0x200)

	assert.True(t, hasVariant(r.PossibleVariants, chip8.VariantCHIP8))
	assert.True(t, hasVariant(r.PossibleVariants, chip8.VariantXOCHIP))
}

func TestAnalyzeF000NarrowsToExtendedVariants(t *testing.T) {
	rom := []byte{
		0xF0, 0x00, 0x12, 0x34, // 0200: F000 NNNN
		0x00, 0xEE, // 0204: RET
	}

	r := Analyze(rom, 0x200, 0x200)

	require.NotEmpty(t, r.PossibleVariants)
	assert.True(t, hasVariant(r.PossibleVariants, chip8.VariantXOCHIP))
	assert.True(t, hasVariant(r.PossibleVariants, chip8.VariantMegaChip))
	assert.False(t, hasVariant(r.PossibleVariants, chip8.VariantCHIP8))
	assert.False(t, hasVariant(r.PossibleVariants, chip8.VariantSCHIP11))
}

func TestAnalyzeSeedsCallAndSpriteLabels(t *testing.T) {
	rom := []byte{
		0x22, 0x06, // 0200: CALL 0x206
		0x12, 0x00, // 0202: JP 0x200
		0x00, 0x00, // 0204: pad
		0xA3, 0x00, // 0206: LD I, 0x300
		0x60, 0x00,
		0x61, 0x00,
		0xD0, 0x15, // 020C: DRW V0,V1,5
		0x00, 0xEE, // 020E: RET
	}

	r := Analyze(rom, 0x200, 0x200)

	sub, ok := r.Labels[0x206]
	require.True(t, ok)
	assert.Equal(t, "sub_0206", sub.Name())

	sprite, ok := r.Labels[0x300]
	require.True(t, ok)
	assert.Equal(t, "sprite_0300", sprite.Name())
}

func TestLabelNamePrecedence(t *testing.T) {
	l := Label{Address: 0x220, Usage: UsageJump | UsageWrite}
	assert.Equal(t, "label_0220", l.Name())

	l2 := Label{Address: 0x220, Usage: UsageCall | UsageJump}
	assert.Equal(t, "sub_0220", l2.Name())
}
