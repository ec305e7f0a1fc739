package librarian

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadmium/romdb"
)

func TestFingerprintIsCanonicalLowercaseHex(t *testing.T) {
	digest := Fingerprint([]byte{0x60, 0x0A})
	assert.Len(t, digest, 40)
	assert.Equal(t, digest, toLower(digest))
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'F' {
			b[i] = c - 'A' + 'a'
		}
	}

	return string(b)
}

func TestClassifyKnownProgram(t *testing.T) {
	rom := []byte{0x60, 0x0A, 0x00, 0xEE}
	digest := Fingerprint(rom)

	db := romdb.New()
	db.Programs[digest] = &romdb.Program{SHA1: digest, Title: "Test ROM", Platforms: []string{"chip-8"}}

	lib := New(db)
	e := lib.Classify("test.ch8", rom)

	require.Equal(t, Known, e.Classification)
	assert.Equal(t, "Test ROM", e.Program.Title)
}

func TestClassifyUnknownFallsBackToInference(t *testing.T) {
	rom := []byte{0xF0, 0x00, 0x12, 0x34, 0x00, 0xEE} // F000 NNNN narrows variants

	lib := New(romdb.New())
	e := lib.Classify("test.ch8", rom)

	assert.Equal(t, Inferred, e.Classification)
	assert.NotEmpty(t, e.PossibleVariants)
}

func TestParseC8BRoundTrip(t *testing.T) {
	variantA := []byte{0x60, 0x01}
	variantB := []byte{0x60, 0x02, 0x00, 0xEE}

	headerLen := 3 + 4 + 2*3
	tableLen := 2 * 5
	offsetA := headerLen + tableLen
	offsetB := offsetA + len(variantA)

	buf := &bytes.Buffer{}
	buf.WriteString("CBF")
	buf.WriteByte(2) // variant count
	binary.Write(buf, binary.LittleEndian, uint16(15))
	buf.WriteByte(2) // palette length
	buf.Write([]byte{0, 0, 0})
	buf.Write([]byte{255, 255, 255})

	writeEntry := func(id byte, offset, length int) {
		buf.WriteByte(id)
		binary.Write(buf, binary.LittleEndian, uint16(offset))
		binary.Write(buf, binary.LittleEndian, uint16(length))
	}
	writeEntry(0, offsetA, len(variantA))
	writeEntry(1, offsetB, len(variantB))

	buf.Write(variantA)
	buf.Write(variantB)

	cart, err := ParseC8B(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(15), cart.ExecutionSpeed)
	assert.Len(t, cart.Palette, 2)
	assert.Equal(t, variantA, cart.Variants[0])
	assert.Equal(t, variantB, cart.Variants[1])
}

func TestParseOctoCartridgeRoundTrip(t *testing.T) {
	rom := []byte{0x60, 0x0A, 0x61, 0x0B, 0x00, 0xEE}
	source := "main: va := 10"

	payload := &bytes.Buffer{}
	payload.WriteString("OCTO")
	binary.Write(payload, binary.BigEndian, uint32(len(rom)))
	payload.Write(rom)
	binary.Write(payload, binary.BigEndian, uint32(len(source)))
	payload.WriteString(source)
	binary.Write(payload, binary.BigEndian, uint32(0))

	bits := unpackBits(payload.Bytes())

	width := 64
	height := (len(bits) + width - 1) / width
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{color.Black, color.White})

	for i, bit := range bits {
		base := img.Pix[i] &^ 1
		img.Pix[i] = base | bit
	}

	gifBuf := &bytes.Buffer{}
	require.NoError(t, gif.EncodeAll(gifBuf, &gif.GIF{Image: []*image.Paletted{img}, Delay: []int{0}}))

	cart, err := ParseOctoCartridge(gifBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, rom, cart.ROM)
	assert.Equal(t, source, cart.Source)
}

func unpackBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}

	return bits
}
