package librarian

import (
	"bytes"
	"encoding/binary"
	"image/gif"

	"github.com/pkg/errors"
)

// OctoCartridge is the payload steganographically embedded in an Octo
// .gif cartridge: the compiled ROM cadmium can run, the Octo source it
// was assembled from, and a JSON options block (spec.md §4.9).
type OctoCartridge struct {
	ROM     []byte
	Source  string
	Options []byte
}

var octoMagic = [4]byte{'O', 'C', 'T', 'O'}

// ParseOctoCartridge extracts an OctoCartridge from the least-significant
// bit of every palette index in an Octo .gif cartridge. Octo writes its
// payload into the low bit of each pixel's palette index, in raster
// order, so the picture itself still displays normally while carrying
// the hidden bitstream; this mirrors that approach without depending on
// Octo's own tooling.
func ParseOctoCartridge(data []byte) (*OctoCartridge, error) {
	img, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "librarian: not a gif")
	}

	if len(img.Image) == 0 {
		return nil, errors.New("librarian: gif has no frames")
	}

	frame := img.Image[0]
	bits := extractLSBBits(frame.Pix)

	payload := packBits(bits)

	if len(payload) < 12 || !bytes.Equal(payload[0:4], octoMagic[:]) {
		return nil, errors.New("librarian: gif does not contain an Octo cartridge signature")
	}

	romLen := binary.BigEndian.Uint32(payload[4:8])
	offset := 8

	if offset+int(romLen) > len(payload) {
		return nil, errors.New("librarian: Octo cartridge rom length exceeds embedded payload")
	}

	rom := payload[offset : offset+int(romLen)]
	offset += int(romLen)

	if offset+4 > len(payload) {
		return nil, errors.New("librarian: Octo cartridge truncated before source length")
	}

	srcLen := binary.BigEndian.Uint32(payload[offset : offset+4])
	offset += 4

	if offset+int(srcLen) > len(payload) {
		return nil, errors.New("librarian: Octo cartridge source length exceeds embedded payload")
	}

	source := string(payload[offset : offset+int(srcLen)])
	offset += int(srcLen)

	var options []byte
	if offset+4 <= len(payload) {
		optLen := binary.BigEndian.Uint32(payload[offset : offset+4])
		offset += 4

		if offset+int(optLen) <= len(payload) {
			options = payload[offset : offset+int(optLen)]
		}
	}

	return &OctoCartridge{ROM: rom, Source: source, Options: options}, nil
}

// extractLSBBits pulls the low bit out of every palette-index byte, in
// raster order.
func extractLSBBits(pix []byte) []byte {
	bits := make([]byte, len(pix))
	for i, b := range pix {
		bits[i] = b & 1
	}

	return bits
}

// packBits packs a stream of 0/1 bytes into 8-bit bytes, most
// significant bit first.
func packBits(bits []byte) []byte {
	out := make([]byte, len(bits)/8)

	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | bits[i*8+j]
		}

		out[i] = b
	}

	return out
}

// C8BCartridge is a parsed C8B multi-variant bundle (spec.md §4.9): one
// file offering the same program compiled for several platforms, plus an
// execution speed and an embedded palette.
type C8BCartridge struct {
	ExecutionSpeed uint16
	Palette        [][3]byte
	Variants       map[byte][]byte // variant_id -> rom bytes
}

const c8bMagic = "CBF"

// ParseC8B parses a C8B bundle: little-endian header
// {magic "CBF", variant_count u8, execution_speed u16, palette_length u8,
// palette entries [r,g,b]...}, followed by variant_count entries of
// {variant_id u8, offset u16, length u16} (spec.md §4.9).
func ParseC8B(data []byte) (*C8BCartridge, error) {
	if len(data) < len(c8bMagic)+4 || string(data[:3]) != c8bMagic {
		return nil, errors.New("librarian: not a C8B cartridge (bad magic)")
	}

	r := data[3:]

	variantCount := int(r[0])
	executionSpeed := binary.LittleEndian.Uint16(r[1:3])
	paletteLength := int(r[3])
	r = r[4:]

	if len(r) < paletteLength*3 {
		return nil, errors.New("librarian: C8B palette truncated")
	}

	palette := make([][3]byte, paletteLength)
	for i := 0; i < paletteLength; i++ {
		copy(palette[i][:], r[i*3:i*3+3])
	}

	r = r[paletteLength*3:]

	if len(r) < variantCount*5 {
		return nil, errors.New("librarian: C8B variant table truncated")
	}

	type tableEntry struct {
		id     byte
		offset uint16
		length uint16
	}

	table := make([]tableEntry, variantCount)

	for i := 0; i < variantCount; i++ {
		e := r[i*5 : i*5+5]
		table[i] = tableEntry{id: e[0], offset: binary.LittleEndian.Uint16(e[1:3]), length: binary.LittleEndian.Uint16(e[3:5])}
	}

	variants := make(map[byte][]byte, variantCount)

	for _, e := range table {
		if int(e.offset)+int(e.length) > len(data) {
			return nil, errors.Errorf("librarian: C8B variant %d data out of range", e.id)
		}

		variants[e.id] = data[e.offset : int(e.offset)+int(e.length)]
	}

	return &C8BCartridge{ExecutionSpeed: executionSpeed, Palette: palette, Variants: variants}, nil
}
