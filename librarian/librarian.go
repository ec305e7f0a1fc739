// Package librarian walks a ROM collection, fingerprints each file by
// SHA-1, and classifies it against the rom database: a known digest
// resolves straight to variant + properties, an unknown-but-parseable
// binary falls back to decompiler variant inference, and anything else
// is reported unknown (spec.md §4.8).
package librarian

import (
	"crypto/sha1"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"cadmium/chip8"
	"cadmium/decompiler"
	"cadmium/romdb"
)

// Classification is the librarian's verdict for one file.
type Classification int

const (
	// Known means the file's SHA-1 digest matched an entry in the rom
	// database.
	Known Classification = iota
	// Inferred means the digest was unknown but the decompiler's variant
	// inference narrowed down a plausible set of dialects.
	Inferred
	// Unknown means neither the database nor inference could say
	// anything useful about the file.
	Unknown
)

func (c Classification) String() string {
	switch c {
	case Known:
		return "known"
	case Inferred:
		return "inferred"
	default:
		return "unknown"
	}
}

// Entry is one catalogued file.
type Entry struct {
	Path           string
	SHA1           string // canonical lowercase 40-hex, spec.md §4.9
	Size           int
	Classification Classification

	// Program is set when Classification == Known.
	Program *romdb.Program

	// PossibleVariants is set when Classification == Inferred.
	PossibleVariants []chip8.Variant
}

// Librarian classifies ROM files against a rom database.
type Librarian struct {
	DB *romdb.Database
}

// New returns a Librarian backed by db.
func New(db *romdb.Database) *Librarian {
	return &Librarian{DB: db}
}

// Fingerprint computes the canonical lowercase 40-hex SHA-1 digest of
// data (spec.md §4.9).
func Fingerprint(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Classify fingerprints and classifies a single in-memory binary.
func (l *Librarian) Classify(name string, data []byte) Entry {
	digest := Fingerprint(data)

	e := Entry{Path: name, SHA1: digest, Size: len(data)}

	if l.DB != nil {
		if prog, ok := l.DB.Lookup(digest); ok {
			e.Classification = Known
			e.Program = prog

			return e
		}
	}

	result := decompiler.Analyze(data, 0x200, 0x200)
	if len(result.PossibleVariants) > 0 && len(result.PossibleVariants) < 8 {
		e.Classification = Inferred
		e.PossibleVariants = result.PossibleVariants

		return e
	}

	e.Classification = Unknown

	return e
}

// recognisedExt reports whether a file extension is one the librarian
// knows how to load: raw CHIP-8 images, Octo cartridges, and C8B
// multi-variant bundles.
func recognisedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ch8", ".c8", ".rom", ".bin", ".gif", ".c8b":
		return true
	default:
		return false
	}
}

// Walk walks root, classifying every recognised file it finds. A .c8b
// bundle is classified as one raw image; its variants are not unpacked.
func (l *Librarian) Walk(root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !recognisedExt(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "librarian: reading %s", path)
		}

		image := data
		if strings.ToLower(filepath.Ext(path)) == ".gif" {
			cart, err := ParseOctoCartridge(data)
			if err != nil {
				return nil // not a valid Octo cartridge; skip rather than fail the walk
			}

			image = cart.ROM
		}

		entries = append(entries, l.Classify(path, image))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
