// Package romdb persists and queries the known-program database: a pair
// of JSON documents (platforms, programs) keyed by SHA-1 digest and
// platform name, plus the member-wise quirk-override semantics that
// combine a platform's documented quirks with a program's per-platform
// corrections (spec.md §4.8, §3 RomInfo).
package romdb

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"cadmium/chip8"
)

// QuirkOverrides is the JSON-facing quirks object: every field is a
// pointer so "absent" (nil) is distinguishable from "explicitly false",
// which the member-wise override in Resolve depends on. Field names
// mirror chip8.Quirks so platforms.json/programs.json read naturally
// next to the Go type they parameterize.
type QuirkOverrides struct {
	VFReset          *bool `json:"vf_reset,omitempty"`
	IIncrementByX    *bool `json:"i_increment_by_x,omitempty"`
	IUnchanged       *bool `json:"i_unchanged,omitempty"`
	ShiftVXOnly      *bool `json:"shift_vx_only,omitempty"`
	WrapSprites      *bool `json:"wrap_sprites,omitempty"`
	Jump0BXNN        *bool `json:"jump0_bxnn,omitempty"`
	HalfPixelScroll  *bool `json:"half_pixel_scroll,omitempty"`
	SC11Collisions   *bool `json:"sc11_collisions,omitempty"`
	HasHires         *bool `json:"has_hires,omitempty"`
	AllowF000        *bool `json:"allow_f000,omitempty"`
	IndexedSprites   *bool `json:"indexed_sprites,omitempty"`
	InstantDxyn      *bool `json:"instant_dxyn,omitempty"`
	LoresDxy0Is16x16 *bool `json:"lores_dxy0_is_16x16,omitempty"`
	CyclicStack      *bool `json:"cyclic_stack,omitempty"`
}

// Apply returns base with every non-nil field in o overridden, the
// member-wise ⊕ operator spec.md §3 describes for
// effectiveQuirks = platform.quirks ⊕ program.quirkyPlatforms[platform].
func (o QuirkOverrides) Apply(base chip8.Quirks) chip8.Quirks {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	set(&base.VFReset, o.VFReset)
	set(&base.IIncrementByX, o.IIncrementByX)
	set(&base.IUnchanged, o.IUnchanged)
	set(&base.ShiftVXOnly, o.ShiftVXOnly)
	set(&base.WrapSprites, o.WrapSprites)
	set(&base.Jump0BXNN, o.Jump0BXNN)
	set(&base.HalfPixelScroll, o.HalfPixelScroll)
	set(&base.SC11Collisions, o.SC11Collisions)
	set(&base.HasHires, o.HasHires)
	set(&base.AllowF000, o.AllowF000)
	set(&base.IndexedSprites, o.IndexedSprites)
	set(&base.InstantDxyn, o.InstantDxyn)
	set(&base.LoresDxy0Is16x16, o.LoresDxy0Is16x16)
	set(&base.CyclicStack, o.CyclicStack)

	return base
}

// Platform is one entry of platforms.json: a named CHIP-8 dialect with
// its documented default quirks.
type Platform struct {
	Name        string         `json:"name"`
	Variant     chip8.Variant  `json:"-"`
	VariantName string         `json:"variant"`
	Quirks      QuirkOverrides `json:"quirks"`

	// Unknown preserves any JSON object keys this version of cadmium
	// doesn't recognise, so re-saving the file round-trips them
	// unchanged instead of silently dropping fields a newer writer added.
	Unknown map[string]json.RawMessage `json:"-"`
}

// Program is one entry of programs.json: RomInfo as spec.md §3 defines
// it, keyed by the program's SHA-1 digest in the containing Database.
type Program struct {
	SHA1       string                    `json:"sha1"`
	Title      string                    `json:"title"`
	Origin     string                    `json:"origin,omitempty"`
	Authors    []string                  `json:"authors,omitempty"`
	Release    string                    `json:"release,omitempty"`
	Platforms  []string                  `json:"platforms"`
	TouchInput string                    `json:"touch_input,omitempty"`
	Rotation   int                       `json:"rotation,omitempty"`
	Palette    []string                  `json:"palette,omitempty"`
	Tickrate   int                       `json:"tickrate,omitempty"`
	StartAddr  int                       `json:"start_address,omitempty"`

	// QuirkyPlatforms holds per-platform quirk corrections: programs that
	// need SUPER-CHIP but rely on one CHIP-48 quirk, for instance.
	QuirkyPlatforms map[string]QuirkOverrides `json:"quirky_platforms,omitempty"`

	Unknown map[string]json.RawMessage `json:"-"`
}

// Database is the in-memory union of platforms.json and programs.json.
type Database struct {
	Platforms map[string]*Platform
	Programs  map[string]*Program // keyed by lowercase 40-hex SHA-1
}

// New returns an empty database, seeded from nothing; callers typically
// start from Fallback() or Load() instead.
func New() *Database {
	return &Database{Platforms: map[string]*Platform{}, Programs: map[string]*Program{}}
}

// Load reads platforms.json and programs.json from the given paths.
// Either path may be empty to skip loading that document.
func Load(platformsPath, programsPath string) (*Database, error) {
	db := New()

	if platformsPath != "" {
		raw, err := os.ReadFile(platformsPath)
		if err != nil {
			return nil, errors.Wrap(err, "romdb: reading platforms.json")
		}

		if err := db.loadPlatforms(raw); err != nil {
			return nil, err
		}
	}

	if programsPath != "" {
		raw, err := os.ReadFile(programsPath)
		if err != nil {
			return nil, errors.Wrap(err, "romdb: reading programs.json")
		}

		if err := db.loadPrograms(raw); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Fallback builds a database from the embedded offline-first-run
// platforms document (spec.md §4.8), with no program catalogue.
func Fallback() *Database {
	db := New()
	if err := db.loadPlatforms([]byte(fallbackPlatformsJSON)); err != nil {
		panic(errors.Wrap(err, "romdb: embedded fallback platforms.json is malformed"))
	}

	return db
}

func (db *Database) loadPlatforms(raw []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return errors.Wrap(err, "romdb: parsing platforms.json")
	}

	for _, entry := range entries {
		p := &Platform{}
		if err := json.Unmarshal(entry, p); err != nil {
			return errors.Wrap(err, "romdb: parsing platform entry")
		}

		p.Unknown = unknownFields(entry, "name", "variant", "quirks")
		p.Variant = variantFromName(p.VariantName)
		db.Platforms[p.Name] = p
	}

	return nil
}

func (db *Database) loadPrograms(raw []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return errors.Wrap(err, "romdb: parsing programs.json")
	}

	for _, entry := range entries {
		p := &Program{}
		if err := json.Unmarshal(entry, p); err != nil {
			return errors.Wrap(err, "romdb: parsing program entry")
		}

		p.Unknown = unknownFields(entry, "sha1", "title", "origin", "authors", "release",
			"platforms", "touch_input", "rotation", "palette", "tickrate", "start_address",
			"quirky_platforms")
		db.Programs[lowerHex(p.SHA1)] = p
	}

	return nil
}

// Save writes platforms.json and programs.json back to disk, round-
// tripping any unrecognised keys a newer cadmium build wrote.
func (db *Database) Save(platformsPath, programsPath string) error {
	if platformsPath != "" {
		raw, err := db.marshalPlatforms()
		if err != nil {
			return err
		}

		if err := os.WriteFile(platformsPath, raw, 0o644); err != nil {
			return errors.Wrap(err, "romdb: writing platforms.json")
		}
	}

	if programsPath != "" {
		raw, err := db.marshalPrograms()
		if err != nil {
			return err
		}

		if err := os.WriteFile(programsPath, raw, 0o644); err != nil {
			return errors.Wrap(err, "romdb: writing programs.json")
		}
	}

	return nil
}

func (db *Database) marshalPlatforms() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(db.Platforms))

	for _, p := range sortedPlatforms(db.Platforms) {
		merged, err := mergeUnknown(map[string]any{
			"name":    p.Name,
			"variant": p.VariantName,
			"quirks":  p.Quirks,
		}, p.Unknown)
		if err != nil {
			return nil, err
		}

		out = append(out, merged)
	}

	return json.MarshalIndent(out, "", "  ")
}

func (db *Database) marshalPrograms() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(db.Programs))

	for _, p := range sortedPrograms(db.Programs) {
		fields := map[string]any{
			"sha1":      p.SHA1,
			"title":     p.Title,
			"platforms": p.Platforms,
		}

		if p.Origin != "" {
			fields["origin"] = p.Origin
		}

		if len(p.Authors) > 0 {
			fields["authors"] = p.Authors
		}

		if p.Release != "" {
			fields["release"] = p.Release
		}

		if p.TouchInput != "" {
			fields["touch_input"] = p.TouchInput
		}

		if p.Rotation != 0 {
			fields["rotation"] = p.Rotation
		}

		if len(p.Palette) > 0 {
			fields["palette"] = p.Palette
		}

		if p.Tickrate != 0 {
			fields["tickrate"] = p.Tickrate
		}

		if p.StartAddr != 0 {
			fields["start_address"] = p.StartAddr
		}

		if len(p.QuirkyPlatforms) > 0 {
			fields["quirky_platforms"] = p.QuirkyPlatforms
		}

		merged, err := mergeUnknown(fields, p.Unknown)
		if err != nil {
			return nil, err
		}

		out = append(out, merged)
	}

	return json.MarshalIndent(out, "", "  ")
}

// Lookup finds a known program by its (already computed) SHA-1 digest.
func (db *Database) Lookup(sha1Hex string) (*Program, bool) {
	p, ok := db.Programs[lowerHex(sha1Hex)]
	return p, ok
}

// Platform looks up a platform by name.
func (db *Database) Platform(name string) (*Platform, bool) {
	p, ok := db.Platforms[name]
	return p, ok
}

// ResolveQuirks computes effectiveQuirks = platform.quirks ⊕
// program.quirkyPlatforms[platform] (spec.md §3).
func ResolveQuirks(platform *Platform, program *Program) chip8.Quirks {
	base := platform.Quirks.Apply(chip8.QuirksFor(platform.Variant))

	if program == nil {
		return base
	}

	if override, ok := program.QuirkyPlatforms[platform.Name]; ok {
		return override.Apply(base)
	}

	return base
}

func variantFromName(name string) chip8.Variant {
	for _, v := range []chip8.Variant{
		chip8.VariantCHIP8, chip8.VariantCHIP48, chip8.VariantSCHIP10,
		chip8.VariantSCHIP11, chip8.VariantSCHIPModern, chip8.VariantXOCHIP,
		chip8.VariantMegaChip, chip8.VariantCHIP8X,
	} {
		if v.String() == name {
			return v
		}
	}

	return chip8.VariantCHIP8
}

func lowerHex(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'F' {
			b[i] = c - 'A' + 'a'
		}
	}

	return string(b)
}

func unknownFields(raw json.RawMessage, known ...string) map[string]json.RawMessage {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil
	}

	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	for k := range all {
		if knownSet[k] {
			delete(all, k)
		}
	}

	if len(all) == 0 {
		return nil
	}

	return all
}

func mergeUnknown(fields map[string]any, unknown map[string]json.RawMessage) (json.RawMessage, error) {
	known, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "romdb: marshaling known fields")
	}

	if len(unknown) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}

	for k, v := range unknown {
		merged[k] = v
	}

	return json.Marshal(merged)
}

func sortedPlatforms(m map[string]*Platform) []*Platform {
	out := make([]*Platform, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}

	sortByName(out, func(i int) string { return out[i].Name })

	return out
}

func sortedPrograms(m map[string]*Program) []*Program {
	out := make([]*Program, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}

	sortByName(out, func(i int) string { return out[i].SHA1 })

	return out
}

// sortByName performs a plain insertion sort; these lists are small
// (tens to low hundreds of platforms/programs) so a library sort isn't
// warranted.
func sortByName[T any](s []T, key func(int) string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && key(j-1) > key(j); j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
