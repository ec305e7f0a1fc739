// Package properties implements a typed, named, class-grouped
// configuration system: the sole vehicle for configuring an emulation
// core, structurally comparable and diffable.
package properties

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Access describes who may read or write a property value.
type Access int

const (
	ReadWrite Access = iota
	ReadOnly
	Invisible
)

// Kind enumerates the value shapes a Property can hold.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
	KindCombo
	KindPalette
)

// Value is the typed payload carried by a Property. Exactly one field is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Bool bool
	Int  int64
	Str  string

	// Combo selects an index into Options.
	Combo   int
	Options []string

	// Palette is an opaque, JSON-serialisable blob (the nested palette
	// value); cadmium stores it pre-encoded to avoid this package
	// depending on internal/palette and creating an import cycle with
	// core wiring.
	PaletteJSON json.RawMessage
}

// MarshalJSON serialises only the value, with no property metadata.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.Marshal(v.Bool)
	case KindInt:
		return json.Marshal(v.Int)
	case KindString:
		return json.Marshal(v.Str)
	case KindCombo:
		if v.Combo < 0 || v.Combo >= len(v.Options) {
			return json.Marshal("")
		}

		return json.Marshal(v.Options[v.Combo])
	case KindPalette:
		if v.PaletteJSON == nil {
			return []byte("null"), nil
		}

		return v.PaletteJSON, nil
	default:
		return nil, errors.Errorf("properties: unknown value kind %d", v.Kind)
	}
}

// UnmarshalJSON parses a raw value according to the Value's pre-existing
// Kind (and, for combos, Options): the type is determined by the property
// definition, not by the JSON shape, mirroring the source's typed property
// metadata that lives alongside (not inside) the serialised value.
func (v *Value) UnmarshalJSON(data []byte) error {
	switch v.Kind {
	case KindBool:
		return json.Unmarshal(data, &v.Bool)
	case KindInt:
		return json.Unmarshal(data, &v.Int)
	case KindString:
		return json.Unmarshal(data, &v.Str)
	case KindCombo:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		for i, opt := range v.Options {
			if opt == s {
				v.Combo = i
				return nil
			}
		}

		return errors.Errorf("properties: %q is not a valid option", s)
	case KindPalette:
		v.PaletteJSON = append(json.RawMessage(nil), data...)
		return nil
	default:
		return errors.Errorf("properties: unknown value kind %d", v.Kind)
	}
}

// Equal compares two values of the same Kind.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}

	switch v.Kind {
	case KindBool:
		return v.Bool == other.Bool
	case KindInt:
		return v.Int == other.Int
	case KindString:
		return v.Str == other.Str
	case KindCombo:
		return v.Combo == other.Combo
	case KindPalette:
		return string(v.PaletteJSON) == string(other.PaletteJSON)
	default:
		return false
	}
}

// Property is one named, typed, described configuration slot.
type Property struct {
	Name        string // display name
	Key         string // JSON key, lower-camel normalised from Name
	Description string
	Info        string
	Access      Access
	Value       Value
}

// jsonKey lower-camel normalises a display name into a JSON key, e.g.
// "Shift Vx Only" -> "shiftVxOnly".
func jsonKey(name string) string {
	var b strings.Builder

	upperNext := false
	firstWord := true

	for _, r := range name {
		switch {
		case r == ' ' || r == '-' || r == '_':
			upperNext = true
			firstWord = false
		case upperNext:
			b.WriteRune(toUpper(r))
			upperNext = false
		case firstWord:
			b.WriteRune(toLower(r))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}

	return r
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 32
	}

	return r
}

// Properties is a named class plus an ordered set of properties. Two
// Properties are equal iff every value is equal, regardless of how each was
// constructed.
type Properties struct {
	Class string
	order []string
	props map[string]*Property
}

// New creates an empty Properties for the given class.
func New(class string) *Properties {
	return &Properties{Class: class, props: map[string]*Property{}}
}

// Define appends a new property to the set, assigning its JSON key from its
// display name if Key is left blank. Define panics on a duplicate name,
// since the preset catalogue that calls it is fixed at startup (a duplicate
// is a programming error, not a runtime condition).
func (p *Properties) Define(prop Property) *Properties {
	if prop.Key == "" {
		prop.Key = jsonKey(prop.Name)
	}

	if _, exists := p.props[prop.Name]; exists {
		panic("properties: duplicate property " + prop.Name)
	}

	cp := prop
	p.order = append(p.order, prop.Name)
	p.props[prop.Name] = &cp

	return p
}

// Names returns property names in definition order.
func (p *Properties) Names() []string {
	return append([]string(nil), p.order...)
}

// Get returns the named property and whether it exists.
func (p *Properties) Get(name string) (Property, bool) {
	prop, ok := p.props[name]
	if !ok {
		return Property{}, false
	}

	return *prop, true
}

// Bool returns a boolean property's value, or false if absent/wrong kind.
func (p *Properties) Bool(name string) bool {
	prop, ok := p.props[name]
	if !ok || prop.Value.Kind != KindBool {
		return false
	}

	return prop.Value.Bool
}

// Int returns an integer property's value, or 0 if absent/wrong kind.
func (p *Properties) Int(name string) int64 {
	prop, ok := p.props[name]
	if !ok || prop.Value.Kind != KindInt {
		return 0
	}

	return prop.Value.Int
}

// String returns a string property's value, or "" if absent/wrong kind.
func (p *Properties) String(name string) string {
	prop, ok := p.props[name]
	if !ok || prop.Value.Kind != KindString {
		return ""
	}

	return prop.Value.Str
}

// Combo returns a combo property's selected option string.
func (p *Properties) Combo(name string) string {
	prop, ok := p.props[name]
	if !ok || prop.Value.Kind != KindCombo {
		return ""
	}

	if prop.Value.Combo < 0 || prop.Value.Combo >= len(prop.Value.Options) {
		return ""
	}

	return prop.Value.Options[prop.Value.Combo]
}

// Set assigns a value by name, validating access level and kind.
func (p *Properties) Set(name string, v Value) error {
	prop, ok := p.props[name]
	if !ok {
		return errors.Errorf("properties: unknown property %q", name)
	}

	if prop.Access == ReadOnly {
		return errors.Errorf("properties: %q is read-only", name)
	}

	if prop.Value.Kind != v.Kind {
		return errors.Errorf("properties: %q expects kind %d, got %d", name, prop.Value.Kind, v.Kind)
	}

	prop.Value = v

	return nil
}

// SetBool is a convenience wrapper around Set for boolean properties.
func (p *Properties) SetBool(name string, b bool) error {
	return p.Set(name, Value{Kind: KindBool, Bool: b})
}

// SetInt is a convenience wrapper around Set for integer properties.
func (p *Properties) SetInt(name string, n int64) error {
	return p.Set(name, Value{Kind: KindInt, Int: n})
}

// Clone deep-copies a Properties value so mutating an instance never
// aliases the prototype registry's template.
func (p *Properties) Clone() *Properties {
	clone := New(p.Class)
	clone.order = append([]string(nil), p.order...)
	clone.props = make(map[string]*Property, len(p.props))

	for k, v := range p.props {
		cp := *v
		clone.props[k] = &cp
	}

	return clone
}

// Equal reports whether two Properties have the same class and every
// property holds an equal value.
func (p *Properties) Equal(other *Properties) bool {
	if other == nil || p.Class != other.Class || len(p.props) != len(other.props) {
		return false
	}

	for name, prop := range p.props {
		otherProp, ok := other.props[name]
		if !ok || !prop.Value.Equal(otherProp.Value) {
			return false
		}
	}

	return true
}

// Diff produces a sparse map of key -> new value containing only the
// properties whose values differ between from and to.
// Diff panics if the two sets are of different classes, since a diff is
// only meaningful within one property class.
func Diff(from, to *Properties) map[string]Value {
	if from.Class != to.Class {
		panic("properties: cannot diff properties of different classes")
	}

	out := map[string]Value{}

	for name, toProp := range to.props {
		fromProp, ok := from.props[name]
		if !ok || !fromProp.Value.Equal(toProp.Value) {
			out[toProp.Key] = toProp.Value
		}
	}

	return out
}

// ApplyDiff applies a sparse key -> value map (as produced by Diff, after a
// JSON round trip) onto a clone of base, validating that every key exists
// and its access level is writable. It returns the new Properties,
// satisfying property 1:
// apply_diff(p, create_diff(p, q)) == q whenever p.class() == q.class().
func ApplyDiff(base *Properties, diff map[string]Value) (*Properties, error) {
	out := base.Clone()
	matched := 0

	for name, prop := range out.props {
		if v, ok := diff[prop.Key]; ok {
			matched++

			if prop.Access == ReadOnly {
				return nil, errors.Errorf("properties: %q is read-only", name)
			}

			if prop.Value.Kind != v.Kind {
				return nil, errors.Errorf("properties: %q kind mismatch applying diff", name)
			}

			prop.Value = v
		}
	}

	if matched != len(diff) {
		return nil, errors.New("properties: diff names a key the base properties do not have")
	}

	return out, nil
}

// MarshalJSON serialises only the values, keyed by JSON key.
func (p *Properties) MarshalJSON() ([]byte, error) {
	out := make(map[string]Value, len(p.props))

	for _, prop := range p.props {
		out[prop.Key] = prop.Value
	}

	return json.Marshal(out)
}

// SortedKeys returns the property JSON keys in sorted order, used for
// deterministic diff rendering in logs/tests.
func (p *Properties) SortedKeys() []string {
	keys := make([]string, 0, len(p.props))

	for _, prop := range p.props {
		keys = append(keys, prop.Key)
	}

	sort.Strings(keys)

	return keys
}
