package properties

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Factory constructs host-facing cores from a Properties value. The actual
// core type is opaque to this package (anything comparable to "an
// EmulationCore"); callers type-assert the result. This lets create(host,
// properties) -> {variantName, core} work without this package importing
// every concrete core package (which would create an import cycle with
// core/ wiring those factories back in).
type Factory func(host interface{}, props *Properties) (variantName string, core interface{}, err error)

// Preset is a named, ready-to-use Properties template plus catalogue
// metadata.
type Preset struct {
	Name              string
	Description       string
	DefaultExtensions []string
	SupportedVariants []string
	Properties        *Properties
}

// classEntry holds one property class's factory and its preset catalogue,
// in insertion order.
type classEntry struct {
	class   string
	factory Factory
	presets []Preset
}

// Registry is an explicitly-constructed mapping from property-class name
// to a factory with a preset catalogue. The zero value is not usable; use
// NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	classes map[string]*classEntry
}

// NewRegistry returns an empty registry. cadmium never hides this behind a
// package-level singleton: callers construct one explicit Registry
// (typically inside an application-context value) and pass it to every
// core constructor that needs it.
func NewRegistry() *Registry {
	return &Registry{classes: map[string]*classEntry{}}
}

func normalizeClass(class string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(class) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Register installs (or replaces) the factory for a property class. It does
// not fail: an unrecognised class surfaces as a fatal startup error only at
// Create time.
func (r *Registry) Register(class string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[class]; !exists {
		r.order = append(r.order, class)
	}

	r.classes[class] = &classEntry{class: class, factory: factory}
}

// AddPreset appends a preset to a class's catalogue, in call order. The
// class must already be registered.
func (r *Registry) AddPreset(class string, preset Preset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.classes[class]
	if !ok {
		return errors.Errorf("properties: cannot add preset to unregistered class %q", class)
	}

	entry.presets = append(entry.presets, preset)

	return nil
}

// Presets returns every preset across every registered class, in
// class-registration order then preset-insertion order within each class.
func (r *Registry) Presets() []Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Preset

	for _, class := range r.order {
		out = append(out, r.classes[class].presets...)
	}

	return out
}

// PresetsForClass returns the presets registered for a single class.
func (r *Registry) PresetsForClass(class string) []Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.classes[class]
	if !ok {
		return nil
	}

	return append([]Preset(nil), entry.presets...)
}

// PropertiesForExtension finds the first preset whose DefaultExtensions
// contains ext (case-insensitively, without a leading dot), returning a
// clone of its Properties template.
func (r *Registry) PropertiesForExtension(ext string) (*Properties, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	for _, preset := range r.Presets() {
		for _, e := range preset.DefaultExtensions {
			if strings.ToLower(strings.TrimPrefix(e, ".")) == ext {
				return preset.Properties.Clone(), true
			}
		}
	}

	return nil, false
}

// PresetForProperties finds the preset whose template is structurally equal
// to p.
func (r *Registry) PresetForProperties(p *Properties) (string, bool) {
	for _, preset := range r.PresetsForClass(p.Class) {
		if preset.Properties.Equal(p) {
			return preset.Name, true
		}
	}

	return "", false
}

// resolveClass does constant-time-ish, case/punctuation-insensitive fuzzy
// lookup of a registered class name.
func (r *Registry) resolveClass(class string) (*classEntry, bool) {
	normalized := normalizeClass(class)

	entry, ok := r.classes[class]
	if ok {
		return entry, true
	}

	for name, e := range r.classes {
		if normalizeClass(name) == normalized {
			return e, true
		}
	}

	return nil, false
}

// Create constructs a core for the given properties' class. An unrecognised
// class is a fatal startup error.
func (r *Registry) Create(host interface{}, props *Properties) (variantName string, core interface{}, err error) {
	r.mu.RLock()
	entry, ok := r.resolveClass(props.Class)
	r.mu.RUnlock()

	if !ok {
		return "", nil, errors.Errorf("properties: unrecognised property class %q: fatal startup error", props.Class)
	}

	return entry.factory(host, props)
}

// ClassNames returns every registered class name, in registration order.
func (r *Registry) ClassNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// sortedPresetNames is a small test/debug helper returning preset names in
// alphabetical order, independent of registration order.
func sortedPresetNames(presets []Preset) []string {
	names := make([]string, len(presets))

	for i, p := range presets {
		names[i] = p.Name
	}

	sort.Strings(names)

	return names
}
