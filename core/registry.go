package core

import (
	"github.com/pkg/errors"

	"cadmium/chip8"
	"cadmium/hardware/dream6800"
	"cadmium/hardware/eti660"
	"cadmium/hardware/vip"
	"cadmium/internal/properties"
)

// contextOf recovers the buildContext EmulationCore.LoadBinary threaded
// through as the opaque host parameter every properties.Factory receives.
func contextOf(host interface{}) (*buildContext, error) {
	ctx, ok := host.(*buildContext)
	if !ok {
		return nil, errors.New("core: factory invoked outside EmulationCore.LoadBinary")
	}

	return ctx, nil
}

// genericFactory builds a chip8.Core for one of the generic-interpreter
// classes. base is the variant's documented Quirks; the factory applies a
// handful of class-specific property overrides on top before constructing,
// so "CHIP-8", "CHIP-8 (modern)" and "CHIP-10" can share one class and one
// Variant while still differing in screen size or a wrap-sprites toggle.
func genericFactory(variant chip8.Variant, variantName string, adjust func(q *chip8.Quirks, props *properties.Properties)) properties.Factory {
	return func(host interface{}, props *properties.Properties) (string, interface{}, error) {
		ctx, err := contextOf(host)
		if err != nil {
			return "", nil, err
		}

		q := chip8.QuirksFor(variant)
		if adjust != nil {
			adjust(&q, props)
		}

		c, err := chip8.NewWithQuirks(variant, q, ctx.ROM, ctx.Seed)
		if err != nil {
			return "", nil, err
		}

		return variantName, c, nil
	}
}

// adjustGeneric applies the two properties the generic CHIP-8 class's own
// presets vary: whether sprites wrap at the screen edge, and whether the
// screen is doubled to CHIP-10's 64x128.
func adjustGeneric(q *chip8.Quirks, props *properties.Properties) {
	if prop, ok := props.Get("Wrap Sprites"); ok {
		q.WrapSprites = prop.Value.Bool
	}

	if prop, ok := props.Get("Tall Screen"); ok && prop.Value.Bool {
		q.ScreenHeight = 128
	}
}

// hybridFactory builds one of the real-hardware hybrid cores, which each
// need the host-supplied monitor ROM for their class in addition to the
// CHIP-8 program rom every factory receives via buildContext.
func hybridFactory(variantName string, build func(monitorROM, rom []byte, props *properties.Properties) (interface{}, error)) properties.Factory {
	return func(host interface{}, props *properties.Properties) (string, interface{}, error) {
		ctx, err := contextOf(host)
		if err != nil {
			return "", nil, err
		}

		monitor, err := ctx.Host.MonitorROM(props.Class)
		if err != nil {
			return "", nil, errors.Wrap(err, "loading monitor rom for "+props.Class)
		}

		c, err := build(monitor, ctx.ROM, props)
		if err != nil {
			return "", nil, err
		}

		return variantName, c, nil
	}
}

// NewRegistry returns a properties.Registry with every class and preset
// this module supports already wired: the eight generic dialects sharing
// chip8.Core, plus the three real-hardware hybrid classes.
func NewRegistry() *properties.Registry {
	r := properties.NewRegistry()

	registerGenericClasses(r)
	registerHybridClasses(r)

	return r
}

func wrapSpritesProperty(defaultValue bool) properties.Property {
	return properties.Property{
		Name:        "Wrap Sprites",
		Description: "Draw off-screen sprite pixels wrapped to the opposite edge instead of clipped.",
		Value:       properties.Value{Kind: properties.KindBool, Bool: defaultValue},
	}
}

func startAddressProperty(addr int64) properties.Property {
	return properties.Property{
		Name:        "Start Address",
		Description: "Memory address the program counter begins execution at.",
		Access:      properties.ReadOnly,
		Value:       properties.Value{Kind: properties.KindInt, Int: addr},
	}
}

func clockHzProperty(hz int64) properties.Property {
	return properties.Property{
		Name:        "Clock Hz",
		Description: "Instructions executed per second of emulated time.",
		Value:       properties.Value{Kind: properties.KindInt, Int: hz},
	}
}

func registerGenericClasses(r *properties.Registry) {
	const genericClass = "CHIP-8-GENERIC"

	r.Register(genericClass, genericFactory(chip8.VariantCHIP8, "CHIP-8", adjustGeneric))

	tallScreenProperty := properties.Property{
		Name:        "Tall Screen",
		Description: "Double vertical resolution to 64x128 (CHIP-10).",
		Value:       properties.Value{Kind: properties.KindBool, Bool: false},
	}

	r.AddPreset(genericClass, properties.Preset{
		Name:              "CHIP-8",
		Description:       "The original 1977 interpreter's documented opcode set.",
		DefaultExtensions: []string{"ch8"},
		SupportedVariants: []string{"CHIP-8"},
		Properties: properties.New(genericClass).
			Define(wrapSpritesProperty(true)).
			Define(tallScreenProperty).
			Define(startAddressProperty(0x200)).
			Define(clockHzProperty(700_000)),
	})

	r.AddPreset(genericClass, properties.Preset{
		Name:              "CHIP-8 (modern)",
		Description:       "CHIP-8 with off-screen sprite pixels clipped instead of wrapped, as most contemporary interpreters behave.",
		DefaultExtensions: []string{"ch8"},
		SupportedVariants: []string{"CHIP-8"},
		Properties: properties.New(genericClass).
			Define(wrapSpritesProperty(false)).
			Define(tallScreenProperty).
			Define(startAddressProperty(0x200)).
			Define(clockHzProperty(700_000)),
	})

	r.AddPreset(genericClass, properties.Preset{
		Name:              "CHIP-10",
		Description:       "CHIP-8 at double vertical resolution (64x128).",
		DefaultExtensions: []string{"ch10"},
		SupportedVariants: []string{"CHIP-8"},
		Properties: properties.New(genericClass).
			Define(wrapSpritesProperty(true)).
			Define(properties.Property{
				Name:        "Tall Screen",
				Description: "Double vertical resolution to 64x128 (CHIP-10).",
				Value:       properties.Value{Kind: properties.KindBool, Bool: true},
			}).
			Define(startAddressProperty(0x200)).
			Define(clockHzProperty(700_000)),
	})

	registerSimpleGenericClass(r, "CHIP-48", chip8.VariantCHIP48, 0x200, 1_000_000)
	registerSimpleGenericClass(r, "SUPER-CHIP 1.0", chip8.VariantSCHIP10, 0x200, 1_000_000)
	registerSimpleGenericClass(r, "SUPER-CHIP 1.1", chip8.VariantSCHIP11, 0x200, 1_000_000)
	registerSimpleGenericClass(r, "SUPER-CHIP modern", chip8.VariantSCHIPModern, 0x200, 1_000_000)
	registerSimpleGenericClass(r, "MEGA-CHIP", chip8.VariantMegaChip, 0x200, 3_000_000)
	registerSimpleGenericClass(r, "XO-CHIP", chip8.VariantXOCHIP, 0x200, 1_000_000)
	registerSimpleGenericClass(r, "CHIP-8X", chip8.VariantCHIP8X, 0x200, 700_000)
}

// registerSimpleGenericClass wires a dialect that needs no property
// overrides of its own: one class, one preset, straight off QuirksFor.
func registerSimpleGenericClass(r *properties.Registry, className string, variant chip8.Variant, startAddr, clockHz int64) {
	class := propertyClassFor(className)

	r.Register(class, genericFactory(variant, className, nil))

	r.AddPreset(class, properties.Preset{
		Name:              className,
		Description:       className + " dialect defaults.",
		DefaultExtensions: []string{"ch8"},
		SupportedVariants: []string{className},
		Properties: properties.New(class).
			Define(startAddressProperty(startAddr)).
			Define(clockHzProperty(clockHz)),
	})
}

// propertyClassFor turns a display variant name into the registry's class
// key, matching the convention chip8.Variant.String() already establishes
// (the same string doubles as the class key for every dialect that needs
// no other preset sharing its class).
func propertyClassFor(variantName string) string { return variantName }

func registerHybridClasses(r *properties.Registry) {
	r.Register("VIP", hybridFactory("COSMAC VIP", func(monitor, rom []byte, props *properties.Properties) (interface{}, error) {
		startAddr := uint16(0x200)
		if prop, ok := props.Get("Start Address"); ok {
			startAddr = uint16(prop.Value.Int)
		}

		return vip.New(monitor, rom, startAddr)
	}))

	r.AddPreset("VIP", properties.Preset{
		Name:              "COSMAC VIP",
		Description:       "CHIP-8 running under the real COSMAC VIP's CHIP8.1 monitor.",
		DefaultExtensions: []string{"ch8"},
		SupportedVariants: []string{"CHIP-8"},
		Properties: properties.New("VIP").
			Define(startAddressProperty(0x200)).
			Define(clockHzProperty(1_760_640)),
	})

	r.AddPreset("VIP", properties.Preset{
		Name:              "COSMAC VIP (two-page)",
		Description:       "CHIP-8 under the VIP monitor with a two-page (512-byte) program area starting at 0x260.",
		DefaultExtensions: []string{"ch8"},
		SupportedVariants: []string{"CHIP-8"},
		Properties: properties.New("VIP").
			Define(startAddressProperty(0x260)).
			Define(clockHzProperty(1_760_640)),
	})

	r.Register("DREAM6800", hybridFactory("DREAM6800", func(monitor, rom []byte, _ *properties.Properties) (interface{}, error) {
		return dream6800.New(monitor, rom)
	}))

	r.AddPreset("DREAM6800", properties.Preset{
		Name:              "DREAM6800",
		Description:       "CHIP-8 running under the Dream 6800's CHIPOS monitor.",
		DefaultExtensions: []string{"ch8"},
		SupportedVariants: []string{"CHIP-8"},
		Properties: properties.New("DREAM6800").
			Define(startAddressProperty(0x200)).
			Define(clockHzProperty(1_000_000)),
	})

	r.Register("ETI-660", hybridFactory("ETI-660", func(monitor, rom []byte, _ *properties.Properties) (interface{}, error) {
		return eti660.New(monitor, rom)
	}))

	r.AddPreset("ETI-660", properties.Preset{
		Name:              "ETI-660",
		Description:       "CHIP-8 running under the ETI-660's monitor, loaded at its 0x600 program area.",
		DefaultExtensions: []string{"ch8"},
		SupportedVariants: []string{"CHIP-8"},
		Properties: properties.New("ETI-660").
			Define(startAddressProperty(0x600)).
			Define(clockHzProperty(1_000_000)),
	})
}
