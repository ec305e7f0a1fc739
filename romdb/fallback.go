package romdb

// fallbackPlatformsJSON is the offline first-run platforms document
// (spec.md §4.8): one entry per documented CHIP-8 family dialect, using
// each variant's QuirksFor default so a fresh install can classify and
// run known ROMs before ever fetching an updated platforms.json.
const fallbackPlatformsJSON = `[
  {"name": "chip-8", "variant": "CHIP-8", "quirks": {}},
  {"name": "chip-48", "variant": "CHIP-48", "quirks": {}},
  {"name": "schip-1.0", "variant": "SUPER-CHIP 1.0", "quirks": {}},
  {"name": "schip-1.1", "variant": "SUPER-CHIP 1.1", "quirks": {}},
  {"name": "schip-modern", "variant": "SUPER-CHIP modern", "quirks": {}},
  {"name": "xo-chip", "variant": "XO-CHIP", "quirks": {}},
  {"name": "mega-chip", "variant": "MEGA-CHIP", "quirks": {}},
  {"name": "chip-8x", "variant": "CHIP-8X", "quirks": {}}
]`
