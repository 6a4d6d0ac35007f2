package forecast

import (
	"fmt"
	"image/color"
)

// Palette is the colour scheme used to draw a condition when no artwork is
// available.
type Palette struct {
	// Sky is the colour at the top of the background gradient
	Sky string
	// Ground is the colour at the bottom of the gradient
	Ground string
	// Accent highlights the condition line
	Accent string
}

// DefaultPalette is the fallback alpine-blue scheme.
var DefaultPalette = Palette{
	Sky:    "#121c30",
	Ground: "#1c2b44",
	Accent: "#4fc3f7",
}

var palettes = map[Category]Palette{
	CategoryClear: {
		Sky:    "#1d4e89", // deep high-altitude blue
		Ground: "#3a6b35",
		Accent: "#ffd54f",
	},
	CategoryClouds: {
		Sky:    "#3c4650", // flat grey ceiling
		Ground: "#2a3238",
		Accent: "#b0bec5",
	},
	CategoryFog: {
		Sky:    "#5a636b",
		Ground: "#3a4046",
		Accent: "#cfd8dc",
	},
	CategoryDrizzle: {
		Sky:    "#34495e",
		Ground: "#22303c",
		Accent: "#81d4fa",
	},
	CategoryRain: {
		Sky:    "#263445",
		Ground: "#18222c",
		Accent: "#4fc3f7",
	},
	CategorySnow: {
		Sky:    "#7d93a8", // whiteout
		Ground: "#c8d6e2",
		Accent: "#e3f2fd",
	},
	CategoryThunderstorm: {
		Sky:    "#1a1426", // bruised storm cell
		Ground: "#0e0c14",
		Accent: "#ffca28",
	},
}

// PaletteFor returns the colour scheme for a condition category.
func PaletteFor(c Category) Palette {
	if p, ok := palettes[c]; ok {
		return p
	}
	return DefaultPalette
}

// ParseHex converts a "#rrggbb" string to an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}
