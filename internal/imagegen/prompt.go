package imagegen

import (
	"fmt"

	"github.com/lox/fourteeners/internal/forecast"
)

// baseStylePrompt defines the consistent visual style for all generated banners.
const baseStylePrompt = `Serene watercolor landscape painting of a Colorado fourteener above treeline.
Granite ridgelines, talus fields and alpine tundra, distant ranges fading in blue haze.
Style: impressionistic watercolor, soft gradients, muted earth tones, peaceful and minimal.
Wide panoramic composition suitable for a website header banner.
No text, no people, no buildings, no animals.`

var categoryPrompts = map[forecast.Category]string{
	forecast.CategoryClear:        "Deep blue cloudless sky, crisp morning light on the summit, long clear views.",
	forecast.CategoryClouds:       "Clouds drifting across the peaks, patches of sun on the slopes, soft diffused light.",
	forecast.CategoryRain:         "Steady rain on the ridge, wet glistening rock, grey sky, low clouds on the summit.",
	forecast.CategoryDrizzle:      "Light drizzle, damp tundra, thin grey clouds brushing the ridgeline.",
	forecast.CategorySnow:         "Fresh snow on the summit and couloirs, cold blue tones, snow falling softly.",
	forecast.CategoryThunderstorm: "Towering afternoon thunderheads over the summit, dark threatening sky, distant lightning.",
	forecast.CategoryFog:          "Fog filling the basins, summit emerging above a sea of cloud, ethereal and quiet.",
	forecast.CategoryUnknown:      "Changeable mountain sky, mix of sun and cloud over the range.",
}

// BannerPrompt builds the image prompt for a condition category.
func BannerPrompt(c forecast.Category) string {
	desc, ok := categoryPrompts[c]
	if !ok {
		desc = categoryPrompts[forecast.CategoryUnknown]
	}
	return fmt.Sprintf("%s\n\nWeather conditions: %s", baseStylePrompt, desc)
}
