package forecast

import (
	"fmt"
	"math"
	"strings"
)

var (
	compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	compassArrows = [8]string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}
)

func compassIndex(deg float64) int {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return int(math.Round(deg/45)) % 8
}

// CompassPoint converts a bearing in degrees to an 8-point compass name.
func CompassPoint(deg float64) string {
	return compassPoints[compassIndex(deg)]
}

var compassNames16 = [16]string{
	"North", "NNE", "NE", "ENE", "East", "ESE", "SE", "SSE",
	"South", "SSW", "SW", "WSW", "West", "WNW", "NW", "NNW",
}

// WindPhrase describes where the wind comes from on a 16-point rose,
// e.g. "North wind". A nil bearing reads as "Variable".
func WindPhrase(direction *float64) string {
	if direction == nil {
		return "Variable"
	}
	deg := math.Mod(*direction, 360)
	if deg < 0 {
		deg += 360
	}
	return compassNames16[int(math.Round(deg/22.5))%16] + " wind"
}

// CompassArrow returns the arrow glyph for a bearing.
func CompassArrow(deg float64) string {
	return compassArrows[compassIndex(deg)]
}

var beaufort = []struct {
	below float64
	label string
}{
	{1, "Calm"},
	{4, "Light air"},
	{8, "Light breeze"},
	{13, "Gentle breeze"},
	{19, "Moderate breeze"},
	{25, "Fresh breeze"},
	{32, "Strong breeze"},
	{39, "Near gale"},
	{47, "Gale"},
	{55, "Strong gale"},
	{64, "Storm"},
}

// BeaufortLabel describes a wind speed in mph on the Beaufort scale.
func BeaufortLabel(mph float64) string {
	for _, b := range beaufort {
		if mph < b.below {
			return b.label
		}
	}
	return "Hurricane force"
}

// GustMargin is how far gusts must exceed sustained wind before they are shown.
const GustMargin = 3

// WindDisplay formats wind as e.g. "12 mph ↗ NE (gusts 20)". Direction and
// gusts are optional.
func WindDisplay(speed float64, direction, gusts *float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.0f mph", speed)
	if direction != nil {
		fmt.Fprintf(&b, " %s %s", CompassArrow(*direction), CompassPoint(*direction))
	}
	if gusts != nil && *gusts > speed+GustMargin {
		fmt.Fprintf(&b, " (gusts %.0f)", *gusts)
	}
	return b.String()
}

// IconEmoji maps a weather icon code to an emoji for compact displays.
func IconEmoji(icon string) string {
	switch {
	case strings.HasPrefix(icon, "01"):
		return "☀️"
	case strings.HasPrefix(icon, "02"):
		return "⛅"
	case strings.HasPrefix(icon, "03"), strings.HasPrefix(icon, "04"):
		return "☁️"
	case strings.HasPrefix(icon, "09"):
		return "🌧️"
	case strings.HasPrefix(icon, "10"):
		return "🌦️"
	case strings.HasPrefix(icon, "11"):
		return "⛈️"
	case strings.HasPrefix(icon, "13"):
		return "❄️"
	case strings.HasPrefix(icon, "50"):
		return "🌫️"
	default:
		return "🌤️"
	}
}
