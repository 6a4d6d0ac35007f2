package forecast

import "strings"

// Category is the broad weather group a provider code belongs to.
type Category string

const (
	CategoryClear        Category = "Clear"
	CategoryClouds       Category = "Clouds"
	CategoryRain         Category = "Rain"
	CategorySnow         Category = "Snow"
	CategoryDrizzle      Category = "Drizzle"
	CategoryThunderstorm Category = "Thunderstorm"
	CategoryFog          Category = "Fog"
	CategoryUnknown      Category = "Unknown"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryClear,
	CategoryClouds,
	CategoryFog,
	CategoryDrizzle,
	CategoryRain,
	CategorySnow,
	CategoryThunderstorm,
	CategoryUnknown,
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return CategoryUnknown, false
}

// Slug returns the lower-case form used in URLs and CSS classes.
func (c Category) Slug() string {
	return strings.ToLower(string(c))
}

// Severity orders categories from benign (0) to hazardous.
func (c Category) Severity() int {
	switch c {
	case CategoryThunderstorm:
		return 5
	case CategorySnow:
		return 4
	case CategoryRain:
		return 3
	case CategoryFog, CategoryDrizzle:
		return 2
	case CategoryClouds:
		return 1
	default:
		return 0
	}
}

// WeatherCodeInfo describes a WMO weather interpretation code.
type WeatherCodeInfo struct {
	Code        int      `json:"code"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
}

// UnknownIcon is used for any code missing from the table.
const UnknownIcon = "01d"

type codeEntry struct {
	description string
	category    Category
	icon        string
}

// WMO weather interpretation codes as reported by Open-Meteo.
var weatherCodes = map[int]codeEntry{
	0:  {"Clear sky", CategoryClear, "01d"},
	1:  {"Mainly clear", CategoryClear, "01d"},
	2:  {"Partly cloudy", CategoryClouds, "02d"},
	3:  {"Overcast", CategoryClouds, "03d"},
	45: {"Fog", CategoryFog, "50d"},
	48: {"Depositing rime fog", CategoryFog, "50d"},
	51: {"Light drizzle", CategoryDrizzle, "09d"},
	53: {"Moderate drizzle", CategoryDrizzle, "09d"},
	55: {"Dense drizzle", CategoryDrizzle, "09d"},
	56: {"Light freezing drizzle", CategoryDrizzle, "09d"},
	57: {"Dense freezing drizzle", CategoryDrizzle, "09d"},
	61: {"Slight rain", CategoryRain, "10d"},
	63: {"Moderate rain", CategoryRain, "10d"},
	65: {"Heavy rain", CategoryRain, "10d"},
	66: {"Light freezing rain", CategoryRain, "10d"},
	67: {"Heavy freezing rain", CategoryRain, "10d"},
	71: {"Slight snow fall", CategorySnow, "13d"},
	73: {"Moderate snow fall", CategorySnow, "13d"},
	75: {"Heavy snow fall", CategorySnow, "13d"},
	77: {"Snow grains", CategorySnow, "13d"},
	80: {"Slight rain showers", CategoryRain, "09d"},
	81: {"Moderate rain showers", CategoryRain, "09d"},
	82: {"Violent rain showers", CategoryRain, "09d"},
	85: {"Slight snow showers", CategorySnow, "13d"},
	86: {"Heavy snow showers", CategorySnow, "13d"},
	95: {"Thunderstorm", CategoryThunderstorm, "11d"},
	96: {"Thunderstorm with slight hail", CategoryThunderstorm, "11d"},
	99: {"Thunderstorm with heavy hail", CategoryThunderstorm, "11d"},
}

// Classify maps a provider weather code to its description, category and icon.
// Codes outside the table classify as Unknown.
func Classify(code int) WeatherCodeInfo {
	e, ok := weatherCodes[code]
	if !ok {
		return WeatherCodeInfo{
			Code:        code,
			Description: string(CategoryUnknown),
			Category:    CategoryUnknown,
			Icon:        UnknownIcon,
		}
	}
	return WeatherCodeInfo{
		Code:        code,
		Description: e.description,
		Category:    e.category,
		Icon:        e.icon,
	}
}

// PartlyCloudyCode is the single Clouds code that still counts as good visibility.
const PartlyCloudyCode = 2
