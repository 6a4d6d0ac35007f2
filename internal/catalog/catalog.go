// Package catalog holds the fixed list of Colorado peaks over 14,000 ft.
package catalog

import "strings"

// Peak is a summit the service reports on.
type Peak struct {
	Name      string  `json:"name"`
	Elevation int     `json:"elevation"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

var peaks = []Peak{
	{Name: "Mount Elbert", Elevation: 14440, Lat: 39.1178, Lon: -106.4453},
	{Name: "Mount Massive", Elevation: 14428, Lat: 39.1875, Lon: -106.4757},
	{Name: "Mount Harvard", Elevation: 14421, Lat: 38.9244, Lon: -106.3207},
	{Name: "Blanca Peak", Elevation: 14351, Lat: 37.5775, Lon: -105.4856},
	{Name: "La Plata Peak", Elevation: 14343, Lat: 39.0294, Lon: -106.4729},
	{Name: "Uncompahgre Peak", Elevation: 14321, Lat: 38.0717, Lon: -107.4624},
	{Name: "Crestone Peak", Elevation: 14300, Lat: 37.9669, Lon: -105.585},
	{Name: "Mount Lincoln", Elevation: 14293, Lat: 39.3515, Lon: -106.1065},
	{Name: "Castle Peak", Elevation: 14279, Lat: 39.0097, Lon: -106.8616},
	{Name: "Grays Peak", Elevation: 14278, Lat: 39.6342, Lon: -105.8176},
	{Name: "Mount Antero", Elevation: 14276, Lat: 38.6739, Lon: -106.2458},
	{Name: "Torreys Peak", Elevation: 14275, Lat: 39.6428, Lon: -105.8212},
	{Name: "Quandary Peak", Elevation: 14271, Lat: 39.3975, Lon: -106.1066},
	{Name: "Mount Blue Sky", Elevation: 14271, Lat: 39.5883, Lon: -105.6438},
	{Name: "Longs Peak", Elevation: 14259, Lat: 40.2549, Lon: -105.6151},
	{Name: "Mount Wilson", Elevation: 14252, Lat: 37.8391, Lon: -107.9918},
	{Name: "Mount Cameron", Elevation: 14238, Lat: 39.3471, Lon: -106.1188},
	{Name: "Mount Shavano", Elevation: 14231, Lat: 38.6194, Lon: -106.2392},
	{Name: "Mount Belford", Elevation: 14203, Lat: 38.9606, Lon: -106.3608},
	{Name: "Crestone Needle", Elevation: 14203, Lat: 37.9647, Lon: -105.5767},
	{Name: "Mount Princeton", Elevation: 14204, Lat: 38.7492, Lon: -106.2425},
	{Name: "Mount Yale", Elevation: 14196, Lat: 38.8442, Lon: -106.3142},
	{Name: "Mount Bross", Elevation: 14178, Lat: 39.3348, Lon: -106.1079},
	{Name: "Kit Carson Mountain", Elevation: 14165, Lat: 37.9795, Lon: -105.6024},
	{Name: "Maroon Peak", Elevation: 14163, Lat: 39.0708, Lon: -106.989},
	{Name: "Tabeguache Peak", Elevation: 14162, Lat: 38.6256, Lon: -106.2506},
	{Name: "Mount Oxford", Elevation: 14160, Lat: 38.9648, Lon: -106.3381},
	{Name: "Mount Sneffels", Elevation: 14158, Lat: 38.0038, Lon: -107.7923},
	{Name: "Mount Democrat", Elevation: 14155, Lat: 39.3397, Lon: -106.1397},
	{Name: "Capitol Peak", Elevation: 14137, Lat: 39.1503, Lon: -107.0831},
	{Name: "Pikes Peak", Elevation: 14115, Lat: 38.8405, Lon: -105.0442},
	{Name: "Snowmass Mountain", Elevation: 14099, Lat: 39.1186, Lon: -107.0665},
	{Name: "Mount Eolus", Elevation: 14090, Lat: 37.6217, Lon: -107.6224},
	{Name: "Windom Peak", Elevation: 14087, Lat: 37.6211, Lon: -107.5917},
	{Name: "Challenger Point", Elevation: 14081, Lat: 37.9803, Lon: -105.6068},
	{Name: "Mount Columbia", Elevation: 14077, Lat: 38.9039, Lon: -106.2975},
	{Name: "Missouri Mountain", Elevation: 14074, Lat: 38.9475, Lon: -106.3781},
	{Name: "Humboldt Peak", Elevation: 14070, Lat: 37.9761, Lon: -105.5553},
	{Name: "Mount Bierstadt", Elevation: 14065, Lat: 39.5828, Lon: -105.6686},
	{Name: "Sunlight Peak", Elevation: 14059, Lat: 37.6267, Lon: -107.595},
	{Name: "Handies Peak", Elevation: 14053, Lat: 38.0578, Lon: -107.5044},
	{Name: "Culebra Peak", Elevation: 14053, Lat: 37.1218, Lon: -105.1856},
	{Name: "Mount Lindsey", Elevation: 14042, Lat: 37.5833, Lon: -105.4439},
	{Name: "Ellingwood Point", Elevation: 14042, Lat: 37.5828, Lon: -105.4928},
	{Name: "Mount Sherman", Elevation: 14043, Lat: 39.225, Lon: -106.17},
	{Name: "Redcloud Peak", Elevation: 14037, Lat: 38.0369, Lon: -107.4219},
	{Name: "Pyramid Peak", Elevation: 14025, Lat: 39.0717, Lon: -106.9503},
	{Name: "Wilson Peak", Elevation: 14023, Lat: 37.8603, Lon: -107.9845},
	{Name: "Wetterhorn Peak", Elevation: 14021, Lat: 38.0608, Lon: -107.5108},
	{Name: "North Maroon Peak", Elevation: 14019, Lat: 39.0767, Lon: -106.9833},
	{Name: "San Luis Peak", Elevation: 14014, Lat: 37.9867, Lon: -106.9314},
	{Name: "Mount of the Holy Cross", Elevation: 14009, Lat: 39.4669, Lon: -106.4819},
	{Name: "Huron Peak", Elevation: 14003, Lat: 38.9453, Lon: -106.4378},
	{Name: "Sunshine Peak", Elevation: 14001, Lat: 38.0597, Lon: -107.4256},
	{Name: "Mount Audubon", Elevation: 13223, Lat: 40.0458, Lon: -105.543},
	{Name: "Mount Meeker", Elevation: 13911, Lat: 40.2408, Lon: -105.6169},
	{Name: "Mount Lady Washington", Elevation: 13281, Lat: 40.2456, Lon: -105.6322},
	{Name: "Mount Spalding", Elevation: 13842, Lat: 39.5842, Lon: -105.6272},
	{Name: "Mount Rosa", Elevation: 11499, Lat: 38.8347, Lon: -105.0419},
	{Name: "Mount Tyndall", Elevation: 13370, Lat: 38.8461, Lon: -105.0822},
}

// All returns the catalog in display order. The slice is a copy.
func All() []Peak {
	out := make([]Peak, len(peaks))
	copy(out, peaks)
	return out
}

// Len reports the number of peaks in the catalog.
func Len() int { return len(peaks) }

// Find looks up a peak by name, ignoring case and surrounding whitespace.
func Find(name string) (Peak, bool) {
	name = strings.TrimSpace(name)
	for _, p := range peaks {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Peak{}, false
}
