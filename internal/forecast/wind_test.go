package forecast

import "testing"

func ptr(v float64) *float64 { return &v }

func TestCompassPoint(t *testing.T) {
	tests := []struct {
		deg       float64
		wantPoint string
		wantArrow string
	}{
		{0, "N", "↑"},
		{22, "N", "↑"},
		{23, "NE", "↗"},
		{90, "E", "→"},
		{180, "S", "↓"},
		{225, "SW", "↙"},
		{338, "N", "↑"},
		{315, "NW", "↖"},
		{360, "N", "↑"},
		{-45, "NW", "↖"},
	}
	for _, tt := range tests {
		if got := CompassPoint(tt.deg); got != tt.wantPoint {
			t.Errorf("CompassPoint(%v) = %q, want %q", tt.deg, got, tt.wantPoint)
		}
		if got := CompassArrow(tt.deg); got != tt.wantArrow {
			t.Errorf("CompassArrow(%v) = %q, want %q", tt.deg, got, tt.wantArrow)
		}
	}
}

func TestWindPhrase(t *testing.T) {
	tests := []struct {
		dir  *float64
		want string
	}{
		{nil, "Variable"},
		{ptr(0), "North wind"},
		{ptr(20), "NNE wind"},
		{ptr(270), "West wind"},
		{ptr(350), "North wind"},
	}
	for _, tt := range tests {
		if got := WindPhrase(tt.dir); got != tt.want {
			t.Errorf("WindPhrase() = %q, want %q", got, tt.want)
		}
	}
}

func TestBeaufortLabel(t *testing.T) {
	tests := []struct {
		mph  float64
		want string
	}{
		{0, "Calm"},
		{0.9, "Calm"},
		{1, "Light air"},
		{7.9, "Light breeze"},
		{12, "Gentle breeze"},
		{18, "Moderate breeze"},
		{24, "Fresh breeze"},
		{31, "Strong breeze"},
		{38, "Near gale"},
		{46, "Gale"},
		{54, "Strong gale"},
		{63, "Storm"},
		{64, "Hurricane force"},
		{120, "Hurricane force"},
	}
	for _, tt := range tests {
		if got := BeaufortLabel(tt.mph); got != tt.want {
			t.Errorf("BeaufortLabel(%v) = %q, want %q", tt.mph, got, tt.want)
		}
	}
}

func TestWindDisplay(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		dir   *float64
		gusts *float64
		want  string
	}{
		{name: "speed only", speed: 12, want: "12 mph"},
		{name: "with direction", speed: 12, dir: ptr(45), want: "12 mph ↗ NE"},
		{name: "gusts shown above margin", speed: 12, dir: ptr(270), gusts: ptr(20), want: "12 mph ← W (gusts 20)"},
		{name: "gusts hidden at margin", speed: 12, gusts: ptr(15), want: "12 mph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WindDisplay(tt.speed, tt.dir, tt.gusts); got != tt.want {
				t.Errorf("WindDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIconEmoji(t *testing.T) {
	if got := IconEmoji("11d"); got != "⛈️" {
		t.Errorf("IconEmoji(11d) = %q", got)
	}
	if got := IconEmoji(""); got != "🌤️" {
		t.Errorf("IconEmoji(\"\") = %q", got)
	}
}
