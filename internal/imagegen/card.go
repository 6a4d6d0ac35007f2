package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/fourteeners/internal/forecast"
)

var (
	fontScore   font.Face
	fontTitle   font.Face
	fontRegular font.Face
	fontOnce    sync.Once
	fontErr     error
)

func newFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func loadFonts() {
	fontOnce.Do(func() {
		if fontScore, fontErr = newFace(gobold.TTF, 140); fontErr != nil {
			fontErr = fmt.Errorf("create score face: %w", fontErr)
			return
		}
		if fontTitle, fontErr = newFace(gobold.TTF, 60); fontErr != nil {
			fontErr = fmt.Errorf("create title face: %w", fontErr)
			return
		}
		if fontRegular, fontErr = newFace(goregular.TTF, 36); fontErr != nil {
			fontErr = fmt.Errorf("create regular face: %w", fontErr)
		}
	})
}

// CardData contains the dynamic data drawn on a peak's share card.
type CardData struct {
	Mountain    string
	Elevation   int
	Temperature *int   // current °F
	Condition   string // e.g. "Partly cloudy"
	Category    forecast.Category
	// Score and Rating come from the best hiking day; HasScore is false for
	// peaks without a scored forecast.
	HasScore bool
	Score    int
	Rating   forecast.Suitability
	BestDay  string // e.g. "Thursday"
}

// CardWidth and CardHeight are the standard Open Graph image dimensions.
const (
	CardWidth  = 1200
	CardHeight = 630
)

var ratingColors = map[forecast.Suitability]color.RGBA{
	forecast.SuitabilityExcellent: {46, 160, 67, 255},
	forecast.SuitabilityGood:      {120, 190, 60, 255},
	forecast.SuitabilityFair:      {230, 170, 30, 255},
	forecast.SuitabilityPoor:      {230, 110, 30, 255},
	forecast.SuitabilityDangerous: {210, 50, 50, 255},
}

// RenderCard draws a share card for a peak. When background is a decodable
// image it is cropped to fill the card, otherwise a plain gradient is used.
func RenderCard(background []byte, data CardData) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	if src, _, err := image.Decode(bytes.NewReader(background)); len(background) > 0 && err == nil {
		coverCrop(dst, src)
		drawGradientOverlay(dst)
	} else {
		drawBackground(dst, forecast.PaletteFor(data.Category))
	}

	drawTextOverlay(dst, data)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

// coverCrop scales src to cover dst and centre-crops it, nearest-neighbour.
func coverCrop(dst *image.RGBA, src image.Image) {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()

	scale := max(float64(CardWidth)/float64(srcW), float64(CardHeight)/float64(srcH))
	offsetX := (int(float64(srcW)*scale) - CardWidth) / 2
	offsetY := (int(float64(srcH)*scale) - CardHeight) / 2

	for y := 0; y < CardHeight; y++ {
		for x := 0; x < CardWidth; x++ {
			srcX := int(float64(x+offsetX) / scale)
			srcY := int(float64(y+offsetY) / scale)
			if srcX >= 0 && srcX < srcW && srcY >= 0 && srcY < srcH {
				dst.Set(x, y, src.At(srcBounds.Min.X+srcX, srcBounds.Min.Y+srcY))
			}
		}
	}
}

// drawGradientOverlay darkens the lower part of the image for text readability.
func drawGradientOverlay(img *image.RGBA) {
	bounds := img.Bounds()
	gradientHeight := 360

	for y := bounds.Max.Y - gradientHeight; y < bounds.Max.Y; y++ {
		progress := float64(y-(bounds.Max.Y-gradientHeight)) / float64(gradientHeight)
		alpha := progress * progress * 0.85

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			c.R = uint8(float64(c.R) * (1 - alpha))
			c.G = uint8(float64(c.G) * (1 - alpha))
			c.B = uint8(float64(c.B) * (1 - alpha))
			img.SetRGBA(x, y, c)
		}
	}
}

// drawBackground fills the card with a vertical sky-to-ground gradient.
func drawBackground(img *image.RGBA, p forecast.Palette) {
	top, err := forecast.ParseHex(p.Sky)
	if err != nil {
		top, _ = forecast.ParseHex(forecast.DefaultPalette.Sky)
	}
	bottom, err := forecast.ParseHex(p.Ground)
	if err != nil {
		bottom, _ = forecast.ParseHex(forecast.DefaultPalette.Ground)
	}
	lerp := func(a, b uint8, t float64) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	for y := 0; y < CardHeight; y++ {
		t := float64(y) / float64(CardHeight)
		c := color.RGBA{lerp(top.R, bottom.R, t), lerp(top.G, bottom.G, t), lerp(top.B, bottom.B, t), 255}
		for x := 0; x < CardWidth; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawTextOverlay(img *image.RGBA, data CardData) {
	white := color.RGBA{255, 255, 255, 255}
	lightGray := color.RGBA{200, 200, 200, 255}
	accent, err := forecast.ParseHex(forecast.PaletteFor(data.Category).Accent)
	if err != nil {
		accent = lightGray
	}

	drawText(img, data.Mountain, 60, 110, white, fontTitle)
	drawText(img, fmt.Sprintf("%d ft", data.Elevation), 60, 165, lightGray, fontRegular)

	if data.HasScore {
		drawText(img, fmt.Sprintf("%d", data.Score), 60, CardHeight-170, ratingColors[data.Rating], fontScore)
		label := data.Rating.Label()
		if data.BestDay != "" {
			label = fmt.Sprintf("%s · best day %s", label, data.BestDay)
		}
		drawText(img, label, 60, CardHeight-110, white, fontRegular)
	} else {
		drawText(img, "No hiking forecast", 60, CardHeight-110, white, fontRegular)
	}

	current := data.Condition
	if data.Temperature != nil {
		current = fmt.Sprintf("%d°F  %s", *data.Temperature, data.Condition)
	}
	if current != "" {
		drawText(img, current, 60, CardHeight-50, accent, fontRegular)
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
