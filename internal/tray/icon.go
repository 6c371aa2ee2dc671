package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

const iconSize = 64

var (
	fontOnce sync.Once
	iconFont *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		iconFont, fontErr = freetype.ParseFont(gobold.TTF)
	})
	return iconFont, fontErr
}

// RenderIcon draws the tray icon: the layer number inside a rounded square.
// The square is filled while key events are enabled and outlined otherwise.
func RenderIcon(layer keys.Layer, active bool) ([]byte, error) {
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	white := color.RGBA{255, 255, 255, 255}
	drawSquare(img, white, active)

	text := fmt.Sprintf("%d", layer.Number())
	fg := white
	if active {
		fg = color.RGBA{0, 0, 0, 255}
	}

	fontSize := float64(44)
	dpi := float64(72)

	c := freetype.NewContext()
	c.SetFont(f)
	c.SetFontSize(fontSize)
	c.SetDPI(dpi)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(fg))

	face := truetype.NewFace(f, &truetype.Options{Size: fontSize, DPI: dpi})
	defer face.Close()

	textWidth := 0
	for _, r := range text {
		if adv, ok := face.GlyphAdvance(r); ok {
			textWidth += adv.Round()
		}
	}
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	x := (iconSize - textWidth) / 2
	y := (iconSize+ascent-descent)/2 + 1
	if _, err := c.DrawString(text, freetype.Pt(x, y)); err != nil {
		return nil, fmt.Errorf("draw layer number: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	margin  = 2
	radius  = 10
	outline = 4
)

// drawSquare paints a rounded square, filled or as an outline.
func drawSquare(img *image.RGBA, c color.RGBA, filled bool) {
	lo, hi := margin, iconSize-margin
	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			if !insideRounded(x, y, lo, hi, radius) {
				continue
			}
			if filled || !insideRounded(x, y, lo+outline, hi-outline, radius-outline) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func insideRounded(x, y, lo, hi, r int) bool {
	if x < lo || y < lo || x >= hi || y >= hi {
		return false
	}
	cx, cy := x, y
	switch {
	case x < lo+r:
		cx = lo + r
	case x >= hi-r:
		cx = hi - r - 1
	}
	switch {
	case y < lo+r:
		cy = lo + r
	case y >= hi-r:
		cy = hi - r - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

type iconKey struct {
	layer  keys.Layer
	active bool
}

// iconCache keeps one rendered PNG per layer and state.
type iconCache struct {
	mu    sync.Mutex
	icons map[iconKey][]byte
}

func (c *iconCache) get(layer keys.Layer, active bool) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := iconKey{layer, active}
	if data, ok := c.icons[k]; ok {
		return data, nil
	}
	data, err := RenderIcon(layer, active)
	if err != nil {
		return nil, err
	}
	if c.icons == nil {
		c.icons = make(map[iconKey][]byte)
	}
	c.icons[k] = data
	return data, nil
}
