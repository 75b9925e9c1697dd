package qr

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/qrlogo/qrlogo/internal/domain/common/errorz"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

type Config struct {
	Content    string
	LogoPath   string // empty means no logo
	Foreground color.Color
	Background color.Color
	BaseWidth  int     // Edge of the output raster in pixels
	LogoScale  float64 // Logo edge as a fraction of BaseWidth, in (0,1)
}

// Compose renders content with the Default preset and an optional logo.
func Compose(content, logoPath string) (*image.RGBA, error) {
	c := Default
	c.Content = content
	c.LogoPath = logoPath
	return c.Generate()
}

// Generate builds a BaseWidth x BaseWidth QR code with the logo alpha-composited
// at its center. An empty Content yields the placeholder raster.
func (c *Config) Generate() (*image.RGBA, error) {
	if c.Content == "" {
		return Placeholder(), nil
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	// Highest recovery level so the modules hidden under the logo can be restored
	q, err := qrcode.New(c.Content, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrEncoding, err)
	}
	q.DisableBorder = true

	canvas := c.rasterize(q.Bitmap())

	if c.LogoPath == "" {
		return canvas, nil
	}

	logo, err := LoadLogo(c.LogoPath)
	if err != nil {
		return nil, err
	}
	c.overlay(canvas, logo)

	return canvas, nil
}

// Placeholder returns the neutral raster shown before any content is entered.
func Placeholder() *image.RGBA {
	dc := gg.NewContext(PlaceholderSize, PlaceholderSize)
	dc.SetColor(PlaceholderColor)
	dc.Clear()
	return dc.Image().(*image.RGBA)
}

// LoadLogo decodes the image at path, honoring EXIF orientation.
func LoadLogo(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errorz.ErrLogoLoad, path, err)
	}
	return img, nil
}

// LogoRect is the area the logo occupies on a QR raster of the given width.
func LogoRect(baseWidth int, logoScale float64) image.Rectangle {
	size := int(float64(baseWidth) * logoScale)
	x := (baseWidth - size) / 2
	y := (baseWidth - size) / 2
	return image.Rect(x, y, x+size, y+size)
}

func (c *Config) validate() error {
	if c.BaseWidth <= 0 {
		return fmt.Errorf("%w: base width must be positive, got %d", errorz.ErrInvalidConfig, c.BaseWidth)
	}
	if c.LogoScale <= 0 || c.LogoScale >= 1 {
		return fmt.Errorf("%w: logo scale must be in (0,1), got %v", errorz.ErrInvalidConfig, c.LogoScale)
	}
	return nil
}

// rasterize paints one pixel per module and scales the result up with nearest
// neighbor, so module edges stay hard.
func (c *Config) rasterize(bitmap [][]bool) *image.RGBA {
	fg, bg := c.Foreground, c.Background
	if fg == nil {
		fg = color.Black
	}
	if bg == nil {
		bg = color.White
	}

	n := len(bitmap)
	modules := image.NewRGBA(image.Rect(0, 0, n, n))
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				modules.Set(x, y, fg)
			} else {
				modules.Set(x, y, bg)
			}
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, c.BaseWidth, c.BaseWidth))
	draw.NearestNeighbor.Scale(canvas, canvas.Bounds(), modules, modules.Bounds(), draw.Src, nil)
	return canvas
}

// overlay resizes the logo with nearest neighbor and blends it over the center
// of canvas. Transparent logo pixels leave the modules beneath visible.
func (c *Config) overlay(canvas *image.RGBA, logo image.Image) {
	rect := LogoRect(c.BaseWidth, c.LogoScale)
	if rect.Empty() {
		return
	}
	draw.NearestNeighbor.Scale(canvas, rect, logo, logo.Bounds(), draw.Over, nil)
}
