package qr

import "image/color"

// Default mirrors the desktop app: black modules on white, a 5000px raster and a logo
// covering 30% of the edge.
var Default = Config{
	Foreground: color.Black,
	Background: color.White,
	BaseWidth:  5000,
	LogoScale:  0.3,
}

const (
	// PlaceholderSize is the edge of the raster returned while there is no content yet.
	PlaceholderSize = 1000
)

// PlaceholderColor is the toolkit gray the empty preview is filled with.
var PlaceholderColor = color.RGBA{R: 0xa0, G: 0xa0, B: 0xa4, A: 0xff}
